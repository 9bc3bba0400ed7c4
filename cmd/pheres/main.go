package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/cognicore/pheres/pkg/pheres"
	"github.com/cognicore/pheres/pkg/pheres/beliefs"
	"github.com/cognicore/pheres/pkg/pheres/beliefs/sqlite"
	"github.com/cognicore/pheres/pkg/pheres/config"
	"github.com/cognicore/pheres/pkg/pheres/parser"
	"github.com/cognicore/pheres/pkg/pheres/term"
)

func main() {
	var (
		configPath = flag.String("config", "", "Agent manifest (YAML)")
		srcPath    = flag.String("src", "", "Agent program file(s), comma-separated")
		dbPath     = flag.String("db", "", "Database path (in-memory when empty)")
		goal       = flag.String("goal", "", "One-shot achievement goal (non-interactive mode)")
		queryStr   = flag.String("query", "", "One-shot query (non-interactive mode)")
	)
	flag.Parse()

	if *configPath == "" && *srcPath == "" {
		log.Fatal("--config or --src required")
	}

	ctx := context.Background()

	agent, cleanup, err := buildAgent(ctx, *configPath, *srcPath, *dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	// One-shot modes
	if *goal != "" {
		g, err := parser.ParseTerm(*goal)
		if err != nil {
			log.Fatal(err)
		}
		if err := agent.Achieve(ctx, g); err != nil {
			log.Fatal(err)
		}
		return
	}
	if *queryStr != "" {
		if err := executeQuery(ctx, agent, *queryStr); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Interactive mode
	fmt.Printf("Agent %q ready.\n", agent.Name())
	fmt.Println("  !goal     achieve a goal")
	fmt.Println("  +fact     assert a belief")
	fmt.Println("  -pattern  retract a belief")
	fmt.Println("  anything else runs as a query (Ctrl+D to exit)")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(scanner.Text()), "."))
		if line == "" {
			continue
		}

		if err := executeLine(ctx, agent, line); err != nil {
			fmt.Println("Error:", err)
		}
	}

	fmt.Println("\nGoodbye!")
}

func executeLine(ctx context.Context, agent *pheres.Agent, line string) error {
	switch {
	case strings.HasPrefix(line, "!"):
		g, err := parser.ParseTerm(strings.TrimPrefix(line, "!"))
		if err != nil {
			return err
		}
		return agent.Achieve(ctx, g)
	case strings.HasPrefix(line, "+"):
		fact, err := parser.ParseTerm(strings.TrimPrefix(line, "+"))
		if err != nil {
			return err
		}
		if err := agent.Believe(ctx, fact); err != nil {
			return err
		}
		return agent.Run(ctx)
	case strings.HasPrefix(line, "-"):
		pattern, err := parser.ParseTerm(strings.TrimPrefix(line, "-"))
		if err != nil {
			return err
		}
		removed, ok, err := agent.Forget(ctx, pattern)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("nothing matched")
			return nil
		}
		fmt.Println("retracted", removed)
		return agent.Run(ctx)
	}
	return executeQuery(ctx, agent, line)
}

func executeQuery(ctx context.Context, agent *pheres.Agent, src string) error {
	e, err := parser.ParseQuery(src)
	if err != nil {
		return err
	}

	envs, err := agent.Query(ctx, e)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if len(envs) == 0 {
		fmt.Println("no")
		return nil
	}

	vars := exprVars(e)
	if len(vars) == 0 {
		fmt.Println("yes")
		return nil
	}
	for _, env := range envs {
		parts := make([]string, 0, len(vars))
		for _, v := range vars {
			val := env.Value(v)
			if val == nil {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s = %s", v, val))
		}
		fmt.Println(strings.Join(parts, ", "))
	}
	return nil
}

// exprVars collects the named variables of a query, sorted for stable
// output.
func exprVars(e parser.Expr) []string {
	set := make(map[string]bool)
	collectExprVars(e, set)
	vars := make([]string, 0, len(set))
	for v := range set {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	return vars
}

func collectExprVars(e parser.Expr, set map[string]bool) {
	switch x := e.(type) {
	case parser.And:
		collectExprVars(x.L, set)
		collectExprVars(x.R, set)
	case parser.Or:
		collectExprVars(x.L, set)
		collectExprVars(x.R, set)
	case parser.Not:
		collectExprVars(x.X, set)
	case parser.Rel:
		collectTermVars(x.L, set)
		collectTermVars(x.R, set)
	case parser.Lit:
		collectTermVars(x.Term, set)
	}
}

func collectTermVars(t term.Term, set map[string]bool) {
	switch x := t.(type) {
	case term.Var:
		if !x.Anonymous() {
			set[string(x)] = true
		}
	case term.Compound:
		for _, a := range x.Args {
			collectTermVars(a, set)
		}
	case term.List:
		for _, it := range x.Items {
			collectTermVars(it, set)
		}
		if x.Tail != nil {
			collectTermVars(x.Tail, set)
		}
	}
}

func buildAgent(ctx context.Context, configPath, srcPath, dbPath string) (*pheres.Agent, func(), error) {
	var (
		base    beliefs.Base
		name    string
		sources []string
	)

	if configPath != "" {
		loader := config.Loader{ManifestPath: configPath}
		components, err := loader.Load(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
		base = components.Base
		name = components.Manifest.Name
		sources = components.Sources
	} else if dbPath != "" {
		var err error
		base, err = sqlite.Open(ctx, dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
	}

	if srcPath != "" {
		for _, s := range strings.Split(srcPath, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sources = append(sources, s)
			}
		}
	}

	agent := pheres.New(pheres.Options{Name: name, Base: base})
	cleanup := func() {
		agent.Close()
	}

	for _, src := range sources {
		if err := agent.LoadFile(ctx, src); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("load %s: %w", src, err)
		}
	}

	return agent, cleanup, nil
}
