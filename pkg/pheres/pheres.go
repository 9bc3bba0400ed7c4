// Package pheres is the embedding facade for the agent interpreter.
// An Agent owns a belief base, the rules and plans loaded from source,
// and an executor; callers assert beliefs, post goals and run queries
// through it.
package pheres

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/pheres/pkg/pheres/beliefs"
	"github.com/cognicore/pheres/pkg/pheres/beliefs/membase"
	"github.com/cognicore/pheres/pkg/pheres/internalerr"
	"github.com/cognicore/pheres/pkg/pheres/parser"
	"github.com/cognicore/pheres/pkg/pheres/query"
	"github.com/cognicore/pheres/pkg/pheres/runtime"
	"github.com/cognicore/pheres/pkg/pheres/term"
)

// Agent is the main interpreter facade
type Agent struct {
	name    string
	base    beliefs.Base
	out     io.Writer
	actions *runtime.Registry

	rules  []parser.Rule
	plans  []parser.Plan
	loaded map[string]bool

	solver *query.Solver
	exec   *runtime.Executor
}

// Options configures an Agent instance
type Options struct {
	Name    string
	Base    beliefs.Base
	Out     io.Writer
	Actions *runtime.Registry
}

// New creates an Agent with the given dependencies. A nil Base gets an
// in-memory one; a nil Out writes to stdout.
func New(opts Options) *Agent {
	base := opts.Base
	if base == nil {
		base = membase.New()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	actions := opts.Actions
	if actions == nil {
		actions = runtime.NewRegistry()
	}
	a := &Agent{
		name:    opts.Name,
		base:    base,
		out:     out,
		actions: actions,
		loaded:  make(map[string]bool),
	}
	a.rebuild()
	return a
}

// Name returns the agent's configured name.
func (a *Agent) Name() string { return a.name }

// Close cleanly shuts down the Agent instance
func (a *Agent) Close() error {
	return a.base.Close()
}

// rebuild refreshes the solver and executor after program loads. The
// executor's pending events carry over.
func (a *Agent) rebuild() {
	var pending []runtime.Event
	if a.exec != nil {
		pending = a.exec.Drain()
	}
	a.solver = query.NewSolver(a.base, a.rules)
	a.exec = runtime.New(runtime.Options{
		Base:    a.base,
		Solver:  a.solver,
		Plans:   a.plans,
		Actions: a.actions,
		Out:     a.out,
	})
	for _, ev := range pending {
		a.exec.Post(ev)
	}
}

// LoadError aggregates the parse errors of one source unit.
type LoadError struct {
	Path string
	Errs []parser.Error
}

func (e *LoadError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, pe := range e.Errs {
		msgs[i] = pe.Error()
	}
	return fmt.Sprintf("%s: %s", e.Path, strings.Join(msgs, "; "))
}

// LoadSource parses src and merges its beliefs, rules and plans into
// the agent. Well-formed clauses load even when others fail; the
// returned *LoadError lists what did not. Includes resolve relative to
// the working directory.
func (a *Agent) LoadSource(ctx context.Context, src string) error {
	return a.load(ctx, src, "source", ".")
}

// LoadFile reads and loads an agent program. Includes resolve relative
// to the file's directory; each file loads at most once.
func (a *Agent) LoadFile(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if a.loaded[abs] {
		return nil
	}
	a.loaded[abs] = true

	data, err := os.ReadFile(abs)
	if err != nil {
		return err
	}
	return a.load(ctx, string(data), abs, filepath.Dir(abs))
}

func (a *Agent) load(ctx context.Context, src, name, dir string) error {
	prog, errs := parser.Parse(src)

	for _, b := range prog.Beliefs {
		if _, err := a.base.Assert(ctx, b.Term); err != nil {
			return err
		}
	}
	a.rules = append(a.rules, prog.Rules...)
	a.plans = append(a.plans, prog.Plans...)
	a.rebuild()

	var incErr error
	for _, inc := range prog.Includes {
		p := inc.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		if err := a.LoadFile(ctx, p); err != nil && incErr == nil {
			incErr = err
		}
	}

	if len(errs) != 0 {
		return &LoadError{Path: name, Errs: errs}
	}
	return incErr
}

// Believe asserts a ground fact and queues the matching belief event.
// Asserting an existing fact is a no-op.
func (a *Agent) Believe(ctx context.Context, fact term.Term) error {
	if !term.IsGround(fact) {
		return fmt.Errorf("belief %s is not ground: %w", fact, internalerr.ErrInvalidInput)
	}
	added, err := a.base.Assert(ctx, fact)
	if err != nil {
		return err
	}
	if added {
		a.exec.Post(runtime.Event{Op: parser.OpAdd, Kind: parser.KindBelief, Term: fact})
	}
	return nil
}

// Forget retracts the first fact unifying with pattern, queueing the
// deletion event. The second return reports whether anything matched.
func (a *Agent) Forget(ctx context.Context, pattern term.Term) (term.Term, bool, error) {
	removed, ok, err := a.base.Retract(ctx, pattern)
	if err != nil || !ok {
		return nil, false, err
	}
	a.exec.Post(runtime.Event{Op: parser.OpDel, Kind: parser.KindBelief, Term: removed})
	return removed, true, nil
}

// Achieve posts the achievement goal and runs the executor until the
// event queue drains.
func (a *Agent) Achieve(ctx context.Context, goal term.Term) error {
	a.exec.Post(runtime.Event{Op: parser.OpAdd, Kind: parser.KindAchieve, Term: goal})
	return a.exec.Run(ctx)
}

// Run processes any queued events, such as those left by Believe and
// Forget.
func (a *Agent) Run(ctx context.Context) error {
	return a.exec.Run(ctx)
}

// Query collects every solution of e against the current beliefs and
// rules.
func (a *Agent) Query(ctx context.Context, e parser.Expr) ([]*term.Bindings, error) {
	return a.solver.All(ctx, e, nil)
}

// QueryText parses src as a query expression and runs it.
func (a *Agent) QueryText(ctx context.Context, src string) ([]*term.Bindings, error) {
	e, err := parser.ParseQuery(src)
	if err != nil {
		return nil, err
	}
	return a.Query(ctx, e)
}

// Beliefs snapshots the belief base in assertion order.
func (a *Agent) Beliefs(ctx context.Context) ([]term.Term, error) {
	return a.base.All(ctx)
}
