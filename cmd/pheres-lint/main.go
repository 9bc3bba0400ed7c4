// pheres-lint parses agent program files and reports syntax errors in
// file:line:col form. It exits non-zero when any file fails.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cognicore/pheres/pkg/pheres/parser"
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		log.Fatal("usage: pheres-lint FILE...")
	}

	failed := false
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed = true
			continue
		}

		prog, errs := parser.Parse(string(data))
		for _, e := range errs {
			fmt.Printf("%s:%d:%d: %s\n", path, e.Line, e.Col, e.Msg)
		}
		if len(errs) != 0 {
			failed = true
			continue
		}
		fmt.Printf("%s: %d beliefs, %d rules, %d plans\n",
			path, len(prog.Beliefs), len(prog.Rules), len(prog.Plans))
	}

	if failed {
		os.Exit(1)
	}
}
