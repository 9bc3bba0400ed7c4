// Package query resolves logical expressions against a belief base and
// a static rule set. Solutions stream through a yield callback;
// returning false from the callback stops the enumeration, which is
// what makes query results lazy.
package query

import (
	"context"
	"fmt"

	"github.com/cognicore/pheres/pkg/pheres/beliefs"
	"github.com/cognicore/pheres/pkg/pheres/internalerr"
	"github.com/cognicore/pheres/pkg/pheres/parser"
	"github.com/cognicore/pheres/pkg/pheres/term"
)

// Solver evaluates expressions by unification against stored facts and
// on-demand rule resolution.
type Solver struct {
	base  beliefs.Base
	rules map[string][]parser.Rule // keyed by functor/arity, declaration order
	fresh int
}

// NewSolver creates a solver over the given base and rules.
func NewSolver(base beliefs.Base, rules []parser.Rule) *Solver {
	indexed := make(map[string][]parser.Rule)
	for _, r := range rules {
		functor, arity, ok := term.Indicator(r.Head)
		if !ok {
			continue
		}
		k := indicatorKey(functor, arity)
		indexed[k] = append(indexed[k], r)
	}
	return &Solver{base: base, rules: indexed}
}

func indicatorKey(functor string, arity int) string {
	return fmt.Sprintf("%s/%d", functor, arity)
}

// Solve streams every solution of e under env to yield. Enumeration
// stops early when yield returns false; the returned bool reports
// whether the caller may continue with further alternatives.
func (s *Solver) Solve(ctx context.Context, e parser.Expr, env *term.Bindings, yield func(*term.Bindings) bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	switch x := e.(type) {
	case parser.TrueExpr:
		return yield(env), nil
	case parser.FalseExpr:
		return true, nil
	case parser.And:
		var innerErr error
		cont, err := s.Solve(ctx, x.L, env, func(env2 *term.Bindings) bool {
			c, err2 := s.Solve(ctx, x.R, env2, yield)
			if err2 != nil {
				innerErr = err2
				return false
			}
			return c
		})
		if innerErr != nil {
			return false, innerErr
		}
		return cont, err
	case parser.Or:
		cont, err := s.Solve(ctx, x.L, env, yield)
		if err != nil || !cont {
			return cont, err
		}
		return s.Solve(ctx, x.R, env, yield)
	case parser.Not:
		// Negation as failure: succeed exactly once, with the
		// substitution unchanged, iff X has no solution.
		found := false
		_, err := s.Solve(ctx, x.X, env, func(*term.Bindings) bool {
			found = true
			return false
		})
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
		return yield(env), nil
	case parser.Rel:
		return s.solveRel(ctx, x, env, yield)
	case parser.Lit:
		return s.solveLit(ctx, x.Term, env, yield)
	}
	return false, fmt.Errorf("unsupported expression %T: %w", e, internalerr.ErrInvalidInput)
}

// All collects every solution of e.
func (s *Solver) All(ctx context.Context, e parser.Expr, env *term.Bindings) ([]*term.Bindings, error) {
	var out []*term.Bindings
	_, err := s.Solve(ctx, e, env, func(env2 *term.Bindings) bool {
		out = append(out, env2)
		return true
	})
	return out, err
}

// First returns the first solution of e, if any.
func (s *Solver) First(ctx context.Context, e parser.Expr, env *term.Bindings) (*term.Bindings, bool, error) {
	var found *term.Bindings
	ok := false
	_, err := s.Solve(ctx, e, env, func(env2 *term.Bindings) bool {
		found = env2
		ok = true
		return false
	})
	if err != nil {
		return nil, false, err
	}
	return found, ok, nil
}

func (s *Solver) solveLit(ctx context.Context, t term.Term, env *term.Bindings, yield func(*term.Bindings) bool) (bool, error) {
	goal := env.Walk(t)
	functor, arity, ok := term.Indicator(goal)
	if !ok {
		return false, fmt.Errorf("%s is not a provable literal: %w", goal, internalerr.ErrInvalidInput)
	}

	// Stored facts first, in assertion order.
	facts, err := s.base.Candidates(ctx, functor, arity)
	if err != nil {
		return false, err
	}
	for _, fact := range facts {
		if env2, ok := term.Unify(goal, fact, env); ok {
			if !yield(env2) {
				return false, nil
			}
		}
	}

	// Then rules, in declaration order, renamed apart per use.
	for _, r := range s.rules[indicatorKey(functor, arity)] {
		s.fresh++
		suffix := fmt.Sprintf("_r%d", s.fresh)
		head := term.Rename(r.Head, suffix)
		env2, ok := term.Unify(goal, head, env)
		if !ok {
			continue
		}
		body := parser.RenameExpr(r.Body, suffix)
		cont, err := s.Solve(ctx, body, env2, yield)
		if err != nil || !cont {
			return cont, err
		}
	}
	return true, nil
}

func (s *Solver) solveRel(ctx context.Context, rel parser.Rel, env *term.Bindings, yield func(*term.Bindings) bool) (bool, error) {
	switch rel.Op {
	case "=":
		// Ground arithmetic operands evaluate before unifying, so
		// `N2 = N + 1` binds a number rather than an operator tree.
		l := evalIfArith(rel.L, env)
		r := evalIfArith(rel.R, env)
		if env2, ok := term.Unify(l, r, env); ok {
			return yield(env2), nil
		}
		return true, nil
	case "==", "\\==":
		equal := term.Equal(env.Resolve(rel.L), env.Resolve(rel.R))
		if equal == (rel.Op == "==") {
			return yield(env), nil
		}
		return true, nil
	case "<", "<=", ">", ">=":
		c, err := s.compare(rel.L, rel.R, env)
		if err != nil {
			return false, err
		}
		hold := false
		switch rel.Op {
		case "<":
			hold = c < 0
		case "<=":
			hold = c <= 0
		case ">":
			hold = c > 0
		case ">=":
			hold = c >= 0
		}
		if hold {
			return yield(env), nil
		}
		return true, nil
	case "=..":
		return s.solveUniv(rel, env, yield)
	}
	return false, fmt.Errorf("unknown operator %q: %w", rel.Op, internalerr.ErrInvalidInput)
}

// solveUniv implements `T =.. [functor|args]` in both directions.
func (s *Solver) solveUniv(rel parser.Rel, env *term.Bindings, yield func(*term.Bindings) bool) (bool, error) {
	l := env.Resolve(rel.L)

	switch x := l.(type) {
	case term.Atom:
		list := term.List{Items: []term.Term{x}}
		if env2, ok := term.Unify(rel.R, list, env); ok {
			return yield(env2), nil
		}
		return true, nil
	case term.Compound:
		items := append([]term.Term{term.Atom(x.Functor)}, x.Args...)
		if env2, ok := term.Unify(rel.R, term.List{Items: items}, env); ok {
			return yield(env2), nil
		}
		return true, nil
	}

	r := env.Resolve(rel.R)
	list, ok := r.(term.List)
	if !ok || list.Tail != nil || len(list.Items) == 0 {
		return false, fmt.Errorf("=.. needs a compound or a proper list: %w", internalerr.ErrInvalidInput)
	}
	functor, ok := list.Items[0].(term.Atom)
	if !ok {
		return false, fmt.Errorf("=.. list must start with an atom: %w", internalerr.ErrInvalidInput)
	}
	built := term.Comp(string(functor), list.Items[1:]...)
	if env2, ok := term.Unify(rel.L, built, env); ok {
		return yield(env2), nil
	}
	return true, nil
}

func (s *Solver) compare(l, r term.Term, env *term.Bindings) (int, error) {
	lv, err := Eval(l, env)
	if err != nil {
		return 0, err
	}
	rv, err := Eval(r, env)
	if err != nil {
		return 0, err
	}
	lf, rf := toFloat(lv), toFloat(rv)
	switch {
	case lf < rf:
		return -1, nil
	case lf > rf:
		return 1, nil
	}
	return 0, nil
}
