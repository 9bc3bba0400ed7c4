package query

import (
	"fmt"
	"math"

	"github.com/cognicore/pheres/pkg/pheres/internalerr"
	"github.com/cognicore/pheres/pkg/pheres/term"
)

// Eval evaluates an arithmetic term under env, returning an Int or a
// Float. Mixed operands promote to Float; `/` always yields a Float,
// `div` and `mod` require integers.
func Eval(t term.Term, env *term.Bindings) (term.Term, error) {
	t = env.Walk(t)
	switch x := t.(type) {
	case term.Int, term.Float:
		return x, nil
	case term.Var:
		return nil, fmt.Errorf("unbound variable %s in arithmetic: %w", x, internalerr.ErrInvalidInput)
	case term.Compound:
		return evalOp(x, env)
	}
	return nil, fmt.Errorf("%s is not numeric: %w", t, internalerr.ErrInvalidInput)
}

func evalOp(c term.Compound, env *term.Bindings) (term.Term, error) {
	if c.Functor == "-" && len(c.Args) == 1 {
		v, err := Eval(c.Args[0], env)
		if err != nil {
			return nil, err
		}
		if n, ok := v.(term.Int); ok {
			return term.Int(-n), nil
		}
		return term.Float(-v.(term.Float)), nil
	}
	if len(c.Args) != 2 {
		return nil, fmt.Errorf("%s is not an arithmetic expression: %w", c, internalerr.ErrInvalidInput)
	}

	l, err := Eval(c.Args[0], env)
	if err != nil {
		return nil, err
	}
	r, err := Eval(c.Args[1], env)
	if err != nil {
		return nil, err
	}

	li, lInt := l.(term.Int)
	ri, rInt := r.(term.Int)
	bothInt := lInt && rInt

	switch c.Functor {
	case "+":
		if bothInt {
			return li + ri, nil
		}
		return term.Float(toFloat(l) + toFloat(r)), nil
	case "-":
		if bothInt {
			return li - ri, nil
		}
		return term.Float(toFloat(l) - toFloat(r)), nil
	case "*":
		if bothInt {
			return li * ri, nil
		}
		return term.Float(toFloat(l) * toFloat(r)), nil
	case "/":
		rf := toFloat(r)
		if rf == 0 {
			return nil, fmt.Errorf("division by zero: %w", internalerr.ErrInvalidInput)
		}
		return term.Float(toFloat(l) / rf), nil
	case "div":
		if !bothInt {
			return nil, fmt.Errorf("div needs integer operands: %w", internalerr.ErrInvalidInput)
		}
		if ri == 0 {
			return nil, fmt.Errorf("division by zero: %w", internalerr.ErrInvalidInput)
		}
		return li / ri, nil
	case "mod":
		if !bothInt {
			return nil, fmt.Errorf("mod needs integer operands: %w", internalerr.ErrInvalidInput)
		}
		if ri == 0 {
			return nil, fmt.Errorf("division by zero: %w", internalerr.ErrInvalidInput)
		}
		return li % ri, nil
	case "**":
		return term.Float(math.Pow(toFloat(l), toFloat(r))), nil
	}
	return nil, fmt.Errorf("%s is not an arithmetic operator: %w", c.Functor, internalerr.ErrInvalidInput)
}

var arithFunctors = map[string]bool{
	"+": true, "-": true, "*": true, "/": true,
	"div": true, "mod": true, "**": true,
}

// evalIfArith evaluates t when it resolves to a ground arithmetic
// expression, and returns it untouched otherwise so structural
// unification still applies to ordinary terms.
func evalIfArith(t term.Term, env *term.Bindings) term.Term {
	rt := env.Resolve(t)
	c, ok := rt.(term.Compound)
	if !ok || !arithFunctors[c.Functor] || !term.IsGround(rt) {
		return t
	}
	v, err := Eval(rt, env)
	if err != nil {
		return t
	}
	return v
}

func toFloat(t term.Term) float64 {
	switch x := t.(type) {
	case term.Int:
		return float64(x)
	case term.Float:
		return float64(x)
	}
	return math.NaN()
}
