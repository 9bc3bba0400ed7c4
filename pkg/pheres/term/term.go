// Package term defines the AgentSpeak term model: tagged variants for
// atoms, numbers, strings, variables, compounds and lists, plus
// unification over immutable substitution environments.
package term

import (
	"strconv"
	"strings"
)

// Term is implemented by every term variant.
type Term interface {
	String() string
	isTerm()
}

// Atom is a lowercase constant symbol, e.g. `table`.
type Atom string

func (Atom) isTerm()          {}
func (a Atom) String() string { return string(a) }

// Int is an integer literal.
type Int int64

func (Int) isTerm()          {}
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Float is a floating point literal.
type Float float64

func (Float) isTerm() {}
func (f Float) String() string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Str is a double-quoted string literal.
type Str string

func (Str) isTerm()          {}
func (s Str) String() string { return strconv.Quote(string(s)) }

// Var is a logical variable. The name "_" is the wildcard: it matches
// anything and never binds.
type Var string

func (Var) isTerm()          {}
func (v Var) String() string { return string(v) }

// Anonymous reports whether v is the wildcard variable.
func (v Var) Anonymous() bool { return v == "_" }

// Compound is a functor applied to arguments, optionally carrying an
// annotation list, e.g. `on(small, 1, table)[source(self)]`. A Compound
// with no arguments is an annotated atom.
type Compound struct {
	Functor string
	Args    []Term
	Annots  []Term
}

func (Compound) isTerm() {}

func (c Compound) String() string {
	var b strings.Builder
	b.WriteString(c.Functor)
	if len(c.Args) > 0 {
		b.WriteByte('(')
		for i, a := range c.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte(')')
	}
	if len(c.Annots) > 0 {
		b.WriteByte('[')
		for i, a := range c.Annots {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte(']')
	}
	return b.String()
}

// List is a sequence of items with an optional tail term. A nil Tail
// marks a proper list; a non-nil Tail is the `|Rest` part.
type List struct {
	Items []Term
	Tail  Term
}

func (List) isTerm() {}

func (l List) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, item := range l.Items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(item.String())
	}
	if l.Tail != nil {
		b.WriteByte('|')
		b.WriteString(l.Tail.String())
	}
	b.WriteByte(']')
	return b.String()
}

// Comp builds a compound term, or an atom when no arguments are given.
func Comp(functor string, args ...Term) Term {
	if len(args) == 0 {
		return Atom(functor)
	}
	return Compound{Functor: functor, Args: args}
}

// Indicator returns the functor and arity of a literal term. Only atoms
// and compounds have an indicator.
func Indicator(t Term) (functor string, arity int, ok bool) {
	switch x := t.(type) {
	case Atom:
		return string(x), 0, true
	case Compound:
		return x.Functor, len(x.Args), true
	}
	return "", 0, false
}

// Copy returns a deep copy of t. Slices inside compounds and lists are
// duplicated so the result never aliases the original.
func Copy(t Term) Term {
	switch x := t.(type) {
	case Compound:
		return Compound{
			Functor: x.Functor,
			Args:    copyTerms(x.Args),
			Annots:  copyTerms(x.Annots),
		}
	case List:
		out := List{Items: copyTerms(x.Items)}
		if x.Tail != nil {
			out.Tail = Copy(x.Tail)
		}
		return out
	default:
		return t
	}
}

func copyTerms(in []Term) []Term {
	if in == nil {
		return nil
	}
	out := make([]Term, len(in))
	for i, t := range in {
		out[i] = Copy(t)
	}
	return out
}

// Equal performs structural comparison, annotations included.
func Equal(a, b Term) bool {
	switch x := a.(type) {
	case Atom:
		y, ok := b.(Atom)
		return ok && x == y
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Float:
		y, ok := b.(Float)
		return ok && x == y
	case Str:
		y, ok := b.(Str)
		return ok && x == y
	case Var:
		y, ok := b.(Var)
		return ok && x == y
	case Compound:
		y, ok := b.(Compound)
		if !ok || x.Functor != y.Functor {
			return false
		}
		return equalTerms(x.Args, y.Args) && equalTerms(x.Annots, y.Annots)
	case List:
		y, ok := b.(List)
		if !ok || !equalTerms(x.Items, y.Items) {
			return false
		}
		if (x.Tail == nil) != (y.Tail == nil) {
			return false
		}
		return x.Tail == nil || Equal(x.Tail, y.Tail)
	}
	return false
}

func equalTerms(a, b []Term) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// IsGround reports whether t contains no variables.
func IsGround(t Term) bool {
	switch x := t.(type) {
	case Var:
		return false
	case Compound:
		return groundTerms(x.Args) && groundTerms(x.Annots)
	case List:
		if !groundTerms(x.Items) {
			return false
		}
		return x.Tail == nil || IsGround(x.Tail)
	}
	return true
}

func groundTerms(in []Term) bool {
	for _, t := range in {
		if !IsGround(t) {
			return false
		}
	}
	return true
}

// Rename appends suffix to the name of every variable in t, leaving the
// wildcard untouched. Used to rename clauses apart before unification.
func Rename(t Term, suffix string) Term {
	switch x := t.(type) {
	case Var:
		if x.Anonymous() {
			return x
		}
		return Var(string(x) + suffix)
	case Compound:
		return Compound{
			Functor: x.Functor,
			Args:    renameTerms(x.Args, suffix),
			Annots:  renameTerms(x.Annots, suffix),
		}
	case List:
		out := List{Items: renameTerms(x.Items, suffix)}
		if x.Tail != nil {
			out.Tail = Rename(x.Tail, suffix)
		}
		return out
	default:
		return t
	}
}

func renameTerms(in []Term, suffix string) []Term {
	if in == nil {
		return nil
	}
	out := make([]Term, len(in))
	for i, t := range in {
		out[i] = Rename(t, suffix)
	}
	return out
}
