package term

// Unify attempts to make a and b syntactically equal under env. On
// success it returns the extended environment. env is never mutated, so
// a failed branch costs nothing to undo. Annotation lists are carried
// through unification but not matched.
func Unify(a, b Term, env *Bindings) (*Bindings, bool) {
	a = env.Walk(a)
	b = env.Walk(b)

	if av, ok := a.(Var); ok {
		if av.Anonymous() {
			return env, true
		}
		if bv, ok := b.(Var); ok {
			if bv.Anonymous() || av == bv {
				return env, true
			}
		}
		if occurs(string(av), b, env) {
			return env, false
		}
		return env.Bind(string(av), b), true
	}
	if bv, ok := b.(Var); ok {
		if bv.Anonymous() {
			return env, true
		}
		if occurs(string(bv), a, env) {
			return env, false
		}
		return env.Bind(string(bv), a), true
	}

	switch x := a.(type) {
	case Atom:
		y, ok := b.(Atom)
		return env, ok && x == y
	case Int:
		y, ok := b.(Int)
		return env, ok && x == y
	case Float:
		y, ok := b.(Float)
		return env, ok && x == y
	case Str:
		y, ok := b.(Str)
		return env, ok && x == y
	case Compound:
		y, ok := b.(Compound)
		if !ok || x.Functor != y.Functor || len(x.Args) != len(y.Args) {
			return env, false
		}
		for i := range x.Args {
			env, ok = Unify(x.Args[i], y.Args[i], env)
			if !ok {
				return env, false
			}
		}
		return env, true
	case List:
		y, ok := b.(List)
		if !ok {
			return env, false
		}
		return unifyLists(x, y, env)
	}
	return env, false
}

func unifyLists(a, b List, env *Bindings) (*Bindings, bool) {
	i := 0
	for i < len(a.Items) && i < len(b.Items) {
		var ok bool
		env, ok = Unify(a.Items[i], b.Items[i], env)
		if !ok {
			return env, false
		}
		i++
	}

	at, bt := listRest(a, i), listRest(b, i)
	al, aIsList := at.(List)
	bl, bIsList := bt.(List)
	if aIsList && bIsList {
		// One side is exhausted and proper; lists match only if both are.
		return env, len(al.Items) == 0 && len(bl.Items) == 0
	}
	return Unify(at, bt, env)
}

// listRest returns the remainder of l after its first n items. When the
// items are exhausted and l has a tail, the tail term itself is
// returned so it can be unified directly.
func listRest(l List, n int) Term {
	if n < len(l.Items) || l.Tail == nil {
		return List{Items: l.Items[n:], Tail: l.Tail}
	}
	return l.Tail
}

// occurs reports whether the variable name appears in t under env.
// Binding a variable to a term containing itself would build an
// infinite term.
func occurs(name string, t Term, env *Bindings) bool {
	t = env.Walk(t)
	switch x := t.(type) {
	case Var:
		return string(x) == name
	case Compound:
		for _, a := range x.Args {
			if occurs(name, a, env) {
				return true
			}
		}
	case List:
		for _, item := range x.Items {
			if occurs(name, item, env) {
				return true
			}
		}
		if x.Tail != nil {
			return occurs(name, x.Tail, env)
		}
	}
	return false
}
