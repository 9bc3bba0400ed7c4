package term

// Bindings is an immutable substitution environment. The zero value (a
// nil pointer) is the empty environment. Bind extends an environment
// without mutating it, so bindings handed out to callers stay valid no
// matter what the solver does afterwards.
type Bindings struct {
	name string
	val  Term
	next *Bindings
}

// Bind returns an environment extending b with name bound to val.
func (b *Bindings) Bind(name string, val Term) *Bindings {
	return &Bindings{name: name, val: val, next: b}
}

// Lookup returns the binding for name, if any.
func (b *Bindings) Lookup(name string) (Term, bool) {
	for e := b; e != nil; e = e.next {
		if e.name == name {
			return e.val, true
		}
	}
	return nil, false
}

// Walk dereferences variable chains until it reaches a non-variable or
// an unbound variable.
func (b *Bindings) Walk(t Term) Term {
	for {
		v, ok := t.(Var)
		if !ok || v.Anonymous() {
			return t
		}
		val, bound := b.Lookup(string(v))
		if !bound {
			return t
		}
		t = val
	}
}

// Resolve substitutes all bindings throughout t. Bound list tails are
// spliced so `[a|T]` with T bound to `[b]` resolves to `[a, b]`.
func (b *Bindings) Resolve(t Term) Term {
	t = b.Walk(t)
	switch x := t.(type) {
	case Compound:
		return Compound{
			Functor: x.Functor,
			Args:    b.resolveTerms(x.Args),
			Annots:  b.resolveTerms(x.Annots),
		}
	case List:
		items := b.resolveTerms(x.Items)
		if x.Tail == nil {
			return List{Items: items}
		}
		tail := b.Resolve(x.Tail)
		if tl, ok := tail.(List); ok {
			return List{Items: append(items, tl.Items...), Tail: tl.Tail}
		}
		return List{Items: items, Tail: tail}
	default:
		return t
	}
}

func (b *Bindings) resolveTerms(in []Term) []Term {
	if in == nil {
		return nil
	}
	out := make([]Term, len(in))
	for i, t := range in {
		out[i] = b.Resolve(t)
	}
	return out
}

// Value resolves the variable with the given name.
func (b *Bindings) Value(name string) Term {
	return b.Resolve(Var(name))
}
