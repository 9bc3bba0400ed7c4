package term

import "testing"

func TestUnifyBindsVariable(t *testing.T) {
	env, ok := Unify(Var("X"), Atom("table"), nil)
	if !ok {
		t.Fatal("expected unification to succeed")
	}
	if env.Value("X") != Atom("table") {
		t.Errorf("X = %s, want table", env.Value("X"))
	}
}

func TestUnifyCompound(t *testing.T) {
	pattern := Comp("on", Var("Disc"), Var("Pin"), Atom("table"))
	fact := Comp("on", Atom("small"), Int(1), Atom("table"))

	env, ok := Unify(pattern, fact, nil)
	if !ok {
		t.Fatal("expected unification to succeed")
	}
	if env.Value("Disc") != Atom("small") || env.Value("Pin") != Int(1) {
		t.Errorf("got Disc=%s Pin=%s", env.Value("Disc"), env.Value("Pin"))
	}
}

func TestUnifyMismatch(t *testing.T) {
	if _, ok := Unify(Atom("a"), Atom("b"), nil); ok {
		t.Error("distinct atoms unified")
	}
	if _, ok := Unify(Comp("p", Atom("a")), Comp("p", Atom("a"), Atom("b")), nil); ok {
		t.Error("different arities unified")
	}
	if _, ok := Unify(Int(1), Float(1), nil); ok {
		t.Error("Int unified with Float")
	}
}

func TestUnifyConsistentRepeatedVariable(t *testing.T) {
	// p(X, X) unifies with p(a, a) but not p(a, b).
	pattern := Comp("p", Var("X"), Var("X"))

	if _, ok := Unify(pattern, Comp("p", Atom("a"), Atom("a")), nil); !ok {
		t.Error("p(X, X) should unify with p(a, a)")
	}
	if _, ok := Unify(pattern, Comp("p", Atom("a"), Atom("b")), nil); ok {
		t.Error("p(X, X) must not unify with p(a, b)")
	}
}

func TestUnifyWildcard(t *testing.T) {
	pattern := Comp("p", Var("_"), Var("_"))
	env, ok := Unify(pattern, Comp("p", Atom("a"), Atom("b")), nil)
	if !ok {
		t.Fatal("wildcards should match independently")
	}
	if _, bound := env.Lookup("_"); bound {
		t.Error("wildcard must never bind")
	}
}

func TestUnifyOccursCheck(t *testing.T) {
	if _, ok := Unify(Var("X"), Comp("f", Var("X")), nil); ok {
		t.Error("occurs check failed to reject X = f(X)")
	}
}

func TestUnifyLists(t *testing.T) {
	env, ok := Unify(
		List{Items: []Term{Var("H")}, Tail: Var("T")},
		List{Items: []Term{Atom("a"), Atom("b"), Atom("c")}},
		nil,
	)
	if !ok {
		t.Fatal("[H|T] should unify with [a, b, c]")
	}
	if env.Value("H") != Atom("a") {
		t.Errorf("H = %s, want a", env.Value("H"))
	}
	wantTail := List{Items: []Term{Atom("b"), Atom("c")}}
	if !Equal(env.Value("T"), wantTail) {
		t.Errorf("T = %s, want %s", env.Value("T"), wantTail)
	}

	if _, ok := Unify(List{}, List{Items: []Term{Atom("a")}}, nil); ok {
		t.Error("[] unified with a non-empty list")
	}
	if _, ok := Unify(List{}, List{}, nil); !ok {
		t.Error("[] should unify with []")
	}
}

func TestUnifyOpenTails(t *testing.T) {
	env, ok := Unify(
		List{Items: []Term{Atom("a")}, Tail: Var("T1")},
		List{Items: []Term{Atom("a"), Atom("b")}, Tail: Var("T2")},
		nil,
	)
	if !ok {
		t.Fatal("open-tailed lists should unify")
	}
	got := env.Resolve(List{Items: []Term{Atom("a")}, Tail: Var("T1")})
	want := List{Items: []Term{Atom("a"), Atom("b")}, Tail: Var("T2")}
	if !Equal(got, want) {
		t.Errorf("resolved to %s, want %s", got, want)
	}
}

func TestUnifyIgnoresAnnotations(t *testing.T) {
	annotated := Compound{
		Functor: "on",
		Args:    []Term{Atom("small")},
		Annots:  []Term{Comp("source", Atom("self"))},
	}
	if _, ok := Unify(Comp("on", Var("X")), annotated, nil); !ok {
		t.Error("annotations must not block unification")
	}
}
