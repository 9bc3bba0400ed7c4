package term

import "testing"

func TestStringForms(t *testing.T) {
	cases := []struct {
		in   Term
		want string
	}{
		{Atom("table"), "table"},
		{Int(42), "42"},
		{Float(0.042), "0.042"},
		{Float(3), "3.0"},
		{Str("hi\n"), `"hi\n"`},
		{Var("Disc"), "Disc"},
		{Comp("on", Atom("small"), Int(1), Atom("table")), "on(small, 1, table)"},
		{Compound{Functor: "p", Args: []Term{Atom("a")}, Annots: []Term{Comp("source", Atom("self"))}}, "p(a)[source(self)]"},
		{List{Items: []Term{Atom("a"), Atom("b")}}, "[a, b]"},
		{List{Items: []Term{Atom("a")}, Tail: Var("T")}, "[a|T]"},
		{List{}, "[]"},
	}
	for _, c := range cases {
		if got := c.in.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestIndicator(t *testing.T) {
	f, n, ok := Indicator(Comp("on", Atom("a"), Int(1), Atom("b")))
	if !ok || f != "on" || n != 3 {
		t.Errorf("Indicator(on/3) = %q/%d ok=%v", f, n, ok)
	}

	f, n, ok = Indicator(Atom("sort"))
	if !ok || f != "sort" || n != 0 {
		t.Errorf("Indicator(sort) = %q/%d ok=%v", f, n, ok)
	}

	if _, _, ok := Indicator(Int(1)); ok {
		t.Error("numbers must not have an indicator")
	}
}

func TestCopyDoesNotAlias(t *testing.T) {
	orig := Compound{Functor: "on", Args: []Term{Atom("small"), Int(1)}}
	dup := Copy(orig).(Compound)

	dup.Args[0] = Atom("large")
	if orig.Args[0] != Atom("small") {
		t.Error("Copy shares argument storage with the original")
	}
}

func TestEqual(t *testing.T) {
	a := Comp("on", Atom("small"), Int(1), Atom("table"))
	b := Comp("on", Atom("small"), Int(1), Atom("table"))
	if !Equal(a, b) {
		t.Error("identical compounds must be Equal")
	}

	if Equal(a, Comp("on", Atom("small"), Int(2), Atom("table"))) {
		t.Error("different arguments must not be Equal")
	}

	if Equal(Int(1), Float(1)) {
		t.Error("Int and Float are distinct variants")
	}

	annotated := Compound{Functor: "p", Annots: []Term{Atom("a")}}
	if Equal(annotated, Compound{Functor: "p"}) {
		t.Error("Equal must account for annotations")
	}
}

func TestIsGround(t *testing.T) {
	if !IsGround(Comp("on", Atom("a"), Int(1))) {
		t.Error("variable-free term reported non-ground")
	}
	if IsGround(Comp("on", Var("X"), Int(1))) {
		t.Error("term with variable reported ground")
	}
	if IsGround(List{Items: []Term{Atom("a")}, Tail: Var("T")}) {
		t.Error("open-tailed list reported ground")
	}
}

func TestRename(t *testing.T) {
	in := Comp("top", Var("Disc"), Var("Pin"))
	out := Rename(in, "_7").(Compound)

	if out.Args[0] != Var("Disc_7") || out.Args[1] != Var("Pin_7") {
		t.Errorf("Rename produced %s", out)
	}

	if Rename(Var("_"), "_7") != Var("_") {
		t.Error("wildcard must not be renamed")
	}
}

func TestBindingsImmutable(t *testing.T) {
	var env *Bindings
	env1 := env.Bind("X", Atom("a"))
	env2 := env1.Bind("Y", Atom("b"))

	if _, ok := env.Lookup("X"); ok {
		t.Error("empty environment gained a binding")
	}
	if _, ok := env1.Lookup("Y"); ok {
		t.Error("extension leaked into the parent environment")
	}
	if v, ok := env2.Lookup("X"); !ok || v != Atom("a") {
		t.Error("extension lost the parent binding")
	}
}

func TestResolveSplicesListTails(t *testing.T) {
	env := (*Bindings)(nil).Bind("T", List{Items: []Term{Atom("b"), Atom("c")}})
	got := env.Resolve(List{Items: []Term{Atom("a")}, Tail: Var("T")})

	want := List{Items: []Term{Atom("a"), Atom("b"), Atom("c")}}
	if !Equal(got, want) {
		t.Errorf("Resolve = %s, want %s", got, want)
	}
}
