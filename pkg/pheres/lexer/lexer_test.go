package lexer

import "testing"

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func expectKinds(t *testing.T, src string, want []Kind) {
	t.Helper()
	tokens, errs := Scan(src)
	if len(errs) != 0 {
		t.Fatalf("Scan(%q) errors: %v", src, errs)
	}
	got := kinds(tokens)
	if len(got) != len(want) {
		t.Fatalf("Scan(%q) = %v, want %v", src, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Scan(%q)[%d] = %v, want %v", src, i, got[i], want[i])
		}
	}
}

func TestScanFact(t *testing.T) {
	expectKinds(t, "on(small, 1, table).", []Kind{
		Functor, LParen, Functor, Comma, Int, Comma, Functor, RParen, Dot, EOF,
	})
}

func TestScanRule(t *testing.T) {
	expectKinds(t, "top(D, P) :- on(D, P, B) & not disc(B, _).", []Kind{
		Functor, LParen, Variable, Comma, Variable, RParen, Define,
		Functor, LParen, Variable, Comma, Variable, Comma, Variable, RParen,
		Amp, Not, Functor, LParen, Variable, Comma, Variable, RParen, Dot, EOF,
	})
}

func TestScanPlan(t *testing.T) {
	expectKinds(t, "+!sort : top(D, P) <- .print(D); !go.", []Kind{
		Plus, Bang, Functor, Colon,
		Functor, LParen, Variable, Comma, Variable, RParen, Arrow,
		Builtin, LParen, Variable, RParen, Semi, Bang, Functor, Dot, EOF,
	})
}

func TestScanOperators(t *testing.T) {
	expectKinds(t, "|&| ||| ** * <- <= < :- : =.. == = \\== >= > -+ - !! !", []Kind{
		ForkJoinAnd, ForkJoinXor, Pow, Star, Arrow, Le, Lt, Define, Colon,
		Decompose, EqEq, Eq, Ne, Ge, Gt, MinusPlus, Minus, BangBang, Bang, EOF,
	})
}

func TestScanKeywords(t *testing.T) {
	expectKinds(t, "true false if else while for not div mod include begin end", []Kind{
		True, False, If, Else, While, For, Not, Div, Mod, Include, Begin, End, EOF,
	})
}

func TestScanNumbers(t *testing.T) {
	tokens, errs := Scan("42 3.14 42e-3 7E2 1.")
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	want := []struct {
		kind Kind
		text string
	}{
		{Int, "42"}, {Float, "3.14"}, {Float, "42e-3"}, {Float, "7E2"},
		{Int, "1"}, {Dot, "."}, {EOF, ""},
	}
	for i, w := range want {
		if tokens[i].Kind != w.kind || tokens[i].Text != w.text {
			t.Errorf("token %d = %v %q, want %v %q", i, tokens[i].Kind, tokens[i].Text, w.kind, w.text)
		}
	}
}

func TestScanStringEscapes(t *testing.T) {
	tokens, errs := Scan(`"a\n\"b\""`)
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	if tokens[0].Kind != String || tokens[0].Text != "a\n\"b\"" {
		t.Errorf("got %v %q", tokens[0].Kind, tokens[0].Text)
	}
}

func TestScanComments(t *testing.T) {
	expectKinds(t, "// line\n# hash\n/* block\nspans lines */ a.", []Kind{
		Functor, Dot, EOF,
	})
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, errs := Scan("on(small, /* 1, table).")
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if errs[0].Line != 1 || errs[0].Col != 11 {
		t.Errorf("error at %d:%d, want 1:11", errs[0].Line, errs[0].Col)
	}
}

func TestUnterminatedString(t *testing.T) {
	_, errs := Scan(`.print("oops).`)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
}

func TestPositions(t *testing.T) {
	tokens, _ := Scan("a.\n  b.")
	// a . b . EOF
	if tokens[2].Line != 2 || tokens[2].Col != 3 {
		t.Errorf("b at %d:%d, want 2:3", tokens[2].Line, tokens[2].Col)
	}
}

func TestDotBeforeFunctorIsBuiltin(t *testing.T) {
	tokens, _ := Scan(".print(X).")
	if tokens[0].Kind != Builtin || tokens[0].Text != "print" {
		t.Fatalf("got %v %q", tokens[0].Kind, tokens[0].Text)
	}
	// trailing clause dot stays a Dot
	if tokens[len(tokens)-2].Kind != Dot {
		t.Error("clause terminator lost")
	}
}
