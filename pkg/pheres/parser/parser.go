package parser

import (
	"fmt"
	"strconv"

	"github.com/cognicore/pheres/pkg/pheres/lexer"
	"github.com/cognicore/pheres/pkg/pheres/term"
)

type parser struct {
	toks []lexer.Token
	i    int
	errs []Error
}

// Parse loads all clauses from src. Clauses that fail to parse are
// reported in the error slice and skipped; everything else still loads.
func Parse(src string) (*Program, []Error) {
	toks, lexErrs := lexer.Scan(src)
	p := &parser{toks: toks}
	for _, e := range lexErrs {
		p.errs = append(p.errs, Error{Msg: e.Msg, Line: e.Line, Col: e.Col})
	}

	prog := &Program{}
	for !p.at(lexer.EOF) {
		if err := p.parseClause(prog); err != nil {
			p.errs = append(p.errs, *err)
			p.syncToClauseEnd()
		}
	}
	return prog, p.errs
}

// ParseTerm parses a single term, with an optional trailing dot.
func ParseTerm(src string) (term.Term, error) {
	toks, lexErrs := lexer.Scan(src)
	if len(lexErrs) > 0 {
		return nil, lexErrs[0]
	}
	p := &parser{toks: toks}
	t, err := p.parseArith()
	if err != nil {
		return nil, *err
	}
	p.eat(lexer.Dot)
	if !p.at(lexer.EOF) {
		return nil, *p.errorHere("trailing input after term")
	}
	return t, nil
}

// ParseQuery parses a logical expression, with an optional trailing
// dot. Used for ad-hoc queries against a loaded agent.
func ParseQuery(src string) (Expr, error) {
	toks, lexErrs := lexer.Scan(src)
	if len(lexErrs) > 0 {
		return nil, lexErrs[0]
	}
	p := &parser{toks: toks}
	t, err := p.parseOr()
	if err != nil {
		return nil, *err
	}
	p.eat(lexer.Dot)
	if !p.at(lexer.EOF) {
		return nil, *p.errorHere("trailing input after query")
	}
	e, perr := p.toExpr(t)
	if perr != nil {
		return nil, *perr
	}
	return e, nil
}

func (p *parser) cur() lexer.Token { return p.toks[p.i] }

func (p *parser) at(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *parser) next() lexer.Token {
	t := p.toks[p.i]
	if t.Kind != lexer.EOF {
		p.i++
	}
	return t
}

func (p *parser) eat(k lexer.Kind) (lexer.Token, bool) {
	if p.at(k) {
		return p.next(), true
	}
	return lexer.Token{}, false
}

func (p *parser) expect(k lexer.Kind) (lexer.Token, *Error) {
	if tok, ok := p.eat(k); ok {
		return tok, nil
	}
	return lexer.Token{}, p.errorHere(fmt.Sprintf("expected %v, found %v", k, p.cur().Kind))
}

func (p *parser) errorHere(msg string) *Error {
	return &Error{Msg: msg, Line: p.cur().Line, Col: p.cur().Col}
}

func (p *parser) pos() Pos {
	return Pos{Line: p.cur().Line, Col: p.cur().Col}
}

// syncToClauseEnd skips past the next clause terminator.
func (p *parser) syncToClauseEnd() {
	for !p.at(lexer.EOF) {
		if p.next().Kind == lexer.Dot {
			return
		}
	}
}

func (p *parser) parseClause(prog *Program) *Error {
	switch p.cur().Kind {
	case lexer.At, lexer.Plus, lexer.Minus:
		plan, err := p.parsePlan()
		if err != nil {
			return err
		}
		prog.Plans = append(prog.Plans, plan)
		return nil
	case lexer.Include:
		inc, err := p.parseInclude()
		if err != nil {
			return err
		}
		prog.Includes = append(prog.Includes, inc)
		return nil
	}

	pos := p.pos()
	head, err := p.parseArith()
	if err != nil {
		return err
	}
	if _, _, ok := term.Indicator(head); !ok {
		return &Error{Msg: fmt.Sprintf("%s cannot head a clause", head), Line: pos.Line, Col: pos.Col}
	}

	if _, ok := p.eat(lexer.Define); ok {
		bodyTerm, err := p.parseOr()
		if err != nil {
			return err
		}
		body, exprErr := p.toExpr(bodyTerm)
		if exprErr != nil {
			return exprErr
		}
		if _, err := p.expect(lexer.Dot); err != nil {
			return err
		}
		prog.Rules = append(prog.Rules, Rule{Head: head, Body: body, Pos: pos})
		return nil
	}

	if _, err := p.expect(lexer.Dot); err != nil {
		return err
	}
	prog.Beliefs = append(prog.Beliefs, Belief{Term: head, Pos: pos})
	return nil
}

func (p *parser) parseInclude() (Include, *Error) {
	pos := p.pos()
	p.next() // include
	parens := false
	if _, ok := p.eat(lexer.LParen); ok {
		parens = true
	}
	tok, err := p.expect(lexer.String)
	if err != nil {
		return Include{}, err
	}
	if parens {
		if _, err := p.expect(lexer.RParen); err != nil {
			return Include{}, err
		}
	}
	if _, err := p.expect(lexer.Dot); err != nil {
		return Include{}, err
	}
	return Include{Path: tok.Text, Pos: pos}, nil
}

func (p *parser) parsePlan() (Plan, *Error) {
	pos := p.pos()
	plan := Plan{Pos: pos}

	if _, ok := p.eat(lexer.At); ok {
		tok, err := p.expect(lexer.Functor)
		if err != nil {
			return Plan{}, err
		}
		plan.Label = tok.Text
	}

	trigger, err := p.parseTrigger()
	if err != nil {
		return Plan{}, err
	}
	plan.Trigger = trigger

	if _, ok := p.eat(lexer.Colon); ok {
		condTerm, err := p.parseOr()
		if err != nil {
			return Plan{}, err
		}
		cond, exprErr := p.toExpr(condTerm)
		if exprErr != nil {
			return Plan{}, exprErr
		}
		plan.Context = cond
	}

	if _, ok := p.eat(lexer.Arrow); ok {
		body, err := p.parseFormulas(lexer.Dot)
		if err != nil {
			return Plan{}, err
		}
		plan.Body = body
	}

	if _, err := p.expect(lexer.Dot); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

func (p *parser) parseTrigger() (Trigger, *Error) {
	var trig Trigger
	switch p.next().Kind {
	case lexer.Plus:
		trig.Op = OpAdd
	case lexer.Minus:
		trig.Op = OpDel
	default:
		return Trigger{}, p.errorHere("expected '+' or '-' trigger")
	}

	switch {
	case p.at(lexer.Bang):
		p.next()
		trig.Kind = KindAchieve
	case p.at(lexer.Question):
		p.next()
		trig.Kind = KindTest
	default:
		trig.Kind = KindBelief
	}

	t, err := p.parsePrimary()
	if err != nil {
		return Trigger{}, err
	}
	if _, _, ok := term.Indicator(t); !ok {
		return Trigger{}, p.errorHere(fmt.Sprintf("%s cannot trigger a plan", t))
	}
	trig.Term = t
	return trig, nil
}

// parseFormulas parses `;`-separated body formulas up to (but not
// consuming) the given closer.
func (p *parser) parseFormulas(closer lexer.Kind) ([]Formula, *Error) {
	var out []Formula
	for {
		f, err := p.parseFormula()
		if err != nil {
			return nil, err
		}
		if f != nil {
			out = append(out, f)
		}
		if _, ok := p.eat(lexer.Semi); !ok {
			break
		}
		// tolerate a trailing separator before the closer
		if p.at(closer) {
			break
		}
	}
	return out, nil
}

func (p *parser) parseFormula() (Formula, *Error) {
	switch p.cur().Kind {
	case lexer.Bang, lexer.BangBang:
		async := p.next().Kind == lexer.BangBang
		t, err := p.parseGoalTerm()
		if err != nil {
			return nil, err
		}
		return Achieve{Term: t, Async: async}, nil
	case lexer.Question:
		p.next()
		t, err := p.parseGoalTerm()
		if err != nil {
			return nil, err
		}
		return TestGoal{Term: t}, nil
	case lexer.Plus:
		p.next()
		t, err := p.parseGoalTerm()
		if err != nil {
			return nil, err
		}
		return AddBelief{Term: t}, nil
	case lexer.Minus:
		p.next()
		t, err := p.parseGoalTerm()
		if err != nil {
			return nil, err
		}
		return DelBelief{Term: t}, nil
	case lexer.MinusPlus:
		p.next()
		t, err := p.parseGoalTerm()
		if err != nil {
			return nil, err
		}
		return SwapBelief{Term: t}, nil
	case lexer.Builtin:
		pos := p.pos()
		tok := p.next()
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return ActionCall{Name: tok.Text, Args: args, Builtin: true, Pos: pos}, nil
	case lexer.If:
		return p.parseIf()
	case lexer.While:
		p.next()
		cond, body, err := p.parseCondBlock()
		if err != nil {
			return nil, err
		}
		return While{Cond: cond, Body: body}, nil
	case lexer.For:
		p.next()
		cond, body, err := p.parseCondBlock()
		if err != nil {
			return nil, err
		}
		return ForEach{Cond: cond, Body: body}, nil
	case lexer.True:
		p.next()
		return nil, nil // no-op step
	}

	pos := p.pos()
	t, err := p.parseRel()
	if err != nil {
		return nil, err
	}
	if c, ok := t.(term.Compound); ok && isRelFunctor(c.Functor) && len(c.Args) == 2 {
		return Constraint{Expr: Rel{Op: c.Functor, L: c.Args[0], R: c.Args[1]}}, nil
	}
	switch x := t.(type) {
	case term.Atom:
		return ActionCall{Name: string(x), Pos: pos}, nil
	case term.Compound:
		return ActionCall{Name: x.Functor, Args: x.Args, Pos: pos}, nil
	}
	return nil, &Error{Msg: fmt.Sprintf("%s is not a valid body formula", t), Line: pos.Line, Col: pos.Col}
}

func (p *parser) parseIf() (Formula, *Error) {
	p.next() // if
	cond, thenBody, err := p.parseCondBlock()
	if err != nil {
		return nil, err
	}
	f := IfThenElse{Cond: cond, Then: thenBody}
	if _, ok := p.eat(lexer.Else); ok {
		if p.at(lexer.If) {
			nested, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			f.Else = []Formula{nested}
			return f, nil
		}
		elseBody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		f.Else = elseBody
	}
	return f, nil
}

func (p *parser) parseCondBlock() (Expr, []Formula, *Error) {
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, nil, err
	}
	condTerm, err := p.parseOr()
	if err != nil {
		return nil, nil, err
	}
	cond, exprErr := p.toExpr(condTerm)
	if exprErr != nil {
		return nil, nil, exprErr
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, nil, err
	}
	body, blockErr := p.parseBlock()
	if blockErr != nil {
		return nil, nil, blockErr
	}
	return cond, body, nil
}

func (p *parser) parseBlock() ([]Formula, *Error) {
	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}
	if _, ok := p.eat(lexer.RBrace); ok {
		return nil, nil
	}
	body, err := p.parseFormulas(lexer.RBrace)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RBrace); err != nil {
		return nil, err
	}
	return body, nil
}

// parseGoalTerm parses the literal of a goal or belief update.
func (p *parser) parseGoalTerm() (term.Term, *Error) {
	t, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if _, _, ok := term.Indicator(t); !ok {
		return nil, p.errorHere(fmt.Sprintf("%s is not a literal", t))
	}
	return t, nil
}

func (p *parser) parseCallArgs() ([]term.Term, *Error) {
	if _, ok := p.eat(lexer.LParen); !ok {
		return nil, nil
	}
	if _, ok := p.eat(lexer.RParen); ok {
		return nil, nil
	}
	var args []term.Term
	for {
		a, err := p.parseArith()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if _, ok := p.eat(lexer.Comma); !ok {
			break
		}
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	return args, nil
}

// Expression parsing builds a single term tree using operator functors;
// toExpr reinterprets the logical layers afterwards. Parentheses work
// uniformly for logical and arithmetic grouping this way.

func (p *parser) parseOr() (term.Term, *Error) {
	l, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Pipe) {
		p.next()
		r, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l = term.Comp("|", l, r)
	}
	return l, nil
}

func (p *parser) parseAnd() (term.Term, *Error) {
	l, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Amp) {
		p.next()
		r, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		l = term.Comp("&", l, r)
	}
	return l, nil
}

func (p *parser) parseNot() (term.Term, *Error) {
	if _, ok := p.eat(lexer.Not); ok {
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return term.Comp("not", x), nil
	}
	return p.parseRel()
}

var relOps = map[lexer.Kind]string{
	lexer.Lt:        "<",
	lexer.Le:        "<=",
	lexer.Gt:        ">",
	lexer.Ge:        ">=",
	lexer.EqEq:      "==",
	lexer.Ne:        "\\==",
	lexer.Eq:        "=",
	lexer.Decompose: "=..",
}

func isRelFunctor(f string) bool {
	for _, op := range relOps {
		if op == f {
			return true
		}
	}
	return false
}

func (p *parser) parseRel() (term.Term, *Error) {
	l, err := p.parseArith()
	if err != nil {
		return nil, err
	}
	if op, ok := relOps[p.cur().Kind]; ok {
		p.next()
		r, err := p.parseArith()
		if err != nil {
			return nil, err
		}
		return term.Comp(op, l, r), nil
	}
	return l, nil
}

func (p *parser) parseArith() (term.Term, *Error) {
	l, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Plus) || p.at(lexer.Minus) {
		op := "+"
		if p.next().Kind == lexer.Minus {
			op = "-"
		}
		r, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		l = term.Comp(op, l, r)
	}
	return l, nil
}

func (p *parser) parseMul() (term.Term, *Error) {
	l, err := p.parsePow()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.cur().Kind {
		case lexer.Star:
			op = "*"
		case lexer.Slash:
			op = "/"
		case lexer.Div:
			op = "div"
		case lexer.Mod:
			op = "mod"
		default:
			return l, nil
		}
		p.next()
		r, err := p.parsePow()
		if err != nil {
			return nil, err
		}
		l = term.Comp(op, l, r)
	}
}

func (p *parser) parsePow() (term.Term, *Error) {
	l, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if _, ok := p.eat(lexer.Pow); ok {
		r, err := p.parsePow() // right-associative
		if err != nil {
			return nil, err
		}
		return term.Comp("**", l, r), nil
	}
	return l, nil
}

func (p *parser) parseUnary() (term.Term, *Error) {
	if _, ok := p.eat(lexer.Minus); ok {
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		switch n := x.(type) {
		case term.Int:
			return term.Int(-n), nil
		case term.Float:
			return term.Float(-n), nil
		}
		return term.Comp("-", x), nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (term.Term, *Error) {
	switch p.cur().Kind {
	case lexer.Int:
		tok := p.next()
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, &Error{Msg: "invalid integer " + tok.Text, Line: tok.Line, Col: tok.Col}
		}
		return term.Int(n), nil
	case lexer.Float:
		tok := p.next()
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, &Error{Msg: "invalid float " + tok.Text, Line: tok.Line, Col: tok.Col}
		}
		return term.Float(f), nil
	case lexer.String:
		return term.Str(p.next().Text), nil
	case lexer.Variable:
		return term.Var(p.next().Text), nil
	case lexer.True:
		p.next()
		return term.Atom("true"), nil
	case lexer.False:
		p.next()
		return term.Atom("false"), nil
	case lexer.Functor:
		return p.parseLiteralTerm()
	case lexer.LBracket:
		return p.parseList()
	case lexer.LParen:
		p.next()
		t, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen); err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, p.errorHere(fmt.Sprintf("unexpected %v", p.cur().Kind))
}

func (p *parser) parseLiteralTerm() (term.Term, *Error) {
	name := p.next().Text

	var args []term.Term
	if _, ok := p.eat(lexer.LParen); ok {
		for {
			a, err := p.parseArith()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if _, ok := p.eat(lexer.Comma); !ok {
				break
			}
		}
		if _, err := p.expect(lexer.RParen); err != nil {
			return nil, err
		}
	}

	var annots []term.Term
	if p.at(lexer.LBracket) {
		l, err := p.parseList()
		if err != nil {
			return nil, err
		}
		list := l.(term.List)
		if list.Tail != nil {
			return nil, p.errorHere("annotation list cannot have a tail")
		}
		annots = list.Items
	}

	if args == nil && annots == nil {
		return term.Atom(name), nil
	}
	return term.Compound{Functor: name, Args: args, Annots: annots}, nil
}

func (p *parser) parseList() (term.Term, *Error) {
	p.next() // '['
	if _, ok := p.eat(lexer.RBracket); ok {
		return term.List{}, nil
	}

	var items []term.Term
	for {
		item, err := p.parseArith()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if _, ok := p.eat(lexer.Comma); !ok {
			break
		}
	}

	list := term.List{Items: items}
	if _, ok := p.eat(lexer.Pipe); ok {
		tail, err := p.parseArith()
		if err != nil {
			return nil, err
		}
		list.Tail = tail
	}
	if _, err := p.expect(lexer.RBracket); err != nil {
		return nil, err
	}
	return list, nil
}

// toExpr reinterprets a parsed term tree as a logical expression.
func (p *parser) toExpr(t term.Term) (Expr, *Error) {
	switch x := t.(type) {
	case term.Atom:
		switch x {
		case "true":
			return TrueExpr{}, nil
		case "false":
			return FalseExpr{}, nil
		}
		return Lit{Term: x}, nil
	case term.Compound:
		if len(x.Args) == 2 && len(x.Annots) == 0 {
			switch x.Functor {
			case "|":
				return p.toExpr2(x, func(l, r Expr) Expr { return Or{L: l, R: r} })
			case "&":
				return p.toExpr2(x, func(l, r Expr) Expr { return And{L: l, R: r} })
			}
			if isRelFunctor(x.Functor) {
				return Rel{Op: x.Functor, L: x.Args[0], R: x.Args[1]}, nil
			}
		}
		if x.Functor == "not" && len(x.Args) == 1 && len(x.Annots) == 0 {
			inner, err := p.toExpr(x.Args[0])
			if err != nil {
				return nil, err
			}
			return Not{X: inner}, nil
		}
		return Lit{Term: x}, nil
	}
	return nil, p.errorHere(fmt.Sprintf("%s is not a logical expression", t))
}

func (p *parser) toExpr2(c term.Compound, join func(l, r Expr) Expr) (Expr, *Error) {
	l, err := p.toExpr(c.Args[0])
	if err != nil {
		return nil, err
	}
	r, err := p.toExpr(c.Args[1])
	if err != nil {
		return nil, err
	}
	return join(l, r), nil
}
