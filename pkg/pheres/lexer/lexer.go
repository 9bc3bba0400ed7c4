package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type scanner struct {
	src    string
	pos    int
	line   int
	col    int
	tokens []Token
	errs   []Error
}

// Scan tokenizes src. The returned token slice always ends with an EOF
// token. Lexical errors are collected rather than aborting the scan so
// clauses ahead of a bad region still reach the parser.
func Scan(src string) ([]Token, []Error) {
	s := &scanner{src: src, line: 1, col: 1}
	for {
		tok, done := s.next()
		if done {
			s.tokens = append(s.tokens, Token{Kind: EOF, Line: s.line, Col: s.col})
			return s.tokens, s.errs
		}
		s.tokens = append(s.tokens, tok)
	}
}

func (s *scanner) peek() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) peekAt(n int) byte {
	if s.pos+n >= len(s.src) {
		return 0
	}
	return s.src[s.pos+n]
}

func (s *scanner) advance() byte {
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

func (s *scanner) errorAt(line, col int, msg string) {
	s.errs = append(s.errs, Error{Msg: msg, Line: line, Col: col})
}

// next returns the next non-trivia token, or done=true at end of input.
func (s *scanner) next() (Token, bool) {
	s.skipTrivia()
	if s.pos >= len(s.src) {
		return Token{}, true
	}

	line, col := s.line, s.col
	c := s.peek()

	switch {
	case isDigit(c):
		return s.scanNumber(line, col), false
	case c == '"':
		return s.scanString(line, col), false
	case isIdentStart(c):
		return s.scanIdent(line, col), false
	}

	tok := func(kind Kind, text string) Token {
		for range text {
			s.advance()
		}
		return Token{Kind: kind, Text: text, Line: line, Col: col}
	}

	switch c {
	case '(':
		return tok(LParen, "("), false
	case ')':
		return tok(RParen, ")"), false
	case '[':
		return tok(LBracket, "["), false
	case ']':
		return tok(RBracket, "]"), false
	case '{':
		return tok(LBrace, "{"), false
	case '}':
		return tok(RBrace, "}"), false
	case ';':
		return tok(Semi, ";"), false
	case ',':
		return tok(Comma, ","), false
	case '@':
		return tok(At, "@"), false
	case '&':
		return tok(Amp, "&"), false
	case '+':
		return tok(Plus, "+"), false
	case '?':
		return tok(Question, "?"), false
	case '!':
		if s.peekAt(1) == '!' {
			return tok(BangBang, "!!"), false
		}
		return tok(Bang, "!"), false
	case '-':
		switch s.peekAt(1) {
		case '+':
			return tok(MinusPlus, "-+"), false
		}
		return tok(Minus, "-"), false
	case '*':
		if s.peekAt(1) == '*' {
			return tok(Pow, "**"), false
		}
		return tok(Star, "*"), false
	case '/':
		return tok(Slash, "/"), false
	case '|':
		if s.peekAt(1) == '&' && s.peekAt(2) == '|' {
			return tok(ForkJoinAnd, "|&|"), false
		}
		if s.peekAt(1) == '|' && s.peekAt(2) == '|' {
			return tok(ForkJoinXor, "|||"), false
		}
		return tok(Pipe, "|"), false
	case ':':
		if s.peekAt(1) == '-' {
			return tok(Define, ":-"), false
		}
		return tok(Colon, ":"), false
	case '<':
		switch s.peekAt(1) {
		case '-':
			return tok(Arrow, "<-"), false
		case '=':
			return tok(Le, "<="), false
		}
		return tok(Lt, "<"), false
	case '>':
		if s.peekAt(1) == '=' {
			return tok(Ge, ">="), false
		}
		return tok(Gt, ">"), false
	case '=':
		if s.peekAt(1) == '=' {
			return tok(EqEq, "=="), false
		}
		if s.peekAt(1) == '.' && s.peekAt(2) == '.' {
			return tok(Decompose, "=.."), false
		}
		return tok(Eq, "="), false
	case '\\':
		if s.peekAt(1) == '=' && s.peekAt(2) == '=' {
			return tok(Ne, "\\=="), false
		}
	case '.':
		if isLower(s.peekAt(1)) {
			s.advance() // the dot
			start := s.pos
			for isIdentPart(s.peek()) {
				s.advance()
			}
			return Token{Kind: Builtin, Text: s.src[start:s.pos], Line: line, Col: col}, false
		}
		return tok(Dot, "."), false
	}

	s.advance()
	s.errorAt(line, col, "unexpected character "+quoteRune(s.src[s.pos-1:]))
	return Token{Kind: Unknown, Text: s.src[s.pos-1 : s.pos], Line: line, Col: col}, false
}

func (s *scanner) skipTrivia() {
	for s.pos < len(s.src) {
		c := s.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			s.advance()
		case c == '#':
			s.skipLineComment()
		case c == '/' && s.peekAt(1) == '/':
			s.skipLineComment()
		case c == '/' && s.peekAt(1) == '*':
			s.skipBlockComment()
		default:
			return
		}
	}
}

func (s *scanner) skipLineComment() {
	for s.pos < len(s.src) && s.peek() != '\n' {
		s.advance()
	}
}

func (s *scanner) skipBlockComment() {
	line, col := s.line, s.col
	s.advance() // '/'
	s.advance() // '*'
	for s.pos < len(s.src) {
		if s.peek() == '*' && s.peekAt(1) == '/' {
			s.advance()
			s.advance()
			return
		}
		s.advance()
	}
	s.errorAt(line, col, "unterminated block comment")
}

func (s *scanner) scanString(line, col int) Token {
	s.advance() // opening quote
	var b strings.Builder
	for s.pos < len(s.src) {
		c := s.advance()
		switch c {
		case '"':
			return Token{Kind: String, Text: b.String(), Line: line, Col: col}
		case '\\':
			if s.pos >= len(s.src) {
				break
			}
			esc := s.advance()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte(esc)
			}
		default:
			b.WriteByte(c)
		}
	}
	s.errorAt(line, col, "unterminated string")
	return Token{Kind: String, Text: b.String(), Line: line, Col: col}
}

func (s *scanner) scanNumber(line, col int) Token {
	start := s.pos
	kind := Int
	for isDigit(s.peek()) {
		s.advance()
	}
	// Fractional part only when a digit follows the dot, so a clause
	// terminator after a number still lexes as Dot.
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		kind = Float
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	if c := s.peek(); c == 'e' || c == 'E' {
		next := s.peekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(s.peekAt(2))) {
			kind = Float
			s.advance()
			if c := s.peek(); c == '+' || c == '-' {
				s.advance()
			}
			for isDigit(s.peek()) {
				s.advance()
			}
		}
	}
	return Token{Kind: kind, Text: s.src[start:s.pos], Line: line, Col: col}
}

func (s *scanner) scanIdent(line, col int) Token {
	start := s.pos
	first := s.peek()
	for isIdentPart(s.peek()) {
		s.advance()
	}
	text := s.src[start:s.pos]

	if isLower(first) {
		if kw, ok := keywords[text]; ok {
			return Token{Kind: kw, Text: text, Line: line, Col: col}
		}
		return Token{Kind: Functor, Text: text, Line: line, Col: col}
	}
	return Token{Kind: Variable, Text: text, Line: line, Col: col}
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isLower(c byte) bool      { return c >= 'a' && c <= 'z' }
func isUpper(c byte) bool      { return c >= 'A' && c <= 'Z' }
func isIdentStart(c byte) bool { return isLower(c) || isUpper(c) || c == '_' }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }

func quoteRune(rest string) string {
	r, _ := utf8.DecodeRuneInString(rest)
	if r == utf8.RuneError || !unicode.IsPrint(r) {
		return "(non-printable)"
	}
	return "'" + string(r) + "'"
}
