// Package lexer turns AgentSpeak source text into a token stream with
// line/column positions. Comments and whitespace are dropped; an
// unterminated block comment or string is reported as a lexical error
// at its opening position.
package lexer

import "fmt"

// Kind identifies a token class.
type Kind int

const (
	EOF Kind = iota

	Functor  // lowercase identifier: `foo`
	Variable // uppercase identifier or `_`: `Foo`
	Int      // `42`
	Float    // `42e-3`, `3.14`
	String   // `"foo\n"`
	Builtin  // leading-dot action name: `.print`

	True
	False
	If
	Else
	While
	For
	Not
	Div
	Mod
	Include
	Begin
	End

	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace

	Arrow       // <-
	Define      // :-
	Colon       // :
	ForkJoinAnd // |&|
	ForkJoinXor // |||
	BangBang    // !!
	Bang        // !
	Question    // ?
	MinusPlus   // -+

	Plus      // +
	Minus     // -
	Slash     // /
	Pow       // **
	Star      // *
	Amp       // &
	Pipe      // |
	Le        // <=
	Ge        // >=
	Ne        // \==
	EqEq      // ==
	Decompose // =..
	Eq        // =
	Lt        // <
	Gt        // >

	Semi  // ;
	Comma // ,
	Dot   // .
	At    // @

	Unknown
)

var kindNames = map[Kind]string{
	EOF:         "end of input",
	Functor:     "functor",
	Variable:    "variable",
	Int:         "integer",
	Float:       "float",
	String:      "string",
	Builtin:     "builtin action",
	True:        "'true'",
	False:       "'false'",
	If:          "'if'",
	Else:        "'else'",
	While:       "'while'",
	For:         "'for'",
	Not:         "'not'",
	Div:         "'div'",
	Mod:         "'mod'",
	Include:     "'include'",
	Begin:       "'begin'",
	End:         "'end'",
	LParen:      "'('",
	RParen:      "')'",
	LBracket:    "'['",
	RBracket:    "']'",
	LBrace:      "'{'",
	RBrace:      "'}'",
	Arrow:       "'<-'",
	Define:      "':-'",
	Colon:       "':'",
	ForkJoinAnd: "'|&|'",
	ForkJoinXor: "'|||'",
	BangBang:    "'!!'",
	Bang:        "'!'",
	Question:    "'?'",
	MinusPlus:   "'-+'",
	Plus:        "'+'",
	Minus:       "'-'",
	Slash:       "'/'",
	Pow:         "'**'",
	Star:        "'*'",
	Amp:         "'&'",
	Pipe:        "'|'",
	Le:          "'<='",
	Ge:          "'>='",
	Ne:          "'\\=='",
	EqEq:        "'=='",
	Decompose:   "'=..'",
	Eq:          "'='",
	Lt:          "'<'",
	Gt:          "'>'",
	Semi:        "';'",
	Comma:       "','",
	Dot:         "'.'",
	At:          "'@'",
	Unknown:     "unknown token",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a lexed token with its source position (1-based).
type Token struct {
	Kind Kind
	Text string
	Line int
	Col  int
}

// Error is a lexical error with its source position.
type Error struct {
	Msg  string
	Line int
	Col  int
}

func (e Error) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Col, e.Msg)
}

var keywords = map[string]Kind{
	"true":    True,
	"false":   False,
	"if":      If,
	"else":    Else,
	"while":   While,
	"for":     For,
	"not":     Not,
	"div":     Div,
	"mod":     Mod,
	"include": Include,
	"begin":   Begin,
	"end":     End,
}
