// Package lex turns Mood source text into a token stream.
package lex

import "github.com/moodlang/mood/diag"

// Kind discriminates tokens.
type Kind int

const (
	EOF Kind = iota

	// Keywords. The lexer recognises all of them; if, else, while and
	// return have no grammar rule yet and are rejected by the parser.
	Fn
	Let
	Pub
	If
	Else
	While
	Return
	Enum
	Struct

	// Punctuation and operators.
	LParen
	RParen
	LBrace
	RBrace
	Colon
	ColonColon
	Comma
	Semicolon
	Assign
	Eq
	Plus
	Minus
	Star
	Slash
	Dot
	Underscore

	Ident
	Number
)

var kindNames = map[Kind]string{
	EOF:        "end of file",
	Fn:         "fn",
	Let:        "let",
	Pub:        "pub",
	If:         "if",
	Else:       "else",
	While:      "while",
	Return:     "return",
	Enum:       "enum",
	Struct:     "struct",
	LParen:     "(",
	RParen:     ")",
	LBrace:     "{",
	RBrace:     "}",
	Colon:      ":",
	ColonColon: "::",
	Comma:      ",",
	Semicolon:  ";",
	Assign:     "=",
	Eq:         "==",
	Plus:       "+",
	Minus:      "-",
	Star:       "*",
	Slash:      "/",
	Dot:        ".",
	Underscore: "_",
	Ident:      "identifier",
	Number:     "number",
}

func (k Kind) String() string { return kindNames[k] }

var keywords = map[string]Kind{
	"fn":     Fn,
	"let":    Let,
	"pub":    Pub,
	"if":     If,
	"else":   Else,
	"while":  While,
	"return": Return,
	"enum":   Enum,
	"struct": Struct,
}

// Token is one lexeme. Text is set for Ident and Number tokens.
type Token struct {
	Kind Kind
	Text string
	Span diag.Location
}
