package mankai

import (
	"strconv"
	"strings"
)

type TokenKind int

const (
	TokenIdentifier TokenKind = iota
	TokenNumber
	TokenString
)

func (k TokenKind) String() string {
	switch k {
	case TokenIdentifier:
		return "identifier"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	default:
		return "unknown"
	}
}

// Token is one lexical unit. For strings Lexeme holds the unescaped content.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Pos    int // rune offset in the source
}

type SexpKind int

const (
	SexpAtom SexpKind = iota
	SexpList
)

// Sexp is a parsed symbolic expression: an atom holding a token, or a list
// of child expressions. The evaluator never mutates it.
type Sexp struct {
	Kind     SexpKind
	Token    Token
	Children []*Sexp
}

func Atom(kind TokenKind, lexeme string) *Sexp {
	return &Sexp{Kind: SexpAtom, Token: Token{Kind: kind, Lexeme: lexeme}}
}

func Ident(name string) *Sexp { return Atom(TokenIdentifier, name) }

func List(children ...*Sexp) *Sexp {
	return &Sexp{Kind: SexpList, Children: children}
}

// IsIdentifier reports whether s is an identifier atom.
func (s *Sexp) IsIdentifier() bool {
	return s.Kind == SexpAtom && s.Token.Kind == TokenIdentifier
}

func (s *Sexp) String() string {
	if s.Kind == SexpList {
		parts := make([]string, len(s.Children))
		for i, c := range s.Children {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	if s.Token.Kind == TokenString {
		return strconv.Quote(s.Token.Lexeme)
	}
	return s.Token.Lexeme
}
