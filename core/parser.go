package mankai

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrIncomplete is wrapped by reader errors caused by input that ends
// inside a list or string; more input may complete it.
var ErrIncomplete = errors.New("incomplete expression")

type parser struct {
	input []rune
	pos   int
}

// Parse reads exactly one expression from input.
func Parse(input string) (*Sexp, error) {
	p := &parser{input: []rune(input), pos: 0}
	p.skipWhitespace()
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("empty input")
	}
	node, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.pos < len(p.input) {
		return nil, fmt.Errorf("unexpected input after expression at position %d", p.pos)
	}
	return node, nil
}

// ParseAll reads every top-level expression in input, in order.
func ParseAll(input string) ([]*Sexp, error) {
	p := &parser{input: []rune(input), pos: 0}
	var forms []*Sexp
	for {
		p.skipWhitespace()
		if p.pos >= len(p.input) {
			return forms, nil
		}
		node, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		forms = append(forms, node)
	}
}

func (p *parser) parseNode() (*Sexp, error) {
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("unexpected end of input")
	}
	switch p.input[p.pos] {
	case '(':
		return p.parseList()
	case ')':
		return nil, fmt.Errorf("unexpected ')' at position %d", p.pos)
	case '"':
		return p.parseString()
	default:
		return p.parseAtom()
	}
}

func (p *parser) parseList() (*Sexp, error) {
	start := p.pos
	p.pos++ // skip '('
	children := []*Sexp{}
	for {
		p.skipWhitespace()
		if p.pos >= len(p.input) {
			return nil, fmt.Errorf("unclosed list opened at position %d: %w", start, ErrIncomplete)
		}
		if p.input[p.pos] == ')' {
			p.pos++
			return &Sexp{Kind: SexpList, Children: children}, nil
		}
		child, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
}

func (p *parser) parseString() (*Sexp, error) {
	start := p.pos
	p.pos++ // skip opening '"'
	var buf strings.Builder
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if ch == '\\' {
			p.pos++
			if p.pos >= len(p.input) {
				return nil, fmt.Errorf("unexpected end of input in string escape: %w", ErrIncomplete)
			}
			esc := p.input[p.pos]
			switch esc {
			case 'n':
				buf.WriteRune('\n')
			case 't':
				buf.WriteRune('\t')
			case '\\':
				buf.WriteRune('\\')
			case '"':
				buf.WriteRune('"')
			default:
				return nil, fmt.Errorf("unknown escape sequence: \\%c", esc)
			}
			p.pos++
			continue
		}
		if ch == '"' {
			p.pos++
			return &Sexp{Kind: SexpAtom, Token: Token{Kind: TokenString, Lexeme: buf.String(), Pos: start}}, nil
		}
		buf.WriteRune(ch)
		p.pos++
	}
	return nil, fmt.Errorf("unclosed string at position %d: %w", start, ErrIncomplete)
}

func (p *parser) parseAtom() (*Sexp, error) {
	start := p.pos
	for p.pos < len(p.input) && !isDelimiter(p.input[p.pos]) {
		p.pos++
	}
	lexeme := string(p.input[start:p.pos])
	if lexeme == "" {
		return nil, fmt.Errorf("unexpected character: %c", p.input[start])
	}

	kind := TokenIdentifier
	if _, err := strconv.ParseFloat(lexeme, 64); (err == nil || errors.Is(err, strconv.ErrRange)) && !isWordNumber(lexeme) {
		kind = TokenNumber
	}
	return &Sexp{Kind: SexpAtom, Token: Token{Kind: kind, Lexeme: lexeme, Pos: start}}, nil
}

// isWordNumber filters spellings ParseFloat accepts that should stay
// identifiers, such as "inf" or "NaN".
func isWordNumber(lexeme string) bool {
	s := strings.TrimLeft(lexeme, "+-")
	return s == "" || !unicode.IsDigit(rune(s[0])) && s[0] != '.'
}

func (p *parser) skipWhitespace() {
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if ch == ';' {
			for p.pos < len(p.input) && p.input[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		if !unicode.IsSpace(ch) {
			break
		}
		p.pos++
	}
}

func isDelimiter(ch rune) bool {
	return unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' || ch == ';'
}
