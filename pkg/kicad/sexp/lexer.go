package sexp

import (
	"bufio"
	"fmt"
	"io"
	"unicode"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenLeftParen
	tokenRightParen
	tokenAtom
	tokenString
)

type token struct {
	kind tokenKind
	text string
}

type lexer struct {
	r      *bufio.Reader
	peeked *rune
}

func newLexer(r io.Reader) *lexer {
	return &lexer{r: bufio.NewReader(r)}
}

func (l *lexer) next() (token, error) {
	// Skip whitespace and # comments
	for {
		ch, err := l.peek()
		if err == io.EOF {
			return token{kind: tokenEOF}, nil
		}
		if err != nil {
			return token{}, err
		}
		if unicode.IsSpace(ch) {
			l.read()
			continue
		}
		if ch == '#' {
			for {
				c, err := l.read()
				if err != nil || c == '\n' {
					break
				}
			}
			continue
		}
		break
	}

	ch, err := l.peek()
	if err == io.EOF {
		return token{kind: tokenEOF}, nil
	}
	if err != nil {
		return token{}, err
	}

	switch ch {
	case '(':
		l.read()
		return token{kind: tokenLeftParen, text: "("}, nil
	case ')':
		l.read()
		return token{kind: tokenRightParen, text: ")"}, nil
	case '"':
		return l.readString()
	default:
		return l.readAtom()
	}
}

func (l *lexer) peek() (rune, error) {
	if l.peeked != nil {
		return *l.peeked, nil
	}
	ch, _, err := l.r.ReadRune()
	if err != nil {
		return 0, err
	}
	l.peeked = &ch
	return ch, nil
}

func (l *lexer) read() (rune, error) {
	if l.peeked != nil {
		ch := *l.peeked
		l.peeked = nil
		return ch, nil
	}
	ch, _, err := l.r.ReadRune()
	return ch, err
}

func (l *lexer) readString() (token, error) {
	l.read() // opening quote

	var out []rune
	for {
		ch, err := l.read()
		if err == io.EOF {
			return token{}, fmt.Errorf("unexpected EOF in string")
		}
		if err != nil {
			return token{}, err
		}
		if ch == '"' {
			// KiCad escapes embedded quotes by doubling them
			next, err := l.peek()
			if err == nil && next == '"' {
				l.read()
				out = append(out, '"')
				continue
			}
			break
		}
		if ch == '\\' {
			next, err := l.read()
			if err != nil {
				return token{}, fmt.Errorf("unexpected EOF after backslash")
			}
			switch next {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			default:
				out = append(out, next)
			}
			continue
		}
		out = append(out, ch)
	}
	return token{kind: tokenString, text: string(out)}, nil
}

func (l *lexer) readAtom() (token, error) {
	var out []rune
	for {
		ch, err := l.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return token{}, err
		}
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
			break
		}
		l.read()
		out = append(out, ch)
	}
	if len(out) == 0 {
		return token{}, fmt.Errorf("empty atom")
	}
	return token{kind: tokenAtom, text: string(out)}, nil
}
