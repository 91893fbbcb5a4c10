// Package sexp provides a lightweight streaming S-expression parser for
// KiCad design files. General-purpose sexp libraries buffer the whole
// input and struggle with multi-megabyte board files; this parser reads
// token by token and never holds more than one expression in flight.
package sexp

import (
	"fmt"
	"io"
	"strings"
)

// Expr is a single S-expression node: either an atom or a list.
type Expr struct {
	// Atom holds the literal text of a leaf node. Empty for lists.
	Atom string
	// Quoted is true when the atom came from a double-quoted string.
	Quoted bool
	// List holds the child expressions of a list node.
	List []*Expr

	leaf bool
}

// IsLeaf reports whether the expression is an atom.
func (e *Expr) IsLeaf() bool { return e.leaf }

// Name returns the keyword of a list node, i.e. the first atom of the
// list. For (at 100 50) it returns "at". Atoms and empty lists return "".
func (e *Expr) Name() string {
	if e.leaf || len(e.List) == 0 {
		return ""
	}
	if first := e.List[0]; first.leaf && !first.Quoted {
		return first.Atom
	}
	return ""
}

// Find returns the first child list whose keyword matches key.
func (e *Expr) Find(key string) (*Expr, bool) {
	if e.leaf {
		return nil, false
	}
	for _, child := range e.List {
		if !child.leaf && child.Name() == key {
			return child, true
		}
	}
	return nil, false
}

// FindAll returns every child list whose keyword matches key.
func (e *Expr) FindAll(key string) []*Expr {
	if e.leaf {
		return nil
	}
	var out []*Expr
	for _, child := range e.List {
		if !child.leaf && child.Name() == key {
			out = append(out, child)
		}
	}
	return out
}

// Items returns the elements of a list after the keyword.
func (e *Expr) Items() []*Expr {
	if e.leaf || len(e.List) <= 1 {
		return nil
	}
	return e.List[1:]
}

// String renders the expression back to S-expression text. Intended for
// debugging output, not for faithful round-trips.
func (e *Expr) String() string {
	if e.leaf {
		if e.Quoted {
			return `"` + e.Atom + `"`
		}
		return e.Atom
	}
	parts := make([]string, len(e.List))
	for i, child := range e.List {
		parts[i] = child.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Parse reads all top-level S-expressions from r.
func Parse(r io.Reader) ([]*Expr, error) {
	lex := newLexer(r)
	var result []*Expr
	for {
		tok, err := lex.next()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokenEOF {
			return result, nil
		}
		expr, err := parseFrom(lex, tok)
		if err != nil {
			return nil, err
		}
		result = append(result, expr)
	}
}

// ParseString parses all top-level S-expressions from a string.
func ParseString(s string) ([]*Expr, error) {
	return Parse(strings.NewReader(s))
}

func parseFrom(lex *lexer, tok token) (*Expr, error) {
	switch tok.kind {
	case tokenAtom:
		return &Expr{Atom: tok.text, leaf: true}, nil
	case tokenString:
		return &Expr{Atom: tok.text, Quoted: true, leaf: true}, nil
	case tokenLeftParen:
		list := &Expr{}
		for {
			tok, err := lex.next()
			if err != nil {
				return nil, err
			}
			switch tok.kind {
			case tokenRightParen:
				return list, nil
			case tokenEOF:
				return nil, fmt.Errorf("unexpected EOF in list")
			default:
				child, err := parseFrom(lex, tok)
				if err != nil {
					return nil, err
				}
				list.List = append(list.List, child)
			}
		}
	case tokenRightParen:
		return nil, fmt.Errorf("unexpected ')'")
	default:
		return nil, fmt.Errorf("unexpected token %q", tok.text)
	}
}
