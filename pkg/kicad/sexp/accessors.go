package sexp

import (
	"fmt"
	"strconv"
)

// Typed value extraction helpers. Index 0 is the keyword, 1 the first
// value, and so on, matching the layout of KiCad file nodes.

// Str extracts the atom at index as a string regardless of quoting.
func (e *Expr) Str(index int) (string, error) {
	if e.leaf {
		return "", fmt.Errorf("expected list, got atom %q", e.Atom)
	}
	if index < 0 || index >= len(e.List) {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, len(e.List))
	}
	item := e.List[index]
	if !item.leaf {
		return "", fmt.Errorf("expected atom at index %d, got list", index)
	}
	return item.Atom, nil
}

// Float extracts the atom at index as a float64.
func (e *Expr) Float(index int) (float64, error) {
	s, err := e.Str(index)
	if err != nil {
		return 0, err
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as float: %w", s, err)
	}
	return val, nil
}

// Int extracts the atom at index as an int.
func (e *Expr) Int(index int) (int, error) {
	s, err := e.Str(index)
	if err != nil {
		return 0, err
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as int: %w", s, err)
	}
	return val, nil
}

// FloatOr extracts the atom at index as a float64, returning def when
// the index is absent. Parse failures still surface as the default.
func (e *Expr) FloatOr(index int, def float64) float64 {
	val, err := e.Float(index)
	if err != nil {
		return def
	}
	return val
}
