// Package plot composes per-layer vector plots and footprint geometry
// into a single styled SVG drawing of a populated board. The outline is
// reconstructed from disordered edge fragments, component artwork is
// placed, deduplicated and recolored, and everything is assembled by a
// plotter facade into one document.
package plot

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// PathFragment is one open line or arc segment from a raw layer plot,
// in absolute coordinates. Arc args follow the SVG arc command: rx, ry,
// x-rotation, large-arc flag, sweep flag.
type PathFragment struct {
	Kind  byte // 'L' or 'A'
	Start [2]float64
	End   [2]float64
	Args  [5]float64
}

// ParseFragment reads a single M..L or M..A path string.
func ParseFragment(d string) (*PathFragment, error) {
	tokens := splitPathTokens(d)
	if len(tokens) < 3 || tokens[0] != "M" {
		return nil, fmt.Errorf("only paths with absolute position are supported: %q", d)
	}
	var f PathFragment
	var err error
	if f.Start, err = parsePoint(tokens[1], tokens[2]); err != nil {
		return nil, fmt.Errorf("malformed path %q: %w", d, err)
	}
	tokens = tokens[3:]
	if len(tokens) == 0 {
		return nil, fmt.Errorf("malformed path %q: missing segment", d)
	}
	switch tokens[0] {
	case "L":
		if len(tokens) < 3 {
			return nil, fmt.Errorf("malformed path %q: short line", d)
		}
		f.Kind = 'L'
		if f.End, err = parsePoint(tokens[1], tokens[2]); err != nil {
			return nil, fmt.Errorf("malformed path %q: %w", d, err)
		}
	case "A":
		if len(tokens) < 8 {
			return nil, fmt.Errorf("malformed path %q: short arc", d)
		}
		f.Kind = 'A'
		for i := 0; i < 5; i++ {
			if f.Args[i], err = strconv.ParseFloat(tokens[1+i], 64); err != nil {
				return nil, fmt.Errorf("malformed path %q: %w", d, err)
			}
		}
		if f.End, err = parsePoint(tokens[6], tokens[7]); err != nil {
			return nil, fmt.Errorf("malformed path %q: %w", d, err)
		}
	default:
		return nil, fmt.Errorf("unsupported path element %q", tokens[0])
	}
	return &f, nil
}

// Flip swaps the endpoints. Flipping an arc inverts the sweep flag so
// the rendered shape is preserved.
func (f *PathFragment) Flip() {
	f.Start, f.End = f.End, f.Start
	if f.Kind == 'A' {
		if f.Args[4] < 0.5 {
			f.Args[4] = 1
		} else {
			f.Args[4] = 0
		}
	}
}

// Format re-emits the fragment as path text. The leading moveto is only
// written for the first fragment of a chain.
func (f *PathFragment) Format(first bool) string {
	var b strings.Builder
	if first {
		fmt.Fprintf(&b, " M %s %s ", fmtNum(f.Start[0]), fmtNum(f.Start[1]))
	}
	b.WriteByte(f.Kind)
	if f.Kind == 'A' {
		for _, a := range f.Args {
			b.WriteByte(' ')
			b.WriteString(fmtNum(a))
		}
	}
	fmt.Fprintf(&b, " %s %s ", fmtNum(f.End[0]), fmtNum(f.End[1]))
	return b.String()
}

func parsePoint(xs, ys string) ([2]float64, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return [2]float64{}, err
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return [2]float64{}, err
	}
	return [2]float64{x, y}, nil
}

// splitPathTokens separates command letters from numbers. Commas and
// whitespace delimit; a command letter always ends the current number.
func splitPathTokens(d string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range d {
		switch {
		case r == ',' || unicode.IsSpace(r):
			flush()
		case r == 'M' || r == 'L' || r == 'A' || unicode.IsLetter(r) && r != 'e' && r != 'E':
			flush()
			tokens = append(tokens, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func fmtNum(f float64) string {
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
