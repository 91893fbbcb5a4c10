package svg

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Unit policy: the design engine plots in KiCad native units (integer
// nanometers) and the output document's viewBox is kept in the same
// units, so KiToSVG is the identity. Physical canvas dimensions are
// expressed in millimeters.

// MMToKi converts millimeters to KiCad native units, rounding to the
// nearest nanometer so float noise cannot shift a coordinate.
func MMToKi(mm float64) int {
	return int(math.Round(mm * 1e6))
}

// KiToMM converts KiCad native units to millimeters.
func KiToMM(v int) float64 {
	return float64(v) / 1e6
}

// KiToSVG converts KiCad native units to SVG user units.
func KiToSVG(v int) int {
	return v
}

// SVGToKi converts SVG user units back to KiCad native units.
func SVGToKi(v int) int {
	return v
}

var lengthRe = regexp.MustCompile(`([-+]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][-+]?\d+)?)\s*(pt|pc|mm|cm|in|px)?`)

// ParseLength splits a CSS length into its numeric value and unit.
func ParseLength(val string) (float64, string, error) {
	m := lengthRe.FindStringSubmatch(val)
	if m == nil {
		return 0, "", fmt.Errorf("cannot parse length %q", val)
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", fmt.Errorf("cannot parse length %q: %w", val, err)
	}
	return f, m[2], nil
}

// ToKiUnits reads a CSS length (px at 96 dpi when unitless) and returns
// it in KiCad native units.
func ToKiUnits(val string) (int, error) {
	value, unit, err := ParseLength(val)
	if err != nil {
		return 0, err
	}
	switch unit {
	case "", "px":
		return MMToKi(value * 25.4 / 96), nil
	case "pt":
		return MMToKi(value * 25.4 / 72), nil
	case "pc":
		return MMToKi(value * 25.4 / 6), nil
	case "mm":
		return MMToKi(value), nil
	case "cm":
		return MMToKi(value * 10), nil
	case "in":
		return MMToKi(value * 25.4), nil
	}
	return 0, fmt.Errorf("unsupported unit in %q", val)
}

// ToUserUnits reads a CSS length and returns it in SVG user units at the
// 90 dpi convention the artwork libraries were authored with.
func ToUserUnits(val string) (float64, error) {
	value, unit, err := ParseLength(val)
	if err != nil {
		return 0, err
	}
	switch unit {
	case "", "px":
		return value, nil
	case "pt":
		return 1.25 * value, nil
	case "pc":
		return 15 * value, nil
	case "mm":
		return 3.543307 * value, nil
	case "cm":
		return 35.43307 * value, nil
	case "in":
		return 90 * value, nil
	}
	return 0, fmt.Errorf("unsupported unit in %q", val)
}
