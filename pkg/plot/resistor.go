package plot

import (
	"fmt"
	"strconv"
	"strings"
)

// ResistorValue overrides how one reference is color-coded.
type ResistorValue struct {
	Value     string // Replaces the footprint value when non-empty
	FlipBands bool
}

// Multiplier prefixes of engineering notation, e.g. 4k7 or 0R5. Order
// matters: lowercase m (milli) must win over M (mega) when both could
// match, and the prefix may sit in place of the decimal point.
var resistancePrefixes = []struct {
	prefix string
	factor float64
}{
	{"m", 1e-3},
	{"R", 1},
	{"K", 1e3},
	{"k", 1e3},
	{"M", 1e6},
	{"G", 1e9},
}

// ReadResistance parses a resistance in engineering notation and
// returns it in ohms. "4k7", "4.7k" and "4700" are all 4700.
func ReadResistance(value string) (float64, error) {
	v := value
	for _, unit := range []string{"Ω", "Ohms", "Ohm"} {
		v = strings.ReplaceAll(v, unit, "")
	}
	v = strings.TrimSpace(v)
	v = strings.ReplaceAll(v, " ", "")

	for _, p := range resistancePrefixes {
		if !strings.Contains(v, p.prefix) {
			continue
		}
		whole, frac, _ := strings.Cut(v, p.prefix)
		var n float64
		if whole != "" {
			w, err := strconv.ParseFloat(whole, 64)
			if err != nil {
				return 0, fmt.Errorf("cannot parse %q to resistance", value)
			}
			n += w
		}
		if frac != "" {
			f, err := strconv.ParseFloat("0."+frac, 64)
			if err != nil {
				return 0, fmt.Errorf("cannot parse %q to resistance", value)
			}
			n += f
		}
		return n * p.factor, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q to resistance", value)
	}
	return f, nil
}

// resistanceWithTolerance splits a footprint value into resistance and
// tolerance. The tolerance token is optional and defaults to 5%; when
// present it must be one of the style's tolerance band keys.
func resistanceWithTolerance(value string, style *Style) (float64, string, error) {
	resText, tolText, hasTol := strings.Cut(value, " ")
	res, err := ReadResistance(resText)
	if err != nil {
		return 0, "", err
	}
	tolerance := "5%"
	if hasTol {
		t := strings.ReplaceAll(strings.TrimSpace(tolText), " ", "")
		if strings.Contains(t, "%") {
			if _, ok := style.BandColor(t); !ok {
				return 0, "", fmt.Errorf("invalid resistor tolerance %s", tolText)
			}
			tolerance = t
		}
	}
	return res, tolerance, nil
}
