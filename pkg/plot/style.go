package plot

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Style maps named board surfaces to colors plus the options governing
// highlights and resistor band recoloring. Read-only during a plot.
type Style struct {
	Copper  string `json:"copper"`
	Board   string `json:"board"`
	Silk    string `json:"silk"`
	Pads    string `json:"pads"`
	Outline string `json:"outline"`
	Clad    string `json:"clad"`
	VCut    string `json:"vcut"`
	Paste   string `json:"paste"`

	HighlightOnTop   bool    `json:"highlight-on-top"`
	HighlightStyle   string  `json:"highlight-style"`
	HighlightPadding float64 `json:"highlight-padding"` // mm
	HighlightOffset  float64 `json:"highlight-offset"`

	// Keyed by band digit ("0".."9"), power of ten, or tolerance ("5%").
	BandColors map[string]string `json:"tht-resistor-band-colors"`
}

// DefaultStyle returns the builtin color scheme.
func DefaultStyle() *Style {
	return &Style{
		Copper:           "#417e5a",
		Board:            "#4ca06c",
		Silk:             "#f0f0f0",
		Pads:             "#b5ae30",
		Outline:          "#000000",
		Clad:             "#9c6b28",
		VCut:             "#bf2600",
		Paste:            "#8a8a8a",
		HighlightOnTop:   false,
		HighlightStyle:   "stroke:none;fill:#ff0000;opacity:0.5;",
		HighlightPadding: 1.5,
		HighlightOffset:  0,
		BandColors: map[string]string{
			"0": "#000000",
			"1": "#805500",
			"2": "#ff0000",
			"3": "#ff8000",
			"4": "#ffff00",
			"5": "#00cc11",
			"6": "#0000cc",
			"7": "#cc00cc",
			"8": "#666666",
			"9": "#cccccc",

			"1%":    "#805500",
			"2%":    "#ff0000",
			"0.5%":  "#00cc11",
			"0.25%": "#0000cc",
			"0.1%":  "#cc00cc",
			"0.05%": "#666666",
			"5%":    "#ffc800",
			"10%":   "#d9d9d9",
		},
	}
}

// Surface returns the color of a named surface. Unknown names map to
// black so broken styles are visible instead of invisible.
func (s *Style) Surface(name string) string {
	switch name {
	case "copper":
		return s.Copper
	case "board":
		return s.Board
	case "silk":
		return s.Silk
	case "pads":
		return s.Pads
	case "outline":
		return s.Outline
	case "clad":
		return s.Clad
	case "vcut":
		return s.VCut
	case "paste":
		return s.Paste
	}
	return "#000000"
}

// BandColor looks up a resistor band color by digit, power or
// tolerance key.
func (s *Style) BandColor(key string) (string, bool) {
	c, ok := s.BandColors[key]
	return c, ok
}

var requiredStyleKeys = []string{
	"copper", "board", "clad", "silk", "pads", "outline", "vcut",
	"highlight-style", "highlight-offset", "highlight-on-top",
	"highlight-padding",
}

// LoadStyle reads a JSON style file. Keys absent from the file keep
// their builtin defaults, but the required surface and highlight keys
// must all be present.
func LoadStyle(path string) (*Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open style %s: %w", path, err)
	}
	var present map[string]json.RawMessage
	if err := json.Unmarshal(data, &present); err != nil {
		return nil, fmt.Errorf("cannot parse style %s: %w", path, err)
	}
	var missing []string
	for _, key := range requiredStyleKeys {
		if _, ok := present[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("missing following keys in style %s: %s",
			path, strings.Join(missing, ", "))
	}
	style := DefaultStyle()
	if err := json.Unmarshal(data, style); err != nil {
		return nil, fmt.Errorf("cannot parse style %s: %w", path, err)
	}
	return style, nil
}
