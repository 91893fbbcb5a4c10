package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStyleSurfaces(t *testing.T) {
	s := DefaultStyle()
	assert.Equal(t, "#417e5a", s.Surface("copper"))
	assert.Equal(t, "#4ca06c", s.Surface("board"))
	assert.Equal(t, "#000000", s.Surface("unknown"))

	c, ok := s.BandColor("4")
	assert.True(t, ok)
	assert.Equal(t, "#ffff00", c)
	c, ok = s.BandColor("5%")
	assert.True(t, ok)
	assert.Equal(t, "#ffc800", c)
	_, ok = s.BandColor("3%")
	assert.False(t, ok)
}

func TestLoadStyle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"copper": "#111111",
		"board": "#222222",
		"clad": "#333333",
		"silk": "#444444",
		"pads": "#555555",
		"outline": "#666666",
		"vcut": "#777777",
		"highlight-style": "fill:#00ff00;",
		"highlight-offset": 2,
		"highlight-on-top": true,
		"highlight-padding": 3
	}`), 0o644))

	style, err := LoadStyle(path)
	require.NoError(t, err)
	assert.Equal(t, "#111111", style.Copper)
	assert.True(t, style.HighlightOnTop)
	assert.Equal(t, 3.0, style.HighlightPadding)
	// Keys absent from the file keep their defaults
	assert.Equal(t, "#8a8a8a", style.Paste)
	_, ok := style.BandColor("0")
	assert.True(t, ok)
}

func TestLoadStyleMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"copper": "#111111"}`), 0o644))
	_, err := LoadStyle(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "board")
}

func TestLoadStyleMissingFile(t *testing.T) {
	_, err := LoadStyle(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
