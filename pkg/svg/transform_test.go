package svg

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransformComposesLeftToRight(t *testing.T) {
	// Local rotate applies before the translate that precedes it in the
	// chain: (1,0) rotates to (0,1), then moves to (10,1).
	m := ParseTransform("translate(10,0) rotate(90)")
	x, y := m.Apply(1, 0)
	assert.InDelta(t, 10, x, 1e-9)
	assert.InDelta(t, 1, y, 1e-9)
}

func TestParseTransformPivotIsFixedPoint(t *testing.T) {
	m := ParseTransform("rotate(180,5,5)")
	x, y := m.Apply(5, 5)
	assert.InDelta(t, 5, x, 1e-9)
	assert.InDelta(t, 5, y, 1e-9)

	// A point offset from the pivot lands mirrored across it
	x, y = m.Apply(6, 5)
	assert.InDelta(t, 4, x, 1e-9)
	assert.InDelta(t, 5, y, 1e-9)
}

func TestParseTransformOperators(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		inX   float64
		inY   float64
		wantX float64
		wantY float64
	}{
		{"matrix", "matrix(1,0,0,1,7,-3)", 1, 1, 8, -2},
		{"translate one arg", "translate(5)", 0, 0, 5, 0},
		{"scale one arg", "scale(2)", 3, 4, 6, 8},
		{"scale two args", "scale(2,3)", 3, 4, 6, 12},
		{"skewX 45", "skewX(45)", 0, 1, 1, 1},
		{"skewY 45", "skewY(45)", 1, 0, 1, 1},
		{"no commas", "translate(10 20)", 0, 0, 10, 20},
		{"scientific notation", "translate(1e2,0)", 0, 0, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := ParseTransform(tt.text).Apply(tt.inX, tt.inY)
			assert.InDelta(t, tt.wantX, x, 1e-9)
			assert.InDelta(t, tt.wantY, y, 1e-9)
		})
	}
}

func TestParseTransformMalformedYieldsIdentity(t *testing.T) {
	for _, text := range []string{"", "garbage", "rotate(", "translate(a,b)", "rotate(45,1)"} {
		x, y := ParseTransform(text).Apply(3, 7)
		assert.Equal(t, 3.0, x, "input %q", text)
		assert.Equal(t, 7.0, y, "input %q", text)
	}
}

func TestMatrixMulAssociative(t *testing.T) {
	a := Translate(2, 3)
	b := Rotate(30)
	c := Scale(2, 0.5)
	left := a.Mul(b).Mul(c)
	right := a.Mul(b.Mul(c))
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, left[i][j], right[i][j], 1e-12)
		}
	}
}

func TestElementPosition(t *testing.T) {
	doc := etree.NewDocument()
	err := doc.ReadFromString(`<svg>
	  <g id="outer" transform="translate(100,0)">
	    <g id="inner" transform="rotate(90)">
	      <rect id="origin" x="1" y="0"/>
	    </g>
	  </g>
	</svg>`)
	require.NoError(t, err)

	origin := doc.FindElement("//rect")
	require.NotNil(t, origin)

	// Full chain: rotate takes (1,0) to (0,1), outer translate adds 100
	x, y := ElementPosition(origin, nil)
	assert.InDelta(t, 100, x, 1e-9)
	assert.InDelta(t, 1, y, 1e-9)

	// Stopping at the outer group excludes its translation
	outer := doc.FindElement("//g[@id='outer']")
	require.NotNil(t, outer)
	x, y = ElementPosition(origin, outer)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 1, y, 1e-9)
}
