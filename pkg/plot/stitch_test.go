package plot

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFragmentLine(t *testing.T) {
	f, err := ParseFragment("M 0 0 L 10 0")
	require.NoError(t, err)
	assert.Equal(t, byte('L'), f.Kind)
	assert.Equal(t, [2]float64{0, 0}, f.Start)
	assert.Equal(t, [2]float64{10, 0}, f.End)
}

func TestParseFragmentArc(t *testing.T) {
	f, err := ParseFragment("M 0 0 A 5 5 0 1 0 10 0")
	require.NoError(t, err)
	assert.Equal(t, byte('A'), f.Kind)
	assert.Equal(t, [5]float64{5, 5, 0, 1, 0}, f.Args)
	assert.Equal(t, [2]float64{10, 0}, f.End)
}

func TestParseFragmentCompactSyntax(t *testing.T) {
	// Plotted paths often glue the command to a negative coordinate
	f, err := ParseFragment("M-5,0 L-5,10")
	require.NoError(t, err)
	assert.Equal(t, [2]float64{-5, 0}, f.Start)
	assert.Equal(t, [2]float64{-5, 10}, f.End)
}

func TestParseFragmentRejectsRelative(t *testing.T) {
	_, err := ParseFragment("m 0 0 l 10 0")
	assert.Error(t, err)
}

func TestFlipInvertsArcSweep(t *testing.T) {
	f, err := ParseFragment("M 0 0 A 5 5 0 1 0 10 0")
	require.NoError(t, err)
	f.Flip()
	assert.Equal(t, [2]float64{10, 0}, f.Start)
	assert.Equal(t, [2]float64{0, 0}, f.End)
	assert.Equal(t, 1.0, f.Args[4])
	f.Flip()
	assert.Equal(t, 0.0, f.Args[4])
}

func TestFormatRoundTrip(t *testing.T) {
	f, err := ParseFragment("M 0 0 A 5 5 0 1 0 10 0")
	require.NoError(t, err)
	assert.Equal(t, " M 0 0 A 5 5 0 1 0 10 0 ", f.Format(true))
	assert.Equal(t, "A 5 5 0 1 0 10 0 ", f.Format(false))
}

func mustFragments(t *testing.T, ds ...string) []*PathFragment {
	t.Helper()
	out := make([]*PathFragment, 0, len(ds))
	for _, d := range ds {
		f, err := ParseFragment(d)
		require.NoError(t, err)
		out = append(out, f)
	}
	return out
}

func chainCount(path string) int {
	return strings.Count(path, "M")
}

func TestStitchClosesSquare(t *testing.T) {
	// Sides in arbitrary order and direction
	frags := mustFragments(t,
		"M 10 0 L 10 10",
		"M 0 0 L 10 0",
		"M 0 10 L 0 0",
		"M 10 10 L 0 10",
	)
	path := StitchFragments(frags)
	assert.Equal(t, 1, chainCount(path))
	assert.Equal(t, 4, strings.Count(path, "L"))
}

func TestStitchHandlesReversedFragment(t *testing.T) {
	frags := mustFragments(t,
		"M 0 0 L 10 0",
		"M 10 10 L 10 0", // Runs against chain direction, needs a flip
		"M 10 10 L 0 10",
		"M 0 10 L 0 0",
	)
	path := StitchFragments(frags)
	assert.Equal(t, 1, chainCount(path))
}

func TestStitchJoinsWithinTolerance(t *testing.T) {
	// Endpoints one unit apart still join
	frags := mustFragments(t,
		"M 0 0 L 10 0",
		"M 11 0 L 11 10",
	)
	path := StitchFragments(frags)
	assert.Equal(t, 1, chainCount(path))
}

func TestStitchKeepsDistantFragmentsApart(t *testing.T) {
	frags := mustFragments(t,
		"M 0 0 L 10 0",
		"M 20 0 L 20 10", // Twice the tolerance away
	)
	path := StitchFragments(frags)
	assert.Equal(t, 2, chainCount(path))
}

func TestStitchPrefersClosestMatch(t *testing.T) {
	// Both candidates are within tolerance of (10,0); the exact one
	// must win so the sloppy one pairs with its own neighbor
	frags := mustFragments(t,
		"M 0 0 L 10 0",
		"M 13 0 L 13 4",
		"M 10 0 L 13 4",
	)
	path := StitchFragments(frags)
	assert.Equal(t, 1, chainCount(path))
	assert.True(t, strings.Contains(path, "M 0 0"))
}

func TestBoardPolygonPassesCircleVerbatim(t *testing.T) {
	group := etree.NewElement("g")
	circle := group.CreateElement("circle")
	circle.CreateAttr("cx", "50")
	circle.CreateAttr("cy", "50")
	circle.CreateAttr("r", "20")

	el, err := BoardPolygon([]*etree.Element{group})
	require.NoError(t, err)
	d := el.SelectAttrValue("d", "")
	assert.Contains(t, d, "M 50 50")
	assert.Contains(t, d, "a 20 20 0 1 0 40 0")
	assert.Equal(t, "fill-rule: evenodd;", el.SelectAttrValue("style", ""))
}

func TestBoardPolygonStitchesPaths(t *testing.T) {
	group := etree.NewElement("g")
	for _, d := range []string{
		"M 0 0 L 10 0", "M 10 0 L 10 10", "M 10 10 L 0 10", "M 0 10 L 0 0",
	} {
		p := group.CreateElement("path")
		p.CreateAttr("d", d)
	}
	el, err := BoardPolygon([]*etree.Element{group})
	require.NoError(t, err)
	assert.Equal(t, 1, chainCount(el.SelectAttrValue("d", "")))
}

func TestBoardPolygonReportsMalformedPath(t *testing.T) {
	group := etree.NewElement("g")
	p := group.CreateElement("path")
	p.CreateAttr("d", "Q 1 2 3 4")
	_, err := BoardPolygon([]*etree.Element{group})
	assert.Error(t, err)
}
