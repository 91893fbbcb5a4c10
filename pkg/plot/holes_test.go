package plot

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolePathRoundDrill(t *testing.T) {
	h := Hole{DrillSize: [2]int{100, 100}}
	d := h.PathD()
	// Equal dimensions degenerate to two semicircles with no flats
	assert.Contains(t, d, "M -50 0")
	assert.Contains(t, d, "A 50 50 0 1 1")
	assert.Contains(t, d, "L 50 0")
}

func TestHolePathStadiumWide(t *testing.T) {
	h := Hole{DrillSize: [2]int{300, 100}}
	d := h.PathD()
	assert.Contains(t, d, "M -100 -50")
	assert.Contains(t, d, "A 50 50 0 1 1 -100 50")
	assert.Contains(t, d, "L 100 50")
}

func TestHolePathStadiumTall(t *testing.T) {
	h := Hole{DrillSize: [2]int{100, 300}}
	d := h.PathD()
	assert.Contains(t, d, "M -50 100")
	assert.Contains(t, d, "A 50 50 0 1 1 50 100")
	assert.Contains(t, d, "L 50 -100")
}

func TestAppendHoleShape(t *testing.T) {
	container := etree.NewElement("g")

	appendHoleShape(container, Hole{
		Position:    Point{X: 1000, Y: 2000},
		Orientation: 90,
		DrillSize:   [2]int{100, 300},
	})
	require.Len(t, container.ChildElements(), 1)
	el := container.ChildElements()[0]
	assert.Equal(t, "polyline", el.Tag)
	assert.Equal(t, "round", el.SelectAttrValue("stroke-linecap", ""))
	assert.Equal(t, "100", el.SelectAttrValue("stroke-width", ""))
	assert.Equal(t, "0 -100 0 100", el.SelectAttrValue("points", ""))
	assert.Equal(t, "translate(1000 2000) rotate(-90)", el.SelectAttrValue("transform", ""))
}

func TestAppendHoleShapeSkipsDegenerate(t *testing.T) {
	container := etree.NewElement("g")
	appendHoleShape(container, Hole{DrillSize: [2]int{0, 100}})
	appendHoleShape(container, Hole{DrillSize: [2]int{100, 0}})
	assert.Empty(t, container.ChildElements())
}

func TestCollectHoles(t *testing.T) {
	e := &fakeEngine{
		footprints: []FootprintRecord{{
			Reference: "R1",
			Pads: []HoleRecord{
				{Position: Point{X: 1, Y: 2}, DrillWidth: 10, DrillHeight: 10},
				{Position: Point{X: 3, Y: 4}, DrillWidth: 10, DrillHeight: 20},
			},
		}},
		vias: []ViaRecord{{Position: Point{X: 5, Y: 6}, Drill: 30}},
	}
	holes := collectHoles(e)
	require.Len(t, holes, 3)
	assert.Equal(t, [2]int{30, 30}, holes[2].DrillSize)
	assert.Equal(t, Point{X: 5, Y: 6}, holes[2].Position)
}
