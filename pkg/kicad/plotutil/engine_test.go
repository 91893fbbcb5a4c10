package plotutil

import (
	"math"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceDraw/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTraceDraw/pkg/plot"
)

// testBoard is a 10x10 mm board with one track, one via and one
// two-pad footprint rotated by 90 degrees.
func testBoard() *pcb.Board {
	edge := func(x1, y1, x2, y2 float64) pcb.Graphic {
		return pcb.Graphic{
			Kind:   pcb.GraphicLine,
			Layer:  "Edge.Cuts",
			Start:  pcb.Position{X: x1, Y: y1},
			End:    pcb.Position{X: x2, Y: y2},
			Stroke: pcb.Stroke{Width: 0.05},
		}
	}
	return &pcb.Board{
		Graphics: []pcb.Graphic{
			edge(0, 0, 10, 0),
			edge(10, 0, 10, 10),
			edge(10, 10, 0, 10),
			edge(0, 10, 0, 0),
		},
		Tracks: []pcb.Track{
			{Start: pcb.Position{X: 1, Y: 1}, End: pcb.Position{X: 9, Y: 1}, Width: 0.25, Layer: "F.Cu"},
		},
		Vias: []pcb.Via{
			{Position: pcb.Position{X: 5, Y: 5}, Size: 0.6, Drill: 0.3},
		},
		Footprints: []pcb.Footprint{{
			Library:   "Resistor_THT",
			Name:      "R_Axial",
			Reference: "R1",
			Value:     "4k7",
			Layer:     "F.Cu",
			Position:  pcb.Position{X: 3, Y: 3},
			Angle:     90,
			Pads: []pcb.Pad{
				{
					Number: "1", Type: "smd", Shape: "rect",
					Position: pcb.Position{X: -1, Y: 0},
					Size:     pcb.Size{Width: 1, Height: 1.2},
					Layers:   []string{"F.Cu", "F.Paste", "F.Mask"},
				},
				{
					Number: "2", Type: "thru_hole", Shape: "circle",
					Position: pcb.Position{X: 1, Y: 0},
					Size:     pcb.Size{Width: 1.6, Height: 1.6},
					Drill:    pcb.Size{Width: 0.8, Height: 0.8},
					Layers:   []string{"*.Cu", "*.Mask"},
				},
			},
		}},
	}
}

func TestBoundingBox(t *testing.T) {
	e := NewEngine(testBoard())
	assert.Equal(t, plot.Box{X: 0, Y: 0, Width: 10000000, Height: 10000000}, e.BoundingBox())
}

func TestFootprints(t *testing.T) {
	e := NewEngine(testBoard())
	fps := e.Footprints()
	require.Len(t, fps, 1)

	fp := fps[0]
	assert.Equal(t, "Resistor_THT", fp.Library)
	assert.Equal(t, "R_Axial", fp.Name)
	assert.Equal(t, "R1", fp.Reference)
	assert.Equal(t, "4k7", fp.Value)
	assert.False(t, fp.OnBack)
	assert.Equal(t, plot.Point{X: 3000000, Y: 3000000}, fp.Position)
	assert.InDelta(t, math.Pi/2, fp.OrientationRad, 1e-9)

	// Only the drilled pad is reported, at its rotated board position
	require.Len(t, fp.Pads, 1)
	pad := fp.Pads[0]
	assert.Equal(t, plot.Point{X: 3000000, Y: 2000000}, pad.Position)
	assert.Equal(t, 800000, pad.DrillWidth)
	assert.Equal(t, 800000, pad.DrillHeight)
	assert.InDelta(t, 90, pad.OrientationDeg, 1e-9)
}

func TestVias(t *testing.T) {
	e := NewEngine(testBoard())
	vias := e.Vias()
	require.Len(t, vias, 1)
	assert.Equal(t, plot.Point{X: 5000000, Y: 5000000}, vias[0].Position)
	assert.Equal(t, 300000, vias[0].Drill)
}

func TestPlotLayersWritesRequestedActions(t *testing.T) {
	e := NewEngine(testBoard())
	files, err := e.PlotLayers(t.TempDir(), []plot.PlotAction{
		{Name: "board", Layers: []plot.Layer{plot.LayerEdgeCuts}, Op: plot.OpBaseLayer},
		{Name: "copper", Layers: []plot.Layer{plot.LayerFrontCopper}, Op: plot.OpLayer},
		{Name: "silk", Layers: []plot.Layer{plot.LayerFrontSilk}, Op: plot.OpLayer},
	})
	require.NoError(t, err)

	// The board has no silkscreen art, so no silk file is produced
	assert.Contains(t, files, "board")
	assert.Contains(t, files, "copper")
	assert.NotContains(t, files, "silk")

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromFile(files["board"]))
	paths := doc.FindElements("//path")
	require.Len(t, paths, 4)
	for _, p := range paths {
		d := p.SelectAttrValue("d", "")
		assert.True(t, strings.HasPrefix(d, "M "), "edge fragment %q", d)
		assert.Contains(t, d, "L ")
	}

	doc = etree.NewDocument()
	require.NoError(t, doc.ReadFromFile(files["copper"]))
	content, err := doc.WriteToString()
	require.NoError(t, err)
	// Track stroked black, both pads filled black, via filled white
	assert.Contains(t, content, "stroke-width:250000")
	assert.Contains(t, content, "fill:#000000")
	assert.Contains(t, content, "fill:#ffffff")
	require.Len(t, doc.FindElements("//circle"), 2)
}

func TestPadPlacement(t *testing.T) {
	parent := etree.NewElement("g")
	board := testBoard()
	drawPad(parent, &board.Footprints[0], board.Footprints[0].Pads[0])

	rect := parent.FindElement("rect")
	require.NotNil(t, rect)
	assert.Equal(t, "-500000", rect.SelectAttrValue("x", ""))
	assert.Equal(t, "-600000", rect.SelectAttrValue("y", ""))
	assert.Equal(t, "1000000", rect.SelectAttrValue("width", ""))
	assert.Equal(t, "1200000", rect.SelectAttrValue("height", ""))
	assert.Equal(t, "translate(3000000 4000000) rotate(-90)", rect.SelectAttrValue("transform", ""))
}

func TestArcConversion(t *testing.T) {
	// Half circle around (5,5), running through the bottom
	d := arcD(pcb.Position{X: 15, Y: 5}, pcb.Position{X: 5, Y: 15}, pcb.Position{X: -5, Y: 5})
	assert.Equal(t, "M 15000000 5000000 A 10000000 10000000 0 0 1 -5000000 5000000", d)

	// Same endpoints through the top, so the sweep direction flips
	d = arcD(pcb.Position{X: 15, Y: 5}, pcb.Position{X: 5, Y: -5}, pcb.Position{X: -5, Y: 5})
	assert.Equal(t, "M 15000000 5000000 A 10000000 10000000 0 0 0 -5000000 5000000", d)

	// Collinear points degrade to a line
	d = arcD(pcb.Position{X: 0, Y: 0}, pcb.Position{X: 5, Y: 0}, pcb.Position{X: 10, Y: 0})
	assert.Equal(t, "M 0 0 L 10000000 0", d)
}

func TestPlotPipeline(t *testing.T) {
	p := plot.NewPlotter(NewEngine(testBoard()))
	doc, err := p.Plot()
	require.NoError(t, err)

	substrate := doc.FindElement("//g[@id='substrate']")
	require.NotNil(t, substrate)
	assert.Equal(t, "url(#cut-off)", substrate.SelectAttrValue("clip-path", ""))

	// Four edge segments stitch into a single closed chain
	clip := doc.FindElement("//clipPath[@id='cut-off']/path")
	require.NotNil(t, clip)
	d := clip.SelectAttrValue("d", "")
	assert.Equal(t, 1, strings.Count(d, "M"))
}
