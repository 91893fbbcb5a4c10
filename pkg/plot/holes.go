package plot

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/OpenTraceLab/OpenTraceDraw/pkg/svg"
)

// Hole is one drilled opening, derived from a pad or via and recomputed
// every render. Position and drill size are in KiCad native units,
// orientation in degrees.
type Hole struct {
	Position    Point
	Orientation float64
	DrillSize   [2]int
}

// PathD renders the hole as a stadium path in hole-local coordinates:
// two semicircular caps joined by straight sides, degenerating to a
// circle when width equals height.
func (h Hole) PathD() string {
	w := float64(svg.KiToSVG(h.DrillSize[0]))
	ht := float64(svg.KiToSVG(h.DrillSize[1]))
	if w > ht {
		ew, eh := w-ht, ht
		return fmt.Sprintf("M %s %s A %s %s 0 1 1 %s %s L %s %s A %s %s 0 1 1 %s %s Z",
			fmtNum(-ew/2), fmtNum(-eh/2),
			fmtNum(eh/2), fmtNum(eh/2), fmtNum(-ew/2), fmtNum(eh/2),
			fmtNum(ew/2), fmtNum(eh/2),
			fmtNum(eh/2), fmtNum(eh/2), fmtNum(ew/2), fmtNum(-eh/2))
	}
	ew, eh := w, ht-w
	return fmt.Sprintf("M %s %s A %s %s 0 1 1 %s %s L %s %s A %s %s 0 1 1 %s %s Z",
		fmtNum(-ew/2), fmtNum(eh/2),
		fmtNum(ew/2), fmtNum(ew/2), fmtNum(ew/2), fmtNum(eh/2),
		fmtNum(ew/2), fmtNum(-eh/2),
		fmtNum(ew/2), fmtNum(ew/2), fmtNum(-ew/2), fmtNum(-eh/2))
}

// placementTransform positions a hole shape on the board.
func (h Hole) placementTransform() string {
	return fmt.Sprintf("translate(%d %d) rotate(%s)",
		svg.KiToSVG(h.Position.X), svg.KiToSVG(h.Position.Y),
		fmtNum(-h.Orientation))
}

// collectHoles gathers every drilled pad and via of the board.
func collectHoles(e Engine) []Hole {
	var holes []Hole
	for _, fp := range e.Footprints() {
		for _, pad := range fp.Pads {
			holes = append(holes, Hole{
				Position:    pad.Position,
				Orientation: pad.OrientationDeg,
				DrillSize:   [2]int{pad.DrillWidth, pad.DrillHeight},
			})
		}
	}
	for _, via := range e.Vias() {
		holes = append(holes, Hole{
			Position:  via.Position,
			DrillSize: [2]int{via.Drill, via.Drill},
		})
	}
	return holes
}

// appendHoleShape writes one hole into the hole mask as a round-capped
// black polyline: stroke width is the smaller drill dimension, length
// the difference, so equal dimensions collapse to a dot.
func appendHoleShape(container *etree.Element, h Hole) {
	w := svg.KiToSVG(h.DrillSize[0])
	ht := svg.KiToSVG(h.DrillSize[1])
	if w <= 0 || ht <= 0 {
		return
	}
	var stroke int
	var points string
	if w < ht {
		stroke = w
		length := float64(ht - w)
		points = fmt.Sprintf("0 %s 0 %s", fmtNum(-length/2), fmtNum(length/2))
	} else {
		stroke = ht
		length := float64(w - ht)
		points = fmt.Sprintf("%s 0 %s 0", fmtNum(-length/2), fmtNum(length/2))
	}
	el := container.CreateElement("polyline")
	el.CreateAttr("stroke-linecap", "round")
	el.CreateAttr("stroke", "black")
	el.CreateAttr("stroke-width", fmt.Sprint(stroke))
	el.CreateAttr("points", points)
	el.CreateAttr("transform", h.placementTransform())
}
