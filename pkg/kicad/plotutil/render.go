package plotutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/OpenTraceLab/OpenTraceDraw/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTraceDraw/pkg/svg"
)

// defaultLineWidth stands in for primitives whose stroke width the
// board file left at zero.
const defaultLineWidth = 0.1 // mm

const fillBlack = "fill:#000000; stroke:none;"

// drawGraphic renders one primitive. On the edge-cuts layer every
// segment becomes its own open path so the board outline can be
// stitched back together downstream.
func drawGraphic(parent *etree.Element, g pcb.Graphic, edge bool) {
	switch g.Kind {
	case pcb.GraphicLine:
		appendPath(parent, lineD(g.Start, g.End), strokeStyle(g.Stroke, edge))
	case pcb.GraphicArc:
		appendPath(parent, arcD(g.Start, g.Mid, g.End), strokeStyle(g.Stroke, edge))
	case pcb.GraphicCircle:
		dx := g.End.X - g.Center.X
		dy := g.End.Y - g.Center.Y
		r := math.Sqrt(dx*dx + dy*dy)
		circle := parent.CreateElement("circle")
		circle.CreateAttr("cx", ki(g.Center.X))
		circle.CreateAttr("cy", ki(g.Center.Y))
		circle.CreateAttr("r", ki(r))
		if g.Filled && !edge {
			circle.CreateAttr("style", fillBlack)
		} else {
			circle.CreateAttr("style", strokeStyle(g.Stroke, edge))
		}
	case pcb.GraphicRect:
		corners := []pcb.Position{
			g.Start,
			{X: g.End.X, Y: g.Start.Y},
			g.End,
			{X: g.Start.X, Y: g.End.Y},
		}
		if edge {
			for i := range corners {
				appendPath(parent, lineD(corners[i], corners[(i+1)%4]), strokeStyle(g.Stroke, true))
			}
			return
		}
		appendPath(parent, polygonD(corners), shapeStyle(g))
	case pcb.GraphicPoly:
		if len(g.Points) < 2 {
			return
		}
		if edge {
			for i := range g.Points {
				appendPath(parent, lineD(g.Points[i], g.Points[(i+1)%len(g.Points)]), strokeStyle(g.Stroke, true))
			}
			return
		}
		appendPath(parent, polygonD(g.Points), shapeStyle(g))
	}
}

// drawPad renders one pad in board coordinates, filled black.
func drawPad(parent *etree.Element, fp *pcb.Footprint, pad pcb.Pad) {
	center := fp.PadPosition(pad)
	angle := fp.Angle + pad.Angle
	w := svg.MMToKi(pad.Size.Width)
	h := svg.MMToKi(pad.Size.Height)
	if w == 0 || h == 0 {
		return
	}

	if pad.Shape == "circle" {
		circle := parent.CreateElement("circle")
		circle.CreateAttr("cx", ki(center.X))
		circle.CreateAttr("cy", ki(center.Y))
		circle.CreateAttr("r", strconv.Itoa(svg.KiToSVG(w)/2))
		circle.CreateAttr("style", fillBlack)
		return
	}

	// Oval, rect, roundrect and friends all reduce to a rectangle of
	// the pad size; ovals get fully rounded corners.
	rect := parent.CreateElement("rect")
	rect.CreateAttr("x", strconv.Itoa(-svg.KiToSVG(w)/2))
	rect.CreateAttr("y", strconv.Itoa(-svg.KiToSVG(h)/2))
	rect.CreateAttr("width", strconv.Itoa(svg.KiToSVG(w)))
	rect.CreateAttr("height", strconv.Itoa(svg.KiToSVG(h)))
	if pad.Shape == "oval" {
		r := svg.KiToSVG(min(w, h)) / 2
		rect.CreateAttr("rx", strconv.Itoa(r))
		rect.CreateAttr("ry", strconv.Itoa(r))
	}
	rect.CreateAttr("style", fillBlack)
	rect.CreateAttr("transform", fmt.Sprintf("translate(%s %s) rotate(%s)",
		ki(center.X), ki(center.Y), deg(-angle)))
}

func drawTrack(parent *etree.Element, track pcb.Track) {
	style := fmt.Sprintf("fill:none; stroke:#000000; stroke-width:%s; stroke-linecap:round;",
		ki(track.Width))
	appendPath(parent, lineD(track.Start, track.End), style)
}

// drawVia renders a via as a white disc. The substrate step drops white
// fills from copper plots, so vias never paint over the copper art.
func drawVia(parent *etree.Element, via pcb.Via) {
	if via.Size == 0 {
		return
	}
	circle := parent.CreateElement("circle")
	circle.CreateAttr("cx", ki(via.Position.X))
	circle.CreateAttr("cy", ki(via.Position.Y))
	circle.CreateAttr("r", ki(via.Size/2))
	circle.CreateAttr("style", "fill:#ffffff; stroke:none;")
}

func appendPath(parent *etree.Element, d, style string) {
	path := parent.CreateElement("path")
	path.CreateAttr("d", d)
	path.CreateAttr("style", style)
}

func strokeStyle(stroke pcb.Stroke, edge bool) string {
	width := stroke.Width
	if width == 0 {
		width = defaultLineWidth
	}
	linecap := " stroke-linecap:round;"
	if edge {
		linecap = ""
	}
	return fmt.Sprintf("fill:none; stroke:#000000; stroke-width:%s;%s", ki(width), linecap)
}

func shapeStyle(g pcb.Graphic) string {
	if g.Filled {
		return fillBlack
	}
	return strokeStyle(g.Stroke, false)
}

func lineD(a, b pcb.Position) string {
	return fmt.Sprintf("M %s %s L %s %s", ki(a.X), ki(a.Y), ki(b.X), ki(b.Y))
}

func polygonD(points []pcb.Position) string {
	var sb strings.Builder
	for i, p := range points {
		if i == 0 {
			sb.WriteString("M ")
		} else {
			sb.WriteString(" L ")
		}
		sb.WriteString(ki(p.X))
		sb.WriteString(" ")
		sb.WriteString(ki(p.Y))
	}
	sb.WriteString(" Z")
	return sb.String()
}

// arcD converts a KiCad three-point arc into an SVG arc command. The
// circle center is the circumcenter of the three points; the mid point
// fixes the sweep direction. Collinear points fall back to a line.
func arcD(start, mid, end pcb.Position) string {
	d := 2 * (start.X*(mid.Y-end.Y) + mid.X*(end.Y-start.Y) + end.X*(start.Y-mid.Y))
	if math.Abs(d) < 1e-9 {
		return lineD(start, end)
	}
	s2 := start.X*start.X + start.Y*start.Y
	m2 := mid.X*mid.X + mid.Y*mid.Y
	e2 := end.X*end.X + end.Y*end.Y
	cx := (s2*(mid.Y-end.Y) + m2*(end.Y-start.Y) + e2*(start.Y-mid.Y)) / d
	cy := (s2*(end.X-mid.X) + m2*(start.X-end.X) + e2*(mid.X-start.X)) / d
	r := math.Hypot(start.X-cx, start.Y-cy)

	// With Y growing downward a positive cross product means the points
	// run clockwise on screen, which is SVG sweep direction 1.
	cross := (mid.X-start.X)*(end.Y-start.Y) - (mid.Y-start.Y)*(end.X-start.X)
	sweep := 0
	if cross > 0 {
		sweep = 1
	}
	a1 := math.Atan2(start.Y-cy, start.X-cx)
	a2 := math.Atan2(end.Y-cy, end.X-cx)
	delta := math.Mod(a2-a1+2*math.Pi, 2*math.Pi)
	if sweep == 0 {
		delta = math.Mod(a1-a2+2*math.Pi, 2*math.Pi)
	}
	large := 0
	if delta > math.Pi {
		large = 1
	}
	return fmt.Sprintf("M %s %s A %s %s 0 %d %d %s %s",
		ki(start.X), ki(start.Y), ki(r), ki(r), large, sweep, ki(end.X), ki(end.Y))
}

// ki formats a mm coordinate as an SVG user-space integer.
func ki(mm float64) string {
	return strconv.Itoa(svg.KiToSVG(svg.MMToKi(mm)))
}

func deg(a float64) string {
	return strconv.FormatFloat(a, 'f', -1, 64)
}
