package pcb

import (
	"github.com/OpenTraceLab/OpenTraceDraw/pkg/kicad/sexp"
)

// Keyword sets for graphic primitives at board level and inside footprints.
var boardGraphicKeys = map[string]GraphicKind{
	"gr_line":   GraphicLine,
	"gr_arc":    GraphicArc,
	"gr_circle": GraphicCircle,
	"gr_rect":   GraphicRect,
	"gr_poly":   GraphicPoly,
}

var footprintGraphicKeys = map[string]GraphicKind{
	"fp_line":   GraphicLine,
	"fp_arc":    GraphicArc,
	"fp_circle": GraphicCircle,
	"fp_rect":   GraphicRect,
	"fp_poly":   GraphicPoly,
}

// parseGraphics collects every graphic primitive below root whose keyword
// appears in keys.
func parseGraphics(root *sexp.Expr, keys map[string]GraphicKind) []Graphic {
	var out []Graphic
	for key, kind := range keys {
		for _, node := range root.FindAll(key) {
			g, ok := parseGraphic(node, kind)
			if !ok {
				continue
			}
			out = append(out, g)
		}
	}
	return out
}

// parseGraphic extracts one primitive.
// Expected formats:
//
//	(gr_line (start x y) (end x y) (stroke (width w) (type solid)) (layer "Edge.Cuts"))
//	(gr_arc (start x y) (mid x y) (end x y) (stroke ...) (layer ...))
//	(gr_circle (center x y) (end x y) (stroke ...) (fill ...) (layer ...))
//	(gr_rect (start x y) (end x y) (stroke ...) (fill ...) (layer ...))
//	(gr_poly (pts (xy x y) ...) (stroke ...) (fill ...) (layer ...))
func parseGraphic(node *sexp.Expr, kind GraphicKind) (Graphic, bool) {
	g := Graphic{Kind: kind}

	if layerNode, found := node.Find("layer"); found {
		g.Layer, _ = layerNode.Str(1)
	} else {
		return g, false
	}

	readPos := func(key string) (Position, bool) {
		n, found := node.Find(key)
		if !found {
			return Position{}, false
		}
		return Position{X: n.FloatOr(1, 0), Y: n.FloatOr(2, 0)}, true
	}

	var ok bool
	switch kind {
	case GraphicLine:
		if g.Start, ok = readPos("start"); !ok {
			return g, false
		}
		if g.End, ok = readPos("end"); !ok {
			return g, false
		}
	case GraphicArc:
		if g.Start, ok = readPos("start"); !ok {
			return g, false
		}
		if g.Mid, ok = readPos("mid"); !ok {
			return g, false
		}
		if g.End, ok = readPos("end"); !ok {
			return g, false
		}
	case GraphicCircle:
		if g.Center, ok = readPos("center"); !ok {
			return g, false
		}
		if g.End, ok = readPos("end"); !ok {
			return g, false
		}
	case GraphicRect:
		if g.Start, ok = readPos("start"); !ok {
			return g, false
		}
		if g.End, ok = readPos("end"); !ok {
			return g, false
		}
	case GraphicPoly:
		pts, found := node.Find("pts")
		if !found {
			return g, false
		}
		for _, xy := range pts.FindAll("xy") {
			g.Points = append(g.Points, Position{X: xy.FloatOr(1, 0), Y: xy.FloatOr(2, 0)})
		}
		if len(g.Points) < 3 {
			return g, false
		}
	}

	g.Stroke = parseStroke(node)
	g.Filled = parseFilled(node)
	return g, true
}

// parseStroke reads the stroke sub-node.
// Expected format: (stroke (width 0.15) (type solid)), with the legacy
// (width 0.15) fallback used by older files.
func parseStroke(node *sexp.Expr) Stroke {
	stroke := Stroke{Type: "solid"}
	if strokeNode, found := node.Find("stroke"); found {
		if w, found := strokeNode.Find("width"); found {
			stroke.Width = w.FloatOr(1, 0)
		}
		if t, found := strokeNode.Find("type"); found {
			stroke.Type, _ = t.Str(1)
		}
		return stroke
	}
	if w, found := node.Find("width"); found {
		stroke.Width = w.FloatOr(1, 0)
	}
	return stroke
}

// parseFilled reads the fill sub-node.
// Expected format: (fill solid) or (fill (type solid)); "none"/"no" mean unfilled.
func parseFilled(node *sexp.Expr) bool {
	fillNode, found := node.Find("fill")
	if !found {
		return false
	}
	val, err := fillNode.Str(1)
	if err != nil {
		if t, found := fillNode.Find("type"); found {
			val, _ = t.Str(1)
		}
	}
	return val == "solid" || val == "yes"
}
