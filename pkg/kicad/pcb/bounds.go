package pcb

import "math"

// BoundingBox is an axis-aligned extent in mm.
type BoundingBox struct {
	MinX, MinY float64
	MaxX, MaxY float64
	valid      bool
}

// NewBoundingBox returns an empty bounding box.
func NewBoundingBox() BoundingBox {
	return BoundingBox{}
}

// Expand grows the box to include p.
func (b *BoundingBox) Expand(p Position) {
	if !b.valid {
		b.MinX, b.MaxX = p.X, p.X
		b.MinY, b.MaxY = p.Y, p.Y
		b.valid = true
		return
	}
	b.MinX = math.Min(b.MinX, p.X)
	b.MaxX = math.Max(b.MaxX, p.X)
	b.MinY = math.Min(b.MinY, p.Y)
	b.MaxY = math.Max(b.MaxY, p.Y)
}

// Width returns the horizontal extent.
func (b *BoundingBox) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b *BoundingBox) Height() float64 { return b.MaxY - b.MinY }

// GetBoundingBox calculates the bounding box of the entire board:
// graphics, tracks, vias, and footprint pads.
func (b *Board) GetBoundingBox() BoundingBox {
	bbox := NewBoundingBox()

	for _, g := range b.Graphics {
		expandGraphic(&bbox, g)
	}

	for _, track := range b.Tracks {
		bbox.Expand(track.Start)
		bbox.Expand(track.End)
	}

	for _, via := range b.Vias {
		r := via.Size / 2
		bbox.Expand(Position{X: via.Position.X - r, Y: via.Position.Y - r})
		bbox.Expand(Position{X: via.Position.X + r, Y: via.Position.Y + r})
	}

	for i := range b.Footprints {
		fp := &b.Footprints[i]
		for _, pad := range fp.Pads {
			center := fp.PadPosition(pad)
			r := math.Max(pad.Size.Width, pad.Size.Height) / 2
			bbox.Expand(Position{X: center.X - r, Y: center.Y - r})
			bbox.Expand(Position{X: center.X + r, Y: center.Y + r})
		}
		for _, g := range fp.Graphics {
			expandGraphic(&bbox, fp.TransformGraphic(g))
		}
	}

	return bbox
}

func expandGraphic(bbox *BoundingBox, g Graphic) {
	switch g.Kind {
	case GraphicLine, GraphicRect:
		bbox.Expand(g.Start)
		bbox.Expand(g.End)
	case GraphicArc:
		// Start/mid/end underestimate a bulging arc slightly, which is
		// acceptable for canvas sizing
		bbox.Expand(g.Start)
		bbox.Expand(g.Mid)
		bbox.Expand(g.End)
	case GraphicCircle:
		dx := g.End.X - g.Center.X
		dy := g.End.Y - g.Center.Y
		r := math.Sqrt(dx*dx + dy*dy)
		bbox.Expand(Position{X: g.Center.X - r, Y: g.Center.Y - r})
		bbox.Expand(Position{X: g.Center.X + r, Y: g.Center.Y + r})
	case GraphicPoly:
		for _, p := range g.Points {
			bbox.Expand(p)
		}
	}
}

// PadPosition returns the board-space center of a pad, applying the
// footprint's rotation and translation.
func (f *Footprint) PadPosition(pad Pad) Position {
	return f.toBoard(pad.Position)
}

// toBoard maps a footprint-local point into board coordinates. KiCad
// rotates counter-clockwise for positive angles with Y growing downward.
func (f *Footprint) toBoard(p Position) Position {
	rad := f.Angle * math.Pi / 180
	cos := math.Cos(rad)
	sin := math.Sin(rad)
	return Position{
		X: f.Position.X + p.X*cos + p.Y*sin,
		Y: f.Position.Y - p.X*sin + p.Y*cos,
	}
}

// TransformGraphic maps a footprint-local primitive into board space.
func (f *Footprint) TransformGraphic(g Graphic) Graphic {
	out := g
	out.Start = f.toBoard(g.Start)
	out.Mid = f.toBoard(g.Mid)
	out.End = f.toBoard(g.End)
	out.Center = f.toBoard(g.Center)
	if len(g.Points) > 0 {
		out.Points = make([]Position, len(g.Points))
		for i, p := range g.Points {
			out.Points[i] = f.toBoard(p)
		}
	}
	return out
}
