// Package pcb parses KiCad board files (.kicad_pcb) into the data model
// needed for drawing: footprints with pads and drills, vias, and the
// graphical primitives of each layer. Net and routing analysis is out of
// scope; tracks are kept only because copper layers render them.
package pcb

// Position is a 2D point in board coordinates (mm).
type Position struct {
	X float64
	Y float64
}

// Size is a width/height pair in mm.
type Size struct {
	Width  float64
	Height float64
}

// Layer describes one entry of the board's layer table.
type Layer struct {
	Number int    // Ordinal in the layer table
	Name   string // e.g. "F.Cu", "Edge.Cuts"
	Type   string // signal, user, ...
}

// Stroke describes how an outline primitive is drawn.
type Stroke struct {
	Width float64 // Line width in mm
	Type  string  // solid, dash, ...
}

// Pad is a footprint pad. Position and angle are footprint-local.
type Pad struct {
	Number   string
	Type     string // thru_hole, smd, connect, np_thru_hole
	Shape    string // circle, rect, oval, roundrect
	Position Position
	Angle    float64 // Degrees
	Size     Size
	Drill    Size // Zero for SMD; oval drills have distinct width/height
	Layers   []string
}

// Footprint is one placed component.
type Footprint struct {
	Library   string
	Name      string
	Reference string
	Value     string
	Layer     string // Placement layer, F.Cu or B.Cu
	Position  Position
	Angle     float64 // Degrees
	Pads      []Pad
	Graphics  []Graphic // fp_* primitives, footprint-local coordinates
}

// OnBack reports whether the footprint sits on the back of the board.
func (f *Footprint) OnBack() bool {
	return f.Layer == "B.Cu" || f.Layer == "Back"
}

// Via is a plated through hole.
type Via struct {
	Position Position
	Size     float64 // Outer diameter in mm
	Drill    float64 // Drill diameter in mm
}

// Track is one copper segment. Only needed to render copper layers.
type Track struct {
	Start Position
	End   Position
	Width float64
	Layer string
}

// GraphicKind discriminates the primitive stored in a Graphic.
type GraphicKind int

const (
	GraphicLine GraphicKind = iota
	GraphicArc
	GraphicCircle
	GraphicRect
	GraphicPoly
)

// Graphic is one drawable primitive. Which fields are meaningful depends
// on Kind: lines use Start/End, arcs Start/Mid/End, circles Center/End,
// rects Start/End as opposite corners, polys Points.
type Graphic struct {
	Kind   GraphicKind
	Layer  string
	Start  Position
	Mid    Position
	End    Position
	Center Position
	Points []Position
	Stroke Stroke
	Filled bool
}

// General carries board-wide properties.
type General struct {
	Thickness float64
	Title     string
	Date      string
	Revision  string
	Company   string
}

// Board is a parsed KiCad PCB.
type Board struct {
	Version    int
	Generator  string
	General    General
	Layers     []Layer
	Footprints []Footprint
	Vias       []Via
	Tracks     []Track
	Graphics   []Graphic // Board-level gr_* primitives
}

// GraphicsOnLayer returns board-level primitives on the named layer.
func (b *Board) GraphicsOnLayer(name string) []Graphic {
	var out []Graphic
	for _, g := range b.Graphics {
		if g.Layer == name {
			out = append(out, g)
		}
	}
	return out
}
