package plot

// Layer identifies one plottable board layer. The set is limited to the
// layers the drawing pipeline consumes.
type Layer int

const (
	LayerEdgeCuts Layer = iota
	LayerFrontCopper
	LayerBackCopper
	LayerFrontMask
	LayerBackMask
	LayerFrontSilk
	LayerBackSilk
	LayerFrontPaste
	LayerBackPaste
	LayerUserComments
)

// String returns the KiCad canonical layer name.
func (l Layer) String() string {
	switch l {
	case LayerEdgeCuts:
		return "Edge.Cuts"
	case LayerFrontCopper:
		return "F.Cu"
	case LayerBackCopper:
		return "B.Cu"
	case LayerFrontMask:
		return "F.Mask"
	case LayerBackMask:
		return "B.Mask"
	case LayerFrontSilk:
		return "F.SilkS"
	case LayerBackSilk:
		return "B.SilkS"
	case LayerFrontPaste:
		return "F.Paste"
	case LayerBackPaste:
		return "B.Paste"
	case LayerUserComments:
		return "Cmts.User"
	}
	return "Unknown"
}

// LayerOp selects the post-processing applied to one plotted file.
type LayerOp int

const (
	OpBaseLayer LayerOp = iota // board polygon + cut-off clip
	OpLayer                    // styled group
	OpMask                     // inverted mask defs
	OpOutline                  // stitched outline with drill outlines
	OpVCuts                    // v-cut layer group
	OpPaste                    // paste layer group
)

// PlotAction is one entry of a plot plan: a named request to plot the
// union of some layers and post-process the result.
type PlotAction struct {
	Name   string
	Layers []Layer
	Op     LayerOp
}

// Box is an axis-aligned extent in KiCad native units.
type Box struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Point is a location in KiCad native units.
type Point struct {
	X int
	Y int
}

// HoleRecord describes one drilled pad or via hole.
type HoleRecord struct {
	Position       Point
	OrientationDeg float64
	DrillWidth     int
	DrillHeight    int
}

// FootprintRecord is the engine's view of one placed component.
type FootprintRecord struct {
	Library        string
	Name           string
	Reference      string
	Value          string
	Position       Point
	OrientationRad float64
	OnBack         bool
	Pads           []HoleRecord
}

// ViaRecord is one plated through hole.
type ViaRecord struct {
	Position Point
	Drill    int
}

// Engine is the board-design engine behind the drawing pipeline. It
// enumerates board geometry in KiCad native units and plots layers to
// SVG files. PlotLayers writes one file per action into dir and maps
// each action name to the produced path; an action whose layers carry
// no geometry may be omitted from the result.
type Engine interface {
	BoundingBox() Box
	Footprints() []FootprintRecord
	Vias() []ViaRecord
	PlotLayers(dir string, actions []PlotAction) (map[string]string, error)
}
