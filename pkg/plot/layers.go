package plot

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/OpenTraceLab/OpenTraceDraw/pkg/svg"
)

// VCuts renders the v-scoring lines, conventionally drawn on a user
// comment layer.
type VCuts struct {
	Layer Layer
}

// NewVCuts returns a v-cut step reading the Cmts.User layer.
func NewVCuts() *VCuts {
	return &VCuts{Layer: LayerUserComments}
}

// Render implements Renderer.
func (v *VCuts) Render(s *Session) error {
	plan := []PlotAction{{Name: "vcuts", Layers: []Layer{v.Layer}, Op: OpVCuts}}
	return s.ExecutePlotPlan(plan, func(action PlotAction, file string) error {
		return appendSurfaceLayer(s, "substrate-vcuts", "vcut", file)
	})
}

// Paste renders the solder paste layer of the drawn side.
type Paste struct{}

// Render implements Renderer.
func (Paste) Render(s *Session) error {
	layer := LayerFrontPaste
	if s.RenderBack() {
		layer = LayerBackPaste
	}
	plan := []PlotAction{{Name: "paste", Layers: []Layer{layer}, Op: OpPaste}}
	return s.ExecutePlotPlan(plan, func(action PlotAction, file string) error {
		return appendSurfaceLayer(s, "substrate-paste", "paste", file)
	})
}

// appendSurfaceLayer imports one plotted file as a single-color board
// group, with the usual style strip and white-fill workaround.
func appendSurfaceLayer(s *Session, id, surface, file string) error {
	color := s.Style().Surface(surface)
	layer := etree.NewElement("g")
	layer.CreateAttr("id", id)
	layer.CreateAttr("style", fmt.Sprintf("fill:%s; stroke:%s;", color, color))

	root, err := svg.ReadUnique(file, s.UniquePrefix()+"_")
	if err != nil {
		return err
	}
	for _, element := range svg.ExtractContent(root) {
		if !svg.StripStyle(element, []string{"fill", "stroke"}, []string{"#ffffff"}) {
			layer.AddChild(element)
		}
	}
	s.AppendBoardElement(layer)
	return nil
}
