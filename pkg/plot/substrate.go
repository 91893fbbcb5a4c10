package plot

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/OpenTraceLab/OpenTraceDraw/pkg/svg"
)

// Substrate renders the board body: outline-clipped base polygon,
// clad/copper/pads/silk surfaces, solder-mask defs, the stroked outline
// and, optionally, transparent drill holes.
type Substrate struct {
	DrillHoles   bool
	OutlineWidth int // KiCad native units; zero suppresses the outline

	// Some engine versions plot via holes as white fills. When set,
	// white-filled elements on plotted layers are dropped instead of
	// being recolored.
	DropWhiteFill bool

	session   *Session
	container *etree.Element
	boardBox  Box
}

// NewSubstrate returns a substrate step with drill holes enabled, a
// 0.1 mm outline and the white-fill workaround active.
func NewSubstrate() *Substrate {
	return &Substrate{
		DrillHoles:    true,
		OutlineWidth:  svg.MMToKi(0.1),
		DropWhiteFill: true,
	}
}

func (sub *Substrate) plan(back bool) []PlotAction {
	cu, mask, silk := LayerFrontCopper, LayerFrontMask, LayerFrontSilk
	if back {
		cu, mask, silk = LayerBackCopper, LayerBackMask, LayerBackSilk
	}
	return []PlotAction{
		{Name: "board", Layers: []Layer{LayerEdgeCuts}, Op: OpBaseLayer},
		{Name: "clad", Layers: []Layer{mask}, Op: OpLayer},
		{Name: "copper", Layers: []Layer{cu}, Op: OpLayer},
		{Name: "pads", Layers: []Layer{cu}, Op: OpLayer},
		{Name: "pads-mask", Layers: []Layer{mask}, Op: OpMask},
		{Name: "silk", Layers: []Layer{silk}, Op: OpLayer},
		{Name: "outline", Layers: []Layer{LayerEdgeCuts}, Op: OpOutline},
	}
}

// Render implements Renderer.
func (sub *Substrate) Render(s *Session) error {
	sub.session = s
	sub.boardBox = s.Engine().BoundingBox()

	sub.container = etree.NewElement("g")
	sub.container.CreateAttr("id", "substrate")
	sub.container.CreateAttr("clip-path", "url(#cut-off)")

	err := s.ExecutePlotPlan(sub.plan(s.RenderBack()), func(action PlotAction, file string) error {
		switch action.Op {
		case OpBaseLayer:
			return sub.processBaseLayer(action.Name, file)
		case OpLayer:
			return sub.processLayer(action.Name, file)
		case OpMask:
			return sub.processMask(action.Name, file)
		case OpOutline:
			return sub.processOutline(action.Name, file)
		default:
			return fmt.Errorf("unexpected layer operation %d for %s", action.Op, action.Name)
		}
	})
	if err != nil {
		return err
	}

	if sub.DrillHoles {
		sub.buildHoleMask(s)
		sub.container.CreateAttr("mask", "url(#hole-mask)")
	}
	s.AppendBoardElement(sub.container)
	return nil
}

func (sub *Substrate) forbiddenColors() []string {
	if sub.DropWhiteFill {
		return []string{"#ffffff"}
	}
	return nil
}

// styledLayer creates a substrate subgroup filled and stroked with the
// surface color. Pads and silk are masked by the solder-mask defs.
func (sub *Substrate) styledLayer(name, extraStyle string) *etree.Element {
	layer := sub.container.CreateElement("g")
	layer.CreateAttr("id", "substrate-"+name)
	color := sub.session.Style().Surface(name)
	layer.CreateAttr("style", fmt.Sprintf("fill:%s; stroke:%s;%s", color, color, extraStyle))
	switch name {
	case "pads":
		layer.CreateAttr("mask", "url(#pads-mask)")
	case "silk":
		layer.CreateAttr("mask", "url(#pads-mask-silkscreen)")
	}
	return layer
}

func (sub *Substrate) processLayer(name, file string) error {
	layer := sub.styledLayer(name, "")
	return sub.importStyled(layer, file, []string{"fill", "stroke"})
}

// importStyled moves the plotted file's content into layer, stripping
// the named style keys and dropping forbidden-color elements.
func (sub *Substrate) importStyled(layer *etree.Element, file string, keys []string) error {
	root, err := svg.ReadUnique(file, sub.session.UniquePrefix()+"_")
	if err != nil {
		return err
	}
	for _, element := range svg.ExtractContent(root) {
		if !svg.StripStyle(element, keys, sub.forbiddenColors()) {
			layer.AddChild(element)
		}
	}
	return nil
}

func (sub *Substrate) processBaseLayer(name, file string) error {
	clip := sub.session.DefSlot("clipPath", "cut-off")
	polygon, err := sub.boardPolygonFrom(file)
	if err != nil {
		return err
	}
	clip.AddChild(polygon)

	layer := sub.styledLayer(name, "")
	polygon, err = sub.boardPolygonFrom(file)
	if err != nil {
		return err
	}
	layer.AddChild(polygon)
	return sub.importStyled(layer, file, []string{"fill", "stroke"})
}

func (sub *Substrate) boardPolygonFrom(file string) (*etree.Element, error) {
	root, err := svg.ReadUnique(file, sub.session.UniquePrefix()+"_")
	if err != nil {
		return nil, err
	}
	polygon, err := BoardPolygon(svg.ExtractContent(root))
	if err != nil {
		return nil, fmt.Errorf("assembling board outline: %w", err)
	}
	return polygon, nil
}

// processMask builds the solder-mask defs. The engine plots the mask
// black; the mask def needs the opposite polarity, so black becomes
// white. The silkscreen variant keeps the plot black over a white
// board-sized background, masking silk off the pads.
func (sub *Substrate) processMask(name, file string) error {
	mask := sub.session.DefSlot("mask", name)
	root, err := svg.ReadUnique(file, sub.session.UniquePrefix()+"_")
	if err != nil {
		return err
	}
	for _, element := range svg.ExtractContent(root) {
		svg.ReplaceStyleColor(element, "#000000", "#ffffff")
		mask.AddChild(element)
	}

	silkMask := sub.session.DefSlot("mask", name+"-silkscreen")
	appendBoxRect(silkMask, sub.boardBox, "white")
	root, err = svg.ReadUnique(file, sub.session.UniquePrefix()+"_")
	if err != nil {
		return err
	}
	for _, element := range svg.ExtractContent(root) {
		silkMask.AddChild(element)
	}
	return nil
}

func (sub *Substrate) processOutline(name, file string) error {
	if sub.OutlineWidth == 0 {
		return nil
	}
	layer := sub.styledLayer(name, fmt.Sprintf(" stroke-width: %d", svg.KiToSVG(sub.OutlineWidth)))
	if err := sub.importStyled(layer, file, []string{"fill", "stroke", "stroke-width"}); err != nil {
		return err
	}
	for _, hole := range collectHoles(sub.session.Engine()) {
		if hole.DrillSize[0] == 0 || hole.DrillSize[1] == 0 {
			continue
		}
		el := layer.CreateElement("path")
		el.CreateAttr("d", hole.PathD())
		el.CreateAttr("transform", hole.placementTransform())
	}
	return nil
}

// buildHoleMask punches every drill hole out of the substrate.
func (sub *Substrate) buildHoleMask(defs DefSlots) {
	mask := defs.DefSlot("mask", "hole-mask")
	container := mask.CreateElement("g")
	appendBoxRect(container, sub.boardBox, "white")
	for _, hole := range collectHoles(sub.session.Engine()) {
		appendHoleShape(container, hole)
	}
}

func appendBoxRect(parent *etree.Element, box Box, fill string) {
	rect := parent.CreateElement("rect")
	rect.CreateAttr("x", fmt.Sprint(svg.KiToSVG(box.X)))
	rect.CreateAttr("y", fmt.Sprint(svg.KiToSVG(box.Y)))
	rect.CreateAttr("width", fmt.Sprint(svg.KiToSVG(box.Width)))
	rect.CreateAttr("height", fmt.Sprint(svg.KiToSVG(box.Height)))
	rect.CreateAttr("fill", fill)
}
