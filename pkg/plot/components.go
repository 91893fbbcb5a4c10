package plot

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/OpenTraceLab/OpenTraceDraw/pkg/svg"
)

// PlacedComponentInfo caches one loaded artwork unit. Boards place the
// same part many times; every repeat is a reference to this id instead
// of a structural copy.
type PlacedComponentInfo struct {
	ID     string
	Origin [2]float64 // Artwork-local reference point, user units
	Scale  [2]float64 // Board units per artwork user unit
	Size   [2]int     // Declared physical size, KiCad native units
}

// Components places per-footprint artwork into the component
// container: loaded once per (library, name, value), referenced on
// repeats, optionally recolored and highlighted.
type Components struct {
	// Filter selects which references are drawn. Nil draws all.
	Filter func(ref string) bool
	// Highlight selects references that get a highlight box.
	Highlight func(ref string) bool
	// Remap redirects a reference to different artwork.
	Remap func(ref, lib, name string) (string, string)
	// ResistorValues overrides color-coding per reference.
	ResistorValues map[string]ResistorValue
	// Placeholder draws a red marker for footprints without artwork
	// instead of skipping them silently.
	Placeholder bool

	session *Session
	prefix  string
	placed  map[string]PlacedComponentInfo
}

// Render implements Renderer. Front-side footprints are walked first,
// then the opposite side with a ".back" artwork suffix.
func (c *Components) Render(s *Session) error {
	c.session = s
	c.prefix = s.UniquePrefix()
	c.placed = make(map[string]PlacedComponentInfo)
	s.WalkComponents(false, func(fp FootprintRecord) {
		c.place(fp, "")
	})
	s.WalkComponents(true, func(fp FootprintRecord) {
		c.place(fp, ".back")
	})
	return nil
}

func (c *Components) uniqueName(lib, name, value string) string {
	return fmt.Sprintf("%s_%s__%s_%s", c.prefix, lib, name, value)
}

func (c *Components) place(fp FootprintRecord, suffix string) {
	name := fp.Name + suffix
	if c.Filter != nil && !c.Filter(fp.Reference) || fp.Name == "" {
		return
	}
	value := fp.Value
	if rv, ok := c.ResistorValues[fp.Reference]; ok && rv.Value != "" {
		value = rv.Value
	}
	lib := fp.Library
	if c.Remap != nil {
		lib, name = c.Remap(fp.Reference, lib, name)
	}

	unique := c.uniqueName(lib, name, value)
	info, ok := c.placed[unique]
	var element *etree.Element
	if ok {
		element = etree.NewElement("use")
		element.CreateAttr("xlink:href", "#"+info.ID)
	} else {
		created, createdInfo, err := c.createComponent(lib, name, fp.Reference, value)
		if err != nil {
			c.session.Warn("component", "%v", err)
			if c.Placeholder {
				c.session.AppendComponentElement(placeholderMarker(fp.Position))
			}
			return
		}
		element, info = created, createdInfo
		c.placed[unique] = info
	}

	c.session.AppendComponentComment(fmt.Sprintf("%s:%s:%s", lib, name, fp.Reference))
	group := etree.NewElement("g")
	group.AddChild(element)
	group.CreateAttr("transform", placementTransform(fp, info))
	c.session.AppendComponentElement(group)

	if c.Highlight != nil && c.Highlight(fp.Reference) {
		c.buildHighlight(fp, info)
	}
}

// placementTransform maps artwork-local coordinates onto the board:
// move to the footprint position, scale into board units, rotate
// against the footprint orientation, then pull the origin marker onto
// the position.
func placementTransform(fp FootprintRecord, info PlacedComponentInfo) string {
	return fmt.Sprintf("translate(%d %d) scale(%s, %s) rotate(%s) translate(%s %s)",
		svg.KiToSVG(fp.Position.X), svg.KiToSVG(fp.Position.Y),
		fmtNum(info.Scale[0]), fmtNum(info.Scale[1]),
		fmtNum(-fp.OrientationRad*180/math.Pi),
		fmtNum(-info.Origin[0]), fmtNum(-info.Origin[1]))
}

func (c *Components) createComponent(lib, name, ref, value string) (*etree.Element, PlacedComponentInfo, error) {
	file := c.session.FindArtwork(lib, name)
	if file == "" {
		return nil, PlacedComponentInfo{}, fmt.Errorf("component %s:%s has no artwork", lib, name)
	}

	idPrefix := c.session.UniquePrefix() + "_"
	root, err := svg.ReadUnique(file, idPrefix)
	if err != nil {
		return nil, PlacedComponentInfo{}, fmt.Errorf("component %s:%s: %w", lib, name, err)
	}

	widthAttr := root.SelectAttrValue("width", "")
	heightAttr := root.SelectAttrValue("height", "")
	viewBox := root.SelectAttrValue("viewBox", "")

	xmlID := svg.MakeXMLIdentifier(c.uniqueName(lib, name, value))
	element := etree.NewElement("g")
	element.CreateAttr("id", xmlID)
	for _, child := range svg.ExtractContent(root) {
		if child.Tag == "namedview" || child.Tag == "metadata" {
			continue
		}
		element.AddChild(child)
	}

	var originX, originY float64
	if origin := findByID(element, svg.OriginMarkerID); origin != nil {
		originX, originY = svg.ElementPosition(origin, element)
		if parent := origin.Parent(); parent != nil {
			parent.RemoveChild(origin)
		}
	} else {
		c.session.Warn("component", "component %s:%s has no origin", lib, name)
	}

	info, err := placedInfo(xmlID, originX, originY, widthAttr, heightAttr, viewBox)
	if err != nil {
		return nil, PlacedComponentInfo{}, fmt.Errorf("component %s:%s: %w", lib, name, err)
	}
	c.applyResistorCode(element, idPrefix, ref, value)
	return element, info, nil
}

// placedInfo derives the cacheable placement data from the artwork's
// declared physical size versus its viewBox extent.
func placedInfo(id string, originX, originY float64, widthAttr, heightAttr, viewBox string) (PlacedComponentInfo, error) {
	widthKi, err := svg.ToKiUnits(widthAttr)
	if err != nil {
		return PlacedComponentInfo{}, fmt.Errorf("bad width %q: %w", widthAttr, err)
	}
	heightKi, err := svg.ToKiUnits(heightAttr)
	if err != nil {
		return PlacedComponentInfo{}, fmt.Errorf("bad height %q: %w", heightAttr, err)
	}
	fields := strings.Fields(viewBox)
	if len(fields) != 4 {
		return PlacedComponentInfo{}, fmt.Errorf("bad viewBox %q", viewBox)
	}
	vw, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return PlacedComponentInfo{}, fmt.Errorf("bad viewBox %q: %w", viewBox, err)
	}
	vh, err := strconv.ParseFloat(fields[3], 64)
	if err != nil || vw == 0 || vh == 0 {
		return PlacedComponentInfo{}, fmt.Errorf("bad viewBox %q", viewBox)
	}
	return PlacedComponentInfo{
		ID:     id,
		Origin: [2]float64{originX, originY},
		Scale: [2]float64{
			float64(svg.KiToSVG(widthKi)) / vw,
			float64(svg.KiToSVG(heightKi)) / vh,
		},
		Size: [2]int{widthKi, heightKi},
	}, nil
}

func (c *Components) buildHighlight(fp FootprintRecord, info PlacedComponentInfo) {
	padding := svg.MMToKi(c.session.Style().HighlightPadding)
	rect := etree.NewElement("rect")
	rect.CreateAttr("id", "h_"+fp.Reference)
	rect.CreateAttr("x", fmtNum(float64(svg.KiToSVG(-padding))/info.Scale[0]))
	rect.CreateAttr("y", fmtNum(float64(svg.KiToSVG(-padding))/info.Scale[1]))
	rect.CreateAttr("width", fmtNum(float64(svg.KiToSVG(info.Size[0]+2*padding))/info.Scale[0]))
	rect.CreateAttr("height", fmtNum(float64(svg.KiToSVG(info.Size[1]+2*padding))/info.Scale[1]))
	rect.CreateAttr("style", c.session.Style().HighlightStyle)
	rect.CreateAttr("transform", placementTransform(fp, info))
	c.session.AppendHighlightElement(rect)
}

// applyResistorCode recolors res_band1..4 of resistor artwork from the
// footprint value. Artwork without bands is left alone; an unparseable
// value warns and keeps the artwork unmodified.
func (c *Components) applyResistorCode(root *etree.Element, idPrefix, ref, value string) {
	if findByID(root, idPrefix+"res_band1") == nil {
		return
	}
	res, tolerance, err := resistanceWithTolerance(value, c.session.Style())
	if err != nil {
		c.session.Warn("resistor", "cannot color-code resistor %s: %v", ref, err)
		return
	}
	if res <= 0 {
		c.session.Warn("resistor", "cannot color-code resistor %s: value %q out of range", ref, value)
		return
	}

	power := int(math.Floor(math.Log10(res))) - 1
	// Truncate like integer division; the epsilon guards against
	// 81.999... style float noise.
	digits := int(res/math.Pow(10, float64(power)) + 1e-9)
	keys := []string{
		strconv.Itoa(digits / 10 % 10),
		strconv.Itoa(digits % 10),
		strconv.Itoa(power),
		tolerance,
	}
	colors := make([]string, len(keys))
	for i, key := range keys {
		color, ok := c.session.Style().BandColor(key)
		if !ok {
			c.session.Warn("resistor", "cannot color-code resistor %s: no band color for %s", ref, key)
			return
		}
		colors[i] = color
	}
	if rv, ok := c.ResistorValues[ref]; ok && rv.FlipBands {
		for i, j := 0, len(colors)-1; i < j; i, j = i+1, j-1 {
			colors[i], colors[j] = colors[j], colors[i]
		}
	}
	for i, color := range colors {
		band := findByID(root, fmt.Sprintf("%sres_band%d", idPrefix, i+1))
		if band == nil {
			continue
		}
		recolorBand(band, color)
	}
}

// recolorBand rewrites the band's fill and forces it visible.
func recolorBand(band *etree.Element, color string) {
	styles := svg.ParseStyleAttr(band.SelectAttrValue("style", ""))
	for i := range styles {
		switch styles[i][0] {
		case "fill":
			styles[i][1] = color
		case "display":
			styles[i][1] = "inline"
		}
	}
	band.CreateAttr("style", svg.FormatStyleAttr(styles))
}

func findByID(root *etree.Element, id string) *etree.Element {
	var found *etree.Element
	svg.Walk(root, func(el *etree.Element) {
		if found == nil && el.SelectAttrValue("id", "") == id {
			found = el
		}
	})
	return found
}

// placeholderMarker is the fixed-size red square marking a footprint
// center when no artwork could be drawn.
func placeholderMarker(pos Point) *etree.Element {
	half := svg.MMToKi(0.5)
	rect := etree.NewElement("rect")
	rect.CreateAttr("x", fmt.Sprint(svg.KiToSVG(pos.X-half)))
	rect.CreateAttr("y", fmt.Sprint(svg.KiToSVG(pos.Y-half)))
	rect.CreateAttr("width", fmt.Sprint(svg.KiToSVG(svg.MMToKi(1))))
	rect.CreateAttr("height", fmt.Sprint(svg.KiToSVG(svg.MMToKi(1))))
	rect.CreateAttr("style", "fill:red;")
	return rect
}

// Placeholders marks every footprint center with a red square. Used by
// callers that want positions without any artwork lookup.
type Placeholders struct{}

// Render implements Renderer.
func (Placeholders) Render(s *Session) error {
	s.WalkComponents(false, func(fp FootprintRecord) {
		s.AppendComponentElement(placeholderMarker(fp.Position))
	})
	return nil
}
