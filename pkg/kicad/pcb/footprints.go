package pcb

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceDraw/pkg/kicad/sexp"
)

// parseFootprint extracts a footprint (component) definition.
// Expected format: (footprint "library:name" (layer "layer") (at x y [angle]) ...)
func parseFootprint(node *sexp.Expr) (*Footprint, error) {
	fp := &Footprint{}

	fpName, err := node.Str(1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse footprint name: %w", err)
	}

	// Split "Resistor_SMD:R_0603_1608Metric" into library and name
	if lib, name, found := strings.Cut(fpName, ":"); found {
		fp.Library = lib
		fp.Name = name
	} else {
		fp.Name = fpName
	}

	layerNode, found := node.Find("layer")
	if !found {
		return nil, fmt.Errorf("missing required 'layer' field")
	}
	if fp.Layer, err = layerNode.Str(1); err != nil {
		return nil, fmt.Errorf("failed to parse layer: %w", err)
	}

	atNode, found := node.Find("at")
	if !found {
		return nil, fmt.Errorf("missing required 'at' position")
	}
	if fp.Position.X, err = atNode.Float(1); err != nil {
		return nil, fmt.Errorf("failed to parse X position: %w", err)
	}
	if fp.Position.Y, err = atNode.Float(2); err != nil {
		return nil, fmt.Errorf("failed to parse Y position: %w", err)
	}
	fp.Angle = atNode.FloatOr(3, 0)

	// Reference and Value come from (property ...) nodes in v7+, with the
	// older (fp_text reference ...) form as fallback
	for _, propNode := range node.FindAll("property") {
		propName, err := propNode.Str(1)
		if err != nil {
			continue
		}
		propValue, err := propNode.Str(2)
		if err != nil {
			continue
		}
		switch propName {
		case "Reference":
			fp.Reference = propValue
		case "Value":
			fp.Value = propValue
		}
	}
	for _, textNode := range node.FindAll("fp_text") {
		kind, err := textNode.Str(1)
		if err != nil {
			continue
		}
		text, err := textNode.Str(2)
		if err != nil {
			continue
		}
		switch kind {
		case "reference":
			if fp.Reference == "" {
				fp.Reference = text
			}
		case "value":
			if fp.Value == "" {
				fp.Value = text
			}
		}
	}

	for _, padNode := range node.FindAll("pad") {
		pad, err := parsePad(padNode)
		if err != nil {
			continue
		}
		fp.Pads = append(fp.Pads, *pad)
	}

	fp.Graphics = parseGraphics(node, footprintGraphicKeys)
	return fp, nil
}

// parsePad extracts a pad definition from a footprint.
// Expected format: (pad "number" type shape (at x y [angle]) (size w h) (drill [oval] d [d2]) (layers ...))
func parsePad(node *sexp.Expr) (*Pad, error) {
	pad := &Pad{}
	var err error

	if pad.Number, err = node.Str(1); err != nil {
		return nil, fmt.Errorf("failed to parse pad number: %w", err)
	}
	if pad.Type, err = node.Str(2); err != nil {
		return nil, fmt.Errorf("failed to parse pad type: %w", err)
	}
	if pad.Shape, err = node.Str(3); err != nil {
		return nil, fmt.Errorf("failed to parse pad shape: %w", err)
	}

	atNode, found := node.Find("at")
	if !found {
		return nil, fmt.Errorf("missing required 'at' position")
	}
	if pad.Position.X, err = atNode.Float(1); err != nil {
		return nil, fmt.Errorf("failed to parse pad X position: %w", err)
	}
	if pad.Position.Y, err = atNode.Float(2); err != nil {
		return nil, fmt.Errorf("failed to parse pad Y position: %w", err)
	}
	pad.Angle = atNode.FloatOr(3, 0)

	sizeNode, found := node.Find("size")
	if !found {
		return nil, fmt.Errorf("missing required 'size' field")
	}
	pad.Size = Size{Width: sizeNode.FloatOr(1, 0), Height: sizeNode.FloatOr(2, 0)}

	if drillNode, found := node.Find("drill"); found {
		pad.Drill = parseDrill(drillNode)
	}

	if layersNode, found := node.Find("layers"); found {
		for _, item := range layersNode.Items() {
			if item.IsLeaf() && item.Atom != "" {
				pad.Layers = append(pad.Layers, item.Atom)
			}
		}
	} else {
		return nil, fmt.Errorf("missing required 'layers' field")
	}

	return pad, nil
}

// parseDrill reads (drill d) and (drill oval w h) forms.
func parseDrill(node *sexp.Expr) Size {
	first, err := node.Str(1)
	if err != nil {
		return Size{}
	}
	if first == "oval" {
		w := node.FloatOr(2, 0)
		h := node.FloatOr(3, w)
		return Size{Width: w, Height: h}
	}
	d := node.FloatOr(1, 0)
	return Size{Width: d, Height: d}
}

// OnLayer reports whether the pad appears on the named copper or mask
// layer, honoring *.Cu / *.Mask wildcards.
func (p *Pad) OnLayer(name string) bool {
	for _, l := range p.Layers {
		if l == name {
			return true
		}
		if strings.HasPrefix(l, "*.") && strings.HasSuffix(name, l[1:]) {
			return true
		}
	}
	return false
}
