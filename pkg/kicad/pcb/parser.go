package pcb

import (
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/OpenTraceDraw/pkg/kicad/sexp"
)

// Minimum supported KiCad version (6.0 = 20211014)
const MinSupportedVersion = 20211014

// ParseFile reads and parses a KiCad board file.
func ParseFile(filename string) (*Board, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open board: %w", err)
	}
	defer file.Close()

	board, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return board, nil
}

// Parse reads and parses a KiCad board from an io.Reader.
func Parse(r io.Reader) (*Board, error) {
	exprs, err := sexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}
	if len(exprs) == 0 {
		return nil, fmt.Errorf("empty file or no valid s-expressions found")
	}

	root := exprs[0]
	if root.Name() != "kicad_pcb" {
		return nil, fmt.Errorf("not a KiCad PCB file: expected 'kicad_pcb', got %q", root.Name())
	}

	version, generator, err := parseHeader(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	board := &Board{
		Version:   version,
		Generator: generator,
	}

	if generalNode, found := root.Find("general"); found {
		board.General = parseGeneral(generalNode)
	}

	if layersNode, found := root.Find("layers"); found {
		layers, err := parseLayers(layersNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layers section: %w", err)
		}
		board.Layers = layers
	}

	board.Graphics = parseGraphics(root, boardGraphicKeys)
	board.Tracks = parseTracks(root)
	board.Vias = parseVias(root)

	for _, fpNode := range root.FindAll("footprint") {
		fp, err := parseFootprint(fpNode)
		if err != nil {
			// Skip malformed footprints, keep parsing the rest
			continue
		}
		board.Footprints = append(board.Footprints, *fp)
	}

	return board, nil
}

// parseHeader extracts version and generator information from the root.
// Expected format: (kicad_pcb (version 20221018) (generator pcbnew) ...)
func parseHeader(root *sexp.Expr) (version int, generator string, err error) {
	versionNode, found := root.Find("version")
	if !found {
		return 0, "", fmt.Errorf("missing required 'version' field")
	}

	ver, err := versionNode.Int(1)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse version: %w", err)
	}
	if ver < MinSupportedVersion {
		return 0, "", fmt.Errorf("unsupported KiCad version: %d (minimum required: %d / KiCad 6.0)", ver, MinSupportedVersion)
	}

	gen := "unknown"
	if hostNode, found := root.Find("host"); found {
		// Older format: (host pcbnew "(6.0.0)")
		if tool, err := hostNode.Str(1); err == nil {
			gen = tool
		}
	} else if genNode, found := root.Find("generator"); found {
		// Newer format: (generator "pcbnew")
		if name, err := genNode.Str(1); err == nil {
			gen = name
		}
	}

	return ver, gen, nil
}

// parseGeneral extracts general board properties.
// Expected format: (general (thickness 1.6) (title "Board") ...)
func parseGeneral(node *sexp.Expr) General {
	general := General{}
	if n, found := node.Find("thickness"); found {
		general.Thickness = n.FloatOr(1, 0)
	}
	if n, found := node.Find("title"); found {
		general.Title, _ = n.Str(1)
	}
	if n, found := node.Find("date"); found {
		general.Date, _ = n.Str(1)
	}
	if n, found := node.Find("rev"); found {
		general.Revision, _ = n.Str(1)
	}
	if n, found := node.Find("company"); found {
		general.Company, _ = n.Str(1)
	}
	return general
}

// parseLayers extracts the layer table.
// Expected format: (layers (0 "F.Cu" signal) (31 "B.Cu" signal) ...)
func parseLayers(node *sexp.Expr) ([]Layer, error) {
	items := node.Items()
	if len(items) == 0 {
		return nil, fmt.Errorf("no layers defined")
	}

	var layers []Layer
	for _, layerNode := range items {
		if layerNode.IsLeaf() {
			continue
		}
		number, err := layerNode.Int(0)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer number: %w", err)
		}
		name, err := layerNode.Str(1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer name: %w", err)
		}
		layerType, err := layerNode.Str(2)
		if err != nil {
			layerType = "user"
		}
		layers = append(layers, Layer{Number: number, Name: name, Type: layerType})
	}
	return layers, nil
}

// parseTracks extracts copper segments.
// Expected format: (segment (start x y) (end x y) (width w) (layer "F.Cu") (net n))
func parseTracks(root *sexp.Expr) []Track {
	var tracks []Track
	for _, node := range root.FindAll("segment") {
		track := Track{}
		start, found := node.Find("start")
		if !found {
			continue
		}
		end, found := node.Find("end")
		if !found {
			continue
		}
		track.Start = Position{X: start.FloatOr(1, 0), Y: start.FloatOr(2, 0)}
		track.End = Position{X: end.FloatOr(1, 0), Y: end.FloatOr(2, 0)}
		if w, found := node.Find("width"); found {
			track.Width = w.FloatOr(1, 0)
		}
		if l, found := node.Find("layer"); found {
			track.Layer, _ = l.Str(1)
		}
		tracks = append(tracks, track)
	}
	return tracks
}

// parseVias extracts vias.
// Expected format: (via (at x y) (size s) (drill d) (layers "F.Cu" "B.Cu") (net n))
func parseVias(root *sexp.Expr) []Via {
	var vias []Via
	for _, node := range root.FindAll("via") {
		at, found := node.Find("at")
		if !found {
			continue
		}
		via := Via{Position: Position{X: at.FloatOr(1, 0), Y: at.FloatOr(2, 0)}}
		if s, found := node.Find("size"); found {
			via.Size = s.FloatOr(1, 0)
		}
		if d, found := node.Find("drill"); found {
			via.Drill = d.FloatOr(1, 0)
		}
		vias = append(vias, via)
	}
	return vias
}
