// Package plotutil adapts a parsed KiCad board to the drawing pipeline.
// It enumerates board geometry in KiCad native units and plots layer
// unions into monochrome SVG files the pipeline post-processes.
package plotutil

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/beevik/etree"

	"github.com/OpenTraceLab/OpenTraceDraw/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTraceDraw/pkg/plot"
	"github.com/OpenTraceLab/OpenTraceDraw/pkg/svg"
)

// Engine plots a KiCad board. It implements plot.Engine.
type Engine struct {
	board *pcb.Board
	bbox  pcb.BoundingBox
}

// LoadBoard parses a .kicad_pcb file and wraps it in an Engine.
func LoadBoard(path string) (*Engine, error) {
	board, err := pcb.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading board %s: %w", path, err)
	}
	return NewEngine(board), nil
}

// NewEngine wraps an already parsed board.
func NewEngine(board *pcb.Board) *Engine {
	return &Engine{board: board, bbox: board.GetBoundingBox()}
}

// Board returns the underlying parsed board.
func (e *Engine) Board() *pcb.Board { return e.board }

// BoundingBox returns the board extent in KiCad native units.
func (e *Engine) BoundingBox() plot.Box {
	return plot.Box{
		X:      svg.MMToKi(e.bbox.MinX),
		Y:      svg.MMToKi(e.bbox.MinY),
		Width:  svg.MMToKi(e.bbox.Width()),
		Height: svg.MMToKi(e.bbox.Height()),
	}
}

// Footprints returns every placed component. Only drilled pads are
// reported; SMD pads contribute no holes.
func (e *Engine) Footprints() []plot.FootprintRecord {
	out := make([]plot.FootprintRecord, 0, len(e.board.Footprints))
	for i := range e.board.Footprints {
		fp := &e.board.Footprints[i]
		rec := plot.FootprintRecord{
			Library:        fp.Library,
			Name:           fp.Name,
			Reference:      fp.Reference,
			Value:          fp.Value,
			Position:       toPoint(fp.Position),
			OrientationRad: fp.Angle * math.Pi / 180,
			OnBack:         fp.OnBack(),
		}
		for _, pad := range fp.Pads {
			if pad.Drill.Width == 0 || pad.Drill.Height == 0 {
				continue
			}
			rec.Pads = append(rec.Pads, plot.HoleRecord{
				Position:       toPoint(fp.PadPosition(pad)),
				OrientationDeg: fp.Angle + pad.Angle,
				DrillWidth:     svg.MMToKi(pad.Drill.Width),
				DrillHeight:    svg.MMToKi(pad.Drill.Height),
			})
		}
		out = append(out, rec)
	}
	return out
}

// Vias returns every plated through hole.
func (e *Engine) Vias() []plot.ViaRecord {
	out := make([]plot.ViaRecord, 0, len(e.board.Vias))
	for _, via := range e.board.Vias {
		out = append(out, plot.ViaRecord{
			Position: toPoint(via.Position),
			Drill:    svg.MMToKi(via.Drill),
		})
	}
	return out
}

// PlotLayers writes one SVG file per action into dir. Actions whose
// layers carry no geometry produce no file and are absent from the
// returned map.
func (e *Engine) PlotLayers(dir string, actions []plot.PlotAction) (map[string]string, error) {
	files := make(map[string]string, len(actions))
	for i, action := range actions {
		doc := e.plotAction(action)
		if doc == nil {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%02d-%s.svg", i, action.Name))
		if err := doc.WriteToFile(path); err != nil {
			return nil, fmt.Errorf("writing %s plot: %w", action.Name, err)
		}
		files[action.Name] = path
	}
	return files, nil
}

// plotAction renders the union of the action's layers, or nil when
// nothing was drawn.
func (e *Engine) plotAction(action plot.PlotAction) *etree.Document {
	box := e.BoundingBox()
	doc := svg.EmptyDocument(map[string]string{
		"width":   fmt.Sprintf("%vmm", svg.KiToMM(box.Width)),
		"height":  fmt.Sprintf("%vmm", svg.KiToMM(box.Height)),
		"viewBox": fmt.Sprintf("%d %d %d %d", svg.KiToSVG(box.X), svg.KiToSVG(box.Y), svg.KiToSVG(box.Width), svg.KiToSVG(box.Height)),
	})
	group := doc.Root().CreateElement("g")
	group.CreateAttr("id", "plot-"+action.Name)
	for _, layer := range action.Layers {
		e.drawLayer(group, layer)
	}
	if len(group.ChildElements()) == 0 {
		return nil
	}
	return doc
}

func (e *Engine) drawLayer(parent *etree.Element, layer plot.Layer) {
	name := layer.String()
	edge := layer == plot.LayerEdgeCuts

	for _, g := range e.board.GraphicsOnLayer(name) {
		drawGraphic(parent, g, edge)
	}
	for i := range e.board.Footprints {
		fp := &e.board.Footprints[i]
		for _, g := range fp.Graphics {
			if g.Layer == name {
				drawGraphic(parent, fp.TransformGraphic(g), edge)
			}
		}
		for _, pad := range fp.Pads {
			if pad.OnLayer(name) {
				drawPad(parent, fp, pad)
			}
		}
	}
	for _, track := range e.board.Tracks {
		if track.Layer == name {
			drawTrack(parent, track)
		}
	}
	if layer == plot.LayerFrontCopper || layer == plot.LayerBackCopper {
		for _, via := range e.board.Vias {
			drawVia(parent, via)
		}
	}
}

func toPoint(p pcb.Position) plot.Point {
	return plot.Point{X: svg.MMToKi(p.X), Y: svg.MMToKi(p.Y)}
}
