package plot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/OpenTraceLab/OpenTraceDraw/pkg/svg"
)

// LibPathEnv names the environment variable holding extra artwork
// search paths, colon separated.
const LibPathEnv = "OTD_LIB_PATH"

// Renderer is one step of a plot plan: substrate, components, paste,
// v-cuts or placeholders. Steps run in plan order against one session.
type Renderer interface {
	Render(s *Session) error
}

// Narrow views over a Session. Each composition helper takes only the
// capabilities it needs.
type (
	// DefSlots allocates named reusable defs (clip paths, masks).
	DefSlots interface {
		DefSlot(tag, id string) *etree.Element
	}
	// WarningSink reports non-fatal rendering problems.
	WarningSink interface {
		Warn(tag, format string, args ...any)
	}
	// Styler exposes the active color scheme.
	Styler interface {
		Style() *Style
	}
)

// RasterFunc converts a finished SVG file to a raster image.
type RasterFunc func(svgPath, outputPath string, dpi int) error

// Plotter is the top-level builder for board drawings. Configure it
// step by step, then call Plot. Search paths, style and plan persist
// across calls; per-call document state lives in the Session.
type Plotter struct {
	engine Engine

	RenderBack bool
	Mirror     bool
	Margin     int // Canvas margin in KiCad native units

	Style     *Style
	DataPaths []string // Base paths for artwork library lookup
	Libs      []string // Names of artwork libraries to search

	Plan []Renderer

	// YieldWarning receives non-fatal problems. Defaults to a no-op.
	YieldWarning func(tag, msg string)

	// RasterConvert handles non-SVG Save targets. Optional.
	RasterConvert RasterFunc
}

// NewPlotter returns a plotter with the default plan (substrate and
// components) and the builtin style.
func NewPlotter(engine Engine) *Plotter {
	return &Plotter{
		engine: engine,
		Style:  DefaultStyle(),
		Plan: []Renderer{
			NewSubstrate(),
			&Components{},
		},
		YieldWarning: func(tag, msg string) {},
	}
}

// SetupEnvDataPath appends search paths from OTD_LIB_PATH.
func (p *Plotter) SetupEnvDataPath() {
	for _, path := range strings.Split(os.Getenv(LibPathEnv), ":") {
		if path != "" {
			p.DataPaths = append(p.DataPaths, path)
		}
	}
}

// SetupArbitraryDataPath appends one search path.
func (p *Plotter) SetupArbitraryDataPath(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	p.DataPaths = append(p.DataPaths, path)
}

// ResolveStyle finds a named style file on the data paths and loads it.
func (p *Plotter) ResolveStyle(name string) error {
	path := p.findDataFile(name, ".json")
	if path == "" {
		return fmt.Errorf("cannot locate resource %s; explored paths: %s",
			name, strings.Join(p.DataPaths, ", "))
	}
	style, err := LoadStyle(path)
	if err != nil {
		return err
	}
	p.Style = style
	return nil
}

func (p *Plotter) findDataFile(name, extension string) string {
	if !strings.HasSuffix(name, extension) {
		name += extension
	}
	if fileExists(name) {
		return name
	}
	for _, path := range p.DataPaths {
		full := filepath.Join(path, name)
		if fileExists(full) {
			return full
		}
	}
	return ""
}

// Plot renders the board. Every call starts a fresh session: document,
// defs, id sequence and the dedup cache all reset.
func (p *Plotter) Plot() (*etree.Document, error) {
	s := p.newSession()
	s.setupDocument()
	for _, step := range p.Plan {
		if err := step.Render(s); err != nil {
			return nil, err
		}
	}
	root := s.doc.Root()
	svg.RemoveEmptyGroups(root)
	svg.RemoveEditorAnnotations(root)
	svg.Shrink(s.doc, p.Margin)
	return s.doc, nil
}

// Save writes the document. An .svg path is written verbatim; any
// other extension goes through a scratch SVG and the raster converter.
func (p *Plotter) Save(doc *etree.Document, path string, dpi int) error {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		if err := doc.WriteToFile(path); err != nil {
			return fmt.Errorf("cannot write %s: %w", path, err)
		}
		return nil
	}
	if p.RasterConvert == nil {
		return fmt.Errorf("cannot save %s: no raster converter configured", path)
	}
	dir, err := os.MkdirTemp("", "otd-raster-")
	if err != nil {
		return fmt.Errorf("cannot create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)
	scratch := filepath.Join(dir, "drawing.svg")
	if err := doc.WriteToFile(scratch); err != nil {
		return fmt.Errorf("cannot write %s: %w", scratch, err)
	}
	return p.RasterConvert(scratch, path, dpi)
}

func (p *Plotter) newSession() *Session {
	var libPaths []string
	for _, lib := range p.Libs {
		for _, base := range p.DataPaths {
			dir := filepath.Join(base, lib)
			if dirExists(dir) {
				libPaths = append(libPaths, dir)
			}
		}
	}
	return &Session{plotter: p, libPaths: libPaths}
}

// Session holds the state of one Plot call: the document under
// construction, its containers and defs, and the id sequence that keeps
// imported artwork ids unique.
type Session struct {
	plotter  *Plotter
	libPaths []string

	doc   *etree.Document
	defs  *etree.Element
	board *etree.Element
	comps *etree.Element
	high  *etree.Element

	idSeq int
}

// RenderBack reports whether the back side is being drawn.
func (s *Session) RenderBack() bool { return s.plotter.RenderBack }

// Engine returns the board-design engine.
func (s *Session) Engine() Engine { return s.plotter.engine }

// Style returns the active color scheme.
func (s *Session) Style() *Style { return s.plotter.Style }

// UniquePrefix returns the next session-unique id prefix.
func (s *Session) UniquePrefix() string {
	s.idSeq++
	return fmt.Sprintf("pref_%d", s.idSeq)
}

// DefSlot creates a named definition in the document defs.
func (s *Session) DefSlot(tag, id string) *etree.Element {
	slot := s.defs.CreateElement(tag)
	slot.CreateAttr("id", id)
	return slot
}

// AppendBoardElement adds an element to the board container.
func (s *Session) AppendBoardElement(el *etree.Element) {
	s.board.AddChild(el)
}

// AppendComponentElement adds an element to the component container.
func (s *Session) AppendComponentElement(el *etree.Element) {
	s.comps.AddChild(el)
}

// AppendComponentComment adds a marker comment to the component
// container, so the output stays navigable by hand.
func (s *Session) AppendComponentComment(text string) {
	s.comps.CreateComment(text)
}

// AppendHighlightElement adds an element to the highlight container.
func (s *Session) AppendHighlightElement(el *etree.Element) {
	s.high.AddChild(el)
}

// Warn reports a non-fatal problem through the plotter's sink.
func (s *Session) Warn(tag, format string, args ...any) {
	s.plotter.YieldWarning(tag, fmt.Sprintf(format, args...))
}

// WalkComponents invokes fn for every footprint on the rendered side.
// invertSide selects the opposite side, used for back-side artwork.
func (s *Session) WalkComponents(invertSide bool, fn func(FootprintRecord)) {
	renderBack := s.plotter.RenderBack != invertSide
	for _, fp := range s.plotter.engine.Footprints() {
		if fp.OnBack != renderBack {
			continue
		}
		fn(fp)
	}
}

// FindArtwork resolves a footprint to its artwork file on the library
// search paths, or "" when none exists.
func (s *Session) FindArtwork(lib, name string) string {
	for _, path := range s.libPaths {
		f := filepath.Join(path, lib, name+".svg")
		if fileExists(f) {
			return f
		}
	}
	return ""
}

// ExecutePlotPlan plots the actions into a scratch directory and hands
// each produced file to handle. The scratch directory is removed on
// every exit path.
func (s *Session) ExecutePlotPlan(actions []PlotAction, handle func(PlotAction, string) error) error {
	dir, err := os.MkdirTemp("", "otd-plot-")
	if err != nil {
		return fmt.Errorf("cannot create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	files, err := s.plotter.engine.PlotLayers(dir, actions)
	if err != nil {
		return fmt.Errorf("plotting layers: %w", err)
	}
	for _, action := range actions {
		file, ok := files[action.Name]
		if !ok {
			continue
		}
		if err := handle(action, file); err != nil {
			return err
		}
	}
	return nil
}

// setupDocument builds the output skeleton: canvas sized to the board
// in millimeters, view region in KiCad native units, and the three
// ordered containers. Rendering the back without mirroring (or the
// front mirrored) flips the whole drawing horizontally.
func (s *Session) setupDocument() {
	bb := s.plotter.engine.BoundingBox()

	transform := ""
	viewX := svg.KiToSVG(bb.X)
	if s.plotter.RenderBack != s.plotter.Mirror {
		transform = "scale(-1,1)"
		viewX = svg.KiToSVG(-bb.Width - bb.X)
	}
	s.doc = svg.EmptyDocument(map[string]string{
		"width":  fmt.Sprintf("%vmm", svg.KiToMM(bb.Width)),
		"height": fmt.Sprintf("%vmm", svg.KiToMM(bb.Height)),
		"viewBox": fmt.Sprintf("%d %d %d %d",
			viewX, svg.KiToSVG(bb.Y),
			svg.KiToSVG(bb.Width), svg.KiToSVG(bb.Height)),
	})
	root := s.doc.Root()

	s.defs = root.CreateElement("defs")
	container := func() *etree.Element {
		g := root.CreateElement("g")
		if transform != "" {
			g.CreateAttr("transform", transform)
		}
		return g
	}
	s.board = container()
	if s.plotter.Style.HighlightOnTop {
		s.comps = container()
		s.high = container()
	} else {
		s.high = container()
		s.comps = container()
	}
	s.board.CreateAttr("id", "boardContainer")
	s.comps.CreateAttr("id", "componentContainer")
	s.high.CreateAttr("id", "highlightContainer")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
