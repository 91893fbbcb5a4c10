package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceDraw/pkg/kicad/plotutil"
	"github.com/OpenTraceLab/OpenTraceDraw/pkg/plot"
	"github.com/OpenTraceLab/OpenTraceDraw/pkg/svg"
)

var drawOpts struct {
	style          string
	libs           []string
	remap          string
	filter         string
	highlight      string
	side           string
	mirror         bool
	placeholders   bool
	noDrillHoles   bool
	vcuts          bool
	paste          bool
	resistorValues []string
	resistorFlip   []string
	margin         float64
	dpi            int
	werror         bool
}

var drawCmd = &cobra.Command{
	Use:   "draw <board_file> <output_file>",
	Short: "Draw a KiCad board",
	Long: `Renders a .kicad_pcb file into a drawing. The output format follows
the file extension: .svg is written directly, anything else goes
through an external SVG rasterizer (resvg, rsvg-convert or inkscape).

Component artwork is looked up on the library search paths: the
current directory, any --libs entries and the OTD_LIB_PATH
environment variable (colon separated).`,
	Args: cobra.ExactArgs(2),
	RunE: runDraw,
}

func init() {
	rootCmd.AddCommand(drawCmd)
	f := drawCmd.Flags()
	f.StringVar(&drawOpts.style, "style", "", "board color style, a name or a JSON file")
	f.StringSliceVar(&drawOpts.libs, "libs", []string{"KiCAD-base"}, "artwork libraries to search")
	f.StringVar(&drawOpts.remap, "remap", "", "JSON file remapping references to artwork (\"R1\": \"lib:name\")")
	f.StringVar(&drawOpts.filter, "filter", "", "comma separated references to draw; default draws all")
	f.StringVar(&drawOpts.highlight, "highlight", "", "comma separated references to highlight")
	f.StringVar(&drawOpts.side, "side", "front", "board side to draw: front or back")
	f.BoolVar(&drawOpts.mirror, "mirror", false, "mirror the drawing horizontally")
	f.BoolVar(&drawOpts.placeholders, "placeholders", false, "mark footprints without artwork with a red square")
	f.BoolVar(&drawOpts.noDrillHoles, "no-drill-holes", false, "do not draw drilled holes")
	f.BoolVar(&drawOpts.vcuts, "vcuts", false, "draw V-cut lines")
	f.BoolVar(&drawOpts.paste, "paste", false, "draw the paste layer")
	f.StringSliceVar(&drawOpts.resistorValues, "resistor-values", nil, "override resistor color-coding, e.g. R1:10k")
	f.StringSliceVar(&drawOpts.resistorFlip, "resistor-flip", nil, "references whose color bands are reversed")
	f.Float64Var(&drawOpts.margin, "margin", 0, "canvas margin in millimeters")
	f.IntVar(&drawOpts.dpi, "dpi", 300, "DPI for raster output")
	f.BoolVar(&drawOpts.werror, "werror", false, "treat rendering warnings as errors")
}

func runDraw(cmd *cobra.Command, args []string) error {
	boardPath, outputPath := args[0], args[1]

	if drawOpts.side != "front" && drawOpts.side != "back" {
		return fmt.Errorf("invalid --side %q: expected front or back", drawOpts.side)
	}
	resistorValues, err := parseResistorOverrides(drawOpts.resistorValues, drawOpts.resistorFlip)
	if err != nil {
		return err
	}
	remap, err := loadRemapFile(drawOpts.remap)
	if err != nil {
		return err
	}

	engine, err := plotutil.LoadBoard(boardPath)
	if err != nil {
		return err
	}

	p := plot.NewPlotter(engine)
	p.RenderBack = drawOpts.side == "back"
	p.Mirror = drawOpts.mirror
	p.Margin = svg.MMToKi(drawOpts.margin)
	p.Libs = drawOpts.libs
	p.SetupArbitraryDataPath(".")
	p.SetupArbitraryDataPath(filepath.Dir(boardPath))
	p.SetupEnvDataPath()
	p.RasterConvert = rasterConvert

	if drawOpts.style != "" {
		if err := p.ResolveStyle(drawOpts.style); err != nil {
			return err
		}
	}

	var warnings []string
	p.YieldWarning = func(tag, msg string) {
		warnings = append(warnings, msg)
		logger.Warn(msg, "tag", tag)
	}

	substrate := plot.NewSubstrate()
	substrate.DrillHoles = !drawOpts.noDrillHoles

	components := &plot.Components{
		Filter:         refMatcher(drawOpts.filter),
		Highlight:      refMatcher(drawOpts.highlight),
		Remap:          remap,
		ResistorValues: resistorValues,
		Placeholder:    drawOpts.placeholders,
	}

	plan := []plot.Renderer{substrate}
	if drawOpts.vcuts {
		plan = append(plan, plot.NewVCuts())
	}
	if drawOpts.paste {
		plan = append(plan, &plot.Paste{})
	}
	p.Plan = append(plan, components)

	logger.Debug("rendering board", "board", boardPath, "side", drawOpts.side)
	doc, err := p.Plot()
	if err != nil {
		return err
	}
	if err := p.Save(doc, outputPath, drawOpts.dpi); err != nil {
		return err
	}
	logger.Debug("drawing written", "output", outputPath)

	if drawOpts.werror && len(warnings) > 0 {
		return fmt.Errorf("%d rendering warnings treated as errors", len(warnings))
	}
	return nil
}

// refMatcher turns a comma separated reference list into a predicate.
// An empty list yields nil, which downstream means "match everything".
func refMatcher(list string) func(string) bool {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	refs := make(map[string]bool)
	for _, ref := range strings.Split(list, ",") {
		if ref = strings.TrimSpace(ref); ref != "" {
			refs[ref] = true
		}
	}
	return func(ref string) bool { return refs[ref] }
}

// parseResistorOverrides merges REF:value entries and the flip list
// into per-reference overrides.
func parseResistorOverrides(values, flips []string) (map[string]plot.ResistorValue, error) {
	if len(values) == 0 && len(flips) == 0 {
		return nil, nil
	}
	out := make(map[string]plot.ResistorValue)
	for _, entry := range values {
		ref, value, ok := strings.Cut(entry, ":")
		if !ok || ref == "" || value == "" {
			return nil, fmt.Errorf("invalid --resistor-values entry %q: expected REF:value", entry)
		}
		rv := out[ref]
		rv.Value = value
		out[ref] = rv
	}
	for _, ref := range flips {
		rv := out[ref]
		rv.FlipBands = true
		out[ref] = rv
	}
	return out, nil
}

// loadRemapFile reads a JSON object mapping references to "lib:name"
// artwork and returns the remap callback, or nil without a file.
func loadRemapFile(path string) (func(ref, lib, name string) (string, string), error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read remap file: %w", err)
	}
	var table map[string]string
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("cannot parse remap file %s: %w", path, err)
	}
	for ref, target := range table {
		if !strings.Contains(target, ":") {
			return nil, fmt.Errorf("invalid remap for %s: %q is not in lib:name form", ref, target)
		}
	}
	return func(ref, lib, name string) (string, string) {
		target, ok := table[ref]
		if !ok {
			return lib, name
		}
		newLib, newName, _ := strings.Cut(target, ":")
		return newLib, newName
	}, nil
}
