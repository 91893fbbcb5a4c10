package cli

import (
	"fmt"
	"os/exec"
	"strconv"
)

// rasterizers lists the external SVG converters we know how to drive,
// in preference order.
var rasterizers = []struct {
	binary string
	args   func(svgPath, outputPath string, dpi int) []string
}{
	{"resvg", func(svgPath, outputPath string, dpi int) []string {
		return []string{"--dpi", strconv.Itoa(dpi), svgPath, outputPath}
	}},
	{"rsvg-convert", func(svgPath, outputPath string, dpi int) []string {
		return []string{"--dpi-x", strconv.Itoa(dpi), "--dpi-y", strconv.Itoa(dpi),
			"--output", outputPath, svgPath}
	}},
	{"inkscape", func(svgPath, outputPath string, dpi int) []string {
		return []string{"--export-dpi", strconv.Itoa(dpi),
			"--export-filename", outputPath, svgPath}
	}},
}

// rasterConvert renders an SVG file to a raster image through the
// first available external converter.
func rasterConvert(svgPath, outputPath string, dpi int) error {
	for _, r := range rasterizers {
		bin, err := exec.LookPath(r.binary)
		if err != nil {
			continue
		}
		logger.Debug("rasterizing", "converter", r.binary, "output", outputPath)
		out, err := exec.Command(bin, r.args(svgPath, outputPath, dpi)...).CombinedOutput()
		if err != nil {
			return fmt.Errorf("%s failed: %w\n%s", r.binary, err, out)
		}
		return nil
	}
	return fmt.Errorf("no SVG rasterizer found; install resvg, rsvg-convert or inkscape, or use an .svg output")
}
