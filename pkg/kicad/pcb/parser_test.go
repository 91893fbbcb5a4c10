package pcb

import (
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceDraw/pkg/kicad/sexp"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantVersion int
		wantGen     string
		wantErr     bool
	}{
		{
			name:        "valid KiCad 6.0 with generator",
			input:       "(kicad_pcb (version 20211014) (generator pcbnew))",
			wantVersion: 20211014,
			wantGen:     "pcbnew",
		},
		{
			name:        "valid KiCad 6.0 with host",
			input:       "(kicad_pcb (version 20221018) (host pcbnew \"(6.0.10)\"))",
			wantVersion: 20221018,
			wantGen:     "pcbnew",
		},
		{
			name:    "missing version",
			input:   "(kicad_pcb (generator pcbnew))",
			wantErr: true,
		},
		{
			name:    "old version (KiCad 5)",
			input:   "(kicad_pcb (version 20171130))",
			wantErr: true,
		},
		{
			name:        "no generator defaults to unknown",
			input:       "(kicad_pcb (version 20211014))",
			wantVersion: 20211014,
			wantGen:     "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exprs, err := sexp.ParseString(tt.input)
			if err != nil {
				t.Fatalf("Failed to parse s-expression: %v", err)
			}

			version, gen, err := parseHeader(exprs[0])
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if version != tt.wantVersion {
				t.Errorf("version = %d, want %d", version, tt.wantVersion)
			}
			if gen != tt.wantGen {
				t.Errorf("generator = %q, want %q", gen, tt.wantGen)
			}
		})
	}
}

const minimalBoard = `
(kicad_pcb (version 20211014) (generator pcbnew)
  (general (thickness 1.6))
  (layers
    (0 "F.Cu" signal)
    (31 "B.Cu" signal)
    (44 "Edge.Cuts" user)
  )
  (gr_line (start 0 0) (end 10 0) (stroke (width 0.1) (type solid)) (layer "Edge.Cuts"))
  (gr_line (start 10 0) (end 10 10) (stroke (width 0.1) (type solid)) (layer "Edge.Cuts"))
  (gr_arc (start 10 10) (mid 5 12) (end 0 10) (stroke (width 0.1) (type solid)) (layer "Edge.Cuts"))
  (gr_line (start 0 10) (end 0 0) (stroke (width 0.1) (type solid)) (layer "Edge.Cuts"))
  (segment (start 2 2) (end 8 2) (width 0.25) (layer "F.Cu") (net 1))
  (via (at 5 5) (size 0.8) (drill 0.4) (layers "F.Cu" "B.Cu") (net 1))
  (footprint "Resistor_THT:R_Axial_DIN0207" (layer "F.Cu")
    (at 5 2 90)
    (property "Reference" "R1")
    (property "Value" "4k7")
    (pad "1" thru_hole circle (at -3.81 0) (size 1.6 1.6) (drill 0.8) (layers "*.Cu" "*.Mask"))
    (pad "2" thru_hole oval (at 3.81 0 90) (size 1.6 1.6) (drill oval 0.8 1.2) (layers "*.Cu" "*.Mask"))
    (fp_line (start -1.5 0) (end 1.5 0) (stroke (width 0.12) (type solid)) (layer "F.SilkS"))
  )
)`

func TestParseBoard(t *testing.T) {
	board, err := Parse(strings.NewReader(minimalBoard))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if board.Version != 20211014 {
		t.Errorf("Version = %d", board.Version)
	}
	if board.General.Thickness != 1.6 {
		t.Errorf("Thickness = %v", board.General.Thickness)
	}
	if len(board.Layers) != 3 {
		t.Errorf("Layers = %d, want 3", len(board.Layers))
	}
	if len(board.Tracks) != 1 {
		t.Fatalf("Tracks = %d, want 1", len(board.Tracks))
	}
	if board.Tracks[0].Layer != "F.Cu" || board.Tracks[0].Width != 0.25 {
		t.Errorf("Track = %+v", board.Tracks[0])
	}
	if len(board.Vias) != 1 || board.Vias[0].Drill != 0.4 {
		t.Errorf("Vias = %+v", board.Vias)
	}

	edge := board.GraphicsOnLayer("Edge.Cuts")
	if len(edge) != 4 {
		t.Errorf("Edge.Cuts graphics = %d, want 4", len(edge))
	}
	arcs := 0
	for _, g := range edge {
		if g.Kind == GraphicArc {
			arcs++
			if g.Mid.X != 5 || g.Mid.Y != 12 {
				t.Errorf("arc mid = %+v", g.Mid)
			}
		}
	}
	if arcs != 1 {
		t.Errorf("arcs = %d, want 1", arcs)
	}
}

func TestParseFootprint(t *testing.T) {
	board, err := Parse(strings.NewReader(minimalBoard))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(board.Footprints) != 1 {
		t.Fatalf("Footprints = %d, want 1", len(board.Footprints))
	}

	fp := board.Footprints[0]
	if fp.Library != "Resistor_THT" || fp.Name != "R_Axial_DIN0207" {
		t.Errorf("lib:name = %s:%s", fp.Library, fp.Name)
	}
	if fp.Reference != "R1" || fp.Value != "4k7" {
		t.Errorf("ref/value = %s/%s", fp.Reference, fp.Value)
	}
	if fp.Angle != 90 {
		t.Errorf("Angle = %v, want 90", fp.Angle)
	}
	if fp.OnBack() {
		t.Error("OnBack() = true for F.Cu footprint")
	}

	if len(fp.Pads) != 2 {
		t.Fatalf("Pads = %d, want 2", len(fp.Pads))
	}
	round := fp.Pads[0]
	if round.Drill.Width != 0.8 || round.Drill.Height != 0.8 {
		t.Errorf("round drill = %+v", round.Drill)
	}
	oval := fp.Pads[1]
	if oval.Drill.Width != 0.8 || oval.Drill.Height != 1.2 {
		t.Errorf("oval drill = %+v", oval.Drill)
	}
	if !round.OnLayer("F.Cu") || !round.OnLayer("B.Mask") {
		t.Error("wildcard layers should match F.Cu and B.Mask")
	}
	if round.OnLayer("F.SilkS") {
		t.Error("pad must not match silkscreen layer")
	}

	if len(fp.Graphics) != 1 || fp.Graphics[0].Layer != "F.SilkS" {
		t.Errorf("footprint graphics = %+v", fp.Graphics)
	}
}

func TestParseRejectsNonBoard(t *testing.T) {
	_, err := Parse(strings.NewReader("(kicad_sch (version 20211014))"))
	if err == nil {
		t.Fatal("expected error for non-PCB file")
	}
}

func TestBoundingBox(t *testing.T) {
	board, err := Parse(strings.NewReader(minimalBoard))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	bbox := board.GetBoundingBox()
	if bbox.MinX > 0 || bbox.MaxX < 10 {
		t.Errorf("X extent [%v, %v] does not cover outline", bbox.MinX, bbox.MaxX)
	}
	if bbox.MaxY < 12 {
		t.Errorf("MaxY = %v, arc mid should extend to 12", bbox.MaxY)
	}
	if bbox.Width() <= 0 || bbox.Height() <= 0 {
		t.Error("degenerate bounding box")
	}
}
