package worldfile

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

const paramEps = 1e-12

func TestParseReader(t *testing.T) {
	input := "0.25\n0.0\n0.0\n-0.25\n400000.125\n299999.875\n"

	got, err := ParseReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := Params{
		PixelSizeX: 0.25,
		RotationX:  0,
		RotationY:  0,
		PixelSizeY: -0.25,
		OriginX:    400000.125,
		OriginY:    299999.875,
	}
	if got != want {
		t.Fatalf("unexpected params: %+v", got)
	}
}

func TestParseReaderToleratesWhitespace(t *testing.T) {
	input := "  1.5e-1 \r\n0\n\t0\n-1.5E-1\n1\n2\n\n\n"

	got, err := ParseReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.PixelSizeX != 0.15 || got.PixelSizeY != -0.15 || got.OriginY != 2 {
		t.Fatalf("unexpected params: %+v", got)
	}
}

func TestParseReaderFormatErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
		contains string
	}{
		{
			name:     "five lines",
			input:    "0.25\n0\n0\n-0.25\n400000\n",
			contains: "expected 6 lines, got 5",
		},
		{
			name:     "seven lines",
			input:    "0.25\n0\n0\n-0.25\n400000\n300000\n1\n",
			contains: "expected 6 lines, got 7",
		},
		{
			name:     "empty",
			input:    "",
			contains: "expected 6 lines, got 0",
		},
		{
			name:     "non numeric",
			input:    "0.25\n0\nabc\n-0.25\n400000\n300000\n",
			wantLine: 3,
			contains: "rotation_y",
		},
		{
			name:     "blank line inside",
			input:    "0.25\n0\n\n-0.25\n400000\n300000\n",
			wantLine: 3,
			contains: "not a number",
		},
		{
			name:     "hex literal",
			input:    "0x1p-2\n0\n0\n-0.25\n400000\n300000\n",
			wantLine: 1,
			contains: "pixel_size_x",
		},
		{
			name:     "signed hex literal",
			input:    "0.25\n0\n0\n-0X1P-2\n400000\n300000\n",
			wantLine: 4,
			contains: "hexadecimal",
		},
		{
			name:     "not finite",
			input:    "0.25\n0\n0\n-0.25\nNaN\n300000\n",
			wantLine: 5,
			contains: "origin_x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReader(strings.NewReader(tt.input))
			if err == nil {
				t.Fatalf("expected error, got nil")
			}

			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FormatError, got %T: %v", err, err)
			}
			if fe.Line != tt.wantLine {
				t.Fatalf("expected line %d, got %d", tt.wantLine, fe.Line)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Fatalf("error %q does not contain %q", err.Error(), tt.contains)
			}
		})
	}
}

func TestParseSetsPathOnFormatError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tile.jgw")
	writeFile(t, path, "1\n2\n3\n")

	_, err := Parse(path)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FormatError, got %v", err)
	}
	if fe.Path != path {
		t.Fatalf("expected path %q, got %q", path, fe.Path)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("error missing path: %q", err.Error())
	}
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.jgw"))
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	var fe *FormatError
	if errors.As(err, &fe) {
		t.Fatalf("missing file must not be a format error: %v", err)
	}
	if !os.IsNotExist(errors.Cause(err)) {
		t.Fatalf("expected not-exist cause, got %v", err)
	}
}

func TestInvertRoundTrip(t *testing.T) {
	p := Params{
		PixelSizeX: 0.25,
		RotationX:  0.01,
		RotationY:  -0.02,
		PixelSizeY: -0.25,
		OriginX:    400000,
		OriginY:    300000,
	}

	inv, err := p.Invert()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	px, py := 123.5, 456.25
	x := px*p.PixelSizeX + py*p.RotationX + p.OriginX
	y := py*p.PixelSizeY + px*p.RotationY + p.OriginY

	gotX := x*inv.PixelSizeX + y*inv.RotationX + inv.OriginX
	gotY := y*inv.PixelSizeY + x*inv.RotationY + inv.OriginY
	if math.Abs(gotX-px) > 1e-6 || math.Abs(gotY-py) > 1e-6 {
		t.Fatalf("expected (%v, %v), got (%v, %v)", px, py, gotX, gotY)
	}
}

func TestInvertSingular(t *testing.T) {
	_, err := Params{PixelSizeX: 1, RotationX: 2, RotationY: 1, PixelSizeY: 2}.Invert()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestDeterminant(t *testing.T) {
	p := Params{PixelSizeX: 0.5, RotationX: 0.1, RotationY: 0.2, PixelSizeY: -0.5}
	if math.Abs(p.Determinant()-(-0.27)) > paramEps {
		t.Fatalf("unexpected determinant: %v", p.Determinant())
	}
}

func TestGeoTransform(t *testing.T) {
	p := Params{PixelSizeX: 0.25, PixelSizeY: -0.25, OriginX: 400000, OriginY: 300000}

	gt := p.GeoTransform()
	want := [6]float64{399999.875, 0.25, 0, 300000.125, 0, -0.25}
	if gt != want {
		t.Fatalf("unexpected geotransform: %v", gt)
	}

	back := FromGeoTransform(gt)
	if back != p {
		t.Fatalf("expected %+v, got %+v", p, back)
	}
}

func TestFromGeoTransformRotated(t *testing.T) {
	p := Params{PixelSizeX: 0.5, RotationX: 0.1, RotationY: 0.2, PixelSizeY: -0.5, OriginX: 10, OriginY: 20}

	back := FromGeoTransform(p.GeoTransform())
	if math.Abs(back.OriginX-p.OriginX) > paramEps || math.Abs(back.OriginY-p.OriginY) > paramEps {
		t.Fatalf("expected %+v, got %+v", p, back)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}
