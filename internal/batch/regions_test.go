package batch

import (
	"path/filepath"
	"testing"

	"tilegeoref/internal/imagery"
)

func TestLoadRegions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.json")
	writeFile(t, path, `[
  {"name": "corner", "x": 0, "y": 0},
  {"name": "boat", "x": 120, "y": 80, "center": {"x": 100, "y": 80}, "height": 12, "rotation": 30}
]`)

	regions, err := LoadRegions(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}

	if regions[0].RotationSpec() != nil {
		t.Fatalf("region without center should not rotate")
	}

	rot := regions[1].RotationSpec()
	if rot == nil || rot.Center == nil {
		t.Fatalf("expected rotation spec")
	}
	if rot.Center.X != 100 || rot.Center.Y != 80 || rot.AngleDeg != 30 || rot.Height != 12 || rot.Width != 0 {
		t.Fatalf("unexpected rotation spec %+v", rot)
	}
	if p := regions[1].Pixel(); p.X != 120 || p.Y != 80 {
		t.Fatalf("unexpected pixel %+v", p)
	}
}

func TestLoadRegionsEmptyPath(t *testing.T) {
	regions, err := LoadRegions("")
	if err != nil || regions != nil {
		t.Fatalf("expected no regions and no error, got %v, %v", regions, err)
	}
}

func TestLoadRegionsErrors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{name: "not json", contents: "name,x,y"},
		{name: "object instead of list", contents: `{"name": "a"}`},
		{name: "negative extent", contents: `[{"name": "a", "center": {"x": 1, "y": 1}, "height": -2}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "regions.json")
			writeFile(t, path, tt.contents)

			if _, err := LoadRegions(path); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}

	if _, err := LoadRegions(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDefaultRegions(t *testing.T) {
	regions := DefaultRegions(imagery.Size{Width: 101, Height: 51})
	if len(regions) != 3 {
		t.Fatalf("expected 3 regions, got %d", len(regions))
	}
	if c := regions[1]; c.Name != "center" || c.X != 50 || c.Y != 25 {
		t.Fatalf("unexpected center %+v", c)
	}
	if br := regions[2]; br.X != 100 || br.Y != 50 {
		t.Fatalf("unexpected bottom right %+v", br)
	}

	if unknown := DefaultRegions(imagery.Size{}); len(unknown) != 1 || unknown[0].Name != "top_left" {
		t.Fatalf("expected only top_left for unknown size, got %+v", unknown)
	}
}
