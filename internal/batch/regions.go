package batch

import (
	"encoding/json"
	"math"
	"os"

	"github.com/pkg/errors"

	"tilegeoref/internal/georef"
	"tilegeoref/internal/imagery"
)

// RegionSpec is one entry of a regions file. X and Y locate the reference
// pixel; Center, Height, Width and Rotation describe an optional rotated box.
type RegionSpec struct {
	Name     string             `json:"name"`
	X        float64            `json:"x"`
	Y        float64            `json:"y"`
	Center   *georef.PixelCoord `json:"center,omitempty"`
	Height   float64            `json:"height,omitempty"`
	Width    float64            `json:"width,omitempty"`
	Rotation float64            `json:"rotation,omitempty"`
}

// Pixel returns the reference pixel.
func (r RegionSpec) Pixel() georef.PixelCoord {
	return georef.PixelCoord{X: r.X, Y: r.Y}
}

// RotationSpec returns nil when the region carries no center.
func (r RegionSpec) RotationSpec() *georef.RotationSpec {
	if r.Center == nil {
		return nil
	}
	center := *r.Center
	return &georef.RotationSpec{
		Center:   &center,
		AngleDeg: r.Rotation,
		Height:   r.Height,
		Width:    r.Width,
	}
}

// LoadRegions reads a JSON array of RegionSpec. An empty path means no
// regions.
func LoadRegions(path string) ([]RegionSpec, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read regions")
	}

	var regions []RegionSpec
	if err := json.Unmarshal(data, &regions); err != nil {
		return nil, errors.Wrapf(err, "parse regions %s", path)
	}

	for i, r := range regions {
		if err := r.validate(); err != nil {
			return nil, errors.Wrapf(err, "region %d (%s)", i, r.Name)
		}
	}
	return regions, nil
}

func (r RegionSpec) validate() error {
	for _, v := range []float64{r.X, r.Y, r.Height, r.Width, r.Rotation} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("non-finite value")
		}
	}
	if r.Height < 0 || r.Width < 0 {
		return errors.New("negative extent")
	}
	return nil
}

// DefaultRegions samples the upper-left, centre and lower-right pixel of an
// image. Used when no regions file is given.
func DefaultRegions(size imagery.Size) []RegionSpec {
	if size.Width <= 0 || size.Height <= 0 {
		return []RegionSpec{{Name: "top_left"}}
	}

	right, bottom := float64(size.Width-1), float64(size.Height-1)
	return []RegionSpec{
		{Name: "top_left"},
		{Name: "center", X: right / 2, Y: bottom / 2},
		{Name: "bottom_right", X: right, Y: bottom},
	}
}
