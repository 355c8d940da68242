package georef

import (
	"math"

	"github.com/pkg/errors"

	"tilegeoref/internal/worldfile"
)

// ErrNoProjector is returned when geographic output is requested from a
// Georeferencer built without a projector.
var ErrNoProjector = errors.New("georeferencer has no projector")

// Georeferencer ties the affine mapping, region rotation and projection
// together. It holds no per-image state; build one and share it.
type Georeferencer struct {
	proj Projector
}

// New returns a Georeferencer using proj for geographic output. proj may be
// nil when only grid coordinates are needed.
func New(proj Projector) *Georeferencer {
	return &Georeferencer{proj: proj}
}

// Projector returns the injected projector.
func (g *Georeferencer) Projector() Projector {
	return g.proj
}

// TransformPoint maps a pixel to the grid without rotation.
func (g *Georeferencer) TransformPoint(p PixelCoord, wf worldfile.Params) GridCoord {
	return MapPixel(p, wf)
}

// TransformRegion maps the reference pixel p of a region. With an active
// rotation (center and extent present) p is first rotated about the center;
// otherwise this is TransformPoint and any extent is ignored.
func (g *Georeferencer) TransformRegion(p PixelCoord, wf worldfile.Params, rot *RotationSpec, out Output) (Region, error) {
	region := Region{Pixel: p, Rotated: p}

	if rot.active() {
		region.Rotated = Rotate(p, rot.Center, rot.AngleDeg)
		region.Height, region.Width = rot.extent()
		region.AngleDeg = rot.AngleDeg
	}

	region.Grid = MapPixel(region.Rotated, wf)

	if out == WithGeographic {
		geo, err := g.ToGeographic(region.Grid)
		if err != nil {
			return Region{}, err
		}
		region.Geo = &geo
	}

	return region, nil
}

// ToGeographic projects a grid coordinate to WGS84.
func (g *Georeferencer) ToGeographic(c GridCoord) (GeoCoord, error) {
	if g.proj == nil {
		return GeoCoord{}, ErrNoProjector
	}
	return GridToGeographic(g.proj, c), nil
}

// Footprint is the ground outline of a whole image. Corners run from the
// upper-left clockwise as displayed.
type Footprint struct {
	Pixel [4]PixelCoord `json:"pixel"`
	Grid  [4]GridCoord  `json:"grid"`
	Geo   [4]GeoCoord   `json:"geo"`
	// BBox is [minLon, minLat, maxLon, maxLat].
	BBox [4]float64 `json:"bbox"`
}

// Footprint transforms the outer edges of a width x height image. World
// file origins sit on the centre of the first pixel, so the corners are
// half a pixel outside the pixel centres.
func (g *Georeferencer) Footprint(wf worldfile.Params, width, height int) (Footprint, error) {
	if width <= 0 || height <= 0 {
		return Footprint{}, errors.Errorf("invalid image size %dx%d", width, height)
	}
	if g.proj == nil {
		return Footprint{}, ErrNoProjector
	}

	w, h := float64(width)-0.5, float64(height)-0.5
	fp := Footprint{
		Pixel: [4]PixelCoord{
			{X: -0.5, Y: -0.5},
			{X: w, Y: -0.5},
			{X: w, Y: h},
			{X: -0.5, Y: h},
		},
	}

	minLon, minLat := math.Inf(1), math.Inf(1)
	maxLon, maxLat := math.Inf(-1), math.Inf(-1)
	for i, corner := range fp.Pixel {
		fp.Grid[i] = MapPixel(corner, wf)
		fp.Geo[i] = GridToGeographic(g.proj, fp.Grid[i])

		minLon = math.Min(minLon, fp.Geo[i].Lon)
		maxLon = math.Max(maxLon, fp.Geo[i].Lon)
		minLat = math.Min(minLat, fp.Geo[i].Lat)
		maxLat = math.Max(maxLat, fp.Geo[i].Lat)
	}
	fp.BBox = [4]float64{minLon, minLat, maxLon, maxLat}

	return fp, nil
}
