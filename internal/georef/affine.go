package georef

import (
	"github.com/pkg/errors"

	"tilegeoref/internal/worldfile"
)

// MapPixel converts a pixel coordinate to the projected grid using the
// world file's six-parameter affine transform.
func MapPixel(p PixelCoord, wf worldfile.Params) GridCoord {
	return GridCoord{
		X: p.X*wf.PixelSizeX + p.Y*wf.RotationX + wf.OriginX,
		Y: p.Y*wf.PixelSizeY + p.X*wf.RotationY + wf.OriginY,
	}
}

// GridToPixel is the inverse of MapPixel.
func GridToPixel(g GridCoord, wf worldfile.Params) (PixelCoord, error) {
	inv, err := wf.Invert()
	if err != nil {
		return PixelCoord{}, errors.Wrap(err, "grid to pixel")
	}
	mapped := MapPixel(PixelCoord{X: g.X, Y: g.Y}, inv)
	return PixelCoord{X: mapped.X, Y: mapped.Y}, nil
}
