package georef

// PixelCoord is a position in image pixel space: X is the column and Y the
// row, growing downwards. Fractional values address sub-pixel positions.
type PixelCoord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GridCoord is an easting/northing in the projected grid, in metres.
type GridCoord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GeoCoord is a WGS84 position in degrees. Latitude comes first.
type GeoCoord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RotationSpec describes a region turned about Center. Height gives the
// region's extent in pixels and switches the rotation on; Width defaults to
// Height when zero.
type RotationSpec struct {
	Center   *PixelCoord
	AngleDeg float64
	Height   float64
	Width    float64
}

// active reports whether r has both a center and a height. A width alone
// does not turn rotation on.
func (r *RotationSpec) active() bool {
	return r != nil && r.Center != nil && r.Height > 0
}

func (r *RotationSpec) extent() (height, width float64) {
	height, width = r.Height, r.Width
	if width <= 0 {
		width = height
	}
	return height, width
}

// Output selects what TransformRegion computes.
type Output int

const (
	// GridOnly stops after the affine mapping.
	GridOnly Output = iota
	// WithGeographic also projects the grid coordinate to WGS84.
	WithGeographic
)

func (o Output) String() string {
	switch o {
	case GridOnly:
		return "grid"
	case WithGeographic:
		return "geographic"
	default:
		return "unknown"
	}
}

// Region is the result of transforming one reference pixel. Rotated equals
// Pixel when no rotation applied. Geo is set only for WithGeographic.
// Height, Width and AngleDeg describe the region and do not enter the math.
type Region struct {
	Pixel    PixelCoord `json:"pixel"`
	Rotated  PixelCoord `json:"rotated"`
	Grid     GridCoord  `json:"grid"`
	Geo      *GeoCoord  `json:"geo,omitempty"`
	Height   float64    `json:"height,omitempty"`
	Width    float64    `json:"width,omitempty"`
	AngleDeg float64    `json:"angle_deg,omitempty"`
}
