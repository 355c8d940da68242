package georef

import "math"

// Rotate turns p about center by angleDeg degrees and returns the new
// position. A nil center leaves p unchanged.
//
// The rotation is x' = cx + dx·cosθ − dy·sinθ, y' = cy + dx·sinθ + dy·cosθ.
// Pixel rows grow downwards, so a positive angle turns the point clockwise
// as the image is displayed; in a y-up frame the same formula is the usual
// counter-clockwise rotation.
func Rotate(p PixelCoord, center *PixelCoord, angleDeg float64) PixelCoord {
	if center == nil || angleDeg == 0 {
		return p
	}

	theta := angleDeg * math.Pi / 180
	sin, cos := math.Sincos(theta)

	dx := p.X - center.X
	dy := p.Y - center.Y
	return PixelCoord{
		X: center.X + dx*cos - dy*sin,
		Y: center.Y + dx*sin + dy*cos,
	}
}
