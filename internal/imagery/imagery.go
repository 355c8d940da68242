// Package imagery reads image dimensions without decoding pixel data.
package imagery

import (
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"tilegeoref/internal/gdal"
)

// Size is an image's extent in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Dimensions returns the width and height of the image at path from its
// header. Formats the Go decoders do not know (JPEG 2000 among them) go to
// gdalinfo when GDAL is enabled.
func Dimensions(ctx context.Context, path string) (Size, error) {
	size, err := decodeConfig(path)
	if err == nil {
		return size, nil
	}
	if !errors.Is(err, image.ErrFormat) || !gdal.Enabled() {
		return Size{}, err
	}

	raster, gerr := gdal.GetInfo(ctx, path)
	if gerr != nil {
		return Size{}, errors.Wrapf(gerr, "read %s", path)
	}
	return Size{Width: raster.Width, Height: raster.Height}, nil
}

func decodeConfig(path string) (Size, error) {
	f, err := os.Open(path)
	if err != nil {
		return Size{}, errors.Wrap(err, "open image")
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Size{}, errors.Wrapf(err, "decode %s", path)
	}
	return Size{Width: cfg.Width, Height: cfg.Height}, nil
}
