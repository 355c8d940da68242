package gdal

import (
	"context"
	"encoding/json"
	"math"

	"github.com/pkg/errors"

	"tilegeoref/internal/worldfile"
)

// RasterInfo describes basic raster metadata from gdalinfo.
type RasterInfo struct {
	Width  int
	Height int
	// GeoTransform is only meaningful when Georeferenced is set.
	GeoTransform  [6]float64
	Georeferenced bool
	WGS84BBox     *[4]float64
}

// WorldFile converts the raster's geotransform to world file parameters.
func (r RasterInfo) WorldFile() (worldfile.Params, bool) {
	if !r.Georeferenced {
		return worldfile.Params{}, false
	}
	return worldfile.FromGeoTransform(r.GeoTransform), true
}

var identityTransform = [6]float64{0, 1, 0, 0, 0, 1}

// GetInfo runs gdalinfo and extracts raster size and geotransform. Rasters
// without a transform, or with GDAL's identity default, are reported as not
// georeferenced.
func GetInfo(ctx context.Context, path string) (RasterInfo, error) {
	stdout, _, err := Run(ctx, "gdalinfo", "-json", path)
	if err != nil {
		return RasterInfo{}, errors.Wrap(err, "gdalinfo")
	}

	var payload struct {
		Size         []int     `json:"size"`
		GeoTransform []float64 `json:"geoTransform"`
		WGS84Extent  *struct {
			Type        string        `json:"type"`
			Coordinates [][][]float64 `json:"coordinates"`
		} `json:"wgs84Extent"`
	}
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		return RasterInfo{}, errors.Wrap(err, "parse gdalinfo json")
	}

	if len(payload.Size) != 2 {
		return RasterInfo{}, errors.Errorf("unexpected gdalinfo size length: %d", len(payload.Size))
	}
	if n := len(payload.GeoTransform); n != 0 && n != 6 {
		return RasterInfo{}, errors.Errorf("unexpected gdalinfo geotransform length: %d", n)
	}

	info := RasterInfo{
		Width:  payload.Size[0],
		Height: payload.Size[1],
	}
	if len(payload.GeoTransform) == 6 {
		copy(info.GeoTransform[:], payload.GeoTransform)
		info.Georeferenced = info.GeoTransform != identityTransform
	}

	if payload.WGS84Extent != nil {
		info.WGS84BBox = wgs84BBoxFromExtent(payload.WGS84Extent.Coordinates)
	}

	return info, nil
}

func wgs84BBoxFromExtent(coords [][][]float64) *[4]float64 {
	if len(coords) == 0 || len(coords[0]) == 0 || len(coords[0][0]) < 2 {
		return nil
	}

	minLon, maxLon := coords[0][0][0], coords[0][0][0]
	minLat, maxLat := coords[0][0][1], coords[0][0][1]

	for _, ring := range coords {
		for _, pt := range ring {
			if len(pt) < 2 {
				continue
			}
			minLon = math.Min(minLon, pt[0])
			maxLon = math.Max(maxLon, pt[0])
			minLat = math.Min(minLat, pt[1])
			maxLat = math.Max(maxLat, pt[1])
		}
	}

	return &[4]float64{minLon, minLat, maxLon, maxLat}
}
