package geojson

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

const (
	featureCollectionType = "FeatureCollection"
	featureType           = "Feature"
	geometryPointType     = "Point"
	geometryPolygonType   = "Polygon"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// Point geometry at lon, lat. GeoJSON puts longitude first.
func Point(lon, lat float64) Geometry {
	return Geometry{Type: geometryPointType, Coordinates: []float64{lon, lat}}
}

// Polygon geometry from a single exterior ring of [lon, lat] positions. The
// ring is closed if its last position differs from the first, and reversed
// if needed so it runs counter-clockwise.
func Polygon(ring [][]float64) Geometry {
	closed := append([][]float64(nil), ring...)
	if n := len(closed); n > 0 {
		first, last := closed[0], closed[n-1]
		if len(first) != len(last) || first[0] != last[0] || first[1] != last[1] {
			closed = append(closed, first)
		}
	}
	if signedArea(closed) < 0 {
		for i, j := 0, len(closed)-1; i < j; i, j = i+1, j-1 {
			closed[i], closed[j] = closed[j], closed[i]
		}
	}
	return Geometry{Type: geometryPolygonType, Coordinates: [][][]float64{closed}}
}

// signedArea of a closed ring by the shoelace formula. Positive means
// counter-clockwise.
func signedArea(ring [][]float64) float64 {
	var sum float64
	for i := 0; i+1 < len(ring); i++ {
		sum += ring[i][0]*ring[i+1][1] - ring[i+1][0]*ring[i][1]
	}
	return sum / 2
}

// Merge concatenates the features of several collections.
func Merge(fcs ...FeatureCollection) FeatureCollection {
	out := FeatureCollection{Type: featureCollectionType, Features: []Feature{}}
	for _, fc := range fcs {
		out.Features = append(out.Features, fc.Features...)
	}
	return out
}

func WriteFeatureCollection(path string, fc FeatureCollection) error {
	if fc.Type == "" {
		fc.Type = featureCollectionType
	}
	if fc.Features == nil {
		fc.Features = []Feature{}
	}
	for i := range fc.Features {
		if fc.Features[i].Type == "" {
			fc.Features[i].Type = featureType
		}
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode feature collection")
	}

	return errors.Wrap(os.WriteFile(path, data, 0o644), "write feature collection")
}
