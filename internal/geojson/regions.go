package geojson

import (
	"fmt"

	"tilegeoref/internal/batch"
	"tilegeoref/internal/metadata"
	"tilegeoref/internal/projection"
)

// Feature kinds stored in the "kind" property.
const (
	KindRegion    = "region"
	KindFootprint = "footprint"
)

// BuildImageFC builds a feature collection for one processed image: a
// Point per region and a Polygon for the footprint. Regions without a
// geographic position fall back to their grid coordinate and are tagged
// with the grid's CRS. Images that were skipped or failed give no features.
func BuildImageFC(res batch.ImageResult) FeatureCollection {
	fc := FeatureCollection{Type: featureCollectionType, Features: []Feature{}}
	if res.Status != batch.StatusOK {
		return fc
	}

	for _, r := range res.Regions {
		props := map[string]interface{}{
			"kind":    KindRegion,
			"image":   res.Image,
			"region":  r.Name,
			"pixel":   []float64{r.Pixel.X, r.Pixel.Y},
			"rotated": []float64{r.Rotated.X, r.Rotated.Y},
			"grid":    []float64{r.Grid.X, r.Grid.Y},
		}
		if r.Height > 0 || r.Width > 0 {
			props["height"] = r.Height
			props["width"] = r.Width
			props["rotation"] = r.AngleDeg
		}
		addMetadata(props, res.Metadata)

		geom := Point(r.Grid.X, r.Grid.Y)
		if r.Geo != nil {
			geom = Point(r.Geo.Lon, r.Geo.Lat)
		} else {
			props["crs"] = fmt.Sprintf("EPSG:%d", projection.SourceEPSG)
		}

		fc.Features = append(fc.Features, Feature{
			Type:       featureType,
			Geometry:   geom,
			Properties: props,
		})
	}

	if fp := res.Footprint; fp != nil {
		// Footprint corners run clockwise as displayed; the ring goes the other way.
		ring := make([][]float64, 0, len(fp.Geo)+1)
		for _, i := range []int{0, 3, 2, 1} {
			ring = append(ring, []float64{fp.Geo[i].Lon, fp.Geo[i].Lat})
		}
		props := map[string]interface{}{
			"kind":       KindFootprint,
			"image":      res.Image,
			"world_file": res.WorldFile,
			"width":      res.Size.Width,
			"height":     res.Size.Height,
			"bbox":       fp.BBox[:],
		}
		addMetadata(props, res.Metadata)

		fc.Features = append(fc.Features, Feature{
			Type:       featureType,
			Geometry:   Polygon(ring),
			Properties: props,
		})
	}

	return fc
}

// BuildBatchFC merges the collections of every result.
func BuildBatchFC(results []batch.ImageResult) FeatureCollection {
	fcs := make([]FeatureCollection, 0, len(results))
	for _, res := range results {
		fcs = append(fcs, BuildImageFC(res))
	}
	return Merge(fcs...)
}

func addMetadata(props map[string]interface{}, md metadata.Metadata) {
	if len(md) == 0 {
		return
	}
	props["metadata"] = md
}
