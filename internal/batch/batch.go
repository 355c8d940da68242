// Package batch georeferences every image in a directory.
package batch

import (
	"context"
	"io/fs"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"tilegeoref/internal/gdal"
	"tilegeoref/internal/georef"
	"tilegeoref/internal/imagery"
	"tilegeoref/internal/logger"
	"tilegeoref/internal/metadata"
	"tilegeoref/internal/worldfile"
)

// ImageExts are the extensions FindImages picks up, lower case.
var ImageExts = []string{".jpg", ".jpeg", ".tif", ".tiff", ".png", ".jp2", ".bmp", ".gif"}

// Status of one image after a run.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// WorldFileFromGDAL is recorded as the world file of images whose transform
// came from an embedded geotransform.
const WorldFileFromGDAL = "gdalinfo"

// BBoxTolerance is how far, in degrees, the footprint bbox may stray from
// GDAL's reported WGS84 extent before a warning is logged.
const BBoxTolerance = 1e-3

// RegionResult is a transformed region with its name.
type RegionResult struct {
	Name string `json:"name"`
	georef.Region
}

// ImageResult is everything learnt about one image.
type ImageResult struct {
	Image     string            `json:"image"`
	WorldFile string            `json:"world_file,omitempty"`
	Status    Status            `json:"status"`
	Err       error             `json:"-"`
	Error     string            `json:"error,omitempty"`
	Params    worldfile.Params  `json:"-"`
	Size      imagery.Size      `json:"size"`
	Footprint *georef.Footprint `json:"footprint,omitempty"`
	// BBox is [minLon, minLat, maxLon, maxLat]: the footprint's when there is
	// one, otherwise the WGS84 extent gdalinfo reported.
	BBox      *[4]float64       `json:"bbox,omitempty"`
	Regions   []RegionResult    `json:"regions"`
	Metadata  metadata.Metadata `json:"metadata,omitempty"`
}

func (r *ImageResult) fail(err error) {
	r.Status = StatusFailed
	r.Err = err
	r.Error = err.Error()
}

// FindImages lists image files under dir, recursively, sorted by path.
func FindImages(dir string) ([]string, error) {
	var images []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if isImage(path) {
			images = append(images, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", dir)
	}

	sort.Strings(images)
	return images, nil
}

func isImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ImageExts {
		if ext == e {
			return true
		}
	}
	return false
}

// Processor runs the georeferencing pipeline over a set of images. The one
// Georeferencer is shared by all workers.
type Processor struct {
	Georef *georef.Georeferencer
	Log    logger.ILogger
	// WorldFileExt forces a sidecar extension such as ".jgw". Empty tries the
	// conventional candidates.
	WorldFileExt string
	WithMetadata bool
	Workers      int
}

// Run processes images concurrently and returns one result per image in
// input order. A nil regions slice samples DefaultRegions per image. Per
// image problems are recorded on the result; the error is only set when ctx
// ends the run early.
func (p *Processor) Run(ctx context.Context, images []string, regions []RegionSpec) ([]ImageResult, error) {
	if p.Georef == nil {
		return nil, errors.New("processor has no georeferencer")
	}
	log := p.Log
	if log == nil {
		log = logger.NullLogger{}
	}

	workers := p.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]ImageResult, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, img := range images {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.processImage(gctx, log, img, regions)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (p *Processor) processImage(ctx context.Context, log logger.ILogger, img string, regions []RegionSpec) ImageResult {
	res := ImageResult{Image: img, Status: StatusOK, Regions: []RegionResult{}}

	wfPath, wf, raster, err := p.worldFile(ctx, img)
	if errors.Is(err, worldfile.ErrNotFound) {
		log.Warnf("Skipping %s: missing world file", img)
		res.Status = StatusSkipped
		res.Err = err
		res.Error = err.Error()
		return res
	}
	if err != nil {
		log.Errorf("Failed %s: %v", img, err)
		res.fail(err)
		return res
	}
	res.WorldFile = wfPath
	res.Params = wf

	size, err := imagery.Dimensions(ctx, img)
	if err != nil {
		log.Warnf("Could not read size of %s: %v", img, err)
	} else {
		res.Size = size
	}

	out := georef.GridOnly
	if p.Georef.Projector() != nil {
		out = georef.WithGeographic
		if size.Width > 0 && size.Height > 0 {
			fp, err := p.Georef.Footprint(wf, size.Width, size.Height)
			if err != nil {
				log.Warnf("Footprint of %s: %v", img, err)
			} else {
				res.Footprint = &fp
			}
		}
	}

	res.BBox = p.bbox(log, img, res.Footprint, raster)

	if regions == nil {
		regions = DefaultRegions(size)
	}
	for _, spec := range regions {
		region, err := p.Georef.TransformRegion(spec.Pixel(), wf, spec.RotationSpec(), out)
		if err != nil {
			err = errors.Wrapf(err, "region %s", spec.Name)
			log.Errorf("Failed %s: %v", img, err)
			res.fail(err)
			return res
		}
		res.Regions = append(res.Regions, RegionResult{Name: spec.Name, Region: region})
		log.Debugf("Image: %s, Region: %s, Pixel: (%g, %g), Grid: (%.3f, %.3f)",
			img, spec.Name, spec.X, spec.Y, region.Grid.X, region.Grid.Y)
	}

	if p.WithMetadata {
		res.Metadata = metadata.Read(MetadataPath(img), log)
	}

	log.Infof("Georeferenced %s: %d regions", img, len(res.Regions))
	return res
}

// worldFile locates and parses the image's world file. When there is none
// and GDAL is enabled, a geotransform embedded in the raster is used and the
// raster info is returned alongside it.
func (p *Processor) worldFile(ctx context.Context, img string) (string, worldfile.Params, *gdal.RasterInfo, error) {
	path, err := worldfile.Find(img, p.WorldFileExt)
	if err == nil {
		wf, err := worldfile.Parse(path)
		return path, wf, nil, err
	}
	if !errors.Is(err, worldfile.ErrNotFound) || !gdal.Enabled() {
		return "", worldfile.Params{}, nil, err
	}

	info, gerr := gdal.GetInfo(ctx, img)
	if gerr != nil {
		return "", worldfile.Params{}, nil, err
	}
	wf, ok := info.WorldFile()
	if !ok {
		return "", worldfile.Params{}, nil, err
	}
	return WorldFileFromGDAL, wf, &info, nil
}

// bbox picks the image's WGS84 bounds. The computed footprint wins; GDAL's
// extent is the fallback, and a cross-check when both exist.
func (p *Processor) bbox(log logger.ILogger, img string, fp *georef.Footprint, raster *gdal.RasterInfo) *[4]float64 {
	var extent *[4]float64
	if raster != nil {
		extent = raster.WGS84BBox
	}
	if fp == nil {
		return extent
	}

	b := fp.BBox
	if extent != nil {
		for i := range b {
			if math.Abs(b[i]-extent[i]) > BBoxTolerance {
				log.Warnf("Footprint of %s %v disagrees with gdalinfo extent %v", img, b, *extent)
				break
			}
		}
	}
	return &b
}

// MetadataPath is the XML sidecar sharing the image's stem.
func MetadataPath(img string) string {
	return strings.TrimSuffix(img, filepath.Ext(img)) + ".xml"
}

// Summary counts results by status.
func Summary(results []ImageResult) map[Status]int {
	counts := map[Status]int{}
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}
