package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/pkg/errors"

	"tilegeoref/internal/batch"
	"tilegeoref/internal/config"
	"tilegeoref/internal/geojson"
	"tilegeoref/internal/georef"
	"tilegeoref/internal/logger"
	"tilegeoref/internal/projection"
)

const defaultWorkers = 4

type georefOptions struct {
	input    string
	out      string
	regions  string
	ext      string
	metadata bool
	workers  int
	gridOnly bool
	perImage bool
	logLevel logger.LogLevel
}

func parseFlags(args []string) (georefOptions, error) {
	defaultMetadata, err := config.Bool(config.KeyMetadata, true)
	if err != nil {
		return georefOptions{}, err
	}
	workers, err := config.Int(config.KeyWorkers, defaultWorkers)
	if err != nil {
		return georefOptions{}, err
	}

	var opts georefOptions
	var level string
	fs := flag.NewFlagSet("tilegeoref", flag.ContinueOnError)
	fs.StringVar(&opts.input, "input", "", "Input folder containing aerial tiles and their world files")
	fs.StringVar(&opts.out, "out", "", "Output GeoJSON path")
	fs.StringVar(&opts.regions, "regions", "", "JSON file listing pixel regions to georeference (default: corners and centre)")
	fs.StringVar(&opts.ext, "ext", config.Get(config.KeyWorldFileExt, ""), "World file extension, e.g. jgw or jpw (default: try the usual ones)")
	fs.BoolVar(&opts.metadata, "metadata", defaultMetadata, "Read the XML metadata sidecar of each tile")
	fs.IntVar(&opts.workers, "workers", workers, "Number of tiles processed concurrently")
	fs.BoolVar(&opts.gridOnly, "grid-only", false, "Skip the WGS84 projection and emit grid coordinates")
	fs.BoolVar(&opts.perImage, "per-image", false, "Also write <tile>_georeferenced.json next to each tile")
	fs.StringVar(&level, "log-level", config.Get(config.KeyLogLevel, "info"), "debug, info, warn or error")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: tilegeoref --input <dir> --out <file> [--regions <file>]\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return georefOptions{}, err
	}

	if opts.input == "" {
		return georefOptions{}, errors.New("input is required")
	}
	if opts.out == "" {
		return georefOptions{}, errors.New("out is required")
	}
	if opts.workers < 1 {
		return georefOptions{}, errors.Errorf("workers must be at least 1, got %d", opts.workers)
	}
	opts.logLevel, err = logger.ParseLevel(level)
	if err != nil {
		return georefOptions{}, err
	}
	return opts, nil
}

// runGeoref processes the input directory and returns how many images failed.
func runGeoref(ctx context.Context, out io.Writer, log logger.ILogger, opts georefOptions) (int, error) {
	images, err := findImages(opts.input)
	if err != nil {
		return 0, err
	}
	if len(images) == 0 {
		return 0, errors.Errorf("no images found in %s", opts.input)
	}

	regions, err := batch.LoadRegions(opts.regions)
	if err != nil {
		return 0, err
	}

	if err := ensureOutputDir(opts.out); err != nil {
		return 0, err
	}

	var proj georef.Projector
	if !opts.gridOnly {
		proj = projection.NewBritishNationalGrid()
	}

	p := &batch.Processor{
		Georef:       georef.New(proj),
		Log:          log,
		WorldFileExt: opts.ext,
		WithMetadata: opts.metadata,
		Workers:      opts.workers,
	}
	log.Infof("Georeferencing %d images with %d workers", len(images), opts.workers)

	results, err := p.Run(ctx, images, regions)
	if err != nil {
		return 0, errors.Wrap(err, "georeference")
	}

	if err := writeSummaryTable(out, results); err != nil {
		return 0, err
	}

	if err := geojson.WriteFeatureCollection(opts.out, geojson.BuildBatchFC(results)); err != nil {
		return 0, errors.Wrap(err, "write geojson")
	}
	log.Infof("Georeferenced data saved to %s", opts.out)

	if opts.perImage {
		if err := writePerImage(log, results); err != nil {
			return 0, err
		}
	}

	return batch.Summary(results)[batch.StatusFailed], nil
}

func findImages(inputDir string) ([]string, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, errors.Wrap(err, "stat input")
	}
	if !info.IsDir() {
		return nil, errors.New("input must be a directory")
	}
	return batch.FindImages(inputDir)
}

func writePerImage(log logger.ILogger, results []batch.ImageResult) error {
	for _, res := range results {
		if res.Status != batch.StatusOK {
			continue
		}
		path, err := batch.WriteResult(res)
		if err != nil {
			return errors.Wrapf(err, "write result for %s", res.Image)
		}
		log.Debugf("Wrote %s", path)
	}
	return nil
}

func writeSummaryTable(w io.Writer, results []batch.ImageResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "image\tstatus\tregions\tmin_lon\tmin_lat\tmax_lon\tmax_lat"); err != nil {
		return err
	}

	total := [4]float64{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, res := range results {
		if err := writeSummaryRow(tw, res); err != nil {
			return err
		}
		if res.BBox != nil {
			total = extendBBox(total, *res.BBox)
		}
	}

	if !math.IsInf(total[0], 1) {
		if _, err := fmt.Fprintf(tw, "total\t\t\t%.6f\t%.6f\t%.6f\t%.6f\n", total[0], total[1], total[2], total[3]); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func writeSummaryRow(tw *tabwriter.Writer, res batch.ImageResult) error {
	name := filepath.Base(res.Image)
	if res.BBox == nil {
		_, err := fmt.Fprintf(tw, "%s\t%s\t%d\t-\t-\t-\t-\n", name, res.Status, len(res.Regions))
		return err
	}

	b := res.BBox
	_, err := fmt.Fprintf(tw, "%s\t%s\t%d\t%.6f\t%.6f\t%.6f\t%.6f\n",
		name, res.Status, len(res.Regions), b[0], b[1], b[2], b[3])
	return err
}

func extendBBox(acc, b [4]float64) [4]float64 {
	return [4]float64{
		math.Min(acc[0], b[0]),
		math.Min(acc[1], b[1]),
		math.Max(acc[2], b[2]),
		math.Max(acc[3], b[3]),
	}
}

func ensureOutputDir(outPath string) error {
	dir := filepath.Dir(outPath)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}
	return nil
}
