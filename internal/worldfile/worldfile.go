package worldfile

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParamCount is the number of values a world file carries.
const ParamCount = 6

var paramNames = [ParamCount]string{
	"pixel_size_x",
	"rotation_x",
	"rotation_y",
	"pixel_size_y",
	"origin_x",
	"origin_y",
}

// Params holds the six affine parameters of a world file, in file order.
// OriginX/OriginY locate the centre of the upper-left pixel in grid units.
type Params struct {
	PixelSizeX float64
	RotationX  float64
	RotationY  float64
	PixelSizeY float64
	OriginX    float64
	OriginY    float64
}

// FormatError reports a world file that does not hold exactly six numeric lines.
type FormatError struct {
	Path   string
	Line   int
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	where := "world file"
	if e.Path != "" {
		where = "world file " + e.Path
	}
	if e.Line > 0 {
		where = fmt.Sprintf("%s line %d", where, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", where, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", where, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Parse reads the world file at path.
func Parse(path string) (Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return Params{}, errors.Wrap(err, "open world file")
	}
	defer f.Close()

	params, err := ParseReader(f)
	var fe *FormatError
	if errors.As(err, &fe) {
		fe.Path = path
	}
	return params, err
}

// ParseReader reads six newline-separated float literals from r. Trailing
// blank lines are tolerated; blank lines between values are not.
func ParseReader(r io.Reader) (Params, error) {
	lines, err := readLines(r)
	if err != nil {
		return Params{}, err
	}

	if len(lines) != ParamCount {
		return Params{}, &FormatError{
			Reason: fmt.Sprintf("expected %d lines, got %d", ParamCount, len(lines)),
		}
	}

	var values [ParamCount]float64
	for i, line := range lines {
		v, err := parseValue(line)
		if err != nil {
			return Params{}, &FormatError{
				Line:   i + 1,
				Reason: fmt.Sprintf("%s=%q is not a number", paramNames[i], line),
				Err:    err,
			}
		}
		values[i] = v
	}

	return Params{
		PixelSizeX: values[0],
		RotationX:  values[1],
		RotationY:  values[2],
		PixelSizeY: values[3],
		OriginX:    values[4],
		OriginY:    values[5],
	}, nil
}

func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	lines := make([]string, 0, ParamCount)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read world file")
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

func parseValue(line string) (float64, error) {
	digits := strings.TrimLeft(line, "+-")
	if len(digits) >= 2 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, errors.New("hexadecimal literals are not allowed")
	}
	v, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("value is not finite")
	}
	return v, nil
}

// Determinant of the linear part. Zero means the mapping cannot be inverted.
func (p Params) Determinant() float64 {
	return p.PixelSizeX*p.PixelSizeY - p.RotationX*p.RotationY
}

// Invert returns parameters mapping grid coordinates back to pixels.
func (p Params) Invert() (Params, error) {
	det := p.Determinant()
	if det == 0 {
		return Params{}, errors.New("world file transform is not invertible")
	}

	inv := Params{
		PixelSizeX: p.PixelSizeY / det,
		RotationX:  -p.RotationX / det,
		RotationY:  -p.RotationY / det,
		PixelSizeY: p.PixelSizeX / det,
	}
	inv.OriginX = -(inv.PixelSizeX*p.OriginX + inv.RotationX*p.OriginY)
	inv.OriginY = -(inv.RotationY*p.OriginX + inv.PixelSizeY*p.OriginY)
	return inv, nil
}

// GeoTransform returns the parameters in GDAL order. GDAL anchors the
// transform on the outer corner of the first pixel, not its centre.
func (p Params) GeoTransform() [6]float64 {
	return [6]float64{
		p.OriginX - 0.5*p.PixelSizeX - 0.5*p.RotationX,
		p.PixelSizeX,
		p.RotationX,
		p.OriginY - 0.5*p.RotationY - 0.5*p.PixelSizeY,
		p.RotationY,
		p.PixelSizeY,
	}
}

// FromGeoTransform is the inverse of Params.GeoTransform.
func FromGeoTransform(gt [6]float64) Params {
	return Params{
		PixelSizeX: gt[1],
		RotationX:  gt[2],
		RotationY:  gt[4],
		PixelSizeY: gt[5],
		OriginX:    gt[0] + 0.5*gt[1] + 0.5*gt[2],
		OriginY:    gt[3] + 0.5*gt[4] + 0.5*gt[5],
	}
}
