// Package metadata reads the Ordnance Survey XML sidecar that accompanies an
// aerial tile. Lookups are "field present or not": no schema validation.
package metadata

import (
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"

	"tilegeoref/internal/logger"
)

// NotAvailable marks a field missing from the sidecar.
const NotAvailable = "N/A"

// Field names in a Metadata map.
const (
	FieldCopyright       = "copyright"
	FieldKmReference     = "km_reference"
	FieldDateFlown       = "date_flown"
	FieldCoordinates     = "coordinates"
	FieldLensFocalLength = "lens_focal_length"
	FieldResolution      = "resolution"
)

// Fields lists every key of a populated Metadata, in document order.
var Fields = []string{
	FieldCopyright,
	FieldKmReference,
	FieldDateFlown,
	FieldCoordinates,
	FieldLensFocalLength,
	FieldResolution,
}

const (
	osgbNS = "http://www.ordnancesurvey.co.uk/xml/namespaces/osgb"
	gmlNS  = "http://www.opengis.net/gml"
)

// Metadata maps field names to their text. It is empty when the sidecar is
// missing or unreadable, and otherwise holds every entry of Fields.
type Metadata map[string]string

// ErrMissingFile is returned by Load when the sidecar does not exist.
var ErrMissingFile = errors.New("metadata sidecar not found")

// ParseError reports a sidecar that is not well-formed XML.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "parse metadata " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type document struct {
	Copyright       *string `xml:"http://www.ordnancesurvey.co.uk/xml/namespaces/osgb copyright"`
	KmReference     *string `xml:"http://www.ordnancesurvey.co.uk/xml/namespaces/osgb kmReference"`
	DateFlown       *string `xml:"http://www.ordnancesurvey.co.uk/xml/namespaces/osgb dateFlown"`
	LensFocalLength *string `xml:"http://www.ordnancesurvey.co.uk/xml/namespaces/osgb lensFocalLength"`
	Resolution      *string `xml:"http://www.ordnancesurvey.co.uk/xml/namespaces/osgb resolution"`
	KmRectangle     *struct {
		Rectangle *struct {
			Coordinates *string `xml:"http://www.opengis.net/gml coordinates"`
		} `xml:"http://www.ordnancesurvey.co.uk/xml/namespaces/osgb Rectangle"`
	} `xml:"http://www.ordnancesurvey.co.uk/xml/namespaces/osgb kmRectangle"`
}

func (d document) coordinates() *string {
	if d.KmRectangle == nil || d.KmRectangle.Rectangle == nil {
		return nil
	}
	return d.KmRectangle.Rectangle.Coordinates
}

// Read loads the sidecar at path and never fails: a missing file gives an
// empty map, and an unreadable or malformed one an empty map plus a warning.
func Read(path string, log logger.ILogger) Metadata {
	md, err := Load(path)
	if err == nil {
		return md
	}

	if !errors.Is(err, ErrMissingFile) {
		log.Warnf("Error parsing %s. Returning empty metadata: %v", path, err)
	}
	return Metadata{}
}

// Load reads the sidecar at path, returning ErrMissingFile or *ParseError.
func Load(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrMissingFile, "%s", path)
		}
		return nil, errors.Wrap(err, "open metadata")
	}
	defer f.Close()

	md, err := Decode(f)
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Path = path
	}
	return md, err
}

// Decode parses sidecar XML from r. Documents declaring a non-UTF-8
// encoding are transcoded.
func Decode(r io.Reader) (Metadata, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{Err: err}
	}

	md := make(Metadata, len(Fields))
	md.set(FieldCopyright, doc.Copyright)
	md.set(FieldKmReference, doc.KmReference)
	md.set(FieldDateFlown, doc.DateFlown)
	md.set(FieldCoordinates, doc.coordinates())
	md.set(FieldLensFocalLength, doc.LensFocalLength)
	md.set(FieldResolution, doc.Resolution)
	return md, nil
}

func (m Metadata) set(field string, value *string) {
	if value == nil {
		m[field] = NotAvailable
		return
	}
	m[field] = strings.TrimSpace(*value)
}

// Available reports whether field holds a real value.
func (m Metadata) Available(field string) bool {
	v, ok := m[field]
	return ok && v != NotAvailable
}
