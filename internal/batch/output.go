package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ResultPath is where WriteResult puts the JSON for img.
func ResultPath(img string) string {
	return strings.TrimSuffix(img, filepath.Ext(img)) + "_georeferenced.json"
}

// WriteResult writes res as indented JSON next to its image and returns the
// path written.
func WriteResult(res ImageResult) (string, error) {
	data, err := json.MarshalIndent(res, "", "    ")
	if err != nil {
		return "", errors.Wrap(err, "encode result")
	}

	path := ResultPath(res.Image)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "write result")
	}
	return path, nil
}
