package worldfile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Find when no sidecar exists for an image.
var ErrNotFound = errors.New("world file not found")

// Extensions lists the sidecar extensions conventionally paired with an image
// extension, most common first. ".jpg" gives ".jgw", ".jpw", ".jpgw", ".wld".
func Extensions(imageExt string) []string {
	ext := strings.ToLower(strings.TrimPrefix(imageExt, "."))
	if ext == "" {
		return []string{".wld"}
	}

	out := make([]string, 0, 4)
	seen := make(map[string]struct{}, 4)
	add := func(candidate string) {
		if _, ok := seen[candidate]; ok {
			return
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}

	if len(ext) >= 2 {
		add("." + ext[:1] + ext[len(ext)-1:] + "w")
		add("." + ext[:2] + "w")
	}
	add("." + ext + "w")
	add(".wld")
	return out
}

// Find returns the world file sitting next to imagePath. A non-empty ext
// (with or without the dot) restricts the lookup to that one extension;
// otherwise Extensions is tried in order. Upper-case variants are accepted.
func Find(imagePath, ext string) (string, error) {
	candidates := Extensions(filepath.Ext(imagePath))
	if ext != "" {
		candidates = []string{"." + strings.TrimPrefix(strings.ToLower(ext), ".")}
	}

	stem := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	for _, candidate := range candidates {
		for _, variant := range []string{candidate, strings.ToUpper(candidate)} {
			path := stem + variant
			info, err := os.Stat(path)
			if err == nil && !info.IsDir() {
				return path, nil
			}
			if err != nil && !os.IsNotExist(err) {
				return "", errors.Wrap(err, "stat world file")
			}
		}
	}

	return "", errors.Wrapf(ErrNotFound, "%s", imagePath)
}
