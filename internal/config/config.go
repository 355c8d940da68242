package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Environment keys read by the CLI.
const (
	KeyWorldFileExt = "TILEGEOREF_WORLDFILE_EXT"
	KeyLogLevel     = "TILEGEOREF_LOG_LEVEL"
	KeyWorkers      = "TILEGEOREF_WORKERS"
	KeyMetadata     = "TILEGEOREF_METADATA"
	KeyGDALMode     = "TILEGEOREF_GDAL_MODE"
)

// Load reads .env files into the process environment without overriding
// variables that are already set. With no paths it reads ./.env. A missing
// file is not an error; found reports whether anything was loaded.
func Load(paths ...string) (found bool, err error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return false, nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return false, errors.Wrap(err, "load env file")
	}
	return true, nil
}

// Get returns the trimmed value of key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Int returns key parsed as an integer, or fallback when unset.
func Int(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, errors.Wrapf(err, "%s=%q", key, v)
	}
	return n, nil
}

// Bool returns key parsed with strconv.ParseBool, or fallback when unset.
func Bool(key string, fallback bool) (bool, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, errors.Wrapf(err, "%s=%q", key, v)
	}
	return b, nil
}
