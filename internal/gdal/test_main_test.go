package gdal

import (
	"os"
	"testing"

	"tilegeoref/internal/config"
)

func TestMain(m *testing.M) {
	os.Setenv(config.KeyGDALMode, string(ModeLocal))
	os.Exit(m.Run())
}
