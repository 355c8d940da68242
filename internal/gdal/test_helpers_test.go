package gdal

import (
	"os"
	"runtime"
	"testing"

	"tilegeoref/internal/config"
)

func useLocalGDAL(t *testing.T) {
	t.Helper()
	t.Setenv(config.KeyGDALMode, string(ModeLocal))
}

func writeScript(t *testing.T, path, contents string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	if err := os.WriteFile(path, []byte(contents), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
}

func prependPath(t *testing.T, dir string) {
	t.Helper()
	old := os.Getenv("PATH")
	t.Setenv("PATH", dir+string(os.PathListSeparator)+old)
}
