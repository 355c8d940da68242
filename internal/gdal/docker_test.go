package gdal

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewClient(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}

	ctx := context.Background()
	client, err := NewClient(ctx)
	if err != nil {
		t.Skipf("docker not running: %v", err)
	}
	if client == nil {
		t.Fatal("Docker client is nil")
	}
	defer client.Close()
}

func TestConvertPath(t *testing.T) {
	cwd, _ := os.Getwd()
	client := &Client{workDir: cwd}
	outside := filepath.Join(filepath.Dir(cwd), "elsewhere", "tile.tif")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "relative path",
			input:    "test.tif",
			expected: "/work/test.tif",
		},
		{
			name:     "relative path with subdirs",
			input:    "tiles/test.tif",
			expected: "/work/tiles/test.tif",
		},
		{
			name:     "absolute path within workdir",
			input:    filepath.Join(cwd, "test.tif"),
			expected: "/work/test.tif",
		},
		{
			name:     "absolute path outside workdir",
			input:    outside,
			expected: "/mnt/0/tile.tif",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMounts(cwd)
			result := client.convertPath(m, tt.input)
			if result != tt.expected {
				t.Errorf("convertPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestMountsReuseDirectories(t *testing.T) {
	m := newMounts("/home/user/project")

	a := m.dirFor("/data/a")
	b := m.dirFor("/data/b")
	again := m.dirFor("/data/a")
	if a != "/mnt/0" || b != "/mnt/1" || again != a {
		t.Fatalf("unexpected mount dirs: %q %q %q", a, b, again)
	}

	flags := strings.Join(m.flags(), " ")
	want := "-v /home/user/project:/work -v /data/a:/mnt/0:ro -v /data/b:/mnt/1:ro"
	if flags != want {
		t.Fatalf("flags = %q, want %q", flags, want)
	}
}

func TestLooksLikePath(t *testing.T) {
	tests := []struct {
		arg  string
		want bool
	}{
		{arg: "", want: false},
		{arg: "-json", want: false},
		{arg: "EPSG:27700", want: false},
		{arg: "tile.JPG", want: true},
		{arg: "tile.jgw", want: true},
		{arg: "./tile", want: true},
		{arg: "dir/tile", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			if got := looksLikePath(tt.arg); got != tt.want {
				t.Errorf("looksLikePath(%q) = %v, want %v", tt.arg, got, tt.want)
			}
		})
	}
}

func TestFormatCommand(t *testing.T) {
	tests := []struct {
		name     string
		cmdName  string
		args     []string
		expected string
	}{
		{
			name:     "simple command",
			cmdName:  "gdalinfo",
			args:     []string{"-json", "input.tif"},
			expected: "gdalinfo -json input.tif",
		},
		{
			name:     "argument with space",
			cmdName:  "gdalinfo",
			args:     []string{"my tile.tif"},
			expected: `gdalinfo "my tile.tif"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatCommand(tt.cmdName, tt.args)
			if result != tt.expected {
				t.Errorf("formatCommand(%q, %v) = %q, want %q", tt.cmdName, tt.args, result, tt.expected)
			}
		})
	}
}

func TestQuoteArg(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple arg",
			input:    "test",
			expected: "test",
		},
		{
			name:     "arg with space",
			input:    "hello world",
			expected: `"hello world"`,
		},
		{
			name:     "empty string",
			input:    "",
			expected: `""`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := quoteArg(tt.input)
			if result != tt.expected {
				t.Errorf("quoteArg(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
