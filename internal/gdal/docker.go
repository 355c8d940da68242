package gdal

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// Image is the container image used for GDAL commands.
	Image = "ghcr.io/osgeo/gdal:latest"
	// ContainerWorkDir is where the working directory is mounted.
	ContainerWorkDir = "/work"
	// containerExtraDir prefixes read-only mounts for files outside the
	// working directory.
	containerExtraDir = "/mnt"
)

// Client runs GDAL commands through the docker CLI.
type Client struct {
	workDir string
}

// NewClient checks that docker is reachable and binds the client to the
// current working directory.
func NewClient(ctx context.Context) (*Client, error) {
	if err := exec.CommandContext(ctx, "docker", "ps").Run(); err != nil {
		return nil, errors.Wrap(err, "docker not available")
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "get working directory")
	}

	return &Client{workDir: cwd}, nil
}

// Close is a no-op for the CLI-based client.
func (c *Client) Close() error {
	return nil
}

// RunDocker executes name inside the GDAL image. Path arguments are
// rewritten to container paths; files outside the working directory get
// their parent directory mounted read-only.
func (c *Client) RunDocker(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error) {
	if err := c.ensureImage(ctx); err != nil {
		return "", "", errors.Wrap(err, "ensure image")
	}

	m := newMounts(c.workDir)
	converted := make([]string, len(args))
	for i, arg := range args {
		converted[i] = c.convertArg(m, arg)
	}

	dockerArgs := []string{"run", "--rm"}
	dockerArgs = append(dockerArgs, m.flags()...)
	dockerArgs = append(dockerArgs, "-w", ContainerWorkDir, Image, name)
	dockerArgs = append(dockerArgs, converted...)

	cmd := exec.CommandContext(ctx, "docker", dockerArgs...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()
	if err != nil {
		return stdout, stderr, commandError(formatCommand(name, args), err, stderr)
	}

	return stdout, stderr, nil
}

func (c *Client) convertArg(m *mounts, arg string) string {
	if strings.HasPrefix(arg, "-") || !looksLikePath(arg) {
		return arg
	}
	return c.convertPath(m, arg)
}

// convertPath maps a host path to its location inside the container.
func (c *Client) convertPath(m *mounts, filePath string) string {
	if !filepath.IsAbs(filePath) {
		return path.Join(ContainerWorkDir, filepath.ToSlash(filePath))
	}

	rel, err := filepath.Rel(c.workDir, filePath)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path.Join(ContainerWorkDir, filepath.ToSlash(rel))
	}

	return path.Join(m.dirFor(filepath.Dir(filePath)), filepath.Base(filePath))
}

func (c *Client) ensureImage(ctx context.Context) error {
	if err := exec.CommandContext(ctx, "docker", "inspect", Image).Run(); err == nil {
		return nil
	}

	cmd := exec.CommandContext(ctx, "docker", "pull", Image)
	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderrBuf.String())
		if detail == "" {
			return errors.Wrap(err, "pull image")
		}
		return errors.Errorf("pull image: %s", detail)
	}
	return nil
}

// mounts tracks host directories bound into one container run.
type mounts struct {
	workDir string
	extra   []string
	index   map[string]int
}

func newMounts(workDir string) *mounts {
	return &mounts{workDir: workDir, index: map[string]int{}}
}

func (m *mounts) dirFor(hostDir string) string {
	i, ok := m.index[hostDir]
	if !ok {
		i = len(m.extra)
		m.index[hostDir] = i
		m.extra = append(m.extra, hostDir)
	}
	return fmt.Sprintf("%s/%d", containerExtraDir, i)
}

func (m *mounts) flags() []string {
	flags := []string{"-v", fmt.Sprintf("%s:%s", m.workDir, ContainerWorkDir)}
	for i, dir := range m.extra {
		flags = append(flags, "-v", fmt.Sprintf("%s:%s/%d:ro", dir, containerExtraDir, i))
	}
	return flags
}

func formatCommand(name string, args []string) string {
	parts := []string{quoteArg(name)}
	for _, arg := range args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if arg == "" || strings.ContainsAny(arg, " \t\n\r\"\\") {
		return strconv.Quote(arg)
	}
	return arg
}

var imageExts = []string{
	".tif", ".tiff", ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".jp2", ".j2k",
	".webp", ".img", ".vrt", ".xml", ".jgw", ".jpw", ".tfw", ".wld",
}

// looksLikePath reports whether a command argument should be treated as a
// host path.
func looksLikePath(arg string) bool {
	if arg == "" {
		return false
	}
	if strings.ContainsAny(arg, "/\\") {
		return true
	}
	if strings.HasPrefix(arg, ".") || strings.HasPrefix(arg, "~") {
		return true
	}

	lower := strings.ToLower(arg)
	for _, ext := range imageExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
