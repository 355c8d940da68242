package gdal

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"tilegeoref/internal/config"
)

// Mode selects where GDAL commands run.
type Mode string

const (
	// ModeOff disables GDAL; Run refuses to execute.
	ModeOff Mode = "off"
	// ModeLocal runs binaries found on PATH.
	ModeLocal Mode = "local"
	// ModeDocker runs binaries inside the GDAL container.
	ModeDocker Mode = "docker"
)

// ErrDisabled is returned by Run when the mode is off.
var ErrDisabled = errors.New("gdal is disabled")

// ParseMode maps a configuration value to a Mode. Blank means off.
func ParseMode(v string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(v))); m {
	case "", ModeOff:
		return ModeOff, nil
	case ModeLocal, ModeDocker:
		return m, nil
	default:
		return ModeOff, errors.Errorf("unknown gdal mode %q", v)
	}
}

// CurrentMode reads the mode from the environment. Unknown values read as off.
func CurrentMode() Mode {
	m, err := ParseMode(config.Get(config.KeyGDALMode, ""))
	if err != nil {
		return ModeOff
	}
	return m
}

// Enabled reports whether GDAL commands can run in the current mode.
func Enabled() bool {
	return CurrentMode() != ModeOff
}

// Run executes a GDAL command locally or in a Docker container depending on
// the current mode. stdout and stderr are captured separately; a failing
// command's error names the command and carries its stderr. Docker mode
// requires Initialize to have been called.
func Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error) {
	switch CurrentMode() {
	case ModeLocal:
		return runLocal(ctx, name, args...)
	case ModeDocker:
		client := GetClient()
		if client == nil {
			return "", "", errors.New("docker client not initialized - call Initialize() first")
		}
		return client.RunDocker(ctx, name, args...)
	default:
		return "", "", errors.Wrapf(ErrDisabled, "run %s", name)
	}
}

func runLocal(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdoutBuf bytes.Buffer
	var stderrBuf bytes.Buffer
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

func commandError(command string, commandErr error, stderr string) error {
	detail := strings.TrimSpace(stderr)
	if detail == "" {
		return errors.Wrapf(commandErr, "command %s failed", command)
	}
	return errors.Wrapf(commandErr, "command %s failed: %s", command, detail)
}
