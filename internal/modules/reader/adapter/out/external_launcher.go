package out

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	readerout "atheneum/internal/modules/reader/port/out"
	apperrors "atheneum/internal/platform/errors"
)

// SystemLauncher hands a file to the desktop's default application.
type SystemLauncher struct {
	goos string
}

func NewSystemLauncher() readerout.ExternalLauncher {
	return &SystemLauncher{goos: runtime.GOOS}
}

func (l *SystemLauncher) Open(_ context.Context, target string) error {
	name, args, err := launchCommand(l.goos, target)
	if err != nil {
		return err
	}
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: launch %s: %w", apperrors.ErrRenderer, name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func launchCommand(goos, target string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{target}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	default:
		return "", nil, fmt.Errorf("%w: external viewers are not supported on %s", apperrors.ErrRenderer, goos)
	}
}
