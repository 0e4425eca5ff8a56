package output

import (
	"fmt"
	"image"
	"os/exec"
	"runtime"

	"github.com/kikiluvv/framestack/pkg/util"
	"github.com/rs/zerolog"
)

// Viewer displays a finished image
type Viewer interface {
	Show(img image.Image) error
}

// SystemViewer hands a temporary PNG to the host's default image opener and
// returns without waiting for it.
type SystemViewer struct {
	logger  zerolog.Logger
	tempDir string
	opener  func(path string) *exec.Cmd
}

// NewSystemViewer creates a viewer that runs command on the preview file,
// or the platform opener when command is empty.
func NewSystemViewer(logger zerolog.Logger, command string) *SystemViewer {
	opener := platformOpener
	if command != "" {
		opener = func(path string) *exec.Cmd {
			return exec.Command(command, path)
		}
	}
	return &SystemViewer{
		logger: logger.With().Str("component", "viewer").Logger(),
		opener: opener,
	}
}

// Show writes img to a temporary file and launches the opener on it.
// The temporary file is left behind for the viewer to read.
func (v *SystemViewer) Show(img image.Image) error {
	f, err := util.TempFile(v.tempDir, "framestack-", ".png")
	if err != nil {
		return fmt.Errorf("failed to create preview file: %w", err)
	}
	path := f.Name()

	if err := Encode(f, img); err != nil {
		f.Close()
		util.CleanupFiles(path)
		return err
	}
	if err := f.Close(); err != nil {
		util.CleanupFiles(path)
		return fmt.Errorf("failed to write preview file: %w", err)
	}

	cmd := v.opener(path)
	if err := cmd.Start(); err != nil {
		util.CleanupFiles(path)
		return fmt.Errorf("failed to launch image viewer %s: %w", cmd.Path, err)
	}

	v.logger.Debug().
		Str("file", path).
		Strs("cmd", cmd.Args).
		Msg("launched image viewer")

	// Fire and forget: the viewer outlives us.
	if cmd.Process != nil {
		_ = cmd.Process.Release()
	}
	return nil
}

// platformOpener hands path to the desktop's default image handler
func platformOpener(path string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		return exec.Command("xdg-open", path)
	}
}
