// Package debug writes emulator state to files: PNG frame snapshots and the
// hex dump taken when emulation stops on a fatal error.
package debug

import (
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/valerio/go-dmg/dmg/video"
)

// EncodePNG writes frame as a 160x144 PNG.
func EncodePNG(w io.Writer, frame *video.FrameBuffer) error {
	if err := png.Encode(w, frame.RGBA()); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

// SaveFramePNG writes frame to path as PNG.
func SaveFramePNG(frame *video.FrameBuffer, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}

	if err := EncodePNG(file, frame); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// SaveFramePNGToDir saves frame as <baseName>_<timestamp>.png in directory,
// or in the working directory when directory is empty. It returns the path written.
func SaveFramePNGToDir(frame *video.FrameBuffer, baseName, directory string) (string, error) {
	if frame == nil {
		return "", fmt.Errorf("no frame to save")
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(directory, fmt.Sprintf("%s_%s.png", baseName, timestamp))

	if err := SaveFramePNG(frame, path); err != nil {
		return "", err
	}

	slog.Info("Snapshot saved", "path", path, "size", fmt.Sprintf("%dx%d", video.Width, video.Height))
	return path, nil
}
