package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSink writes artifacts below a base directory, one subdirectory per kind.
// Files are written to a temporary name and renamed into place.
type FileSink struct {
	baseDir string
	layout  Layout
}

// NewFileSink creates a file sink rooted at baseDir
func NewFileSink(baseDir string, layout Layout) *FileSink {
	if layout == nil {
		layout = DefaultLayout()
	}
	return &FileSink{
		baseDir: baseDir,
		layout:  layout,
	}
}

// Write stores data at <baseDir>/<kind dir>/<name> and returns the path
func (s *FileSink) Write(ctx context.Context, kind Kind, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.baseDir, s.layout.location(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	target := filepath.Join(dir, SanitizeName(name))

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to set artifact permissions: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to move artifact into place: %w", err)
	}

	return target, nil
}

// Ensure FileSink implements Sink
var _ Sink = (*FileSink)(nil)
