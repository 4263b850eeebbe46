package home

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultDirName is the default name for the loopctl home directory.
	DefaultDirName = ".loopctl"

	// RenderedDirName is the subdirectory for rendered template previews.
	RenderedDirName = "rendered"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the loopctl home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.loopctl).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// RenderedPath returns the directory rendered previews are written to.
func (d *Dir) RenderedPath() string {
	return filepath.Join(d.path, RenderedDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	// Create rendered directory (this also creates the parent)
	if err := os.MkdirAll(d.RenderedPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create rendered directory: %w", err)
	}
	return nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// RenderedFile returns a timestamped path for a rendered preview of a template.
func (d *Dir) RenderedFile(templateName string, at time.Time) string {
	return filepath.Join(d.RenderedPath(),
		fmt.Sprintf("%s-%s.html", templateName, at.UTC().Format("20060102T150405Z")))
}
