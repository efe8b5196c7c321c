package config

import (
	"errors"
	"log"
	"path/filepath"

	"github.com/spf13/afero"
)

// Initialize writes the default configuration to path unless a file
// already exists there, then loads it. A blank path means DefaultPath.
func Initialize(fsys afero.Fs, path string, logger *log.Logger) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return nil, errors.New("no configuration directory could be determined")
	}

	exists, err := afero.Exists(fsys, path)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Printf("Found existing %s, not overwriting", path)
		return Load(fsys, path)
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	if err := afero.WriteFile(fsys, path, defaultConfigData, 0644); err != nil {
		return nil, err
	}
	logger.Printf("Wrote default configuration to %s", path)

	return Load(fsys, path)
}
