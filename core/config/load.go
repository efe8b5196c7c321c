package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// DefaultPath returns the stock configuration location, which is
// config.yaml under the user's configuration directory. It returns ""
// when no configuration directory can be determined.
func DefaultPath() string {
	confDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(confDir, "mish", ConfigurationName)
}

// Load reads and validates the configuration at path, falling back to
// DefaultPath when path is empty. A missing file is not an error: the
// embedded defaults apply. Values present in the file override the
// defaults; absent values keep them.
func Load(fsys afero.Fs, path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return Default(), nil
	}

	contents, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	out := Default()
	if err := yaml.UnmarshalStrict(contents, out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
