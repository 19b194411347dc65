package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load reads the configuration from dir, overlaying the defaults. A
// missing file yields the defaults; a malformed or invalid file is an
// error so the caller can report it and continue with defaults.
func Load(fs afero.Fs, dir string) (*Configuration, error) {
	out := Default()

	contents, err := afero.ReadFile(fs, filepath.Join(dir, ConfigurationName))
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return out, err
	}
	if err := yaml.UnmarshalStrict(contents, out); err != nil {
		return Default(), err
	}
	if err := out.Validate(); err != nil {
		return Default(), err
	}
	return out, nil
}

// ExpandHome rewrites a leading ~ to the given home directory.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
