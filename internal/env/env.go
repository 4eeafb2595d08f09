// Package env merges the process environment with .env files so that settings
// parsing sees one consistent view.
package env

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Vars is a set of environment variables.
type Vars map[string]string

// FromOS builds Vars from the current process environment, keeping variables
// that are set to an empty string.
func FromOS() Vars {
	out := make(Vars)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		out[key] = value
	}
	return out
}

// Merge merges several Vars into one, later sets overriding earlier keys. An
// empty value only sets a key that is not already known, so a blank variable
// never masks a value loaded earlier.
func Merge(sets ...Vars) Vars {
	out := make(Vars)
	for _, s := range sets {
		for k, v := range s {
			if _, seen := out[k]; seen && v == "" {
				continue
			}
			out[k] = v
		}
	}
	return out
}

// Has reports whether key is set, even to an empty value.
func (v Vars) Has(key string) bool {
	_, ok := v[key]
	return ok
}

// Present reports whether key is set to a non-blank value.
func (v Vars) Present(key string) bool {
	return strings.TrimSpace(v[key]) != ""
}

// LoadEnvFile loads a single .env-style file.
func LoadEnvFile(path string) (Vars, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	parsed, err := godotenv.Parse(f)
	if err != nil {
		return nil, err
	}
	return Vars(parsed), nil
}

// LoadEnvFiles loads .env files in order, later files overriding earlier ones.
// Relative paths resolve against baseDir.
func LoadEnvFiles(baseDir string, files []string) (Vars, error) {
	result := make(Vars)
	for _, name := range files {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, name)
		}
		vars, err := LoadEnvFile(path)
		if err != nil {
			return nil, fmt.Errorf("load env file %q: %w", path, err)
		}
		result = Merge(result, vars)
	}
	return result, nil
}

// Resolve returns the variables settings parsing should see: files first, the
// process environment on top.
func Resolve(baseDir string, files []string) (Vars, error) {
	fromFiles, err := LoadEnvFiles(baseDir, files)
	if err != nil {
		return nil, err
	}
	return Merge(fromFiles, FromOS()), nil
}
