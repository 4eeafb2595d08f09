package prcomment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultResultsName    = "output.json"
	DefaultResultsField   = "changedApis"
	DefaultResultsHeading = "### API Changes Detected"
)

// Source yields the sections a reconcile pass should publish.
type Source interface {
	sections() ([]string, error)
}

// Messages publishes caller supplied messages as sections.
type Messages []string

func (m Messages) sections() ([]string, error) {
	return []string(m), nil
}

// ResultsFile derives at most one section from a JSON results file written
// by an earlier workflow step.
type ResultsFile struct {
	Dir     string
	Name    string
	Field   string
	Heading string
}

func (f ResultsFile) withDefaults() ResultsFile {
	if strings.TrimSpace(f.Name) == "" {
		f.Name = DefaultResultsName
	}
	if strings.TrimSpace(f.Field) == "" {
		f.Field = DefaultResultsField
	}
	if strings.TrimSpace(f.Heading) == "" {
		f.Heading = DefaultResultsHeading
	}
	return f
}

// Path returns the location of the results file.
func (f ResultsFile) Path() string {
	return filepath.Join(f.Dir, f.withDefaults().Name)
}

func (f ResultsFile) sections() ([]string, error) {
	section, err := f.Section()
	if err != nil {
		return nil, err
	}
	if section == "" {
		return nil, nil
	}
	return []string{section}, nil
}

// Section reads the results file and renders its section. An empty string means
// the file contributes nothing.
func (f ResultsFile) Section() (string, error) {
	f = f.withDefaults()
	path := f.Path()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read results file %s: %w", path, err)
	}
	content := strings.TrimSpace(string(raw))
	if content == "" {
		return "", nil
	}

	var doc any
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return content, nil
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return "", nil
	}
	items, ok := obj[f.Field].([]any)
	if !ok || len(items) == 0 {
		return "", nil
	}

	var out bytes.Buffer
	if err := json.Indent(&out, []byte(content), "", "  "); err != nil {
		return content, nil
	}
	return fmt.Sprintf("%s\n\n```json\n%s\n```", f.Heading, out.String()), nil
}

// Collect resolves src into sections. A nil source yields none.
func Collect(src Source) ([]string, error) {
	if src == nil {
		return nil, nil
	}
	return src.sections()
}
