// Package config contains the loader and typed model for the prbot settings file
// (.github/prbot.yaml by default).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codex-k8s/prbot/internal/changelog"
	"github.com/codex-k8s/prbot/internal/prbody"
	"github.com/codex-k8s/prbot/internal/prcomment"
)

// Config is the prbot settings file. Omitted fields keep their defaults.
type Config struct {
	// EnvFiles lists .env files loaded before environment variables are parsed.
	// Relative paths resolve against the settings file directory.
	EnvFiles []string `yaml:"envFiles,omitempty"`
	// Comment configures the tracked pull request comment.
	Comment CommentConfig `yaml:"comment,omitempty"`
	// Results configures the results file section.
	Results ResultsConfig `yaml:"results,omitempty"`
	// Body configures the pull request description checks.
	Body BodyConfig `yaml:"body,omitempty"`
}

// CommentConfig describes the tracked comment.
type CommentConfig struct {
	// Marker is the hidden substring identifying the tracked comment.
	Marker string `yaml:"marker,omitempty"`
	// Heading is the first visible line of the tracked comment.
	Heading string `yaml:"heading,omitempty"`
}

// ResultsConfig describes the results file produced by an earlier workflow step.
type ResultsConfig struct {
	File    string `yaml:"file,omitempty"`
	Field   string `yaml:"field,omitempty"`
	Heading string `yaml:"heading,omitempty"`
}

// BodyConfig tunes the description checks.
type BodyConfig struct {
	MinLength        int      `yaml:"minLength,omitempty"`
	ExternalMarker   string   `yaml:"externalMarker,omitempty"`
	SummaryMarkers   []string `yaml:"summaryMarkers,omitempty"`
	TestPlanMarkers  []string `yaml:"testPlanMarkers,omitempty"`
	ChangelogDocsURL string   `yaml:"changelogDocsURL,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	body := prbody.DefaultOptions()
	return Config{
		Comment: CommentConfig{
			Marker:  prcomment.DefaultMarker,
			Heading: prcomment.DefaultHeading,
		},
		Results: ResultsConfig{
			File:    prcomment.DefaultResultsName,
			Field:   prcomment.DefaultResultsField,
			Heading: prcomment.DefaultResultsHeading,
		},
		Body: BodyConfig{
			MinLength:        body.MinLength,
			ExternalMarker:   body.ExternalMarker,
			SummaryMarkers:   body.SummaryMarkers,
			TestPlanMarkers:  body.TestPlanMarkers,
			ChangelogDocsURL: body.ChangelogDocsURL,
		},
	}
}

// Load reads the settings file at path on top of Default. A missing file is not
// an error when optional is true.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Comment.Marker) == "" {
		return errors.New("comment.marker must not be empty")
	}
	if c.Body.MinLength < 0 {
		return fmt.Errorf("body.minLength must not be negative, got %d", c.Body.MinLength)
	}
	if strings.ContainsAny(c.Results.File, `/\`) {
		return fmt.Errorf("results.file must be a file name, got %q", c.Results.File)
	}
	return nil
}

// CommentOptions converts the comment section for prcomment.NewReconciler.
func (c Config) CommentOptions() prcomment.Options {
	return prcomment.Options{Marker: c.Comment.Marker, Heading: c.Comment.Heading}
}

// ResultsFile returns the results file source rooted at dir.
func (c Config) ResultsFile(dir string) prcomment.ResultsFile {
	return prcomment.ResultsFile{
		Dir:     dir,
		Name:    c.Results.File,
		Field:   c.Results.Field,
		Heading: c.Results.Heading,
	}
}

// BodyValidator builds the description validator with the default changelog rules.
func (c Config) BodyValidator() *prbody.Validator {
	return prbody.NewValidator(prbody.Options{
		MinLength:        c.Body.MinLength,
		ExternalMarker:   c.Body.ExternalMarker,
		SummaryMarkers:   c.Body.SummaryMarkers,
		TestPlanMarkers:  c.Body.TestPlanMarkers,
		ChangelogDocsURL: c.Body.ChangelogDocsURL,
	}, changelog.Default)
}
