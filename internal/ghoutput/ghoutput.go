// Package ghoutput writes GitHub Actions step outputs and job summaries.
package ghoutput

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

const (
	outputEnv  = "GITHUB_OUTPUT"
	summaryEnv = "GITHUB_STEP_SUMMARY"
)

// Write appends outputs to the GITHUB_OUTPUT file when available. Multi-line
// values use the heredoc delimiter form.
func Write(values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	return appendTo(outputEnv, func(w io.Writer) error {
		keys := make([]string, 0, len(values))
		for k := range values {
			if strings.TrimSpace(k) == "" {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			if err := writeOutput(w, key, values[key]); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteSummary appends markdown to the job summary when GITHUB_STEP_SUMMARY is set.
func WriteSummary(markdown string) error {
	if strings.TrimSpace(markdown) == "" {
		return nil
	}
	return appendTo(summaryEnv, func(w io.Writer) error {
		_, err := io.WriteString(w, strings.TrimRight(markdown, "\n")+"\n")
		return err
	})
}

func appendTo(envKey string, write func(io.Writer) error) error {
	path := strings.TrimSpace(os.Getenv(envKey))
	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open %s: %w", envKey, err)
	}
	defer func() { _ = f.Close() }()

	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", envKey, err)
	}
	return nil
}

func writeOutput(w io.Writer, key, value string) error {
	if !strings.ContainsAny(value, "\r\n") {
		_, err := fmt.Fprintf(w, "%s=%s\n", key, value)
		return err
	}

	delim, err := delimiter(value)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s<<%s\n%s\n%s\n", key, delim, value, delim)
	return err
}

// delimiter returns a heredoc terminator that does not occur in value.
func delimiter(value string) (string, error) {
	buf := make([]byte, 8)
	for {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		d := "ghadelimiter_" + hex.EncodeToString(buf)
		if !strings.Contains(value, d) {
			return d, nil
		}
	}
}
