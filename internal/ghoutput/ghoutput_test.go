package ghoutput

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseOutputs reads a GITHUB_OUTPUT file the way the runner does.
func parseOutputs(t *testing.T, path string) map[string]string {
	t.Helper()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	out := make(map[string]string)
	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if key, delim, ok := strings.Cut(line, "<<"); ok && !strings.Contains(key, "=") {
			var body []string
			for i++; i < len(lines) && lines[i] != delim; i++ {
				body = append(body, lines[i])
			}
			out[key] = strings.Join(body, "\n")
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		require.True(t, ok, "malformed line %q", line)
		out[key] = value
	}
	return out
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	t.Setenv("GITHUB_OUTPUT", path)

	values := map[string]string{
		"result":  "FAIL",
		"message": "> [!CAUTION]\n> **Missing Description**\n>\n> text",
		"empty":   "",
		" ":       "skipped",
	}
	require.NoError(t, Write(values))
	require.NoError(t, Write(map[string]string{"comment_action": "created"}))

	got := parseOutputs(t, path)
	assert.Equal(t, map[string]string{
		"result":         "FAIL",
		"message":        values["message"],
		"empty":          "",
		"comment_action": "created",
	}, got)
}

func TestWriteWithoutEnvIsNoop(t *testing.T) {
	t.Setenv("GITHUB_OUTPUT", "")
	assert.NoError(t, Write(map[string]string{"a": "b"}))
}

func TestWriteSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	t.Setenv("GITHUB_STEP_SUMMARY", path)

	require.NoError(t, WriteSummary("## PR Validation\n\nok\n\n"))
	require.NoError(t, WriteSummary("   "))
	require.NoError(t, WriteSummary("second"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "## PR Validation\n\nok\nsecond\n", string(raw))
}

func TestWriteUnwritablePath(t *testing.T) {
	t.Setenv("GITHUB_OUTPUT", filepath.Join(t.TempDir(), "missing-dir", "output"))

	err := Write(map[string]string{"a": "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open GITHUB_OUTPUT")
}

func TestDelimiterAvoidsValue(t *testing.T) {
	d, err := delimiter("ghadelimiter_")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(d, "ghadelimiter_"))
	assert.Len(t, d, len("ghadelimiter_")+16)
}
