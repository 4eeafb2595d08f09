package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/prbot/internal/logging"
)

const passingBody = `## Summary

This change fixes the scroll position being lost when a list re-renders.

## Changelog:

[iOS] [Fixed] - Keep scroll position when a list re-renders

## Test Plan

Ran the RNTester list examples and scrolled around.`

var settingKeys = []string{
	"GITHUB_OUTPUT", "GITHUB_STEP_SUMMARY", "GITHUB_EVENT_PATH", "GITHUB_REPOSITORY",
	"GITHUB_TOKEN", "GH_TOKEN", "GITHUB_API_URL", "GITHUB_GRAPHQL_URL",
	"PRBOT_CONFIG", "PRBOT_LOG_LEVEL", "PRBOT_ENV_FILE", "PRBOT_PR_NUMBER", "PRBOT_PR_BODY",
	"PRBOT_SCRATCH_DIR", "PRBOT_NO_FAIL", "PRBOT_APP_ID", "PRBOT_APP_INSTALLATION_ID",
	"PRBOT_APP_PRIVATE_KEY", "PRBOT_APP_PRIVATE_KEY_PATH",
}

// isolateEnv unsets every variable prbot reads and points GITHUB_OUTPUT at a temp file.
func isolateEnv(t *testing.T) string {
	t.Helper()

	for _, key := range settingKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	output := filepath.Join(t.TempDir(), "github_output")
	t.Setenv("GITHUB_OUTPUT", output)
	return output
}

type runResult struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()

	opts := &Options{ConfigPath: defaultConfigPath, LogLevel: logging.LevelInfo}
	cmd := newRootCommand(opts, nil)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// readOutputs parses a GITHUB_OUTPUT file, later values winning.
func readOutputs(t *testing.T, path string) map[string]string {
	t.Helper()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]string{}
	}
	require.NoError(t, err)

	out := make(map[string]string)
	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	for i := 0; i < len(lines); i++ {
		if key, delim, ok := strings.Cut(lines[i], "<<"); ok && !strings.Contains(key, "=") {
			var body []string
			for i++; i < len(lines) && lines[i] != delim; i++ {
				body = append(body, lines[i])
			}
			out[key] = strings.Join(body, "\n")
			continue
		}
		key, value, _ := strings.Cut(lines[i], "=")
		out[key] = value
	}
	return out
}

type fakeComment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

// fakeGitHub serves the issue comment REST endpoints and the pull request body GraphQL query.
type fakeGitHub struct {
	mu       sync.Mutex
	nextID   int64
	comments []fakeComment
	prBody   string
	paths    []string
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()

	f := &fakeGitHub{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/{owner}/{repo}/issues/{number}/comments", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.paths = append(f.paths, r.Method+" "+r.URL.Path)
		writeJSON(w, http.StatusOK, f.comments)
	})
	mux.HandleFunc("POST /repos/{owner}/{repo}/issues/{number}/comments", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.paths = append(f.paths, r.Method+" "+r.URL.Path)
		var in fakeComment
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		f.nextID++
		c := fakeComment{ID: f.nextID, Body: in.Body}
		f.comments = append(f.comments, c)
		writeJSON(w, http.StatusCreated, c)
	})
	mux.HandleFunc("PATCH /repos/{owner}/{repo}/issues/comments/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.paths = append(f.paths, r.Method+" "+r.URL.Path)
		var in fakeComment
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		for i := range f.comments {
			if f.comments[i].ID == id {
				f.comments[i].Body = in.Body
				writeJSON(w, http.StatusOK, f.comments[i])
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	})
	mux.HandleFunc("DELETE /repos/{owner}/{repo}/issues/comments/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.paths = append(f.paths, r.Method+" "+r.URL.Path)
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		for i := range f.comments {
			if f.comments[i].ID == id {
				f.comments = append(f.comments[:i], f.comments[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	})
	mux.HandleFunc("POST /graphql", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.paths = append(f.paths, r.Method+" "+r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{
				"repository": map[string]any{
					"pullRequest": map[string]any{"body": f.prBody},
				},
			},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	t.Setenv("GITHUB_API_URL", srv.URL)
	t.Setenv("GITHUB_GRAPHQL_URL", srv.URL+"/graphql")
	t.Setenv("GITHUB_TOKEN", "test-token")
	return f
}

func (f *fakeGitHub) bodies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.comments))
	for _, c := range f.comments {
		out = append(out, c.Body)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
