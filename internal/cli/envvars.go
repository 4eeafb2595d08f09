package cli

import (
	"fmt"

	envparse "github.com/caarlos0/env/v11"

	"github.com/codex-k8s/prbot/internal/env"
	"github.com/codex-k8s/prbot/internal/githubapi"
)

// settingsEnv captures PRBOT_* inputs and the standard GitHub Actions variables.
type settingsEnv struct {
	// ConfigPath is the settings file from PRBOT_CONFIG.
	ConfigPath string `env:"PRBOT_CONFIG"`
	// LogLevel is the logging level from PRBOT_LOG_LEVEL.
	LogLevel string `env:"PRBOT_LOG_LEVEL"`
	// EnvFiles is a comma separated list of .env files from PRBOT_ENV_FILE.
	EnvFiles []string `env:"PRBOT_ENV_FILE"`

	// PRNumber is the pull request number from PRBOT_PR_NUMBER.
	PRNumber int `env:"PRBOT_PR_NUMBER"`
	// Body is the pull request description from PRBOT_PR_BODY.
	Body string `env:"PRBOT_PR_BODY"`
	// ScratchDir holds the results file, from PRBOT_SCRATCH_DIR.
	ScratchDir string `env:"PRBOT_SCRATCH_DIR"`
	// NoFail keeps the step green on validation failures, from PRBOT_NO_FAIL.
	NoFail bool `env:"PRBOT_NO_FAIL"`

	// App holds GitHub App credentials from PRBOT_APP_*.
	App appEnv `envPrefix:"PRBOT_APP_"`

	// Repository is the owner/repo slug from GITHUB_REPOSITORY.
	Repository string `env:"GITHUB_REPOSITORY"`
	// EventPath is the webhook payload file from GITHUB_EVENT_PATH.
	EventPath string `env:"GITHUB_EVENT_PATH"`
	// APIURL is the REST endpoint from GITHUB_API_URL.
	APIURL string `env:"GITHUB_API_URL"`
	// GraphQLURL is the GraphQL endpoint from GITHUB_GRAPHQL_URL.
	GraphQLURL string `env:"GITHUB_GRAPHQL_URL"`
	// Token is the workflow token from GITHUB_TOKEN.
	Token string `env:"GITHUB_TOKEN"`
	// GHToken is the gh CLI style token from GH_TOKEN.
	GHToken string `env:"GH_TOKEN"`
}

// appEnv describes GitHub App installation credentials.
type appEnv struct {
	ID             int64  `env:"ID"`
	InstallationID int64  `env:"INSTALLATION_ID"`
	PrivateKey     string `env:"PRIVATE_KEY"`
	PrivateKeyPath string `env:"PRIVATE_KEY_PATH"`
}

// parseSettings fills settingsEnv from vars instead of the process environment.
func parseSettings(vars env.Vars) (settingsEnv, error) {
	var s settingsEnv
	if err := envparse.ParseWithOptions(&s, envparse.Options{Environment: vars}); err != nil {
		return settingsEnv{}, fmt.Errorf("parse environment: %w", err)
	}
	return s, nil
}

// auth returns GitHub credentials, preferring GITHUB_TOKEN over GH_TOKEN.
func (s settingsEnv) auth() githubapi.Auth {
	token := s.Token
	if token == "" {
		token = s.GHToken
	}
	return githubapi.Auth{
		Token:          token,
		AppID:          s.App.ID,
		InstallationID: s.App.InstallationID,
		PrivateKey:     s.App.PrivateKey,
		PrivateKeyPath: s.App.PrivateKeyPath,
	}
}

func (s settingsEnv) endpoints() githubapi.Endpoints {
	return githubapi.Endpoints{APIURL: s.APIURL, GraphQLURL: s.GraphQLURL}
}
