package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"golang.org/x/oauth2"
)

// Auth selects how prbot authenticates to GitHub.
// A configured AppID takes precedence over Token.
type Auth struct {
	// Token is a workflow or personal access token.
	Token string
	// AppID is the GitHub App ID.
	AppID int64
	// InstallationID is the GitHub App installation ID for the repository.
	InstallationID int64
	// PrivateKey is the PEM-encoded GitHub App private key.
	PrivateKey string
	// PrivateKeyPath points to a PEM file with the GitHub App private key.
	PrivateKeyPath string
}

// UsesApp reports whether GitHub App authentication is configured.
func (a Auth) UsesApp() bool {
	return a.AppID > 0
}

// HTTPClient returns an http.Client that authenticates every request.
func (a Auth) HTTPClient(ctx context.Context, apiURL string) (*http.Client, error) {
	if a.UsesApp() {
		tr, err := a.appTransport()
		if err != nil {
			return nil, err
		}
		if api := strings.TrimSpace(apiURL); api != "" {
			tr.BaseURL = strings.TrimSuffix(api, "/")
		}
		return &http.Client{Transport: tr}, nil
	}

	token := strings.TrimSpace(a.Token)
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required; set GITHUB_TOKEN or GH_TOKEN, or configure a GitHub App")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return oauth2.NewClient(ctx, ts), nil
}

func (a Auth) appTransport() (*ghinstallation.Transport, error) {
	if a.InstallationID <= 0 {
		return nil, fmt.Errorf("GitHub App installation ID is required when app ID %d is set", a.AppID)
	}

	var (
		tr  *ghinstallation.Transport
		err error
	)
	switch {
	case strings.TrimSpace(a.PrivateKeyPath) != "":
		tr, err = ghinstallation.NewKeyFromFile(http.DefaultTransport, a.AppID, a.InstallationID, a.PrivateKeyPath)
	case strings.TrimSpace(a.PrivateKey) != "":
		tr, err = ghinstallation.New(http.DefaultTransport, a.AppID, a.InstallationID, []byte(a.PrivateKey))
	default:
		return nil, fmt.Errorf("no GitHub App private key configured")
	}
	if err != nil {
		return nil, fmt.Errorf("create GitHub App transport: %w", err)
	}
	return tr, nil
}
