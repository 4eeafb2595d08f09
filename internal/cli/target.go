package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/prbot/internal/githubapi"
	"github.com/codex-k8s/prbot/internal/logging"
)

// targetFlags selects the pull request a command works on.
type targetFlags struct {
	repo     string
	prNumber int
}

func addTargetFlags(cmd *cobra.Command, t *targetFlags) {
	cmd.Flags().StringVar(&t.repo, "repo", "", "Repository as owner/name (defaults to GITHUB_REPOSITORY)")
	cmd.Flags().IntVar(&t.prNumber, "pr", 0, "Pull request number (defaults to PRBOT_PR_NUMBER or the event payload)")
}

// prTarget is a resolved pull request.
type prTarget struct {
	Repo   githubapi.RepoRef
	Number int
}

// resolveTarget picks the repository and pull request number: flag, then
// environment, then event payload.
func (o *Options) resolveTarget(cmd *cobra.Command, t targetFlags) (prTarget, error) {
	slug := strings.TrimSpace(t.repo)
	if !cmd.Flags().Changed("repo") || slug == "" {
		slug = strings.TrimSpace(o.settings.Repository)
	}
	number := t.prNumber
	if !cmd.Flags().Changed("pr") {
		number = o.settings.PRNumber
	}

	if slug == "" || number <= 0 {
		ev, err := o.loadEvent()
		if err != nil {
			return prTarget{}, err
		}
		if ev != nil {
			if slug == "" && !ev.Repo.IsZero() {
				slug = ev.Repo.String()
			}
			if number <= 0 {
				number = ev.Number
			}
		}
	}

	if slug == "" {
		return prTarget{}, errors.New("repository is required: pass --repo or set GITHUB_REPOSITORY")
	}
	repo, err := githubapi.ParseRepo(slug)
	if err != nil {
		return prTarget{}, err
	}
	if number <= 0 {
		return prTarget{}, errors.New("pull request number is required: pass --pr, set PRBOT_PR_NUMBER or run on a pull_request event")
	}
	return prTarget{Repo: repo, Number: number}, nil
}

// loadEvent reads GITHUB_EVENT_PATH once. It returns nil when no payload is configured.
func (o *Options) loadEvent() (*githubapi.PullRequestEvent, error) {
	if o.event != nil {
		return o.event, nil
	}
	path := strings.TrimSpace(o.settings.EventPath)
	if path == "" {
		return nil, nil
	}
	ev, err := githubapi.LoadPullRequestEvent(path)
	if err != nil {
		return nil, err
	}
	o.event = &ev
	return o.event, nil
}

// githubClient builds the GitHub client once per invocation.
func (o *Options) githubClient(ctx context.Context) (*githubapi.Client, error) {
	if o.client != nil {
		return o.client, nil
	}
	client, err := githubapi.NewClient(ctx, logging.FromContext(ctx), o.settings.auth(), o.settings.endpoints())
	if err != nil {
		return nil, fmt.Errorf("create GitHub client: %w", err)
	}
	o.client = client
	return client, nil
}
