package githubapi

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/go-github/v84/github"
)

// PullRequestEvent is the subset of a pull_request workflow event prbot needs.
type PullRequestEvent struct {
	Number int
	Body   string
	Repo   RepoRef
}

// LoadPullRequestEvent reads the webhook payload GitHub Actions stores at GITHUB_EVENT_PATH.
func LoadPullRequestEvent(path string) (PullRequestEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PullRequestEvent{}, fmt.Errorf("read event payload: %w", err)
	}

	var ev github.PullRequestEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return PullRequestEvent{}, fmt.Errorf("decode event payload %s: %w", path, err)
	}

	number := ev.GetNumber()
	if number == 0 {
		number = ev.GetPullRequest().GetNumber()
	}
	if number == 0 {
		return PullRequestEvent{}, fmt.Errorf("event payload %s has no pull request", path)
	}

	return PullRequestEvent{
		Number: number,
		Body:   ev.GetPullRequest().GetBody(),
		Repo: RepoRef{
			Owner: ev.GetRepo().GetOwner().GetLogin(),
			Name:  ev.GetRepo().GetName(),
		},
	}, nil
}
