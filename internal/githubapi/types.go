package githubapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v84/github"
	"github.com/shurcooL/githubv4"
)

// RepoRef identifies a repository by owner and name.
type RepoRef struct {
	Owner string
	Name  string
}

// ParseRepo parses an owner/repo slug.
func ParseRepo(slug string) (RepoRef, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return RepoRef{}, fmt.Errorf("repository is empty")
	}
	parts := strings.Split(slug, "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return RepoRef{}, fmt.Errorf("invalid repository slug %q, expected owner/repo", slug)
	}
	return RepoRef{Owner: strings.TrimSpace(parts[0]), Name: strings.TrimSpace(parts[1])}, nil
}

// String returns the owner/repo slug.
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// IsZero reports whether neither owner nor name is set.
func (r RepoRef) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}

// IssueComment is a conversation comment on an issue or pull request.
type IssueComment struct {
	// ID is the GitHub comment database ID.
	ID int64
	// Author is the GitHub login of the comment author.
	Author string
	// URL is the canonical URL of the comment.
	URL string
	// Body is the raw markdown body of the comment.
	Body string
	// CreatedAt is when the comment was created.
	CreatedAt time.Time
}

func issueCommentFromREST(c *github.IssueComment) IssueComment {
	return IssueComment{
		ID:        c.GetID(),
		Author:    strings.TrimSpace(c.GetUser().GetLogin()),
		URL:       strings.TrimSpace(c.GetHTMLURL()),
		Body:      c.GetBody(),
		CreatedAt: c.GetCreatedAt().Time,
	}
}

type pullRequestBodyQuery struct {
	Repository struct {
		PullRequest struct {
			Body githubv4.String
		} `graphql:"pullRequest(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}
