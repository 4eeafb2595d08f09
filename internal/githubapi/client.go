// Package githubapi wraps the GitHub REST and GraphQL APIs used by prbot.
package githubapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/go-github/v84/github"
	"github.com/shurcooL/githubv4"
)

const commentsPerPage = 100

// Endpoints overrides the public GitHub API endpoints, e.g. for GitHub Enterprise Server.
type Endpoints struct {
	// APIURL is the REST base URL (GITHUB_API_URL).
	APIURL string
	// GraphQLURL is the GraphQL endpoint (GITHUB_GRAPHQL_URL).
	GraphQLURL string
}

// Client talks to GitHub on behalf of prbot.
type Client struct {
	logger  *slog.Logger
	rest    *github.Client
	graphql *githubv4.Client
}

// NewClient builds an authenticated Client.
func NewClient(ctx context.Context, logger *slog.Logger, auth Auth, endpoints Endpoints) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	httpClient, err := auth.HTTPClient(ctx, endpoints.APIURL)
	if err != nil {
		return nil, err
	}

	rest := github.NewClient(httpClient)
	if api := strings.TrimSpace(endpoints.APIURL); api != "" {
		base, err := url.Parse(strings.TrimSuffix(api, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", api, err)
		}
		rest.BaseURL = base
	}

	gql := githubv4.NewClient(httpClient)
	if endpoint := strings.TrimSpace(endpoints.GraphQLURL); endpoint != "" {
		gql = githubv4.NewEnterpriseClient(endpoint, httpClient)
	}

	return &Client{
		logger:  logger,
		rest:    rest,
		graphql: gql,
	}, nil
}

// ListIssueComments returns every conversation comment on an issue or pull request, oldest first.
func (c *Client) ListIssueComments(ctx context.Context, owner, repo string, number int) ([]IssueComment, error) {
	if number <= 0 {
		return nil, fmt.Errorf("issue number must be positive")
	}

	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: commentsPerPage},
	}
	var out []IssueComment
	for {
		page, resp, err := c.rest.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("list comments on %s/%s#%d: %w", owner, repo, number, err)
		}
		for _, comment := range page {
			out = append(out, issueCommentFromREST(comment))
		}
		c.logger.Debug("listed issue comments page", "repo", owner+"/"+repo, "number", number, "page", opts.Page, "count", len(page))
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// CreateIssueComment posts a new comment on an issue or pull request.
func (c *Client) CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) (IssueComment, error) {
	created, _, err := c.rest.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return IssueComment{}, fmt.Errorf("create comment on %s/%s#%d: %w", owner, repo, number, err)
	}
	return issueCommentFromREST(created), nil
}

// UpdateIssueComment replaces the body of an existing comment.
func (c *Client) UpdateIssueComment(ctx context.Context, owner, repo string, commentID int64, body string) (IssueComment, error) {
	updated, _, err := c.rest.Issues.EditComment(ctx, owner, repo, commentID, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return IssueComment{}, fmt.Errorf("update comment %d in %s/%s: %w", commentID, owner, repo, err)
	}
	return issueCommentFromREST(updated), nil
}

// DeleteIssueComment removes a comment.
func (c *Client) DeleteIssueComment(ctx context.Context, owner, repo string, commentID int64) error {
	if _, err := c.rest.Issues.DeleteComment(ctx, owner, repo, commentID); err != nil {
		return fmt.Errorf("delete comment %d in %s/%s: %w", commentID, owner, repo, err)
	}
	return nil
}

// FetchPullRequestBody reads the current description of a pull request.
func (c *Client) FetchPullRequestBody(ctx context.Context, owner, repo string, number int) (string, error) {
	if number <= 0 {
		return "", fmt.Errorf("pr number must be positive")
	}
	var q pullRequestBodyQuery
	vars := map[string]any{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(repo),
		"number": githubv4.Int(number),
	}
	c.logger.Debug("github graphql query", "repo", owner+"/"+repo, "number", number)
	if err := c.graphql.Query(ctx, &q, vars); err != nil {
		return "", fmt.Errorf("fetch body of %s/%s#%d: %w", owner, repo, number, err)
	}
	return string(q.Repository.PullRequest.Body), nil
}
