// Package prcomment keeps a single marked bot comment on a pull request in sync
// with what a workflow has to report.
package prcomment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/codex-k8s/prbot/internal/githubapi"
)

const (
	// DefaultMarker identifies the tracked comment. It is invisible in rendered markdown.
	DefaultMarker = "<!-- prbot -->"
	// DefaultHeading is the first visible line of the tracked comment.
	DefaultHeading = "## PR Validation"

	sectionSeparator = "\n\n"
)

// CommentClient is the subset of the GitHub issue comments API the reconciler uses.
type CommentClient interface {
	ListIssueComments(ctx context.Context, owner, repo string, number int) ([]githubapi.IssueComment, error)
	CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) (githubapi.IssueComment, error)
	UpdateIssueComment(ctx context.Context, owner, repo string, commentID int64, body string) (githubapi.IssueComment, error)
	DeleteIssueComment(ctx context.Context, owner, repo string, commentID int64) error
}

// Action is the mutation performed by a reconcile pass.
type Action string

const (
	ActionNone    Action = "none"
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Outcome describes what Reconcile did.
type Outcome struct {
	Action Action
	// CommentID is the tracked comment touched by Action, zero for ActionNone.
	CommentID int64
	// Body is the body written for ActionCreated and ActionUpdated.
	Body string
}

// Options customizes the tracked comment. Empty fields use the defaults.
type Options struct {
	Marker  string
	Heading string
}

// Reconciler creates, updates or deletes the tracked comment.
type Reconciler struct {
	client  CommentClient
	logger  *slog.Logger
	marker  string
	heading string
}

// NewReconciler constructs a Reconciler.
func NewReconciler(client CommentClient, logger *slog.Logger, opts Options) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reconciler{
		client:  client,
		logger:  logger,
		marker:  strings.TrimSpace(opts.Marker),
		heading: strings.TrimSpace(opts.Heading),
	}
	if r.marker == "" {
		r.marker = DefaultMarker
	}
	if r.heading == "" {
		r.heading = DefaultHeading
	}
	return r
}

// Reconcile makes the pull request carry exactly the given sections in its tracked
// comment, or no tracked comment when no section is left after filtering blanks.
// It lists comments first and performs at most one mutation.
func (r *Reconciler) Reconcile(ctx context.Context, ref githubapi.RepoRef, number int, sections []string) (Outcome, error) {
	kept := FilterSections(sections)

	comments, err := r.client.ListIssueComments(ctx, ref.Owner, ref.Name, number)
	if err != nil {
		return Outcome{}, err
	}
	existing, found := FindTracked(comments, r.marker)

	if len(kept) == 0 {
		r.logger.Info("no issues to report", "repo", ref.String(), "pr", number)
		if !found {
			return Outcome{Action: ActionNone}, nil
		}
		r.logger.Info("deleting existing comment", "comment_id", existing.ID)
		if err := r.client.DeleteIssueComment(ctx, ref.Owner, ref.Name, existing.ID); err != nil {
			return Outcome{}, err
		}
		return Outcome{Action: ActionDeleted, CommentID: existing.ID}, nil
	}

	body := r.Body(kept)
	if found {
		r.logger.Info("updating existing comment", "comment_id", existing.ID, "sections", len(kept))
		if _, err := r.client.UpdateIssueComment(ctx, ref.Owner, ref.Name, existing.ID, body); err != nil {
			return Outcome{}, err
		}
		return Outcome{Action: ActionUpdated, CommentID: existing.ID, Body: body}, nil
	}

	r.logger.Info("creating new comment", "repo", ref.String(), "pr", number, "sections", len(kept))
	created, err := r.client.CreateIssueComment(ctx, ref.Owner, ref.Name, number, body)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Action: ActionCreated, CommentID: created.ID, Body: body}, nil
}

// Body renders the tracked comment for already filtered sections.
func (r *Reconciler) Body(sections []string) string {
	return fmt.Sprintf("%s\n%s\n\n%s", r.marker, r.heading, strings.Join(sections, sectionSeparator))
}

// FilterSections drops blank sections and trims the rest, preserving order.
func FilterSections(sections []string) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FindTracked returns the first comment whose body contains marker.
func FindTracked(comments []githubapi.IssueComment, marker string) (githubapi.IssueComment, bool) {
	for _, c := range comments {
		if strings.Contains(c.Body, marker) {
			return c, true
		}
	}
	return githubapi.IssueComment{}, false
}
