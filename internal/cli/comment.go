package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/prbot/internal/ghoutput"
	"github.com/codex-k8s/prbot/internal/logging"
	"github.com/codex-k8s/prbot/internal/prcomment"
)

// newCommentCommand creates "comment" that creates, updates or deletes the tracked comment.
func newCommentCommand(opts *Options) *cobra.Command {
	var (
		messages   []string
		scratchDir string
		target     targetFlags
	)

	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Reconcile the tracked pull request comment with the given messages",
		Long:  "comment keeps exactly one marked bot comment on the pull request. Non-empty messages (or the results file in --scratch-dir) replace its content; with nothing to report the comment is deleted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var src prcomment.Source = prcomment.Messages(messages)
			if dir := opts.scratchDir(cmd, scratchDir); dir != "" && !cmd.Flags().Changed("message") {
				src = opts.config.ResultsFile(dir)
			}

			sections, err := prcomment.Collect(src)
			if err != nil {
				return err
			}
			_, err = opts.reconcile(cmd, target, sections)
			return err
		},
	}

	cmd.Flags().StringArrayVarP(&messages, "message", "m", nil, "Message to include as a comment section (repeatable)")
	cmd.Flags().StringVar(&scratchDir, "scratch-dir", "", "Directory holding the results file (defaults to PRBOT_SCRATCH_DIR)")
	cmd.MarkFlagsMutuallyExclusive("message", "scratch-dir")
	addTargetFlags(cmd, &target)

	return cmd
}

// scratchDir returns the results directory from the flag or PRBOT_SCRATCH_DIR.
func (o *Options) scratchDir(cmd *cobra.Command, flagValue string) string {
	if cmd.Flags().Changed("scratch-dir") {
		return strings.TrimSpace(flagValue)
	}
	return strings.TrimSpace(o.settings.ScratchDir)
}

// reconcile publishes sections to the tracked comment and writes the comment outputs.
func (o *Options) reconcile(cmd *cobra.Command, t targetFlags, sections []string) (prcomment.Outcome, error) {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	target, err := o.resolveTarget(cmd, t)
	if err != nil {
		return prcomment.Outcome{}, err
	}
	client, err := o.githubClient(ctx)
	if err != nil {
		return prcomment.Outcome{}, err
	}

	reconciler := prcomment.NewReconciler(client, logger, o.config.CommentOptions())
	outcome, err := reconciler.Reconcile(ctx, target.Repo, target.Number, sections)
	if err != nil {
		return prcomment.Outcome{}, err
	}
	logger.Info("comment reconciled",
		"repo", target.Repo.String(),
		"pr", target.Number,
		"action", outcome.Action,
		"comment_id", outcome.CommentID,
	)

	commentID := ""
	if outcome.CommentID != 0 {
		commentID = strconv.FormatInt(outcome.CommentID, 10)
	}
	if err := ghoutput.Write(map[string]string{
		"comment_action": string(outcome.Action),
		"comment_id":     commentID,
	}); err != nil {
		return prcomment.Outcome{}, err
	}
	return outcome, nil
}
