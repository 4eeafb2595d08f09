package cli

import (
	"github.com/spf13/cobra"

	"github.com/codex-k8s/prbot/internal/prcomment"
)

// newCheckCommand creates "check" that validates the description and reports
// the result in the tracked comment.
func newCheckCommand(opts *Options) *cobra.Command {
	var (
		body       bodyFlags
		target     targetFlags
		scratchDir string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the pull request description and reconcile the tracked comment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := opts.runValidation(cmd, body, target)
			if err != nil {
				return err
			}

			sections := []string{report.Message}
			if dir := opts.scratchDir(cmd, scratchDir); dir != "" {
				results, err := prcomment.Collect(opts.config.ResultsFile(dir))
				if err != nil {
					return err
				}
				sections = append(sections, results...)
			}

			if _, err := opts.reconcile(cmd, target, sections); err != nil {
				return err
			}
			return opts.failOn(cmd, report, body)
		},
	}

	addBodyFlags(cmd, &body)
	addTargetFlags(cmd, &target)
	cmd.Flags().StringVar(&scratchDir, "scratch-dir", "", "Directory holding the results file (defaults to PRBOT_SCRATCH_DIR)")

	return cmd
}
