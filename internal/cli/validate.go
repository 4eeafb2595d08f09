package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/prbot/internal/ghoutput"
	"github.com/codex-k8s/prbot/internal/logging"
	"github.com/codex-k8s/prbot/internal/prbody"
)

// bodyFlags selects where the pull request description comes from.
type bodyFlags struct {
	body     string
	bodyFile string
	fetch    bool
	noFail   bool
}

func addBodyFlags(cmd *cobra.Command, b *bodyFlags) {
	cmd.Flags().StringVar(&b.body, "body", "", "Pull request description to validate (defaults to PRBOT_PR_BODY)")
	cmd.Flags().StringVar(&b.bodyFile, "body-file", "", "Read the description from a file, - for stdin")
	cmd.Flags().BoolVar(&b.fetch, "fetch", false, "Fetch the current description from GitHub instead of the event payload")
	cmd.Flags().BoolVar(&b.noFail, "no-fail", false, "Exit 0 even when validation fails (defaults to PRBOT_NO_FAIL)")
	cmd.MarkFlagsMutuallyExclusive("body", "body-file", "fetch")
}

// newValidateCommand creates "validate" that checks a pull request description.
func newValidateCommand(opts *Options) *cobra.Command {
	var (
		body   bodyFlags
		target targetFlags
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a pull request description (summary, test plan, changelog)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := opts.runValidation(cmd, body, target)
			if err != nil {
				return err
			}
			return opts.failOn(cmd, report, body)
		},
	}

	addBodyFlags(cmd, &body)
	addTargetFlags(cmd, &target)

	return cmd
}

// runValidation resolves the description, validates it, prints the message and
// writes the result outputs.
func (o *Options) runValidation(cmd *cobra.Command, b bodyFlags, t targetFlags) (prbody.Report, error) {
	logger := logging.FromContext(cmd.Context())

	text, source, err := o.resolveBody(cmd, b, t)
	if err != nil {
		return prbody.Report{}, err
	}
	logger.Debug("pull request description resolved", "source", source, "chars", len(text))

	report := o.config.BodyValidator().Validate(text)
	logger.Info("pull request description validated", "result", report.Result, "blocks", len(report.Blocks))

	if report.Message != "" {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), report.Message); err != nil {
			return prbody.Report{}, err
		}
	}

	if err := ghoutput.Write(map[string]string{
		"result":  string(report.Result),
		"message": report.Message,
	}); err != nil {
		return prbody.Report{}, err
	}
	if err := ghoutput.WriteSummary(o.summary(report)); err != nil {
		return prbody.Report{}, err
	}
	return report, nil
}

// resolveBody returns the description and where it came from.
func (o *Options) resolveBody(cmd *cobra.Command, b bodyFlags, t targetFlags) (string, string, error) {
	switch {
	case cmd.Flags().Changed("body"):
		return b.body, "flag", nil
	case strings.TrimSpace(b.bodyFile) != "":
		text, err := readBodyFile(cmd, b.bodyFile)
		return text, "file", err
	case b.fetch:
		target, err := o.resolveTarget(cmd, t)
		if err != nil {
			return "", "", err
		}
		client, err := o.githubClient(cmd.Context())
		if err != nil {
			return "", "", err
		}
		text, err := client.FetchPullRequestBody(cmd.Context(), target.Repo.Owner, target.Repo.Name, target.Number)
		return text, "graphql", err
	case o.vars.Has("PRBOT_PR_BODY"):
		return o.settings.Body, "env", nil
	}

	ev, err := o.loadEvent()
	if err != nil {
		return "", "", err
	}
	if ev == nil {
		return "", "", errors.New("no pull request description: pass --body, --body-file or --fetch, or run on a pull_request event")
	}
	return ev.Body, "event", nil
}

func readBodyFile(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read description from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read description: %w", err)
	}
	return string(data), nil
}

// summary renders the job summary for report.
func (o *Options) summary(report prbody.Report) string {
	text := report.Message
	if text == "" {
		text = "All pull request description checks passed."
	}
	return fmt.Sprintf("%s\n\n**Result:** %s\n\n%s", o.config.Comment.Heading, report.Result, text)
}

// failOn turns a failed report into ErrValidationFailed unless failures are tolerated.
func (o *Options) failOn(cmd *cobra.Command, report prbody.Report, b bodyFlags) error {
	if report.Passed() {
		return nil
	}
	noFail := b.noFail
	if !cmd.Flags().Changed("no-fail") && o.vars.Present("PRBOT_NO_FAIL") {
		noFail = o.settings.NoFail
	}
	if noFail {
		logging.FromContext(cmd.Context()).Warn("validation failed, continuing because of --no-fail")
		return nil
	}
	fatal := 0
	for _, blk := range report.Blocks {
		if blk.Fatal() {
			fatal++
		}
	}
	return fmt.Errorf("%w: %d blocking issue(s)", ErrValidationFailed, fatal)
}
