// Package prbody checks a pull request description for the sections reviewers expect.
package prbody

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/codex-k8s/prbot/internal/changelog"
)

// Result is the overall verdict of a validation run.
type Result string

const (
	// ResultPass means no fatal block was emitted.
	ResultPass Result = "PASS"
	// ResultFail means at least one fatal block was emitted.
	ResultFail Result = "FAIL"
)

// Severity distinguishes advisory blocks from fatal ones.
type Severity string

const (
	// SeverityWarning is a non-fatal block.
	SeverityWarning Severity = "WARNING"
	// SeverityCaution is a fatal block that fails validation.
	SeverityCaution Severity = "CAUTION"
)

// Block is one message emitted by a check.
type Block struct {
	Severity Severity
	Title    string
	Text     string
}

// Markdown renders the block as a GitHub alert quote.
func (b Block) Markdown() string {
	return fmt.Sprintf("> [!%s]\n> **%s**\n>\n> %s", b.Severity, b.Title, b.Text)
}

// Fatal reports whether the block fails validation.
func (b Block) Fatal() bool {
	return b.Severity == SeverityCaution
}

// Report is the outcome of Validate.
type Report struct {
	// Message is every block rendered and joined by a blank line.
	Message string
	// Result is ResultFail iff any block is fatal.
	Result Result
	// Blocks lists emitted blocks in check order.
	Blocks []Block
}

// Passed reports whether the report carries ResultPass.
func (r Report) Passed() bool {
	return r.Result == ResultPass
}

// Options tunes the checks. Zero fields fall back to DefaultOptions.
type Options struct {
	// MinLength is the minimum description length in UTF-16 code units, the way
	// GitHub and JavaScript count string length. Characters outside the Basic
	// Multilingual Plane, such as most emoji, count as two.
	MinLength int
	// ExternalMarker marks bodies generated by an external review tool.
	ExternalMarker string
	// SummaryMarkers are the accepted summary heading/label forms.
	SummaryMarkers []string
	// TestPlanMarkers are the accepted test plan heading/label forms.
	TestPlanMarkers []string
	// ChangelogDocsURL is linked from changelog failures.
	ChangelogDocsURL string
}

// DefaultOptions returns the built-in checks configuration.
func DefaultOptions() Options {
	return Options{
		MinLength:        50,
		ExternalMarker:   "differential revision:",
		SummaryMarkers:   []string{"## summary", "summary:"},
		TestPlanMarkers:  []string{"## test plan", "test plan:", "tests:", "test:"},
		ChangelogDocsURL: "https://reactnative.dev/contributing/changelogs-in-pull-requests",
	}
}

const (
	titleMissingDescription = "Missing Description"
	titleMissingSummary     = "Missing Summary"
	titleMissingTestPlan    = "Missing Test Plan"
	titleMissingChangelog   = "Missing Changelog"
	titleInvalidChangelog   = "Invalid Changelog Format"

	textMissingDescription = "This pull request needs a description."
	textMissingSummary     = `Can you add a Summary? To do so, add a "## Summary" section to your PR description. This is a good place to explain the motivation for making this change.`
	textMissingTestPlan    = `Can you add a Test Plan? To do so, add a "## Test Plan" section to your PR description. A Test Plan lets us know how these changes were tested.`

	maxLinesWithoutSummary = 2
)

// Validator runs the description checks.
type Validator struct {
	opts      Options
	changelog changelog.Validator
}

// NewValidator builds a Validator. A nil changelog validator uses changelog.Default.
func NewValidator(opts Options, cl changelog.Validator) *Validator {
	def := DefaultOptions()
	if opts.MinLength <= 0 {
		opts.MinLength = def.MinLength
	}
	if strings.TrimSpace(opts.ExternalMarker) == "" {
		opts.ExternalMarker = def.ExternalMarker
	}
	if len(opts.SummaryMarkers) == 0 {
		opts.SummaryMarkers = def.SummaryMarkers
	}
	if len(opts.TestPlanMarkers) == 0 {
		opts.TestPlanMarkers = def.TestPlanMarkers
	}
	if strings.TrimSpace(opts.ChangelogDocsURL) == "" {
		opts.ChangelogDocsURL = def.ChangelogDocsURL
	}
	if cl == nil {
		cl = changelog.Default
	}
	return &Validator{opts: opts, changelog: cl}
}

// Validate runs every check against body. Checks never short-circuit each other.
func (v *Validator) Validate(body string) Report {
	lower := strings.ToLower(body)
	external := containsAny(lower, []string{v.opts.ExternalMarker})

	var blocks []Block

	if body == "" || utf16Len(body) < v.opts.MinLength {
		blocks = append(blocks, Block{SeverityCaution, titleMissingDescription, textMissingDescription})
	} else if !external &&
		!containsAny(lower, v.opts.SummaryMarkers) &&
		len(strings.Split(body, "\n")) <= maxLinesWithoutSummary {
		blocks = append(blocks, Block{SeverityWarning, titleMissingSummary, textMissingSummary})
	}

	if !external && !containsAny(lower, v.opts.TestPlanMarkers) {
		blocks = append(blocks, Block{SeverityWarning, titleMissingTestPlan, textMissingTestPlan})
	}

	if !external {
		switch v.changelog.Validate(body) {
		case changelog.StatusMissing:
			blocks = append(blocks, Block{SeverityCaution, titleMissingChangelog,
				fmt.Sprintf("Please add a Changelog to your PR description. See [Changelog format](%s)", v.opts.ChangelogDocsURL)})
		case changelog.StatusInvalid:
			blocks = append(blocks, Block{SeverityCaution, titleInvalidChangelog,
				fmt.Sprintf("Please verify your Changelog format. See [Changelog format](%s)", v.opts.ChangelogDocsURL)})
		}
	}

	return newReport(blocks)
}

// Validate checks body with DefaultOptions and the default changelog validator.
func Validate(body string) Report {
	return NewValidator(DefaultOptions(), nil).Validate(body)
}

func newReport(blocks []Block) Report {
	rep := Report{Result: ResultPass, Blocks: blocks}
	rendered := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Fatal() {
			rep.Result = ResultFail
		}
		rendered = append(rendered, b.Markdown())
	}
	rep.Message = strings.Join(rendered, "\n\n")
	return rep
}

func containsAny(lower string, markers []string) bool {
	for _, m := range markers {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" && strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
