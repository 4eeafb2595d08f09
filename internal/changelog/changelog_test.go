package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Status
	}{{
		name: "empty",
		text: "",
		want: StatusMissing,
	}, {
		name: "no header",
		text: "## Summary\nFixes a crash.\n\n## Test Plan\nRan it.",
		want: StatusMissing,
	}, {
		name: "heading with entry on next line",
		text: "## Summary\nx\n\n## Changelog:\n[General] [Fixed] - Crash on launch",
		want: StatusValid,
	}, {
		name: "inline entry",
		text: "Changelog: [iOS][Added] - New prop",
		want: StatusValid,
	}, {
		name: "case insensitive tags",
		text: "## changelog\n[ANDROID] [changed] - Bump",
		want: StatusValid,
	}, {
		name: "internal only",
		text: "## Changelog:\n[Internal] - refactor",
		want: StatusValid,
	}, {
		name: "internal after category",
		text: "## Changelog:\n[General] [Internal] - test only",
		want: StatusValid,
	}, {
		name: "skips html comments",
		text: "## Changelog:\n<!-- Help: https://example.com -->\n\n[General] [Security] - Patch",
		want: StatusValid,
	}, {
		name: "header without entry",
		text: "## Changelog:\n\n## Test Plan\nmanual",
		want: StatusMissing,
	}, {
		name: "header at end of body",
		text: "## Changelog:\n",
		want: StatusMissing,
	}, {
		name: "missing type",
		text: "## Changelog:\n[General] - Something",
		want: StatusInvalid,
	}, {
		name: "unknown category",
		text: "## Changelog:\n[Windows] [Fixed] - Something",
		want: StatusInvalid,
	}, {
		name: "free text entry",
		text: "## Changelog:\nFixed a bug",
		want: StatusInvalid,
	}, {
		name: "multi-line template comment",
		text: `## Summary:

Fixes a crash when FlatList unmounts during a scroll.

## Changelog:

<!-- Help reviewers and the release process by writing your own changelog entry.

Pick one each for the category and type tags:

[ANDROID|GENERAL|IOS|INTERNAL] [BREAKING|ADDED|CHANGED|DEPRECATED|REMOVED|FIXED|SECURITY] - Message

For more details, see:
https://reactnative.dev/contributing/changelogs-in-pull-requests
-->

[Android] [Fixed] - Fix crash in FlatList

## Test Plan:

Ran RNTester.`,
		want: StatusValid,
	}, {
		name: "prose starting with changelog before the section",
		text: "## Summary\nChangelog generation was skipping entries with trailing spaces.\n\n## Changelog:\n[General] [Fixed] - Keep entries",
		want: StatusValid,
	}, {
		name: "untagged entry before tagged one",
		text: "Changelog: see below\n\n## Changelog:\n[iOS] [Added] - New API",
		want: StatusValid,
	}, {
		name: "entry only inside comment",
		text: "## Changelog:\n<!--\n[General] [Fixed] - example\n-->\n\n## Test Plan\nmanual",
		want: StatusMissing,
	}, {
		name: "unterminated comment",
		text: "## Changelog:\n<!-- [General] [Fixed] - example",
		want: StatusMissing,
	}, {
		name: "prose without colon is not a header",
		text: "Changelog entries are generated later\n[General] [Fixed] - not a section",
		want: StatusMissing,
	}, {
		name: "word changelogs is not a header",
		text: "changelogs are generated later",
		want: StatusMissing,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.text))
			assert.Equal(t, tt.want, Default.Validate(tt.text))
		})
	}
}

func TestValidatorFunc(t *testing.T) {
	var got string
	v := ValidatorFunc(func(text string) Status {
		got = text
		return StatusInvalid
	})

	assert.Equal(t, StatusInvalid, v.Validate("body"))
	assert.Equal(t, "body", got)
}
