// Package comment classifies, extracts, and reconciles the review comments
// the bot leaves on pull requests.
package comment

import (
	"slices"
	"strings"
)

// markerVersion is the version of the comment format, not of the program.
// Bumping it changes the marker on new comments while older comments stay
// recognizable via botPrefix.
const markerVersion = "0.4"

// StartMarker is the first line of every comment the bot posts.
const StartMarker = "_posted by [quibble](https://github.com/quibble-bot/quibble) v" + markerVersion + "_"

// botPrefix is everything in StartMarker up to the version number. A prefix
// match identifies bot comments from any marker version, so the text before
// the version must never change.
var botPrefix = StartMarker[:strings.Index(StartMarker, "v")]

// Record is the slice of a pull request review comment that reconciliation
// needs. Records come from the review-thread fetcher and are never modified.
type Record struct {
	Path     string
	Position int
	Body     string
}

// IssueSet maps diff positions to the issues reported at each position, in
// the order they were scanned.
type IssueSet map[int][]string

// IsBotComment reports whether text was generated by the bot.
func IsBotComment(text string) bool {
	return strings.HasPrefix(text, botPrefix)
}

// ExtractIssues returns the issues recorded in a bot comment body, one per
// bullet line. Non-bot text yields nil. The first line (the marker) is
// dropped and every remaining line loses exactly its first two bytes, the
// "- " bullet. The blind two-byte strip is a compatibility contract with
// already-posted comment bodies; a bullet-aware parse would not round-trip
// them identically.
func ExtractIssues(text string) []string {
	if !IsBotComment(text) {
		return nil
	}
	lines := strings.Split(text, "\n")[1:]
	if len(lines) == 0 {
		return nil
	}
	issues := make([]string, len(lines))
	for i, line := range lines {
		if len(line) < 2 {
			continue
		}
		issues[i] = line[2:]
	}
	return issues
}

// FormatBody renders issues as a comment body that ExtractIssues reads back
// verbatim.
func FormatBody(issues []string) string {
	var b strings.Builder
	b.WriteString(StartMarker)
	for _, issue := range issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// IssuesByLine collects the bot-reported issues for path, grouped by diff
// position. Comments on other paths, comments not written by the bot, and
// bodies that extract to nothing are skipped.
func IssuesByLine(comments []Record, path string) IssueSet {
	byLine := IssueSet{}
	for _, c := range comments {
		if c.Path != path {
			continue
		}
		if issues := ExtractIssues(c.Body); len(issues) > 0 {
			byLine[c.Position] = append(byLine[c.Position], issues...)
		}
	}
	return byLine
}

// Subtract returns the issues in a that are not already present in b at the
// same position, preserving a's order. Positions whose issues all appear in b
// are omitted; positions present only in b are ignored.
func Subtract(a, b IssueSet) IssueSet {
	result := IssueSet{}
	for position, issues := range a {
		exclude := b[position]
		var filtered []string
		for _, issue := range issues {
			if !slices.Contains(exclude, issue) {
				filtered = append(filtered, issue)
			}
		}
		if len(filtered) > 0 {
			result[position] = filtered
		}
	}
	return result
}
