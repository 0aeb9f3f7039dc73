// Package review plans the comments the bot should leave on a pull request.
//
// A plan is computed from three inputs: the pull request's patches, the
// review comments the bot already posted, and a fresh set of analyzer
// findings. Findings are translated from file line numbers to diff positions,
// grouped, and reduced by the issues already on the thread, so running the
// bot twice over the same findings plans nothing the second time.
package review

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/quibble-bot/quibble/internal/comment"
	"github.com/quibble-bot/quibble/internal/diff"
	"github.com/quibble-bot/quibble/internal/githubapi"
)

// PullRequestFetcher supplies the pull request data a plan is computed from
type PullRequestFetcher interface {
	ListChangedFiles(ctx context.Context, owner string, repo string, number int) ([]githubapi.ChangedFile, error)
	ListReviewComments(ctx context.Context, owner string, repo string, number int) ([]comment.Record, error)
}

// PlannedComment is one comment the bot would post: the issues for a single
// diff position of a single file, rendered as a comment body.
type PlannedComment struct {
	Path     string   `json:"path"`
	Position int      `json:"position"`
	Issues   []string `json:"issues"`
	Body     string   `json:"body"`
}

// Plan is the outcome of reconciling findings against a pull request.
type Plan struct {
	Comments []PlannedComment `json:"comments"`

	// Unmapped counts findings on lines the diff does not add; they cannot be
	// anchored to the diff and are dropped.
	Unmapped int `json:"unmapped"`
	// Duplicates counts findings suppressed because an identical issue is
	// already posted at the same position.
	Duplicates int `json:"duplicates"`
	// SkippedFiles lists files whose patches failed to parse.
	SkippedFiles []string `json:"skipped_files,omitempty"`
}

// Planner computes review plans for pull requests
type Planner struct {
	pulls PullRequestFetcher
}

// NewPlanner creates a new Planner
func NewPlanner(pulls PullRequestFetcher) *Planner {
	return &Planner{
		pulls: pulls,
	}
}

// Plan fetches the pull request's diff and review threads and reconciles
// findings against them. Files with unparseable patches are skipped and
// recorded rather than failing the whole run.
func (p *Planner) Plan(ctx context.Context, owner string, repo string, number int, findings []Finding) (*Plan, error) {
	files, err := p.pulls.ListChangedFiles(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch changed files: %w", err)
	}

	comments, err := p.pulls.ListReviewComments(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch review comments: %w", err)
	}

	findingsByPath := map[string][]Finding{}
	for _, f := range findings {
		findingsByPath[f.Path] = append(findingsByPath[f.Path], f)
	}

	plan := &Plan{}
	for _, file := range files {
		fileFindings := findingsByPath[file.Path]
		if len(fileFindings) == 0 {
			continue
		}

		lineMap, err := diff.AddedLines(file.Patch)
		if err != nil {
			var parseErr *diff.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to map patch for %s: %w", file.Path, err)
			}
			log.Printf("Skipping %s: %v", file.Path, err)
			plan.SkippedFiles = append(plan.SkippedFiles, file.Path)
			continue
		}

		fresh := comment.IssueSet{}
		for _, f := range fileFindings {
			position, ok := lineMap[f.Line]
			if !ok {
				plan.Unmapped++
				continue
			}
			fresh[position] = append(fresh[position], f.Message)
		}

		existing := comment.IssuesByLine(comments, file.Path)
		delta := comment.Subtract(fresh, existing)
		plan.Duplicates += countIssues(fresh) - countIssues(delta)

		positions := make([]int, 0, len(delta))
		for position := range delta {
			positions = append(positions, position)
		}
		sort.Ints(positions)

		for _, position := range positions {
			issues := delta[position]
			plan.Comments = append(plan.Comments, PlannedComment{
				Path:     file.Path,
				Position: position,
				Issues:   issues,
				Body:     comment.FormatBody(issues),
			})
		}
	}

	return plan, nil
}

func countIssues(s comment.IssueSet) int {
	n := 0
	for _, issues := range s {
		n += len(issues)
	}
	return n
}
