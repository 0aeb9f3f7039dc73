// Package githubapi fetches the pull request data the review core consumes.
package githubapi

import (
	"context"
	"fmt"

	"github.com/google/go-github/v72/github"
	"github.com/quibble-bot/quibble/internal/comment"
)

// ChangedFile is one file touched by a pull request, with its patch text.
type ChangedFile struct {
	Path  string
	Patch string
}

// PullRequestService wraps the parts of the GitHub API that describe a pull
// request's diff and its review threads.
type PullRequestService struct {
	client *github.Client
}

// NewPullRequestService creates a new PullRequestService
func NewPullRequestService(client *github.Client) *PullRequestService {
	return &PullRequestService{
		client: client,
	}
}

// ListChangedFiles returns the files changed by a pull request. Files without
// patch text (binary files, pure renames) are omitted since there is no diff
// to anchor comments to.
func (prs *PullRequestService) ListChangedFiles(ctx context.Context, owner string, repo string, number int) ([]ChangedFile, error) {
	opts := &github.ListOptions{PerPage: 100}

	var files []ChangedFile
	for {
		page, resp, err := prs.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull request files: %w", err)
		}
		for _, f := range page {
			if f.GetPatch() == "" {
				continue
			}
			files = append(files, ChangedFile{
				Path:  f.GetFilename(),
				Patch: f.GetPatch(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return files, nil
}

// ListReviewComments returns the pull request's review comments as records
// for reconciliation. Comments whose diff anchor is outdated carry no
// position and are omitted.
func (prs *PullRequestService) ListReviewComments(ctx context.Context, owner string, repo string, number int) ([]comment.Record, error) {
	opts := &github.PullRequestListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var records []comment.Record
	for {
		page, resp, err := prs.client.PullRequests.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull request comments: %w", err)
		}
		for _, c := range page {
			if rec, ok := recordFromComment(c); ok {
				records = append(records, rec)
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return records, nil
}

func recordFromComment(c *github.PullRequestComment) (comment.Record, bool) {
	if c.Position == nil {
		return comment.Record{}, false
	}
	return comment.Record{
		Path:     c.GetPath(),
		Position: c.GetPosition(),
		Body:     c.GetBody(),
	}, true
}
