package githubapi

import (
	"testing"

	"github.com/google/go-github/v72/github"
	"github.com/quibble-bot/quibble/internal/comment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFromComment(t *testing.T) {
	c := &github.PullRequestComment{
		Path:     github.Ptr("internal/server.go"),
		Position: github.Ptr(7),
		Body:     github.Ptr("looks racy"),
	}

	rec, ok := recordFromComment(c)
	require.True(t, ok)
	assert.Equal(t, comment.Record{
		Path:     "internal/server.go",
		Position: 7,
		Body:     "looks racy",
	}, rec)
}

func TestRecordFromComment_OutdatedAnchor(t *testing.T) {
	// Comments on outdated diffs come back with a nil position; they cannot
	// be reconciled against the current diff
	c := &github.PullRequestComment{
		Path: github.Ptr("internal/server.go"),
		Body: github.Ptr("old comment"),
	}

	_, ok := recordFromComment(c)
	assert.False(t, ok)
}
