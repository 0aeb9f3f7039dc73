package review

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/quibble-bot/quibble/internal/comment"
	"github.com/quibble-bot/quibble/internal/githubapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePullRequest struct {
	files    []githubapi.ChangedFile
	comments []comment.Record

	filesErr    error
	commentsErr error
}

func (f *fakePullRequest) ListChangedFiles(_ context.Context, _ string, _ string, _ int) ([]githubapi.ChangedFile, error) {
	return f.files, f.filesErr
}

func (f *fakePullRequest) ListReviewComments(_ context.Context, _ string, _ string, _ int) ([]comment.Record, error) {
	return f.comments, f.commentsErr
}

// singleFilePatch adds lines 2 and 4:
//
//	@@ -1,3 +1,5 @@   position 0
//	 a                position 1, line 1
//	+b                position 2, line 2
//	 c                position 3, line 3
//	+d                position 4, line 4
//	 e                position 5, line 5
const singleFilePatch = "@@ -1,3 +1,5 @@\n a\n+b\n c\n+d\n e"

func TestPlan_NewFindings(t *testing.T) {
	fake := &fakePullRequest{
		files: []githubapi.ChangedFile{{Path: "pkg/server.go", Patch: singleFilePatch}},
	}
	findings := []Finding{
		{Path: "pkg/server.go", Line: 2, Message: "unchecked error"},
		{Path: "pkg/server.go", Line: 4, Message: "unused variable"},
	}

	plan, err := NewPlanner(fake).Plan(context.Background(), "octo", "repo", 1, findings)
	require.NoError(t, err)

	require.Len(t, plan.Comments, 2)
	assert.Equal(t, "pkg/server.go", plan.Comments[0].Path)
	assert.Equal(t, 2, plan.Comments[0].Position)
	assert.Equal(t, []string{"unchecked error"}, plan.Comments[0].Issues)
	assert.Equal(t, 4, plan.Comments[1].Position)
	assert.Equal(t, []string{"unused variable"}, plan.Comments[1].Issues)
	assert.Zero(t, plan.Duplicates)
	assert.Zero(t, plan.Unmapped)
}

func TestPlan_RenderedBodyRoundTrips(t *testing.T) {
	fake := &fakePullRequest{
		files: []githubapi.ChangedFile{{Path: "a.go", Patch: singleFilePatch}},
	}
	findings := []Finding{{Path: "a.go", Line: 2, Message: "magic number"}}

	plan, err := NewPlanner(fake).Plan(context.Background(), "octo", "repo", 1, findings)
	require.NoError(t, err)

	require.Len(t, plan.Comments, 1)
	body := plan.Comments[0].Body
	require.True(t, comment.IsBotComment(body))
	assert.Equal(t, []string{"magic number"}, comment.ExtractIssues(body))
}

func TestPlan_SuppressesAlreadyPostedIssues(t *testing.T) {
	fake := &fakePullRequest{
		files: []githubapi.ChangedFile{{Path: "a.go", Patch: singleFilePatch}},
		comments: []comment.Record{
			{Path: "a.go", Position: 2, Body: comment.FormatBody([]string{"unchecked error"})},
		},
	}
	findings := []Finding{
		{Path: "a.go", Line: 2, Message: "unchecked error"},
		{Path: "a.go", Line: 2, Message: "shadowed variable"},
	}

	plan, err := NewPlanner(fake).Plan(context.Background(), "octo", "repo", 1, findings)
	require.NoError(t, err)

	require.Len(t, plan.Comments, 1)
	assert.Equal(t, []string{"shadowed variable"}, plan.Comments[0].Issues)
	assert.Equal(t, 1, plan.Duplicates)
}

func TestPlan_SecondRunPlansNothing(t *testing.T) {
	findings := []Finding{{Path: "a.go", Line: 4, Message: "TODO left in code"}}
	fake := &fakePullRequest{
		files: []githubapi.ChangedFile{{Path: "a.go", Patch: singleFilePatch}},
	}

	first, err := NewPlanner(fake).Plan(context.Background(), "octo", "repo", 1, findings)
	require.NoError(t, err)
	require.Len(t, first.Comments, 1)

	// Simulate the poster having published the planned comment
	fake.comments = []comment.Record{
		{Path: "a.go", Position: first.Comments[0].Position, Body: first.Comments[0].Body},
	}

	second, err := NewPlanner(fake).Plan(context.Background(), "octo", "repo", 1, findings)
	require.NoError(t, err)
	assert.Empty(t, second.Comments)
	assert.Equal(t, 1, second.Duplicates)
}

func TestPlan_DropsFindingsOutsideTheDiff(t *testing.T) {
	fake := &fakePullRequest{
		files: []githubapi.ChangedFile{{Path: "a.go", Patch: singleFilePatch}},
	}
	findings := []Finding{
		{Path: "a.go", Line: 1, Message: "on a context line"},
		{Path: "a.go", Line: 99, Message: "outside the patch"},
	}

	plan, err := NewPlanner(fake).Plan(context.Background(), "octo", "repo", 1, findings)
	require.NoError(t, err)

	assert.Empty(t, plan.Comments)
	assert.Equal(t, 2, plan.Unmapped)
}

func TestPlan_IgnoresFindingsForUnchangedFiles(t *testing.T) {
	fake := &fakePullRequest{
		files: []githubapi.ChangedFile{{Path: "a.go", Patch: singleFilePatch}},
	}
	findings := []Finding{{Path: "other.go", Line: 2, Message: "not in this PR"}}

	plan, err := NewPlanner(fake).Plan(context.Background(), "octo", "repo", 1, findings)
	require.NoError(t, err)

	assert.Empty(t, plan.Comments)
	assert.Zero(t, plan.Unmapped)
}

func TestPlan_SkipsFilesWithUnparseablePatches(t *testing.T) {
	fake := &fakePullRequest{
		files: []githubapi.ChangedFile{
			{Path: "broken.go", Patch: "@@ mangled @@\n+x"},
			{Path: "ok.go", Patch: singleFilePatch},
		},
	}
	findings := []Finding{
		{Path: "broken.go", Line: 2, Message: "never planned"},
		{Path: "ok.go", Line: 2, Message: "planned"},
	}

	plan, err := NewPlanner(fake).Plan(context.Background(), "octo", "repo", 1, findings)
	require.NoError(t, err)

	assert.Equal(t, []string{"broken.go"}, plan.SkippedFiles)
	require.Len(t, plan.Comments, 1)
	assert.Equal(t, "ok.go", plan.Comments[0].Path)
}

func TestPlan_GroupsFindingsOnTheSamePosition(t *testing.T) {
	fake := &fakePullRequest{
		files: []githubapi.ChangedFile{{Path: "a.go", Patch: singleFilePatch}},
	}
	findings := []Finding{
		{Path: "a.go", Line: 2, Message: "first"},
		{Path: "a.go", Line: 2, Message: "second"},
	}

	plan, err := NewPlanner(fake).Plan(context.Background(), "octo", "repo", 1, findings)
	require.NoError(t, err)

	require.Len(t, plan.Comments, 1)
	assert.Equal(t, []string{"first", "second"}, plan.Comments[0].Issues)
}

func TestPlan_FetchErrorsPropagate(t *testing.T) {
	fake := &fakePullRequest{filesErr: fmt.Errorf("boom")}

	_, err := NewPlanner(fake).Plan(context.Background(), "octo", "repo", 1, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "changed files")

	fake = &fakePullRequest{commentsErr: fmt.Errorf("boom")}

	_, err = NewPlanner(fake).Plan(context.Background(), "octo", "repo", 1, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "review comments")
}

func TestLoadFindings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "findings.json")
	content := `[{"path": "a.go", "line": 3, "message": "fix me"}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	findings, err := LoadFindings(path)
	require.NoError(t, err)

	assert.Equal(t, []Finding{{Path: "a.go", Line: 3, Message: "fix me"}}, findings)
}

func TestLoadFindings_MissingFile(t *testing.T) {
	_, err := LoadFindings(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadFindings_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "findings.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := LoadFindings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}
