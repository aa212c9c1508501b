package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/organizer/internal/models"
)

// recordingAdapter records tag applications and can be told to fail.
type recordingAdapter struct {
	applied []string
	err     error
}

func (a *recordingAdapter) Apply(_ context.Context, path string, _ int, _ string) error {
	if a.err != nil {
		return a.err
	}
	a.applied = append(a.applied, path)
	return nil
}

func (a *recordingAdapter) List(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
}

func movePlan(source, dest string, createDest bool) *models.Plan {
	return models.NewPlan([]models.Operation{{
		Kind:       models.OpMove,
		Source:     source,
		Dest:       dest,
		Rule:       "test-rule",
		CreateDest: createDest,
	}})
}

func TestDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "in", "a.txt")
	dest := filepath.Join(dir, "out", "a.txt")
	touch(t, source)

	report := New(nil, 0).DryRun(context.Background(), movePlan(source, dest, true))

	require.Len(t, report.Results, 1)
	assert.Equal(t, models.OutcomeWouldApply, report.Results[0].Outcome)
	assert.True(t, report.DryRun)

	_, err := os.Stat(source)
	assert.NoError(t, err, "dry run must not move the source")
	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err), "dry run must not create the destination")
}

func TestDryRunReportsConflicts(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.txt")
	dest := filepath.Join(dir, "out", "a.txt")
	touch(t, source)
	touch(t, dest)

	report := New(nil, 0).DryRun(context.Background(), movePlan(source, dest, true))

	require.Len(t, report.Results, 1)
	assert.Equal(t, models.OutcomeWouldFail, report.Results[0].Outcome)
	assert.Contains(t, report.Results[0].Reason, "already exists")
}

func TestDryRunMissingDestinationDir(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.txt")
	dest := filepath.Join(dir, "missing", "a.txt")
	touch(t, source)

	report := New(nil, 0).DryRun(context.Background(), movePlan(source, dest, false))
	require.Len(t, report.Results, 1)
	assert.Equal(t, models.OutcomeWouldFail, report.Results[0].Outcome)
	assert.Contains(t, report.Results[0].Reason, "does not exist")
}

func TestExecuteMoveCreatesDestinationDir(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.txt")
	dest := filepath.Join(dir, "out", "docs", "a.txt")
	touch(t, source)

	report := New(nil, 0).Execute(context.Background(), movePlan(source, dest, true))

	require.Len(t, report.Results, 1)
	assert.Equal(t, models.OutcomeApplied, report.Results[0].Outcome)

	_, err := os.Stat(dest)
	assert.NoError(t, err)
	_, err = os.Stat(source)
	assert.True(t, os.IsNotExist(err))
}

func TestExecuteConflictLeavesBothFiles(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.txt")
	dest := filepath.Join(dir, "out", "a.txt")
	touch(t, source)
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
	require.NoError(t, os.WriteFile(dest, []byte("existing"), 0o644))

	report := New(nil, 0).Execute(context.Background(), movePlan(source, dest, false))

	require.Len(t, report.Results, 1)
	assert.Equal(t, models.OutcomeSkipped, report.Results[0].Outcome,
		"a conflict skips the operation rather than failing the run")
	assert.Contains(t, report.Results[0].Reason, "already exists")

	srcData, err := os.ReadFile(source)
	require.NoError(t, err)
	assert.Equal(t, "content", string(srcData), "conflict must leave the source in place")

	destData, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "existing", string(destData), "conflict must never clobber the destination")
}

func TestExecuteTagWithAdapter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.pdf")
	touch(t, path)

	adapter := &recordingAdapter{}
	plan := models.NewPlan([]models.Operation{{
		Kind:   models.OpTag,
		Source: path,
		Tag:    &models.TagSpec{Color: "blue", Label: "WeChat"},
		Rule:   "tag-rule",
	}})

	report := New(adapter, 0).Execute(context.Background(), plan)

	require.Len(t, report.Results, 1)
	assert.Equal(t, models.OutcomeApplied, report.Results[0].Outcome)
	assert.Equal(t, []string{path}, adapter.applied)
}

func TestExecuteTagFailureDoesNotAbortBatch(t *testing.T) {
	dir := t.TempDir()
	tagged := filepath.Join(dir, "a.pdf")
	source := filepath.Join(dir, "b.txt")
	dest := filepath.Join(dir, "out", "b.txt")
	touch(t, tagged)
	touch(t, source)

	adapter := &recordingAdapter{err: errors.New("xattr write failed")}
	plan := models.NewPlan([]models.Operation{
		{Kind: models.OpTag, Source: tagged, Tag: &models.TagSpec{Color: "red"}, Rule: "tag-rule"},
		{Kind: models.OpMove, Source: source, Dest: dest, Rule: "move-rule", CreateDest: true},
	})

	report := New(adapter, 0).Execute(context.Background(), plan)

	require.Len(t, report.Results, 2)
	assert.Equal(t, models.OutcomeFailed, report.Results[0].Outcome)
	assert.Contains(t, report.Results[0].Reason, "failed to tag")
	assert.Equal(t, models.OutcomeApplied, report.Results[1].Outcome, "later operations still run after a tag failure")
}

func TestExecuteNilAdapterSkipsTags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.pdf")
	touch(t, path)

	plan := models.NewPlan([]models.Operation{{
		Kind:   models.OpTag,
		Source: path,
		Tag:    &models.TagSpec{Color: "blue"},
		Rule:   "tag-rule",
	}})

	report := New(nil, 0).Execute(context.Background(), plan)
	require.Len(t, report.Results, 1)
	assert.Equal(t, models.OutcomeSkipped, report.Results[0].Outcome)
	assert.Equal(t, "no tag adapter", report.Results[0].Reason)
}

func TestExecuteCancellationSkipsRemaining(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	touch(t, a)
	touch(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan := models.NewPlan([]models.Operation{
		{Kind: models.OpMove, Source: a, Dest: filepath.Join(dir, "out", "a.txt"), CreateDest: true},
		{Kind: models.OpMove, Source: b, Dest: filepath.Join(dir, "out", "b.txt"), CreateDest: true},
	})

	report := New(nil, 0).Execute(ctx, plan)

	require.Len(t, report.Results, 2)
	for _, res := range report.Results {
		assert.Equal(t, models.OutcomeSkipped, res.Outcome)
		assert.Equal(t, "cancelled", res.Reason)
	}
	_, err := os.Stat(a)
	assert.NoError(t, err, "cancelled operations must not run")
}

func TestExecuteDuplicateMoveToReviewDir(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "copy.txt")
	dest := filepath.Join(dir, "review", "copy.txt")
	touch(t, source)

	plan := models.NewPlan([]models.Operation{{
		Kind:       models.OpMarkDuplicate,
		Source:     source,
		Dest:       dest,
		Rule:       "dup-rule",
		CreateDest: true,
	}})

	report := New(nil, 0).Execute(context.Background(), plan)
	require.Len(t, report.Results, 1)
	assert.Equal(t, models.OutcomeApplied, report.Results[0].Outcome)

	_, err := os.Stat(dest)
	assert.NoError(t, err)
}

func TestConflictErrorMessage(t *testing.T) {
	err := &ConflictError{Source: "/in/a.txt", Dest: "/out/a.txt"}
	assert.Contains(t, err.Error(), "/out/a.txt")
	assert.Contains(t, err.Error(), "already exists")
}

func TestTagErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &TagError{Path: "/in/a.txt", Err: inner}
	assert.ErrorIs(t, err, inner)
}
