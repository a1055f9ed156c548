// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/jp2jpg/pkg/types"
)

func testLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func summary(source string, outcomes ...types.FileOutcome) types.RunSummary {
	start := time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)
	s := types.RunSummary{
		Source:     source,
		Target:     source + "_conv",
		Tool:       "magick",
		StartedAt:  start,
		FinishedAt: start.Add(time.Minute),
		Outcomes:   outcomes,
	}
	for _, o := range outcomes {
		switch {
		case o.Failed():
			s.Failed++
		case o.Kind == types.KindConvertible:
			s.Converted++
		default:
			s.Copied++
		}
	}
	return s
}

func TestOpenCreatesSchema(t *testing.T) {
	l := testLedger(t)

	var count int
	err := l.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name IN ('runs', 'files')`,
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRecordAndRuns(t *testing.T) {
	l := testLedger(t)
	ctx := context.Background()

	first, err := l.Record(ctx, summary("/data/a",
		types.FileOutcome{Name: "x.jp2", Kind: types.KindConvertible},
	))
	require.NoError(t, err)
	second, err := l.Record(ctx, summary("/data/b",
		types.FileOutcome{Name: "y.jp2", Kind: types.KindConvertible, Status: 3, Severity: types.SeverityWarn},
		types.FileOutcome{Name: "z.txt", Kind: types.KindPassThrough},
	))
	require.NoError(t, err)
	assert.Greater(t, second, first)

	runs, err := l.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, "/data/b", runs[0].Source)
	assert.Equal(t, 1, runs[0].Failed)
	assert.Equal(t, 1, runs[0].Copied)
	assert.Equal(t, time.Minute, runs[0].FinishedAt.Sub(runs[0].StartedAt))

	limited, err := l.Runs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestFailures(t *testing.T) {
	l := testLedger(t)
	ctx := context.Background()

	id, err := l.Record(ctx, summary("/data/c",
		types.FileOutcome{Name: "a.jp2", Kind: types.KindConvertible},
		types.FileOutcome{Name: "b.jp2", Kind: types.KindConvertible, Status: 5, Severity: types.SeverityFatal},
		types.FileOutcome{Name: "sub", Kind: types.KindPassThrough, Severity: types.SeverityError, Error: "not a regular file"},
	))
	require.NoError(t, err)

	failures, err := l.Failures(ctx, id)
	require.NoError(t, err)
	require.Len(t, failures, 2)
	assert.Equal(t, "b.jp2", failures[0].Name)
	assert.Equal(t, types.SeverityFatal, failures[0].Severity)
	assert.Equal(t, 5, failures[0].Status)
	assert.Equal(t, types.KindPassThrough, failures[1].Kind)
	assert.Equal(t, "not a regular file", failures[1].Error)

	none, err := l.Failures(ctx, id+100)
	require.NoError(t, err)
	assert.Empty(t, none)
}
