// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Recorder {
	t.Helper()
	rec, err := Open(filepath.Join(t.TempDir(), "traces", "traces.db"))
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })
	return rec
}

// stepClock advances by step on every call.
func stepClock(step time.Duration) func() time.Time {
	cur := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

func TestRecorder_TraceRecordsOutcome(t *testing.T) {
	rec := openTest(t)
	rec.now = stepClock(20 * time.Millisecond)

	boom := errors.New("boom")
	require.NoError(t, rec.Trace(context.Background(), "fetch Tutors", func(context.Context) error { return nil }))
	err := rec.Trace(context.Background(), "create Tutor", func(context.Context) error { return boom })
	assert.Same(t, boom, err, "the operation's error is returned unchanged")

	spans, err := rec.Recent(10)
	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.Equal(t, "create Tutor", spans[0].Name)
	assert.False(t, spans[0].OK)
	assert.Equal(t, "boom", spans[0].Error)
	assert.Equal(t, "fetch Tutors", spans[1].Name)
	assert.True(t, spans[1].OK)
	assert.InDelta(t, 20.0, spans[1].DurationMS, 0.001)
}

func TestRecorder_Stats(t *testing.T) {
	rec := openTest(t)
	base := time.Now().UnixMilli()
	for i := 1; i <= 20; i++ {
		require.NoError(t, rec.Record(Span{
			ID:         "s" + string(rune('a'+i)),
			Name:       "fetch Modules",
			StartedAt:  base + int64(i),
			DurationMS: float64(i * 10),
			OK:         i != 3,
		}))
	}
	require.NoError(t, rec.Record(Span{ID: "other", Name: "create Message", StartedAt: base, DurationMS: 5, OK: true}))

	stats, err := rec.Stats()
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, "create Message", stats[0].Name)
	mods := stats[1]
	assert.Equal(t, 20, mods.Count)
	assert.Equal(t, 1, mods.Failures)
	assert.Equal(t, 105*time.Millisecond, mods.Avg)
	assert.Equal(t, 190*time.Millisecond, mods.P95)
	assert.Equal(t, base+20, mods.Last.UnixMilli())
}

func TestRecorder_Prune(t *testing.T) {
	rec := openTest(t)
	for i := 0; i < 10; i++ {
		require.NoError(t, rec.Trace(context.Background(), "fetch User", func(context.Context) error { return nil }))
	}

	n, err := rec.Prune(3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	spans, err := rec.Recent(0)
	require.NoError(t, err)
	assert.Len(t, spans, 3)
}

func TestRecorder_NilIsPassThrough(t *testing.T) {
	var rec *Recorder
	called := false
	err := rec.Trace(context.Background(), "fetch User", func(context.Context) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)
	assert.NoError(t, rec.Close())
}
