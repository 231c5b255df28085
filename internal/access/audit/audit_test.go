// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentmesh/talentmesh/internal/access"
)

// captureWriter records entries and optionally fails.
type captureWriter struct {
	mu      sync.Mutex
	entries []Entry
	err     error
}

func (w *captureWriter) WriteSync(_ context.Context, entry Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.entries = append(w.entries, entry)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func (w *captureWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

func denyEntry() Entry {
	return Entry{
		ActorKind:  ActorMember,
		ActorID:    "actor-1",
		Operation:  access.OpRead,
		EntityType: access.EntityCandidate,
		EntityID:   "c-1",
		OrgID:      "orgB",
		Allowed:    false,
		Reason:     "org_mismatch",
		Timestamp:  time.Now().UTC(),
	}
}

func permitEntry() Entry {
	e := denyEntry()
	e.Allowed = true
	e.Reason = ""
	return e
}

func TestSink_DenialsWrittenSynchronously(t *testing.T) {
	writer := &captureWriter{}
	sink := NewSink(ModeDenials, writer, slog.Default())
	defer func() { _ = sink.Close() }()

	sink.Record(context.Background(), denyEntry())

	// Sync path: visible immediately, no drain needed.
	require.Equal(t, 1, writer.count())
	assert.NotEmpty(t, writer.entries[0].ID)
}

func TestSink_AssignsULIDsInWriteOrder(t *testing.T) {
	writer := &captureWriter{}
	sink := NewSink(ModeDenials, writer, slog.Default())
	defer func() { _ = sink.Close() }()

	sink.Record(context.Background(), denyEntry())
	sink.Record(context.Background(), denyEntry())

	require.Equal(t, 2, writer.count())
	first, err := ulid.Parse(writer.entries[0].ID)
	require.NoError(t, err)
	second, err := ulid.Parse(writer.entries[1].ID)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.LessOrEqual(t, first.String(), second.String())
}

func TestSink_PermitsSkippedInDenialsMode(t *testing.T) {
	writer := &captureWriter{}
	sink := NewSink(ModeDenials, writer, slog.Default())

	sink.Record(context.Background(), permitEntry())
	require.NoError(t, sink.Close())

	assert.Equal(t, 0, writer.count())
}

func TestSink_PermitsRecordedInModeAll(t *testing.T) {
	writer := &captureWriter{}
	sink := NewSink(ModeAll, writer, slog.Default())

	sink.Record(context.Background(), permitEntry())
	sink.Record(context.Background(), permitEntry())
	// Close drains the async channel.
	require.NoError(t, sink.Close())

	assert.Equal(t, 2, writer.count())
}

func TestSink_WriteFailureDoesNotPropagate(t *testing.T) {
	writer := &captureWriter{err: errors.New("disk full")}
	sink := NewSink(ModeDenials, writer, slog.Default())
	defer func() { _ = sink.Close() }()

	// Must not panic or propagate: audit outage != availability outage.
	sink.Record(context.Background(), denyEntry())
}

func TestSink_ConcurrentRecords(t *testing.T) {
	writer := &captureWriter{}
	sink := NewSink(ModeDenials, writer, slog.Default())

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink.Record(context.Background(), denyEntry())
		}()
	}
	wg.Wait()
	require.NoError(t, sink.Close())

	assert.Equal(t, 50, writer.count())
}
