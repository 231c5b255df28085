// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

// Package audit is the append-only sink for policy decisions.
//
// Only the enforcement gateway writes here, which is what makes audit
// coverage a structural property instead of a per-handler convention.
// Denials are written synchronously; permits (when the mode records
// them) go through a bounded async channel so hot read paths never
// block on the audit table. There is no read-modify-write anywhere:
// concurrent writers only ever append.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/talentmesh/talentmesh/internal/access"
)

// Mode controls which decisions are recorded.
type Mode string

// Audit modes.
const (
	ModeDenials Mode = "denials" // denials only (default)
	ModeAll     Mode = "all"     // denials sync, permits async
)

// ActorKind labels the actor class in an audit entry.
type ActorKind string

// ActorKind constants.
const (
	ActorAnonymous ActorKind = "anonymous"
	ActorDemo      ActorKind = "demo"
	ActorMember    ActorKind = "member"
)

// Entry is one recorded policy decision. ID is a ULID assigned by the
// sink, so entries sort lexically in write order even across processes.
type Entry struct {
	ID         string            `json:"id"`
	ActorID    string            `json:"actor_id,omitempty"`
	ActorKind  ActorKind         `json:"actor_kind"`
	Operation  access.Operation  `json:"operation"`
	EntityType access.EntityType `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	OrgID      string            `json:"org_id,omitempty"`
	Allowed    bool              `json:"allowed"`
	Reason     string            `json:"reason,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Writer persists audit entries to a backend.
type Writer interface {
	WriteSync(ctx context.Context, entry Entry) error
	Close() error
}

var (
	droppedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "talentmesh_audit_dropped_total",
		Help: "Audit entries dropped because the async channel was full",
	})

	failuresCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talentmesh_audit_failures_total",
		Help: "Audit write failures by reason",
	}, []string{"reason"})

	deniesCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talentmesh_policy_denies_total",
		Help: "Policy denials by reason",
	}, []string{"reason"})
)

// Sink routes entries to the writer according to the configured mode.
type Sink struct {
	mode      Mode
	writer    Writer
	logger    *slog.Logger
	asyncChan chan Entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewSink creates a Sink and starts its async consumer.
func NewSink(mode Mode, writer Writer, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sink{
		mode:      mode,
		writer:    writer,
		logger:    logger,
		asyncChan: make(chan Entry, 1000),
		stopChan:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.asyncConsumer()
	return s
}

// Record writes one decision. Denials are synchronous and counted;
// permits are recorded only in ModeAll and never block the caller. A
// failed write is logged and counted, never propagated: audit outages
// must not turn into availability outages for legitimate traffic.
func (s *Sink) Record(ctx context.Context, entry Entry) {
	if entry.ID == "" {
		entry.ID = ulid.Make().String()
	}
	if !entry.Allowed {
		deniesCounter.WithLabelValues(entry.Reason).Inc()
		if err := s.writer.WriteSync(ctx, entry); err != nil {
			s.logger.ErrorContext(ctx, "audit write failed",
				"error", err,
				"actor_kind", entry.ActorKind,
				"operation", entry.Operation,
				"entity_type", entry.EntityType,
				"entity_id", entry.EntityID,
			)
			failuresCounter.WithLabelValues("sync_write_failed").Inc()
		}
		return
	}

	if s.mode != ModeAll {
		return
	}
	select {
	case s.asyncChan <- entry:
	default:
		droppedCounter.Inc()
	}
}

// asyncConsumer drains the permit channel in the background.
func (s *Sink) asyncConsumer() {
	defer s.wg.Done()
	for {
		select {
		case entry := <-s.asyncChan:
			s.flush(entry)
		case <-s.stopChan:
			for {
				select {
				case entry := <-s.asyncChan:
					s.flush(entry)
				default:
					return
				}
			}
		}
	}
}

func (s *Sink) flush(entry Entry) {
	if err := s.writer.WriteSync(context.Background(), entry); err != nil {
		s.logger.Error("async audit write failed", "error", err, "entity_id", entry.EntityID)
		failuresCounter.WithLabelValues("async_write_failed").Inc()
	}
}

// Close drains pending entries and closes the writer.
func (s *Sink) Close() error {
	close(s.stopChan)
	s.wg.Wait()
	return s.writer.Close()
}
