package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"tasknotify/internal/constants"
	"tasknotify/internal/event"
	"tasknotify/internal/logger"
	"tasknotify/internal/sidecar"
	"tasknotify/pkg/errors"
	"tasknotify/pkg/metrics"
)

// Service persists every received envelope as an append-only record in the
// keyed state store and answers point and filtered lookups.
type Service struct {
	store  sidecar.KVStore
	logger logger.Logger
	index  *recentIndex
}

func NewService(store sidecar.KVStore, indexSize int, log logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: log,
		index:  newRecentIndex(indexSize),
	}
}

// Record derives an entry from the envelope and writes it keyed by entry id.
func (s *Service) Record(ctx context.Context, envelope event.Envelope) error {
	entry := Entry{
		ID:        constants.AuditKeyPrefix + envelope.ID,
		TaskID:    envelope.TaskID(),
		UserID:    envelope.UserID(),
		EventType: envelope.Type,
		Payload:   envelope.Data,
		CreatedAt: envelope.Time,
	}

	if err := s.store.Put(ctx, entry.ID, entry); err != nil {
		metrics.AuditWritesTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to save audit entry %s: %w", entry.ID, err)
	}

	metrics.AuditWritesTotal.WithLabelValues("success").Inc()
	s.index.add(entry.ID)
	s.logger.InfowCtx(ctx, "Saved audit entry", "entry_id", entry.ID, "event_type", entry.EventType)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*Entry, error) {
	raw, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, errors.ErrInternal.WithCause(fmt.Errorf("corrupt audit entry %s: %w", id, err))
	}
	return &entry, nil
}

// List is a best-effort query. The keyed store has no range primitive, so it
// walks this instance's bounded index of recently written ids, newest first.
// A cold index yields an empty result, which callers accept.
func (s *Service) List(ctx context.Context, filter Filter) ([]Entry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = constants.DefaultAuditLimit
	}
	if limit > constants.MaxAuditLimit {
		limit = constants.MaxAuditLimit
	}

	entries := make([]Entry, 0, limit)
	for _, id := range s.index.snapshot() {
		if len(entries) >= limit {
			break
		}

		entry, err := s.Get(ctx, id)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return entries, err
		}

		if filter.TaskID != nil && entry.TaskID != *filter.TaskID {
			continue
		}
		if filter.EventType != "" && entry.EventType != filter.EventType {
			continue
		}
		entries = append(entries, *entry)
	}

	return entries, nil
}

// recentIndex is a bounded ring of entry ids, newest first on read.
type recentIndex struct {
	mu   sync.Mutex
	ids  []string
	next int
	full bool
}

func newRecentIndex(size int) *recentIndex {
	if size <= 0 {
		size = constants.DefaultAuditLimit
	}
	return &recentIndex{
		ids: make([]string, size),
	}
}

func (r *recentIndex) add(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[r.next] = id
	r.next++
	if r.next == len(r.ids) {
		r.next = 0
		r.full = true
	}
}

func (r *recentIndex) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := r.next
	if r.full {
		count = len(r.ids)
	}

	out := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		idx := r.next - i
		if idx < 0 {
			idx += len(r.ids)
		}
		out = append(out, r.ids[idx])
	}
	return out
}
