package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/mikey/email-classifier/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the ClassificationStore interface
type MemoryStore struct {
	records map[string]core.ClassificationRecord
	order   []string
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]core.ClassificationRecord),
		logger:  logger,
	}
}

// Insert stores a copy of the record under a new id
func (s *MemoryStore) Insert(ctx context.Context, record *core.ClassificationRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := *record
	rec.ID = uuid.NewString()
	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)

	s.logger.Debug("Stored classification record", zap.String("id", rec.ID))
	return rec.ID, nil
}

// Get retrieves a record by id
func (s *MemoryStore) Get(ctx context.Context, id string) (*core.ClassificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, core.ErrRecordNotFound
	}
	return &rec, nil
}

// Len returns the number of stored records
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// All returns the records in insertion order
func (s *MemoryStore) All() []core.ClassificationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.ClassificationRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error {
	return nil
}
