package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/penplan/pension-planner/internal/domain"
)

// MemoryStore is an in-memory scenario store, used for tests and for
// ephemeral deployments without a database.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]domain.ScenarioRecord
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]domain.ScenarioRecord)}
}

// Save persists a record, assigning an id and timestamps as needed.
func (s *MemoryStore) Save(ctx context.Context, record domain.ScenarioRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
		record.CreatedAt = now
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	s.mu.Lock()
	s.data[record.ID] = record
	s.mu.Unlock()
	return record.ID, nil
}

// Load returns the record for an id, or ErrNotFound.
func (s *MemoryStore) Load(ctx context.Context, id string) (domain.ScenarioRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.ScenarioRecord{}, err
	}
	s.mu.RLock()
	record, ok := s.data[id]
	s.mu.RUnlock()
	if !ok {
		return domain.ScenarioRecord{}, ErrNotFound
	}
	return record, nil
}

// List returns all records ordered by creation time.
func (s *MemoryStore) List(ctx context.Context) ([]domain.ScenarioRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	records := make([]domain.ScenarioRecord, 0, len(s.data))
	for _, record := range s.data {
		records = append(records, record)
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

// Delete removes a record, or returns ErrNotFound.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return ErrNotFound
	}
	delete(s.data, id)
	return nil
}
