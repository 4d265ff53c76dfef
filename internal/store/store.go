// Package store persists scenario records. The projection engine only ever
// reads a PlanInput out of a loaded record; record lifecycle fields belong to
// the store implementations.
package store

import (
	"context"
	"errors"

	"github.com/penplan/pension-planner/internal/domain"
	"github.com/penplan/pension-planner/internal/engine"
)

var (
	// ErrNotFound is returned when no record exists for an id.
	ErrNotFound = errors.New("scenario not found")

	// ErrUnavailable marks a backing store that cannot currently serve
	// requests. Callers on the read path treat it as "no saved scenarios".
	ErrUnavailable = errors.New("scenario store unavailable")
)

// ScenarioStore is the persistence collaborator contract.
type ScenarioStore interface {
	// Save persists a record and returns its id, assigning one when the
	// record carries none.
	Save(ctx context.Context, record domain.ScenarioRecord) (string, error)
	Load(ctx context.Context, id string) (domain.ScenarioRecord, error)
	List(ctx context.Context) ([]domain.ScenarioRecord, error)
	Delete(ctx context.Context, id string) error
}

// Unavailable is a ScenarioStore whose backing store is missing; every
// operation reports ErrUnavailable. Wrap it in a FallbackStore to degrade the
// read path to "no saved scenarios".
type Unavailable struct{}

func (Unavailable) Save(context.Context, domain.ScenarioRecord) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) Load(context.Context, string) (domain.ScenarioRecord, error) {
	return domain.ScenarioRecord{}, ErrUnavailable
}

func (Unavailable) List(context.Context) ([]domain.ScenarioRecord, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Delete(context.Context, string) error {
	return ErrUnavailable
}

// FallbackStore wraps a possibly-unavailable store (browser-style local
// persistence) and downgrades unavailability on the read path: a missing
// backing store means no saved scenarios, never a fatal condition. Writes
// still report ErrUnavailable so callers can tell the user nothing was saved.
type FallbackStore struct {
	inner  ScenarioStore
	logger engine.Logger
}

// NewFallbackStore wraps a store with unavailability fallback semantics.
func NewFallbackStore(inner ScenarioStore, logger engine.Logger) *FallbackStore {
	if logger == nil {
		logger = engine.NopLogger{}
	}
	return &FallbackStore{inner: inner, logger: logger}
}

// Save passes through; unavailability is reported to the caller.
func (f *FallbackStore) Save(ctx context.Context, record domain.ScenarioRecord) (string, error) {
	return f.inner.Save(ctx, record)
}

// Load treats an unavailable store as a missing record.
func (f *FallbackStore) Load(ctx context.Context, id string) (domain.ScenarioRecord, error) {
	record, err := f.inner.Load(ctx, id)
	if errors.Is(err, ErrUnavailable) {
		f.logger.Warnf("scenario store unavailable, treating %q as not found", id)
		return domain.ScenarioRecord{}, ErrNotFound
	}
	return record, err
}

// List treats an unavailable store as empty.
func (f *FallbackStore) List(ctx context.Context) ([]domain.ScenarioRecord, error) {
	records, err := f.inner.List(ctx)
	if errors.Is(err, ErrUnavailable) {
		f.logger.Warnf("scenario store unavailable, listing no saved scenarios")
		return nil, nil
	}
	return records, err
}

// Delete passes through; unavailability is reported to the caller.
func (f *FallbackStore) Delete(ctx context.Context, id string) error {
	return f.inner.Delete(ctx, id)
}
