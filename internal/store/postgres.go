package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/penplan/pension-planner/internal/domain"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS scenarios (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	source     TEXT NOT NULL DEFAULT 'remote',
	plan       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

// PostgresStore persists scenarios in Postgres for the server deployment.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to the database and ensures the schema exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Save inserts or updates a record and returns its id.
func (s *PostgresStore) Save(ctx context.Context, record domain.ScenarioRecord) (string, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
		record.CreatedAt = now
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if record.Source == "" {
		record.Source = "remote"
	}

	plan, err := json.Marshal(record.Plan)
	if err != nil {
		return "", fmt.Errorf("encode plan: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO scenarios (id, name, source, plan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			source = EXCLUDED.source,
			plan = EXCLUDED.plan,
			updated_at = EXCLUDED.updated_at`,
		record.ID, record.Name, record.Source, plan, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("save scenario: %w", err)
	}
	return record.ID, nil
}

// Load returns the record for an id, or ErrNotFound.
func (s *PostgresStore) Load(ctx context.Context, id string) (domain.ScenarioRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, source, plan, created_at, updated_at
		FROM scenarios WHERE id = $1`, id)

	record, err := scanPostgresScenario(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ScenarioRecord{}, ErrNotFound
	}
	if err != nil {
		return domain.ScenarioRecord{}, fmt.Errorf("load scenario: %w", err)
	}
	return record, nil
}

// List returns all records ordered by creation time.
func (s *PostgresStore) List(ctx context.Context) ([]domain.ScenarioRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, source, plan, created_at, updated_at
		FROM scenarios ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	var records []domain.ScenarioRecord
	for rows.Next() {
		record, err := scanPostgresScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	return records, nil
}

// Delete removes a record, or returns ErrNotFound.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM scenarios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPostgresScenario(row pgx.Row) (domain.ScenarioRecord, error) {
	var (
		record domain.ScenarioRecord
		plan   []byte
	)
	if err := row.Scan(&record.ID, &record.Name, &record.Source, &plan, &record.CreatedAt, &record.UpdatedAt); err != nil {
		return domain.ScenarioRecord{}, err
	}
	if err := json.Unmarshal(plan, &record.Plan); err != nil {
		return domain.ScenarioRecord{}, fmt.Errorf("decode plan: %w", err)
	}
	return record, nil
}
