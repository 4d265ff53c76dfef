package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/penplan/pension-planner/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS scenarios (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	source     TEXT NOT NULL DEFAULT 'local',
	plan       TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// SQLiteStore persists scenarios in a local SQLite file. It is the local
// persistence collaborator for single-machine deployments.
type SQLiteStore struct {
	db *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// OpenSQLite opens the scenario database at path, creating the schema when
// missing.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save inserts or updates a record and returns its id.
func (s *SQLiteStore) Save(ctx context.Context, record domain.ScenarioRecord) (string, error) {
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
		record.Source = "local"
	}

	plan, err := json.Marshal(record.Plan)
	if err != nil {
		return "", fmt.Errorf("encode plan: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scenarios (id, name, source, plan, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			source = excluded.source,
			plan = excluded.plan,
			updated_at = excluded.updated_at`,
		record.ID, record.Name, record.Source, string(plan),
		toMillis(record.CreatedAt), toMillis(record.UpdatedAt))
	if err != nil {
		return "", fmt.Errorf("save scenario: %w", err)
	}
	return record.ID, nil
}

// Load returns the record for an id, or ErrNotFound.
func (s *SQLiteStore) Load(ctx context.Context, id string) (domain.ScenarioRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, source, plan, created_at, updated_at
		FROM scenarios WHERE id = ?`, id)
	record, err := scanScenario(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ScenarioRecord{}, ErrNotFound
	}
	if err != nil {
		return domain.ScenarioRecord{}, fmt.Errorf("load scenario: %w", err)
	}
	return record, nil
}

// List returns all records ordered by creation time.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.ScenarioRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, source, plan, created_at, updated_at
		FROM scenarios ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	var records []domain.ScenarioRecord
	for rows.Next() {
		record, err := scanScenario(rows)
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
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScenario(row rowScanner) (domain.ScenarioRecord, error) {
	var (
		record    domain.ScenarioRecord
		plan      string
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&record.ID, &record.Name, &record.Source, &plan, &createdAt, &updatedAt); err != nil {
		return domain.ScenarioRecord{}, err
	}
	if err := json.Unmarshal([]byte(plan), &record.Plan); err != nil {
		return domain.ScenarioRecord{}, fmt.Errorf("decode plan: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}
