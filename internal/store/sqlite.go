package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gkobilansky/sigcalc/internal/stats"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
	ErrBuiltIn  = errors.New("built-in samples cannot be deleted")
)

type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS samples (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    visitors_a INTEGER NOT NULL CHECK (visitors_a > 0),
    conversions_a INTEGER NOT NULL CHECK (conversions_a >= 0 AND conversions_a <= visitors_a),
    visitors_b INTEGER NOT NULL CHECK (visitors_b > 0),
    conversions_b INTEGER NOT NULL CHECK (conversions_b >= 0 AND conversions_b <= visitors_b),
    confidence_level TEXT NOT NULL DEFAULT '0.95',
    built_in INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_samples_name ON samples(name);
`

const sampleColumns = `id, name, description, visitors_a, conversions_a, visitors_b, conversions_b, confidence_level, built_in, created_at`

func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Apply schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.seed(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// seed inserts the built-in samples; existing rows are left untouched.
func (s *SQLiteStore) seed(ctx context.Context) error {
	now := time.Now().Unix()
	for _, sample := range BuiltInSamples {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO samples (name, description, visitors_a, conversions_a, visitors_b, conversions_b, confidence_level, built_in, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)`,
			sample.Name, sample.Description, sample.VisitorsA, sample.ConversionsA,
			sample.VisitorsB, sample.ConversionsB, string(sample.ConfidenceLevel), now,
		)
		if err != nil {
			return fmt.Errorf("failed to seed sample %s: %w", sample.Name, err)
		}
	}
	return nil
}

func (s *SQLiteStore) CreateSample(ctx context.Context, sample Sample) (*Sample, error) {
	if sample.ConfidenceLevel == "" {
		sample.ConfidenceLevel = stats.DefaultConfidence
	}

	now := time.Now().Unix()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO samples (name, description, visitors_a, conversions_a, visitors_b, conversions_b, confidence_level, built_in, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		sample.Name, sample.Description, sample.VisitorsA, sample.ConversionsA,
		sample.VisitorsB, sample.ConversionsB, string(sample.ConfidenceLevel), now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrExists
		}
		return nil, fmt.Errorf("failed to insert sample: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	sample.ID = id
	sample.BuiltIn = false
	sample.CreatedAt = time.Unix(now, 0)
	return &sample, nil
}

func (s *SQLiteStore) GetSample(ctx context.Context, name string) (*Sample, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sampleColumns+` FROM samples WHERE name = ?`, name,
	)

	sample, err := scanSample(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sample: %w", err)
	}
	return sample, nil
}

// ListSamples returns built-in samples first, then user samples in the
// order they were created.
func (s *SQLiteStore) ListSamples(ctx context.Context) ([]*Sample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sampleColumns+` FROM samples ORDER BY built_in DESC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}
	defer rows.Close()

	var samples []*Sample
	for rows.Next() {
		sample, err := scanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, sample)
	}

	return samples, rows.Err()
}

func (s *SQLiteStore) DeleteSample(ctx context.Context, name string) error {
	sample, err := s.GetSample(ctx, name)
	if err != nil {
		return err
	}
	if sample.BuiltIn {
		return ErrBuiltIn
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM samples WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete sample: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSample(row scanner) (*Sample, error) {
	var sample Sample
	var level string
	var builtIn int
	var createdAt int64

	err := row.Scan(&sample.ID, &sample.Name, &sample.Description,
		&sample.VisitorsA, &sample.ConversionsA, &sample.VisitorsB, &sample.ConversionsB,
		&level, &builtIn, &createdAt)
	if err != nil {
		return nil, err
	}

	sample.ConfidenceLevel = stats.ConfidenceLevel(level)
	sample.BuiltIn = builtIn != 0
	sample.CreatedAt = time.Unix(createdAt, 0)
	return &sample, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
