package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	persons INTEGER NOT NULL,
	items INTEGER NOT NULL,
	clusters INTEGER NOT NULL,
	silhouette REAL,
	warnings INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	summary BLOB
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at DESC);`

const (
	insertRun = `INSERT INTO runs (id, source, fingerprint, created_at, persons, items, clusters, silhouette, warnings, duration_ms, summary)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	selectRun = `SELECT id, source, fingerprint, created_at, persons, items, clusters, silhouette, warnings, duration_ms, summary
FROM runs WHERE id = ?`
	listRuns = `SELECT id, source, fingerprint, created_at, persons, items, clusters, silhouette, warnings, duration_ms
FROM runs ORDER BY created_at DESC, id ASC LIMIT ?`
	countRuns = `SELECT COUNT(*) FROM runs`
)

// SQLStore keeps runs in a SQL database through database/sql.
type SQLStore struct {
	settings
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a sqlite database and migrates it.
func OpenSQLite(ctx context.Context, dsn string, opts ...Option) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", dsn)
	}
	// sqlite allows one writer; a single connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	s, err := NewSQLStore(ctx, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open database and applies the schema.
func NewSQLStore(ctx context.Context, db *sql.DB, opts ...Option) (*SQLStore, error) {
	s := &SQLStore{settings: defaultSettings(), db: db}
	for _, opt := range opts {
		opt(&s.settings)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, errors.Wrap(err, "migrate runs table")
	}
	return s, nil
}

func isConstraint(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}

// Save implements Store.
func (s *SQLStore) Save(ctx context.Context, r Run) error {
	start := time.Now()
	var sil sql.NullFloat64
	if r.Silhouette != nil {
		sil = sql.NullFloat64{Float64: *r.Silhouette, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, insertRun,
		r.ID, r.Source, r.Fingerprint, r.CreatedAt.UTC().UnixNano(),
		r.Persons, r.Items, r.Clusters, sil, r.Warnings, r.DurationMS, []byte(r.Summary),
	)
	if err != nil {
		if isConstraint(err) {
			return errors.Wrapf(ErrDuplicate, "%s", r.ID)
		}
		return errors.Wrapf(err, "insert run %s", r.ID)
	}
	stored := -1
	if n, err := s.Count(ctx); err == nil {
		stored = n
	}
	s.rec.ObserveStore("save", time.Since(start), stored)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner, withSummary bool) (Run, error) {
	var (
		r       Run
		created int64
		sil     sql.NullFloat64
		summary []byte
	)
	dest := []any{&r.ID, &r.Source, &r.Fingerprint, &created, &r.Persons, &r.Items, &r.Clusters, &sil, &r.Warnings, &r.DurationMS}
	if withSummary {
		dest = append(dest, &summary)
	}
	if err := row.Scan(dest...); err != nil {
		return Run{}, err
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	if sil.Valid {
		v := sil.Float64
		r.Silhouette = &v
	}
	if len(summary) > 0 {
		r.Summary = summary
	}
	return r, nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, id string) (Run, error) {
	start := time.Now()
	r, err := scanRun(s.db.QueryRowContext(ctx, selectRun, id), true)
	s.rec.ObserveStore("get", time.Since(start), -1)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, errors.Wrapf(ErrNotFound, "%s", id)
	}
	if err != nil {
		return Run{}, errors.Wrapf(err, "select run %s", id)
	}
	return r, nil
}

// List implements Store.
func (s *SQLStore) List(ctx context.Context, limit int) ([]Run, error) {
	if err := checkLimit(limit, s.maxLimit); err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, listRuns, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows, false)
		if err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate runs")
	}
	s.rec.ObserveStore("list", time.Since(start), -1)
	return out, nil
}

// Count implements Store.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, countRuns).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count runs")
	}
	return n, nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
