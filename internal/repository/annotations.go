// Package repository provides the on-disk annotation cache backed by SQLite.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mendel-inheritance-server/internal/domain"
)

// AnnotationStore persists gene annotations with a TTL.
type AnnotationStore struct {
	db  *sql.DB
	ttl time.Duration
}

// NewAnnotationStore creates a store at dbPath, creating the file and schema
// if they don't exist. A non-positive ttl means entries never expire.
func NewAnnotationStore(dbPath string, ttl time.Duration) (*AnnotationStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	store := &AnnotationStore{db: db, ttl: ttl}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return store, nil
}

// NewAnnotationStoreWithDB wraps an existing database handle. The schema is
// not created; callers own the handle lifecycle.
func NewAnnotationStoreWithDB(db *sql.DB, ttl time.Duration) *AnnotationStore {
	return &AnnotationStore{db: db, ttl: ttl}
}

func (s *AnnotationStore) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS gene_annotations (
		symbol TEXT PRIMARY KEY,
		ensembl_id TEXT DEFAULT '',
		description TEXT DEFAULT '',
		biotype TEXT DEFAULT '',
		chromosome TEXT DEFAULT '',
		start_pos INTEGER DEFAULT 0,
		end_pos INTEGER DEFAULT 0,
		fetched_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_fetched_at ON gene_annotations(fetched_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the cached annotation for a symbol. Expired entries are
// reported as absent.
func (s *AnnotationStore) Get(ctx context.Context, symbol string) (*domain.GeneAnnotation, bool, error) {
	ann := &domain.GeneAnnotation{}
	err := s.db.QueryRowContext(ctx,
		`SELECT symbol, ensembl_id, description, biotype, chromosome, start_pos, end_pos, fetched_at
		 FROM gene_annotations WHERE symbol = ?`, symbol,
	).Scan(&ann.Symbol, &ann.EnsemblID, &ann.Description, &ann.Biotype,
		&ann.Chromosome, &ann.Start, &ann.End, &ann.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read annotation for %s: %w", symbol, err)
	}

	if s.ttl > 0 && time.Since(ann.FetchedAt) > s.ttl {
		return nil, false, nil
	}
	return ann, true, nil
}

// Put stores or replaces an annotation.
func (s *AnnotationStore) Put(ctx context.Context, ann *domain.GeneAnnotation) error {
	fetchedAt := ann.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO gene_annotations
		 (symbol, ensembl_id, description, biotype, chromosome, start_pos, end_pos, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(symbol) DO UPDATE SET
		 ensembl_id = excluded.ensembl_id,
		 description = excluded.description,
		 biotype = excluded.biotype,
		 chromosome = excluded.chromosome,
		 start_pos = excluded.start_pos,
		 end_pos = excluded.end_pos,
		 fetched_at = excluded.fetched_at`,
		ann.Symbol, ann.EnsemblID, ann.Description, ann.Biotype,
		string(ann.Chromosome), ann.Start, ann.End, fetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store annotation for %s: %w", ann.Symbol, err)
	}
	return nil
}

// Prune removes expired entries. It is a no-op without a TTL.
func (s *AnnotationStore) Prune(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-s.ttl)
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM gene_annotations WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune annotations: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database.
func (s *AnnotationStore) Close() error {
	return s.db.Close()
}
