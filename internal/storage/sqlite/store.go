// Package sqlite provides the SQLite-backed review store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"flexinsights/internal/domain"
	"flexinsights/internal/storage/internal/rowscan"
)

// Store persists reviews in a single SQLite file.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the SQLite file at path and creates the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: storage path is required", domain.ErrStorage)
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w: %w", domain.ErrStorage, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w: %w", domain.ErrStorage, err)
	}
	s := &Store{sqlDB: sqlDB}
	if err := s.Init(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("%w: storage is not configured", domain.ErrStorage)
	}
	return nil
}

// Init creates the reviews table if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, createReviewsSQL); err != nil {
		return fmt.Errorf("create reviews table: %w: %w", domain.ErrStorage, err)
	}
	return nil
}

// UpsertReviews replaces every review in rs inside one transaction. Any
// approval on the input is ignored.
func (s *Store) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if len(rs) == 0 {
		return nil
	}
	args, err := rowscan.UpsertArgs(rs)
	if err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w: %w", domain.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertReviewSQL)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w: %w", domain.ErrStorage, err)
	}
	defer stmt.Close()

	for i, a := range args {
		if _, err := stmt.ExecContext(ctx, a...); err != nil {
			return fmt.Errorf("upsert review %d: %w: %w", rs[i].ID, domain.ErrStorage, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w: %w", domain.ErrStorage, err)
	}
	return nil
}

// ListReviews returns every review ordered by id.
func (s *Store) ListReviews(ctx context.Context) ([]domain.Review, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, listReviewsSQL)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w: %w", domain.ErrStorage, err)
	}
	defer rows.Close()
	return rowscan.Reviews(rows)
}

// SetApproval updates only the approved flag. SQLite counts matched rows, so
// zero affected rows means the id does not exist.
func (s *Store) SetApproval(ctx context.Context, id int64, approved bool) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, setApprovalSQL, rowscan.BoolInt(approved), id)
	if err != nil {
		return fmt.Errorf("set approval %d: %w: %w", id, domain.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set approval %d: %w: %w", id, domain.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("review %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
