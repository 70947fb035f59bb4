package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"flexinsights/internal/domain"
	"flexinsights/internal/storage/internal/rowscan"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createReviewsSQL); err != nil {
		return fmt.Errorf("create reviews table: %w: %w", domain.ErrStorage, err)
	}
	return nil
}

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	args, err := rowscan.UpsertArgs(rs)
	if err != nil {
		return err
	}

	// one connection for the whole batch; rollback is a no-op after commit
	tx, err := r.db.BeginTx(ctx, nil)
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

func (r *Repo) ListReviews(ctx context.Context) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w: %w", domain.ErrStorage, err)
	}
	defer rows.Close()
	return rowscan.Reviews(rows)
}

func (r *Repo) SetApproval(ctx context.Context, id int64, approved bool) error {
	res, err := r.db.ExecContext(ctx, setApprovalSQL, rowscan.BoolInt(approved), id)
	if err != nil {
		return fmt.Errorf("set approval %d: %w: %w", id, domain.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set approval %d: %w: %w", id, domain.ErrStorage, err)
	}
	if n > 0 {
		return nil
	}

	var one int
	switch err := r.db.QueryRowContext(ctx, reviewExistsSQL, id).Scan(&one); {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("review %d: %w", id, domain.ErrNotFound)
	case err != nil:
		return fmt.Errorf("check review %d: %w: %w", id, domain.ErrStorage, err)
	}
	return nil
}
