// Package open picks the review store backend from config.
package open

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"flexinsights/internal/domain"
	"flexinsights/internal/shared"
	mysqlrepo "flexinsights/internal/storage/mysql"
	"flexinsights/internal/storage/sqlite"
)

// Store is a repository that owns its connection.
type Store interface {
	domain.ReviewRepository
	io.Closer
}

type mysqlStore struct {
	*mysqlrepo.Repo
	db *sql.DB
}

func (s mysqlStore) Close() error { return s.db.Close() }

// Open connects to the configured backend and ensures the schema exists.
func Open(ctx context.Context, cfg shared.Config) (Store, error) {
	switch cfg.StoreDriver {
	case shared.DriverMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("sql.Open: %w: %w", domain.ErrStorage, err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db.Ping: %w: %w", domain.ErrStorage, err)
		}
		repo := mysqlrepo.New(db)
		if err := repo.Init(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Str("driver", cfg.StoreDriver).Msg("database connection ok")
		return mysqlStore{Repo: repo, db: db}, nil
	default:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", shared.DriverSQLite).Str("path", cfg.SQLitePath).Msg("database ready")
		return s, nil
	}
}
