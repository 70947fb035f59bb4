//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"flexinsights/internal/domain"
	mysqlrepo "flexinsights/internal/storage/mysql"
)

func pfloat(f float64) *float64 { return &f }

// startMySQL runs an isolated MySQL container and returns an open handle.
func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=flexinsights",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/flexinsights?charset=utf8mb4&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRepo_MySQL_UpsertApproveList(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Init twice: must be idempotent
	for i := 0; i < 2; i++ {
		if err := repo.Init(ctx); err != nil {
			t.Fatalf("Init #%d: %v", i, err)
		}
	}

	r1 := domain.Review{
		ID:           7453,
		Type:         "host-to-guest",
		Status:       "published",
		PublicReview: "first",
		Categories:   []domain.CategoryRating{{Category: "cleanliness", Rating: 10}},
		SubmittedAt:  "2020-08-21 22:45:14",
		GuestName:    "Shane",
		ListingName:  "2B N1 A - 29 Shoreditch Heights",
		Approved:     true, // ignored on write
	}
	r2 := domain.Review{
		ID:          7454,
		Rating:      pfloat(7.5),
		ListingName: "Studio S3 - 12 Camden Lock",
	}
	if err := repo.UpsertReviews(ctx, []domain.Review{r1, r2}); err != nil {
		t.Fatalf("UpsertReviews: %v", err)
	}

	got, err := repo.ListReviews(ctx)
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(got) != 2 || got[0].ID != 7453 || got[0].Approved {
		t.Fatalf("unexpected reviews: %+v", got)
	}
	if len(got[0].Categories) != 1 || got[0].Categories[0].Rating != 10 {
		t.Fatalf("categories not decoded: %+v", got[0].Categories)
	}
	if got[1].Rating == nil || *got[1].Rating != 7.5 {
		t.Fatalf("rating = %v", got[1].Rating)
	}

	// approve, approve again (0 affected rows in MySQL), unknown id
	if err := repo.SetApproval(ctx, 7453, true); err != nil {
		t.Fatalf("SetApproval: %v", err)
	}
	if err := repo.SetApproval(ctx, 7453, true); err != nil {
		t.Fatalf("SetApproval unchanged value: %v", err)
	}
	if err := repo.SetApproval(ctx, 1, true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// re-sync resets approval and replaces the text
	r1.PublicReview = "second"
	if err := repo.UpsertReviews(ctx, []domain.Review{r1}); err != nil {
		t.Fatalf("re-sync: %v", err)
	}
	got, err = repo.ListReviews(ctx)
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(got) != 2 || got[0].PublicReview != "second" || got[0].Approved {
		t.Fatalf("expected replaced unapproved record, got %+v", got[0])
	}

	// malformed blob surfaces as ErrMalformedData
	if _, err := db.ExecContext(ctx, "UPDATE reviews SET categories = 'nope' WHERE id = 7454"); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	if _, err := repo.ListReviews(ctx); !errors.Is(err, domain.ErrMalformedData) {
		t.Fatalf("expected ErrMalformedData, got %v", err)
	}
}
