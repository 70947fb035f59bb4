//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"flexinsights/internal/adapters/feed"
	server "flexinsights/internal/adapters/http_server"
	redisad "flexinsights/internal/adapters/redis"
	"flexinsights/internal/app"
	"flexinsights/internal/domain"
	"flexinsights/internal/storage/sqlite"
)

const shoreditch = "2B N1 A - 29 Shoreditch Heights"

type stack struct {
	ts  *httptest.Server
	ing *app.IngestionService
	src feed.File
}

func newStack(t *testing.T) stack {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "reviews.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	mr := miniredis.RunT(t)
	cache := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cache.Close() })

	ing, q := app.NewServices(store, cache, time.Minute)
	src := feed.File{Path: filepath.Join("..", "..", "data", "mock_data.json")}
	if n, err := ing.Ingest(ctx, src); err != nil || n != 6 {
		t.Fatalf("seed: n=%d err=%v", n, err)
	}

	srv := server.New()
	srv.MountHandlers(&server.Handlers{Q: q, A: ing})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return stack{ts: ts, ing: ing, src: src}
}

func getJSON(t *testing.T, u string, dst any) {
	t.Helper()
	res, err := http.Get(u)
	if err != nil {
		t.Fatalf("GET %s: %v", u, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", u, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		t.Fatalf("decode %s: %v", u, err)
	}
}

func publicIDs(t *testing.T, base, listing string) []int64 {
	t.Helper()
	var page struct {
		Reviews []domain.PublicReview `json:"reviews"`
	}
	getJSON(t, base+"/reviews/"+url.PathEscape(listing), &page)
	ids := []int64{}
	for _, r := range page.Reviews {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestHTTP_EndToEnd_ApproveThenPublish(t *testing.T) {
	s := newStack(t)

	var all struct {
		Status string          `json:"status"`
		Result []domain.Review `json:"result"`
	}
	getJSON(t, s.ts.URL+"/api/reviews/hostaway", &all)
	if all.Status != "success" || len(all.Result) != 6 {
		t.Fatalf("unexpected envelope: status=%s n=%d", all.Status, len(all.Result))
	}
	for _, r := range all.Result {
		if r.Approved {
			t.Fatalf("review %d approved straight after ingest", r.ID)
		}
	}

	if ids := publicIDs(t, s.ts.URL, shoreditch); len(ids) != 0 {
		t.Fatalf("nothing should be public yet, got %v", ids)
	}

	body, _ := json.Marshal([]domain.ApprovalChange{{ID: 7453, Approved: true}, {ID: 1, Approved: true}})
	res, err := http.Post(s.ts.URL+"/api/reviews/approvals", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST approvals: %v", err)
	}
	var ar domain.ApprovalResult
	if err := json.NewDecoder(res.Body).Decode(&ar); err != nil {
		t.Fatalf("decode approvals: %v", err)
	}
	res.Body.Close()
	if ar.Updated != 1 || len(ar.Missing) != 1 || ar.Missing[0] != 1 {
		t.Fatalf("unexpected approvals result: %+v", ar)
	}

	if ids := publicIDs(t, s.ts.URL, shoreditch); len(ids) != 1 || ids[0] != 7453 {
		t.Fatalf("expected review 7453 public, got %v", ids)
	}

	// re-sync resets approval
	if _, err := s.ing.Ingest(context.Background(), s.src); err != nil {
		t.Fatalf("re-sync: %v", err)
	}
	if ids := publicIDs(t, s.ts.URL, shoreditch); len(ids) != 0 {
		t.Fatalf("re-sync should hide the review again, got %v", ids)
	}
}

func TestHTTP_EndToEnd_Dashboard(t *testing.T) {
	s := newStack(t)

	var d struct {
		Result domain.Dashboard `json:"result"`
	}
	getJSON(t, fmt.Sprintf("%s/api/reviews/dashboard?category=%s", s.ts.URL, domain.CategoryRespectHouseRules), &d)
	if len(d.Result.Rows) != 2 {
		t.Fatalf("expected 2 rows rated on house rules, got %d", len(d.Result.Rows))
	}
	if len(d.Result.Listings) != 3 {
		t.Fatalf("expected 3 listings, got %v", d.Result.Listings)
	}

	getJSON(t, s.ts.URL+"/api/reviews/dashboard?listing="+url.QueryEscape(shoreditch), &d)
	if len(d.Result.Trends) != 1 {
		t.Fatalf("expected one trend series, got %+v", d.Result.Trends)
	}
	tr := d.Result.Trends[0]
	if tr.CleanlinessAvg == nil || *tr.CleanlinessAvg != 10 || tr.CommunicationAvg == nil || *tr.CommunicationAvg != 8.5 {
		t.Fatalf("unexpected trend: %+v", tr)
	}
}
