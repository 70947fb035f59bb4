package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"flexinsights/internal/domain"
)

// Reader is the query side the handlers depend on.
type Reader interface {
	ListAll(ctx context.Context) ([]domain.Review, error)
	Dashboard(ctx context.Context, listing, category string) (domain.Dashboard, error)
	Listings(ctx context.Context) ([]string, error)
	PublicListing(ctx context.Context, listing string) ([]domain.PublicReview, error)
}

// Approver is the write side: the approval mutation channel.
type Approver interface {
	SetApproval(ctx context.Context, id int64, approved bool) error
	ApplyApprovals(ctx context.Context, changes []domain.ApprovalChange) (domain.ApprovalResult, error)
}

type Handlers struct {
	Q Reader
	A Approver
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type envelope struct {
	Status string `json:"status"`
	Result any    `json:"result"`
}

type publicPage struct {
	Listing string                `json:"listing"`
	Reviews []domain.PublicReview `json:"reviews"`
}

// max accepted body for approval requests
const maxBody = 1 << 20

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/api/reviews/hostaway", h.listReviews)
	s.mux.Get("/api/reviews/dashboard", h.dashboard)
	s.mux.Get("/api/listings", h.listings)
	s.mux.Put("/api/reviews/{id}/approval", h.setApproval)
	s.mux.Post("/api/reviews/approvals", h.applyApprovals)
	s.mux.Get("/reviews/{listing}", h.publicReviews)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusBadRequest, "Invalid Review", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrMalformedData):
		log.Error().Err(err).Msg("malformed review data")
		writeProblem(w, http.StatusInternalServerError, "Malformed Data", "stored review data could not be read")
	case errors.Is(err, domain.ErrStorage):
		log.Error().Err(err).Msg("storage failure")
		writeProblem(w, http.StatusServiceUnavailable, "Storage Unavailable", "review store is unavailable")
	default:
		log.Error().Err(err).Msg("unexpected error")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body, err := calcETagAndBody(v)
	if err != nil {
		log.Error().Err(err).Msg("marshal response failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.Header().Set("ETag", etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("write body failed")
	}
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Q.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, envelope{Status: "success", Result: rs})
}

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d, err := h.Q.Dashboard(r.Context(), q.Get("listing"), q.Get("category"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, envelope{Status: "success", Result: d})
}

func (h *Handlers) listings(w http.ResponseWriter, r *http.Request) {
	names, err := h.Q.Listings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, envelope{Status: "success", Result: names})
}

func (h *Handlers) publicReviews(w http.ResponseWriter, r *http.Request) {
	listing := chi.URLParam(r, "listing")
	rs, err := h.Q.PublicListing(r.Context(), listing)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, publicPage{Listing: listing, Reviews: rs})
}

func (h *Handlers) setApproval(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	var body struct {
		Approved *bool `json:"approved"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&body); err != nil || body.Approved == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", `body must be {"approved": true|false}`)
		return
	}
	if err := h.A.SetApproval(r.Context(), id, *body.Approved); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) applyApprovals(w http.ResponseWriter, r *http.Request) {
	var changes []domain.ApprovalChange
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&changes); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "body must be a list of {id, approved}")
		return
	}
	res, err := h.A.ApplyApprovals(r.Context(), changes)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.Error().Err(err).Msg("write approvals response failed")
	}
}
