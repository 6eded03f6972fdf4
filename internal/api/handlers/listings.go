// backend/internal/api/handlers/listings.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/maison-seeker/backend/internal/domain"
	"github.com/maison-seeker/backend/internal/services"
	"github.com/maison-seeker/backend/pkg/logger"
)

// Client-facing messages. Deliberately generic: per-attempt diagnostics
// stay in the server logs.
const (
	msgMissingURL       = "A listing URL is required."
	msgUnsupportedURL   = "URL not recognized. Supported sites: leboncoin.fr, seloger.com, bienici.com"
	msgExtractionFailed = "Could not retrieve the listing details. The site may be blocking automated requests."
)

type ListingHandler struct {
	extractor      *services.ExtractorService
	listings       *services.ListingService
	requestTimeout time.Duration
	log            *logger.Logger
}

func NewListingHandler(extractor *services.ExtractorService, listings *services.ListingService, requestTimeout time.Duration, log *logger.Logger) *ListingHandler {
	return &ListingHandler{
		extractor:      extractor,
		listings:       listings,
		requestTimeout: requestTimeout,
		log:            log,
	}
}

func (h *ListingHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/listings/fetch", h.HandleFetch).Methods(http.MethodPost)
	r.HandleFunc("/api/listings/import", h.HandleImport).Methods(http.MethodPost)
	r.HandleFunc("/api/listings", h.HandleList).Methods(http.MethodGet)
	r.HandleFunc("/api/listings/{id:[0-9]+}/vote", h.HandleVote).Methods(http.MethodPost)
	r.HandleFunc("/api/listings/{id:[0-9]+}/archive", h.HandleArchive).Methods(http.MethodPost)
	r.HandleFunc("/api/listings/{id:[0-9]+}/unarchive", h.HandleUnarchive).Methods(http.MethodPost)
	r.HandleFunc("/api/listings/{id:[0-9]+}", h.HandleDelete).Methods(http.MethodDelete)
}

type fetchRequest struct {
	URL string `json:"url"`
}

// HandleFetch runs the extraction pipeline without persisting anything.
func (h *ListingHandler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := h.decodeURL(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	meta, err := h.extractor.Extract(ctx, rawURL)
	if err != nil {
		h.writeExtractionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// HandleImport extracts, geocodes and stores a listing.
func (h *ListingHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := h.decodeURL(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	listing, err := h.listings.Import(ctx, rawURL)
	if err != nil {
		h.writeExtractionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

func (h *ListingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = domain.StatusActive
	}
	if status != domain.StatusActive && status != domain.StatusArchived {
		writeError(w, http.StatusBadRequest, "status must be active or archived")
		return
	}

	listings, err := h.listings.List(r.Context(), status)
	if err != nil {
		h.log.Error("[api] list listings: %v", err)
		writeError(w, http.StatusInternalServerError, "could not list listings")
		return
	}
	if listings == nil {
		listings = []*domain.Listing{}
	}
	writeJSON(w, http.StatusOK, listings)
}

type voteRequest struct {
	User string `json:"user"`
	Vote string `json:"vote"`
}

func (h *ListingHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" {
		writeError(w, http.StatusBadRequest, "user is required")
		return
	}
	if req.Vote != domain.VoteLike && req.Vote != domain.VoteDislike && req.Vote != "" {
		writeError(w, http.StatusBadRequest, "vote must be like, dislike or empty")
		return
	}

	if err := h.listings.Vote(r.Context(), id, req.User, req.Vote); err != nil {
		h.log.Error("[api] vote on %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "could not record vote")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.listings.Archive)
}

func (h *ListingHandler) HandleUnarchive(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.listings.Unarchive)
}

func (h *ListingHandler) setStatus(w http.ResponseWriter, r *http.Request, op func(context.Context, int64) error) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := op(r.Context(), id); err != nil {
		h.log.Error("[api] update status of %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "could not update listing")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.listings.Delete(r.Context(), id); err != nil {
		h.log.Error("[api] delete %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "could not delete listing")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) decodeURL(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, msgMissingURL)
		return "", false
	}
	return req.URL, true
}

func (h *ListingHandler) writeExtractionError(w http.ResponseWriter, err error) {
	var extractionErr *domain.ExtractionError
	switch {
	case errors.Is(err, domain.ErrUnsupportedURL):
		writeError(w, http.StatusBadRequest, msgUnsupportedURL)
	case errors.As(err, &extractionErr):
		h.log.Error("[api] %v", extractionErr)
		writeError(w, http.StatusInternalServerError, msgExtractionFailed)
	default:
		h.log.Error("[api] %v", err)
		writeError(w, http.StatusInternalServerError, msgExtractionFailed)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
