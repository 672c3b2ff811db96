// Package api exposes the exercise-link store over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/app/dto"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/app/usecases"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/snapshot"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/pkg/validation"
)

// RegisterFunc writes an exercise into the catalog backing the store.
// Backends that consume a remote catalog leave it nil.
type RegisterFunc func(ctx context.Context, ex *link.Exercise) error

// Server holds the HTTP handler dependencies
type Server struct {
	store     usecases.LinkStore
	catalog   usecases.ExerciseCatalog
	validator *usecases.LinkValidator
	register  RegisterFunc
	saver     snapshot.Saver
	logger    *slog.Logger
}

// Config wires a Server. Store is required. Catalog enables server-side link
// validation; Register enables the exercise registration endpoint; Saver
// enables the snapshot endpoints.
type Config struct {
	Store    usecases.LinkStore
	Catalog  usecases.ExerciseCatalog
	Register RegisterFunc
	Saver    snapshot.Saver
	Logger   *slog.Logger
}

// New creates a new API server
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:     config.Store,
		catalog:   config.Catalog,
		validator: usecases.NewLinkValidator(config.Store),
		register:  config.Register,
		saver:     config.Saver,
		logger:    logger,
	}
}

// Routes builds the /api subtree.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	createBody := validation.NewRequestValidator(nil).
		JSON(dto.CreateExerciseLinkRequest{}).
		Build()
	updateBody := validation.NewRequestValidator(nil).
		JSON(dto.UpdateExerciseLinkRequest{}).
		Build()

	r.Post("/exercises", s.CreateExercise)
	r.Route("/exercises/{exerciseId}", func(r chi.Router) {
		r.With(createBody).Post("/links", s.CreateLink)
		r.Get("/links", s.GetLinks)
		r.Get("/links/suggested", s.GetSuggestedLinks)
		r.With(updateBody).Put("/links/{linkId}", s.UpdateLink)
		r.Delete("/links/{linkId}", s.DeleteLink)
		r.Post("/links/snapshots", s.TakeSnapshot)
		r.Get("/links/snapshots", s.ListSnapshots)
	})

	return r
}

// HealthCheck handles GET /healthz
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateExercise handles POST /api/exercises. It registers a catalog record
// so links can be created between known exercises.
func (s *Server) CreateExercise(w http.ResponseWriter, r *http.Request) {
	if s.register == nil {
		writeError(w, http.StatusNotImplemented, "exercise registration is not supported by this backend")
		return
	}

	var ex link.Exercise
	if err := json.NewDecoder(r.Body).Decode(&ex); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if ex.ID == "" || ex.Name == "" {
		writeError(w, http.StatusBadRequest, "exercise id and name are required")
		return
	}

	if err := s.register(r.Context(), &ex); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, &ex)
}

// CreateLink handles POST /api/exercises/{exerciseId}/links. The request body
// has already passed structural validation; business rules run here before
// the store is touched.
func (s *Server) CreateLink(w http.ResponseWriter, r *http.Request) {
	exerciseID := chi.URLParam(r, "exerciseId")

	var req dto.CreateExerciseLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	linkType, err := link.ParseType(req.LinkType)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown link type "+strconv.Quote(req.LinkType))
		return
	}

	if s.catalog != nil {
		source, err := s.catalog.GetExercise(r.Context(), exerciseID)
		if err != nil {
			s.writeStoreError(w, r, err)
			return
		}

		var existing []*link.ExerciseLink
		if resp, err := s.store.GetLinks(r.Context(), exerciseID, dto.LinkQuery{}); err == nil {
			existing = resp.Links
		}

		if result := s.validator.ValidateCreateLink(r.Context(), source, req.TargetExerciseID, linkType, existing); !result.Valid {
			writeError(w, http.StatusBadRequest, result.Message)
			return
		}
	}

	created, err := s.store.CreateLink(r.Context(), exerciseID, req)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	s.logger.Info("link created",
		"sourceExerciseId", exerciseID,
		"targetExerciseId", created.TargetExerciseID,
		"linkType", created.Type)
	writeJSON(w, http.StatusCreated, created)
}

// GetLinks handles GET /api/exercises/{exerciseId}/links
func (s *Server) GetLinks(w http.ResponseWriter, r *http.Request) {
	exerciseID := chi.URLParam(r, "exerciseId")
	query := r.URL.Query()

	var linkQuery dto.LinkQuery
	if v := query.Get("linkType"); v != "" {
		parsed, err := link.ParseType(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown link type "+strconv.Quote(v))
			return
		}
		linkQuery.Type = &parsed
	}
	if v := query.Get("includeExerciseDetails"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "includeExerciseDetails must be a boolean")
			return
		}
		linkQuery.IncludeDetails = include
	}

	resp, err := s.store.GetLinks(r.Context(), exerciseID, linkQuery)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetSuggestedLinks handles GET /api/exercises/{exerciseId}/links/suggested
func (s *Server) GetSuggestedLinks(w http.ResponseWriter, r *http.Request) {
	exerciseID := chi.URLParam(r, "exerciseId")

	count := 5
	if v := r.URL.Query().Get("count"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "count must be a non-negative integer")
			return
		}
		count = parsed
	}

	links, err := s.store.GetSuggestedLinks(r.Context(), exerciseID, count)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if links == nil {
		links = []*link.ExerciseLink{}
	}

	writeJSON(w, http.StatusOK, links)
}

// UpdateLink handles PUT /api/exercises/{exerciseId}/links/{linkId}
func (s *Server) UpdateLink(w http.ResponseWriter, r *http.Request) {
	exerciseID := chi.URLParam(r, "exerciseId")
	linkID := chi.URLParam(r, "linkId")

	var req dto.UpdateExerciseLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	updated, err := s.store.UpdateLink(r.Context(), exerciseID, linkID, req)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteLink handles DELETE /api/exercises/{exerciseId}/links/{linkId}
func (s *Server) DeleteLink(w http.ResponseWriter, r *http.Request) {
	exerciseID := chi.URLParam(r, "exerciseId")
	linkID := chi.URLParam(r, "linkId")

	if err := s.store.DeleteLink(r.Context(), exerciseID, linkID); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TakeSnapshot handles POST /api/exercises/{exerciseId}/links/snapshots. It
// captures the exercise's current links as a persisted snapshot.
func (s *Server) TakeSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.saver == nil {
		writeError(w, http.StatusNotImplemented, "snapshots are not enabled on this server")
		return
	}
	exerciseID := chi.URLParam(r, "exerciseId")

	resp, err := s.store.GetLinks(r.Context(), exerciseID, dto.LinkQuery{IncludeDetails: true})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	links := make([]link.ExerciseLink, 0, len(resp.Links))
	for _, l := range resp.Links {
		if l != nil {
			links = append(links, *l)
		}
	}

	snap := &snapshot.Snapshot{
		ID:           uuid.NewString(),
		ExerciseID:   exerciseID,
		ExerciseName: resp.ExerciseName,
		Links:        links,
		Metadata:     snapshot.Metadata{Source: "link-api"},
		TakenAt:      time.Now().UTC(),
		Version:      "1.0",
	}
	if err := s.saver.Save(r.Context(), snap); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, snap)
}

// ListSnapshots handles GET /api/exercises/{exerciseId}/links/snapshots
func (s *Server) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.saver == nil {
		writeError(w, http.StatusNotImplemented, "snapshots are not enabled on this server")
		return
	}
	exerciseID := chi.URLParam(r, "exerciseId")

	filter := snapshot.Filter{ExerciseID: exerciseID}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	snaps, err := s.saver.List(r.Context(), filter)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if snaps == nil {
		snaps = []*snapshot.Snapshot{}
	}

	writeJSON(w, http.StatusOK, snaps)
}

// writeStoreError maps a store failure onto an HTTP status and logs it.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("store call failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err.Error())
}

// statusFromError translates domain sentinels and store error kinds into
// HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, link.ErrExerciseNotFound), errors.Is(err, link.ErrLinkNotFound):
		return http.StatusNotFound
	case errors.Is(err, link.ErrSelfLoop),
		errors.Is(err, link.ErrDuplicateLink),
		errors.Is(err, link.ErrInvalidLinkType),
		errors.Is(err, link.ErrInvalidSource),
		errors.Is(err, link.ErrInvalidTarget),
		errors.Is(err, link.ErrNegativeOrder),
		errors.Is(err, link.ErrMaxLinksReached):
		return http.StatusBadRequest
	}

	switch dto.StoreErrorKindOf(err) {
	case dto.StoreErrNotFound:
		return http.StatusNotFound
	case dto.StoreErrInvalid:
		return http.StatusBadRequest
	case dto.StoreErrUnauthorized:
		return http.StatusUnauthorized
	case dto.StoreErrForbidden:
		return http.StatusForbidden
	case dto.StoreErrTimeout:
		return http.StatusGatewayTimeout
	case dto.StoreErrRateLimited:
		return http.StatusTooManyRequests
	case dto.StoreErrUnavailable, dto.StoreErrCanceled:
		return http.StatusServiceUnavailable
	case dto.StoreErrServer, dto.StoreErrNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	// The "error" key matches what the HTTP store client reads back.
	writeJSON(w, status, map[string]string{"error": strings.TrimSpace(message)})
}
