package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/unionhome/internal/api/middleware"
	"github.com/kiranshivaraju/unionhome/internal/api/response"
	"github.com/kiranshivaraju/unionhome/internal/store"
	"github.com/kiranshivaraju/unionhome/pkg/models"
)

const (
	maxTitleLen   = 200
	maxContentLen = 20000
)

// AnnouncementStore is the slice of the store the board handlers need.
type AnnouncementStore interface {
	CreateAnnouncement(ctx context.Context, a *models.Announcement) error
	ListAnnouncements(ctx context.Context, filter store.AnnouncementFilter) ([]*models.Announcement, int, error)
	GetAnnouncement(ctx context.Context, id uuid.UUID, unionID uuid.UUID) (*models.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id uuid.UUID, unionID uuid.UUID) error
}

// NewListAnnouncementsHandler returns an http.HandlerFunc for
// GET /api/v1/unions/{slug}/announcements.
func NewListAnnouncementsHandler(scope *Scope, s AnnouncementStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := scope.Union(w, r)
		if !ok {
			return
		}

		page, err := queryInt(r, "page")
		if err != nil || page > store.MaxPage {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				fmt.Sprintf("page must be an integer between 1 and %d", store.MaxPage), nil)
			return
		}
		limit, err := queryInt(r, "limit")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer", nil)
			return
		}

		filter := store.AnnouncementFilter{UnionID: u.ID, Page: page, Limit: limit}
		items, total, err := s.ListAnnouncements(r.Context(), filter)
		if err != nil {
			slog.Error("list announcements failed", "union_id", u.ID, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		limit, offset := filter.Normalize()
		response.Collection(w, items, response.PaginationMeta{
			Page:    offset/limit + 1,
			Limit:   limit,
			Total:   total,
			HasNext: offset+len(items) < total,
		})
	}
}

// NewGetAnnouncementHandler returns an http.HandlerFunc for
// GET /api/v1/unions/{slug}/announcements/{id}.
func NewGetAnnouncementHandler(scope *Scope, s AnnouncementStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := scope.Union(w, r)
		if !ok {
			return
		}
		id, ok := announcementID(w, r)
		if !ok {
			return
		}

		a, err := s.GetAnnouncement(r.Context(), id, u.ID)
		if err != nil {
			writeStoreError(w, err, "get announcement failed")
			return
		}
		response.JSON(w, a)
	}
}

// NewCreateAnnouncementHandler returns an http.HandlerFunc for
// POST /api/v1/unions/{slug}/announcements. The caller must hold a key
// belonging to the addressed union, or a platform key.
func NewCreateAnnouncementHandler(scope *Scope, s AnnouncementStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := scope.Union(w, r)
		if !ok {
			return
		}
		if !authorizedFor(r, u) {
			response.Error(w, http.StatusForbidden, "FORBIDDEN", "API key does not belong to this union", nil)
			return
		}

		var req struct {
			Title   string `json:"title"`
			Content string `json:"content"`
			Author  string `json:"author"`
			Pinned  bool   `json:"pinned"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		req.Title = strings.TrimSpace(req.Title)
		if req.Title == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "title is required", nil)
			return
		}
		if len(req.Title) > maxTitleLen {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "title is too long", nil)
			return
		}
		if len(req.Content) > maxContentLen {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "content is too long", nil)
			return
		}

		now := time.Now().UTC()
		a := &models.Announcement{
			ID:        uuid.New(),
			UnionID:   u.ID,
			Title:     req.Title,
			Content:   req.Content,
			Author:    strings.TrimSpace(req.Author),
			Pinned:    req.Pinned,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.CreateAnnouncement(r.Context(), a); err != nil {
			slog.Error("create announcement failed", "union_id", u.ID, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}
		response.Created(w, a)
	}
}

// NewDeleteAnnouncementHandler returns an http.HandlerFunc for
// DELETE /api/v1/unions/{slug}/announcements/{id}.
func NewDeleteAnnouncementHandler(scope *Scope, s AnnouncementStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := scope.Union(w, r)
		if !ok {
			return
		}
		if !authorizedFor(r, u) {
			response.Error(w, http.StatusForbidden, "FORBIDDEN", "API key does not belong to this union", nil)
			return
		}
		id, ok := announcementID(w, r)
		if !ok {
			return
		}

		if err := s.DeleteAnnouncement(r.Context(), id, u.ID); err != nil {
			writeStoreError(w, err, "delete announcement failed")
			return
		}
		response.NoContent(w)
	}
}

func authorizedFor(r *http.Request, u *models.Union) bool {
	if mw.HasScope(r, models.ScopePlatform) {
		return true
	}
	keyUnion, ok := mw.GetKeyUnionID(r)
	return ok && keyUnion == u.ID
}

func announcementID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "id must be a UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func writeStoreError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, store.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Announcement not found", nil)
		return
	}
	slog.Error(msg, "error", err)
	response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
}

// queryInt parses an optional positive integer query parameter. A missing
// parameter yields 0, which the store treats as its default.
func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return n, nil
}
