package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/launcher"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
)

// Commands is the operation set the HTTP layer exposes
type Commands interface {
	List(ctx context.Context, limit *int) ([]launcher.BookmarkResponse, error)
	Search(ctx context.Context, text string, tagFilter *string, tagOr bool) ([]launcher.BookmarkResponse, error)
	Get(ctx context.Context, id int64) (*launcher.BookmarkResponse, error)
	Open(ctx context.Context, id int64) error
	Add(ctx context.Context, url string, title, tags, description *string) (int64, error)
	Update(ctx context.Context, id int64, url, title, tags, description *string) error
	Delete(ctx context.Context, id int64) error
	ListTags(ctx context.Context) ([]domain.Tag, error)
	RenameTag(ctx context.Context, oldTag, newTag string) error
	DeleteTag(ctx context.Context, tag string) error
}

type HTTPHandler struct {
	commands Commands
	validate *validator.Validate
}

func NewHTTPHandler(commands Commands) *HTTPHandler {
	return &HTTPHandler{commands: commands, validate: validator.New()}
}

// CreateBookmarkRequest payload. Tags is a comma-separated list.
type CreateBookmarkRequest struct {
	URL         string  `json:"url" validate:"required"`
	Title       *string `json:"title,omitempty"`
	Tags        *string `json:"tags,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateBookmarkRequest payload. Absent fields are left untouched.
type UpdateBookmarkRequest struct {
	URL         *string `json:"url,omitempty" validate:"omitempty,min=1"`
	Title       *string `json:"title,omitempty"`
	Tags        *string `json:"tags,omitempty"`
	Description *string `json:"description,omitempty"`
}

// RenameTagRequest payload
type RenameTagRequest struct {
	Name string `json:"name" validate:"required,excludesall=0x2C"`
}

// List Bookmarks
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = &n
	}

	bookmarks, err := h.commands.List(r.Context(), limit)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(bookmarks))
}

// Search Bookmarks
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var tagFilter *string
	if q.Has("tags") {
		tags := q.Get("tags")
		tagFilter = &tags
	}
	tagOr, _ := strconv.ParseBool(q.Get("or"))

	bookmarks, err := h.commands.Search(r.Context(), q.Get("q"), tagFilter, tagOr)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(bookmarks))
}

// Get Bookmark
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	bookmark, err := h.commands.Get(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if bookmark == nil {
		writeError(w, http.StatusNotFound, "bookmark not found: "+strconv.FormatInt(id, 10))
		return
	}
	writeJSON(w, http.StatusOK, bookmark)
}

// Create Bookmark
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookmarkRequest
	if !h.decode(w, r, &req) {
		return
	}

	id, err := h.commands.Add(r.Context(), req.URL, req.Title, req.Tags, req.Description)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// Update Bookmark
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateBookmarkRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.commands.Update(r.Context(), id, req.URL, req.Title, req.Tags, req.Description); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete Bookmark
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.commands.Delete(r.Context(), id); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Open Bookmark in the host's default handler
func (h *HTTPHandler) Open(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.commands.Open(r.Context(), id); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List Tags
func (h *HTTPHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.commands.ListTags(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}

// Rename Tag
func (h *HTTPHandler) RenameTag(w http.ResponseWriter, r *http.Request) {
	var req RenameTagRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.commands.RenameTag(r.Context(), chi.URLParam(r, "name"), req.Name); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete Tag
func (h *HTTPHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.commands.DeleteTag(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return id, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidTag):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConstraintViolation):
		return http.StatusConflict
	case errors.Is(err, domain.ErrOpenFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeFailure(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), launcher.Message(err))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func nonNil(bs []launcher.BookmarkResponse) []launcher.BookmarkResponse {
	if bs == nil {
		return []launcher.BookmarkResponse{}
	}
	return bs
}
