package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/recipebox/recipe-api/internal/middleware"
	"github.com/recipebox/recipe-api/internal/model"
	"github.com/recipebox/recipe-api/internal/service"
)

// RecipeHandler handles HTTP requests for recipe operations.
type RecipeHandler struct {
	service        *service.RecipeService
	maxUploadBytes int64
}

// NewRecipeHandler creates a new RecipeHandler. Image uploads larger than
// maxUploadBytes are rejected with 413.
func NewRecipeHandler(svc *service.RecipeService, maxUploadBytes int64) *RecipeHandler {
	return &RecipeHandler{service: svc, maxUploadBytes: maxUploadBytes}
}

// HandleList handles GET /api/recipe/recipes requests.
func (h *RecipeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	q := r.URL.Query()
	filter, err := service.ParseRecipeFilter(q.Get("tags"), q.Get("ingredients"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.service.List(r.Context(), user.ID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleCreate handles POST /api/recipe/recipes requests.
func (h *RecipeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.RecipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleGet handles GET /api/recipe/recipes/{id} requests.
func (h *RecipeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.target(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleReplace handles PUT /api/recipe/recipes/{id} requests.
func (h *RecipeHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.target(w, r)
	if !ok {
		return
	}

	var req model.RecipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Replace(r.Context(), user.ID, id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandlePatch handles PATCH /api/recipe/recipes/{id} requests.
func (h *RecipeHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.target(w, r)
	if !ok {
		return
	}

	var req model.RecipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Patch(r.Context(), user.ID, id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /api/recipe/recipes/{id} requests.
func (h *RecipeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.target(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleUploadImage handles POST /api/recipe/recipes/{id}/upload-image
// requests. The image is read from the multipart field "image".
func (h *RecipeHandler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.target(w, r)
	if !ok {
		return
	}

	data, ok := h.readImage(w, r)
	if !ok {
		return
	}

	resp, err := h.service.UploadImage(r.Context(), user.ID, id, data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// readImage returns the uploaded file bytes, or nil when no file was sent.
func (h *RecipeHandler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var tooLarge *http.MaxBytesError
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		switch {
		case errors.Is(err, http.ErrNotMultipart):
			return nil, true
		case errors.As(err, &tooLarge):
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
		default:
			writeJSON(w, http.StatusBadRequest, errorResponse("invalid multipart body"))
		}
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, true
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid multipart body"))
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("could not read uploaded file"))
		return nil, false
	}
	return data, true
}

// target resolves the caller and the {id} URL parameter. A malformed id
// cannot name any recipe, so it is reported as 404.
func (h *RecipeHandler) target(w http.ResponseWriter, r *http.Request) (*model.User, int64, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return nil, 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusNotFound, errorResponse("not found"))
		return nil, 0, false
	}

	return user, id, true
}
