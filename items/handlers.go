package items

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/michaelk046/ComicManager/apperror"
	"github.com/michaelk046/ComicManager/auth"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// Handlers exposes the item service over HTTP. All routes assume the auth
// middleware has already placed the authenticated user in the context.
type Handlers struct {
	service Service
}

// NewHandlers creates the item HTTP handlers.
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the item routes on router. The caller mounts this
// group behind the authentication middleware.
func (h *Handlers) RegisterRoutes(router chi.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Patch("/{itemID}", h.update)
	router.Delete("/{itemID}", h.delete)
}

// list godoc
// @Summary List the caller's comics
// @Description Returns a page of the authenticated user's comics, newest first.
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Rows to skip" default(0)
// @Param limit query int false "Page size" default(100)
// @Success 200 {array} items.Item
// @Failure 400 {object} apperror.ErrorResponse "Invalid pagination parameters"
// @Failure 401 {object} apperror.ErrorResponse "Unauthenticated"
// @Router /items [get]
func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, apperror.NewAuthError("could not validate credentials", nil))
		return
	}

	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		auth.WriteError(w, err)
		return
	}
	limit, err := queryInt(r, "limit", defaultLimit)
	if err != nil {
		auth.WriteError(w, err)
		return
	}
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	itemsList, err := h.service.List(r.Context(), user.ID, skip, limit)
	if err != nil {
		auth.WriteError(w, err)
		return
	}

	auth.WriteJSON(w, http.StatusOK, itemsList)
}

// create godoc
// @Summary Add a comic
// @Description Creates a comic in the caller's collection. Publisher and grade are free text.
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body items.CreateRequest true "Comic fields"
// @Success 200 {object} items.Item
// @Failure 400 {object} apperror.ErrorResponse "Invalid input or unknown grade"
// @Failure 401 {object} apperror.ErrorResponse "Unauthenticated"
// @Router /items [post]
func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, apperror.NewAuthError("could not validate credentials", nil))
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, apperror.NewBadRequestError("invalid request body", err))
		return
	}
	defer r.Body.Close()

	item, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		auth.WriteError(w, err)
		return
	}

	auth.WriteJSON(w, http.StatusOK, item)
}

// update godoc
// @Summary Update a comic
// @Description Applies a partial update. Omitted fields are unchanged; explicit nulls clear optional fields.
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param itemID path int true "Comic id"
// @Param body body items.UpdateRequest true "Fields to change"
// @Success 200 {object} items.Item
// @Failure 400 {object} apperror.ErrorResponse "Invalid input or unknown grade"
// @Failure 401 {object} apperror.ErrorResponse "Unauthenticated"
// @Failure 404 {object} apperror.ErrorResponse "Comic not found"
// @Router /items/{itemID} [patch]
func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, apperror.NewAuthError("could not validate credentials", nil))
		return
	}

	itemID, err := pathID(r)
	if err != nil {
		auth.WriteError(w, err)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, apperror.NewBadRequestError("invalid request body", err))
		return
	}
	defer r.Body.Close()

	item, err := h.service.Update(r.Context(), user.ID, itemID, req)
	if err != nil {
		auth.WriteError(w, err)
		return
	}

	auth.WriteJSON(w, http.StatusOK, item)
}

// delete godoc
// @Summary Delete a comic
// @Description Removes a comic from the caller's collection and returns the deleted record.
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param itemID path int true "Comic id"
// @Success 200 {object} items.Item
// @Failure 401 {object} apperror.ErrorResponse "Unauthenticated"
// @Failure 404 {object} apperror.ErrorResponse "Comic not found"
// @Router /items/{itemID} [delete]
func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, apperror.NewAuthError("could not validate credentials", nil))
		return
	}

	itemID, err := pathID(r)
	if err != nil {
		auth.WriteError(w, err)
		return
	}

	item, err := h.service.Delete(r.Context(), user.ID, itemID)
	if err != nil {
		auth.WriteError(w, err)
		return
	}

	auth.WriteJSON(w, http.StatusOK, item)
}

func pathID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "itemID")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperror.NewValidationError("invalid item id", err)
	}
	return id, nil
}

func queryInt(r *http.Request, key string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.NewValidationError(key+" must be an integer", err)
	}
	return value, nil
}
