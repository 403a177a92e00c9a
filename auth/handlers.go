package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/michaelk046/ComicManager/apperror"
)

// Handlers exposes the auth service over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates the auth HTTP handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleRegister godoc
// @Summary Register a new user
// @Description Creates an account and returns its public identity.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body auth.RegisterRequest true "Registration details"
// @Success 200 {object} auth.User "User created"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input or username taken"
// @Failure 500 {object} apperror.ErrorResponse "Internal server error"
// @Router /register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		user, err := h.service.Register(r.Context(), req)
		if err != nil {
			WriteError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, user)
	}
}

// HandleLogin godoc
// @Summary Log in
// @Description Authenticates with form-encoded username/password and returns a bearer token.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} auth.TokenResponse "Token issued"
// @Failure 400 {object} apperror.ErrorResponse "Missing form fields"
// @Failure 401 {object} apperror.ErrorResponse "Incorrect username or password"
// @Router /login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Login takes the OAuth2 password form rather than JSON.
		if err := r.ParseForm(); err != nil {
			WriteError(w, apperror.NewBadRequestError("invalid form body", err))
			return
		}
		username := r.PostFormValue("username")
		password := r.PostFormValue("password")
		if username == "" || password == "" {
			WriteError(w, apperror.NewBadRequestError("username and password are required", nil))
			return
		}

		resp, err := h.service.Login(r.Context(), username, password)
		if err != nil {
			WriteError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

// WriteJSON serializes data to the response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// WriteError writes a standardized error response. Errors outside the
// apperror taxonomy become opaque 500s; the detail goes to the log only.
func WriteError(w http.ResponseWriter, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}
	if appErr.StatusCode() >= http.StatusInternalServerError {
		log.Printf("internal error: %v", appErr)
	}
	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
