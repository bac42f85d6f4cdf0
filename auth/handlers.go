package auth

import (
	"encoding/json"
	"net/http"

	"github.com/user/smartodo-go/apperror"
)

// Handlers wraps the auth Service to provide HTTP handlers.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleRegister godoc
// @Summary User Registration
// @Description Registers a new user in the system.
// @Tags Auth
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "User registration details"
// @Success 201 {object} apperror.Envelope "User created successfully"
// @Failure 400 {object} apperror.Envelope "Bad Request - Invalid input, missing fields, or duplicate username/email"
// @Failure 500 {object} apperror.Envelope "Internal Server Error"
// @Router /api/auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if req.Username == "" || req.Email == "" || req.Password == "" {
			WriteError(w, r, apperror.NewValidationError("username, email, and password are required", nil))
			return
		}

		user, err := h.service.Register(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		// The User model never serializes its hash, so the created record can
		// be returned directly as the summary.
		WriteJSON(w, http.StatusCreated, apperror.Envelope{
			Success: true,
			Message: "User registered successfully.",
			Data:    map[string]any{"user": user},
		})
	}
}

// HandleLogin godoc
// @Summary User Login
// @Description Logs in an existing user and returns a signed access token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "User login credentials"
// @Success 200 {object} apperror.Envelope "Login successful, token provided"
// @Failure 400 {object} apperror.Envelope "Bad Request - Invalid input or missing fields"
// @Failure 401 {object} apperror.Envelope "Unauthorized - Invalid credentials"
// @Failure 500 {object} apperror.Envelope "Internal Server Error"
// @Router /api/auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if req.Login == "" || req.Password == "" {
			WriteError(w, r, apperror.NewValidationError("login and password are required", nil))
			return
		}

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusOK, apperror.Envelope{
			Success: true,
			Message: "Login successful.",
			Data:    resp,
		})
	}
}

// WriteJSON serializes data to JSON and writes it with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"success":false,"message":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError converts any error into the standardized response envelope.
// Errors that are not already *apperror.AppError are wrapped as internal
// errors, so collaborator failures never leak raw details to clients.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}

	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
