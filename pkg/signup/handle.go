package signup

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/securevault/authd/pkg/user"
)

type Handle struct {
	signupService *SignupService
}

// NewHandle creates a new Handle
func NewHandle(signupService *SignupService) *Handle {
	return &Handle{signupService: signupService}
}

// Handler returns an http.Handler for the signup routes
func Handler(h *Handle) http.Handler {
	r := chi.NewRouter()
	r.Post("/register", func(w http.ResponseWriter, r *http.Request) {
		if resp := h.RegisterUser(w, r); resp != nil {
			resp.Render(w, r)
		}
	})
	return r
}

// RegisterRequestBody is the JSON body for POST /register
type RegisterRequestBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is the JSON body returned on successful registration
type RegisterResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	User    user.User `json:"user"`
}

// Register a new user
// (POST /register)
func (h *Handle) RegisterUser(w http.ResponseWriter, r *http.Request) *Response {
	data := RegisterRequestBody{}
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		return JSONResponse(http.StatusBadRequest, MessageResponse{
			Message: "Unable to parse request body",
		})
	}

	if data.Name == "" || data.Email == "" || data.Password == "" {
		return JSONResponse(http.StatusBadRequest, MessageResponse{
			Message: "Name, email, and password are required",
		})
	}

	u, err := h.signupService.Register(r.Context(), RegisterRequest{
		Name:     data.Name,
		Email:    data.Email,
		Password: data.Password,
	})
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return JSONResponse(http.StatusBadRequest, struct {
				Success bool              `json:"success"`
				Message string            `json:"message"`
				Fields  map[string]string `json:"fields"`
			}{
				Message: "Invalid registration request",
				Fields:  validationErr.Fields,
			})
		}
		if errors.Is(err, ErrEmailExists) {
			return JSONResponse(http.StatusBadRequest, MessageResponse{
				Message: "Email already exists",
			})
		}

		slog.Error("Failed to register user", "err", err)
		return JSONResponse(http.StatusInternalServerError, MessageResponse{
			Message: "Failed to register user",
		})
	}

	return JSONResponse(http.StatusCreated, RegisterResponse{
		Success: true,
		Message: "User registered successfully. Verification email sent.",
		User:    u,
	})
}
