package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/securevault/authd/pkg/emailverification"
)

type Handle struct {
	emailVerificationService *emailverification.EmailVerificationService
}

// NewHandle creates a new Handle
func NewHandle(emailVerificationService *emailverification.EmailVerificationService) *Handle {
	return &Handle{emailVerificationService: emailVerificationService}
}

// Handler returns an http.Handler for the email verification routes
func Handler(h *Handle) http.Handler {
	r := chi.NewRouter()
	r.Get("/{token}", func(w http.ResponseWriter, r *http.Request) {
		if resp := h.VerifyEmail(w, r); resp != nil {
			resp.Render(w, r)
		}
	})
	return r
}

// Response is the handler return value, rendered by the route wrappers
type Response struct {
	body interface{}
	Code int
}

// Render writes the response body with its status code
func (resp *Response) Render(w http.ResponseWriter, r *http.Request) {
	render.Status(r, resp.Code)
	render.JSON(w, r, resp.body)
}

// MessageResponse is the generic success/message body shape
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Redeem a verification token
// (GET /{token})
func (h *Handle) VerifyEmail(w http.ResponseWriter, r *http.Request) *Response {
	token := chi.URLParam(r, "token")
	if token == "" {
		return &Response{Code: http.StatusBadRequest, body: MessageResponse{Message: "Token missing"}}
	}

	// links embed the token path-escaped
	if decoded, err := url.PathUnescape(token); err == nil {
		token = decoded
	}

	u, err := h.emailVerificationService.VerifyEmail(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, emailverification.ErrInvalidToken):
			return &Response{Code: http.StatusUnauthorized, body: MessageResponse{Message: "Invalid or expired token"}}
		case errors.Is(err, emailverification.ErrUserNotFound):
			return &Response{Code: http.StatusBadRequest, body: MessageResponse{Message: "Invalid token"}}
		default:
			slog.Error("Failed to verify email", "err", err)
			return &Response{Code: http.StatusInternalServerError, body: MessageResponse{Message: "Failed to verify email"}}
		}
	}

	slog.Info("User verified", "userID", u.ID)
	return &Response{Code: http.StatusOK, body: MessageResponse{
		Success: true,
		Message: "User verified successfully",
	}}
}
