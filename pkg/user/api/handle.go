package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/securevault/authd/pkg/user"
)

type Handle struct {
	userService *user.UserService
}

// NewHandle creates a new Handle
func NewHandle(userService *user.UserService) *Handle {
	return &Handle{userService: userService}
}

// Handler returns an http.Handler for the user management routes. Mount
// behind the access-token middleware.
func Handler(h *Handle) http.Handler {
	r := chi.NewRouter()
	r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		if resp := h.DeleteUser(w, r); resp != nil {
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

// DeleteUserResponse returns the deleted record
type DeleteUserResponse struct {
	Message string    `json:"message"`
	User    user.User `json:"user"`
}

// Delete a user account
// (DELETE /{id})
func (h *Handle) DeleteUser(w http.ResponseWriter, r *http.Request) *Response {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return &Response{Code: http.StatusBadRequest, body: MessageResponse{Message: "Invalid user id"}}
	}

	u, err := h.userService.DeleteUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return &Response{Code: http.StatusBadRequest, body: MessageResponse{Message: "User not found"}}
		}
		slog.Error("Failed to delete user", "userID", id, "err", err)
		return &Response{Code: http.StatusInternalServerError, body: MessageResponse{Message: "Failed to delete user"}}
	}

	return &Response{Code: http.StatusOK, body: DeleteUserResponse{
		Message: "User deleted",
		User:    u,
	}}
}
