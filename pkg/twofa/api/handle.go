package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/securevault/authd/pkg/twofa"
)

type Handle struct {
	twoFaService *twofa.TwoFaService
}

// NewHandle creates a new Handle
func NewHandle(twoFaService *twofa.TwoFaService) *Handle {
	return &Handle{twoFaService: twoFaService}
}

// Handler returns an http.Handler for the 2FA routes. The routes must be
// mounted behind the access-token middleware; enrollment without proof of
// session ownership would let a stolen session regenerate the secret.
func Handler(h *Handle) http.Handler {
	r := chi.NewRouter()
	wrap := func(fn func(http.ResponseWriter, *http.Request) *Response) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if resp := fn(w, r); resp != nil {
				resp.Render(w, r)
			}
		}
	}
	r.Post("/setup/{id}", wrap(h.Post2faSetup))
	r.Post("/verify/{id}", wrap(h.Post2faVerify))
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

// SetupResponse returns the provisioning payload
type SetupResponse struct {
	Success    bool   `json:"success"`
	QRCode     string `json:"qrCode"`
	ManualCode string `json:"manualCode"`
}

// authorizedUserID extracts the path user id and rejects the request when
// it does not match the access token subject.
func authorizedUserID(r *http.Request) (uuid.UUID, *Response) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, &Response{Code: http.StatusBadRequest, body: MessageResponse{Message: "Invalid user id"}}
	}

	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return uuid.Nil, &Response{Code: http.StatusUnauthorized, body: MessageResponse{Message: "Unauthorized"}}
	}

	subject, _ := claims["sub"].(string)
	if subject != userID.String() {
		return uuid.Nil, &Response{Code: http.StatusForbidden, body: MessageResponse{Message: "Forbidden: you can only manage your own 2FA"}}
	}
	return userID, nil
}

// Generate a fresh TOTP secret and provisioning QR
// (POST /setup/{id})
func (h *Handle) Post2faSetup(w http.ResponseWriter, r *http.Request) *Response {
	userID, errResp := authorizedUserID(r)
	if errResp != nil {
		return errResp
	}

	result, err := h.twoFaService.Setup(r.Context(), userID)
	if err != nil {
		if errors.Is(err, twofa.ErrUserNotFound) {
			return &Response{Code: http.StatusNotFound, body: MessageResponse{Message: "User not found"}}
		}
		slog.Error("Failed to set up 2FA", "userID", userID, "err", err)
		return &Response{Code: http.StatusInternalServerError, body: MessageResponse{Message: "Failed to set up 2FA"}}
	}

	return &Response{Code: http.StatusOK, body: SetupResponse{
		Success:    true,
		QRCode:     result.QRCode,
		ManualCode: result.Secret,
	}}
}

// Post2faVerifyRequestBody is the JSON body for POST /verify/{id}
type Post2faVerifyRequestBody struct {
	Token string `json:"token"`
}

// Verify a TOTP code and enable the factor
// (POST /verify/{id})
func (h *Handle) Post2faVerify(w http.ResponseWriter, r *http.Request) *Response {
	userID, errResp := authorizedUserID(r)
	if errResp != nil {
		return errResp
	}

	data := Post2faVerifyRequestBody{}
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		return &Response{Code: http.StatusBadRequest, body: MessageResponse{Message: "Unable to parse request body"}}
	}
	if data.Token == "" {
		return &Response{Code: http.StatusBadRequest, body: MessageResponse{Message: "Token is required"}}
	}

	err := h.twoFaService.Verify(r.Context(), userID, data.Token)
	if err != nil {
		switch {
		case errors.Is(err, twofa.ErrUserNotFound):
			return &Response{Code: http.StatusNotFound, body: MessageResponse{Message: "User not found"}}
		case errors.Is(err, twofa.ErrInvalidPasscode), errors.Is(err, twofa.ErrNotEnrolled):
			return &Response{Code: http.StatusBadRequest, body: MessageResponse{Message: "Invalid token"}}
		default:
			slog.Error("Failed to verify 2FA", "userID", userID, "err", err)
			return &Response{Code: http.StatusInternalServerError, body: MessageResponse{Message: "Failed to verify 2FA"}}
		}
	}

	return &Response{Code: http.StatusOK, body: MessageResponse{
		Success: true,
		Message: "Two-Factor Authentication enabled!",
	}}
}
