package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/securevault/authd/pkg/login"
)

type Handle struct {
	loginService *login.LoginService
}

// NewHandle creates a new Handle
func NewHandle(loginService *login.LoginService) *Handle {
	return &Handle{loginService: loginService}
}

// Handler returns an http.Handler for the login routes
func Handler(h *Handle) http.Handler {
	r := chi.NewRouter()
	wrap := func(fn func(http.ResponseWriter, *http.Request) *Response) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if resp := fn(w, r); resp != nil {
				resp.Render(w, r)
			}
		}
	}
	r.Post("/login", wrap(h.PostLogin))
	r.Post("/verify-otp", wrap(h.PostVerifyOtp))
	r.Post("/resend-otp", wrap(h.PostResendOtp))
	r.Post("/forget-password", wrap(h.PostForgetPassword))
	r.Post("/reset-password", wrap(h.PostResetPassword))
	return r
}

// PostLoginRequestBody is the JSON body for POST /login
type PostLoginRequestBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Check credentials and issue the step-up OTP
// (POST /login)
func (h *Handle) PostLogin(w http.ResponseWriter, r *http.Request) *Response {
	data := PostLoginRequestBody{}
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		return JSONResponse(http.StatusBadRequest, MessageResponse{Message: "Unable to parse request body"})
	}

	if data.Email == "" || data.Password == "" {
		return JSONResponse(http.StatusBadRequest, MessageResponse{
			Message: "Email and password are required",
		})
	}

	err := h.loginService.Login(r.Context(), data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, login.ErrInvalidCredentials):
			return JSONResponse(http.StatusUnauthorized, MessageResponse{Message: "Invalid credentials"})
		case errors.Is(err, login.ErrEmailNotVerified):
			return JSONResponse(http.StatusForbidden, MessageResponse{Message: "Please verify your email first"})
		default:
			slog.Error("Login failed", "err", err)
			return JSONResponse(http.StatusInternalServerError, MessageResponse{Message: "Failed to send OTP"})
		}
	}

	return JSONResponse(http.StatusOK, OtpSentResponse{
		Success:  true,
		Message:  "OTP sent to your email",
		Response: data.Email,
	})
}

// PostVerifyOtpRequestBody is the JSON body for POST /verify-otp
type PostVerifyOtpRequestBody struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

// Consume the step-up OTP and mint the token pair
// (POST /verify-otp)
func (h *Handle) PostVerifyOtp(w http.ResponseWriter, r *http.Request) *Response {
	data := PostVerifyOtpRequestBody{}
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		return JSONResponse(http.StatusBadRequest, MessageResponse{Message: "Unable to parse request body"})
	}

	if data.Email == "" || data.Otp == "" {
		return JSONResponse(http.StatusBadRequest, MessageResponse{
			Message: "Email and OTP required",
		})
	}

	pair, err := h.loginService.VerifyOtp(r.Context(), data.Email, data.Otp)
	if err != nil {
		if errors.Is(err, login.ErrInvalidOtp) {
			return JSONResponse(http.StatusBadRequest, MessageResponse{Message: "Invalid or expired OTP"})
		}
		slog.Error("OTP verification failed", "err", err)
		return JSONResponse(http.StatusInternalServerError, MessageResponse{Message: "Failed to verify OTP"})
	}

	return JSONResponse(http.StatusOK, TokenPairResponse{
		Success:      true,
		Message:      "OTP verified and token generated",
		AccessToken:  pair.AccessToken.Token,
		RefreshToken: pair.RefreshToken.Token,
	})
}

// PostResendOtpRequestBody is the JSON body for POST /resend-otp
type PostResendOtpRequestBody struct {
	Email string `json:"email"`
}

// Re-issue the step-up OTP
// (POST /resend-otp)
func (h *Handle) PostResendOtp(w http.ResponseWriter, r *http.Request) *Response {
	data := PostResendOtpRequestBody{}
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		return JSONResponse(http.StatusBadRequest, MessageResponse{Message: "Unable to parse request body"})
	}
	if data.Email == "" {
		return JSONResponse(http.StatusBadRequest, MessageResponse{Message: "Email is required"})
	}

	if err := h.loginService.ResendOtp(r.Context(), data.Email); err != nil {
		slog.Error("Failed to resend OTP", "err", err)
		return JSONResponse(http.StatusInternalServerError, MessageResponse{Message: "Failed to resend OTP"})
	}

	// generic ack regardless of whether the account exists
	return JSONResponse(http.StatusOK, MessageResponse{
		Success: true,
		Message: "If the account exists, a new OTP has been sent",
	})
}

// PostForgetPasswordRequestBody is the JSON body for POST /forget-password
type PostForgetPasswordRequestBody struct {
	Email string `json:"email"`
}

// Issue a password-reset OTP
// (POST /forget-password)
func (h *Handle) PostForgetPassword(w http.ResponseWriter, r *http.Request) *Response {
	data := PostForgetPasswordRequestBody{}
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		return JSONResponse(http.StatusBadRequest, MessageResponse{Message: "Unable to parse request body"})
	}
	if data.Email == "" {
		return JSONResponse(http.StatusBadRequest, MessageResponse{Message: "Email is required"})
	}

	if err := h.loginService.ForgetPassword(r.Context(), data.Email); err != nil {
		slog.Error("Failed to process forget password", "err", err)
		return JSONResponse(http.StatusInternalServerError, MessageResponse{Message: "Failed to send OTP"})
	}

	// generic ack regardless of whether the account exists
	return JSONResponse(http.StatusOK, MessageResponse{
		Success: true,
		Message: "If the account exists, an OTP has been sent",
	})
}

// PostResetPasswordRequestBody is the JSON body for POST /reset-password
type PostResetPasswordRequestBody struct {
	Email    string `json:"email"`
	EnterOtp string `json:"enterOtp"`
	Password string `json:"password"`
}

// Verify the reset OTP and replace the password
// (POST /reset-password)
func (h *Handle) PostResetPassword(w http.ResponseWriter, r *http.Request) *Response {
	data := PostResetPasswordRequestBody{}
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		return JSONResponse(http.StatusBadRequest, MessageResponse{Message: "Unable to parse request body"})
	}

	if data.Email == "" || data.EnterOtp == "" || data.Password == "" {
		return JSONResponse(http.StatusBadRequest, MessageResponse{
			Message: "Email, OTP, and password are required",
		})
	}

	err := h.loginService.ResetPassword(r.Context(), data.Email, data.EnterOtp, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, login.ErrPasswordPolicy):
			return JSONResponse(http.StatusBadRequest, MessageResponse{Message: err.Error()})
		case errors.Is(err, login.ErrInvalidOtp):
			return JSONResponse(http.StatusBadRequest, MessageResponse{Message: "Invalid or expired OTP"})
		default:
			slog.Error("Failed to reset password", "err", err)
			return JSONResponse(http.StatusInternalServerError, MessageResponse{Message: "Failed to reset password"})
		}
	}

	return JSONResponse(http.StatusOK, MessageResponse{
		Success: true,
		Message: "Password reset successful",
	})
}
