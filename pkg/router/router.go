// Package router wires the feature handlers onto a chi router.
package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"

	emailverificationapi "github.com/securevault/authd/pkg/emailverification/api"
	loginapi "github.com/securevault/authd/pkg/login/api"
	"github.com/securevault/authd/pkg/signup"
	twofaapi "github.com/securevault/authd/pkg/twofa/api"
	userapi "github.com/securevault/authd/pkg/user/api"
)

// Config holds the handlers and middleware needed to set up routes
type Config struct {
	SignupHandle            *signup.Handle
	LoginHandle             *loginapi.Handle
	EmailVerificationHandle *emailverificationapi.Handle
	TwoFaHandle             *twofaapi.Handle
	UserHandle              *userapi.Handle

	// TokenAuth verifies access tokens on the protected routes
	TokenAuth *jwtauth.JWTAuth
}

// SetupRoutes mounts all auth routes on the provided router
func SetupRoutes(router chi.Router, cfg Config) {
	// Public routes (no authentication required)
	router.Mount("/api/signup", signup.Handler(cfg.SignupHandle))
	router.Mount("/api/verify-email", emailverificationapi.Handler(cfg.EmailVerificationHandle))
	router.Mount("/api/auth", loginapi.Handler(cfg.LoginHandle))

	// Protected routes: 2FA enrollment requires a valid access token bound
	// to the same user id; account deletion requires a valid access token.
	router.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(cfg.TokenAuth))
		r.Use(jwtauth.Authenticator(cfg.TokenAuth))
		r.Mount("/api/2fa", twofaapi.Handler(cfg.TwoFaHandle))
		r.Mount("/api/users", userapi.Handler(cfg.UserHandle))
	})
}
