package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jinzhu/copier"
	"github.com/redis/go-redis/v9"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/securevault/authd/pkg/config"
	"github.com/securevault/authd/pkg/emailverification"
	emailverificationapi "github.com/securevault/authd/pkg/emailverification/api"
	"github.com/securevault/authd/pkg/login"
	loginapi "github.com/securevault/authd/pkg/login/api"
	"github.com/securevault/authd/pkg/notification"
	"github.com/securevault/authd/pkg/otp"
	"github.com/securevault/authd/pkg/router"
	"github.com/securevault/authd/pkg/signup"
	"github.com/securevault/authd/pkg/tokengenerator"
	"github.com/securevault/authd/pkg/twofa"
	twofaapi "github.com/securevault/authd/pkg/twofa/api"
	"github.com/securevault/authd/pkg/user"
	userapi "github.com/securevault/authd/pkg/user/api"
)

type Config struct {
	// BaseURL is the client-facing origin embedded in emailed links. The
	// frontend serves /verify-email/{token} and forwards the token to the
	// API's /api/verify-email/{token} endpoint.
	BaseURL        string `env:"BASE_URL" env-default:"http://localhost:3000"`
	AppConfig      app.AppConfig
	DatabaseConfig config.DatabaseConfig
	EmailConfig    config.EmailConfig
	JWTConfig      config.JWTConfig
	OTPConfig      config.OTPConfig
	PasswordConfig config.PasswordConfig
}

func main() {

	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	dbConfig := cfg.DatabaseConfig.ToDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	userRepo := user.NewPostgresRepository(pool)

	notificationManager, err := notification.NewNotificationManager(
		cfg.BaseURL,
		notification.WithSMTP(cfg.EmailConfig.ToSMTPConfig()),
		notification.WithLoginOtpTemplate(),
		notification.WithPasswordResetOtpTemplate(),
		notification.WithEmailVerificationTemplate(),
	)
	if err != nil {
		slog.Error("Failed creating notification manager", "err", err)
		os.Exit(-1)
	}

	tokenService := newTokenService(cfg.JWTConfig)

	otpRegistry, err := newOtpRegistry(cfg.OTPConfig)
	if err != nil {
		slog.Error("Failed creating otp registry", "err", err)
		os.Exit(-1)
	}

	var passwordPolicy login.PasswordPolicy
	copier.Copy(&passwordPolicy, &cfg.PasswordConfig)

	emailVerificationService := emailverification.NewEmailVerificationService(userRepo, tokenService, notificationManager)
	signupService := signup.NewSignupService(userRepo, emailVerificationService,
		signup.WithPasswordPolicy(passwordPolicy),
	)
	loginService := login.NewLoginService(userRepo, otpRegistry, tokenService, notificationManager,
		login.WithPasswordPolicy(passwordPolicy),
	)
	twoFaService := twofa.NewTwoFaService(userRepo)
	userService := user.NewUserService(userRepo)

	tokenAuth := jwtauth.New("HS256", []byte(cfg.JWTConfig.AccessSecret), nil)

	router.SetupRoutes(server.R, router.Config{
		SignupHandle:            signup.NewHandle(signupService),
		LoginHandle:             loginapi.NewHandle(loginService),
		EmailVerificationHandle: emailverificationapi.NewHandle(emailVerificationService),
		TwoFaHandle:             twofaapi.NewHandle(twoFaService),
		UserHandle:              userapi.NewHandle(userService),
		TokenAuth:               tokenAuth,
	})

	server.Run()

}

func newTokenService(jwtConfig config.JWTConfig) *tokengenerator.TokenService {
	opts := []tokengenerator.TokenServiceOption{}
	if expiry, err := jwtConfig.ParseAccessTokenExpiry(); err == nil {
		opts = append(opts, tokengenerator.WithAccessTokenExpiry(expiry))
	} else {
		slog.Warn("Failed parsing access token expiry, using default", "err", err)
	}
	if expiry, err := jwtConfig.ParseRefreshTokenExpiry(); err == nil {
		opts = append(opts, tokengenerator.WithRefreshTokenExpiry(expiry))
	} else {
		slog.Warn("Failed parsing refresh token expiry, using default", "err", err)
	}
	if expiry, err := jwtConfig.ParseVerificationTokenExpiry(); err == nil {
		opts = append(opts, tokengenerator.WithVerificationTokenExpiry(expiry))
	} else {
		slog.Warn("Failed parsing verification token expiry, using default", "err", err)
	}
	return tokengenerator.NewTokenService(
		jwtConfig.AccessSecret,
		jwtConfig.RefreshSecret,
		jwtConfig.VerificationSecret,
		jwtConfig.Issuer,
		jwtConfig.Audience,
		opts...,
	)
}

func newOtpRegistry(otpConfig config.OTPConfig) (otp.Registry, error) {
	ttl, err := otpConfig.ParseTTL()
	if err != nil {
		return nil, err
	}

	var registry otp.Registry
	if otpConfig.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr: otpConfig.RedisAddr,
			DB:   otpConfig.RedisDB,
		})
		registry = otp.NewRedisRegistry(client, otp.WithRedisTTL(ttl))
	} else {
		registry = otp.NewInMemoryRegistry(otp.WithTTL(ttl))
	}

	if otpConfig.MaxAttempts > 0 {
		registry = otp.WithMaxAttempts(registry, otpConfig.MaxAttempts)
	}
	return registry, nil
}
