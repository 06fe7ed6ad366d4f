package notification

import (
	"embed"
	"log/slog"
)

//go:embed templates/*
var templateFiles embed.FS

func loadTemplate(filename string) string {
	content, err := templateFiles.ReadFile(filename)
	if err != nil {
		slog.Error("Error reading template file!", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

// NotificationManagerOption is a function that configures a NotificationManager
type NotificationManagerOption func(*NotificationManager) error

// WithSMTP adds an email notifier with the provided SMTP configuration
func WithSMTP(config SMTPConfig) NotificationManagerOption {
	return func(nm *NotificationManager) error {
		emailNotifier, err := NewEmailNotifier(config)
		if err != nil {
			return err
		}
		nm.RegisterNotifier(EmailSystem, emailNotifier)
		return nil
	}
}

// WithLoginOtpTemplate registers the login OTP email template
func WithLoginOtpTemplate() NotificationManagerOption {
	return func(nm *NotificationManager) error {
		return nm.RegisterNotification(LoginOtpNotice, EmailSystem, NoticeTemplate{
			Subject: "Your Login OTP",
			Html:    loadTemplate("templates/email/login_otp.html"),
		})
	}
}

// WithPasswordResetOtpTemplate registers the password reset OTP email template
func WithPasswordResetOtpTemplate() NotificationManagerOption {
	return func(nm *NotificationManager) error {
		return nm.RegisterNotification(PasswordResetOtpNotice, EmailSystem, NoticeTemplate{
			Subject: "Your Password Reset OTP",
			Html:    loadTemplate("templates/email/password_reset_otp.html"),
		})
	}
}

// WithEmailVerificationTemplate registers the verification link email template
func WithEmailVerificationTemplate() NotificationManagerOption {
	return func(nm *NotificationManager) error {
		return nm.RegisterNotification(EmailVerificationNotice, EmailSystem, NoticeTemplate{
			Subject: "Verify your email",
			Html:    loadTemplate("templates/email/email_verification.html"),
		})
	}
}
