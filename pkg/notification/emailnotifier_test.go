package notification

import (
	"testing"
)

func TestNewEmailNotifier(t *testing.T) {
	tests := []struct {
		name   string
		config SMTPConfig
	}{
		{
			name: "without auth",
			config: SMTPConfig{
				Host: "localhost",
				Port: 1025,
				From: "noreply@example.com",
			},
		},
		{
			name: "with auth and TLS",
			config: SMTPConfig{
				Host:     "smtp.example.com",
				Port:     587,
				Username: "noreply@example.com",
				Password: "pwd",
				From:     "noreply@example.com",
				TLS:      true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier, err := NewEmailNotifier(tt.config)
			if err != nil {
				t.Fatalf("NewEmailNotifier failed: %v", err)
			}
			if notifier.client == nil {
				t.Fatal("mail client not initialized")
			}
			if notifier.SMTPConfig.Host != tt.config.Host {
				t.Errorf("wrong host: %s", notifier.SMTPConfig.Host)
			}
		})
	}
}

func TestEmailNotifierRequiresRecipient(t *testing.T) {
	notifier, err := NewEmailNotifier(SMTPConfig{Host: "localhost", Port: 1025, From: "noreply@example.com"})
	if err != nil {
		t.Fatalf("NewEmailNotifier failed: %v", err)
	}

	err = notifier.Send(LoginOtpNotice, NotificationData{}, NoticeTemplate{Subject: "s", Text: "t"})
	if err == nil {
		t.Error("expected error for missing recipient")
	}
}
