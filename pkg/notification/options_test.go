package notification

import (
	"strings"
	"testing"
)

func TestEmbeddedTemplates(t *testing.T) {
	nm, err := NewNotificationManager("",
		WithLoginOtpTemplate(),
		WithPasswordResetOtpTemplate(),
		WithEmailVerificationTemplate(),
	)
	if err != nil {
		t.Fatalf("NewNotificationManager returned error: %v", err)
	}

	tests := []struct {
		noticeType  NoticeType
		placeholder string
	}{
		{LoginOtpNotice, "{{.Otp}}"},
		{PasswordResetOtpNotice, "{{.Otp}}"},
		{EmailVerificationNotice, "{{.Link}}"},
	}

	for _, tt := range tests {
		template, exists := nm.notificationRegistry[tt.noticeType][EmailSystem]
		if !exists {
			t.Errorf("no template registered for %s", tt.noticeType)
			continue
		}
		if template.Html == "" {
			t.Errorf("empty html body for %s", tt.noticeType)
		}
		if !strings.Contains(template.Html, tt.placeholder) {
			t.Errorf("template for %s missing placeholder %s", tt.noticeType, tt.placeholder)
		}
	}
}
