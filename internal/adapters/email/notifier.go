package email

import (
	"context"
	"fmt"
	"time"

	"github.com/abhigupta0507/NadiRakshak-Backend/config"
	pkglog "github.com/abhigupta0507/NadiRakshak-Backend/pkg/log"
)

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Notifier delivers a single message and reports whether delivery succeeded.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the provider named by cfg.EmailProvider.
func New(cfg *config.Config, logger pkglog.Logger) (Notifier, error) {
	switch cfg.EmailProvider {
	case "smtp":
		return NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SenderEmail), nil
	case "sendgrid":
		return NewSendGridNotifier(cfg.SendGridAPIKey, "", cfg.SenderName, cfg.SenderEmail), nil
	case "log", "":
		return NewLogNotifier(logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.EmailProvider)
	}
}

func OTPMessage(appName, to, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("[%s] Your verification code", appName),
		Text:    fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, minutes(ttl)),
		HTML: fmt.Sprintf(`<div style="font-family: Arial, sans-serif">
  <h2>Hello,</h2>
  <p>Your verification code is:</p>
  <h1 style="letter-spacing: 4px">%s</h1>
  <p>The code expires in %d minutes.</p>
  <p>%s</p>
</div>`, code, minutes(ttl), appName),
	}
}

func ResetLinkMessage(appName, to, link string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("[%s] Reset your password", appName),
		Text:    fmt.Sprintf("Reset your password using this link: %s (valid for %d minutes).", link, minutes(ttl)),
		HTML: fmt.Sprintf(`<div style="font-family: Arial, sans-serif">
  <p>We received a request to reset your password.</p>
  <p><a href="%s">Reset password</a></p>
  <p>The link is valid for %d minutes. Ignore this email if you did not ask for it.</p>
  <p>%s</p>
</div>`, link, minutes(ttl), appName),
	}
}

func minutes(d time.Duration) int {
	m := int(d / time.Minute)
	if m < 1 {
		return 1
	}
	return m
}
