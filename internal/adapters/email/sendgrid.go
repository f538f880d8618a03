package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendGridNotifier struct {
	apiKey string
	host   string
	from   *mail.Email
}

// NewSendGridNotifier talks to host, or to the public SendGrid API when host is empty.
func NewSendGridNotifier(apiKey, host, senderName, senderEmail string) *SendGridNotifier {
	return &SendGridNotifier{apiKey: apiKey, host: host, from: mail.NewEmail(senderName, senderEmail)}
}

// Send builds a fresh client per call; sendgrid.Client keeps the request body on itself.
func (n *SendGridNotifier) Send(ctx context.Context, msg Message) error {
	req := sendgrid.GetRequest(n.apiKey, "/v3/mail/send", n.host)
	req.Method = "POST"
	client := &sendgrid.Client{Request: req}

	text := msg.Text
	if text == "" {
		text = msg.HTML
	}
	message := mail.NewSingleEmail(n.from, msg.Subject, mail.NewEmail("", msg.To), text, msg.HTML)
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid api error: status %d", resp.StatusCode)
	}
	return nil
}
