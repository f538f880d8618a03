package email

import (
	"context"

	pkglog "github.com/abhigupta0507/NadiRakshak-Backend/pkg/log"
)

// LogNotifier writes messages to the log instead of delivering them. Local development only.
type LogNotifier struct {
	logger pkglog.Logger
}

func NewLogNotifier(logger pkglog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	n.logger.Info().Str("to", msg.To).Str("subject", msg.Subject).Str("body", msg.Text).Msg("email not delivered (log provider)")
	return nil
}
