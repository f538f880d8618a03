package natsadapter

import (
	"encoding/json"
	"errors"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/abhigupta0507/NadiRakshak-Backend/internal/tokenverify"
	pkglog "github.com/abhigupta0507/NadiRakshak-Backend/pkg/log"
)

// VerifyHandler answers access-token introspection requests from other services.
type VerifyHandler struct {
	parser    tokenverify.Parser
	logger    pkglog.Logger
	now       func() time.Time
	respondFn func(msg *nats.Msg, resp verifyResponse) error
}

type verifyRequest struct {
	Token string `json:"token"`
}

// verifyResponse flattens the verification result next to the outcome.
type verifyResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	*tokenverify.Result
}

func NewVerifyHandler(parser tokenverify.Parser, logger pkglog.Logger) *VerifyHandler {
	return &VerifyHandler{parser: parser, logger: logger, now: time.Now, respondFn: respond}
}

// Subscribe joins queue so replicas share the subject.
func (h *VerifyHandler) Subscribe(conn *nats.Conn, subject, queue string) (*nats.Subscription, error) {
	if conn == nil {
		return nil, errors.New("nats connection is nil")
	}
	return conn.QueueSubscribe(subject, queue, h.handle)
}

func (h *VerifyHandler) handle(msg *nats.Msg) {
	resp := h.verify(msg.Data)
	if err := h.respondFn(msg, resp); err != nil {
		h.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("verify reply failed")
	}
}

func (h *VerifyHandler) verify(data []byte) verifyResponse {
	var req verifyRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.logger.Debug().Err(err).Msg("verify request malformed")
		return verifyResponse{Error: "invalid_payload"}
	}
	result, err := tokenverify.Verify(h.parser, req.Token, h.now)
	if err != nil {
		return verifyResponse{Error: tokenverify.Code(err)}
	}
	return verifyResponse{OK: true, Result: result}
}

func respond(msg *nats.Msg, resp verifyResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return msg.Respond(data)
}
