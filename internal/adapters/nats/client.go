package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	nats "github.com/nats-io/nats.go"
)

const requestTimeout = 3 * time.Second

// requester is the subset of *nats.Conn used for request/ack calls.
type requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// UserEvents announces registrations to the user-profile service.
type UserEvents struct {
	conn    requester
	subject string
}

func NewUserEvents(conn *nats.Conn, subject string) *UserEvents {
	return &UserEvents{conn: conn, subject: subject}
}

func (c *UserEvents) UserCreated(ctx context.Context, userID, email, role string) error {
	payload := map[string]interface{}{"id": userID, "email": email, "role": role, "source": "auth", "type": "signup"}
	return requestAck(ctx, c.conn, c.subject, payload)
}

func requestAck(ctx context.Context, conn requester, subject string, payload interface{}) error {
	if conn == nil {
		return errors.New("nats connection is nil")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	msg, err := conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return err
	}
	if msg == nil {
		return fmt.Errorf("empty response from %s", subject)
	}
	var resp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		return err
	}
	if !resp.OK {
		if resp.Error != "" {
			return errors.New(resp.Error)
		}
		return fmt.Errorf("request to %s failed", subject)
	}
	return nil
}
