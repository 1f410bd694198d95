package sms

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MockAdapter logs messages instead of delivering them. Used in development
// environments where no provider credentials exist.
type MockAdapter struct {
	log *logrus.Logger

	mu   sync.Mutex
	sent []MockMessage
}

type MockMessage struct {
	Address string
	Body    string
}

func NewMockAdapter(log *logrus.Logger) *MockAdapter {
	return &MockAdapter{log: log}
}

func (a *MockAdapter) Send(ctx context.Context, address, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	a.mu.Lock()
	a.sent = append(a.sent, MockMessage{Address: address, Body: body})
	a.mu.Unlock()

	sid := "SM" + strings.ReplaceAll(uuid.NewString(), "-", "")
	a.log.WithFields(logrus.Fields{"address": address, "provider_id": sid}).
		Info("mock transport: message logged, not delivered")
	return sid, nil
}

// Sent returns a copy of everything delivered through the adapter.
func (a *MockAdapter) Sent() []MockMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]MockMessage, len(a.sent))
	copy(out, a.sent)
	return out
}
