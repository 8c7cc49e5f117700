package amqp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"payperless/internal/log"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
		{63, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"connection closed", errors.New("connection closed"), true},
		{"EOF", fmt.Errorf("read: %w", io.EOF), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"amqp closed", amqp091.ErrClosed, true},
		{"recoverable channel error", &amqp091.Error{Code: 406, Reason: "PRECONDITION_FAILED", Recover: true}, false},
		{"other error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestReceiptUploadedMessage(t *testing.T) {
	msg := NewReceiptUploadedMessage("42", "weekly shop")
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := ReceiptUploadedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "42" || got.Label != "weekly shop" || got.Timestamp.IsZero() {
		t.Fatalf("unexpected message: %+v", got)
	}

	for _, bad := range []string{`not json`, `{"label":"x"}`, `{"id":"  "}`} {
		if _, err := ReceiptUploadedMessageFromJSON([]byte(bad)); err == nil {
			t.Fatalf("expected error for %s", bad)
		}
	}
}

type fakeAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAck) Ack(uint64, bool) error { f.acked = true; return nil }
func (f *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked, f.requeue = true, requeue
	return nil
}
func (f *fakeAck) Reject(_ uint64, requeue bool) error {
	f.nacked, f.requeue = true, requeue
	return nil
}

func TestHandleDelivery(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		handlerErr error
		wantAck    bool
		wantNack   bool
		requeue    bool
		wantCalled bool
	}{
		{"success", `{"id":"1"}`, nil, true, false, false, true},
		{"bad body dropped", `{`, nil, false, true, false, false},
		{"missing id dropped", `{"label":"x"}`, nil, false, true, false, false},
		{"transient failure requeued", `{"id":"1"}`, errors.New("upstream down"), false, true, true, true},
		{"permanent failure dropped", `{"id":"1"}`, fmt.Errorf("bad receipt: %w", ErrDrop), false, true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{logger: log.Discard()}
			ack := &fakeAck{}
			called := false
			handler := func(_ context.Context, msg *ReceiptUploadedMessage) error {
				called = true
				if !strings.HasPrefix(msg.ID, "1") {
					t.Fatalf("unexpected id %q", msg.ID)
				}
				return tt.handlerErr
			}
			c.handleDelivery(context.Background(), amqp091.Delivery{Acknowledger: ack, Body: []byte(tt.body)}, handler)

			if called != tt.wantCalled {
				t.Fatalf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if ack.acked != tt.wantAck || ack.nacked != tt.wantNack || ack.requeue != tt.requeue {
				t.Fatalf("ack=%v nack=%v requeue=%v", ack.acked, ack.nacked, ack.requeue)
			}
		})
	}
}

func TestPublishValidatesBeforeSending(t *testing.T) {
	c := &Client{logger: log.Discard()}
	if err := c.PublishReceiptUploaded(context.Background(), &ReceiptUploadedMessage{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestPublishHonoursCancelledContext(t *testing.T) {
	c := &Client{logger: log.Discard()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.publish(ctx, []byte(`{}`)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCloseWithoutConnection(t *testing.T) {
	c := &Client{logger: log.Discard()}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
