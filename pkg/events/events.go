package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/trapadl/spicymarg-funnel/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Funnel event subjects
const (
	GuestSignedUp   = "funnel.guest.signed_up"
	VoucherClaimed  = "funnel.voucher.claimed"
	VisitConfirmed  = "funnel.visit.confirmed"
	FunnelCompleted = "funnel.completed"
)

type GuestSignedUpEvent struct {
	GuestID   string    `json:"guest_id"`
	Email     string    `json:"email"`
	NewSignup bool      `json:"new_signup"`
	CreatedAt time.Time `json:"created_at"`
}

type VoucherClaimedEvent struct {
	GuestID    string    `json:"guest_id"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	VerifiedAt time.Time `json:"verified_at"`
}

type VisitConfirmedEvent struct {
	GuestID     string    `json:"guest_id"`
	Email       string    `json:"email"`
	VisitNumber int       `json:"visit_number"`
	NewStage    int       `json:"new_stage"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

type FunnelCompletedEvent struct {
	GuestID     string    `json:"guest_id"`
	Email       string    `json:"email"`
	CompletedAt time.Time `json:"completed_at"`
}
