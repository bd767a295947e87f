package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/solarsite/internal/core/domain"
)

// Subscriber consumes analysis events from JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeAnalysisEvents delivers analysis events to handler. With
// replay set the whole retained stream is delivered first; otherwise
// only events published from now on. Undecodable messages are
// terminated, handler errors are redelivered up to three times.
func (s *Subscriber) SubscribeAnalysisEvents(ctx context.Context, replay bool, handler func(ctx context.Context, event *domain.AnalysisEvent) error) error {
	deliver := nats.DeliverNew()
	if replay {
		deliver = nats.DeliverAll()
	}

	sub, err := s.js.Subscribe(AnalysisSubjects, func(msg *nats.Msg) {
		var event domain.AnalysisEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &event); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		deliver,
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
