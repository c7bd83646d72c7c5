// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/worldsense/internal/logging"
)

// Publisher is the subset of message.Publisher used by NATSSink.
type Publisher interface {
	Publish(topic string, messages ...*message.Message) error
	Close() error
}

// NATSSink publishes records to a NATS subject hierarchy.
type NATSSink struct {
	pub     Publisher
	subject string
}

// ConnectNATS creates a core NATS publisher (no JetStream: tracking is
// fire-and-forget) and returns a sink publishing under subject.
func ConnectNATS(url, subject string, timeout time.Duration) (*NATSSink, error) {
	logger := watermill.NewSlogLogger(logging.NewSlogLogger())

	natsOpts := []natsgo.Option{
		natsgo.Name("worldsense-tracking"),
		natsgo.Timeout(timeout),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("Tracking NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("Tracking NATS reconnected")
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}
	return NewNATSSink(pub, subject), nil
}

// NewNATSSink wraps an existing publisher.
func NewNATSSink(pub Publisher, subject string) *NATSSink {
	return &NATSSink{pub: pub, subject: subject}
}

// Name implements Sink.
func (s *NATSSink) Name() string { return "nats" }

// SendActivity publishes on <subject>.<activityType>.
func (s *NATSSink) SendActivity(_ context.Context, a *Activity) error {
	return s.publish(s.subject+"."+a.ActivityType, a.UserID, a)
}

// SendPreference publishes on <subject>.preferences.
func (s *NATSSink) SendPreference(_ context.Context, p *Preference) error {
	return s.publish(s.subject+".preferences", p.UserID, p)
}

func (s *NATSSink) publish(topic, userID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal tracking record: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("user_id", userID)
	if err := s.pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close closes the publisher and its connection.
func (s *NATSSink) Close() error {
	return s.pub.Close()
}
