package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultPublishTimeout bounds how long Publish waits for a JetStream ack.
const DefaultPublishTimeout = 5 * time.Second

// Client publishes completion events as JSON and delivers raw payloads to
// subscribers. Publish must not block the ranking path for long.
type Client interface {
	Publish(subject string, data interface{}) error
	Subscribe(subject string, handler func(subject string, data []byte)) error
	Close()
}

// NATSClient is a Client backed by a NATS connection. When the completion
// stream exists, events are published through JetStream and deduplicated by
// subject, which embeds the snapshot id. Otherwise they go out on core NATS.
// Subscriptions always use core NATS.
type NATSClient struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	durable bool
	timeout time.Duration
	logger  *slog.Logger

	mu   sync.Mutex
	subs []*nats.Subscription
}

func NewNATSClient(ctx context.Context, url string, logger *slog.Logger) (*NATSClient, error) {
	nc, err := nats.Connect(url,
		nats.Name("destinasi"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("events broker disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("events broker reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	c := &NATSClient{conn: nc, js: js, timeout: DefaultPublishTimeout, logger: logger}
	if err := c.ensureStream(ctx); err != nil {
		logger.Warn("completion stream unavailable, publishing on core NATS", "stream", StreamName, "error", err)
	} else {
		c.durable = true
	}
	return c, nil
}

func (c *NATSClient) ensureStream(ctx context.Context) error {
	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       StreamName,
		Subjects:   StreamSubjects(),
		MaxAge:     StreamMaxAge,
		Duplicates: time.Minute,
	})
	return err
}

func (c *NATSClient) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	if !c.durable {
		return c.conn.Publish(subject, payload)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	ack, err := c.js.Publish(ctx, subject, payload, jetstream.WithMsgID(subject))
	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	if ack.Duplicate {
		c.logger.Debug("duplicate event ignored", "subject", subject, "seq", ack.Sequence)
	}
	return nil
}

func (c *NATSClient) Subscribe(subject string, handler func(string, []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return nil
}

// Close drops every subscription and flushes pending publishes.
func (c *NATSClient) Close() {
	c.mu.Lock()
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.subs = nil
	c.mu.Unlock()
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
	}
}

// Nop discards every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(string, interface{}) error            { return nil }
func (Nop) Subscribe(string, func(string, []byte)) error { return nil }
func (Nop) Close()                                       {}
