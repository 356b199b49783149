// Package notify broadcasts viewer selection changes over NATS.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fortio.org/log"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
)

// headerCarrier adapts nats.Msg headers for OTel propagation.
type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// msgPublisher is the part of *nats.Conn the publisher needs.
type msgPublisher interface {
	PublishMsg(*nats.Msg) error
}

// Publisher sends selection events as JSON on <prefix>.<modelId>.
type Publisher struct {
	conn   msgPublisher
	prefix string
	close  func()
}

// NewPublisher publishes through an existing connection.
func NewPublisher(conn *nats.Conn, prefix string) *Publisher {
	return &Publisher{conn: conn, prefix: prefix}
}

// Connect dials url and returns a publisher that owns the connection.
func Connect(url, prefix string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("bridge-bim-viewer"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	return &Publisher{conn: nc, prefix: prefix, close: nc.Close}, nil
}

// Subject returns the subject events of modelID go to. Characters NATS
// treats as token separators or wildcards are replaced.
func (p *Publisher) Subject(modelID string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, modelID)
	return p.prefix + "." + clean
}

// PublishSelection publishes ev with the trace context of ctx.
func (p *Publisher) PublishSelection(ctx context.Context, ev bim.SelectionEvent) error {
	if ev.ModelID == "" {
		return errors.New("selection event without model id")
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := &nats.Msg{Subject: p.Subject(ev.ModelID), Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	log.LogVf("Published selection %s on %s", ev.ComponentID, msg.Subject)
	return nil
}

// Close releases a connection opened by Connect.
func (p *Publisher) Close() {
	if p.close != nil {
		p.close()
	}
}
