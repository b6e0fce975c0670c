// Package audit publishes queue outcomes that lose mail (expiries and
// dispatch failures) to an AMQP exchange for downstream inspection. The
// publisher is best effort: a broker problem is logged and never fails the
// drain tick.
package audit

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"gitlab.wm.local/mail/mailgate/config"
	"gitlab.wm.local/mail/mailgate/errors"
	"gitlab.wm.local/mail/mailgate/log"
	"gitlab.wm.local/mail/mailgate/utils"
)

const (
	KindExpired = "expired"
	KindFailed  = "dispatch_failed"
)

// Event is one audit record.
type Event struct {
	Kind       string    `json:"kind"`
	Subject    string    `json:"subject"`
	Reason     string    `json:"reason,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher struct {
	cfg config.AuditConfig
}

// New returns nil when no broker URL is configured; a nil Publisher is a
// no-op sink.
func New(cfg config.AuditConfig) *Publisher {
	if cfg.URL == "" {
		return nil
	}
	return &Publisher{cfg: cfg}
}

// Publish sends one event, dialing the broker per call the way the rest of
// our tooling publishes one-off messages.
func (p *Publisher) Publish(ev Event) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return errors.E(err)
	}

	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		return errors.Er(err, "connect to %s return error", p.cfg.URL)
	}
	defer utils.DeferCloseLog(conn)

	channel, err := conn.Channel()
	if err != nil {
		return errors.Er(err, "audit create Channel error")
	}
	defer utils.DeferCloseLog(channel)

	err = channel.ExchangeDeclare(p.cfg.Exchange, "direct", true, false, false, false, nil)
	if err != nil {
		return errors.Er(err, "audit declare exchanger %s error", p.cfg.Exchange)
	}

	err = channel.PublishWithContext(
		context.Background(),
		p.cfg.Exchange,
		p.cfg.RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   ev.OccurredAt,
			Body:        body,
		})
	if err != nil {
		return errors.Er(err, "audit publish to %s, with routekey %s", p.cfg.Exchange, p.cfg.RoutingKey)
	}
	log.Debugf("published audit event %s to exchange %s :-> %s", ev.Kind, p.cfg.Exchange, p.cfg.RoutingKey)
	return nil
}
