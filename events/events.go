// Package events publishes round settlements to other services.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
)

const SubjectRoundSettled = "casino.round.settled"

// RoundSettled is the message sent for every settled round.
type RoundSettled struct {
	RoundID    string           `json:"roundId"`
	PlayerID   string           `json:"playerId"`
	Game       string           `json:"game"`
	Outcome    string           `json:"outcome"`
	WatchOnly  bool             `json:"watchOnly,omitempty"`
	Bet        decimal.Decimal  `json:"bet"`
	Payout     decimal.Decimal  `json:"payout"`
	Net        decimal.Decimal  `json:"net"`
	Balance    decimal.Decimal  `json:"balance"`
	CrashPoint *decimal.Decimal `json:"crashPoint,omitempty"`
	SettledAt  time.Time        `json:"settledAt"`
}

type Publisher interface {
	PublishRoundSettled(ev RoundSettled) error
	Close()
}

// Nop drops every event.
type Nop struct{}

func (Nop) PublishRoundSettled(RoundSettled) error { return nil }
func (Nop) Close()                                 {}

type NATSPublisher struct {
	nc      *nats.Conn
	subject string
}

// ConnectNATS dials url with the reconnect policy used across the casino services.
func ConnectNATS(url, name string) (*NATSPublisher, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(5),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return NewNATSPublisher(nc), nil
}

func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc, subject: SubjectRoundSettled}
}

func (p *NATSPublisher) PublishRoundSettled(ev RoundSettled) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

func (p *NATSPublisher) Close() {
	_ = p.nc.Drain()
}
