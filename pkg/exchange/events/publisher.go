package events

import (
	"encoding/json"

	"github.com/joripage/go_util/pkg/shardqueue"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/campstock/exchange/pkg/exchange/model"
)

const (
	SubjectOrders = "EXCHANGE.orders"
	SubjectFills  = "EXCHANGE.fills"

	numShards = 16
	queueSize = 1_000_000
)

type outbound struct {
	subject string
	data    []byte
}

// Publisher sends order events and trade fills to JetStream. Messages
// are sharded by symbol so each symbol's event order is preserved
// while publishing stays off the matching path.
type Publisher struct {
	js nats.JetStreamContext
	sq *shardqueue.Shardqueue
}

func NewPublisher(js nats.JetStreamContext) *Publisher {
	p := &Publisher{
		js: js,
		sq: shardqueue.NewShardQueue(numShards, queueSize),
	}
	p.sq.Start(func(msg interface{}) error {
		out, ok := msg.(*outbound)
		if !ok {
			return nil
		}
		if _, err := p.js.Publish(out.subject, out.data); err != nil {
			zap.S().Errorf("publish %s fail: %v", out.subject, err)
			return err
		}
		return nil
	})
	return p
}

// EnsureStream creates the exchange stream if it does not exist.
func EnsureStream(js nats.JetStreamContext, name string) error {
	_, err := js.AddStream(&nats.StreamConfig{
		Name:     name,
		Subjects: []string{"EXCHANGE.*"},
	})
	if err == nats.ErrStreamNameAlreadyInUse {
		return nil
	}
	return err
}

func (p *Publisher) PublishOrderEvent(ev *model.OrderEvent) {
	p.enqueue(SubjectOrders, ev.Symbol, ev)
}

func (p *Publisher) PublishFill(fill *model.TradeFill) {
	p.enqueue(SubjectFills, fill.Symbol, fill)
}

func (p *Publisher) enqueue(subject, symbol string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		zap.S().Errorf("marshal event fail: %v", err)
		return
	}
	p.sq.Shard(symbol, &outbound{subject: subject, data: data})
}
