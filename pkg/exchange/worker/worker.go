package worker

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/campstock/exchange/pkg/exchange/events"
	"github.com/campstock/exchange/pkg/exchange/model"
	"github.com/campstock/exchange/pkg/exchange/repo"
)

// Worker drains the exchange event stream into postgres so the order
// and trade history outlives the in-memory engine.
type Worker struct {
	orderEvent repo.IOrderEvent
	tradeFill  repo.ITradeFill
}

func NewWorker(repo repo.IRepo) *Worker {
	return &Worker{
		orderEvent: repo.OrderEvent(),
		tradeFill:  repo.TradeFill(),
	}
}

func (w *Worker) StartOrderConsumer(ctx context.Context, js nats.JetStreamContext, durable string) error {
	return w.consume(ctx, js, events.SubjectOrders, durable, func(data []byte) error {
		var ev model.OrderEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return err
		}
		_, err := w.orderEvent.Create(ctx, &ev)
		return err
	})
}

func (w *Worker) StartFillConsumer(ctx context.Context, js nats.JetStreamContext, durable string) error {
	return w.consume(ctx, js, events.SubjectFills, durable, func(data []byte) error {
		var fill model.TradeFill
		if err := json.Unmarshal(data, &fill); err != nil {
			return err
		}
		_, err := w.tradeFill.Create(ctx, &fill)
		return err
	})
}

func (w *Worker) consume(ctx context.Context, js nats.JetStreamContext, subject, durable string, handle func([]byte) error) error {
	cons, err := js.PullSubscribe(subject, durable)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msgs, err := cons.Fetch(10, nats.MaxWait(nats.DefaultTimeout))
		if err != nil {
			if err == nats.ErrTimeout {
				continue
			}
			zap.S().Warnf("fetch %s fail: %v", subject, err)
			continue
		}

		for _, msg := range msgs {
			if err := handle(msg.Data); err != nil {
				zap.S().Errorf("handle %s event fail: %v", subject, err)
				continue
			}
			_ = msg.Ack()
		}
	}
}
