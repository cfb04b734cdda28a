package bus

import (
	"context"

	"dialog-collator/core/metrics"
	"dialog-collator/feature/subscription"

	"go.uber.org/zap"
)

// Subscriber establishes shared-line subscriptions.
type Subscriber interface {
	Subscribe(ctx context.Context, in subscription.Intent) (bool, error)
}

// Worker turns bus payloads into subscriptions.
type Worker struct {
	subscriber Subscriber
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewWorker creates a worker.
func NewWorker(subscriber Subscriber, m *metrics.Metrics, logger *zap.Logger) *Worker {
	return &Worker{subscriber: subscriber, metrics: m, logger: logger}
}

// Handle processes one payload. Bad payloads are logged and dropped.
func (w *Worker) Handle(ctx context.Context, payload []byte) {
	ev, unknown, err := DecodeEvent(payload)
	if len(unknown) > 0 {
		w.logger.Warn("Unrecognized fields in bus payload", zap.Strings("fields", unknown))
	}
	if err != nil {
		w.metrics.IncBusEvent("dropped")
		w.logger.Error("Dropping bus payload", zap.ByteString("payload", payload), zap.Error(err))
		return
	}

	w.logger.Info("Received shared-line register event",
		zap.String("aor", ev.AOR),
		zap.String("contact", ev.Contact),
		zap.Intp("duration", ev.Duration),
	)

	in := subscription.Intent{AOR: ev.AOR, Target: ev.Contact, Expires: ev.Duration}
	if _, err := w.subscriber.Subscribe(ctx, in); err != nil {
		w.metrics.IncBusEvent("dropped")
		w.logger.Error("Subscribe for bus event failed", zap.String("contact", ev.Contact), zap.Error(err))
		return
	}
	w.metrics.IncBusEvent("accepted")
}
