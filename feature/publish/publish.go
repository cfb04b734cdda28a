package publish

import (
	"context"
	"errors"
	"strconv"

	"dialog-collator/core/metrics"
	"dialog-collator/core/sip"

	"go.uber.org/zap"
)

// ErrNoBody is returned when a PUBLISH has nothing to carry.
var ErrNoBody = errors.New("publish needs a body")

const (
	// MaxForwards is the Max-Forwards value of every PUBLISH.
	MaxForwards = 70
	// FallbackExpires replaces a non-positive expiry.
	FallbackExpires = 125
	// DefaultEvent is the event package of a PUBLISH.
	DefaultEvent = "dialog"
	// DefaultContentType is used when the caller gives none.
	DefaultContentType = "application/dialog-info+xml"
)

// Info describes one PUBLISH. Request-URI, To and From are all PresURI.
type Info struct {
	PresURI     string
	Body        []byte
	ContentType string
	Expires     int
	// Event overrides DefaultEvent.
	Event string
	// Extra are CRLF-terminated header lines appended verbatim.
	Extra string
}

// Expires returns the Expires header value for a requested expiry: the
// fallback for non-positive values, otherwise one second more than asked.
func Expires(requested int) int {
	if requested <= 0 {
		return FallbackExpires
	}
	return requested + 1
}

// Headers returns the generated header lines in emission order.
func Headers(info Info) []sip.Header {
	event := info.Event
	if event == "" {
		event = DefaultEvent
	}
	ct := info.ContentType
	if ct == "" {
		ct = DefaultContentType
	}
	return []sip.Header{
		{Name: "Max-Forwards", Value: strconv.Itoa(MaxForwards)},
		{Name: "Event", Value: event},
		{Name: "Expires", Value: strconv.Itoa(Expires(info.Expires))},
		{Name: "Content-Type", Value: ct},
	}
}

// Emitter sends PUBLISH requests. There is no retry: a failure is logged
// and returned, and the next pass publishes again.
type Emitter struct {
	transport sip.Transport
	route     string
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewEmitter creates an emitter routing every request through route.
func NewEmitter(transport sip.Transport, route string, m *metrics.Metrics, logger *zap.Logger) *Emitter {
	return &Emitter{
		transport: transport,
		route:     route,
		metrics:   m,
		logger:    logger,
	}
}

// Build returns the PUBLISH request for info.
func (e *Emitter) Build(info Info) (*sip.Request, error) {
	if len(info.Body) == 0 {
		return nil, ErrNoBody
	}
	return &sip.Request{
		Method:     sip.MethodPublish,
		RequestURI: info.PresURI,
		To:         info.PresURI,
		From:       info.PresURI,
		RouteProxy: e.route,
		Headers:    Headers(info),
		Extra:      info.Extra,
		Body:       append([]byte(nil), info.Body...),
		Expires:    Expires(info.Expires),
	}, nil
}

// Publish builds and submits a PUBLISH.
func (e *Emitter) Publish(ctx context.Context, info Info) error {
	l := e.logger.With(zap.String("presentity", info.PresURI))

	req, err := e.Build(info)
	if err != nil {
		e.metrics.IncPublish("failed")
		l.Error("Cannot build publish", zap.Error(err))
		return err
	}

	onReply := func(r sip.Reply) {
		if !r.IsSuccess() {
			l.Warn("Publish rejected", zap.Int("code", r.StatusCode), zap.String("reason", r.Reason))
		}
	}

	if err := e.transport.Submit(ctx, req, onReply); err != nil {
		e.metrics.IncPublish("failed")
		l.Error("Failed to send publish", zap.Error(err))
		return err
	}
	e.metrics.IncPublish("sent")
	l.Debug("Publish sent", zap.Int("bytes", len(req.Body)))
	return nil
}
