package subscription

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"dialog-collator/core/metrics"
	"dialog-collator/core/sip"

	"go.uber.org/zap"
)

var (
	// ErrInvalidTarget is returned for targets without a user or host part.
	ErrInvalidTarget = errors.New("subscription target needs a user and a host")
	// ErrInvalidAOR is returned when the address-of-record is not a SIP URI.
	ErrInvalidAOR = errors.New("invalid address-of-record")
	// ErrInvalidExpires is returned for a negative requested expiry.
	ErrInvalidExpires = errors.New("subscription expiry must not be negative")
)

// Event header values of the emitted SUBSCRIBEs.
const (
	EventDialog     = "dialog"
	EventSharedLine = "dialog;sla"
	EventReg        = "reg"
)

const (
	acceptDialogInfo = "application/dialog-info+xml"
	acceptRegInfo    = "application/reginfo+xml"
)

// Result labels.
const (
	resultSent    = "sent"
	resultSkipped = "skipped"
	resultFailed  = "failed"
)

// Emitter builds SUBSCRIBE requests and hands them to the transport.
// A live correlation id short-circuits before any request is built; the
// transport reserves the id atomically on Submit and refuses a second
// reservation with sip.ErrSubscriptionLive, which is reported as skipped.
type Emitter struct {
	transport sip.Transport
	opts      Options
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewEmitter creates an emitter.
func NewEmitter(transport sip.Transport, opts Options, m *metrics.Metrics, logger *zap.Logger) *Emitter {
	return &Emitter{
		transport: transport,
		opts:      opts.withDefaults(),
		metrics:   m,
		logger:    logger,
	}
}

// Subscribe establishes a shared-line subscription for in unless one is
// already live for its target. It reports whether a request was sent.
// An explicit zero expiry is an unsubscribe and is always sent.
func (e *Emitter) Subscribe(ctx context.Context, in Intent) (bool, error) {
	l := e.logger.With(zap.String("aor", in.AOR), zap.String("target", in.Target))

	target, err := sip.ParseURI(in.Target)
	if err != nil || !target.HasUserAndHost() {
		e.metrics.IncSubscribe(string(PurposeSharedLine), resultFailed)
		l.Warn("Rejecting subscription target")
		return false, fmt.Errorf("%w: %q", ErrInvalidTarget, in.Target)
	}
	aor, err := sip.ParseURI(in.AOR)
	if err != nil {
		e.metrics.IncSubscribe(string(PurposeSharedLine), resultFailed)
		return false, fmt.Errorf("%w: %v", ErrInvalidAOR, err)
	}

	expires := e.opts.SharedLineExpires
	if in.Expires != nil {
		expires = *in.Expires
	}
	if expires < 0 {
		e.metrics.IncSubscribe(string(PurposeSharedLine), resultFailed)
		return false, fmt.Errorf("%w: %d", ErrInvalidExpires, expires)
	}

	id := CorrelationID(PurposeSharedLine, target.Raw)
	if expires > 0 && e.isLive(ctx, id, l) {
		e.metrics.IncSubscribe(string(PurposeSharedLine), resultSkipped)
		l.Debug("Subscription already live", zap.String("id", id))
		return false, nil
	}

	req := &sip.Request{
		Method:     sip.MethodSubscribe,
		RequestURI: target.Raw,
		To:         aor.Raw,
		From:       aor.Raw,
		RouteProxy: e.opts.OutboundProxy,
		Headers: []sip.Header{
			{Name: "Event", Value: EventSharedLine},
			{Name: "Accept", Value: acceptDialogInfo},
			{Name: "Contact", Value: "<" + e.opts.ServerAddress + ">"},
			{Name: "Expires", Value: strconv.Itoa(expires)},
		},
		CorrelationID: id,
		Expires:       expires,
	}

	l.Info("Sending shared-line subscribe", zap.Int("expires", expires))
	return e.submit(ctx, PurposeSharedLine, req, l, nil)
}

// SubscribeRegInfo establishes a reg-event subscription toward user unless
// one is already live.
func (e *Emitter) SubscribeRegInfo(ctx context.Context, user string) (bool, error) {
	l := e.logger.With(zap.String("user", user))

	if _, err := sip.ParseURI(user); err != nil {
		e.metrics.IncSubscribe(string(PurposeRegInfo), resultFailed)
		return false, fmt.Errorf("%w: %q", ErrInvalidTarget, user)
	}

	id := CorrelationID(PurposeRegInfo, user)
	if e.isLive(ctx, id, l) {
		e.metrics.IncSubscribe(string(PurposeRegInfo), resultSkipped)
		l.Debug("User is already subscribed to reg event")
		return false, nil
	}

	req := &sip.Request{
		Method:     sip.MethodSubscribe,
		RequestURI: user,
		To:         user,
		From:       e.opts.ServerAddress,
		RouteProxy: e.opts.OutboundProxy,
		Headers: []sip.Header{
			{Name: "Event", Value: EventReg},
			{Name: "Accept", Value: acceptRegInfo},
			{Name: "Contact", Value: "<" + e.opts.ServerAddress + ">"},
			{Name: "Expires", Value: strconv.Itoa(e.opts.RegInfoExpires)},
		},
		CorrelationID: id,
		Expires:       e.opts.RegInfoExpires,
	}

	l.Info("Sending reg event subscribe")
	return e.submit(ctx, PurposeRegInfo, req, l, nil)
}

// Refresh sends a dialog SUBSCRIBE to a watched presentity on behalf of the
// server so that its current dialog state is notified again. onTimeout, if
// set, runs when no final reply arrives in time.
//
// The refresh is a one-shot fetch and carries no correlation id, so its
// reply never touches the shared-line subscription toward the same target.
func (e *Emitter) Refresh(ctx context.Context, user, domain, presentity string, onTimeout func()) error {
	l := e.logger.With(zap.String("user", user), zap.String("domain", domain))

	target, err := sip.ParseURI(presentity)
	if err != nil || !target.HasUserAndHost() {
		e.metrics.IncSubscribe(string(PurposeSharedLine), resultFailed)
		return fmt.Errorf("%w: %q", ErrInvalidTarget, presentity)
	}

	from := "sip:" + e.opts.RefreshUsername + "@" + domain
	req := &sip.Request{
		Method:     sip.MethodSubscribe,
		RequestURI: target.Raw,
		To:         target.Raw,
		From:       from,
		RouteProxy: e.opts.OutboundProxy,
		Headers: []sip.Header{
			{Name: "Event", Value: EventDialog},
			{Name: "Accept", Value: acceptDialogInfo},
			{Name: "Contact", Value: "<" + e.opts.ServerAddress + ">"},
			{Name: "Expires", Value: strconv.Itoa(e.opts.RefreshExpires)},
		},
		Expires: e.opts.RefreshExpires,
	}

	var onReply sip.ReplyFunc
	if onTimeout != nil {
		onReply = func(r sip.Reply) {
			if r.StatusCode == sip.StatusRequestTimeout {
				l.Info("Refresh timed out, endpoint considered gone")
				onTimeout()
			}
		}
	}

	l.Debug("Sending refresh subscribe", zap.String("presentity", target.Raw))
	_, err = e.submit(ctx, PurposeSharedLine, req, l, onReply)
	return err
}

// isLive treats a failing liveness lookup as not live; a duplicate SUBSCRIBE
// only refreshes the existing subscription.
func (e *Emitter) isLive(ctx context.Context, id string, l *zap.Logger) bool {
	live, err := e.transport.HasLiveSubscription(ctx, id)
	if err != nil {
		l.Warn("Subscription lookup failed", zap.String("id", id), zap.Error(err))
		return false
	}
	return live
}

func (e *Emitter) submit(ctx context.Context, purpose Purpose, req *sip.Request, l *zap.Logger, onReply sip.ReplyFunc) (bool, error) {
	err := e.transport.Submit(ctx, req, onReply)
	switch {
	case errors.Is(err, sip.ErrSubscriptionLive):
		e.metrics.IncSubscribe(string(purpose), resultSkipped)
		l.Debug("Subscription reserved by a concurrent intent", zap.String("id", req.CorrelationID))
		return false, nil
	case err != nil:
		e.metrics.IncSubscribe(string(purpose), resultFailed)
		l.Error("Failed to send subscribe", zap.Error(err))
		return false, err
	}
	e.metrics.IncSubscribe(string(purpose), resultSent)
	return true, nil
}
