package notify

import (
	"context"
	"errors"
	"strings"

	"dialog-collator/core/sip"
	"dialog-collator/feature/collator"
	"dialog-collator/feature/publish"
	"dialog-collator/feature/reginfo"
	"dialog-collator/feature/subscription"

	"go.uber.org/zap"
)

// Publisher sends PUBLISH requests.
type Publisher interface {
	Publish(ctx context.Context, info publish.Info) error
}

// Subscriber establishes shared-line subscriptions.
type Subscriber interface {
	Subscribe(ctx context.Context, in subscription.Intent) (bool, error)
}

// Router registers NOTIFY handlers by event package.
type Router interface {
	Handle(event string, h sip.NotifyHandler)
}

// Options switch the handlers' behaviour.
type Options struct {
	// CollateEnabled queues dialog bodies for the collate pass instead of
	// publishing them right away.
	CollateEnabled bool
	// PollEnabled accepts reg-event NOTIFYs.
	PollEnabled bool
	// HeaderName carries the notifying contact on relayed shared-line PUBLISHes.
	HeaderName string
}

// Handlers process inbound NOTIFYs.
type Handlers struct {
	handle     collator.Handle
	publisher  Publisher
	subscriber Subscriber
	transport  sip.Transport
	parser     *reginfo.Parser
	opts       Options
	logger     *zap.Logger
}

// NewHandlers creates the NOTIFY handlers.
func NewHandlers(handle collator.Handle, publisher Publisher, subscriber Subscriber, transport sip.Transport, parser *reginfo.Parser, opts Options, logger *zap.Logger) *Handlers {
	return &Handlers{
		handle:     handle,
		publisher:  publisher,
		subscriber: subscriber,
		transport:  transport,
		parser:     parser,
		opts:       opts,
		logger:     logger,
	}
}

// Register installs the handlers on r.
func (h *Handlers) Register(r Router) {
	r.Handle(sip.EventDialog, h.Dialog)
	r.Handle(sip.EventReg, h.Reg)
	r.Handle(sip.EventSharedLine, h.SharedLine)
}

// Dialog handles dialog NOTIFYs from a presentity. The body is either queued
// for the next collate pass or collated and published at once.
func (h *Handlers) Dialog(ctx context.Context, n *sip.Notify) sip.Response {
	if len(n.Body) == 0 {
		return sip.ResponseOK
	}

	from, err := sip.ParseURI(n.From)
	if err != nil || !from.HasUserAndHost() {
		h.logger.Warn("Dialog notify without a usable From", zap.String("from", n.From))
		return sip.ResponseBadRequest
	}
	l := h.logger.With(zap.String("user", from.User), zap.String("domain", from.Host), zap.String("call_id", n.CallID))

	if h.opts.CollateEnabled {
		if err := h.handle.QueueDialog(from.User, from.Host, n.Body); err != nil {
			l.Warn("Failed to queue dialog", zap.Error(err))
			return responseFor(err)
		}
		return sip.ResponseOK
	}

	doc, err := h.handle.BuildFromNotify(from.User, from.Host, n.Body)
	if err != nil {
		l.Warn("Failed to collate dialog", zap.Error(err))
		return responseFor(err)
	}
	if doc == nil {
		return sip.ResponseOK
	}
	defer h.handle.Release(doc)

	err = h.publisher.Publish(ctx, publish.Info{
		PresURI:     from.AOR(),
		Body:        doc.Body,
		ContentType: doc.ContentType,
	})
	if err != nil {
		return sip.ResponseServerError
	}
	return sip.ResponseOK
}

// Reg handles reg-event NOTIFYs for shared-line users and subscribes to
// every contact that needs it.
func (h *Handlers) Reg(ctx context.Context, n *sip.Notify) sip.Response {
	if !h.opts.PollEnabled {
		h.logger.Warn("Reg event notify while shared-line polling is disabled")
		return sip.ResponseBadEvent
	}
	if len(n.Body) == 0 {
		return sip.ResponseOK
	}

	doc, err := h.parser.Parse(n.Body)
	if err != nil {
		h.logger.Error("Rejecting reg event document", zap.String("call_id", n.CallID), zap.Error(err))
		return sip.ResponseBadRequest
	}

	for _, in := range h.parser.Intents(doc) {
		if _, err := h.subscriber.Subscribe(ctx, in); err != nil {
			h.logger.Warn("Subscribe for contact failed", zap.String("aor", in.AOR), zap.String("target", in.Target), zap.Error(err))
		}
	}
	return sip.ResponseOK
}

// SharedLine relays a dialog;sla NOTIFY received on a shared-line
// subscription as a PUBLISH for the subscribing AOR. The NOTIFY is matched
// to its subscription by dialog (Call-ID and tags), so a Contact that
// differs from the subscribed target in its parameters still relays.
func (h *Handlers) SharedLine(ctx context.Context, n *sip.Notify) sip.Response {
	l := h.logger.With(zap.String("call_id", n.CallID), zap.String("contact", n.Contact))

	if n.Contact == "" {
		l.Warn("Shared-line notify without contact")
		return sip.ResponseBadRequest
	}
	contact, err := sip.ParseURI(n.Contact)
	if err != nil {
		l.Warn("Shared-line notify with bad contact", zap.Error(err))
		return sip.ResponseBadRequest
	}

	rec, err := h.transport.MatchDialog(ctx, sip.DialogID{CallID: n.CallID, LocalTag: n.ToTag, RemoteTag: n.FromTag})
	if err != nil {
		l.Error("Subscription lookup failed", zap.Error(err))
		return sip.ResponseServerError
	}
	if rec == nil || !strings.HasPrefix(rec.CorrelationID, string(subscription.PurposeSharedLine)+".") {
		l.Warn("Notify in a non existing subscription")
		return sip.ResponseNoSuchCall
	}
	l = l.With(zap.String("id", rec.CorrelationID))

	expires, err := SubscriptionExpires(n.SubscriptionState)
	if err != nil {
		l.Warn("Rejecting shared-line notify", zap.Error(err))
		return sip.ResponseBadRequest
	}
	if len(n.Body) == 0 {
		l.Warn("Shared-line notify without body")
		return sip.ResponseBadRequest
	}

	err = h.publisher.Publish(ctx, publish.Info{
		PresURI:     n.To,
		Body:        n.Body,
		ContentType: n.ContentType,
		Expires:     expires,
		Event:       sip.EventSharedLine,
		Extra:       h.opts.HeaderName + ": " + contact.Raw + "\r\n",
	})
	if err != nil {
		return sip.ResponseServerError
	}
	return sip.ResponseOK
}

func responseFor(err error) sip.Response {
	if errors.Is(err, collator.ErrMalformedFragment) {
		return sip.ResponseBadRequest
	}
	return sip.ResponseServerError
}
