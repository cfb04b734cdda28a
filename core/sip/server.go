package sip

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"dialog-collator/core/metrics"

	"github.com/emiago/sipgo"
	gosip "github.com/emiago/sipgo/sip"
	"go.uber.org/zap"
)

// Event package keys dispatched by the NOTIFY server.
const (
	EventDialog     = "dialog"
	EventSharedLine = "dialog;sla"
	EventReg        = "reg"
)

// Notify is an inbound NOTIFY in transport-neutral form.
type Notify struct {
	Event             string
	RequestURI        string
	From              string
	To                string
	Contact           string
	CallID            string
	FromTag           string
	ToTag             string
	SubscriptionState string
	ContentType       string
	Body              []byte
}

// Response is the status a NotifyHandler wants sent back.
type Response struct {
	Code   int
	Reason string
}

// Common responses.
var (
	ResponseOK          = Response{Code: 200, Reason: "OK"}
	ResponseBadRequest  = Response{Code: 400, Reason: "Bad Request"}
	ResponseNoSuchCall  = Response{Code: 481, Reason: "Subscription Does Not Exist"}
	ResponseBadEvent    = Response{Code: 489, Reason: "Bad Event"}
	ResponseServerError = Response{Code: 500, Reason: "Server Internal Error"}
)

// NotifyHandler processes one NOTIFY of a given event package.
type NotifyHandler func(ctx context.Context, n *Notify) Response

// Server receives NOTIFY requests and dispatches them by event package.
type Server struct {
	server  *sipgo.Server
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu       sync.RWMutex
	handlers map[string]NotifyHandler
	ctx      context.Context
}

// NewServer creates a NOTIFY server on top of ua.
func NewServer(ua *sipgo.UserAgent, logger *zap.Logger, m *metrics.Metrics) (*Server, error) {
	srv, err := sipgo.NewServer(ua)
	if err != nil {
		return nil, err
	}

	s := &Server{
		server:   srv,
		logger:   logger,
		metrics:  m,
		handlers: make(map[string]NotifyHandler),
		ctx:      context.Background(),
	}
	srv.OnNotify(s.onNotify)
	return s, nil
}

// Handle registers h for the event package key (see EventKey).
func (s *Server) Handle(event string, h NotifyHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[EventKey(event)] = h
}

// ListenAndServe blocks serving NOTIFY requests until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, network, addr string) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.logger.Info("Starting SIP listener", zap.String("network", network), zap.String("addr", addr))
	return s.server.ListenAndServe(ctx, network, addr)
}

func (s *Server) onNotify(req *gosip.Request, tx gosip.ServerTransaction) {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()

	n := notifyFromMessage(req)
	resp := s.Dispatch(ctx, n)

	res := gosip.NewResponseFromRequest(req, resp.Code, resp.Reason, nil)
	if err := tx.Respond(res); err != nil {
		s.logger.Warn("Failed to respond to NOTIFY", zap.String("call_id", n.CallID), zap.Error(err))
	}
}

// Dispatch routes n to the registered handler and records the outcome.
func (s *Server) Dispatch(ctx context.Context, n *Notify) Response {
	key := EventKey(n.Event)

	s.mu.RLock()
	h, ok := s.handlers[key]
	s.mu.RUnlock()

	resp := ResponseBadEvent
	if ok {
		resp = h(ctx, n)
	} else {
		s.logger.Debug("No handler for event package", zap.String("event", n.Event))
	}

	s.metrics.IncNotify(key, strconv.Itoa(resp.Code))
	return resp
}

// EventKey normalizes an Event header value to a dispatch key: the lower-cased
// package name, suffixed with ";sla" when the sla parameter is present.
func EventKey(value string) string {
	parts := strings.Split(value, ";")
	key := strings.ToLower(strings.TrimSpace(parts[0]))
	for _, p := range parts[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "sla") {
			return key + ";sla"
		}
	}
	return key
}

func notifyFromMessage(req *gosip.Request) *Notify {
	n := &Notify{
		RequestURI: req.Recipient.String(),
		Body:       append([]byte(nil), req.Body()...),
	}
	if h := req.GetHeader("Event"); h != nil {
		n.Event = h.Value()
	}
	if h := req.GetHeader("Subscription-State"); h != nil {
		n.SubscriptionState = h.Value()
	}
	if h := req.GetHeader("Content-Type"); h != nil {
		n.ContentType = h.Value()
	}
	if h := req.CallID(); h != nil {
		n.CallID = h.Value()
	}
	if h := req.From(); h != nil {
		n.From = h.Address.String()
		n.FromTag, _ = h.Params.Get("tag")
	}
	if h := req.To(); h != nil {
		n.To = h.Address.String()
		n.ToTag, _ = h.Params.Get("tag")
	}
	if h := req.Contact(); h != nil {
		n.Contact = h.Address.String()
	}
	return n
}
