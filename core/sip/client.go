package sip

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/emiago/sipgo"
	gosip "github.com/emiago/sipgo/sip"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client is a Transport backed by the sipgo transaction layer.
type Client struct {
	client  *sipgo.Client
	tracker *Tracker
	logger  *zap.Logger
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClient creates a transport on top of ua. Subscription liveness is kept in tracker.
func NewClient(ua *sipgo.UserAgent, tracker *Tracker, cfg Config, logger *zap.Logger) (*Client, error) {
	client, err := sipgo.NewClient(ua)
	if err != nil {
		return nil, fmt.Errorf("create sip client: %w", err)
	}

	timeout := time.Duration(cfg.TransactionTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 32 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		client:  client,
		tracker: tracker,
		logger:  logger,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Submit sends req and returns as soon as the transaction is created.
// onReply, if not nil, is invoked once with the final reply or a 408 on timeout.
// A SUBSCRIBE whose correlation id is already live is not sent and
// ErrSubscriptionLive is returned.
func (c *Client) Submit(ctx context.Context, req *Request, onReply ReplyFunc) error {
	if c.ctx.Err() != nil {
		return ErrTransportClosed
	}

	own := req.Clone()
	if own.CallID == "" {
		own.CallID = uuid.NewString()
	}
	if own.FromTag == "" {
		own.FromTag = newTag()
	}

	msg, err := buildMessage(own)
	if err != nil {
		return err
	}

	reserved, err := c.tracker.Reserve(ctx, own)
	held := err == nil
	if err != nil {
		// A registry outage must not stop subscriptions
		c.logger.Warn("Subscription reservation failed", zap.String("id", own.CorrelationID), zap.Error(err))
		reserved = true
	}
	if !reserved {
		return ErrSubscriptionLive
	}

	// The transaction outlives the caller's context
	tx, err := c.client.TransactionRequest(c.ctx, msg)
	if err != nil {
		if held {
			c.tracker.Release(ctx, own)
		}
		return fmt.Errorf("submit %s to %s: %w", req.Method, req.RequestURI, err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer tx.Terminate()
		reply := c.await(tx, own)
		c.tracker.Replied(c.ctx, reply)
		if onReply != nil {
			onReply(reply)
		}
	}()
	return nil
}

// HasLiveSubscription reports whether a pending or active SUBSCRIBE exists for id.
func (c *Client) HasLiveSubscription(ctx context.Context, id string) (bool, error) {
	return c.tracker.IsLive(ctx, id)
}

// MatchDialog returns the live subscription established on dialog d.
func (c *Client) MatchDialog(ctx context.Context, d DialogID) (*SubscriptionRecord, error) {
	return c.tracker.MatchDialog(ctx, d)
}

// Close stops waiting for outstanding replies.
func (c *Client) Close() error {
	c.cancel()
	c.wg.Wait()
	return c.client.Close()
}

func (c *Client) await(tx gosip.ClientTransaction, req *Request) Reply {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	for {
		select {
		case res := <-tx.Responses():
			if res == nil {
				continue
			}
			if res.StatusCode < 200 {
				continue
			}
			return Reply{
				StatusCode: int(res.StatusCode),
				Reason:     res.Reason,
				Expires:    responseExpires(res),
				ToTag:      responseToTag(res),
				Request:    req,
			}
		case <-tx.Done():
			if err := tx.Err(); err != nil {
				c.logger.Debug("Transaction ended without final reply", zap.String("id", req.CorrelationID), zap.Error(err))
			}
			return timeoutReply(req)
		case <-timer.C:
			return timeoutReply(req)
		case <-c.ctx.Done():
			return timeoutReply(req)
		}
	}
}

func timeoutReply(req *Request) Reply {
	return Reply{StatusCode: StatusRequestTimeout, Reason: "Request Timeout", Expires: -1, Request: req}
}

func responseExpires(res *gosip.Response) int {
	h := res.GetHeader("Expires")
	if h == nil {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimSpace(h.Value()))
	if err != nil {
		return -1
	}
	return n
}

func responseToTag(res *gosip.Response) string {
	to := res.To()
	if to == nil {
		return ""
	}
	tag, _ := to.Params.Get("tag")
	return tag
}

func newTag() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// buildMessage converts req into a sipgo request. Via, Call-ID and CSeq are
// filled in by the sipgo client unless req carries its own Call-ID.
func buildMessage(req *Request) (*gosip.Request, error) {
	var recipient gosip.Uri
	if err := gosip.ParseUri(trimBrackets(req.RequestURI), &recipient); err != nil {
		return nil, fmt.Errorf("%w: request uri %q: %v", ErrInvalidRequest, req.RequestURI, err)
	}

	msg := gosip.NewRequest(gosip.RequestMethod(req.Method), recipient)

	var to gosip.Uri
	if err := gosip.ParseUri(trimBrackets(req.To), &to); err != nil {
		return nil, fmt.Errorf("%w: to uri %q: %v", ErrInvalidRequest, req.To, err)
	}
	msg.AppendHeader(&gosip.ToHeader{Address: to, Params: gosip.NewParams()})

	var from gosip.Uri
	if err := gosip.ParseUri(trimBrackets(req.From), &from); err != nil {
		return nil, fmt.Errorf("%w: from uri %q: %v", ErrInvalidRequest, req.From, err)
	}
	fromHeader := &gosip.FromHeader{Address: from, Params: gosip.NewParams()}
	tag := req.FromTag
	if tag == "" {
		tag = newTag()
	}
	fromHeader.Params.Add("tag", tag)
	msg.AppendHeader(fromHeader)

	if req.CallID != "" {
		callID := gosip.CallIDHeader(req.CallID)
		msg.AppendHeader(&callID)
	}

	if req.RouteProxy != "" {
		proxy, err := ParseURI(req.RouteProxy)
		if err != nil {
			return nil, err
		}
		msg.AppendHeader(gosip.NewHeader("Route", "<"+proxy.Raw+";lr>"))
		msg.SetDestination(proxy.HostPort())
	}

	all := append(append([]Header(nil), req.Headers...), ParseHeaderLines(req.Extra)...)
	for _, h := range all {
		switch strings.ToLower(h.Name) {
		case "max-forwards":
			n, err := strconv.Atoi(h.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: max-forwards %q", ErrInvalidRequest, h.Value)
			}
			mf := gosip.MaxForwardsHeader(n)
			msg.AppendHeader(&mf)
		case "expires":
			n, err := strconv.Atoi(h.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: expires %q", ErrInvalidRequest, h.Value)
			}
			exp := gosip.ExpiresHeader(n)
			msg.AppendHeader(&exp)
		case "content-type":
			ct := gosip.ContentTypeHeader(h.Value)
			msg.AppendHeader(&ct)
		case "contact":
			var contact gosip.Uri
			if err := gosip.ParseUri(trimBrackets(h.Value), &contact); err != nil {
				return nil, fmt.Errorf("%w: contact %q: %v", ErrInvalidRequest, h.Value, err)
			}
			msg.AppendHeader(&gosip.ContactHeader{Address: contact})
		case "content-length":
			// SetBody maintains it
		default:
			msg.AppendHeader(gosip.NewHeader(h.Name, h.Value))
		}
	}

	if len(req.Body) > 0 {
		msg.SetBody(req.Body)
	}
	return msg, nil
}

func trimBrackets(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSuffix(strings.TrimPrefix(s, "<"), ">")
}
