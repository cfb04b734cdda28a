package mocks

import (
	"context"
	"sync"

	"dialog-collator/core/sip"

	"github.com/stretchr/testify/mock"
)

// Transport is a mock implementation of sip.Transport.
// Every submitted request is also recorded for inspection.
type Transport struct {
	mock.Mock

	mu       sync.Mutex
	requests []*sip.Request
}

func (m *Transport) Submit(ctx context.Context, req *sip.Request, onReply sip.ReplyFunc) error {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	args := m.Called(ctx, req, onReply)
	return args.Error(0)
}

func (m *Transport) HasLiveSubscription(ctx context.Context, correlationID string) (bool, error) {
	args := m.Called(ctx, correlationID)
	return args.Bool(0), args.Error(1)
}

func (m *Transport) MatchDialog(ctx context.Context, d sip.DialogID) (*sip.SubscriptionRecord, error) {
	args := m.Called(ctx, d)
	if rec, ok := args.Get(0).(*sip.SubscriptionRecord); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

// Requests returns the submitted requests in order.
func (m *Transport) Requests() []*sip.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*sip.Request(nil), m.requests...)
}

// Reply returns a Run function that answers the submitted request with code.
func Reply(code int) func(mock.Arguments) {
	return func(args mock.Arguments) {
		req := args.Get(1).(*sip.Request)
		if onReply, ok := args.Get(2).(sip.ReplyFunc); ok && onReply != nil {
			onReply(sip.Reply{StatusCode: code, Expires: -1, Request: req.Clone()})
		}
	}
}
