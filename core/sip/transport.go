package sip

import (
	"context"
	"errors"
)

// StatusRequestTimeout is reported for replies that never arrived.
const StatusRequestTimeout = 408

var (
	// ErrInvalidRequest is returned when a request cannot be turned into a SIP message.
	ErrInvalidRequest = errors.New("invalid sip request")
	// ErrTransportClosed is returned when submitting on a closed transport.
	ErrTransportClosed = errors.New("sip transport closed")
	// ErrSubscriptionLive is returned by Submit when another SUBSCRIBE with
	// the same correlation id is already pending or active. Nothing is sent.
	ErrSubscriptionLive = errors.New("subscription already live")
)

// DialogID identifies a dialog from the collator's side: LocalTag is the
// tag the collator put in From, RemoteTag the tag the peer answered with.
// For an inbound NOTIFY these are its To and From tags.
type DialogID struct {
	CallID    string
	LocalTag  string
	RemoteTag string
}

// Reply is the final outcome of a submitted request.
type Reply struct {
	// StatusCode is the final response code, or 408 on timeout.
	StatusCode int
	// Reason is the response reason phrase.
	Reason string
	// Expires is the Expires header of the response, -1 when absent.
	Expires int
	// ToTag is the To tag of the response, empty on timeout.
	ToTag string
	// Request is a private copy of the submitted request.
	Request *Request
}

// IsSuccess reports a 2xx final response.
func (r Reply) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ReplyFunc receives the final reply of a request. It runs on a transport
// goroutine after the submitting call has returned.
type ReplyFunc func(Reply)

// Transport submits requests without waiting for their replies and answers
// whether a subscription is currently live.
//
// Submit reserves the correlation id of a SUBSCRIBE with a positive expiry
// atomically and fails with ErrSubscriptionLive when it is taken.
type Transport interface {
	Submit(ctx context.Context, req *Request, onReply ReplyFunc) error
	HasLiveSubscription(ctx context.Context, correlationID string) (bool, error)
	// MatchDialog returns the live subscription established on dialog d,
	// or nil when there is none.
	MatchDialog(ctx context.Context, d DialogID) (*SubscriptionRecord, error)
}
