package sip

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Tracker keeps a SubscriptionRegistry in step with SUBSCRIBE transactions.
//
// A SUBSCRIBE is reserved as pending for the transaction timeout before it
// is sent. A 2xx reply makes it active for the granted expiry minus the
// refresh margin. Any other final reply, or an expiry of zero, removes it.
// Every record is stored under its correlation id and indexed under the
// Call-ID of its dialog.
type Tracker struct {
	registry      SubscriptionRegistry
	pendingTTL    time.Duration
	refreshMargin time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewTracker creates a tracker over registry.
func NewTracker(registry SubscriptionRegistry, pendingTTL, refreshMargin time.Duration, logger *zap.Logger) *Tracker {
	return &Tracker{
		registry:      registry,
		pendingTTL:    pendingTTL,
		refreshMargin: refreshMargin,
		logger:        logger,
		now:           time.Now,
	}
}

func tracked(req *Request) bool {
	return req != nil && req.Method == MethodSubscribe && req.CorrelationID != ""
}

func (t *Tracker) record(req *Request, state string, expires int, remoteTag string) SubscriptionRecord {
	return SubscriptionRecord{
		CorrelationID: req.CorrelationID,
		Target:        req.RequestURI,
		Expires:       expires,
		State:         state,
		UpdatedAt:     t.now(),
		CallID:        req.CallID,
		LocalTag:      req.FromTag,
		RemoteTag:     remoteTag,
	}
}

func keys(req *Request) []string {
	if req.CallID == "" {
		return []string{req.CorrelationID}
	}
	return []string{req.CorrelationID, DialogKey(req.CallID)}
}

// Reserve claims the correlation id of req as pending. It reports false
// when a live record already holds it. Requests that establish nothing
// (untracked, or with a zero expiry) are never held back.
func (t *Tracker) Reserve(ctx context.Context, req *Request) (bool, error) {
	if !tracked(req) || req.Expires <= 0 {
		return true, nil
	}

	rec := t.record(req, StatePending, req.Expires, "")
	ok, err := t.registry.Reserve(ctx, req.CorrelationID, rec, t.pendingTTL)
	if err != nil || !ok {
		return false, err
	}
	if req.CallID != "" {
		if err := t.registry.Put(ctx, DialogKey(req.CallID), rec, t.pendingTTL); err != nil {
			t.logger.Warn("Failed to index pending subscription", zap.String("id", req.CorrelationID), zap.Error(err))
		}
	}
	return true, nil
}

// Release drops the reservation of a request that was never sent.
func (t *Tracker) Release(ctx context.Context, req *Request) {
	if !tracked(req) || req.Expires <= 0 {
		return
	}
	if err := t.registry.Delete(ctx, keys(req)...); err != nil {
		t.logger.Warn("Failed to release subscription", zap.String("id", req.CorrelationID), zap.Error(err))
	}
}

// Replied applies the final reply to the registry.
func (t *Tracker) Replied(ctx context.Context, reply Reply) {
	req := reply.Request
	if !tracked(req) {
		return
	}

	expires := req.Expires
	if reply.Expires >= 0 {
		expires = reply.Expires
	}
	ttl := time.Duration(expires)*time.Second - t.refreshMargin

	if !reply.IsSuccess() || ttl <= 0 {
		if err := t.registry.Delete(ctx, keys(req)...); err != nil {
			t.logger.Warn("Failed to drop subscription", zap.String("id", req.CorrelationID), zap.Error(err))
		}
		return
	}

	rec := t.record(req, StateActive, expires, reply.ToTag)
	for _, k := range keys(req) {
		if err := t.registry.Put(ctx, k, rec, ttl); err != nil {
			t.logger.Warn("Failed to record active subscription", zap.String("id", req.CorrelationID), zap.Error(err))
		}
	}
}

// IsLive reports whether a pending or active record exists for id.
func (t *Tracker) IsLive(ctx context.Context, id string) (bool, error) {
	rec, err := t.registry.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// MatchDialog returns the live record of dialog d. The Call-ID selects the
// record; the tags must agree with the ones it holds.
func (t *Tracker) MatchDialog(ctx context.Context, d DialogID) (*SubscriptionRecord, error) {
	if d.CallID == "" {
		return nil, nil
	}
	rec, err := t.registry.Get(ctx, DialogKey(d.CallID))
	if err != nil || rec == nil {
		return nil, err
	}
	if rec.LocalTag != "" && rec.LocalTag != d.LocalTag {
		return nil, nil
	}
	if rec.RemoteTag != "" && rec.RemoteTag != d.RemoteTag {
		return nil, nil
	}
	return rec, nil
}
