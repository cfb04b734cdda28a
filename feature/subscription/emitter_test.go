package subscription

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"dialog-collator/core/sip"
	"dialog-collator/core/sip/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOptions() Options {
	return Options{
		ServerAddress: "sip:10.0.0.1:5060",
		OutboundProxy: "sip:proxy.example.com",
	}
}

// trackedTransport reserves and settles submissions in a tracker the way the
// sipgo client does. A non-zero reply code is delivered synchronously.
type trackedTransport struct {
	tracker *sip.Tracker
	reply   int
	// lookups, when set, holds every liveness lookup until all expected
	// callers have looked up.
	lookups *sync.WaitGroup

	mu   sync.Mutex
	sent []*sip.Request
	seq  int
}

func newTrackedTransport() *trackedTransport {
	return &trackedTransport{
		tracker: sip.NewTracker(sip.NewMemoryRegistry(), 32*time.Second, 10*time.Second, zap.NewNop()),
	}
}

func (t *trackedTransport) Submit(ctx context.Context, req *sip.Request, onReply sip.ReplyFunc) error {
	own := req.Clone()
	t.mu.Lock()
	t.seq++
	own.CallID = fmt.Sprintf("call-%d", t.seq)
	own.FromTag = fmt.Sprintf("tag-%d", t.seq)
	t.mu.Unlock()

	ok, err := t.tracker.Reserve(ctx, own)
	if err != nil {
		return err
	}
	if !ok {
		return sip.ErrSubscriptionLive
	}

	t.mu.Lock()
	t.sent = append(t.sent, own)
	t.mu.Unlock()

	if t.reply != 0 {
		r := sip.Reply{StatusCode: t.reply, Expires: -1, ToTag: "remote", Request: own}
		t.tracker.Replied(ctx, r)
		if onReply != nil {
			onReply(r)
		}
	}
	return nil
}

func (t *trackedTransport) HasLiveSubscription(ctx context.Context, id string) (bool, error) {
	live, err := t.tracker.IsLive(ctx, id)
	if t.lookups != nil {
		t.lookups.Done()
		t.lookups.Wait()
	}
	return live, err
}

func (t *trackedTransport) MatchDialog(ctx context.Context, d sip.DialogID) (*sip.SubscriptionRecord, error) {
	return t.tracker.MatchDialog(ctx, d)
}

func (t *trackedTransport) requests() []*sip.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*sip.Request(nil), t.sent...)
}

func expiry(n int) *int { return &n }

func TestCorrelationID(t *testing.T) {
	a := CorrelationID(PurposeSharedLine, "sip:b@1.2.3.4")
	b := CorrelationID(PurposeSharedLine, "sip:b@1.2.3.4")

	assert.Equal(t, "BLA_SUBSCRIBE.sip:b@1.2.3.4", a)
	assert.Equal(t, a, b)
	assert.Equal(t, "REG_SUBSCRIBE.sip:b@1.2.3.4", CorrelationID(PurposeRegInfo, "sip:b@1.2.3.4"))
	assert.NotEqual(t, a, CorrelationID(PurposeSharedLine, "sip:c@1.2.3.4"))
}

func TestEmitter_Subscribe(t *testing.T) {
	transport := new(mocks.Transport)
	transport.On("HasLiveSubscription", mock.Anything, "BLA_SUBSCRIBE.sip:b@1.2.3.4").Return(false, nil)
	transport.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	e := NewEmitter(transport, testOptions(), nil, zap.NewNop())
	sent, err := e.Subscribe(context.Background(), Intent{AOR: "sip:a@d", Target: "sip:b@1.2.3.4", Expires: expiry(120)})
	require.NoError(t, err)
	assert.True(t, sent)

	reqs := transport.Requests()
	require.Len(t, reqs, 1)
	req := reqs[0]
	assert.Equal(t, sip.MethodSubscribe, req.Method)
	assert.Equal(t, "sip:b@1.2.3.4", req.RequestURI)
	assert.Equal(t, "sip:a@d", req.To)
	assert.Equal(t, "sip:a@d", req.From)
	assert.Equal(t, "sip:proxy.example.com", req.RouteProxy)
	assert.Equal(t, 120, req.Expires)
	assert.Equal(t, "BLA_SUBSCRIBE.sip:b@1.2.3.4", req.CorrelationID)

	event, _ := req.Header("Event")
	assert.Equal(t, "dialog;sla", event)
	expires, _ := req.Header("expires")
	assert.Equal(t, "120", expires)
	contact, _ := req.Header("Contact")
	assert.Equal(t, "<sip:10.0.0.1:5060>", contact)
	transport.AssertExpectations(t)
}

func TestEmitter_SubscribeDefaultExpires(t *testing.T) {
	transport := new(mocks.Transport)
	transport.On("HasLiveSubscription", mock.Anything, mock.Anything).Return(false, nil)
	transport.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	e := NewEmitter(transport, testOptions(), nil, zap.NewNop())
	_, err := e.Subscribe(context.Background(), Intent{AOR: "sip:a@d", Target: "sip:b@1.2.3.4"})
	require.NoError(t, err)
	assert.Equal(t, 180, transport.Requests()[0].Expires)
}

func TestEmitter_SubscribeRejectsTargets(t *testing.T) {
	tests := []struct {
		name   string
		intent Intent
		want   error
	}{
		{"No user", Intent{AOR: "sip:a@d", Target: "sip:1.2.3.4"}, ErrInvalidTarget},
		{"Empty", Intent{AOR: "sip:a@d", Target: ""}, ErrInvalidTarget},
		{"Bad aor", Intent{AOR: "", Target: "sip:b@1.2.3.4"}, ErrInvalidAOR},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(mocks.Transport)
			e := NewEmitter(transport, testOptions(), nil, zap.NewNop())

			sent, err := e.Subscribe(context.Background(), tt.intent)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, sent)
			assert.Empty(t, transport.Requests())
		})
	}
}

func TestEmitter_SubscribeSkipsLive(t *testing.T) {
	transport := new(mocks.Transport)
	transport.On("HasLiveSubscription", mock.Anything, mock.Anything).Return(true, nil)

	e := NewEmitter(transport, testOptions(), nil, zap.NewNop())
	sent, err := e.Subscribe(context.Background(), Intent{AOR: "sip:a@d", Target: "sip:b@1.2.3.4"})
	require.NoError(t, err)
	assert.False(t, sent)
	transport.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}

func TestEmitter_SubscribeIdempotent(t *testing.T) {
	transport := newTrackedTransport()
	e := NewEmitter(transport, testOptions(), nil, zap.NewNop())
	in := Intent{AOR: "sip:a@d", Target: "sip:b@1.2.3.4", Expires: expiry(60)}

	first, err := e.Subscribe(context.Background(), in)
	require.NoError(t, err)
	second, err := e.Subscribe(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	assert.Len(t, transport.requests(), 1)
}

func TestEmitter_SubscribeConcurrentIntents(t *testing.T) {
	transport := newTrackedTransport()
	// Both callers pass the liveness lookup before either submits
	transport.lookups = new(sync.WaitGroup)
	transport.lookups.Add(2)
	e := NewEmitter(transport, testOptions(), nil, zap.NewNop())
	in := Intent{AOR: "sip:a@d", Target: "sip:b@1.2.3.4"}

	var (
		wg   sync.WaitGroup
		sent [2]bool
		errs [2]error
	)
	for i := range sent {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sent[i], errs[i] = e.Subscribe(context.Background(), in)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.True(t, sent[0] != sent[1], "exactly one caller reports a sent request")
	require.Len(t, transport.requests(), 1)
	assert.Equal(t, "BLA_SUBSCRIBE.sip:b@1.2.3.4", transport.requests()[0].CorrelationID)
}

func TestEmitter_SubscribeZeroExpiresUnsubscribes(t *testing.T) {
	transport := newTrackedTransport()
	transport.reply = 200
	e := NewEmitter(transport, testOptions(), nil, zap.NewNop())
	ctx := context.Background()

	sent, err := e.Subscribe(ctx, Intent{AOR: "sip:a@d", Target: "sip:b@1.2.3.4"})
	require.NoError(t, err)
	require.True(t, sent)

	// A live subscription does not hold back the unsubscribe
	sent, err = e.Subscribe(ctx, Intent{AOR: "sip:a@d", Target: "sip:b@1.2.3.4", Expires: expiry(0)})
	require.NoError(t, err)
	assert.True(t, sent)

	reqs := transport.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, 0, reqs[1].Expires)
	expires, _ := reqs[1].Header("Expires")
	assert.Equal(t, "0", expires)

	live, err := transport.tracker.IsLive(ctx, "BLA_SUBSCRIBE.sip:b@1.2.3.4")
	require.NoError(t, err)
	assert.False(t, live)
}

func TestEmitter_SubscribeNegativeExpires(t *testing.T) {
	transport := new(mocks.Transport)
	e := NewEmitter(transport, testOptions(), nil, zap.NewNop())

	sent, err := e.Subscribe(context.Background(), Intent{AOR: "sip:a@d", Target: "sip:b@1.2.3.4", Expires: expiry(-1)})
	assert.ErrorIs(t, err, ErrInvalidExpires)
	assert.False(t, sent)
	assert.Empty(t, transport.Requests())
}

func TestEmitter_SubscribeLostReservation(t *testing.T) {
	transport := new(mocks.Transport)
	transport.On("HasLiveSubscription", mock.Anything, mock.Anything).Return(false, nil)
	transport.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(sip.ErrSubscriptionLive)

	e := NewEmitter(transport, testOptions(), nil, zap.NewNop())
	sent, err := e.Subscribe(context.Background(), Intent{AOR: "sip:a@d", Target: "sip:b@1.2.3.4"})
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestEmitter_SubscribeSubmitError(t *testing.T) {
	transport := new(mocks.Transport)
	transport.On("HasLiveSubscription", mock.Anything, mock.Anything).Return(false, assert.AnError)
	transport.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(sip.ErrTransportClosed)

	e := NewEmitter(transport, testOptions(), nil, zap.NewNop())
	_, err := e.Subscribe(context.Background(), Intent{AOR: "sip:a@d", Target: "sip:b@1.2.3.4"})
	assert.ErrorIs(t, err, sip.ErrTransportClosed)
}

func TestEmitter_SubscribeRegInfo(t *testing.T) {
	transport := newTrackedTransport()
	e := NewEmitter(transport, testOptions(), nil, zap.NewNop())

	sent, err := e.SubscribeRegInfo(context.Background(), "sip:bob@example.com")
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = e.SubscribeRegInfo(context.Background(), "sip:bob@example.com")
	require.NoError(t, err)
	assert.False(t, sent)

	require.Len(t, transport.requests(), 1)
	req := transport.requests()[0]
	assert.Equal(t, "REG_SUBSCRIBE.sip:bob@example.com", req.CorrelationID)
	assert.Equal(t, "sip:10.0.0.1:5060", req.From)
	assert.Equal(t, 180, req.Expires)
	event, _ := req.Header("Event")
	assert.Equal(t, "reg", event)
}

func TestEmitter_Refresh(t *testing.T) {
	transport := new(mocks.Transport)
	transport.On("Submit", mock.Anything, mock.Anything, mock.Anything).
		Run(mocks.Reply(sip.StatusRequestTimeout)).
		Return(nil)

	e := NewEmitter(transport, testOptions(), nil, zap.NewNop())

	gone := false
	err := e.Refresh(context.Background(), "u2", "d2", "sip:u2@d2", func() { gone = true })
	require.NoError(t, err)
	assert.True(t, gone)

	req := transport.Requests()[0]
	assert.Equal(t, "sip:u2@d2", req.RequestURI)
	assert.Equal(t, "sip:presence@d2", req.From)
	assert.Equal(t, 0, req.Expires)
	assert.Empty(t, req.CorrelationID)
	event, _ := req.Header("Event")
	assert.Equal(t, "dialog", event)
}

func TestEmitter_RefreshKeepsSharedLineSubscription(t *testing.T) {
	transport := newTrackedTransport()
	transport.reply = 200
	e := NewEmitter(transport, testOptions(), nil, zap.NewNop())
	ctx := context.Background()

	sent, err := e.Subscribe(ctx, Intent{AOR: "sip:a@d", Target: "sip:b@1.2.3.4"})
	require.NoError(t, err)
	require.True(t, sent)

	require.NoError(t, e.Refresh(ctx, "b", "1.2.3.4", "sip:b@1.2.3.4", nil))
	require.Len(t, transport.requests(), 2)

	live, err := transport.tracker.IsLive(ctx, "BLA_SUBSCRIBE.sip:b@1.2.3.4")
	require.NoError(t, err)
	assert.True(t, live)

	sent, err = e.Subscribe(ctx, Intent{AOR: "sip:a@d", Target: "sip:b@1.2.3.4"})
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestEmitter_RefreshIgnoresSuccess(t *testing.T) {
	transport := new(mocks.Transport)
	transport.On("Submit", mock.Anything, mock.Anything, mock.Anything).
		Run(mocks.Reply(200)).
		Return(nil)

	e := NewEmitter(transport, testOptions(), nil, zap.NewNop())

	gone := false
	require.NoError(t, e.Refresh(context.Background(), "u", "d", "sip:u@d", func() { gone = true }))
	assert.False(t, gone)
}
