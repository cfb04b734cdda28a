package sharedline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticUsers struct {
	users []string
	err   error
}

func (s staticUsers) Users(context.Context) ([]string, error) {
	return s.users, s.err
}

type fakeRegSubscriber struct {
	live   map[string]bool
	failOn string
	called []string
}

func (f *fakeRegSubscriber) SubscribeRegInfo(_ context.Context, user string) (bool, error) {
	f.called = append(f.called, user)
	if user == f.failOn {
		return false, errors.New("transport closed")
	}
	if f.live[user] {
		return false, nil
	}
	f.live[user] = true
	return true, nil
}

func TestPoller_PollOnce(t *testing.T) {
	subs := &fakeRegSubscriber{live: map[string]bool{"sip:b@d": true}, failOn: "sip:c@d"}
	p := NewPoller(staticUsers{users: []string{"sip:a@d", "sip:b@d", "sip:c@d"}}, subs, time.Minute, zap.NewNop())

	res, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PollResult{Users: 3, Subscribed: 1, Live: 1, Failed: 1}, res)
	assert.Equal(t, []string{"sip:a@d", "sip:b@d", "sip:c@d"}, subs.called)

	res, err = p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Subscribed)
	assert.Equal(t, 2, res.Live)
}

func TestPoller_SourceError(t *testing.T) {
	subs := &fakeRegSubscriber{live: map[string]bool{}}
	p := NewPoller(staticUsers{err: assert.AnError}, subs, time.Minute, zap.NewNop())

	_, err := p.PollOnce(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, subs.called)
}

func TestPoller_RunStops(t *testing.T) {
	p := NewPoller(staticUsers{}, &fakeRegSubscriber{live: map[string]bool{}}, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, p.Run(ctx))
}
