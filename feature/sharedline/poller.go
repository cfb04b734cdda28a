package sharedline

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// UserSource lists shared-line users.
type UserSource interface {
	Users(ctx context.Context) ([]string, error)
}

// RegSubscriber establishes reg-event subscriptions.
type RegSubscriber interface {
	SubscribeRegInfo(ctx context.Context, user string) (bool, error)
}

// PollResult summarizes one poll.
type PollResult struct {
	Users      int `json:"users"`
	Subscribed int `json:"subscribed"`
	Live       int `json:"live"`
	Failed     int `json:"failed"`
}

// Poller keeps a reg-event subscription alive for every shared-line user.
type Poller struct {
	users      UserSource
	subscriber RegSubscriber
	interval   time.Duration
	logger     *zap.Logger
}

// NewPoller creates a poller.
func NewPoller(users UserSource, subscriber RegSubscriber, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{users: users, subscriber: subscriber, interval: interval, logger: logger}
}

// PollOnce subscribes to every user without a live reg-event subscription.
func (p *Poller) PollOnce(ctx context.Context) (PollResult, error) {
	var res PollResult

	users, err := p.users.Users(ctx)
	if err != nil {
		p.logger.Error("Cannot retrieve shared-line users", zap.Error(err))
		return res, err
	}
	res.Users = len(users)

	for _, u := range users {
		sent, err := p.subscriber.SubscribeRegInfo(ctx, u)
		switch {
		case err != nil:
			res.Failed++
			p.logger.Warn("Subscribe to reg event failed", zap.String("user", u), zap.Error(err))
		case sent:
			res.Subscribed++
		default:
			res.Live++
		}
	}

	p.logger.Info("Shared-line users polled",
		zap.Int("users", res.Users),
		zap.Int("subscribed", res.Subscribed),
		zap.Int("live", res.Live),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

// Run polls every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_, _ = p.PollOnce(ctx)
		}
	}
}
