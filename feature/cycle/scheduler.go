package cycle

import (
	"context"
	"errors"
	"time"

	"dialog-collator/core/logger"
	"dialog-collator/core/metrics"
	"dialog-collator/feature/collator"
	"dialog-collator/feature/publish"
	"dialog-collator/feature/watchers"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pass names.
const (
	PassCheck   = "check"
	PassCollate = "collate"
)

// ErrPassDisabled is returned when a disabled pass is triggered.
var ErrPassDisabled = errors.New("pass is disabled")

// WatcherSource discovers the watchers of one pass.
type WatcherSource interface {
	Fetch(ctx context.Context) ([]watchers.Watcher, error)
}

// Refresher re-subscribes to a watched presentity.
type Refresher interface {
	Refresh(ctx context.Context, user, domain, presentity string, onTimeout func()) error
}

// Publisher sends collated documents.
type Publisher interface {
	Publish(ctx context.Context, info publish.Info) error
}

// Archiver keeps a copy of published documents.
type Archiver interface {
	Archive(ctx context.Context, presentity string, doc *collator.Document) error
}

// PassResult summarizes one pass.
type PassResult struct {
	Pass     string        `json:"pass"`
	ID       string        `json:"id"`
	Watchers int           `json:"watchers"`
	Sent     int           `json:"sent"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// Scheduler drives the active-check and collate-and-publish passes.
//
// Both passes run on the goroutine calling Run, so a pass never overlaps
// another pass started by the timers. Manual triggers through RunCheckPass
// and RunCollatePass are serialized with them.
type Scheduler struct {
	cfg       Config
	source    WatcherSource
	handle    collator.Handle
	refresher Refresher
	publisher Publisher
	archiver  Archiver
	metrics   *metrics.Metrics
	logger    *zap.Logger

	passes chan passRequest
}

type passRequest struct {
	pass  string
	reply chan passReply
}

type passReply struct {
	result PassResult
	err    error
}

// NewScheduler creates a scheduler. archiver may be nil.
func NewScheduler(cfg Config, source WatcherSource, handle collator.Handle, refresher Refresher, publisher Publisher, archiver Archiver, m *metrics.Metrics, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		source:    source,
		handle:    handle,
		refresher: refresher,
		publisher: publisher,
		archiver:  archiver,
		metrics:   m,
		logger:    logger,
		passes:    make(chan passRequest),
	}
}

// Run fires the enabled passes on their periods until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	var checkC, collateC <-chan time.Time
	if s.cfg.CheckEnabled {
		t := time.NewTicker(s.cfg.CheckPeriod())
		defer t.Stop()
		checkC = t.C
	}
	if s.cfg.CollateEnabled {
		t := time.NewTicker(s.cfg.CollatePeriod())
		defer t.Stop()
		collateC = t.C
	}

	s.logger.Info("Collation cycle started",
		zap.Bool("check", s.cfg.CheckEnabled),
		zap.Duration("check_period", s.cfg.CheckPeriod()),
		zap.Bool("collate", s.cfg.CollateEnabled),
		zap.Duration("collate_period", s.cfg.CollatePeriod()),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Collation cycle stopped")
			return nil
		case <-checkC:
			_, _ = s.checkPass(ctx)
		case <-collateC:
			_, _ = s.collatePass(ctx)
		case req := <-s.passes:
			var reply passReply
			switch req.pass {
			case PassCheck:
				reply.result, reply.err = s.checkPass(ctx)
			case PassCollate:
				reply.result, reply.err = s.collatePass(ctx)
			}
			req.reply <- reply
		}
	}
}

// RunCheckPass runs the active-check pass on the scheduler goroutine and
// waits for its result.
func (s *Scheduler) RunCheckPass(ctx context.Context) (PassResult, error) {
	if !s.cfg.CheckEnabled {
		return PassResult{Pass: PassCheck}, ErrPassDisabled
	}
	return s.trigger(ctx, PassCheck)
}

// RunCollatePass runs the collate-and-publish pass on the scheduler
// goroutine and waits for its result.
func (s *Scheduler) RunCollatePass(ctx context.Context) (PassResult, error) {
	if !s.cfg.CollateEnabled {
		return PassResult{Pass: PassCollate}, ErrPassDisabled
	}
	return s.trigger(ctx, PassCollate)
}

func (s *Scheduler) trigger(ctx context.Context, pass string) (PassResult, error) {
	req := passRequest{pass: pass, reply: make(chan passReply, 1)}
	select {
	case s.passes <- req:
	case <-ctx.Done():
		return PassResult{Pass: pass}, ctx.Err()
	}
	select {
	case reply := <-req.reply:
		return reply.result, reply.err
	case <-ctx.Done():
		return PassResult{Pass: pass}, ctx.Err()
	}
}

func (s *Scheduler) begin(pass string) (PassResult, *zap.Logger) {
	res := PassResult{Pass: pass, ID: uuid.NewString()}
	return res, logger.WithPass(s.logger, pass, res.ID)
}

func (s *Scheduler) finish(res *PassResult, start time.Time, l *zap.Logger) {
	res.Duration = time.Since(start)
	s.metrics.ObservePass(res.Pass, res.Duration.Seconds(), res.Watchers)
	l.Info("Pass finished",
		zap.Int("watchers", res.Watchers),
		zap.Int("sent", res.Sent),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
		zap.Duration("duration", res.Duration),
	)
}

// checkPass re-subscribes every watcher whose identity is active. An identity
// whose refresh times out is fed an empty body so its dialogs end.
func (s *Scheduler) checkPass(ctx context.Context) (PassResult, error) {
	start := time.Now()
	res, l := s.begin(PassCheck)

	list, err := s.source.Fetch(ctx)
	if err != nil {
		l.Error("Watcher discovery failed", zap.Error(err))
		return res, err
	}
	res.Watchers = len(list)

	for _, w := range list {
		if !s.handle.IsActive(w.User, w.Domain) {
			res.Skipped++
			continue
		}

		user, domain := w.User, w.Domain
		onTimeout := func() {
			if err := s.handle.QueueDialog(user, domain, nil); err != nil {
				l.Warn("Failed to queue empty dialog", zap.String("user", user), zap.String("domain", domain), zap.Error(err))
			}
		}
		if err := s.refresher.Refresh(ctx, w.User, w.Domain, w.PresentityURI, onTimeout); err != nil {
			res.Failed++
			l.Warn("Refresh failed", zap.String("user", w.User), zap.String("domain", w.Domain), zap.Error(err))
			continue
		}
		res.Sent++
	}

	s.finish(&res, start, l)
	return res, nil
}

// collatePass publishes a fresh document for every watcher the handle has
// something new for. Every document is released, published or not.
func (s *Scheduler) collatePass(ctx context.Context) (PassResult, error) {
	start := time.Now()
	res, l := s.begin(PassCollate)

	list, err := s.source.Fetch(ctx)
	if err != nil {
		l.Error("Watcher discovery failed", zap.Error(err))
		return res, err
	}
	res.Watchers = len(list)

	for _, w := range list {
		wl := l.With(zap.String("user", w.User), zap.String("domain", w.Domain))

		doc, err := s.handle.BuildFromQueue(w.User, w.Domain)
		if err != nil {
			res.Failed++
			wl.Warn("Build failed", zap.Error(err))
			continue
		}
		if doc == nil {
			res.Skipped++
			continue
		}

		if s.publishDocument(ctx, w.PresentityURI, doc, wl) {
			res.Sent++
		} else {
			res.Failed++
		}
	}

	s.finish(&res, start, l)
	return res, nil
}

func (s *Scheduler) publishDocument(ctx context.Context, presentity string, doc *collator.Document, l *zap.Logger) bool {
	defer s.handle.Release(doc)

	err := s.publisher.Publish(ctx, publish.Info{
		PresURI:     presentity,
		Body:        doc.Body,
		ContentType: doc.ContentType,
		Expires:     s.cfg.PublishExpires,
	})
	if err != nil {
		l.Warn("Publish failed", zap.Error(err))
		return false
	}

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, presentity, doc); err != nil {
			l.Warn("Archive failed", zap.Error(err))
		}
	}
	return true
}
