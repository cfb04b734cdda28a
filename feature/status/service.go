package status

import (
	"context"
	"errors"
	"fmt"

	"dialog-collator/feature/archive"
	"dialog-collator/feature/cycle"
	"dialog-collator/feature/reginfo"
	"dialog-collator/feature/subscription"
	"dialog-collator/feature/watchers"

	"go.uber.org/zap"
)

// ErrUnknownPass is returned when a pass name is neither check nor collate.
var ErrUnknownPass = errors.New("unknown pass")

// ErrArchiveDisabled is returned when archive routes are used without an archive.
var ErrArchiveDisabled = errors.New("archive is disabled")

// Passes triggers scheduler passes on demand.
type Passes interface {
	RunCheckPass(ctx context.Context) (cycle.PassResult, error)
	RunCollatePass(ctx context.Context) (cycle.PassResult, error)
}

// SharedLines answers shared-line membership queries.
type SharedLines interface {
	IsSharedLineUser(ctx context.Context, user string) (bool, error)
}

// Documents reads the document archive.
type Documents interface {
	List(ctx context.Context, presentity string) ([]archive.Entry, error)
	Latest(ctx context.Context, presentity string) (archive.Entry, []byte, error)
}

// Check is a named dependency probe used by the health route.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Service backs the operations API.
type Service struct {
	watchers    cycle.WatcherSource
	passes      Passes
	sharedLines SharedLines
	documents   Documents
	parser      *reginfo.Parser
	checks      []Check
	logger      *zap.Logger
}

// Deps groups the collaborators of the service. Documents may be nil.
type Deps struct {
	Watchers    cycle.WatcherSource
	Passes      Passes
	SharedLines SharedLines
	Documents   Documents
	Parser      *reginfo.Parser
	Checks      []Check
}

// NewService creates the operations service.
func NewService(deps Deps, logger *zap.Logger) *Service {
	return &Service{
		watchers:    deps.Watchers,
		passes:      deps.Passes,
		sharedLines: deps.SharedLines,
		documents:   deps.Documents,
		parser:      deps.Parser,
		checks:      deps.Checks,
		logger:      logger,
	}
}

// Health runs every probe and returns the failures by name.
func (s *Service) Health(ctx context.Context) map[string]string {
	failed := make(map[string]string)
	for _, c := range s.checks {
		if err := c.Probe(ctx); err != nil {
			failed[c.Name] = err.Error()
		}
	}
	return failed
}

// Watchers returns the current distinct watchers.
func (s *Service) Watchers(ctx context.Context) ([]watchers.Watcher, error) {
	return s.watchers.Fetch(ctx)
}

// TriggerPass runs the named pass and waits for its result.
func (s *Service) TriggerPass(ctx context.Context, pass string) (cycle.PassResult, error) {
	switch pass {
	case cycle.PassCheck:
		return s.passes.RunCheckPass(ctx)
	case cycle.PassCollate:
		return s.passes.RunCollatePass(ctx)
	default:
		return cycle.PassResult{}, fmt.Errorf("%w: %q", ErrUnknownPass, pass)
	}
}

// IsSharedLineUser reports whether user is a shared-line user.
func (s *Service) IsSharedLineUser(ctx context.Context, user string) (bool, error) {
	return s.sharedLines.IsSharedLineUser(ctx, user)
}

// ParseRegInfo parses a registration event document without subscribing.
func (s *Service) ParseRegInfo(body []byte) (*reginfo.Document, []subscription.Intent, error) {
	doc, err := s.parser.Parse(body)
	if err != nil {
		return nil, nil, err
	}
	return doc, s.parser.Intents(doc), nil
}

// ArchiveEntries lists the archived documents of presentity.
func (s *Service) ArchiveEntries(ctx context.Context, presentity string) ([]archive.Entry, error) {
	if s.documents == nil {
		return nil, ErrArchiveDisabled
	}
	return s.documents.List(ctx, presentity)
}

// LatestDocument returns the newest archived document of presentity.
func (s *Service) LatestDocument(ctx context.Context, presentity string) (archive.Entry, []byte, error) {
	if s.documents == nil {
		return archive.Entry{}, nil, ErrArchiveDisabled
	}
	return s.documents.Latest(ctx, presentity)
}
