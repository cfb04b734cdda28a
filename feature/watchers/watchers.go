package watchers

import (
	"context"
	"fmt"

	"dialog-collator/core/database"

	"go.uber.org/zap"
)

// Columns selected from the active watchers table.
var Columns = []string{"to_user", "to_domain", "presentity_uri"}

// Watcher is one presentity with at least one active watcher.
type Watcher struct {
	User          string `json:"user"`
	Domain        string `json:"domain"`
	PresentityURI string `json:"presentity_uri"`
}

type row struct {
	ToUser        string `gorm:"column:to_user"`
	ToDomain      string `gorm:"column:to_domain"`
	PresentityURI string `gorm:"column:presentity_uri"`
}

// Source discovers active watchers. It opens a connection for every query
// and closes it before returning.
type Source struct {
	cfg    database.Config
	open   database.Opener
	logger *zap.Logger
}

// NewSource creates a Source reading cfg.ActiveWatchersTable.
func NewSource(cfg database.Config, open database.Opener, logger *zap.Logger) *Source {
	if open == nil {
		open = database.Connect
	}
	return &Source{cfg: cfg, open: open, logger: logger}
}

// Fetch returns the current watchers, de-duplicated by (user, domain).
func (s *Source) Fetch(ctx context.Context) ([]Watcher, error) {
	db, err := s.open(s.cfg)
	if err != nil {
		return nil, fmt.Errorf("open watcher store: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			s.logger.Debug("Closing watcher store failed", zap.Error(err))
		}
	}()

	var rows []row
	if err := db.WithContext(ctx).Table(s.cfg.ActiveWatchersTable).Select(Columns).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", s.cfg.ActiveWatchersTable, err)
	}

	list := make([]Watcher, 0, len(rows))
	for _, r := range rows {
		if r.ToUser == "" || r.ToDomain == "" {
			s.logger.Debug("Skipping watcher row without user or domain", zap.String("presentity_uri", r.PresentityURI))
			continue
		}
		list = append(list, Watcher{User: r.ToUser, Domain: r.ToDomain, PresentityURI: r.PresentityURI})
	}
	return Dedup(list), nil
}

// CheckSchema verifies the configured table has the selected columns.
func (s *Source) CheckSchema() error {
	db, err := s.open(s.cfg)
	if err != nil {
		return fmt.Errorf("open watcher store: %w", err)
	}
	defer database.Close(db)
	return database.RequireColumns(db, s.cfg.ActiveWatchersTable, Columns...)
}

type key struct {
	user   string
	domain string
}

// Dedup keeps the first watcher of every (user, domain) pair, preserving order.
func Dedup(in []Watcher) []Watcher {
	seen := make(map[key]struct{}, len(in))
	out := make([]Watcher, 0, len(in))
	for _, w := range in {
		k := key{user: w.User, domain: w.Domain}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, w)
	}
	return out
}
