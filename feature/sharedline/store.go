package sharedline

import (
	"context"
	"fmt"
	"sort"

	"dialog-collator/core/database"

	"go.uber.org/zap"
)

// EntityType is the ent value of user rows.
const EntityType = "user"

// Columns selected from the entity table.
var Columns = []string{"shared", "vld"}

type entityRow struct {
	Shared *string `gorm:"column:shared"`
	Valid  int     `gorm:"column:vld"`
}

// Store reads shared-line users from the entity table. Like the watcher
// source it opens a connection per query.
type Store struct {
	cfg    database.Config
	open   database.Opener
	logger *zap.Logger
}

// NewStore creates a store reading cfg.EntityTable.
func NewStore(cfg database.Config, open database.Opener, logger *zap.Logger) *Store {
	if open == nil {
		open = database.Connect
	}
	return &Store{cfg: cfg, open: open, logger: logger}
}

// Users returns every valid shared-line user, sorted and without duplicates.
func (s *Store) Users(ctx context.Context) ([]string, error) {
	rows, err := s.query(ctx, "ent = ? AND shared <> ?", EntityType, "")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rows))
	users := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Shared == nil || r.Valid != 1 {
			continue
		}
		if _, dup := seen[*r.Shared]; dup {
			continue
		}
		seen[*r.Shared] = struct{}{}
		users = append(users, *r.Shared)
	}
	sort.Strings(users)
	return users, nil
}

// IsSharedLineUser reports whether user is a valid shared-line user.
func (s *Store) IsSharedLineUser(ctx context.Context, user string) (bool, error) {
	rows, err := s.query(ctx, "ent = ? AND shared = ?", EntityType, user)
	if err != nil {
		return false, err
	}
	for _, r := range rows {
		if r.Shared != nil && r.Valid == 1 {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) query(ctx context.Context, where string, args ...any) ([]entityRow, error) {
	db, err := s.open(s.cfg)
	if err != nil {
		return nil, fmt.Errorf("open entity store: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			s.logger.Debug("Closing entity store failed", zap.Error(err))
		}
	}()

	var rows []entityRow
	err = db.WithContext(ctx).Table(s.cfg.EntityTable).Select(Columns).Where(where, args...).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.cfg.EntityTable, err)
	}
	return rows, nil
}
