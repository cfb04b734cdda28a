package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrMissingColumns is returned when a table lacks columns a query depends on.
var ErrMissingColumns = errors.New("missing columns")

// TableColumns returns the lower-cased column names of a table.
// A table that does not exist yields an empty list on sqlite and an error on mysql.
func TableColumns(db *gorm.DB, table string) ([]string, error) {
	var names []string

	if db.Dialector.Name() == "sqlite" {
		type sqliteColumn struct {
			Cid  int
			Name string
			Type string
		}
		var cols []sqliteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", table)).Scan(&cols).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
		}
		for _, c := range cols {
			names = append(names, strings.ToLower(c.Name))
		}
		return names, nil
	}

	type mysqlColumn struct {
		Field string
		Type  string
	}
	var cols []mysqlColumn
	if err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", table)).Scan(&cols).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
	}
	for _, c := range cols {
		names = append(names, strings.ToLower(c.Field))
	}
	return names, nil
}

// RequireColumns fails with ErrMissingColumns if any of the named columns is absent.
func RequireColumns(db *gorm.DB, table string, required ...string) error {
	cols, err := TableColumns(db, table)
	if err != nil {
		return err
	}

	present := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		present[c] = struct{}{}
	}

	var missing []string
	for _, r := range required {
		if _, ok := present[strings.ToLower(r)]; !ok {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w in %s: %s", ErrMissingColumns, table, strings.Join(missing, ", "))
	}
	return nil
}
