package sharedline

import (
	"context"
	"testing"

	"dialog-collator/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	open := func(database.Config) (*gorm.DB, error) { return gormDB, nil }
	return NewStore(database.Config{EntityTable: "entity"}, open, zap.NewNop()), mock
}

func TestStore_Users(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"shared", "vld"}).
		AddRow("sip:zed@example.com", 1).
		AddRow("sip:amy@example.com", 1).
		AddRow("sip:old@example.com", 0).
		AddRow(nil, 1).
		AddRow("sip:amy@example.com", 1)
	mock.ExpectQuery("SELECT (.+) FROM `entity` WHERE ent = (.+) AND shared <> (.+)").
		WithArgs("user", "").
		WillReturnRows(rows)
	mock.ExpectClose()

	users, err := store.Users(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sip:amy@example.com", "sip:zed@example.com"}, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_IsSharedLineUser(t *testing.T) {
	tests := []struct {
		name string
		rows *sqlmock.Rows
		want bool
	}{
		{"Valid", sqlmock.NewRows([]string{"shared", "vld"}).AddRow("sip:amy@example.com", 1), true},
		{"Invalid", sqlmock.NewRows([]string{"shared", "vld"}).AddRow("sip:amy@example.com", 0), false},
		{"Absent", sqlmock.NewRows([]string{"shared", "vld"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			mock.ExpectQuery("SELECT (.+) FROM `entity` WHERE ent = (.+) AND shared = (.+)").
				WithArgs("user", "sip:amy@example.com").
				WillReturnRows(tt.rows)
			mock.ExpectClose()

			got, err := store.IsSharedLineUser(context.Background(), "sip:amy@example.com")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_QueryError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)
	mock.ExpectClose()

	_, err := store.Users(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}
