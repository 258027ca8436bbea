package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

const testOrigin = "http://localhost:8080"

func newMockStorage(t *testing.T) (*StorageSQLite, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := NewStorageSQLite(db, testOrigin)
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, cleanup
}

type sqlmockArgumentFunc func(v driver.Value) bool

func (f sqlmockArgumentFunc) Match(v driver.Value) bool {
	return f(v)
}

func TestStorageSQLite_Get(t *testing.T) {
	tests := []struct {
		name           string
		key            string
		mockExpect     func(sqlmock.Sqlmock)
		wantValue      string
		wantOK         bool
		wantErr        bool
		errContainsStr string
	}{
		{
			name: "found",
			key:  "token",
			mockExpect: func(m sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"value"}).AddRow("xyz")
				m.ExpectQuery(regexp.QuoteMeta(selectItemSQL)).
					WithArgs(testOrigin, "token").
					WillReturnRows(rows)
			},
			wantValue: "xyz",
			wantOK:    true,
		},
		{
			name: "missing (ErrNoRows)",
			key:  "user_name",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectItemSQL)).
					WithArgs(testOrigin, "user_name").
					WillReturnError(sql.ErrNoRows)
			},
		},
		{
			name: "query error",
			key:  "token",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectItemSQL)).
					WithArgs(testOrigin, "token").
					WillReturnError(errors.New("disk I/O error"))
			},
			wantErr:        true,
			errContainsStr: `select item "token"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := newMockStorage(t)
			defer cleanup()

			tt.mockExpect(mock)

			v, ok, err := repo.Get(context.Background(), tt.key)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContainsStr) {
					t.Fatalf("expected error to contain %q, got %q", tt.errContainsStr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v != tt.wantValue || ok != tt.wantOK {
				t.Fatalf("got (%q, %v), want (%q, %v)", v, ok, tt.wantValue, tt.wantOK)
			}
		})
	}
}

func TestStorageSQLite_Set_UsesUTCTimestamp(t *testing.T) {
	repo, mock, cleanup := newMockStorage(t)
	defer cleanup()

	isUTCRecent := sqlmockArgumentFunc(func(v driver.Value) bool {
		tm, ok := v.(time.Time)
		if !ok || tm.Location() != time.UTC {
			return false
		}
		now := time.Now().UTC()
		return !tm.Before(now.Add(-5*time.Second)) && !tm.After(now.Add(5*time.Second))
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO local_storage")).
		WithArgs(testOrigin, "token", "abc", isUTCRecent).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Set(context.Background(), "token", "abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}
}

func TestStorageSQLite_Set_Error(t *testing.T) {
	repo, mock, cleanup := newMockStorage(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO local_storage")).
		WithArgs(testOrigin, "token", "abc", sqlmock.AnyArg()).
		WillReturnError(errors.New("database is locked"))

	err := repo.Set(context.Background(), "token", "abc")
	if err == nil || !strings.Contains(err.Error(), `upsert item "token"`) {
		t.Fatalf("expected wrapped upsert error, got %v", err)
	}
}

func TestStorageSQLite_Remove(t *testing.T) {
	repo, mock, cleanup := newMockStorage(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(deleteItemSQL)).
		WithArgs(testOrigin, "token").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteItemSQL)).
		WithArgs(testOrigin, "user_name").
		WillReturnError(errors.New("readonly database"))

	if err := repo.Remove(context.Background(), "token"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	err := repo.Remove(context.Background(), "user_name")
	if err == nil || !strings.Contains(err.Error(), `delete item "user_name"`) {
		t.Fatalf("expected wrapped delete error, got %v", err)
	}
}
