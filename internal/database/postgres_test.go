package database

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := EnsureSchema(db); err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("permission denied"))
	if err := EnsureSchema(db); err == nil {
		t.Fatalf("expected schema error to surface")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestOpen_EmptyURL(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
