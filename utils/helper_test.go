package utils

import (
	"errors"
	"testing"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
)

func TestTruncateToDate(t *testing.T) {
	in := time.Date(2024, time.December, 16, 18, 45, 12, 999, time.UTC)
	got := TruncateToDate(in)
	want := time.Date(2024, time.December, 16, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("TruncateToDate = %s, want %s", got, want)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("ParseDate = %s, want %s", got, want)
	}

	for _, bad := range []string{"", "15/01/2024", "2024-13-01", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) should fail", bad)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.it", "mario.rossi@example.com", "x+tag@sub.domain.org"}
	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Errorf("%q should be valid", e)
		}
	}
	invalid := []string{"", "no-at-sign", "@missing.local", "trailing@"}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Errorf("%q should be invalid", e)
		}
	}
}

func TestIsDuplicateKeyErr(t *testing.T) {
	dup := &mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry"}
	if !IsDuplicateKeyErr(dup) {
		t.Error("1062 should be a duplicate key error")
	}
	if !IsDuplicateKeyErr(errors.Join(errors.New("wrapped"), dup)) {
		t.Error("wrapped 1062 should still be detected")
	}
	if IsDuplicateKeyErr(&mysqlDriver.MySQLError{Number: 1451}) {
		t.Error("other MySQL errors are not duplicates")
	}
	if IsDuplicateKeyErr(errors.New("plain")) {
		t.Error("non-MySQL errors are not duplicates")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("start_date", "is required")
	if !IsValidationError(err) {
		t.Error("IsValidationError should recognise its own type")
	}
	if IsValidationError(errors.New("other")) {
		t.Error("arbitrary errors are not validation errors")
	}
}
