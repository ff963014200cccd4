package validators

import (
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "github.com/dmorales-dev/rentshop-backend/pkg/errors"
)

func TestParseQueryDateAnchorsLocalZone(t *testing.T) {
	r := httptest.NewRequest("GET", "/reports/sales?start=2025-06-01", nil)

	got, err := ParseQueryDate(r, "start")
	if err != nil {
		t.Fatalf("ParseQueryDate error: %v", err)
	}
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got.Location() != time.Local {
		t.Fatalf("expected local zone, got %v", got.Location())
	}
}

func TestParseQueryDateMissing(t *testing.T) {
	r := httptest.NewRequest("GET", "/reports/sales", nil)

	_, err := ParseQueryDate(r, "start")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseQueryDateBadFormat(t *testing.T) {
	r := httptest.NewRequest("GET", "/reports/sales?start=06%2F01%2F2025", nil)

	_, err := ParseQueryDate(r, "start")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
