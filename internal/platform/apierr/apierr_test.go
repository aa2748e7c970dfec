package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestToHTTP_NotFound(t *testing.T) {
	err := ToHTTP(fmt.Errorf("get patient: %w", ErrNotFound), "Patient not found")

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", he.Code)
	}
	if he.Message != "Patient not found" {
		t.Errorf("unexpected message: %v", he.Message)
	}
}

func TestToHTTP_Validation(t *testing.T) {
	err := ToHTTP(Invalid("limit must be between %d and %d", 1, 100), "unused")

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", he.Code)
	}
	if he.Message != "limit must be between 1 and 100" {
		t.Errorf("unexpected message: %v", he.Message)
	}
}

func TestToHTTP_PassThrough(t *testing.T) {
	internal := errors.New("connection reset by peer")
	if got := ToHTTP(internal, "unused"); got != internal {
		t.Errorf("expected internal error to pass through, got %v", got)
	}
	if ToHTTP(nil, "unused") != nil {
		t.Error("expected nil for nil error")
	}
}

func TestIsBadRequest(t *testing.T) {
	if !IsBadRequest(fmt.Errorf("bind: %w", Invalid("limit must be between 1 and %d", 100))) {
		t.Error("expected wrapped ValidationError to be a bad request")
	}
	if IsBadRequest(ErrNotFound) || IsBadRequest(errors.New("boom")) {
		t.Error("expected not-found and plain errors not to be bad requests")
	}
}

func TestBindError(t *testing.T) {
	decodeErr := echo.NewHTTPError(http.StatusBadRequest, `parsing time "x" as "2006-01-02T15:04:05Z07:00"`)
	decodeErr.Internal = errors.New(`parsing time "x"`)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"decoder detail hidden", decodeErr, "invalid request body"},
		{"validation kept", echo.NewHTTPError(http.StatusBadRequest, "x").SetInternal(Invalid("test_date must be a date")), "test_date must be a date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var he *echo.HTTPError
			if !errors.As(BindError(tt.err), &he) {
				t.Fatal("expected *echo.HTTPError")
			}
			if he.Code != http.StatusBadRequest || he.Message != tt.want {
				t.Errorf("got %d %v, want 400 %q", he.Code, he.Message, tt.want)
			}
		})
	}
}
