// Package apierr holds the error vocabulary shared by the stores, the domain
// services and the HTTP layer.
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrNotFound is returned by repositories when the addressed document does
// not exist.
var ErrNotFound = errors.New("not found")

// BadRequest is implemented by errors that are the caller's fault and should
// surface as 400 with their message.
type BadRequest interface {
	error
	BadRequest() bool
}

// ValidationError reports a malformed payload or an out-of-range parameter.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) BadRequest() bool { return true }

// Invalid builds a ValidationError.
func Invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsBadRequest reports whether err, or an error it wraps, is the caller's
// fault.
func IsBadRequest(err error) bool {
	var br BadRequest
	return errors.As(err, &br) && br.BadRequest()
}

// ToHTTP translates domain errors into echo HTTP errors. Errors that are
// neither "not found" nor a client mistake are returned unchanged so the
// error handler can log them and answer 500.
func ToHTTP(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) {
		return echo.NewHTTPError(http.StatusNotFound, notFoundMsg)
	}
	var br BadRequest
	if errors.As(err, &br) && br.BadRequest() {
		return echo.NewHTTPError(http.StatusBadRequest, br.Error())
	}
	return err
}

// BindError maps a request decoding failure to a 400. Validation errors raised
// while decoding keep their message; decoder internals are never echoed.
func BindError(err error) error {
	var br BadRequest
	if errors.As(err, &br) && br.BadRequest() {
		return echo.NewHTTPError(http.StatusBadRequest, br.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
}
