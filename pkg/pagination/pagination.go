package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Bounds describes the accepted limit range for an endpoint.
type Bounds struct {
	Default int
	Max     int
}

// Standard bounds for list endpoints.
var Standard = Bounds{Default: DefaultLimit, Max: MaxLimit}

// Params holds pagination parameters extracted from a request.
type Params struct {
	Skip  int
	Limit int
}

// FromContext reads skip and limit from the query string. Values outside
// skip >= 0 and 1 <= limit <= b.Max are rejected, not clamped.
func FromContext(c echo.Context, b Bounds) (Params, error) {
	skip, err := intParam(c, "skip", 0)
	if err != nil {
		return Params{}, err
	}
	if skip < 0 {
		return Params{}, apierr.Invalid("skip must be greater than or equal to 0")
	}

	limit, err := intParam(c, "limit", b.Default)
	if err != nil {
		return Params{}, err
	}
	if limit < 1 || limit > b.Max {
		return Params{}, apierr.Invalid("limit must be between 1 and %d", b.Max)
	}

	return Params{Skip: skip, Limit: limit}, nil
}

func intParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.Invalid("%s must be an integer", name)
	}
	return v, nil
}

// NextSkip returns the skip value for the following page.
func (p Params) NextSkip() int {
	return p.Skip + p.Limit
}
