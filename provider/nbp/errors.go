package nbp

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCurrency is returned for codes that are not 3 letters A-Z
	ErrInvalidCurrency = errors.New("invalid currency (must be 3 letters A-Z)")

	// ErrInvalidRange is returned for inverted or out-of-archive date ranges
	ErrInvalidRange = errors.New("invalid date range")

	// ErrRangeTooLong is returned for ranges the NBP API refuses to serve in one request
	ErrRangeTooLong = errors.New("date range exceeds 93 days")

	// ErrCurrencyNotFound is returned when the table does not list the currency
	ErrCurrencyNotFound = errors.New("currency not found")

	// ErrNoData is returned when nothing was published in the requested range
	ErrNoData = errors.New("no data for the given period")

	// ErrInvalidResponse is returned for failed or malformed API responses
	ErrInvalidResponse = errors.New("invalid API response")

	errInvalidTable = errors.New("invalid table (must be A or B)")
)

// APIError is a non-2xx response from the NBP API
type APIError struct {
	kind       error
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("NBP API error %d", e.StatusCode)
	}

	return fmt.Sprintf("NBP API error %d: %s", e.StatusCode, e.Message)
}

// Unwrap exposes the error class (ErrCurrencyNotFound, ErrNoData or ErrInvalidResponse)
func (e *APIError) Unwrap() error {
	return e.kind
}
