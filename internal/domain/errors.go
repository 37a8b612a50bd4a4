// internal/domain/errors.go
package domain

import "errors"

// Error kinds surfaced by the pipeline. Call sites wrap these with
// fmt.Errorf("...: %w", ...) so callers can match with errors.Is.
var (
	// ErrSchema means a required column (date, sales) is absent from the input.
	ErrSchema = errors.New("required column missing")

	// ErrDateParse means a date value in the input could not be parsed.
	ErrDateParse = errors.New("unparseable date")

	// ErrDuplicateDate means the input contains the same calendar day twice.
	// Duplicates are a hard error; there is no last-write-wins.
	ErrDuplicateDate = errors.New("duplicate date")

	// ErrInsufficientData means the series is too short for the requested
	// operation (empty after load, or shorter than holdout+1 for training).
	ErrInsufficientData = errors.New("insufficient data")

	// ErrEmptySeries means a computation was asked for on a series with no rows.
	ErrEmptySeries = errors.New("empty series")

	// ErrInvalidParameter means a caller-supplied parameter is out of range.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNoConvergingModel means every candidate in the training grid failed
	// to fit.
	ErrNoConvergingModel = errors.New("no candidate model converged")

	// ErrModelLoad means the persisted model artifact could not be read or
	// deserialized.
	ErrModelLoad = errors.New("model artifact load failed")

	// ErrInvalidSteps means a non-positive forecast horizon was requested.
	ErrInvalidSteps = errors.New("forecast steps must be positive")
)
