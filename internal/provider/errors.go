package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/wonny/supersignal/internal/contracts"
	"github.com/wonny/supersignal/pkg/httputil"
)

// ErrorKind classifies provider failures
type ErrorKind string

const (
	KindNotFound    ErrorKind = "not_found"
	KindRateLimited ErrorKind = "rate_limited"
	KindNetwork     ErrorKind = "network" // includes per-call timeouts
	KindParse       ErrorKind = "parse"
)

// FetchError is a per-source, per-ticker failure. Never fatal to a batch.
type FetchError struct {
	Source contracts.Source
	Ticker string
	Kind   ErrorKind
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s", e.Source, e.Ticker, e.Kind)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Source, e.Ticker, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError builds a FetchError
func NewFetchError(src contracts.Source, ticker string, kind ErrorKind, err error) *FetchError {
	return &FetchError{Source: src, Ticker: ticker, Kind: kind, Err: err}
}

// Classify turns any adapter error into a *FetchError.
// Errors that already are FetchErrors keep their kind.
func Classify(src contracts.Source, ticker string, err error) *FetchError {
	if err == nil {
		return nil
	}

	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}

	var se *httputil.StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusNotFound:
			return NewFetchError(src, ticker, KindNotFound, err)
		case se.StatusCode == http.StatusTooManyRequests:
			return NewFetchError(src, ticker, KindRateLimited, err)
		}
	}

	return NewFetchError(src, ticker, KindNetwork, err)
}

// KindOf returns the kind of a wrapped FetchError
func KindOf(err error) (ErrorKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

// IsTimeout reports whether a fetch failed because its deadline expired
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
