// Package service holds the application logic behind the HTTP handlers.
// Every returned error wraps one of the kinds in internal/domain.
package service

import (
	"alcyxob/gymtracker/internal/repository"
	"errors"
	"time"
)

// notFoundAs replaces repository.ErrNotFound with the entity-specific error.
func notFoundAs(err, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}

// optional turns a not-found lookup into a nil result so that the ownership
// checks can report which link of a path is missing.
func optional[T any](v *T, err error) (*T, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

// Clock returns the current time. Services use UTC timestamps.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }
