package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// ErrInvalidInput marks a rejected request; no state was mutated
	ErrInvalidInput = errors.New("invalid input")

	ErrInvalidName       = fmt.Errorf("%w: name must be a non-empty string", ErrInvalidInput)
	ErrInvalidMode       = fmt.Errorf("%w: unknown game mode", ErrInvalidInput)
	ErrInvalidScore      = fmt.Errorf("%w: score must be a finite number", ErrInvalidInput)
	ErrUserNotRegistered = fmt.Errorf("%w: user is not registered", ErrInvalidInput)

	// ErrIOFailure marks a durable read or write failure
	ErrIOFailure = errors.New("ledger i/o failure")
)
