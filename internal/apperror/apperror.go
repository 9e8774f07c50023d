// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apperror defines the typed error taxonomy shared by every
// aggregate, command service, and coordinator. Callers distinguish error
// kinds with errors.Is against the sentinel values below; VersionConflictError
// additionally carries the conflicting version for logging.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by domain aggregates and command services.
// Wrap these with fmt.Errorf("...: %w", ErrX) to add context while
// keeping errors.Is matching intact.
var (
	// ErrMissingParameter is returned when a required command field is empty or zero.
	ErrMissingParameter = errors.New("missing required parameter")

	// ErrNotFound is returned when an aggregate cannot be located by ID.
	ErrNotFound = errors.New("aggregate not found")

	// ErrInvalidOperation is returned when a state-mutating method is called
	// on an aggregate in a state that does not permit it.
	ErrInvalidOperation = errors.New("invalid operation for current state")

	// ErrVersionConflict is returned when an optimistic-concurrency check
	// fails on save. Use AsVersionConflict to recover the conflicting version.
	ErrVersionConflict = errors.New("version conflict")

	// ErrUnauthorized is returned when credentials or a session token fail
	// verification. It deliberately carries no detail about which check
	// failed; callers log specifics, responses stay uniform.
	ErrUnauthorized = errors.New("authentication failed")
)

// VersionConflictError wraps ErrVersionConflict with the version the caller
// expected to be current.
type VersionConflictError struct {
	Expected int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict: expected version %d", e.Expected)
}

func (e *VersionConflictError) Unwrap() error {
	return ErrVersionConflict
}

// NewVersionConflict constructs a VersionConflictError for the given expected version.
func NewVersionConflict(expected int64) error {
	return &VersionConflictError{Expected: expected}
}

// NotFoundError wraps ErrNotFound with the aggregate kind and ID that could
// not be located, so handlers can log specifics without string-parsing errors.
type NotFoundError struct {
	Aggregate string
	ID        int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d: %v", e.Aggregate, e.ID, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFound constructs a NotFoundError for the given aggregate kind and ID.
func NewNotFound(aggregate string, id int64) error {
	return &NotFoundError{Aggregate: aggregate, ID: id}
}
