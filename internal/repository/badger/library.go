// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/harmonia-music/harmonia/internal/apperror"
	domainlibrary "github.com/harmonia-music/harmonia/internal/domain/library"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

func libraryKey(id domainvalue.LibraryID) []byte {
	return []byte(fmt.Sprintf("library:%d", id))
}

// LibraryRepository is a BadgerDB-backed implementation of
// domainlibrary.Repository. Unlike the other aggregate repositories there is
// no secondary index: a library's ID is its config-assigned identity, never
// looked up by name or path.
type LibraryRepository struct {
	db *badger.DB
}

// NewLibraryRepository constructs a LibraryRepository.
func NewLibraryRepository(db *badger.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

// FindByID implements domainlibrary.Repository.
func (r *LibraryRepository) FindByID(ctx context.Context, id domainvalue.LibraryID) (*domainlibrary.Library, error) {
	var out domainlibrary.Library
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, libraryKey(id), &out)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Save implements domainlibrary.Repository, enforcing optimistic concurrency
// on library.Version.
func (r *LibraryRepository) Save(ctx context.Context, library *domainlibrary.Library) (*domainlibrary.Library, error) {
	err := r.db.Update(func(txn *badger.Txn) error {
		var existing domainlibrary.Library
		err := getJSON(txn, libraryKey(library.ID), &existing)
		switch {
		case errors.Is(err, ErrNotFound):
			if library.Version != 0 {
				return apperror.NewVersionConflict(library.Version)
			}
		case err != nil:
			return err
		default:
			if existing.Version != library.Version-1 {
				return apperror.NewVersionConflict(library.Version)
			}
		}

		return setJSON(txn, libraryKey(library.ID), library)
	})
	if errors.Is(err, badger.ErrConflict) {
		err = apperror.NewVersionConflict(library.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("save library %d: %w", library.ID, err)
	}
	return library, nil
}
