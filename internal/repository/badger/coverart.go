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
	domaincoverart "github.com/harmonia-music/harmonia/internal/domain/coverart"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

func coverArtKey(id domainvalue.CoverArtID) []byte {
	return []byte(fmt.Sprintf("coverart:%d", id))
}

// CoverArtRepository is a BadgerDB-backed implementation of
// domaincoverart.Repository.
type CoverArtRepository struct {
	db *badger.DB
}

// NewCoverArtRepository constructs a CoverArtRepository.
func NewCoverArtRepository(db *badger.DB) *CoverArtRepository {
	return &CoverArtRepository{db: db}
}

// FindByID implements domaincoverart.Repository.
func (r *CoverArtRepository) FindByID(ctx context.Context, id domainvalue.CoverArtID) (*domaincoverart.CoverArt, error) {
	var out domaincoverart.CoverArt
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, coverArtKey(id), &out)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Save implements domaincoverart.Repository, enforcing optimistic
// concurrency on coverArt.Version.
func (r *CoverArtRepository) Save(ctx context.Context, coverArt *domaincoverart.CoverArt) (*domaincoverart.CoverArt, error) {
	err := r.db.Update(func(txn *badger.Txn) error {
		var existing domaincoverart.CoverArt
		err := getJSON(txn, coverArtKey(coverArt.ID), &existing)
		switch {
		case errors.Is(err, ErrNotFound):
			if coverArt.Version != 0 {
				return apperror.NewVersionConflict(coverArt.Version)
			}
		case err != nil:
			return err
		default:
			if existing.Version != coverArt.Version-1 {
				return apperror.NewVersionConflict(coverArt.Version)
			}
		}

		return setJSON(txn, coverArtKey(coverArt.ID), coverArt)
	})
	if errors.Is(err, badger.ErrConflict) {
		err = apperror.NewVersionConflict(coverArt.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("save cover art %d: %w", coverArt.ID, err)
	}
	return coverArt, nil
}

// Delete implements domaincoverart.Repository.
func (r *CoverArtRepository) Delete(ctx context.Context, id domainvalue.CoverArtID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(coverArtKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}
