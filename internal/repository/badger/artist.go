// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/harmonia-music/harmonia/internal/apperror"
	domainartist "github.com/harmonia-music/harmonia/internal/domain/artist"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

func artistKey(id domainvalue.ArtistID) []byte {
	return []byte(fmt.Sprintf("artist:%d", id))
}

func artistSortNameIndexKey(sortName string) []byte {
	return []byte("artist_by_sort_name:" + strings.ToLower(sortName))
}

// ArtistRepository is a BadgerDB-backed implementation of domainartist.Repository.
type ArtistRepository struct {
	db *badger.DB
}

// NewArtistRepository constructs an ArtistRepository.
func NewArtistRepository(db *badger.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

// FindByID implements domainartist.Repository.
func (r *ArtistRepository) FindByID(ctx context.Context, id domainvalue.ArtistID) (*domainartist.Artist, error) {
	var out domainartist.Artist
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, artistKey(id), &out)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FindBySortName implements domainartist.Repository.
func (r *ArtistRepository) FindBySortName(ctx context.Context, sortName string) (*domainartist.Artist, error) {
	var id domainvalue.ArtistID
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, artistSortNameIndexKey(sortName), &id)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Save implements domainartist.Repository, enforcing optimistic concurrency
// on artist.Version.
func (r *ArtistRepository) Save(ctx context.Context, artist *domainartist.Artist) (*domainartist.Artist, error) {
	err := r.db.Update(func(txn *badger.Txn) error {
		var existing domainartist.Artist
		err := getJSON(txn, artistKey(artist.ID), &existing)
		switch {
		case errors.Is(err, ErrNotFound):
			if artist.Version != 0 {
				return apperror.NewVersionConflict(artist.Version)
			}
		case err != nil:
			return err
		default:
			if existing.Version != artist.Version-1 {
				return apperror.NewVersionConflict(artist.Version)
			}
		}

		if err := setJSON(txn, artistKey(artist.ID), artist); err != nil {
			return err
		}
		return setJSON(txn, artistSortNameIndexKey(artist.SortName), artist.ID)
	})
	if errors.Is(err, badger.ErrConflict) {
		err = apperror.NewVersionConflict(artist.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("save artist %d: %w", artist.ID, err)
	}
	return artist, nil
}

// Delete implements domainartist.Repository.
func (r *ArtistRepository) Delete(ctx context.Context, id domainvalue.ArtistID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var existing domainartist.Artist
		if err := getJSON(txn, artistKey(id), &existing); err == nil {
			_ = txn.Delete(artistSortNameIndexKey(existing.SortName))
		}
		err := txn.Delete(artistKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}
