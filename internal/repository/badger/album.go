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
	domainalbum "github.com/harmonia-music/harmonia/internal/domain/album"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

func albumKey(id domainvalue.AlbumID) []byte {
	return []byte(fmt.Sprintf("album:%d", id))
}

func albumSortNameIndexKey(sortName string) []byte {
	return []byte("album_by_sort_name:" + strings.ToLower(sortName))
}

// AlbumRepository is a BadgerDB-backed implementation of domainalbum.Repository.
type AlbumRepository struct {
	db *badger.DB
}

// NewAlbumRepository constructs an AlbumRepository.
func NewAlbumRepository(db *badger.DB) *AlbumRepository {
	return &AlbumRepository{db: db}
}

// FindByID implements domainalbum.Repository.
func (r *AlbumRepository) FindByID(ctx context.Context, id domainvalue.AlbumID) (*domainalbum.Album, error) {
	var out domainalbum.Album
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, albumKey(id), &out)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FindBySortName implements domainalbum.Repository.
func (r *AlbumRepository) FindBySortName(ctx context.Context, sortName string) (*domainalbum.Album, error) {
	var id domainvalue.AlbumID
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, albumSortNameIndexKey(sortName), &id)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Save implements domainalbum.Repository, enforcing optimistic concurrency
// on album.Version.
func (r *AlbumRepository) Save(ctx context.Context, album *domainalbum.Album) (*domainalbum.Album, error) {
	err := r.db.Update(func(txn *badger.Txn) error {
		var existing domainalbum.Album
		err := getJSON(txn, albumKey(album.ID), &existing)
		switch {
		case errors.Is(err, ErrNotFound):
			if album.Version != 0 {
				return apperror.NewVersionConflict(album.Version)
			}
		case err != nil:
			return err
		default:
			if existing.Version != album.Version-1 {
				return apperror.NewVersionConflict(album.Version)
			}
		}

		if err := setJSON(txn, albumKey(album.ID), album); err != nil {
			return err
		}
		return setJSON(txn, albumSortNameIndexKey(album.SortName), album.ID)
	})
	if errors.Is(err, badger.ErrConflict) {
		err = apperror.NewVersionConflict(album.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("save album %d: %w", album.ID, err)
	}
	return album, nil
}

// Delete implements domainalbum.Repository.
func (r *AlbumRepository) Delete(ctx context.Context, id domainvalue.AlbumID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var existing domainalbum.Album
		if err := getJSON(txn, albumKey(id), &existing); err == nil {
			_ = txn.Delete(albumSortNameIndexKey(existing.SortName))
		}
		err := txn.Delete(albumKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}
