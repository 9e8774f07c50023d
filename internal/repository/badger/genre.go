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
	domaingenre "github.com/harmonia-music/harmonia/internal/domain/genre"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// genreDTO mirrors domaingenre.Genre with its Name value object flattened
// to a plain string: Name's internal field is unexported, so the aggregate
// itself cannot round-trip through encoding/json.
type genreDTO struct {
	ID      domainvalue.GenreID
	Name    string
	Version int64
}

func genreKey(id domainvalue.GenreID) []byte {
	return []byte(fmt.Sprintf("genre:%d", id))
}

func genreNameIndexKey(name string) []byte {
	return []byte("genre_by_name:" + strings.ToLower(name))
}

// GenreRepository is a BadgerDB-backed implementation of domaingenre.Repository.
type GenreRepository struct {
	db *badger.DB
}

// NewGenreRepository constructs a GenreRepository.
func NewGenreRepository(db *badger.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

func (r *GenreRepository) fromDTO(dto genreDTO) (*domaingenre.Genre, error) {
	name, err := domaingenre.NewName(dto.Name)
	if err != nil {
		return nil, err
	}
	return domaingenre.New(dto.ID, name).WithVersion(dto.Version), nil
}

// FindByID implements domaingenre.Repository.
func (r *GenreRepository) FindByID(ctx context.Context, id domainvalue.GenreID) (*domaingenre.Genre, error) {
	var dto genreDTO
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, genreKey(id), &dto)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.fromDTO(dto)
}

// FindByName implements domaingenre.Repository.
func (r *GenreRepository) FindByName(ctx context.Context, name domaingenre.Name) (*domaingenre.Genre, error) {
	var id domainvalue.GenreID
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, genreNameIndexKey(name.String()), &id)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Save implements domaingenre.Repository. It enforces optimistic
// concurrency: genre.Version must be exactly one more than the stored
// version (or 0 for a new genre) or ErrVersionConflict is returned.
func (r *GenreRepository) Save(ctx context.Context, genre *domaingenre.Genre) (*domaingenre.Genre, error) {
	err := r.db.Update(func(txn *badger.Txn) error {
		var existing genreDTO
		err := getJSON(txn, genreKey(genre.ID), &existing)
		switch {
		case errors.Is(err, ErrNotFound):
			if genre.Version != 0 {
				return apperror.NewVersionConflict(genre.Version)
			}
		case err != nil:
			return err
		default:
			if existing.Version != genre.Version-1 {
				return apperror.NewVersionConflict(genre.Version)
			}
		}

		dto := genreDTO{ID: genre.ID, Name: genre.Name.String(), Version: genre.Version}
		if err := setJSON(txn, genreKey(genre.ID), dto); err != nil {
			return err
		}
		return setJSON(txn, genreNameIndexKey(genre.Name.String()), genre.ID)
	})
	if errors.Is(err, badger.ErrConflict) {
		err = apperror.NewVersionConflict(genre.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("save genre %d: %w", genre.ID, err)
	}
	return genre, nil
}

// Delete implements domaingenre.Repository.
func (r *GenreRepository) Delete(ctx context.Context, id domainvalue.GenreID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var dto genreDTO
		if err := getJSON(txn, genreKey(id), &dto); err == nil {
			_ = txn.Delete(genreNameIndexKey(dto.Name))
		}
		err := txn.Delete(genreKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}
