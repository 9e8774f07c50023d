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
	domainaudiofile "github.com/harmonia-music/harmonia/internal/domain/audiofile"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

func audioFileKey(id domainvalue.AudioFileID) []byte {
	return []byte(fmt.Sprintf("audiofile:%d", id))
}

func audioFilePathIndexKey(path domainvalue.MediaPath) []byte {
	return []byte("audiofile_by_path:" + path.String())
}

// AudioFileRepository is a BadgerDB-backed implementation of
// domainaudiofile.Repository.
type AudioFileRepository struct {
	db *badger.DB
}

// NewAudioFileRepository constructs an AudioFileRepository.
func NewAudioFileRepository(db *badger.DB) *AudioFileRepository {
	return &AudioFileRepository{db: db}
}

// FindByID implements domainaudiofile.Repository.
func (r *AudioFileRepository) FindByID(ctx context.Context, id domainvalue.AudioFileID) (*domainaudiofile.AudioFile, error) {
	var out domainaudiofile.AudioFile
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, audioFileKey(id), &out)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByPath implements domainaudiofile.Repository.
func (r *AudioFileRepository) FindByPath(ctx context.Context, path domainvalue.MediaPath) (*domainaudiofile.AudioFile, error) {
	var id domainvalue.AudioFileID
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, audioFilePathIndexKey(path), &id)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Save implements domainaudiofile.Repository, enforcing optimistic
// concurrency on audioFile.Version.
func (r *AudioFileRepository) Save(ctx context.Context, audioFile *domainaudiofile.AudioFile) (*domainaudiofile.AudioFile, error) {
	err := r.db.Update(func(txn *badger.Txn) error {
		var existing domainaudiofile.AudioFile
		err := getJSON(txn, audioFileKey(audioFile.ID), &existing)
		switch {
		case errors.Is(err, ErrNotFound):
			if audioFile.Version != 0 {
				return apperror.NewVersionConflict(audioFile.Version)
			}
		case err != nil:
			return err
		default:
			if existing.Version != audioFile.Version-1 {
				return apperror.NewVersionConflict(audioFile.Version)
			}
		}

		if err := setJSON(txn, audioFileKey(audioFile.ID), audioFile); err != nil {
			return err
		}
		return setJSON(txn, audioFilePathIndexKey(audioFile.Path), audioFile.ID)
	})
	if errors.Is(err, badger.ErrConflict) {
		err = apperror.NewVersionConflict(audioFile.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("save audio file %d: %w", audioFile.ID, err)
	}
	return audioFile, nil
}

// Delete implements domainaudiofile.Repository.
func (r *AudioFileRepository) Delete(ctx context.Context, id domainvalue.AudioFileID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var existing domainaudiofile.AudioFile
		if err := getJSON(txn, audioFileKey(id), &existing); err == nil {
			_ = txn.Delete(audioFilePathIndexKey(existing.Path))
		}
		err := txn.Delete(audioFileKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}
