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
	domainuser "github.com/harmonia-music/harmonia/internal/domain/user"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// userDTO flattens domainuser.User for storage, leaving the pending-events
// buffer behind: events are drained and published before Save, never persisted.
type userDTO struct {
	ID                domainvalue.UserID
	Username          string
	Name              string
	Email             string
	IsAdmin           bool
	HashedPassword    string
	EncryptedPassword string
	Status            domainuser.Status
	Version           int64
}

func userKey(id domainvalue.UserID) []byte {
	return []byte(fmt.Sprintf("user:%d", id))
}

func userUsernameIndexKey(username string) []byte {
	return []byte("user_by_username:" + strings.ToLower(username))
}

// UserRepository is a BadgerDB-backed implementation of domainuser.Repository.
type UserRepository struct {
	db *badger.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

func userFromDTO(dto userDTO) *domainuser.User {
	return &domainuser.User{
		ID:                dto.ID,
		Username:          dto.Username,
		Name:              dto.Name,
		Email:             dto.Email,
		IsAdmin:           dto.IsAdmin,
		HashedPassword:    dto.HashedPassword,
		EncryptedPassword: dto.EncryptedPassword,
		Status:            dto.Status,
		Version:           dto.Version,
	}
}

func userToDTO(u *domainuser.User) userDTO {
	return userDTO{
		ID:                u.ID,
		Username:          u.Username,
		Name:              u.Name,
		Email:             u.Email,
		IsAdmin:           u.IsAdmin,
		HashedPassword:    u.HashedPassword,
		EncryptedPassword: u.EncryptedPassword,
		Status:            u.Status,
		Version:           u.Version,
	}
}

// Count implements domainuser.Repository.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte("user:")
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// FindByID implements domainuser.Repository.
func (r *UserRepository) FindByID(ctx context.Context, id domainvalue.UserID) (*domainuser.User, error) {
	var dto userDTO
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, userKey(id), &dto)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return userFromDTO(dto), nil
}

// FindByUsername implements domainuser.Repository. Lookup is
// case-insensitive, matching the index written on Save.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domainuser.User, error) {
	var id domainvalue.UserID
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, userUsernameIndexKey(username), &id)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Save implements domainuser.Repository with the same optimistic-concurrency
// check every aggregate repository applies.
func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) (*domainuser.User, error) {
	err := r.db.Update(func(txn *badger.Txn) error {
		var existing userDTO
		err := getJSON(txn, userKey(u.ID), &existing)
		switch {
		case errors.Is(err, ErrNotFound):
			if u.Version != 0 {
				return apperror.NewVersionConflict(u.Version)
			}
		case err != nil:
			return err
		default:
			if existing.Version != u.Version-1 {
				return apperror.NewVersionConflict(u.Version)
			}
		}

		if err := setJSON(txn, userKey(u.ID), userToDTO(u)); err != nil {
			return err
		}
		return setJSON(txn, userUsernameIndexKey(u.Username), u.ID)
	})
	if errors.Is(err, badger.ErrConflict) {
		err = apperror.NewVersionConflict(u.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("save user %d: %w", u.ID, err)
	}
	return u, nil
}

// Delete implements domainuser.Repository.
func (r *UserRepository) Delete(ctx context.Context, id domainvalue.UserID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var dto userDTO
		if err := getJSON(txn, userKey(id), &dto); err == nil {
			_ = txn.Delete(userUsernameIndexKey(dto.Username))
		}
		err := txn.Delete(userKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}
