// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package mediaparse

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// StorageClient resolves a MediaPath to a seekable handle. Seeking is
// required because the metadata reader seeks while parsing tags and then
// rewinds the stream to read FLAC stream info (see TagMetadataReader).
type StorageClient interface {
	Open(ctx context.Context, path domainvalue.MediaPath) (io.ReadSeekCloser, error)
}

// LocalStorageClient reads files directly off the local filesystem. A
// scanned file's MediaPath.Path is already the absolute path the walker
// produced, so Open reads it in place: no temp file is materialized.
type LocalStorageClient struct{}

// NewLocalStorageClient constructs a LocalStorageClient.
func NewLocalStorageClient() *LocalStorageClient {
	return &LocalStorageClient{}
}

// Open implements StorageClient.
func (c *LocalStorageClient) Open(_ context.Context, path domainvalue.MediaPath) (io.ReadSeekCloser, error) {
	f, err := os.Open(path.Path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path.Path, err)
	}
	return f, nil
}

// StorageClientFactory resolves the StorageClient registered for a
// MediaPath's protocol. SMB and other remote protocols are out of scope for
// this engine (see DESIGN.md): only "local" (and the empty protocol, which
// MediaPath treats identically) has a registered client unless the caller
// registers one of its own.
type StorageClientFactory struct {
	clients map[string]StorageClient
}

// NewStorageClientFactory constructs a factory with the local client
// registered for both the empty protocol and "local".
func NewStorageClientFactory() *StorageClientFactory {
	local := NewLocalStorageClient()
	return &StorageClientFactory{
		clients: map[string]StorageClient{
			"":      local,
			"local": local,
		},
	}
}

// Register adds or replaces the client used for protocol.
func (f *StorageClientFactory) Register(protocol string, client StorageClient) {
	f.clients[protocol] = client
}

// Resolve returns the StorageClient registered for protocol.
func (f *StorageClientFactory) Resolve(protocol string) (StorageClient, error) {
	client, ok := f.clients[protocol]
	if !ok {
		return nil, fmt.Errorf("no storage client registered for protocol %q", protocol)
	}
	return client, nil
}
