// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main is the entry point for the Harmonia ingestion and
// projection engine.
//
// # Application Architecture
//
// The process wires its components in the following order:
//
//  1. Configuration: load settings from environment variables and an
//     optional config file (Koanf v2)
//  2. Logging: configure the global zerolog logger
//  3. Storage: open the BadgerDB instance backing every aggregate
//     repository and every projection read model
//  4. Application services: id generator, event bus, the five aggregate
//     command services, the media-parse and library-scan services, and the
//     user-facing command surface (users, play queues, scrobbles) handed to
//     the external HTTP layer
//  5. Wiring: coordinators, fanout handlers, and projectors subscribe
//     themselves onto the event bus
//  6. Supervision: the scan poller (and optional per-library watchers)
//     join the supervisor tree's data layer; the bus consumers above
//     need no supervised loop of their own, they are just subscriptions
//  7. Signal handling: SIGINT/SIGTERM cancel the root context, the
//     supervisor tree drains, and every memtable-buffered repository
//     gets one final flush before the BadgerDB handle closes
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/harmonia-music/harmonia/internal/app"
	"github.com/harmonia-music/harmonia/internal/appevent"
	cmdalbum "github.com/harmonia-music/harmonia/internal/command/album"
	cmdartist "github.com/harmonia-music/harmonia/internal/command/artist"
	cmdaudiofile "github.com/harmonia-music/harmonia/internal/command/audiofile"
	cmdcoverart "github.com/harmonia-music/harmonia/internal/command/coverart"
	cmdgenre "github.com/harmonia-music/harmonia/internal/command/genre"
	"github.com/harmonia-music/harmonia/internal/config"
	"github.com/harmonia-music/harmonia/internal/coordinator"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/eventbus"
	"github.com/harmonia-music/harmonia/internal/fanout"
	"github.com/harmonia-music/harmonia/internal/idgen"
	"github.com/harmonia-music/harmonia/internal/logging"
	"github.com/harmonia-music/harmonia/internal/mediaparse"
	"github.com/harmonia-music/harmonia/internal/normalize"
	"github.com/harmonia-music/harmonia/internal/projector"
	"github.com/harmonia-music/harmonia/internal/repository/badger"
	"github.com/harmonia-music/harmonia/internal/scan"
	"github.com/harmonia-music/harmonia/internal/security"
	"github.com/harmonia-music/harmonia/internal/supervisor"
)

// ignoredArticles is folded out of artist and album names before the
// create-or-find dedup lookup (e.g. "The Beatles" and "Beatles" match; only
// a leading article is removed, so "Beatles, The" does not).
var ignoredArticles = []string{"the", "a", "an"}

// genreSynonyms collapses the handful of genre tag spellings the rule
// engine sees most often in the wild into one canonical form.
var genreSynonyms = map[string]string{
	"hip hop":       "Hip-Hop",
	"hiphop":        "Hip-Hop",
	"r&b":           "R&B",
	"rnb":           "R&B",
	"drum and bass": "Drum & Bass",
	"drum n bass":   "Drum & Bass",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("starting harmonia")

	db, err := badger.Open(badgerPath())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open badger db")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing badger db")
		}
	}()

	idGenerator, err := idgen.New(0)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to construct id generator")
	}

	bus := eventbus.New(busMode(cfg.Bus.Mode))

	genreRepo := badger.NewGenreRepository(db)
	artistRepo := badger.NewArtistRepository(db)
	albumRepo := badger.NewAlbumRepository(db)
	audioFileRepo := badger.NewAudioFileRepository(db)
	coverArtRepo := badger.NewCoverArtRepository(db)
	libraryRepo := badger.NewLibraryRepository(db)

	genreStatsRepo := badger.NewGenreStatsRepository(db, cfg.Memtable.MaxEntries, cfg.Memtable.FlushInterval)
	albumStatsRepo := badger.NewAlbumStatsRepository(db, cfg.Memtable.MaxEntries, cfg.Memtable.FlushInterval)
	albumLocationRepo := badger.NewAlbumLocationRepository(db, cfg.Memtable.MaxEntries, cfg.Memtable.FlushInterval)
	participantStatsRepo := badger.NewParticipantStatsRepository(db, cfg.Memtable.MaxEntries, cfg.Memtable.FlushInterval)
	artistLocationRepo := badger.NewArtistLocationRepository(db, cfg.Memtable.MaxEntries, cfg.Memtable.FlushInterval)
	scanStatusRepo := badger.NewScanStatusRepository(db)
	playbackHistoryRepo := badger.NewPlaybackHistoryRepository(db)

	userRepo := badger.NewUserRepository(db)
	playQueueRepo := badger.NewPlayQueueRepository(db)
	systemConfigStore := badger.NewSystemConfigStore(db)

	genreService := cmdgenre.New(idGenerator, genreRepo, bus)
	artistService := cmdartist.New(idGenerator, artistRepo, normalize.ArtistNormalizer{IgnoredArticles: ignoredArticles}, bus)
	albumService := cmdalbum.New(idGenerator, albumRepo, normalize.AlbumNormalizer{IgnoredArticles: ignoredArticles}, bus)
	audioFileService := cmdaudiofile.New(idGenerator, audioFileRepo, bus)
	coverArtService := cmdcoverart.New(idGenerator, coverArtRepo, bus)

	coordinator.Register(bus, albumService, artistService, audioFileService, coverArtService)
	coordinator.RegisterFanout(bus,
		fanout.NewGenreOnAudioFileParsed(genreService),
		fanout.NewArtistOnAudioFileParsed(artistService),
		fanout.NewAlbumOnAudioFileParsed(albumService),
		fanout.NewAudioFileOnAudioFileParsed(audioFileService),
		fanout.NewCoverArtOnImageFileParsed(coverArtService),
	)
	projector.Register(bus, genreStatsRepo, albumStatsRepo, albumLocationRepo, participantStatsRepo, artistLocationRepo, scanStatusRepo, playbackHistoryRepo)

	mediaParseService := mediaparse.New(
		mediaparse.NewStorageClientFactory(),
		mediaparse.NewTagMetadataReader(),
		mediaparse.NewRuleEngine(genreSynonyms),
		bus,
	)
	eventbus.Subscribe[appevent.FileAdded](bus, "fanout_media_parse", fanout.NewMediaParseOnFileAdded(mediaParseService))
	eventbus.Subscribe[appevent.FileRemoved](bus, "fanout_audio_file_removed", fanout.NewAudioFileOnFileRemoved(audioFileService))

	encryptor, err := security.NewEncryptor(cfg.Security.EncryptionSecret)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to construct encryptor")
	}
	tokenService, err := security.NewTokenService(cfg.Security.TokenSecret, cfg.Security.TokenTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to construct token service")
	}

	// The user-facing command surface the (external) HTTP layer consumes.
	services := app.NewServices(idGenerator, bus, userRepo, playQueueRepo, audioFileRepo, systemConfigStore, security.NewBcryptHasherWithCost(cfg.Security.BcryptCost), encryptor, tokenService)

	startupCtx := context.Background()
	instanceID, err := services.InstanceID(startupCtx, uuid.NewString())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to resolve instance id")
	}
	logging.Info().Str("instance_id", instanceID).Msg("instance identity resolved")

	if err := services.BootstrapAdmin(startupCtx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		logging.Fatal().Err(err).Msg("failed to bootstrap admin account")
	}

	scanService := scan.New(libraryRepo, bus)

	targets := make([]scan.LibraryTarget, 0, len(cfg.Library))
	for _, lib := range cfg.Library {
		targets = append(targets, scan.LibraryTarget{
			ID:   domainvalue.LibraryID(lib.ID),
			Name: lib.Name,
			Path: domainvalue.ParseMediaPath(lib.Path),
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slogLogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		ShutdownTimeout: 10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create supervisor tree")
	}

	tree.AddDataService(scan.NewPoller(scanService, targets, cfg.Scan.PollInterval, cfg.Scan.Concurrency, cfg.Scan.FullScan))

	for _, lib := range cfg.Library {
		if !lib.Watch {
			continue
		}
		target := scan.LibraryTarget{
			ID:   domainvalue.LibraryID(lib.ID),
			Name: lib.Name,
			Path: domainvalue.ParseMediaPath(lib.Path),
		}
		tree.AddDataService(scan.NewWatcher(scanService, target, 0))
		logging.Info().Int64("library_id", lib.ID).Msg("live scan watch enabled for library")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("supervisor tree starting")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service failed to stop")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Memtable.ShutdownFlushTimeout)
	defer shutdownCancel()
	flushAll(shutdownCtx, cfg.Memtable.ShutdownFlushTimeout, genreStatsRepo, albumStatsRepo, albumLocationRepo, participantStatsRepo, artistLocationRepo)

	logging.Info().Msg("harmonia stopped gracefully")
}

// flusher is the subset of the memtable-buffered repository surface main
// needs at shutdown: a final drain of whatever is still buffered.
type flusher interface {
	ShutdownGracefully(ctx context.Context, wait time.Duration) int
}

func flushAll(ctx context.Context, wait time.Duration, flushers ...flusher) {
	for _, f := range flushers {
		f.ShutdownGracefully(ctx, wait)
	}
}

func busMode(mode config.BusMode) eventbus.Mode {
	if mode == config.BusModeSynchronous {
		return eventbus.ModeSynchronous
	}
	return eventbus.ModeFireAndForget
}

func badgerPath() string {
	if path := os.Getenv("HARMONIA_BADGER_PATH"); path != "" {
		return path
	}
	return "./data/badger"
}
