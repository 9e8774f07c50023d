// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeNoArticleStripsArticleAndLowercases(t *testing.T) {
	got := SanitizeNoArticle("The Beatles", []string{"The", "A", "An"})
	assert.Equal(t, "beatles", got)
}

func TestSanitizeNoArticleStripsDiacritics(t *testing.T) {
	got := SanitizeNoArticle("Beyoncé", nil)
	assert.Equal(t, "beyonce", got)
}

func TestSanitizeNoArticleFoldsPunctuation(t *testing.T) {
	got := SanitizeNoArticle("Guns N’ Roses", nil)
	assert.Equal(t, "guns n' roses", got)
}

func TestSanitizeNoArticleLeavesUnmatchedPrefixAlone(t *testing.T) {
	got := SanitizeNoArticle("Radiohead", []string{"The"})
	assert.Equal(t, "radiohead", got)
}

func TestArtistNormalizerMatchesAlbumNormalizer(t *testing.T) {
	articles := []string{"The"}
	artistN := ArtistNormalizer{IgnoredArticles: articles}
	albumN := AlbumNormalizer{IgnoredArticles: articles}

	assert.Equal(t, artistN.Normalize("The Who"), albumN.Normalize("The Who"))
}
