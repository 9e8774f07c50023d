// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package normalize reduces artist and album names to a comparable sort key:
// diacritics stripped, a configured leading article removed (matched
// case-insensitively), special Unicode punctuation folded to its ASCII
// equivalent, and the result lowercased. This is how command services detect
// "The Beatles" and "Beatles" as the same artist during create-or-find; a
// trailing article, as in "Beatles, The", is not removed.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// punctuationFolds maps visually-similar Unicode punctuation variants to a
// single ASCII representative, so "Guns N’ Roses" and "Guns N' Roses"
// normalize identically.
var punctuationFolds = map[rune]rune{
	'‘': '\'', '’': '\'', '‛': '\'', '′': '\'',
	'“': '"', '”': '"', '″': '"', '〝': '"', '〞': '"',
	'‐': '-', '‑': '-', '‒': '-', '–': '-', '—': '-', '―': '-',
}

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldPunctuation replaces special-purpose Unicode quote and dash
// characters with their plain ASCII equivalents.
func FoldPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if folded, ok := punctuationFolds[r]; ok {
			b.WriteRune(folded)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RemoveArticle strips a leading "<article> " prefix (matched
// case-insensitively) from name, returning name unchanged if no configured article matches.
func RemoveArticle(name string, articles []string) string {
	for _, article := range articles {
		prefix := article + " "
		if len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
			return name[len(prefix):]
		}
	}
	return name
}

// SanitizeNoArticle is the full normalization pipeline: strip diacritics,
// remove a leading configured article, fold special punctuation, and
// lowercase.
func SanitizeNoArticle(original string, articles []string) string {
	withoutAccents, _, err := transform.String(stripDiacritics, original)
	if err != nil {
		withoutAccents = original
	}
	withoutArticle := RemoveArticle(strings.TrimSpace(withoutAccents), articles)
	return FoldPunctuation(strings.ToLower(strings.TrimSpace(withoutArticle)))
}

// ArtistNormalizer implements command/shared.Normalizer for artist names.
type ArtistNormalizer struct {
	IgnoredArticles []string
}

// Normalize implements shared.Normalizer.
func (n ArtistNormalizer) Normalize(name string) string {
	return SanitizeNoArticle(name, n.IgnoredArticles)
}

// AlbumNormalizer implements command/shared.Normalizer for album names.
type AlbumNormalizer struct {
	IgnoredArticles []string
}

// Normalize implements shared.Normalizer.
func (n AlbumNormalizer) Normalize(name string) string {
	return SanitizeNoArticle(name, n.IgnoredArticles)
}
