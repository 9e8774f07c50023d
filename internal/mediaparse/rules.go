// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package mediaparse

import (
	"regexp"
	"sort"
	"strings"

	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// rule is one step of the metadata normalization pipeline: a guard and a
// mutation, both pure functions of the metadata under construction. Rules
// never observe the bus or any other collaborator.
type rule struct {
	name        string
	priority    int
	shouldApply func(*domainvalue.AudioMetadata) bool
	apply       func(*domainvalue.AudioMetadata)
}

// RuleEngine runs a priority-ordered pipeline of normalization rules over a
// freshly read AudioMetadata (spec §4.9). The built-in rule set covers
// title/album cleanup, artist role and feat extraction, artist and genre
// splitting, genre normalization, and track-number cleanup; callers may add
// more with AddRule before Apply runs.
type RuleEngine struct {
	rules         []rule
	genreSynonyms map[string]string
}

// NewRuleEngine constructs a RuleEngine with the built-in rule set,
// normalizing genre spellings through the given synonym table (e.g.
// "hip hop" → "Hip-Hop"). A nil table disables synonym substitution.
func NewRuleEngine(genreSynonyms map[string]string) *RuleEngine {
	e := &RuleEngine{genreSynonyms: genreSynonyms}
	e.rules = append(e.rules,
		rule{name: "title_cleanup", priority: 10, shouldApply: hasTitle, apply: cleanupTitle},
		rule{name: "album_cleanup", priority: 20, shouldApply: hasAlbum, apply: cleanupAlbum},
		rule{name: "artist_role_extraction", priority: 30, shouldApply: hasArtists, apply: extractArtistRoles},
		rule{name: "artist_feat_extraction", priority: 40, shouldApply: hasTitle, apply: extractFeatFromTitle},
		rule{name: "artist_split", priority: 50, shouldApply: hasArtists, apply: splitArtists},
		rule{name: "genre_split", priority: 60, shouldApply: hasGenres, apply: splitGenres},
		rule{name: "genre_normalization", priority: 70, shouldApply: hasGenres, apply: e.normalizeGenres},
		rule{name: "year_extraction", priority: 80, shouldApply: alwaysTrue, apply: noopYearExtraction},
		rule{name: "track_number_cleanup", priority: 90, shouldApply: alwaysTrue, apply: noopTrackNumberCleanup},
	)
	sort.SliceStable(e.rules, func(i, j int) bool { return e.rules[i].priority < e.rules[j].priority })
	return e
}

// AddRule registers an additional rule, re-sorting the pipeline by priority.
func (e *RuleEngine) AddRule(r rule) {
	e.rules = append(e.rules, r)
	sort.SliceStable(e.rules, func(i, j int) bool { return e.rules[i].priority < e.rules[j].priority })
}

// Apply runs every rule whose guard passes, in priority order, mutating
// metadata in place.
func (e *RuleEngine) Apply(metadata *domainvalue.AudioMetadata) {
	for _, r := range e.rules {
		if r.shouldApply(metadata) {
			r.apply(metadata)
		}
	}
}

func alwaysTrue(*domainvalue.AudioMetadata) bool { return true }
func hasTitle(m *domainvalue.AudioMetadata) bool  { return m.Title != "" }
func hasAlbum(m *domainvalue.AudioMetadata) bool  { return m.Album != "" }
func hasGenres(m *domainvalue.AudioMetadata) bool { return len(m.Genres) > 0 }
func hasArtists(m *domainvalue.AudioMetadata) bool {
	return len(m.Artists) > 0 || len(m.AlbumArtists) > 0
}

// redundantSuffix strips a trailing parenthetical feat credit ("(feat. X)",
// "(featuring X)", "(ft. X)") from a title or album name. Other trailing
// parentheticals, such as "(Remastered)", are left in place.
var redundantSuffix = regexp.MustCompile(`(?i)\s*\((?:feat\.?|featuring|ft\.?)[^)]*\)\s*$`)

func cleanupTitle(m *domainvalue.AudioMetadata) {
	m.Title = strings.TrimSpace(redundantSuffix.ReplaceAllString(m.Title, ""))
}

func cleanupAlbum(m *domainvalue.AudioMetadata) {
	m.Album = strings.TrimSpace(redundantSuffix.ReplaceAllString(m.Album, ""))
}

// roleSuffix matches a trailing "[producer]"-style annotation on a credited
// name, pulling it into the participant's SubRole.
var roleSuffix = regexp.MustCompile(`\s*\[([^\]]+)\]\s*$`)

func extractArtistRoles(m *domainvalue.AudioMetadata) {
	m.Artists = extractRoleSuffixes(m.Artists)
	m.AlbumArtists = extractRoleSuffixes(m.AlbumArtists)
}

func extractRoleSuffixes(participants []domainvalue.Participant) []domainvalue.Participant {
	for i, p := range participants {
		if match := roleSuffix.FindStringSubmatch(p.Name); match != nil {
			participants[i].Name = strings.TrimSpace(p.Name[:len(p.Name)-len(match[0])])
			participants[i].SubRole = strings.ToLower(match[1])
		}
	}
	return participants
}

// featPattern recognizes a "feat."/"featuring"/"ft." credit embedded in the
// title string itself, splitting it into a separate participant with
// SubRole "featured" rather than folding it into the primary artist name.
var featPattern = regexp.MustCompile(`(?i)\s*[\(\[]?\b(?:feat\.?|featuring|ft\.?)\s+([^)\]]+)[\)\]]?\s*$`)

func extractFeatFromTitle(m *domainvalue.AudioMetadata) {
	match := featPattern.FindStringSubmatch(m.Title)
	if match == nil {
		return
	}
	featured := strings.TrimSpace(match[1])
	if featured == "" {
		return
	}
	m.Title = strings.TrimSpace(m.Title[:len(m.Title)-len(match[0])])
	for _, name := range splitParticipantNames(featured) {
		m.Artists = append(m.Artists, domainvalue.Participant{Name: name, Role: "artist", SubRole: "featured"})
	}
}

// artistSeparators splits a single credited-name string into multiple
// participants on comma, ampersand, or semicolon.
var artistSeparators = regexp.MustCompile(`\s*(?:,|&|;)\s*`)

func splitArtists(m *domainvalue.AudioMetadata) {
	m.Artists = splitParticipants(m.Artists)
	m.AlbumArtists = splitParticipants(m.AlbumArtists)
}

func splitParticipants(participants []domainvalue.Participant) []domainvalue.Participant {
	split := make([]domainvalue.Participant, 0, len(participants))
	for _, p := range participants {
		for _, name := range splitParticipantNames(p.Name) {
			split = append(split, domainvalue.Participant{Name: name, Role: p.Role, SubRole: p.SubRole})
		}
	}
	return split
}

func splitParticipantNames(name string) []string {
	parts := artistSeparators.Split(name, -1)
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}

// genreSeparators splits a single genre tag string on semicolon or comma.
var genreSeparators = regexp.MustCompile(`\s*(?:;|,)\s*`)

func splitGenres(m *domainvalue.AudioMetadata) {
	split := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		for _, part := range genreSeparators.Split(g, -1) {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				split = append(split, trimmed)
			}
		}
	}
	m.Genres = split
}

// normalizeGenres title-cases each genre and substitutes any configured
// synonym (e.g. "hip hop" → "Hip-Hop"), deduplicating the result.
func (e *RuleEngine) normalizeGenres(m *domainvalue.AudioMetadata) {
	seen := make(map[string]bool, len(m.Genres))
	normalized := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		key := strings.ToLower(strings.TrimSpace(g))
		if canonical, ok := e.genreSynonyms[key]; ok {
			key = strings.ToLower(canonical)
			g = canonical
		} else {
			g = titleCase(g)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		normalized = append(normalized, g)
	}
	m.Genres = normalized
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// noopYearExtraction is a placeholder for the date-string parsing step: the
// metadata reader already delivers AudioMetadata.Year as an int (dhowden/tag
// parses the year out of whatever date tag is present), so there is no raw
// date string left for this rule to extract from by the time it runs.
func noopYearExtraction(*domainvalue.AudioMetadata) {}

// noopTrackNumberCleanup mirrors noopYearExtraction: the metadata reader
// already returns the numerator of a "3/12" style track tag, so TrackNumber
// needs no further cleanup here. The rule stays in the pipeline (rather
// than being omitted) so the priority ordering documented in §4.9 is
// reflected exactly in code.
func noopTrackNumberCleanup(*domainvalue.AudioMetadata) {}
