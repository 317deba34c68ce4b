// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

// Package operand implements the per-item feature record ("operand") and the
// extractor that builds one from catalog metadata plus per-user playback
// state.
//
// An Operand is built once per (item, refresh) and treated as immutable by
// rule evaluation. Expensive sub-extractions (stream scans, people lookups,
// series and collection resolution, next-unwatched computation) run only when
// the compiled rule set references a field that needs them; the extractor
// receives that requirement as a Flags value computed statically from the
// rule set.
package operand

// Field names. These are the wire-level MemberName values rules refer to and
// the keys of the field catalog in the rules package.
const (
	FieldName           = "Name"
	FieldMediaType      = "MediaType"
	FieldSeriesName     = "SeriesName"
	FieldParentalRating = "ParentalRating"

	FieldCommunityRating   = "CommunityRating"
	FieldCriticRating      = "CriticRating"
	FieldProductionYear    = "ProductionYear"
	FieldRuntimeMinutes    = "RuntimeMinutes"
	FieldAudioBitrate      = "AudioBitrate"
	FieldAudioSampleRate   = "AudioSampleRate"
	FieldAudioBitDepth     = "AudioBitDepth"
	FieldAudioChannelCount = "AudioChannelCount"
	FieldVideoHeight       = "VideoHeight"
	FieldVideoWidth        = "VideoWidth"
	FieldFramerate         = "Framerate"

	FieldGenres         = "Genres"
	FieldStudios        = "Studios"
	FieldTags           = "Tags"
	FieldCollections    = "Collections"
	FieldAudioLanguages = "AudioLanguages"
	FieldArtists        = "Artists"
	FieldAlbumArtists   = "AlbumArtists"
	FieldActors         = "Actors"
	FieldDirectors      = "Directors"
	FieldWriters        = "Writers"
	FieldProducers      = "Producers"
	FieldGuestStars     = "GuestStars"
	FieldPeople         = "People"

	FieldDateAdded         = "DateAdded"
	FieldDateModified      = "DateModified"
	FieldDateLastRefreshed = "DateLastRefreshed"
	FieldDateLastSaved     = "DateLastSaved"
	FieldPremiereDate      = "PremiereDate"

	FieldIsPlayed      = "IsPlayed"
	FieldPlayCount     = "PlayCount"
	FieldIsFavorite    = "IsFavorite"
	FieldLastPlayed    = "LastPlayed"
	FieldNextUnwatched = "NextUnwatched"

	FieldSimilarTo       = "SimilarTo"
	FieldSimilarityScore = "SimilarityScore"
)

// NeverPlayed is the LastPlayed sentinel for users with no play history.
// It sorts before any real timestamp.
const NeverPlayed int64 = -1

// Operand is the extracted feature record of one catalog item for one
// filtering run. Rule evaluation reads it through the typed accessors below
// and never mutates it; the one exception is the similarity score, which the
// pipeline sets once via SetSimilarityScore between filtering and ordering.
type Operand struct {
	ID        string
	Name      string
	MediaType string

	SeriesName     string
	ParentalRating string

	CommunityRating   float64
	CriticRating      float64
	ProductionYear    int
	RuntimeMinutes    float64
	AudioBitrate      int
	AudioSampleRate   int
	AudioBitDepth     int
	AudioChannelCount int
	VideoHeight       int
	VideoWidth        int
	Framerate         float64

	Genres      []string
	Studios     []string
	Tags        []string
	Collections []string

	// SeriesCollections holds the collections of an episode's parent
	// series. Collection rules fold them in only when the rule enables
	// series expansion.
	SeriesCollections []string

	AudioLanguages []string
	Artists        []string
	AlbumArtists   []string
	Actors         []string
	Directors      []string
	Writers        []string
	Producers      []string
	GuestStars     []string
	People         []string

	// Epoch seconds; invalid or missing dates are normalized to 0.
	DateAdded         int64
	DateModified      int64
	DateLastRefreshed int64
	DateLastSaved     int64
	PremiereDate      int64

	// Per-user state, keyed by user ID.
	Played        map[string]bool
	PlayCount     map[string]int
	Favorite      map[string]bool
	LastPlayed    map[string]int64 // epoch seconds, NeverPlayed if never
	NextUnwatched map[string]bool

	similarityScore float64
}

// Text returns the value of a string-typed field.
func (o *Operand) Text(field string) (string, bool) {
	switch field {
	case FieldName:
		return o.Name, true
	case FieldMediaType:
		return o.MediaType, true
	case FieldSeriesName:
		return o.SeriesName, true
	case FieldParentalRating:
		return o.ParentalRating, true
	default:
		return "", false
	}
}

// List returns the values of a list-typed field.
func (o *Operand) List(field string) ([]string, bool) {
	switch field {
	case FieldGenres:
		return o.Genres, true
	case FieldStudios:
		return o.Studios, true
	case FieldTags:
		return o.Tags, true
	case FieldCollections:
		return o.Collections, true
	case FieldAudioLanguages:
		return o.AudioLanguages, true
	case FieldArtists:
		return o.Artists, true
	case FieldAlbumArtists:
		return o.AlbumArtists, true
	case FieldActors:
		return o.Actors, true
	case FieldDirectors:
		return o.Directors, true
	case FieldWriters:
		return o.Writers, true
	case FieldProducers:
		return o.Producers, true
	case FieldGuestStars:
		return o.GuestStars, true
	case FieldPeople:
		return o.People, true
	default:
		return nil, false
	}
}

// Number returns the value of a numeric field. Per-user numeric fields
// resolve against the given user ID.
func (o *Operand) Number(field, userID string) (float64, bool) {
	switch field {
	case FieldCommunityRating:
		return o.CommunityRating, true
	case FieldCriticRating:
		return o.CriticRating, true
	case FieldProductionYear:
		return float64(o.ProductionYear), true
	case FieldRuntimeMinutes:
		return o.RuntimeMinutes, true
	case FieldAudioBitrate:
		return float64(o.AudioBitrate), true
	case FieldAudioSampleRate:
		return float64(o.AudioSampleRate), true
	case FieldAudioBitDepth:
		return float64(o.AudioBitDepth), true
	case FieldAudioChannelCount:
		return float64(o.AudioChannelCount), true
	case FieldVideoHeight:
		return float64(o.VideoHeight), true
	case FieldVideoWidth:
		return float64(o.VideoWidth), true
	case FieldFramerate:
		return o.Framerate, true
	case FieldPlayCount:
		return float64(o.PlayCount[userID]), true
	case FieldSimilarityScore:
		return o.similarityScore, true
	default:
		return 0, false
	}
}

// Date returns epoch seconds of a date field. LastPlayed resolves against
// the given user ID, defaulting to the NeverPlayed sentinel.
func (o *Operand) Date(field, userID string) (int64, bool) {
	switch field {
	case FieldDateAdded:
		return o.DateAdded, true
	case FieldDateModified:
		return o.DateModified, true
	case FieldDateLastRefreshed:
		return o.DateLastRefreshed, true
	case FieldDateLastSaved:
		return o.DateLastSaved, true
	case FieldPremiereDate:
		return o.PremiereDate, true
	case FieldLastPlayed:
		if ts, ok := o.LastPlayed[userID]; ok {
			return ts, true
		}
		return NeverPlayed, true
	default:
		return 0, false
	}
}

// Flag returns the value of a boolean field for the given user.
func (o *Operand) Flag(field, userID string) (bool, bool) {
	switch field {
	case FieldIsPlayed:
		return o.Played[userID], true
	case FieldIsFavorite:
		return o.Favorite[userID], true
	case FieldNextUnwatched:
		return o.NextUnwatched[userID], true
	default:
		return false, false
	}
}

// SimilarityScore returns the score set by the similarity scorer, 0 if the
// item was never scored.
func (o *Operand) SimilarityScore() float64 {
	return o.similarityScore
}

// SetSimilarityScore records the similarity score for use as a sort key.
// Called once per item by the pipeline; not part of rule evaluation.
func (o *Operand) SetSimilarityScore(score float64) {
	o.similarityScore = score
}
