// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

package operand

// Flags enumerates the expensive sub-extractions a rule set needs. The rules
// package computes a Flags value once per compiled rule set by inspecting
// which fields its expressions reference, so extraction work a rule set never
// reads is skipped entirely.
type Flags struct {
	// AudioLanguages scans audio streams for language tags.
	AudioLanguages bool

	// StreamQuality scans media streams for audio quality and video
	// resolution attributes.
	StreamQuality bool

	// People looks up and categorizes credited people.
	People bool

	// NextUnwatched computes the next-unwatched signal for episodes.
	NextUnwatched bool

	// SeriesInfo resolves series name and inherited series tags for
	// episodes.
	SeriesInfo bool

	// Collections resolves collection membership.
	Collections bool
}

// Any reports whether at least one expensive sub-extraction is requested.
func (f Flags) Any() bool {
	return f.AudioLanguages || f.StreamQuality || f.People ||
		f.NextUnwatched || f.SeriesInfo || f.Collections
}

// Union merges two flag sets.
func (f Flags) Union(other Flags) Flags {
	return Flags{
		AudioLanguages: f.AudioLanguages || other.AudioLanguages,
		StreamQuality:  f.StreamQuality || other.StreamQuality,
		People:         f.People || other.People,
		NextUnwatched:  f.NextUnwatched || other.NextUnwatched,
		SeriesInfo:     f.SeriesInfo || other.SeriesInfo,
		Collections:    f.Collections || other.Collections,
	}
}

// FlagsForField returns the sub-extractions one field requires. Cheap
// scalar, string, and date fields require none.
func FlagsForField(field string) Flags {
	switch field {
	case FieldAudioLanguages:
		return Flags{AudioLanguages: true}
	case FieldAudioBitrate, FieldAudioSampleRate, FieldAudioBitDepth,
		FieldAudioChannelCount, FieldVideoHeight, FieldVideoWidth, FieldFramerate:
		return Flags{StreamQuality: true}
	case FieldActors, FieldDirectors, FieldWriters, FieldProducers,
		FieldGuestStars, FieldPeople:
		return Flags{People: true}
	case FieldNextUnwatched:
		return Flags{NextUnwatched: true}
	case FieldSeriesName:
		return Flags{SeriesInfo: true}
	case FieldTags:
		// Episodes inherit series tags, so tag rules need series info.
		return Flags{SeriesInfo: true}
	case FieldCollections:
		return Flags{Collections: true}
	default:
		return Flags{}
	}
}
