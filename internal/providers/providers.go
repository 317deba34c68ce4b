// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

// Package providers defines the narrow interfaces through which the engine
// consumes its external collaborators: the media catalog, per-user playback
// state, and user identity resolution.
//
// The engine never probes host-specific shapes directly. Host adapters
// translate whatever the media server exposes into the fixed Item,
// MediaStreamInfo, and PersonInfo structs defined here, isolating the core
// from host version drift.
//
// All provider calls are expected to be fast in-memory lookups from the
// engine's perspective; slow I/O belongs behind the provider implementation.
package providers

import (
	"context"
	"time"
)

// Media type tags used by the catalog.
const (
	MediaTypeMovie   = "Movie"
	MediaTypeSeries  = "Series"
	MediaTypeEpisode = "Episode"
	MediaTypeAudio   = "Audio"
	MediaTypeAlbum   = "MusicAlbum"
)

// MediaStreamInfo describes a single media stream of an item.
// Adapters fill only the fields the stream type carries.
type MediaStreamInfo struct {
	// Type is "Audio" or "Video".
	Type string `json:"type"`

	// Language is the ISO language tag of an audio stream.
	Language string `json:"language,omitempty"`

	// Audio quality attributes.
	BitRate      int `json:"bit_rate,omitempty"`
	SampleRate   int `json:"sample_rate,omitempty"`
	BitDepth     int `json:"bit_depth,omitempty"`
	ChannelCount int `json:"channel_count,omitempty"`

	// Video attributes.
	Height    int     `json:"height,omitempty"`
	Width     int     `json:"width,omitempty"`
	Framerate float64 `json:"framerate,omitempty"`
}

// PersonInfo is one credited person on an item.
type PersonInfo struct {
	Name string `json:"name"`

	// Role is the credit type: "Actor", "Director", "Writer", "Producer",
	// "GuestStar", or a host-specific value the engine does not recognize.
	Role string `json:"role"`
}

// Item is the catalog's view of one media item. It carries the static
// metadata the feature extractor reads; per-user state comes from the
// UserDataProvider instead.
type Item struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MediaType string `json:"media_type"`

	// Series linkage, set for episodes.
	SeriesID      string `json:"series_id,omitempty"`
	SeasonNumber  *int   `json:"season_number,omitempty"`
	EpisodeNumber *int   `json:"episode_number,omitempty"`

	ProductionYear  int     `json:"production_year,omitempty"`
	CommunityRating float64 `json:"community_rating,omitempty"`
	CriticRating    float64 `json:"critic_rating,omitempty"`
	ParentalRating  string  `json:"parental_rating,omitempty"`
	RuntimeMinutes  float64 `json:"runtime_minutes,omitempty"`

	Genres       []string `json:"genres,omitempty"`
	Studios      []string `json:"studios,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Artists      []string `json:"artists,omitempty"`
	AlbumArtists []string `json:"album_artists,omitempty"`

	DateAdded         time.Time  `json:"date_added,omitempty"`
	DateModified      time.Time  `json:"date_modified,omitempty"`
	DateLastRefreshed time.Time  `json:"date_last_refreshed,omitempty"`
	DateLastSaved     time.Time  `json:"date_last_saved,omitempty"`
	PremiereDate      *time.Time `json:"premiere_date,omitempty"`

	MediaStreams []MediaStreamInfo `json:"media_streams,omitempty"`
}

// PlayState is the per-(item, user) playback record.
type PlayState struct {
	Played    bool
	PlayCount int
	Favorite  bool

	// LastPlayed is the zero time when the user has never played the item.
	LastPlayed time.Time
}

// User is a resolved user context.
type User struct {
	ID   string
	Name string
}

// CatalogProvider supplies item metadata the extractor cannot read off the
// item itself: series membership, collections, and people credits.
type CatalogProvider interface {
	// EpisodesOf returns every episode of a series, in catalog order.
	EpisodesOf(ctx context.Context, seriesID string) ([]Item, error)

	// SeriesOf returns the series item for a series ID.
	SeriesOf(ctx context.Context, seriesID string) (Item, error)

	// CollectionsOf returns the names of collections containing the item.
	CollectionsOf(ctx context.Context, itemID string) ([]string, error)

	// PeopleOf returns the credited people of an item.
	PeopleOf(ctx context.Context, itemID string) ([]PersonInfo, error)
}

// UserDataProvider supplies per-(item, user) playback state.
type UserDataProvider interface {
	PlayState(ctx context.Context, itemID, userID string) (PlayState, error)
}

// IdentityResolver maps a user reference (ID or name) to a user context.
type IdentityResolver interface {
	Resolve(ctx context.Context, userRef string) (User, error)
}
