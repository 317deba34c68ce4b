// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

package operand

import (
	"context"
	"strings"
	"time"

	"github.com/tomtom215/smartlists/internal/logging"
	"github.com/tomtom215/smartlists/internal/metrics"
	"github.com/tomtom215/smartlists/internal/nextup"
	"github.com/tomtom215/smartlists/internal/providers"
	"github.com/tomtom215/smartlists/internal/refreshcache"
)

// Extractor builds Operands for one filtering run. It reads expensive
// sub-extractions through the run cache so repeated lookups (series episodes,
// people, collection membership) are paid once per run.
//
// A failed sub-extraction never aborts the record: the failure is logged and
// the field defaults to its neutral value (empty list, zero, never played).
type Extractor struct {
	catalog  providers.CatalogProvider
	userdata providers.UserDataProvider
	cache    *refreshcache.Cache
	nextup   *nextup.Calculator

	// IncludeFullyUnwatched controls whether a series the user has never
	// started can yield a next-unwatched episode.
	IncludeFullyUnwatched bool
}

// NewExtractor creates an extractor bound to a run cache.
func NewExtractor(catalog providers.CatalogProvider, userdata providers.UserDataProvider, cache *refreshcache.Cache) *Extractor {
	return &Extractor{
		catalog:  catalog,
		userdata: userdata,
		cache:    cache,
		nextup:   nextup.New(catalog, userdata, cache),
	}
}

// Extract builds the feature record of one item for the given users. Cheap
// scalar, string, and date fields are always populated; expensive
// sub-extractions run only when the corresponding flag is set.
func (e *Extractor) Extract(ctx context.Context, item providers.Item, users []string, flags Flags) *Operand {
	o := &Operand{
		ID:        item.ID,
		Name:      item.Name,
		MediaType: item.MediaType,

		ParentalRating:  item.ParentalRating,
		CommunityRating: item.CommunityRating,
		CriticRating:    item.CriticRating,
		ProductionYear:  item.ProductionYear,
		RuntimeMinutes:  item.RuntimeMinutes,

		Genres:       item.Genres,
		Studios:      item.Studios,
		Tags:         item.Tags,
		Artists:      item.Artists,
		AlbumArtists: item.AlbumArtists,

		DateAdded:         epochSeconds(item.DateAdded),
		DateModified:      epochSeconds(item.DateModified),
		DateLastRefreshed: epochSeconds(item.DateLastRefreshed),
		DateLastSaved:     epochSeconds(item.DateLastSaved),

		Played:        make(map[string]bool, len(users)),
		PlayCount:     make(map[string]int, len(users)),
		Favorite:      make(map[string]bool, len(users)),
		LastPlayed:    make(map[string]int64, len(users)),
		NextUnwatched: make(map[string]bool, len(users)),
	}
	if item.PremiereDate != nil {
		o.PremiereDate = epochSeconds(*item.PremiereDate)
	}

	e.extractUserData(ctx, item, users, o)

	if flags.AudioLanguages {
		o.AudioLanguages = audioLanguages(item.MediaStreams)
	}
	if flags.StreamQuality {
		extractStreamQuality(item.MediaStreams, o)
	}
	if flags.People {
		e.extractPeople(ctx, item, o)
	}
	if flags.SeriesInfo {
		e.extractSeriesInfo(ctx, item, o)
	}
	if flags.Collections {
		e.extractCollections(ctx, item, o)
	}
	if flags.NextUnwatched {
		e.extractNextUnwatched(ctx, item, users, o)
	}

	return o
}

func (e *Extractor) extractUserData(ctx context.Context, item providers.Item, users []string, o *Operand) {
	for _, user := range users {
		st, err := e.userdata.PlayState(ctx, item.ID, user)
		if err != nil {
			metrics.ExtractionWarnings.Inc()
			logging.Ctx(ctx).Warn().Err(err).
				Str("item", item.ID).Str("user", user).
				Msg("play state extraction failed, defaulting to never played")
			o.LastPlayed[user] = NeverPlayed
			continue
		}
		o.Played[user] = st.Played
		o.PlayCount[user] = st.PlayCount
		o.Favorite[user] = st.Favorite
		if st.LastPlayed.IsZero() {
			o.LastPlayed[user] = NeverPlayed
		} else {
			o.LastPlayed[user] = st.LastPlayed.Unix()
		}
	}
}

func (e *Extractor) extractPeople(ctx context.Context, item providers.Item, o *Operand) {
	people, ok := e.cache.People(item.ID)
	if !ok {
		credits, err := e.catalog.PeopleOf(ctx, item.ID)
		if err != nil {
			metrics.ExtractionWarnings.Inc()
			logging.Ctx(ctx).Warn().Err(err).Str("item", item.ID).
				Msg("people extraction failed, defaulting to empty")
			e.cache.SetPeople(item.ID, refreshcache.People{})
			return
		}
		people = CategorizePeople(credits)
		e.cache.SetPeople(item.ID, people)
	}
	o.Actors = people.Actors
	o.Directors = people.Directors
	o.Writers = people.Writers
	o.Producers = people.Producers
	o.GuestStars = people.GuestStars
	o.People = people.All
}

// extractSeriesInfo resolves the parent series of an episode and folds the
// series tags into the episode's own tags so tag rules match episodes by
// their show.
func (e *Extractor) extractSeriesInfo(ctx context.Context, item providers.Item, o *Operand) {
	if item.MediaType != providers.MediaTypeEpisode || item.SeriesID == "" {
		return
	}

	name, haveName := e.cache.SeriesName(item.SeriesID)
	tags, haveTags := e.cache.SeriesTags(item.SeriesID)
	if !haveName || !haveTags {
		series, err := e.catalog.SeriesOf(ctx, item.SeriesID)
		if err != nil {
			metrics.ExtractionWarnings.Inc()
			logging.Ctx(ctx).Warn().Err(err).
				Str("item", item.ID).Str("series", item.SeriesID).
				Msg("series lookup failed, defaulting to empty")
			e.cache.SetSeriesName(item.SeriesID, "")
			e.cache.SetSeriesTags(item.SeriesID, nil)
			return
		}
		name = series.Name
		tags = series.Tags
		e.cache.SetSeriesName(item.SeriesID, name)
		e.cache.SetSeriesTags(item.SeriesID, tags)
	}

	o.SeriesName = name
	o.Tags = mergeDistinct(o.Tags, tags)
}

func (e *Extractor) extractCollections(ctx context.Context, item providers.Item, o *Operand) {
	names, ok := e.cache.Collections(item.ID)
	if !ok {
		var err error
		names, err = e.catalog.CollectionsOf(ctx, item.ID)
		if err != nil {
			metrics.ExtractionWarnings.Inc()
			logging.Ctx(ctx).Warn().Err(err).Str("item", item.ID).
				Msg("collection lookup failed, defaulting to empty")
			e.cache.SetCollections(item.ID, nil)
			return
		}
		e.cache.SetCollections(item.ID, names)
	}

	o.Collections = names

	// The collections of an episode's series are kept separately; rules
	// with series expansion enabled fold them in at evaluation time.
	if item.MediaType == providers.MediaTypeEpisode && item.SeriesID != "" {
		seriesColls, ok := e.cache.Collections(item.SeriesID)
		if !ok {
			var err error
			seriesColls, err = e.catalog.CollectionsOf(ctx, item.SeriesID)
			if err != nil {
				metrics.ExtractionWarnings.Inc()
				logging.Ctx(ctx).Warn().Err(err).Str("series", item.SeriesID).
					Msg("series collection lookup failed")
				seriesColls = nil
			}
			e.cache.SetCollections(item.SeriesID, seriesColls)
		}
		o.SeriesCollections = seriesColls
	}
}

func (e *Extractor) extractNextUnwatched(ctx context.Context, item providers.Item, users []string, o *Operand) {
	for _, user := range users {
		next, err := e.nextup.IsNextUnwatched(ctx, item, user, e.IncludeFullyUnwatched)
		if err != nil {
			metrics.ExtractionWarnings.Inc()
			logging.Ctx(ctx).Warn().Err(err).
				Str("item", item.ID).Str("user", user).
				Msg("next-unwatched computation failed, defaulting to false")
			continue
		}
		o.NextUnwatched[user] = next
	}
}

// audioLanguages collects the distinct language tags of audio streams.
func audioLanguages(streams []providers.MediaStreamInfo) []string {
	var langs []string
	seen := make(map[string]struct{})
	for _, s := range streams {
		if s.Type != "Audio" || s.Language == "" {
			continue
		}
		key := strings.ToLower(s.Language)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		langs = append(langs, s.Language)
	}
	return langs
}

// extractStreamQuality reads quality attributes off the first audio and
// first video stream.
func extractStreamQuality(streams []providers.MediaStreamInfo, o *Operand) {
	audioDone, videoDone := false, false
	for _, s := range streams {
		switch s.Type {
		case "Audio":
			if audioDone {
				continue
			}
			audioDone = true
			o.AudioBitrate = s.BitRate
			o.AudioSampleRate = s.SampleRate
			o.AudioBitDepth = s.BitDepth
			o.AudioChannelCount = s.ChannelCount
		case "Video":
			if videoDone {
				continue
			}
			videoDone = true
			o.VideoHeight = s.Height
			o.VideoWidth = s.Width
			o.Framerate = s.Framerate
		}
		if audioDone && videoDone {
			return
		}
	}
}

// epochSeconds normalizes a timestamp to epoch seconds. Missing dates map to
// 0; dates before 1970 keep their negative value so comparisons stay ordered.
func epochSeconds(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func mergeDistinct(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, v := range a {
		key := strings.ToLower(v)
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			out = append(out, v)
		}
	}
	for _, v := range b {
		key := strings.ToLower(v)
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
