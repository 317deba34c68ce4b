// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

// Package nextup computes the next-unwatched signal: whether an episode is
// the first unplayed one of its series in broadcast order for a given user.
package nextup

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/smartlists/internal/providers"
	"github.com/tomtom215/smartlists/internal/refreshcache"
)

// Calculator resolves next-unwatched queries for one filtering run. The
// computed episode ID is memoized per (series, user, includeFullyUnwatched)
// in the run cache; play state is always read live from the user-data
// provider, never cached, so mid-run playback changes are observed.
type Calculator struct {
	catalog  providers.CatalogProvider
	userdata providers.UserDataProvider
	cache    *refreshcache.Cache
}

// New creates a calculator bound to a run cache.
func New(catalog providers.CatalogProvider, userdata providers.UserDataProvider, cache *refreshcache.Cache) *Calculator {
	return &Calculator{catalog: catalog, userdata: userdata, cache: cache}
}

// IsNextUnwatched reports whether episode is the first unplayed episode of
// its series in (season, episode) order for the user.
//
// Season 0 (specials) and episodes without both season and episode numbers
// are excluded from consideration. When includeFullyUnwatched is false, a
// series with zero played episodes yields no next-unwatched episode at all,
// which excludes series the user has never started.
func (c *Calculator) IsNextUnwatched(ctx context.Context, episode providers.Item, userID string, includeFullyUnwatched bool) (bool, error) {
	if episode.MediaType != providers.MediaTypeEpisode || episode.SeriesID == "" {
		return false, nil
	}

	nextID, err := c.nextEpisodeID(ctx, episode.SeriesID, userID, includeFullyUnwatched)
	if err != nil {
		return false, err
	}
	return nextID != "" && nextID == episode.ID, nil
}

// nextEpisodeID computes (or recalls) the next-unwatched episode ID for a
// series. Empty means no episode qualifies.
func (c *Calculator) nextEpisodeID(ctx context.Context, seriesID, userID string, includeFullyUnwatched bool) (string, error) {
	if id, ok := c.cache.NextUnwatched(seriesID, userID, includeFullyUnwatched); ok {
		return id, nil
	}

	episodes, err := c.seriesEpisodes(ctx, seriesID, userID)
	if err != nil {
		return "", fmt.Errorf("episodes of series %s: %w", seriesID, err)
	}

	ordered := orderedEpisodes(episodes)

	first := ""
	anyPlayed := false
	for _, ep := range ordered {
		st, err := c.userdata.PlayState(ctx, ep.ID, userID)
		if err != nil {
			return "", fmt.Errorf("play state of %s: %w", ep.ID, err)
		}
		if st.Played {
			anyPlayed = true
			continue
		}
		if first == "" {
			first = ep.ID
		}
	}

	// A fully unwatched series only qualifies when the flag allows it.
	if !anyPlayed && !includeFullyUnwatched {
		first = ""
	}

	c.cache.SetNextUnwatched(seriesID, userID, includeFullyUnwatched, first)
	return first, nil
}

func (c *Calculator) seriesEpisodes(ctx context.Context, seriesID, userID string) ([]providers.Item, error) {
	if eps, ok := c.cache.Episodes(seriesID, userID); ok {
		return eps, nil
	}
	eps, err := c.catalog.EpisodesOf(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	c.cache.SetEpisodes(seriesID, userID, eps)
	return eps, nil
}

// orderedEpisodes drops specials (season 0) and episodes missing numbering,
// then sorts by (season, episode) ascending.
func orderedEpisodes(episodes []providers.Item) []providers.Item {
	ordered := make([]providers.Item, 0, len(episodes))
	for _, ep := range episodes {
		if ep.SeasonNumber == nil || ep.EpisodeNumber == nil {
			continue
		}
		if *ep.SeasonNumber == 0 {
			continue
		}
		ordered = append(ordered, ep)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if *ordered[i].SeasonNumber != *ordered[j].SeasonNumber {
			return *ordered[i].SeasonNumber < *ordered[j].SeasonNumber
		}
		return *ordered[i].EpisodeNumber < *ordered[j].EpisodeNumber
	})
	return ordered
}
