// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

// Package refreshcache implements the run-scoped memoization store shared by
// feature extraction and the derived-signal calculators.
//
// A Cache lives for exactly one filtering run: the engine creates it at run
// start, every sub-extraction reads through it, and Clear releases it at run
// end. Entries are never invalidated mid-run; a new run always begins with a
// fresh, empty cache. Without this layer a single refresh over a mixed
// catalog degrades to O(n²) re-scans of series episodes, collection
// membership, and people credits.
//
// All methods are safe for concurrent use so the cache-warming pre-pass can
// populate it from multiple workers.
package refreshcache

import (
	"sync"
	"sync/atomic"

	"github.com/tomtom215/smartlists/internal/providers"
)

// People holds an item's credited people grouped by role. Names are
// deduplicated within each bucket and within All; roles the engine does not
// recognize contribute to All only.
type People struct {
	Actors     []string
	Directors  []string
	Writers    []string
	Producers  []string
	GuestStars []string
	All        []string
}

// Cache is the per-run memoization store. The zero value is not usable;
// construct with New.
type Cache struct {
	mu sync.RWMutex

	// episodes memoizes series episode lists, keyed by (series, user).
	episodes map[string][]providers.Item

	// seriesNames and seriesTags memoize series metadata by series ID.
	seriesNames map[string]string
	seriesTags  map[string][]string

	// collections memoizes item -> containing-collection names.
	collections map[string][]string

	// people memoizes item -> categorized people.
	people map[string]People

	// nextUnwatched memoizes the computed next-unwatched episode ID,
	// keyed by (series, user, includeFullyUnwatched). An empty value means
	// the series has no next-unwatched episode.
	nextUnwatched map[string]string

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates an empty run-scoped cache.
func New() *Cache {
	c := &Cache{}
	c.reset()
	return c
}

func (c *Cache) reset() {
	c.episodes = make(map[string][]providers.Item)
	c.seriesNames = make(map[string]string)
	c.seriesTags = make(map[string][]string)
	c.collections = make(map[string][]string)
	c.people = make(map[string]People)
	c.nextUnwatched = make(map[string]string)
}

// Clear drops every entry, releasing memory at end of run.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Len returns the total number of entries across all maps.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.episodes) + len(c.seriesNames) + len(c.seriesTags) +
		len(c.collections) + len(c.people) + len(c.nextUnwatched)
}

// Stats returns cumulative hit and miss counts. Counters survive Clear so a
// run's totals can be reported after teardown.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

func episodesKey(seriesID, userID string) string {
	return seriesID + "\x00" + userID
}

// Episodes returns the memoized episode list for (series, user).
func (c *Cache) Episodes(seriesID, userID string) ([]providers.Item, bool) {
	c.mu.RLock()
	eps, ok := c.episodes[episodesKey(seriesID, userID)]
	c.mu.RUnlock()
	c.count(ok)
	return eps, ok
}

// SetEpisodes memoizes the episode list for (series, user).
func (c *Cache) SetEpisodes(seriesID, userID string, eps []providers.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.episodes[episodesKey(seriesID, userID)] = eps
}

// SeriesName returns the memoized name of a series.
func (c *Cache) SeriesName(seriesID string) (string, bool) {
	c.mu.RLock()
	name, ok := c.seriesNames[seriesID]
	c.mu.RUnlock()
	c.count(ok)
	return name, ok
}

// SetSeriesName memoizes the name of a series.
func (c *Cache) SetSeriesName(seriesID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seriesNames[seriesID] = name
}

// SeriesTags returns the memoized tags of a series.
func (c *Cache) SeriesTags(seriesID string) ([]string, bool) {
	c.mu.RLock()
	tags, ok := c.seriesTags[seriesID]
	c.mu.RUnlock()
	c.count(ok)
	return tags, ok
}

// SetSeriesTags memoizes the tags of a series.
func (c *Cache) SetSeriesTags(seriesID string, tags []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seriesTags[seriesID] = tags
}

// Collections returns the memoized collection names containing an item.
func (c *Cache) Collections(itemID string) ([]string, bool) {
	c.mu.RLock()
	names, ok := c.collections[itemID]
	c.mu.RUnlock()
	c.count(ok)
	return names, ok
}

// SetCollections memoizes the collection names containing an item.
func (c *Cache) SetCollections(itemID string, names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collections[itemID] = names
}

// People returns the memoized categorized people of an item.
func (c *Cache) People(itemID string) (People, bool) {
	c.mu.RLock()
	p, ok := c.people[itemID]
	c.mu.RUnlock()
	c.count(ok)
	return p, ok
}

// SetPeople memoizes the categorized people of an item.
func (c *Cache) SetPeople(itemID string, p People) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.people[itemID] = p
}

func nextUnwatchedKey(seriesID, userID string, includeFullyUnwatched bool) string {
	k := seriesID + "\x00" + userID
	if includeFullyUnwatched {
		return k + "\x001"
	}
	return k + "\x000"
}

// NextUnwatched returns the memoized next-unwatched episode ID for
// (series, user, flag). An empty episode ID with ok=true means the series
// was computed to have no next-unwatched episode.
func (c *Cache) NextUnwatched(seriesID, userID string, includeFullyUnwatched bool) (string, bool) {
	c.mu.RLock()
	id, ok := c.nextUnwatched[nextUnwatchedKey(seriesID, userID, includeFullyUnwatched)]
	c.mu.RUnlock()
	c.count(ok)
	return id, ok
}

// SetNextUnwatched memoizes the next-unwatched episode ID for
// (series, user, flag).
func (c *Cache) SetNextUnwatched(seriesID, userID string, includeFullyUnwatched bool, episodeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextUnwatched[nextUnwatchedKey(seriesID, userID, includeFullyUnwatched)] = episodeID
}

func (c *Cache) count(hit bool) {
	if hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
}
