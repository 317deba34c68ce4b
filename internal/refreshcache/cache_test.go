// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

package refreshcache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/tomtom215/smartlists/internal/providers"
)

func TestNewCacheIsEmpty(t *testing.T) {
	c := New()
	if c.Len() != 0 {
		t.Errorf("new cache Len() = %d, want 0", c.Len())
	}
}

func TestEpisodesKeyedBySeriesAndUser(t *testing.T) {
	c := New()
	eps := []providers.Item{{ID: "e1"}, {ID: "e2"}}
	c.SetEpisodes("s1", "alice", eps)

	got, ok := c.Episodes("s1", "alice")
	if !ok || len(got) != 2 {
		t.Fatalf("Episodes(s1, alice) = %v, %v; want 2 episodes", got, ok)
	}
	if _, ok := c.Episodes("s1", "bob"); ok {
		t.Error("episodes for a different user should miss")
	}
	if _, ok := c.Episodes("s2", "alice"); ok {
		t.Error("episodes for a different series should miss")
	}
}

func TestNextUnwatchedKeyIncludesFlag(t *testing.T) {
	c := New()
	c.SetNextUnwatched("s1", "alice", false, "e4")
	c.SetNextUnwatched("s1", "alice", true, "e1")

	got, ok := c.NextUnwatched("s1", "alice", false)
	if !ok || got != "e4" {
		t.Errorf("NextUnwatched(flag=false) = %q, %v; want e4", got, ok)
	}
	got, ok = c.NextUnwatched("s1", "alice", true)
	if !ok || got != "e1" {
		t.Errorf("NextUnwatched(flag=true) = %q, %v; want e1", got, ok)
	}
}

func TestNextUnwatchedEmptyResultIsMemoized(t *testing.T) {
	c := New()
	c.SetNextUnwatched("s1", "alice", false, "")

	got, ok := c.NextUnwatched("s1", "alice", false)
	if !ok {
		t.Fatal("memoized empty result should hit")
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestClearDropsAllEntries(t *testing.T) {
	c := New()
	c.SetEpisodes("s1", "u", nil)
	c.SetSeriesName("s1", "Show")
	c.SetSeriesTags("s1", []string{"tag"})
	c.SetCollections("i1", []string{"coll"})
	c.SetPeople("i1", People{Actors: []string{"A"}})
	c.SetNextUnwatched("s1", "u", true, "e1")

	if c.Len() == 0 {
		t.Fatal("cache should have entries before Clear")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}

func TestStatsCountHitsAndMisses(t *testing.T) {
	c := New()
	c.SetSeriesName("s1", "Show")

	c.SeriesName("s1") // hit
	c.SeriesName("s2") // miss

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses; want 1, 1", hits, misses)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("item-%d", n)
			c.SetPeople(id, People{All: []string{"X"}})
			c.SetCollections(id, []string{"C"})
			c.People(id)
			c.Collections(id)
		}(i)
	}
	wg.Wait()

	if c.Len() != 32 {
		t.Errorf("Len() = %d, want 32", c.Len())
	}
}
