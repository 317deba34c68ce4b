// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

package nextup

import (
	"context"
	"fmt"
	"testing"

	"github.com/tomtom215/smartlists/internal/providers"
	"github.com/tomtom215/smartlists/internal/refreshcache"
)

func intp(v int) *int { return &v }

func episode(id string, season, number int) providers.Item {
	return providers.Item{
		ID:            id,
		MediaType:     providers.MediaTypeEpisode,
		SeriesID:      "s1",
		SeasonNumber:  intp(season),
		EpisodeNumber: intp(number),
	}
}

// seriesFixture builds a six-episode series with the given episodes played.
func seriesFixture(playedIDs ...string) (*providers.MemoryCatalog, *providers.MemoryUserData) {
	items := []providers.Item{
		{ID: "s1", Name: "The Show", MediaType: providers.MediaTypeSeries},
	}
	for i := 1; i <= 6; i++ {
		items = append(items, episode(fmt.Sprintf("e%d", i), 1, i))
	}
	catalog := providers.NewMemoryCatalog(items)
	userdata := providers.NewMemoryUserData()
	for _, id := range playedIDs {
		userdata.SetPlayState(id, "alice", providers.PlayState{Played: true})
	}
	return catalog, userdata
}

func TestNextUnwatchedBoundary(t *testing.T) {
	catalog, userdata := seriesFixture("e1", "e2", "e3")
	calc := New(catalog, userdata, refreshcache.New())
	ctx := context.Background()

	tests := []struct {
		episodeID string
		want      bool
	}{
		{"e3", false}, // played
		{"e4", true},  // first unplayed
		{"e5", false}, // unplayed but not first
	}
	for _, tt := range tests {
		got, err := calc.IsNextUnwatched(ctx, episode(tt.episodeID, 1, int(tt.episodeID[1]-'0')), "alice", false)
		if err != nil {
			t.Fatalf("IsNextUnwatched(%s) error: %v", tt.episodeID, err)
		}
		if got != tt.want {
			t.Errorf("IsNextUnwatched(%s) = %v, want %v", tt.episodeID, got, tt.want)
		}
	}
}

func TestFullyUnwatchedSeries(t *testing.T) {
	catalog, userdata := seriesFixture() // nothing played
	ctx := context.Background()

	// Disabled: a never-started series has no next-unwatched episode.
	calc := New(catalog, userdata, refreshcache.New())
	got, err := calc.IsNextUnwatched(ctx, episode("e1", 1, 1), "alice", false)
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("fully unwatched series should yield nothing when the flag is off")
	}

	// Enabled: episode 1 is next.
	calc = New(catalog, userdata, refreshcache.New())
	got, err = calc.IsNextUnwatched(ctx, episode("e1", 1, 1), "alice", true)
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("episode 1 should be next when the flag is on")
	}
}

func TestFullyWatchedSeriesHasNoNext(t *testing.T) {
	catalog, userdata := seriesFixture("e1", "e2", "e3", "e4", "e5", "e6")
	calc := New(catalog, userdata, refreshcache.New())

	for i := 1; i <= 6; i++ {
		id := fmt.Sprintf("e%d", i)
		got, err := calc.IsNextUnwatched(context.Background(), episode(id, 1, i), "alice", true)
		if err != nil {
			t.Fatal(err)
		}
		if got {
			t.Errorf("episode %s of a fully watched series should not be next", id)
		}
	}
}

func TestSpecialsAndUnnumberedEpisodesExcluded(t *testing.T) {
	items := []providers.Item{
		episode("special", 0, 1), // season 0
		{ID: "unnumbered", MediaType: providers.MediaTypeEpisode, SeriesID: "s1"},
		episode("e1", 1, 1),
	}
	catalog := providers.NewMemoryCatalog(items)
	userdata := providers.NewMemoryUserData()
	calc := New(catalog, userdata, refreshcache.New())
	ctx := context.Background()

	got, err := calc.IsNextUnwatched(ctx, episode("e1", 1, 1), "alice", true)
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("first numbered non-special episode should be next")
	}

	for _, id := range []string{"special", "unnumbered"} {
		item := providers.Item{ID: id, MediaType: providers.MediaTypeEpisode, SeriesID: "s1"}
		if id == "special" {
			item.SeasonNumber, item.EpisodeNumber = intp(0), intp(1)
		}
		got, err := calc.IsNextUnwatched(ctx, item, "alice", true)
		if err != nil {
			t.Fatal(err)
		}
		if got {
			t.Errorf("%s must never be next-unwatched", id)
		}
	}
}

func TestEpisodeOrderingBySeasonThenNumber(t *testing.T) {
	// Catalog order deliberately scrambled.
	items := []providers.Item{
		episode("s2e1", 2, 1),
		episode("s1e2", 1, 2),
		episode("s1e1", 1, 1),
	}
	catalog := providers.NewMemoryCatalog(items)
	userdata := providers.NewMemoryUserData()
	userdata.SetPlayState("s1e1", "alice", providers.PlayState{Played: true})
	calc := New(catalog, userdata, refreshcache.New())

	got, err := calc.IsNextUnwatched(context.Background(), episode("s1e2", 1, 2), "alice", false)
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("season 1 episode 2 should precede season 2 episode 1")
	}
}

func TestResultMemoizedPerSeriesUserAndFlag(t *testing.T) {
	catalog, userdata := seriesFixture("e1")
	cache := refreshcache.New()
	calc := New(catalog, userdata, cache)
	ctx := context.Background()

	if _, err := calc.IsNextUnwatched(ctx, episode("e2", 1, 2), "alice", false); err != nil {
		t.Fatal(err)
	}
	if id, ok := cache.NextUnwatched("s1", "alice", false); !ok || id != "e2" {
		t.Errorf("memoized next = %q, %v; want e2", id, ok)
	}
	if _, ok := cache.NextUnwatched("s1", "alice", true); ok {
		t.Error("flag variants must memoize separately")
	}
}

func TestNonEpisodeIsNeverNext(t *testing.T) {
	catalog, userdata := seriesFixture()
	calc := New(catalog, userdata, refreshcache.New())

	movie := providers.Item{ID: "m1", MediaType: providers.MediaTypeMovie}
	got, err := calc.IsNextUnwatched(context.Background(), movie, "alice", true)
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("non-episodes are never next-unwatched")
	}
}
