// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

package operand

import (
	"testing"

	"github.com/tomtom215/smartlists/internal/providers"
)

func TestCategorizePeople(t *testing.T) {
	people := []providers.PersonInfo{
		{Name: "Keanu Reeves", Role: "Actor"},
		{Name: "Carrie-Anne Moss", Role: "Actor"},
		{Name: "Lana Wachowski", Role: "Director"},
		{Name: "Lana Wachowski", Role: "Writer"},
		{Name: "Joel Silver", Role: "Producer"},
		{Name: "Guesty McGuest", Role: "GuestStar"},
		{Name: "Best Boy", Role: "Grip"}, // unrecognized role
	}

	got := CategorizePeople(people)

	if len(got.Actors) != 2 {
		t.Errorf("Actors = %v, want 2", got.Actors)
	}
	if len(got.Directors) != 1 || got.Directors[0] != "Lana Wachowski" {
		t.Errorf("Directors = %v", got.Directors)
	}
	if len(got.Writers) != 1 {
		t.Errorf("Writers = %v, want Lana Wachowski", got.Writers)
	}
	if len(got.Producers) != 1 || len(got.GuestStars) != 1 {
		t.Errorf("Producers = %v, GuestStars = %v", got.Producers, got.GuestStars)
	}
	// All people deduplicated by name: 6 distinct names.
	if len(got.All) != 6 {
		t.Errorf("All = %v, want 6 distinct names", got.All)
	}
}

func TestCategorizePeopleDeduplicatesCaseInsensitively(t *testing.T) {
	got := CategorizePeople([]providers.PersonInfo{
		{Name: "Keanu Reeves", Role: "Actor"},
		{Name: "keanu reeves", Role: "Actor"},
	})
	if len(got.Actors) != 1 || len(got.All) != 1 {
		t.Errorf("Actors = %v, All = %v, want single entry", got.Actors, got.All)
	}
}

func TestCategorizePeopleSkipsEmptyNames(t *testing.T) {
	got := CategorizePeople([]providers.PersonInfo{{Name: "", Role: "Actor"}})
	if len(got.All) != 0 {
		t.Errorf("All = %v, want empty", got.All)
	}
}

func TestFlagsForField(t *testing.T) {
	tests := []struct {
		field string
		want  Flags
	}{
		{FieldAudioLanguages, Flags{AudioLanguages: true}},
		{FieldAudioBitrate, Flags{StreamQuality: true}},
		{FieldFramerate, Flags{StreamQuality: true}},
		{FieldActors, Flags{People: true}},
		{FieldPeople, Flags{People: true}},
		{FieldNextUnwatched, Flags{NextUnwatched: true}},
		{FieldSeriesName, Flags{SeriesInfo: true}},
		{FieldTags, Flags{SeriesInfo: true}},
		{FieldCollections, Flags{Collections: true}},
		{FieldName, Flags{}},
		{FieldProductionYear, Flags{}},
	}
	for _, tt := range tests {
		if got := FlagsForField(tt.field); got != tt.want {
			t.Errorf("FlagsForField(%s) = %+v, want %+v", tt.field, got, tt.want)
		}
	}
}

func TestFlagsUnionAndAny(t *testing.T) {
	var f Flags
	if f.Any() {
		t.Error("zero flags should report Any() == false")
	}
	f = f.Union(Flags{People: true}).Union(Flags{Collections: true})
	if !f.People || !f.Collections || f.AudioLanguages {
		t.Errorf("Union result = %+v", f)
	}
	if !f.Any() {
		t.Error("merged flags should report Any() == true")
	}
}
