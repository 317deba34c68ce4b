// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

package operand

import (
	"strings"

	"github.com/tomtom215/smartlists/internal/providers"
	"github.com/tomtom215/smartlists/internal/refreshcache"
)

// CategorizePeople groups a flat (name, role) credit list into role buckets.
// Names are deduplicated case-insensitively within each bucket and within the
// All set; credits with roles the engine does not recognize land in All only.
func CategorizePeople(people []providers.PersonInfo) refreshcache.People {
	var out refreshcache.People
	seen := map[string]map[string]struct{}{}

	add := func(bucket string, target *[]string, name string) {
		key := strings.ToLower(name)
		if seen[bucket] == nil {
			seen[bucket] = make(map[string]struct{})
		}
		if _, dup := seen[bucket][key]; dup {
			return
		}
		seen[bucket][key] = struct{}{}
		*target = append(*target, name)
	}

	for _, p := range people {
		if p.Name == "" {
			continue
		}
		switch strings.ToLower(p.Role) {
		case "actor":
			add("actor", &out.Actors, p.Name)
		case "director":
			add("director", &out.Directors, p.Name)
		case "writer":
			add("writer", &out.Writers, p.Name)
		case "producer":
			add("producer", &out.Producers, p.Name)
		case "gueststar", "guest star":
			add("gueststar", &out.GuestStars, p.Name)
		}
		add("all", &out.All, p.Name)
	}
	return out
}
