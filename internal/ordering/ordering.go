// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

// Package ordering applies multi-key stable sorts to filtered feature
// records.
//
// Sort keys are resolved through a strategy table mapping key name to an
// extraction function, so every supported key is enumerable and an unknown
// key fails up front instead of silently ordering arbitrarily.
package ordering

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/smartlists/internal/operand"
)

// Direction is a sort direction.
type Direction int

const (
	// Ascending sorts smallest first.
	Ascending Direction = iota
	// Descending sorts largest first.
	Descending
)

// String returns the wire name of the direction.
func (d Direction) String() string {
	if d == Descending {
		return "Descending"
	}
	return "Ascending"
}

// ParseDirection parses a wire-level direction name. Empty defaults to
// ascending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ascending", "asc":
		return Ascending, nil
	case "descending", "desc":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("unknown sort direction %q", s)
	}
}

// SortSpec names one sort key and its direction.
type SortSpec struct {
	Field     string    `json:"Field"`
	Direction Direction `json:"Direction"`
}

// SortRandom is the pseudo-field for random ordering. Each item draws one
// random key per Order call, so the shuffle is stable within a single
// ordering pass and fresh on the next.
const SortRandom = "Random"

// key is one comparable sort key: either a string or a number.
type key struct {
	str      string
	num      float64
	isString bool
}

func numberKey(v float64) key { return key{num: v} }

func stringKey(v string) key { return key{str: v, isString: true} }

func compare(a, b key) int {
	if a.isString {
		return strings.Compare(a.str, b.str)
	}
	switch {
	case a.num < b.num:
		return -1
	case a.num > b.num:
		return 1
	default:
		return 0
	}
}

// runState carries per-pass context: the user whose playback state resolves
// per-user keys and the random keys drawn for this pass.
type runState struct {
	user   string
	rng    *rand.Rand
	random map[string]float64
}

func (rs *runState) randomKey(id string) float64 {
	if v, ok := rs.random[id]; ok {
		return v
	}
	v := rs.rng.Float64()
	rs.random[id] = v
	return v
}

// keyFuncs is the strategy table mapping sort-key name to extraction
// function. String keys compare as culture-invariant ordinals.
var keyFuncs = map[string]func(o *operand.Operand, rs *runState) key{
	operand.FieldName: func(o *operand.Operand, _ *runState) key {
		return stringKey(strings.ToLower(o.Name))
	},
	operand.FieldCommunityRating: func(o *operand.Operand, _ *runState) key {
		return numberKey(o.CommunityRating)
	},
	operand.FieldCriticRating: func(o *operand.Operand, _ *runState) key {
		return numberKey(o.CriticRating)
	},
	operand.FieldProductionYear: func(o *operand.Operand, _ *runState) key {
		return numberKey(float64(o.ProductionYear))
	},
	operand.FieldRuntimeMinutes: func(o *operand.Operand, _ *runState) key {
		return numberKey(o.RuntimeMinutes)
	},
	operand.FieldDateAdded: func(o *operand.Operand, _ *runState) key {
		return numberKey(float64(o.DateAdded))
	},
	operand.FieldDateModified: func(o *operand.Operand, _ *runState) key {
		return numberKey(float64(o.DateModified))
	},
	operand.FieldPremiereDate: func(o *operand.Operand, _ *runState) key {
		return numberKey(float64(o.PremiereDate))
	},
	operand.FieldPlayCount: func(o *operand.Operand, rs *runState) key {
		return numberKey(float64(o.PlayCount[rs.user]))
	},
	// Never-played items resolve to the NeverPlayed sentinel, the oldest
	// possible value, so they sort last in descending-recency views.
	operand.FieldLastPlayed: func(o *operand.Operand, rs *runState) key {
		if ts, ok := o.LastPlayed[rs.user]; ok {
			return numberKey(float64(ts))
		}
		return numberKey(float64(operand.NeverPlayed))
	},
	operand.FieldSimilarityScore: func(o *operand.Operand, _ *runState) key {
		return numberKey(o.SimilarityScore())
	},
	SortRandom: func(o *operand.Operand, rs *runState) key {
		return numberKey(rs.randomKey(o.ID))
	},
}

// SortFields returns every supported sort-key name, sorted.
func SortFields() []string {
	names := make([]string, 0, len(keyFuncs))
	for name := range keyFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Order sorts items in place by the given specs as one stable multi-key
// sort; the first spec is primary. Per-user keys resolve against user.
// An empty spec list preserves the incoming (catalog) order. An unknown
// sort field fails before any reordering.
func Order(items []*operand.Operand, specs []SortSpec, user string) error {
	if len(specs) == 0 {
		return nil
	}
	for _, spec := range specs {
		if _, ok := keyFuncs[spec.Field]; !ok {
			return fmt.Errorf("unknown sort field %q", spec.Field)
		}
	}

	rs := &runState{
		user:   user,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		random: make(map[string]float64, len(items)),
	}

	// Extract every key once up front so comparisons are pure lookups and
	// random keys stay stable across comparisons.
	keys := make([][]key, len(items))
	for i, o := range items {
		keys[i] = make([]key, len(specs))
		for j, spec := range specs {
			keys[i][j] = keyFuncs[spec.Field](o, rs)
		}
	}

	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		for j, spec := range specs {
			c := compare(keys[idx[a]][j], keys[idx[b]][j])
			if c == 0 {
				continue
			}
			if spec.Direction == Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	sorted := make([]*operand.Operand, len(items))
	for i, v := range idx {
		sorted[i] = items[v]
	}
	copy(items, sorted)
	return nil
}
