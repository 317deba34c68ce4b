// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

// Package similarity scores candidates against a frequency-weighted profile
// of reference items selected by SimilarTo rules.
//
// The profile is built once per filtering run: reference items are located by
// name, deduplicated, and each selected comparison field is flattened into a
// value-to-occurrence-count table. Scoring a candidate then costs one map
// probe per candidate value.
package similarity

import (
	"context"
	"strconv"
	"strings"

	"github.com/tomtom215/smartlists/internal/logging"
	"github.com/tomtom215/smartlists/internal/operand"
	"github.com/tomtom215/smartlists/internal/providers"
	"github.com/tomtom215/smartlists/internal/rules"
)

// yearWindow is the production-year tolerance: a reference year matches
// candidates within ±2 years.
const yearWindow = 2

// minNameLength suppresses noise from substring matching on very short
// candidate names.
const minNameLength = 3

// Profile is the aggregated reference metadata of one run. Field values map
// to their occurrence count across the deduplicated reference items.
type Profile struct {
	counts   map[string]map[string]int
	names    map[string]int
	refCount int
}

// RefCount returns the number of distinct reference items aggregated.
func (p *Profile) RefCount() int {
	return p.refCount
}

// Empty reports whether no reference item matched any SimilarTo rule.
func (p *Profile) Empty() bool {
	return p.refCount == 0
}

// Hydrator converts a matched reference item into its feature record so
// expensive comparison fields (people, audio languages) can be aggregated.
type Hydrator func(ctx context.Context, item providers.Item) (*operand.Operand, error)

// BuildProfile locates reference items in the candidate pool by matching
// their names against the SimilarTo rules and aggregates the selected
// comparison fields into a frequency profile. A reference item that fails to
// hydrate is logged and skipped; building never aborts the run.
func BuildProfile(ctx context.Context, exprs []rules.Expression, pool []providers.Item, compareFields []string, hydrate Hydrator) (*Profile, error) {
	matchers := make([]func(string) bool, 0, len(exprs))
	for _, expr := range exprs {
		m, err := rules.NameMatcher(expr)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}

	p := &Profile{
		counts: make(map[string]map[string]int, len(compareFields)),
		names:  make(map[string]int),
	}
	for _, field := range compareFields {
		p.counts[field] = make(map[string]int)
	}

	seen := make(map[string]struct{})
	for _, item := range pool {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		matched := false
		for _, m := range matchers {
			if m(item.Name) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		seen[item.ID] = struct{}{}

		ref, err := hydrate(ctx, item)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("item", item.ID).
				Msg("reference item hydration failed, skipping")
			continue
		}
		p.aggregate(ref, compareFields)
		p.refCount++
	}
	return p, nil
}

func (p *Profile) aggregate(ref *operand.Operand, compareFields []string) {
	for _, field := range compareFields {
		switch field {
		case operand.FieldName:
			if ref.Name != "" {
				p.names[strings.ToLower(ref.Name)]++
			}
		case operand.FieldProductionYear:
			if ref.ProductionYear > 0 {
				for y := ref.ProductionYear - yearWindow; y <= ref.ProductionYear+yearWindow; y++ {
					p.counts[field][strconv.Itoa(y)]++
				}
			}
		case operand.FieldParentalRating:
			if ref.ParentalRating != "" {
				p.counts[field][strings.ToLower(ref.ParentalRating)]++
			}
		default:
			values, _ := ref.List(field)
			for _, v := range values {
				p.counts[field][strings.ToLower(v)]++
			}
		}
	}
}

// Score computes the candidate's frequency-weighted overlap with the
// profile.
//
// The pass decision uses the source heuristic unchanged: a candidate passes
// with at least one matching field when a single comparison field is
// selected, at least two otherwise, and a genre match is mandatory whenever
// genres are among the selected fields.
func (p *Profile) Score(o *operand.Operand, compareFields []string) (pass bool, score float64) {
	matchedFields := 0
	genreMatched := false

	for _, field := range compareFields {
		overlap := p.fieldOverlap(o, field)
		if overlap > 0 {
			matchedFields++
			if field == operand.FieldGenres {
				genreMatched = true
			}
		}
		score += overlap
	}

	threshold := 2
	if len(compareFields) == 1 {
		threshold = 1
	}
	pass = matchedFields >= threshold
	if pass {
		for _, field := range compareFields {
			if field == operand.FieldGenres && !genreMatched {
				pass = false
				break
			}
		}
	}
	return pass, score
}

func (p *Profile) fieldOverlap(o *operand.Operand, field string) float64 {
	switch field {
	case operand.FieldName:
		return p.nameOverlap(o.Name)
	case operand.FieldProductionYear:
		if o.ProductionYear <= 0 {
			return 0
		}
		return float64(p.counts[field][strconv.Itoa(o.ProductionYear)])
	case operand.FieldParentalRating:
		if o.ParentalRating == "" {
			return 0
		}
		return float64(p.counts[field][strings.ToLower(o.ParentalRating)])
	default:
		values, _ := o.List(field)
		var sum float64
		for _, v := range values {
			sum += float64(p.counts[field][strings.ToLower(v)])
		}
		return sum
	}
}

// nameOverlap weights exact name matches double and substring matches
// single. Candidates with very short names are not compared at all.
func (p *Profile) nameOverlap(name string) float64 {
	if len(name) < minNameLength {
		return 0
	}
	lower := strings.ToLower(name)
	var sum float64
	for refName, count := range p.names {
		switch {
		case refName == lower:
			sum += float64(2 * count)
		case strings.Contains(refName, lower) || strings.Contains(lower, refName):
			sum += float64(count)
		}
	}
	return sum
}
