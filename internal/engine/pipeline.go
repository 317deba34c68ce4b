// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/smartlists/internal/logging"
	"github.com/tomtom215/smartlists/internal/metrics"
	"github.com/tomtom215/smartlists/internal/operand"
	"github.com/tomtom215/smartlists/internal/providers"
	"github.com/tomtom215/smartlists/internal/refreshcache"
	"github.com/tomtom215/smartlists/internal/rules"
	"github.com/tomtom215/smartlists/internal/similarity"
)

// runContext holds the per-run state threaded through the pipeline stages.
type runContext struct {
	engine    *Engine
	crs       *rules.CompiledRuleSet
	users     []string
	cache     *refreshcache.Cache
	extractor *operand.Extractor
	profile   *similarity.Profile
}

// typePrefilter drops candidates that cannot satisfy any set's media-type
// rules, using a minimal feature record so the reduction costs almost
// nothing. Sets without type rules keep every candidate eligible.
func (r *runContext) typePrefilter(ctx context.Context, items []providers.Item) ([]providers.Item, error) {
	kept := make([]providers.Item, 0, len(items))
	dropped := 0
	for i := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := items[i]
		typeOnly := &operand.Operand{ID: item.ID, Name: item.Name, MediaType: item.MediaType}

		eligible := false
		for si := range r.crs.Sets {
			if matchAll(r.crs.Sets[si].TypeRules, typeOnly, r.users) {
				eligible = true
				break
			}
		}
		if eligible {
			kept = append(kept, item)
		} else {
			dropped++
		}
	}
	metrics.TypePrefilterDropped.Add(float64(dropped))
	logging.Ctx(ctx).Debug().
		Int("kept", len(kept)).Int("dropped", dropped).
		Msg("media-type pre-filter applied")
	return kept, nil
}

// warmCache runs the parallel pre-pass that populates the run cache with
// people, series, and collection lookups before sequential evaluation. The
// cache's write paths are thread-safe; evaluation afterwards reads the merged
// result single-threaded.
func (r *runContext) warmCache(ctx context.Context, items []providers.Item) error {
	warmFlags := operand.Flags{
		People:      r.crs.Flags.People,
		SeriesInfo:  r.crs.Flags.SeriesInfo,
		Collections: r.crs.Flags.Collections,
	}
	if !warmFlags.Any() || len(items) < 2 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.engine.workers)
	for i := range items {
		item := items[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Extraction failures degrade to neutral defaults inside
			// Extract; warming only needs the cache side effects.
			r.extractor.Extract(gctx, item, nil, warmFlags)
			return nil
		})
	}
	return g.Wait()
}

// hydrate builds a fully extracted feature record for a similarity reference
// item.
func (r *runContext) hydrate(ctx context.Context, item providers.Item) (*operand.Operand, error) {
	return r.extractor.Extract(ctx, item, r.users, r.crs.Flags), nil
}

// evaluate runs the staged sequential evaluation over the pre-filtered
// candidates and returns the matching feature records in catalog order.
func (r *runContext) evaluate(ctx context.Context, items []providers.Item) ([]*operand.Operand, error) {
	matched := make([]*operand.Operand, 0, len(items))
	for i := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		metrics.ItemsEvaluated.Inc()

		o, ok := r.evaluateItem(ctx, items[i])
		if ok {
			matched = append(matched, o)
		}
	}
	return matched, nil
}

// evaluateItem applies the rule sets to one item, extracting cheaply first
// and paying for expensive extraction only when a set's cheap rules already
// pass. A panic during evaluation excludes the item, never the run.
func (r *runContext) evaluateItem(ctx context.Context, item providers.Item) (o *operand.Operand, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.ItemsFailed.Inc()
			logging.Ctx(ctx).Error().
				Str("item", item.ID).Interface("panic", rec).
				Msg("item evaluation failed, excluding item")
			o, ok = nil, false
		}
	}()

	cheap := r.extractor.Extract(ctx, item, r.users, operand.Flags{})

	// Cheap phase: find sets whose type and cheap rules all pass.
	var candidates []int
	for si := range r.crs.Sets {
		set := &r.crs.Sets[si]
		if !matchAll(set.TypeRules, cheap, r.users) || !matchAll(set.Cheap, cheap, r.users) {
			continue
		}
		if !set.HasExpensive() {
			// Fully satisfied on cheap criteria alone.
			return cheap, true
		}
		candidates = append(candidates, si)
	}
	if len(candidates) == 0 {
		return nil, false
	}

	// Expensive phase, only for items that already earned it.
	full := r.extractor.Extract(ctx, item, r.users, r.crs.Flags)
	for _, si := range candidates {
		set := &r.crs.Sets[si]
		if !matchAll(set.Expensive, full, r.users) {
			continue
		}
		if len(set.SimilarTo) > 0 {
			if r.profile == nil {
				continue
			}
			pass, score := r.profile.Score(full, r.crs.CompareFields)
			full.SetSimilarityScore(score)
			if !pass {
				continue
			}
		}
		return full, true
	}
	return nil, false
}

// matchAll reports whether every predicate passes. An empty predicate list
// passes vacuously.
func matchAll(preds []*rules.Predicate, o *operand.Operand, users []string) bool {
	for _, p := range preds {
		if !p.Match(o, users) {
			return false
		}
	}
	return true
}
