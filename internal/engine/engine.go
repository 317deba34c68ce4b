// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

// Package engine orchestrates filtering runs: it compiles rule sets,
// stages predicate evaluation by cost over the candidate set, applies
// similarity scoring, and orders the surviving items.
//
// A run is synchronous and cooperatively cancellable; cancellation between
// item iterations abandons partial results. Rule evaluation itself is
// single-threaded per run so predicate ordering and short-circuiting stay
// deterministic; only the cache-warming pre-pass fans out across workers.
// Independent runs may execute concurrently, each with its own run cache.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/tomtom215/smartlists/internal/logging"
	"github.com/tomtom215/smartlists/internal/metrics"
	"github.com/tomtom215/smartlists/internal/operand"
	"github.com/tomtom215/smartlists/internal/ordering"
	"github.com/tomtom215/smartlists/internal/providers"
	"github.com/tomtom215/smartlists/internal/refreshcache"
	"github.com/tomtom215/smartlists/internal/rules"
	"github.com/tomtom215/smartlists/internal/similarity"
	"github.com/tomtom215/smartlists/internal/validation"
)

// ErrNoTypeScope is returned when a rule set carries no media-type rule.
// Evaluating an unscoped rule set over a mixed catalog is almost always a
// configuration mistake, so it is rejected as structurally invalid.
var ErrNoTypeScope = errors.New("rule set has no media-type scoping")

// ErrNilRuleSet is returned when FilterAndOrder receives a nil rule set.
var ErrNilRuleSet = errors.New("compiled rule set is nil")

// Engine evaluates compiled rule sets over candidate items. Safe for
// concurrent use; each run owns its own run-scoped cache.
type Engine struct {
	catalog  providers.CatalogProvider
	userdata providers.UserDataProvider
	identity providers.IdentityResolver
	compiler *rules.Compiler

	workers               int
	includeFullyUnwatched bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers bounds the cache-warming pre-pass worker count.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithIncludeFullyUnwatched lets never-started series yield a next-unwatched
// episode.
func WithIncludeFullyUnwatched(include bool) Option {
	return func(e *Engine) { e.includeFullyUnwatched = include }
}

// WithCompiler shares a predicate compiler (and its cache) across engines.
func WithCompiler(c *rules.Compiler) Option {
	return func(e *Engine) { e.compiler = c }
}

// New creates an engine over the three collaborator providers.
func New(catalog providers.CatalogProvider, userdata providers.UserDataProvider, identity providers.IdentityResolver, opts ...Option) *Engine {
	e := &Engine{
		catalog:  catalog,
		userdata: userdata,
		identity: identity,
		workers:  runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.compiler == nil {
		e.compiler = rules.NewCompiler()
	}
	return e
}

// CompileRuleSet validates and compiles a playlist's expression sets.
// Malformed input fails with a *rules.CompilationError naming the offending
// field, operator, and value; nothing is evaluated on failure.
func (e *Engine) CompileRuleSet(sets []rules.ExpressionSet) (*rules.CompiledRuleSet, error) {
	if err := validation.ValidateExpressionSets(sets); err != nil {
		metrics.RuleCompilations.WithLabelValues("error").Inc()
		return nil, err
	}
	crs, err := e.compiler.CompileSet(sets)
	if err != nil {
		metrics.RuleCompilations.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.RuleCompilations.WithLabelValues("ok").Inc()
	return crs, nil
}

// FilterAndOrder evaluates the rule set over the candidate items for the
// given users and returns the ordered surviving item IDs.
//
// Per-item extraction or evaluation failures exclude the item and are
// logged; they never abort the run. Structural problems (nil rule set,
// missing media-type scoping, unresolvable primary user) are hard failures.
func (e *Engine) FilterAndOrder(ctx context.Context, items []providers.Item, crs *rules.CompiledRuleSet, primaryUser string, additionalUsers []string, sorts []ordering.SortSpec) ([]string, error) {
	if crs == nil {
		return nil, ErrNilRuleSet
	}
	if !crs.HasTypeScope {
		return nil, ErrNoTypeScope
	}

	ctx = logging.ContextWithNewRunID(ctx)
	start := time.Now()
	defer func() { metrics.RunDuration.Observe(time.Since(start).Seconds()) }()

	users, err := e.resolveUsers(ctx, primaryUser, additionalUsers)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	cache := refreshcache.New()
	defer func() {
		hits, misses := cache.Stats()
		metrics.CacheHits.WithLabelValues("refresh").Add(float64(hits))
		metrics.CacheMisses.WithLabelValues("refresh").Add(float64(misses))
		cache.Clear()
	}()

	extractor := operand.NewExtractor(e.catalog, e.userdata, cache)
	extractor.IncludeFullyUnwatched = e.includeFullyUnwatched

	run := &runContext{
		engine:    e,
		crs:       crs,
		users:     users,
		cache:     cache,
		extractor: extractor,
	}

	candidates, err := run.typePrefilter(ctx, items)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("cancelled").Inc()
		return nil, err
	}

	if len(crs.SimilarTo) > 0 {
		profile, perr := similarity.BuildProfile(ctx, crs.SimilarTo, items, crs.CompareFields, run.hydrate)
		if perr != nil {
			metrics.RunsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("building similarity profile: %w", perr)
		}
		if profile.Empty() {
			logging.Ctx(ctx).Warn().Msg("no reference items matched any SimilarTo rule")
		}
		run.profile = profile
	}

	if err := run.warmCache(ctx, candidates); err != nil {
		metrics.RunsTotal.WithLabelValues("cancelled").Inc()
		return nil, err
	}

	matched, err := run.evaluate(ctx, candidates)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("cancelled").Inc()
		return nil, err
	}

	// An ordering failure falls back to natural order rather than losing
	// the run's results.
	if oerr := ordering.Order(matched, sorts, users[0]); oerr != nil {
		logging.Ctx(ctx).Error().Err(oerr).Msg("ordering failed, returning natural order")
	}

	ids := make([]string, len(matched))
	for i, o := range matched {
		ids[i] = o.ID
	}

	metrics.ItemsMatched.Add(float64(len(ids)))
	metrics.RunsTotal.WithLabelValues("ok").Inc()
	logging.Ctx(ctx).Info().
		Int("candidates", len(items)).
		Int("matched", len(ids)).
		Dur("elapsed", time.Since(start)).
		Msg("filtering run complete")
	return ids, nil
}

// resolveUsers maps the primary and additional user references to user IDs.
// The primary user must resolve; additional users that do not are skipped
// with a warning.
func (e *Engine) resolveUsers(ctx context.Context, primary string, additional []string) ([]string, error) {
	pu, err := e.identity.Resolve(ctx, primary)
	if err != nil {
		return nil, fmt.Errorf("resolving primary user %q: %w", primary, err)
	}
	users := []string{pu.ID}
	for _, ref := range additional {
		u, err := e.identity.Resolve(ctx, ref)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("user", ref).
				Msg("skipping unresolvable additional user")
			continue
		}
		users = append(users, u.ID)
	}
	return users, nil
}
