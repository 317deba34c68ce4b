// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/smartlists/internal/operand"
	"github.com/tomtom215/smartlists/internal/ordering"
	"github.com/tomtom215/smartlists/internal/providers"
	"github.com/tomtom215/smartlists/internal/rules"
)

func expr(field string, op rules.Operator, value string) rules.Expression {
	return rules.Expression{MemberName: field, Operator: op, TargetValue: value}
}

func movieScope() rules.Expression {
	return expr(operand.FieldMediaType, rules.OpEqual, providers.MediaTypeMovie)
}

func newTestEngine(catalog providers.CatalogProvider, userdata providers.UserDataProvider, opts ...Option) *Engine {
	return New(catalog, userdata, providers.NewMemoryIdentity(), opts...)
}

func movieFixture() *providers.MemoryCatalog {
	return providers.NewMemoryCatalog([]providers.Item{
		{ID: "m1", Name: "Heat", MediaType: providers.MediaTypeMovie, Genres: []string{"Action", "Crime"}, ProductionYear: 1995},
		{ID: "m2", Name: "Barbie", MediaType: providers.MediaTypeMovie, Genres: []string{"Comedy"}, ProductionYear: 2023},
		{ID: "m3", Name: "Clue", MediaType: providers.MediaTypeMovie, Genres: []string{"Comedy"}, ProductionYear: 1985},
		{ID: "m4", Name: "Speed", MediaType: providers.MediaTypeMovie, Genres: []string{"Action"}, ProductionYear: 1994},
		{ID: "s1", Name: "The Wire", MediaType: providers.MediaTypeSeries, Genres: []string{"Crime"}},
	})
}

// Expression sets are OR-combined; expressions inside a set are AND-combined.
func TestFilterAndOrderSetSemantics(t *testing.T) {
	catalog := movieFixture()
	e := newTestEngine(catalog, providers.NewMemoryUserData())

	crs, err := e.CompileRuleSet([]rules.ExpressionSet{
		{Expressions: []rules.Expression{
			movieScope(),
			expr(operand.FieldGenres, rules.OpContains, "Action"),
		}},
		{Expressions: []rules.Expression{
			movieScope(),
			expr(operand.FieldGenres, rules.OpContains, "Comedy"),
			expr(operand.FieldProductionYear, rules.OpGreaterThan, "2020"),
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	ids, err := e.FilterAndOrder(context.Background(), catalog.Items(), crs, "alice", nil,
		[]ordering.SortSpec{{Field: operand.FieldName}})
	if err != nil {
		t.Fatal(err)
	}
	// Action movies m1, m4 via the first set; m2 via the second.
	// m3 is comedy but pre-2020; s1 fails the type scope.
	want := []string{"m2", "m1", "m4"} // Barbie, Heat, Speed by name
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

// Premiere dates before 1970 carry negative epoch values and must still
// satisfy date comparisons.
func TestFilterAndOrderPreEpochPremiereDate(t *testing.T) {
	old := time.Date(1960, 6, 16, 0, 0, 0, 0, time.UTC)
	recent := time.Date(1994, 6, 10, 0, 0, 0, 0, time.UTC)
	catalog := providers.NewMemoryCatalog([]providers.Item{
		{ID: "psycho", Name: "Psycho", MediaType: providers.MediaTypeMovie, PremiereDate: &old},
		{ID: "speed", Name: "Speed", MediaType: providers.MediaTypeMovie, PremiereDate: &recent},
	})
	e := newTestEngine(catalog, providers.NewMemoryUserData())

	crs, err := e.CompileRuleSet([]rules.ExpressionSet{
		{Expressions: []rules.Expression{
			movieScope(),
			expr(operand.FieldPremiereDate, rules.OpLessThan, "1965-01-01"),
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	ids, err := e.FilterAndOrder(context.Background(), catalog.Items(), crs, "alice", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "psycho" {
		t.Errorf("ids = %v, want [psycho]", ids)
	}
}

func TestCompileRuleSetRejectsUnscoped(t *testing.T) {
	e := newTestEngine(providers.NewMemoryCatalog(nil), providers.NewMemoryUserData())
	crs, err := e.CompileRuleSet([]rules.ExpressionSet{
		{Expressions: []rules.Expression{expr(operand.FieldGenres, rules.OpContains, "Action")}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.FilterAndOrder(context.Background(), nil, crs, "alice", nil, nil); !errors.Is(err, ErrNoTypeScope) {
		t.Errorf("err = %v, want ErrNoTypeScope", err)
	}
}

func TestFilterAndOrderNilRuleSet(t *testing.T) {
	e := newTestEngine(providers.NewMemoryCatalog(nil), providers.NewMemoryUserData())
	if _, err := e.FilterAndOrder(context.Background(), nil, nil, "alice", nil, nil); !errors.Is(err, ErrNilRuleSet) {
		t.Errorf("err = %v, want ErrNilRuleSet", err)
	}
}

func TestCompileRuleSetBadRule(t *testing.T) {
	e := newTestEngine(providers.NewMemoryCatalog(nil), providers.NewMemoryUserData())
	_, err := e.CompileRuleSet([]rules.ExpressionSet{
		{Expressions: []rules.Expression{
			movieScope(),
			expr(operand.FieldProductionYear, rules.OpGreaterThan, "not-a-number"),
		}},
	})
	var cerr *rules.CompilationError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want *rules.CompilationError", err)
	}
	if cerr.Field != operand.FieldProductionYear {
		t.Errorf("Field = %q", cerr.Field)
	}
}

func TestFilterAndOrderCancellation(t *testing.T) {
	catalog := movieFixture()
	e := newTestEngine(catalog, providers.NewMemoryUserData())
	crs, err := e.CompileRuleSet([]rules.ExpressionSet{
		{Expressions: []rules.Expression{movieScope()}},
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ids, err := e.FilterAndOrder(ctx, catalog.Items(), crs, "alice", nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if ids != nil {
		t.Errorf("cancelled run returned partial results: %v", ids)
	}
}

func TestPerUserRulesPassOnAnyUser(t *testing.T) {
	catalog := movieFixture()
	userdata := providers.NewMemoryUserData()
	userdata.SetPlayState("m1", "bob", providers.PlayState{Played: true})
	e := newTestEngine(catalog, userdata)

	crs, err := e.CompileRuleSet([]rules.ExpressionSet{
		{Expressions: []rules.Expression{
			movieScope(),
			expr(operand.FieldIsPlayed, rules.OpEqual, "true"),
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Alice alone has played nothing.
	ids, err := e.FilterAndOrder(context.Background(), catalog.Items(), crs, "alice", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Fatalf("ids = %v, want none", ids)
	}

	// With bob as an additional user, m1 passes through his play state.
	ids, err = e.FilterAndOrder(context.Background(), catalog.Items(), crs, "alice", []string{"bob"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "m1" {
		t.Fatalf("ids = %v, want [m1]", ids)
	}
}

func TestNeverPlayedMatchesZeroComparison(t *testing.T) {
	catalog := movieFixture()
	userdata := providers.NewMemoryUserData()
	userdata.SetPlayState("m1", "alice", providers.PlayState{
		Played: true, PlayCount: 3,
		LastPlayed: time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC),
	})
	e := newTestEngine(catalog, userdata)

	crs, err := e.CompileRuleSet([]rules.ExpressionSet{
		{Expressions: []rules.Expression{
			movieScope(),
			expr(operand.FieldLastPlayed, rules.OpLessThan, "0"),
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Never-played items resolve to the sentinel, which sorts (and compares)
	// below every real timestamp.
	ids, err := e.FilterAndOrder(context.Background(), catalog.Items(), crs, "alice", nil,
		[]ordering.SortSpec{{Field: operand.FieldName}})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"m2": true, "m3": true, "m4": true}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want the three unplayed movies", ids)
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected id %q", id)
		}
	}
}

func TestSimilarityIntegration(t *testing.T) {
	catalog := providers.NewMemoryCatalog([]providers.Item{
		{ID: "ref", Name: "Alien", MediaType: providers.MediaTypeMovie, Genres: []string{"Horror", "Sci-Fi"}, Tags: []string{"space"}},
		{ID: "near", Name: "Event Horizon", MediaType: providers.MediaTypeMovie, Genres: []string{"Horror"}, Tags: []string{"space"}},
		{ID: "far", Name: "Paddington", MediaType: providers.MediaTypeMovie, Genres: []string{"Family"}, Tags: []string{"bears"}},
	})
	e := newTestEngine(catalog, providers.NewMemoryUserData())

	crs, err := e.CompileRuleSet([]rules.ExpressionSet{
		{Expressions: []rules.Expression{
			movieScope(),
			expr(operand.FieldSimilarTo, rules.OpEqual, "Alien"),
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	ids, err := e.FilterAndOrder(context.Background(), catalog.Items(), crs, "alice", nil,
		[]ordering.SortSpec{{Field: operand.FieldSimilarityScore, Direction: ordering.Descending}})
	if err != nil {
		t.Fatal(err)
	}
	found := map[string]bool{}
	for _, id := range ids {
		found[id] = true
	}
	if !found["near"] {
		t.Errorf("ids = %v, want near included", ids)
	}
	if found["far"] {
		t.Errorf("ids = %v, far must not pass", ids)
	}
}

// Collection lookups that fail degrade the item to an empty collection list,
// so a Contains rule excludes it without aborting the run.
func TestExtractionFailureDegradesItem(t *testing.T) {
	inner := providers.NewMemoryCatalog([]providers.Item{
		{ID: "m1", Name: "Heat", MediaType: providers.MediaTypeMovie},
		{ID: "m2", Name: "Speed", MediaType: providers.MediaTypeMovie},
	})
	inner.SetCollections("m2", []string{"Favorites"})
	catalog := &flakyCatalog{MemoryCatalog: inner, failCollections: map[string]bool{"m1": true}}
	e := newTestEngine(catalog, providers.NewMemoryUserData())

	crs, err := e.CompileRuleSet([]rules.ExpressionSet{
		{Expressions: []rules.Expression{
			movieScope(),
			expr(operand.FieldCollections, rules.OpContains, "Favorites"),
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	ids, err := e.FilterAndOrder(context.Background(), catalog.Items(), crs, "alice", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "m2" {
		t.Fatalf("ids = %v, want [m2]", ids)
	}
}

func TestNextUnwatchedIntegration(t *testing.T) {
	one, two := 1, 2
	catalog := providers.NewMemoryCatalog([]providers.Item{
		{ID: "s1", Name: "The Show", MediaType: providers.MediaTypeSeries},
		{ID: "e1", Name: "Pilot", MediaType: providers.MediaTypeEpisode, SeriesID: "s1", SeasonNumber: &one, EpisodeNumber: &one},
		{ID: "e2", Name: "Second", MediaType: providers.MediaTypeEpisode, SeriesID: "s1", SeasonNumber: &one, EpisodeNumber: &two},
	})
	userdata := providers.NewMemoryUserData()
	userdata.SetPlayState("e1", "alice", providers.PlayState{Played: true})
	e := newTestEngine(catalog, userdata)

	crs, err := e.CompileRuleSet([]rules.ExpressionSet{
		{Expressions: []rules.Expression{
			expr(operand.FieldMediaType, rules.OpEqual, providers.MediaTypeEpisode),
			expr(operand.FieldNextUnwatched, rules.OpEqual, "true"),
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	ids, err := e.FilterAndOrder(context.Background(), catalog.Items(), crs, "alice", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "e2" {
		t.Fatalf("ids = %v, want [e2]", ids)
	}
}

// Sequential runs share no cache state: each run builds and clears its own
// run cache, so results are identical for identical inputs.
func TestSequentialRunsAreIndependent(t *testing.T) {
	catalog := movieFixture()
	e := newTestEngine(catalog, providers.NewMemoryUserData())
	crs, err := e.CompileRuleSet([]rules.ExpressionSet{
		{Expressions: []rules.Expression{
			movieScope(),
			expr(operand.FieldGenres, rules.OpContains, "Action"),
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	sorts := []ordering.SortSpec{{Field: operand.FieldName}}
	first, err := e.FilterAndOrder(context.Background(), catalog.Items(), crs, "alice", nil, sorts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.FilterAndOrder(context.Background(), catalog.Items(), crs, "alice", nil, sorts)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("run results diverged: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("run results diverged: %v vs %v", first, second)
		}
	}
}

func TestUnresolvablePrimaryUserFails(t *testing.T) {
	identity := providers.NewMemoryIdentity()
	identity.AddUser(providers.User{ID: "u1", Name: "alice"})
	e := New(providers.NewMemoryCatalog(nil), providers.NewMemoryUserData(), identity)

	crs, err := e.CompileRuleSet([]rules.ExpressionSet{
		{Expressions: []rules.Expression{movieScope()}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.FilterAndOrder(context.Background(), nil, crs, "nobody", nil, nil); err == nil {
		t.Fatal("unresolvable primary user must fail the run")
	}
}

// flakyCatalog fails collection lookups for selected items.
type flakyCatalog struct {
	*providers.MemoryCatalog
	failCollections map[string]bool
}

func (c *flakyCatalog) CollectionsOf(ctx context.Context, itemID string) ([]string, error) {
	if c.failCollections[itemID] {
		return nil, errors.New("collection backend unavailable")
	}
	return c.MemoryCatalog.CollectionsOf(ctx, itemID)
}
