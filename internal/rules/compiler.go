// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

package rules

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/smartlists/internal/metrics"
	"github.com/tomtom215/smartlists/internal/operand"
)

// Predicate is one compiled rule: a pure function over a feature record,
// tagged with its originating field so the pipeline can stage it by cost.
// Evaluating the same predicate against the same record always yields the
// same result.
type Predicate struct {
	// Field is the originating field name.
	Field string

	// Expensive marks predicates whose field needs an expensive
	// sub-extraction.
	Expensive bool

	// PerUser marks predicates resolved against playback state; they pass
	// when any targeted user passes.
	PerUser bool

	match func(o *operand.Operand, users []string) bool
}

// Match evaluates the predicate against a feature record for the targeted
// users. Never mutates the record.
func (p *Predicate) Match(o *operand.Operand, users []string) bool {
	return p.match(o, users)
}

// defaultCacheSize bounds the predicate cache when the caller does not
// configure one.
const defaultCacheSize = 4096

// Compiler compiles expressions into predicates, caching them by structural
// signature so identical rules across playlists share one compiled form.
// Safe for concurrent use.
type Compiler struct {
	mu      sync.RWMutex
	cache   map[string]*Predicate
	maxSize int
}

// NewCompiler creates a compiler with the default cache capacity.
func NewCompiler() *Compiler {
	return NewCompilerSize(defaultCacheSize)
}

// NewCompilerSize creates a compiler whose predicate cache holds at most
// maxSize entries; once full, further predicates compile uncached.
func NewCompilerSize(maxSize int) *Compiler {
	if maxSize <= 0 {
		maxSize = defaultCacheSize
	}
	return &Compiler{cache: make(map[string]*Predicate), maxSize: maxSize}
}

// CacheLen returns the number of cached predicates.
func (c *Compiler) CacheLen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// signature is the structural identity of an expression: two rules with the
// same signature compile to the same predicate.
func signature(expr Expression) string {
	var b strings.Builder
	b.WriteString(expr.MemberName)
	b.WriteByte(0)
	b.WriteString(string(expr.Operator))
	b.WriteByte(0)
	b.WriteString(expr.TargetValue)
	if expr.IncludeEpisodesWithinSeries {
		b.WriteByte(0)
		b.WriteByte('S')
	}
	return b.String()
}

// Compile turns one expression into a predicate. It fails with a
// *CompilationError when the field is unknown, the operator is invalid for
// the field's type class, or the target value does not parse.
func (c *Compiler) Compile(expr Expression) (*Predicate, error) {
	sig := signature(expr)
	c.mu.RLock()
	cached, ok := c.cache[sig]
	c.mu.RUnlock()
	if ok {
		metrics.CacheHits.WithLabelValues("predicate").Inc()
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("predicate").Inc()

	p, err := compile(expr)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if len(c.cache) < c.maxSize {
		c.cache[sig] = p
	}
	c.mu.Unlock()
	return p, nil
}

func compile(expr Expression) (*Predicate, error) {
	info, ok := catalog[expr.MemberName]
	if !ok {
		return nil, compileErr(expr, "unknown field")
	}
	if !operatorAllowed(info, expr.Operator) {
		return nil, compileErr(expr, "operator not valid for "+info.Class.String()+" field")
	}

	var match func(o *operand.Operand, users []string) bool
	var err error

	switch info.Class {
	case ClassString, ClassEnum:
		match, err = compileString(expr)
	case ClassList:
		match, err = compileList(expr)
	case ClassNumeric:
		match, err = compileNumeric(expr, info)
	case ClassDate:
		match, err = compileDate(expr, info)
	case ClassBool:
		match, err = compileBool(expr)
	case ClassSimilar:
		return nil, compileErr(expr, "SimilarTo rules are resolved by the similarity scorer")
	default:
		return nil, compileErr(expr, "unsupported field class")
	}
	if err != nil {
		return nil, err
	}

	return &Predicate{
		Field:     expr.MemberName,
		Expensive: info.Expensive(),
		PerUser:   info.PerUser,
		match:     match,
	}, nil
}

// stringMatcher builds the comparison applied to one string value.
func stringMatcher(expr Expression) (func(string) bool, error) {
	target := expr.TargetValue
	switch expr.Operator {
	case OpEqual, OpNotEqual:
		return func(v string) bool { return strings.EqualFold(v, target) }, nil
	case OpContains, OpNotContains:
		lower := strings.ToLower(target)
		return func(v string) bool { return strings.Contains(strings.ToLower(v), lower) }, nil
	case OpIsIn, OpIsNotIn:
		values := splitList(target)
		return func(v string) bool {
			for _, candidate := range values {
				if strings.EqualFold(v, candidate) {
					return true
				}
			}
			return false
		}, nil
	case OpMatchRegex:
		// RE2 guarantees linear-time matching, so a compiled pattern
		// cannot backtrack catastrophically at evaluation time.
		re, err := regexp.Compile(target)
		if err != nil {
			return nil, compileErr(expr, "invalid regular expression: "+err.Error())
		}
		return re.MatchString, nil
	default:
		return nil, compileErr(expr, "operator not valid for string field")
	}
}

// NameMatcher returns the string comparison a SimilarTo rule applies to
// candidate item names when locating reference items.
func NameMatcher(expr Expression) (func(string) bool, error) {
	return stringMatcher(expr)
}

func compileString(expr Expression) (func(*operand.Operand, []string) bool, error) {
	matcher, err := stringMatcher(expr)
	if err != nil {
		return nil, err
	}
	field := expr.MemberName
	negate := expr.Operator.Exclusionary()
	return func(o *operand.Operand, _ []string) bool {
		v, _ := o.Text(field)
		return matcher(v) != negate
	}, nil
}

// compileList applies the string comparison element-wise: positive operators
// pass when any element matches, negated operators only when no element
// matches.
func compileList(expr Expression) (func(*operand.Operand, []string) bool, error) {
	matcher, err := stringMatcher(expr)
	if err != nil {
		return nil, err
	}
	field := expr.MemberName
	negate := expr.Operator.Exclusionary()
	expandSeries := field == operand.FieldCollections && expr.IncludeEpisodesWithinSeries
	return func(o *operand.Operand, _ []string) bool {
		values, _ := o.List(field)
		if expandSeries && len(o.SeriesCollections) > 0 {
			merged := make([]string, 0, len(values)+len(o.SeriesCollections))
			merged = append(merged, values...)
			merged = append(merged, o.SeriesCollections...)
			values = merged
		}
		for _, v := range values {
			if matcher(v) {
				return !negate
			}
		}
		return negate
	}, nil
}

func compileNumeric(expr Expression, info FieldInfo) (func(*operand.Operand, []string) bool, error) {
	field := expr.MemberName
	perUser := info.PerUser

	if expr.Operator == OpIsIn || expr.Operator == OpIsNotIn {
		parts := splitList(expr.TargetValue)
		if len(parts) == 0 {
			return nil, compileErr(expr, "empty value list")
		}
		targets := make([]float64, 0, len(parts))
		for _, part := range parts {
			n, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return nil, compileErr(expr, "value "+strconv.Quote(part)+" is not numeric")
			}
			targets = append(targets, n)
		}
		negate := expr.Operator == OpIsNotIn
		return numericEval(field, perUser, func(v float64) bool {
			for _, t := range targets {
				if v == t {
					return true
				}
			}
			return false
		}, negate), nil
	}

	target, err := strconv.ParseFloat(strings.TrimSpace(expr.TargetValue), 64)
	if err != nil {
		return nil, compileErr(expr, "target value is not numeric")
	}

	cmp, negate, err := compareFn(expr, target)
	if err != nil {
		return nil, err
	}
	return numericEval(field, perUser, cmp, negate), nil
}

// compareFn maps a comparison operator onto a float64 test.
func compareFn(expr Expression, target float64) (func(float64) bool, bool, error) {
	switch expr.Operator {
	case OpEqual:
		return func(v float64) bool { return v == target }, false, nil
	case OpNotEqual:
		return func(v float64) bool { return v == target }, true, nil
	case OpGreaterThan:
		return func(v float64) bool { return v > target }, false, nil
	case OpGreaterThanOrEqual:
		return func(v float64) bool { return v >= target }, false, nil
	case OpLessThan:
		return func(v float64) bool { return v < target }, false, nil
	case OpLessThanOrEqual:
		return func(v float64) bool { return v <= target }, false, nil
	default:
		return nil, false, compileErr(expr, "operator not valid for ordered field")
	}
}

// numericEval wraps a float test into a per-user-aware predicate body.
func numericEval(field string, perUser bool, cmp func(float64) bool, negate bool) func(*operand.Operand, []string) bool {
	return func(o *operand.Operand, users []string) bool {
		if !perUser {
			v, _ := o.Number(field, "")
			return cmp(v) != negate
		}
		for _, user := range users {
			v, _ := o.Number(field, user)
			if cmp(v) != negate {
				return true
			}
		}
		return false
	}
}

func compileDate(expr Expression, info FieldInfo) (func(*operand.Operand, []string) bool, error) {
	target, err := parseDateValue(expr.TargetValue)
	if err != nil {
		return nil, compileErr(expr, "target value is not a date: "+err.Error())
	}

	cmp, negate, cmpErr := compareFn(expr, float64(target))
	if cmpErr != nil {
		return nil, cmpErr
	}

	field := expr.MemberName
	perUser := info.PerUser
	return func(o *operand.Operand, users []string) bool {
		if !perUser {
			v, _ := o.Date(field, "")
			return cmp(float64(v)) != negate
		}
		for _, user := range users {
			v, _ := o.Date(field, user)
			if cmp(float64(v)) != negate {
				return true
			}
		}
		return false
	}, nil
}

func compileBool(expr Expression) (func(*operand.Operand, []string) bool, error) {
	target, err := strconv.ParseBool(strings.TrimSpace(strings.ToLower(expr.TargetValue)))
	if err != nil {
		return nil, compileErr(expr, "target value is not a boolean")
	}
	want := target
	if expr.Operator == OpNotEqual {
		want = !want
	}

	field := expr.MemberName
	return func(o *operand.Operand, users []string) bool {
		for _, user := range users {
			v, _ := o.Flag(field, user)
			if v == want {
				return true
			}
		}
		return false
	}, nil
}

// dateLayouts are the accepted target encodings, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDateValue parses a rule's date target into epoch seconds. Bare
// integers are taken as epoch seconds directly.
func parseDateValue(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if epoch, err := strconv.ParseInt(value, 10, 64); err == nil {
		return epoch, nil
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.Unix(), nil
		}
		lastErr = err
	}
	return 0, lastErr
}

// splitList splits an IsIn / IsNotIn target into trimmed, non-empty values.
func splitList(target string) []string {
	parts := strings.Split(target, InListDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
