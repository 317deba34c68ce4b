// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

package rules

import (
	"github.com/tomtom215/smartlists/internal/operand"
)

// DefaultCompareFields are the similarity comparison fields used when a
// SimilarTo rule does not select its own.
var DefaultCompareFields = []string{operand.FieldGenres, operand.FieldTags}

// validCompareFields are the fields the similarity scorer can compare on.
var validCompareFields = map[string]struct{}{
	operand.FieldGenres:         {},
	operand.FieldTags:           {},
	operand.FieldPeople:         {},
	operand.FieldStudios:        {},
	operand.FieldAudioLanguages: {},
	operand.FieldName:           {},
	operand.FieldProductionYear: {},
	operand.FieldParentalRating: {},
}

// CompiledSet is one AND-group after compilation, partitioned for staged
// evaluation: media-type rules first, then cheap predicates, then expensive
// ones, with SimilarTo rules handed to the similarity scorer.
type CompiledSet struct {
	TypeRules []*Predicate
	Cheap     []*Predicate
	Expensive []*Predicate
	SimilarTo []Expression
}

// HasExpensive reports whether the set needs expensive extraction or
// similarity scoring to fully evaluate.
func (s *CompiledSet) HasExpensive() bool {
	return len(s.Expensive) > 0 || len(s.SimilarTo) > 0
}

// CompiledRuleSet is a playlist's full compiled configuration: an OR of
// compiled AND-groups plus the extraction requirements derived from them.
type CompiledRuleSet struct {
	Sets []CompiledSet

	// Flags unions the expensive sub-extractions any rule references.
	Flags operand.Flags

	// SimilarTo collects every similarity rule across sets; the pipeline
	// builds one reference profile from them per run.
	SimilarTo []Expression

	// CompareFields is the union of the similarity comparison fields
	// selected by the SimilarTo rules, or DefaultCompareFields.
	CompareFields []string

	// HasTypeScope reports whether any set carries a media-type rule.
	HasTypeScope bool
}

// CompileSet compiles a playlist's expression sets. Any malformed rule
// aborts the whole compilation with a *CompilationError; nothing is
// evaluated until every rule compiles.
func (c *Compiler) CompileSet(sets []ExpressionSet) (*CompiledRuleSet, error) {
	if len(sets) == 0 {
		return nil, &CompilationError{Reason: "at least one expression set is required"}
	}

	crs := &CompiledRuleSet{Sets: make([]CompiledSet, 0, len(sets))}
	compareSeen := make(map[string]struct{})

	for _, set := range sets {
		if len(set.Expressions) == 0 {
			return nil, &CompilationError{Reason: "expression set must contain at least one rule"}
		}

		var cs CompiledSet
		for _, expr := range set.Expressions {
			if expr.MemberName == operand.FieldSimilarTo {
				if err := validateSimilarTo(expr, compareSeen, crs); err != nil {
					return nil, err
				}
				cs.SimilarTo = append(cs.SimilarTo, expr)
				continue
			}

			p, err := c.Compile(expr)
			if err != nil {
				return nil, err
			}

			info := catalog[expr.MemberName]
			crs.Flags = crs.Flags.Union(info.Flags)

			switch {
			case expr.MemberName == operand.FieldMediaType:
				cs.TypeRules = append(cs.TypeRules, p)
			case p.Expensive:
				cs.Expensive = append(cs.Expensive, p)
			default:
				cs.Cheap = append(cs.Cheap, p)
			}
		}

		if len(cs.TypeRules) > 0 {
			crs.HasTypeScope = true
		}
		crs.Sets = append(crs.Sets, cs)
	}

	if len(crs.SimilarTo) > 0 {
		if len(crs.CompareFields) == 0 {
			crs.CompareFields = append(crs.CompareFields, DefaultCompareFields...)
		}
		// Comparison fields pull in the same extraction work as rules on
		// those fields would.
		for _, field := range crs.CompareFields {
			if info, ok := catalog[field]; ok {
				crs.Flags = crs.Flags.Union(info.Flags)
			}
		}
	}

	return crs, nil
}

func validateSimilarTo(expr Expression, compareSeen map[string]struct{}, crs *CompiledRuleSet) error {
	info := catalog[operand.FieldSimilarTo]
	if !operatorAllowed(info, expr.Operator) {
		if expr.Operator.Exclusionary() {
			return compileErr(expr, "exclusionary operators are not valid for SimilarTo rules")
		}
		return compileErr(expr, "operator not valid for SimilarTo rules")
	}
	if expr.TargetValue == "" {
		return compileErr(expr, "SimilarTo rules require a target name")
	}
	for _, field := range expr.CompareFields {
		if _, ok := validCompareFields[field]; !ok {
			return compileErr(expr, "unknown comparison field "+field)
		}
		if _, dup := compareSeen[field]; !dup {
			compareSeen[field] = struct{}{}
			crs.CompareFields = append(crs.CompareFields, field)
		}
	}
	crs.SimilarTo = append(crs.SimilarTo, expr)
	return nil
}
