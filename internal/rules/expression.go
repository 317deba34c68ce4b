// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

package rules

// Operator is a rule comparison operator.
type Operator string

// The fixed operator set.
const (
	OpEqual              Operator = "Equal"
	OpNotEqual           Operator = "NotEqual"
	OpContains           Operator = "Contains"
	OpNotContains        Operator = "NotContains"
	OpIsIn               Operator = "IsIn"
	OpIsNotIn            Operator = "IsNotIn"
	OpGreaterThan        Operator = "GreaterThan"
	OpGreaterThanOrEqual Operator = "GreaterThanOrEqual"
	OpLessThan           Operator = "LessThan"
	OpLessThanOrEqual    Operator = "LessThanOrEqual"
	OpMatchRegex         Operator = "MatchRegex"
)

// InListDelimiter separates values in IsIn / IsNotIn target lists.
const InListDelimiter = ";"

// Operators returns every operator in the fixed set.
func Operators() []Operator {
	return []Operator{
		OpEqual, OpNotEqual, OpContains, OpNotContains,
		OpIsIn, OpIsNotIn,
		OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual,
		OpMatchRegex,
	}
}

// Exclusionary reports whether the operator negates its match. Exclusionary
// operators are rejected on SimilarTo rules, where they would select nearly
// the whole catalog as reference material.
func (op Operator) Exclusionary() bool {
	switch op {
	case OpNotEqual, OpNotContains, OpIsNotIn:
		return true
	default:
		return false
	}
}

// Expression is one declarative rule as authored and stored: a field name,
// an operator valid for that field's type class, and a target value encoded
// as a string. IsIn / IsNotIn targets are InListDelimiter-separated lists.
type Expression struct {
	MemberName  string   `json:"MemberName" validate:"required"`
	Operator    Operator `json:"Operator" validate:"required"`
	TargetValue string   `json:"TargetValue"`

	// IncludeEpisodesWithinSeries expands collection-membership rules so
	// episodes match through their series' collections.
	IncludeEpisodesWithinSeries bool `json:"IncludeEpisodesWithinSeries,omitempty"`

	// CompareFields selects the similarity comparison fields of a
	// SimilarTo rule. Empty means the engine default.
	CompareFields []string `json:"CompareFields,omitempty"`
}

// ExpressionSet is an AND-group of expressions.
type ExpressionSet struct {
	Expressions []Expression `json:"Expressions" validate:"required,min=1,dive"`
}
