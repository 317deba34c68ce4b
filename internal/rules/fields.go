// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

package rules

import (
	"sort"

	"github.com/tomtom215/smartlists/internal/operand"
)

// Class is a field's declared type class, which determines the operators a
// rule on that field may use and how its target value parses.
type Class int

const (
	// ClassString fields compare as case-insensitive text.
	ClassString Class = iota
	// ClassList fields hold multiple string values; a positive match
	// succeeds when any element matches.
	ClassList
	// ClassNumeric fields compare as floating-point numbers.
	ClassNumeric
	// ClassDate fields compare as epoch seconds.
	ClassDate
	// ClassBool fields compare as booleans.
	ClassBool
	// ClassEnum fields are single string values from a fixed vocabulary;
	// substring and regex matching are not offered on them.
	ClassEnum
	// ClassSimilar marks the SimilarTo pseudo-field handled by the
	// similarity scorer rather than a compiled predicate.
	ClassSimilar
)

// String returns a human-readable name for the class.
func (c Class) String() string {
	switch c {
	case ClassString:
		return "string"
	case ClassList:
		return "list"
	case ClassNumeric:
		return "numeric"
	case ClassDate:
		return "date"
	case ClassBool:
		return "boolean"
	case ClassEnum:
		return "enum"
	case ClassSimilar:
		return "similarity"
	default:
		return "unknown"
	}
}

// FieldInfo describes one entry of the field catalog.
type FieldInfo struct {
	Class     Class
	Operators []Operator

	// Flags names the expensive sub-extractions the field needs; the zero
	// value marks a cheap field.
	Flags operand.Flags

	// PerUser marks fields resolved against a user's playback state.
	PerUser bool
}

// Expensive reports whether evaluating the field requires an expensive
// sub-extraction.
func (f FieldInfo) Expensive() bool {
	return f.Flags.Any()
}

var (
	stringOps = []Operator{OpEqual, OpNotEqual, OpContains, OpNotContains, OpIsIn, OpIsNotIn, OpMatchRegex}
	listOps   = []Operator{OpEqual, OpNotEqual, OpContains, OpNotContains, OpIsIn, OpIsNotIn, OpMatchRegex}
	enumOps   = []Operator{OpEqual, OpNotEqual, OpIsIn, OpIsNotIn}
	numberOps = []Operator{OpEqual, OpNotEqual, OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual, OpIsIn, OpIsNotIn}
	dateOps   = []Operator{OpEqual, OpNotEqual, OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual}
	boolOps   = []Operator{OpEqual, OpNotEqual}

	// similarOps excludes exclusionary operators: a negated SimilarTo rule
	// would match almost the entire catalog.
	similarOps = []Operator{OpEqual, OpContains, OpIsIn, OpMatchRegex}
)

// catalog is the static field table. Rule-authoring surfaces enumerate it
// through Fields and OperatorsFor to validate rules before compilation.
// Extraction flags are derived per field from operand.FlagsForField.
var catalog = map[string]FieldInfo{
	operand.FieldName:           {Class: ClassString, Operators: stringOps},
	operand.FieldMediaType:      {Class: ClassEnum, Operators: enumOps},
	operand.FieldSeriesName:     {Class: ClassString, Operators: stringOps},
	operand.FieldParentalRating: {Class: ClassEnum, Operators: enumOps},

	operand.FieldCommunityRating:   {Class: ClassNumeric, Operators: numberOps},
	operand.FieldCriticRating:      {Class: ClassNumeric, Operators: numberOps},
	operand.FieldProductionYear:    {Class: ClassNumeric, Operators: numberOps},
	operand.FieldRuntimeMinutes:    {Class: ClassNumeric, Operators: numberOps},
	operand.FieldAudioBitrate:      {Class: ClassNumeric, Operators: numberOps},
	operand.FieldAudioSampleRate:   {Class: ClassNumeric, Operators: numberOps},
	operand.FieldAudioBitDepth:     {Class: ClassNumeric, Operators: numberOps},
	operand.FieldAudioChannelCount: {Class: ClassNumeric, Operators: numberOps},
	operand.FieldVideoHeight:       {Class: ClassNumeric, Operators: numberOps},
	operand.FieldVideoWidth:        {Class: ClassNumeric, Operators: numberOps},
	operand.FieldFramerate:         {Class: ClassNumeric, Operators: numberOps},

	operand.FieldGenres:         {Class: ClassList, Operators: listOps},
	operand.FieldStudios:        {Class: ClassList, Operators: listOps},
	operand.FieldTags:           {Class: ClassList, Operators: listOps},
	operand.FieldCollections:    {Class: ClassList, Operators: listOps},
	operand.FieldAudioLanguages: {Class: ClassList, Operators: listOps},
	operand.FieldArtists:        {Class: ClassList, Operators: listOps},
	operand.FieldAlbumArtists:   {Class: ClassList, Operators: listOps},
	operand.FieldActors:         {Class: ClassList, Operators: listOps},
	operand.FieldDirectors:      {Class: ClassList, Operators: listOps},
	operand.FieldWriters:        {Class: ClassList, Operators: listOps},
	operand.FieldProducers:      {Class: ClassList, Operators: listOps},
	operand.FieldGuestStars:     {Class: ClassList, Operators: listOps},
	operand.FieldPeople:         {Class: ClassList, Operators: listOps},

	operand.FieldDateAdded:         {Class: ClassDate, Operators: dateOps},
	operand.FieldDateModified:      {Class: ClassDate, Operators: dateOps},
	operand.FieldDateLastRefreshed: {Class: ClassDate, Operators: dateOps},
	operand.FieldDateLastSaved:     {Class: ClassDate, Operators: dateOps},
	operand.FieldPremiereDate:      {Class: ClassDate, Operators: dateOps},

	operand.FieldIsPlayed:      {Class: ClassBool, Operators: boolOps, PerUser: true},
	operand.FieldIsFavorite:    {Class: ClassBool, Operators: boolOps, PerUser: true},
	operand.FieldPlayCount:     {Class: ClassNumeric, Operators: numberOps, PerUser: true},
	operand.FieldLastPlayed:    {Class: ClassDate, Operators: dateOps, PerUser: true},
	operand.FieldNextUnwatched: {Class: ClassBool, Operators: boolOps, PerUser: true},

	operand.FieldSimilarTo: {Class: ClassSimilar, Operators: similarOps},
}

func init() {
	for name, info := range catalog {
		info.Flags = operand.FlagsForField(name)
		catalog[name] = info
	}
}

// Fields returns every known field name, sorted.
func Fields() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the catalog entry for a field name.
func Lookup(field string) (FieldInfo, bool) {
	info, ok := catalog[field]
	return info, ok
}

// OperatorsFor returns the operators valid for a field, or nil for an
// unknown field.
func OperatorsFor(field string) []Operator {
	info, ok := catalog[field]
	if !ok {
		return nil
	}
	out := make([]Operator, len(info.Operators))
	copy(out, info.Operators)
	return out
}

func operatorAllowed(info FieldInfo, op Operator) bool {
	for _, allowed := range info.Operators {
		if op == allowed {
			return true
		}
	}
	return false
}
