// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

/*
Package rules implements the declarative rule model: the wire-level
expression types, the static field catalog consumed by rule-authoring
surfaces, and the compiler that turns expressions into predicates over
feature records.

A playlist's rule configuration is an OR of expression sets; each set ANDs
its expressions. Compiled predicates are cached by structural signature so
identical rules across playlists share one compiled form.

# Overview

The package splits rule handling into three layers:

  - Expression / ExpressionSet — the JSON wire shapes rule authors produce.
  - The field catalog — a static table mapping every filterable field to its
    value class, permitted operators, extraction cost, and per-user
    resolution. Authoring surfaces enumerate it; the compiler enforces it.
  - The compiler — turns one expression into a Predicate (a pure match
    function over an extracted feature record) or a *CompilationError naming
    the offending field, operator, and value.

Compilation is strict and evaluation is total: any malformed value fails at
compile time, so predicates never error at match time. SimilarTo expressions
are the one exception to direct compilation; CompileSet lifts them out of
the predicate lists for the similarity profile to consume.

# Cost staging

CompileSet partitions each set's predicates into media-type rules, cheap
rules, and expensive rules, and unions the extraction flags the set needs.
The evaluation pipeline uses the partition to pay for expensive extraction
(people, streams, series, collections, next-unwatched) only on items whose
cheap rules already passed.
*/
package rules
