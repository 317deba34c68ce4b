// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/smartlists/internal/rules"
)

func set(exprs ...rules.Expression) rules.ExpressionSet {
	return rules.ExpressionSet{Expressions: exprs}
}

func TestValidateExpressionSets(t *testing.T) {
	valid := rules.Expression{
		MemberName:  "Genres",
		Operator:    rules.OpContains,
		TargetValue: "Action",
	}

	tests := []struct {
		name    string
		sets    []rules.ExpressionSet
		wantErr string
	}{
		{
			name: "valid single set",
			sets: []rules.ExpressionSet{set(valid)},
		},
		{
			name:    "no sets",
			sets:    nil,
			wantErr: "at least one expression set",
		},
		{
			name:    "empty set",
			sets:    []rules.ExpressionSet{{}},
			wantErr: "expression set 0 is empty",
		},
		{
			name: "unknown field",
			sets: []rules.ExpressionSet{set(rules.Expression{
				MemberName: "ShoeSize",
				Operator:   rules.OpEqual,
			})},
			wantErr: "not a known field",
		},
		{
			name: "unknown operator",
			sets: []rules.ExpressionSet{set(rules.Expression{
				MemberName: "Genres",
				Operator:   rules.Operator("Resembles"),
			})},
			wantErr: "not a known operator",
		},
		{
			name: "missing member name",
			sets: []rules.ExpressionSet{set(rules.Expression{
				Operator: rules.OpEqual,
			})},
			wantErr: "required",
		},
		{
			name: "second set reported with its index",
			sets: []rules.ExpressionSet{set(valid), set(rules.Expression{
				MemberName: "ShoeSize",
				Operator:   rules.OpEqual,
			})},
			wantErr: "set 1 expression 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExpressionSets(tt.sets)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("want error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

// Validation stops at shape; value/operator compatibility stays with the
// compiler so both layers report through their own error types.
func TestValidationDoesNotParseValues(t *testing.T) {
	sets := []rules.ExpressionSet{set(rules.Expression{
		MemberName:  "ProductionYear",
		Operator:    rules.OpGreaterThan,
		TargetValue: "not-a-number",
	})}
	if err := ValidateExpressionSets(sets); err != nil {
		t.Fatalf("shape-valid expression rejected: %v", err)
	}
}
