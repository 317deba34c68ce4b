// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

// Package validation checks rule payloads with go-playground/validator v10
// before they reach the compiler, so rule-authoring surfaces get structured
// field errors instead of compilation failures for shape problems.
//
// The validator instance is a thread-safe singleton with custom validators
// for field names and operators registered against the static field catalog.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/smartlists/internal/rules"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the singleton validator, initializing it on first use.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// known_field: MemberName must appear in the field catalog.
		_ = validate.RegisterValidation("known_field", func(fl validator.FieldLevel) bool {
			_, ok := rules.Lookup(fl.Field().String())
			return ok
		})

		// known_operator: Operator must be in the fixed operator set.
		_ = validate.RegisterValidation("known_operator", func(fl validator.FieldLevel) bool {
			op := rules.Operator(fl.Field().String())
			for _, known := range rules.Operators() {
				if op == known {
					return true
				}
			}
			return false
		})
	})
	return validate
}

// expressionPayload re-tags Expression for payload validation.
type expressionPayload struct {
	MemberName string `validate:"required,known_field"`
	Operator   string `validate:"required,known_operator"`
}

// ValidateExpressionSets checks the shape of a rule configuration: at least
// one set, at least one expression per set, known field names and operators.
// Value parsing and field/operator compatibility remain the compiler's job.
func ValidateExpressionSets(sets []rules.ExpressionSet) error {
	if len(sets) == 0 {
		return errors.New("at least one expression set is required")
	}
	v := getValidator()
	for si, set := range sets {
		if len(set.Expressions) == 0 {
			return fmt.Errorf("expression set %d is empty", si)
		}
		for ei, expr := range set.Expressions {
			payload := expressionPayload{
				MemberName: expr.MemberName,
				Operator:   string(expr.Operator),
			}
			if err := v.Struct(&payload); err != nil {
				return fmt.Errorf("set %d expression %d: %s", si, ei, describe(err))
			}
		}
	}
	return nil
}

// describe flattens validator errors into a readable message.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "known_field":
			parts = append(parts, fmt.Sprintf("%s %q is not a known field", fe.Field(), fe.Value()))
		case "known_operator":
			parts = append(parts, fmt.Sprintf("%s %q is not a known operator", fe.Field(), fe.Value()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
