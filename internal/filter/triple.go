// Package filter selects files or references of a workspace from filter
// triples combined by intersection or union.
//
// A triple (field, predicate, pattern) is compiled once into a Clause, a
// tagged variant chosen by field and predicate class, so that coercion
// happens at compile time rather than on every candidate.
package filter

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// Field names accepted in a triple.
const (
	FieldPath      = "path"
	FieldName      = "name"
	FieldExtension = "extension"
	FieldReference = "reference"
	FieldAttribute = "attribute"
)

// Mode combines the sets produced by each triple.
type Mode int

// Combination modes.
const (
	All Mode = iota // intersection
	Any             // union
)

// String returns "all" or "any".
func (m Mode) String() string {
	if m == Any {
		return "any"
	}
	return "all"
}

// ParseMode converts "all"/"and" or "any"/"or" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "and", "&":
		return All, nil
	case "any", "or", "|":
		return Any, nil
	}
	return All, fmt.Errorf("%w: unknown mode %q", types.ErrInvalidFilter, s)
}

// Triple is one user-defined filter rule.
type Triple struct {
	Field     string
	Predicate string
	Pattern   string
}

// String renders the triple in its "field:predicate:pattern" form.
func (t Triple) String() string {
	return t.Field + ":" + t.Predicate + ":" + t.Pattern
}

// ParseTriple reads "field:predicate:pattern". The pattern keeps any
// further colon, as in "attribute:gt:year:2000".
func ParseTriple(s string) (Triple, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return Triple{}, fmt.Errorf("%w: %q", types.ErrInvalidFilter, s)
	}
	return Triple{
		Field:     strings.ToLower(strings.TrimSpace(parts[0])),
		Predicate: strings.ToLower(strings.TrimSpace(parts[1])),
		Pattern:   parts[2],
	}, nil
}

// alternatives splits a pattern on commas, dropping empty elements.
func alternatives(pattern string) []string {
	var out []string
	for _, p := range strings.Split(pattern, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
