package filter

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

type op int

const (
	opExact op = iota
	opContains
	opStartsWith
	opEndsWith
	opRegexp
	opEqual
	opGT
	opGE
	opLT
	opLE
)

var opNames = map[string]op{
	"exact":      opExact,
	"contains":   opContains,
	"startswith": opStartsWith,
	"endswith":   opEndsWith,
	"regexp":     opRegexp,
	"equal":      opEqual,
	"gt":         opGT,
	"ge":         opGE,
	"lt":         opLT,
	"le":         opLE,
}

func (o op) numeric() bool { return o >= opEqual }

// predicate is a parsed predicate name: base operator plus the
// case-insensitive ("i") and negation ("not_") variants.
type predicate struct {
	op     op
	fold   bool
	negate bool
}

// parsePredicate accepts "<p>", "i<p>", "not_<p>" and "not_i<p>".
// regexp admits neither variant; numeric operators admit only negation.
func parsePredicate(name string) (predicate, error) {
	var p predicate
	rest := name
	if strings.HasPrefix(rest, "not_") {
		p.negate = true
		rest = strings.TrimPrefix(rest, "not_")
	}
	if o, ok := opNames[rest]; ok {
		p.op = o
	} else if o, ok := opNames[strings.TrimPrefix(rest, "i")]; ok && strings.HasPrefix(rest, "i") {
		p.op = o
		p.fold = true
	} else {
		return p, fmt.Errorf("%w: unknown predicate %q", types.ErrInvalidFilter, name)
	}
	if p.op == opRegexp && (p.fold || p.negate) {
		return p, fmt.Errorf("%w: regexp cannot be combined with %q", types.ErrInvalidFilter, name)
	}
	if p.op.numeric() && p.fold {
		return p, fmt.Errorf("%w: numeric predicate %q is not case sensitive", types.ErrInvalidFilter, name)
	}
	return p, nil
}

// text applies a string operator without negation.
func (p predicate) text(value, pattern string) bool {
	if p.fold {
		value = strings.ToLower(value)
		pattern = strings.ToLower(pattern)
	}
	switch p.op {
	case opExact:
		return value == pattern
	case opContains:
		return strings.Contains(value, pattern)
	case opStartsWith:
		return strings.HasPrefix(value, pattern)
	case opEndsWith:
		return strings.HasSuffix(value, pattern)
	}
	return false
}

// number applies a numeric operator without negation.
func (p predicate) number(value, pattern float64) bool {
	switch p.op {
	case opEqual:
		return value == pattern
	case opGT:
		return value > pattern
	case opGE:
		return value >= pattern
	case opLT:
		return value < pattern
	case opLE:
		return value <= pattern
	}
	return false
}
