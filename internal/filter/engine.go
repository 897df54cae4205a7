package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/workbench/pkg/types"
	"github.com/mesh-intelligence/workbench/pkg/workspace"
)

// DefaultCacheSize bounds the number of compiled regular expressions kept.
const DefaultCacheSize = 128

// Engine compiles and evaluates filter triples.
type Engine struct {
	log   zerolog.Logger
	cache *lru.Cache[string, *regexp.Regexp]
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger that reports skipped triples.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New returns an engine with a regexp cache of DefaultCacheSize entries.
func New(opts ...Option) *Engine {
	cache, err := lru.New[string, *regexp.Regexp](DefaultCacheSize)
	if err != nil {
		// Only a non-positive size fails.
		panic(err)
	}
	e := &Engine{log: zerolog.Nop(), cache: cache}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Result is the outcome of a filter run.
type Result struct {
	// IDs lists the matching candidates in workspace order.
	IDs []string
	// Skipped holds one error per malformed triple that was ignored.
	Skipped []error
}

// regexp compiles pattern through the cache.
// Returns ErrInvalidPattern if the expression does not compile.
func (e *Engine) regexp(pattern string) (*regexp.Regexp, error) {
	if re, ok := e.cache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", types.ErrInvalidPattern, pattern, err)
	}
	e.cache.Add(pattern, re)
	return re, nil
}

// Compile turns a triple into a Clause. Regular expressions are not split
// on commas. Returns ErrInvalidFilter for a malformed triple and
// ErrInvalidPattern for a regular expression that does not compile.
func (e *Engine) Compile(t Triple) (Clause, error) {
	pred, err := parsePredicate(t.Predicate)
	if err != nil {
		return nil, err
	}

	switch t.Field {
	case FieldPath, FieldName, FieldExtension, FieldReference:
		if pred.op.numeric() {
			return nil, fmt.Errorf("%w: %s applies to attributes only", types.ErrInvalidFilter, t.Predicate)
		}
		if pred.op == opRegexp {
			re, err := e.regexp(t.Pattern)
			if err != nil {
				return nil, err
			}
			return &regexpClause{field: t.Field, re: re}, nil
		}
		alts := alternatives(t.Pattern)
		if len(alts) == 0 {
			return nil, fmt.Errorf("%w: empty pattern in %s", types.ErrInvalidFilter, t)
		}
		return &textClause{field: t.Field, pred: pred, alts: alts}, nil

	case FieldAttribute:
		if pred.op == opRegexp {
			id, expr, ok := strings.Cut(t.Pattern, ":")
			if !ok || id == "" {
				return nil, fmt.Errorf("%w: attribute pattern %q is not id:value", types.ErrInvalidFilter, t.Pattern)
			}
			re, err := e.regexp(expr)
			if err != nil {
				return nil, err
			}
			return &attrRegexpClause{id: id, re: re}, nil
		}
		pairs, err := attrPairs(t.Pattern)
		if err != nil {
			return nil, err
		}
		if !pred.op.numeric() {
			return &attrTextClause{pred: pred, alts: pairs}, nil
		}
		nums := make([]attrNum, 0, len(pairs))
		for _, p := range pairs {
			v, err := types.CoerceFloat(p.value)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a number", types.ErrInvalidFilter, p.value)
			}
			nums = append(nums, attrNum{id: p.id, value: v})
		}
		return &attrNumClause{pred: pred, alts: nums}, nil
	}
	return nil, fmt.Errorf("%w: unknown field %q", types.ErrInvalidFilter, t.Field)
}

func attrPairs(pattern string) ([]attrPair, error) {
	alts := alternatives(pattern)
	if len(alts) == 0 {
		return nil, fmt.Errorf("%w: empty attribute pattern", types.ErrInvalidFilter)
	}
	out := make([]attrPair, 0, len(alts))
	for _, a := range alts {
		id, value, ok := strings.Cut(a, ":")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("%w: attribute pattern %q is not id:value", types.ErrInvalidFilter, a)
		}
		out = append(out, attrPair{id: strings.TrimSpace(id), value: strings.TrimSpace(value)})
	}
	return out, nil
}

// compileAll compiles the triples that apply to the requested candidates.
// Malformed or inapplicable triples are logged and reported in skipped;
// an invalid regular expression aborts.
func (e *Engine) compileAll(triples []Triple, applies func(Clause) bool) ([]Clause, []error, error) {
	var clauses []Clause
	var skipped []error
	for _, t := range triples {
		c, err := e.Compile(t)
		if errors.Is(err, types.ErrInvalidPattern) {
			return nil, nil, err
		}
		if err == nil && !applies(c) {
			err = fmt.Errorf("%w: field %q does not apply here", types.ErrInvalidFilter, t.Field)
		}
		if err != nil {
			e.log.Warn().Str("triple", t.String()).Err(err).Msg("filter triple skipped")
			skipped = append(skipped, err)
			continue
		}
		clauses = append(clauses, c)
	}
	return clauses, skipped, nil
}

// Files returns the files selected by triples under mode.
func (e *Engine) Files(ws *workspace.Workspace, triples []Triple, mode Mode) (Result, error) {
	clauses, skipped, err := e.compileAll(triples, Clause.OnFiles)
	if err != nil {
		return Result{}, err
	}
	files := ws.Files()
	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.ID()
	}
	sets := func(c Clause) map[string]bool {
		set := make(map[string]bool)
		for _, f := range files {
			if c.MatchFile(ws, f) {
				set[f.ID()] = true
			}
		}
		return set
	}
	return Result{IDs: combine(ids, clauses, mode, sets), Skipped: skipped}, nil
}

// Refs returns the references selected by triples under mode.
func (e *Engine) Refs(ws *workspace.Workspace, triples []Triple, mode Mode) (Result, error) {
	clauses, skipped, err := e.compileAll(triples, Clause.OnRefs)
	if err != nil {
		return Result{}, err
	}
	refs := ws.Refs()
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.ID()
	}
	sets := func(c Clause) map[string]bool {
		set := make(map[string]bool)
		for _, r := range refs {
			if c.MatchRef(r) {
				set[r.ID()] = true
			}
		}
		return set
	}
	return Result{IDs: combine(ids, clauses, mode, sets), Skipped: skipped}, nil
}

// combine folds the clause sets left to right and returns the members in
// candidate order. In All mode an empty intermediate set stops the fold.
func combine(order []string, clauses []Clause, mode Mode, eval func(Clause) map[string]bool) []string {
	if len(clauses) == 0 {
		return nil
	}
	acc := eval(clauses[0])
	for _, c := range clauses[1:] {
		if mode == All && len(acc) == 0 {
			break
		}
		next := eval(c)
		if mode == All {
			for id := range acc {
				if !next[id] {
					delete(acc, id)
				}
			}
		} else {
			for id := range next {
				acc[id] = true
			}
		}
	}
	var out []string
	for _, id := range order {
		if acc[id] {
			out = append(out, id)
		}
	}
	return out
}
