package filter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/workbench/pkg/types"
	"github.com/mesh-intelligence/workbench/pkg/workspace"
)

// Clause is a compiled triple. A clause reports whether it can be
// evaluated against files, references, or both.
type Clause interface {
	// OnFiles reports whether the clause applies to file candidates.
	OnFiles() bool
	// OnRefs reports whether the clause applies to reference candidates.
	OnRefs() bool
	// MatchFile evaluates the clause for one file.
	MatchFile(ws *workspace.Workspace, f *workspace.FileName) bool
	// MatchRef evaluates the clause for one reference.
	MatchRef(r *workspace.Reference) bool
}

// fileRefs returns the references associated with the root of f.
func fileRefs(ws *workspace.Workspace, f *workspace.FileName) []*workspace.Reference {
	root := ws.RootOf(f.ID())
	if root == nil {
		return nil
	}
	return ws.RefsOf(root.ID())
}

// anyRef reports whether match holds for one of refs.
func anyRef(refs []*workspace.Reference, match func(*workspace.Reference) bool) bool {
	for _, r := range refs {
		if match(r) {
			return true
		}
	}
	return false
}

// textClause applies a string predicate to the path, name, extension or
// reference identifier.
type textClause struct {
	field string
	pred  predicate
	alts  []string
}

func (c *textClause) OnFiles() bool { return true }

func (c *textClause) OnRefs() bool { return c.field == FieldReference }

func (c *textClause) values(f *workspace.FileName) string {
	switch c.field {
	case FieldPath:
		return f.Dir()
	case FieldName:
		return f.Name()
	case FieldExtension:
		return strings.TrimPrefix(f.Ext(), ".")
	}
	return ""
}

// eval OR-s the alternatives; negation applies to each alternative.
func (c *textClause) eval(match func(alt string) bool) bool {
	for _, alt := range c.alts {
		if match(alt) != c.pred.negate {
			return true
		}
	}
	return false
}

func (c *textClause) MatchFile(ws *workspace.Workspace, f *workspace.FileName) bool {
	if c.field == FieldReference {
		refs := fileRefs(ws, f)
		return c.eval(func(alt string) bool {
			return anyRef(refs, func(r *workspace.Reference) bool { return c.pred.text(r.ID(), alt) })
		})
	}
	v := c.values(f)
	return c.eval(func(alt string) bool {
		if c.field == FieldExtension {
			alt = strings.TrimPrefix(alt, ".")
		}
		return c.pred.text(v, alt)
	})
}

func (c *textClause) MatchRef(r *workspace.Reference) bool {
	return c.eval(func(alt string) bool { return c.pred.text(r.ID(), alt) })
}

// regexpClause matches a field against one regular expression.
type regexpClause struct {
	field string
	re    *regexp.Regexp
}

func (c *regexpClause) OnFiles() bool { return true }

func (c *regexpClause) OnRefs() bool { return c.field == FieldReference }

func (c *regexpClause) MatchFile(ws *workspace.Workspace, f *workspace.FileName) bool {
	switch c.field {
	case FieldPath:
		return c.re.MatchString(f.Dir())
	case FieldName:
		return c.re.MatchString(f.Name())
	case FieldExtension:
		return c.re.MatchString(strings.TrimPrefix(f.Ext(), "."))
	case FieldReference:
		return anyRef(fileRefs(ws, f), c.MatchRef)
	}
	return false
}

func (c *regexpClause) MatchRef(r *workspace.Reference) bool {
	return c.re.MatchString(r.ID())
}

// attrPair is one "id:value" alternative of an attribute triple.
type attrPair struct {
	id    string
	value string
}

// attrText returns the comparable text of an attribute value. Booleans
// are canonicalized so that "1" and "true" compare equal.
func attrText(a *workspace.Attribute) string {
	if a.ValueType() == types.ValueTypeBool {
		if v, err := a.Typed(); err == nil {
			return strconv.FormatBool(v.(bool))
		}
	}
	return a.Value()
}

// attrTextClause applies a string predicate to attribute values.
type attrTextClause struct {
	pred predicate
	alts []attrPair
}

func (c *attrTextClause) OnFiles() bool { return true }

func (c *attrTextClause) OnRefs() bool { return true }

func (c *attrTextClause) MatchFile(ws *workspace.Workspace, f *workspace.FileName) bool {
	return anyRef(fileRefs(ws, f), c.MatchRef)
}

func (c *attrTextClause) MatchRef(r *workspace.Reference) bool {
	for _, alt := range c.alts {
		a := r.Attribute(alt.id)
		if a == nil {
			continue
		}
		value := alt.value
		if a.ValueType() == types.ValueTypeBool {
			if b, err := strconv.ParseBool(value); err == nil {
				value = strconv.FormatBool(b)
			}
		}
		if c.pred.text(attrText(a), value) != c.pred.negate {
			return true
		}
	}
	return false
}

// attrNum is one "id:number" alternative of a numeric attribute triple.
type attrNum struct {
	id    string
	value float64
}

// attrNumClause compares numeric attributes. Attributes declared with a
// non-numeric type never match, negated or not.
type attrNumClause struct {
	pred predicate
	alts []attrNum
}

func (c *attrNumClause) OnFiles() bool { return true }

func (c *attrNumClause) OnRefs() bool { return true }

func (c *attrNumClause) MatchFile(ws *workspace.Workspace, f *workspace.FileName) bool {
	return anyRef(fileRefs(ws, f), c.MatchRef)
}

func (c *attrNumClause) MatchRef(r *workspace.Reference) bool {
	for _, alt := range c.alts {
		a := r.Attribute(alt.id)
		if a == nil || !types.IsNumericValueType(a.ValueType()) {
			continue
		}
		v, err := types.CoerceFloat(a.Value())
		if err != nil {
			continue
		}
		if c.pred.number(v, alt.value) != c.pred.negate {
			return true
		}
	}
	return false
}

// attrRegexpClause matches the value of one attribute against a regular
// expression.
type attrRegexpClause struct {
	id string
	re *regexp.Regexp
}

func (c *attrRegexpClause) OnFiles() bool { return true }

func (c *attrRegexpClause) OnRefs() bool { return true }

func (c *attrRegexpClause) MatchFile(ws *workspace.Workspace, f *workspace.FileName) bool {
	return anyRef(fileRefs(ws, f), c.MatchRef)
}

func (c *attrRegexpClause) MatchRef(r *workspace.Reference) bool {
	a := r.Attribute(c.id)
	return a != nil && c.re.MatchString(attrText(a))
}
