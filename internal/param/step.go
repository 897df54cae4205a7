// Package param holds the annotation pipeline parameters: an ordered list
// of steps with activation, language and typed options, plus the output
// extension chosen for each format family.
package param

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// Option is a typed setting of one step.
type Option struct {
	ID          string `toml:"id"`
	Type        string `toml:"type"`
	Value       string `toml:"value"`
	Description string `toml:"description"`
}

// Typed returns the option value coerced to its declared type.
func (o Option) Typed() (any, error) {
	return types.Coerce(o.Type, o.Value)
}

// RefPage links a step to its documentation.
type RefPage struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// Step is one configurable unit of the annotation pipeline. Outputs lists
// the format families the step writes; Extensions optionally gives the
// step's default extension for some of them.
type Step struct {
	Key      string    `toml:"key"`
	Name     string    `toml:"name"`
	Order    int       `toml:"order"`
	Enabled  bool      `toml:"enabled"`
	Langs    []string  `toml:"langs"`
	Lang     string    `toml:"lang"`
	Options  []Option  `toml:"options"`
	RefPages []RefPage `toml:"refs"`
	Outputs  []string  `toml:"outputs"`

	Extensions map[string]string `toml:"extensions"`
}

// NeedsLang reports whether the step requires a language.
func (s Step) NeedsLang() bool { return len(s.Langs) > 0 }

// SupportsLang reports whether lang is one of the step languages.
func (s Step) SupportsLang(lang string) bool {
	for _, l := range s.Langs {
		if l == lang {
			return true
		}
	}
	return false
}

// Writes reports whether the step declares family among its outputs.
func (s Step) Writes(family string) bool {
	for _, f := range s.Outputs {
		if f == family {
			return true
		}
	}
	return false
}

// Option returns the option with the given id.
func (s Step) Option(id string) (Option, bool) {
	for _, o := range s.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// clone returns a deep copy so that callers never share slices with the model.
func (s Step) clone() Step {
	c := s
	c.Langs = append([]string(nil), s.Langs...)
	c.Options = append([]Option(nil), s.Options...)
	c.RefPages = append([]RefPage(nil), s.RefPages...)
	c.Outputs = append([]string(nil), s.Outputs...)
	if s.Extensions != nil {
		c.Extensions = make(map[string]string, len(s.Extensions))
		for f, ext := range s.Extensions {
			c.Extensions[f] = ext
		}
	}
	return c
}

// validate checks a step descriptor on its own.
func (s Step) validate() error {
	if s.Key == "" {
		return fmt.Errorf("%w: step without key", types.ErrInvalidID)
	}
	if s.Lang != "" && !s.SupportsLang(s.Lang) {
		return fmt.Errorf("%w: %s does not support %q", types.ErrInvalidLang, s.Key, s.Lang)
	}
	seen := make(map[string]bool, len(s.Options))
	for _, o := range s.Options {
		if o.ID == "" || seen[o.ID] {
			return fmt.Errorf("%w: option %q of %s", types.ErrInvalidOption, o.ID, s.Key)
		}
		seen[o.ID] = true
		if _, err := o.Typed(); err != nil {
			return fmt.Errorf("option %s.%s: %w", s.Key, o.ID, err)
		}
	}
	return nil
}

// Descriptor file extension.
const descriptorExt = ".toml"

// ParseStep decodes one TOML step descriptor. A missing option type
// means str.
func ParseStep(data []byte) (Step, error) {
	var s Step
	if err := toml.Unmarshal(data, &s); err != nil {
		return Step{}, fmt.Errorf("parsing step descriptor: %w", err)
	}
	for i := range s.Options {
		if s.Options[i].Type == "" {
			s.Options[i].Type = types.ValueTypeStr
		}
	}
	if err := s.validate(); err != nil {
		return Step{}, err
	}
	return s, nil
}

// LoadDir reads every *.toml descriptor of dir and returns the steps
// sorted by order then key. Duplicate keys are an error.
func LoadDir(fs afero.Fs, dir string) ([]Step, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("reading steps directory: %w", err)
	}

	var steps []Step
	keys := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), descriptorExt) {
			continue
		}
		data, err := afero.ReadFile(fs, filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		s, err := ParseStep(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", e.Name(), err)
		}
		if prev, ok := keys[s.Key]; ok {
			return nil, fmt.Errorf("%w: step %s in %s and %s", types.ErrDuplicate, s.Key, prev, e.Name())
		}
		keys[s.Key] = e.Name()
		steps = append(steps, s)
	}

	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].Order != steps[j].Order {
			return steps[i].Order < steps[j].Order
		}
		return steps[i].Key < steps[j].Key
	})
	return steps, nil
}
