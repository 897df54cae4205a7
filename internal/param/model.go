package param

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// Mix is shown instead of a language code when active steps disagree.
const Mix = "MIX"

// Model is the editable parameter set of one session.
type Model struct {
	cfg     types.Config
	log     zerolog.Logger
	steps   []Step
	outputs map[string]string
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ModelOption {
	return func(m *Model) { m.log = l }
}

// New builds a model over steps. Returns ErrUnknownFamily when a step
// declares a family absent from cfg or gives a default extension for a
// family it does not write, and ErrUnsupportedExtension when that default
// is not one of the family's extensions.
func New(cfg types.Config, steps []Step, opts ...ModelOption) (*Model, error) {
	m := &Model{
		cfg:     cfg,
		log:     zerolog.Nop(),
		outputs: make(map[string]string),
	}
	for _, o := range opts {
		o(m)
	}
	for _, s := range steps {
		if err := s.validate(); err != nil {
			return nil, err
		}
		for _, f := range s.Outputs {
			if _, ok := cfg.Formats[f]; !ok {
				return nil, fmt.Errorf("%w: %s declared by %s", types.ErrUnknownFamily, f, s.Key)
			}
		}
		s = s.clone()
		for f, ext := range s.Extensions {
			if !s.Writes(f) {
				return nil, fmt.Errorf("%w: %s has a default for %s", types.ErrUnknownFamily, s.Key, f)
			}
			norm, err := cfg.NormalizeExtension(f, ext)
			if err != nil {
				return nil, fmt.Errorf("step %s, %s %q: %w", s.Key, f, ext, err)
			}
			s.Extensions[f] = norm
		}
		m.steps = append(m.steps, s)
	}
	return m, nil
}

// StepCount returns the number of steps.
func (m *Model) StepCount() int { return len(m.steps) }

// Step returns a copy of step i.
func (m *Model) Step(i int) (Step, error) {
	s, err := m.step(i)
	if err != nil {
		return Step{}, err
	}
	return s.clone(), nil
}

// Steps returns a copy of every step in order.
func (m *Model) Steps() []Step {
	out := make([]Step, len(m.steps))
	for i, s := range m.steps {
		out[i] = s.clone()
	}
	return out
}

// EnabledSteps returns copies of the active steps in order.
func (m *Model) EnabledSteps() []Step {
	var out []Step
	for _, s := range m.steps {
		if s.Enabled {
			out = append(out, s.clone())
		}
	}
	return out
}

// Enable sets the activation flag of step i.
func (m *Model) Enable(i int, on bool) error {
	s, err := m.step(i)
	if err != nil {
		return err
	}
	s.Enabled = on
	return nil
}

// SetLang sets the language of step i. An empty value or the configured
// LangNone clears it. Returns ErrInvalidLang for a language the step does
// not list.
func (m *Model) SetLang(i int, lang string) error {
	s, err := m.step(i)
	if err != nil {
		return err
	}
	if lang == "" || lang == m.cfg.LangNone {
		s.Lang = ""
		return nil
	}
	if !s.SupportsLang(lang) {
		return fmt.Errorf("%w: %s does not support %q", types.ErrInvalidLang, s.Key, lang)
	}
	s.Lang = lang
	return nil
}

// SetGlobalLang applies lang to every active step that supports it and
// returns how many steps changed. Mix leaves the per-step choices alone.
func (m *Model) SetGlobalLang(lang string) int {
	if lang == Mix {
		return 0
	}
	n := 0
	for i := range m.steps {
		s := &m.steps[i]
		if !s.Enabled || !s.NeedsLang() {
			continue
		}
		if lang == "" || lang == m.cfg.LangNone {
			if s.Lang != "" {
				s.Lang = ""
				n++
			}
			continue
		}
		if s.SupportsLang(lang) && s.Lang != lang {
			s.Lang = lang
			n++
		}
	}
	return n
}

// SetOption sets option key of step i after checking value against the
// declared type. Returns ErrInvalidOption for an unknown key and
// ErrTypeMismatch for a value that does not parse.
func (m *Model) SetOption(i int, key, value string) error {
	s, err := m.step(i)
	if err != nil {
		return err
	}
	for j := range s.Options {
		o := &s.Options[j]
		if o.ID != key {
			continue
		}
		if _, err := types.Coerce(o.Type, value); err != nil {
			return fmt.Errorf("option %s.%s: %w", s.Key, key, err)
		}
		o.Value = value
		return nil
	}
	return fmt.Errorf("%w: %s.%s", types.ErrInvalidOption, s.Key, key)
}

// ActiveLanguages returns the distinct languages selected across active
// steps, sorted.
func (m *Model) ActiveLanguages() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range m.steps {
		if s.Enabled && s.Lang != "" && !seen[s.Lang] {
			seen[s.Lang] = true
			out = append(out, s.Lang)
		}
	}
	sort.Strings(out)
	return out
}

// LangSummary returns Mix when active steps use several languages, the
// single code when they agree, and "" when none is selected.
func (m *Model) LangSummary() string {
	langs := m.ActiveLanguages()
	switch len(langs) {
	case 0:
		return ""
	case 1:
		return langs[0]
	}
	return Mix
}

// Runnable reports whether the pipeline can run: at least one step is
// active and every active step that needs a language has one.
// Returns ErrNotRunnable otherwise.
func (m *Model) Runnable() error {
	active := 0
	for _, s := range m.steps {
		if !s.Enabled {
			continue
		}
		active++
		if s.NeedsLang() && s.Lang == "" {
			return fmt.Errorf("%w: %s needs a language", types.ErrNotRunnable, s.Key)
		}
	}
	if active == 0 {
		return fmt.Errorf("%w: no step enabled", types.ErrNotRunnable)
	}
	return nil
}

// SetOutputExtension chooses the extension written for family.
// Returns ErrUnknownFamily or ErrUnsupportedExtension.
func (m *Model) SetOutputExtension(family, ext string) error {
	norm, err := m.cfg.NormalizeExtension(family, ext)
	if err != nil {
		return fmt.Errorf("%s %q: %w", family, ext, err)
	}
	m.outputs[family] = norm
	m.log.Debug().Str("family", family).Str("ext", norm).Msg("output extension set")
	return nil
}

// OutputExtension returns the extension written for family: the one set
// by SetOutputExtension, else the default of the first active step that
// gives one, else the first extension of the family.
func (m *Model) OutputExtension(family string) (string, error) {
	exts, ok := m.cfg.Formats[family]
	if !ok || len(exts) == 0 {
		return "", fmt.Errorf("%w: %s", types.ErrUnknownFamily, family)
	}
	if ext, ok := m.outputs[family]; ok {
		return ext, nil
	}
	for _, s := range m.steps {
		if ext, ok := s.Extensions[family]; ok && s.Enabled {
			return ext, nil
		}
	}
	return exts[0], nil
}

// Outputs returns the extension written for every family of the active
// steps.
func (m *Model) Outputs() map[string]string {
	out := make(map[string]string)
	for _, s := range m.steps {
		if !s.Enabled {
			continue
		}
		for _, f := range s.Outputs {
			if _, done := out[f]; done {
				continue
			}
			if ext, err := m.OutputExtension(f); err == nil {
				out[f] = ext
			}
		}
	}
	return out
}

func (m *Model) step(i int) (*Step, error) {
	if i < 0 || i >= len(m.steps) {
		return nil, fmt.Errorf("%w: step %d", types.ErrNotFound, i)
	}
	return &m.steps[i], nil
}
