package types

import (
	"errors"
	"sort"
	"strings"
)

// Reference type tags accepted by the default configuration.
const (
	RefTypeStandalone  = "STANDALONE"
	RefTypeSpeaker     = "SPEAKER"
	RefTypeInteraction = "INTERACTION"
)

// Output format families of the default configuration.
const (
	FamilyTranscription = "transcription"
	FamilyImage         = "image"
	FamilyAudio         = "audio"
)

// DefaultLangNone is the language sentinel meaning "no language selected".
const DefaultLangNone = "und"

// Config enumerates every tunable of a workbench session. It is passed to
// constructors; there is no process-wide configuration.
type Config struct {
	TrashDir      string              `json:"trash_dir" yaml:"trash_dir" mapstructure:"trash_dir"`
	LogsDir       string              `json:"logs_dir" yaml:"logs_dir" mapstructure:"logs_dir"`
	WorkspacesDir string              `json:"workspaces_dir" yaml:"workspaces_dir" mapstructure:"workspaces_dir"`
	LangNone      string              `json:"lang_none" yaml:"lang_none" mapstructure:"lang_none"`
	RefTypes      []string            `json:"ref_types" yaml:"ref_types" mapstructure:"ref_types"`
	Formats       map[string][]string `json:"formats" yaml:"formats" mapstructure:"formats"`
	RootSuffixes  []string            `json:"root_suffixes" yaml:"root_suffixes" mapstructure:"root_suffixes"`
}

// Config validation errors.
var (
	ErrLangNoneEmpty   = errors.New("lang_none must not be empty")
	ErrRefTypesEmpty   = errors.New("at least one reference type is required")
	ErrFormatsEmpty    = errors.New("at least one output format family is required")
	ErrFamilyNoFormats = errors.New("output format family has no extension")
)

// DefaultConfig returns the configuration used when nothing overrides it.
// Directory fields are left empty; callers resolve them (see internal/paths).
func DefaultConfig() Config {
	return Config{
		LangNone: DefaultLangNone,
		RefTypes: []string{RefTypeStandalone, RefTypeSpeaker, RefTypeInteraction},
		Formats: map[string][]string{
			FamilyTranscription: {".xra", ".TextGrid", ".eaf", ".antx", ".csv", ".txt"},
			FamilyImage:         {".png", ".jpg"},
			FamilyAudio:         {".wav"},
		},
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.LangNone == "" {
		return ErrLangNoneEmpty
	}
	if len(c.RefTypes) == 0 {
		return ErrRefTypesEmpty
	}
	if len(c.Formats) == 0 {
		return ErrFormatsEmpty
	}
	for _, exts := range c.Formats {
		if len(exts) == 0 {
			return ErrFamilyNoFormats
		}
	}
	return nil
}

// HasRefType reports whether tag is one of the configured reference types.
// Comparison is case-insensitive.
func (c Config) HasRefType(tag string) bool {
	for _, t := range c.RefTypes {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// NormalizeRefType returns the configured spelling of tag.
// Returns ErrInvalidRefType if tag is not configured.
func (c Config) NormalizeRefType(tag string) (string, error) {
	for _, t := range c.RefTypes {
		if strings.EqualFold(t, tag) {
			return t, nil
		}
	}
	return "", ErrInvalidRefType
}

// Families returns the configured output format families, sorted.
func (c Config) Families() []string {
	out := make([]string, 0, len(c.Formats))
	for f := range c.Formats {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Extensions returns the extensions accepted by family.
// Returns ErrUnknownFamily if the family is not configured.
func (c Config) Extensions(family string) ([]string, error) {
	exts, ok := c.Formats[family]
	if !ok {
		return nil, ErrUnknownFamily
	}
	out := make([]string, len(exts))
	copy(out, exts)
	return out, nil
}

// NormalizeExtension returns the configured spelling of ext within family.
// The leading dot is optional and comparison is case-insensitive.
func (c Config) NormalizeExtension(family, ext string) (string, error) {
	exts, ok := c.Formats[family]
	if !ok {
		return "", ErrUnknownFamily
	}
	want := strings.TrimPrefix(ext, ".")
	for _, e := range exts {
		if strings.EqualFold(strings.TrimPrefix(e, "."), want) {
			return e, nil
		}
	}
	return "", ErrUnsupportedExtension
}
