package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()

	noLang := DefaultConfig()
	noLang.LangNone = ""

	noRefTypes := DefaultConfig()
	noRefTypes.RefTypes = nil

	noFormats := DefaultConfig()
	noFormats.Formats = nil

	emptyFamily := DefaultConfig()
	emptyFamily.Formats = map[string][]string{"image": {}}

	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{name: "default config is valid", config: valid},
		{name: "empty lang sentinel", config: noLang, wantErr: ErrLangNoneEmpty},
		{name: "no reference types", config: noRefTypes, wantErr: ErrRefTypesEmpty},
		{name: "no format families", config: noFormats, wantErr: ErrFormatsEmpty},
		{name: "family without extension", config: emptyFamily, wantErr: ErrFamilyNoFormats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigRefTypes(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.HasRefType("speaker"))
	assert.False(t, cfg.HasRefType("CORPUS"))

	got, err := cfg.NormalizeRefType("interaction")
	require.NoError(t, err)
	assert.Equal(t, RefTypeInteraction, got)

	_, err = cfg.NormalizeRefType("nope")
	assert.ErrorIs(t, err, ErrInvalidRefType)
}

func TestConfigExtensions(t *testing.T) {
	cfg := DefaultConfig()

	got, err := cfg.NormalizeExtension(FamilyTranscription, "textgrid")
	require.NoError(t, err)
	assert.Equal(t, ".TextGrid", got)

	got, err = cfg.NormalizeExtension(FamilyImage, ".PNG")
	require.NoError(t, err)
	assert.Equal(t, ".png", got)

	_, err = cfg.NormalizeExtension(FamilyImage, ".wav")
	assert.ErrorIs(t, err, ErrUnsupportedExtension)

	_, err = cfg.NormalizeExtension("video", ".mp4")
	assert.ErrorIs(t, err, ErrUnknownFamily)

	assert.Equal(t, []string{FamilyAudio, FamilyImage, FamilyTranscription}, cfg.Families())

	exts, err := cfg.Extensions(FamilyAudio)
	require.NoError(t, err)
	exts[0] = ".mutated"
	again, _ := cfg.Extensions(FamilyAudio)
	assert.Equal(t, []string{".wav"}, again, "Extensions must return a copy")
}
