package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		valueType string
		raw       string
		want      any
		wantErr   error
	}{
		{ValueTypeStr, " hello ", "hello", nil},
		{ValueTypeInt, "2003", int64(2003), nil},
		{ValueTypeInt, "", int64(0), nil},
		{ValueTypeInt, "20.5", nil, ErrTypeMismatch},
		{ValueTypeFloat, "1.5", 1.5, nil},
		{ValueTypeFloat, "abc", nil, ErrTypeMismatch},
		{ValueTypeBool, "true", true, nil},
		{ValueTypeBool, "0", false, nil},
		{ValueTypeBool, "maybe", nil, ErrTypeMismatch},
		{"date", "2003", nil, ErrInvalidValueType},
	}
	for _, tt := range tests {
		t.Run(tt.valueType+"/"+tt.raw, func(t *testing.T) {
			got, err := Coerce(tt.valueType, tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueTypeSets(t *testing.T) {
	for _, vt := range ValueTypes {
		assert.True(t, IsValidValueType(vt))
	}
	assert.False(t, IsValidValueType("list"))
	assert.True(t, IsNumericValueType(ValueTypeInt))
	assert.True(t, IsNumericValueType(ValueTypeFloat))
	assert.False(t, IsNumericValueType(ValueTypeStr))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindAudio, KindOf(".WAV"))
	assert.Equal(t, KindTranscription, KindOf("TextGrid"))
	assert.Equal(t, KindImage, KindOf(".jpeg"))
	assert.Equal(t, KindVideo, KindOf(".mp4"))
	assert.Equal(t, KindUnknown, KindOf(".bin"))
	assert.Equal(t, KindUnknown, KindOf(""))
}

func TestValidIdentifiers(t *testing.T) {
	assert.True(t, ValidRefID("R1"))
	assert.True(t, ValidRefID("spk_0001"))
	assert.False(t, ValidRefID("R"))
	assert.False(t, ValidRefID("thirteen_char"))
	assert.False(t, ValidRefID("bad-id"))
	assert.True(t, ValidAttributeID("year"))
	assert.False(t, ValidAttributeID("id"))
}
