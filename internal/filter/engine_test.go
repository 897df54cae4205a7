package filter

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/workbench/pkg/types"
	"github.com/mesh-intelligence/workbench/pkg/workspace"
)

// fixture builds a workspace with two roots in /data, one image in
// /other, and two speaker references. R1 is linked to /data/f_A.
func fixture(t *testing.T) *workspace.Workspace {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := []string{"/data/f_A.wav", "/data/f_A.TextGrid", "/data/f_B.wav", "/other/g.png"}
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte("x"), 0o644))
	}
	ws := workspace.New(types.DefaultConfig(), workspace.WithFs(fs))
	for _, f := range files {
		_, err := ws.AddFile(f)
		require.NoError(t, err)
	}

	for _, spec := range []struct{ id, year, native string }{
		{"R1", "2010", "true"},
		{"R2", "1990", "0"},
	} {
		ref, err := workspace.NewReference(spec.id, types.RefTypeSpeaker)
		require.NoError(t, err)
		_, err = ref.SetAttribute("year", spec.year, types.ValueTypeInt, "")
		require.NoError(t, err)
		_, err = ref.SetAttribute("native", spec.native, types.ValueTypeBool, "")
		require.NoError(t, err)
		_, err = ref.SetAttribute("town", "Aix", "", "")
		require.NoError(t, err)
		require.NoError(t, ws.AddRef(ref))
	}

	_, err := ws.SetObjectState(types.StateChecked, "/data/f_A")
	require.NoError(t, err)
	_, err = ws.SetObjectState(types.StateChecked, "R1")
	require.NoError(t, err)
	require.Equal(t, 1, ws.Associate())
	_, err = ws.SetObjectState(types.StateUnused, "")
	require.NoError(t, err)
	return ws
}

func TestParseTriple(t *testing.T) {
	tr, err := ParseTriple("attribute:GT:year:2000")
	require.NoError(t, err)
	assert.Equal(t, Triple{Field: "attribute", Predicate: "gt", Pattern: "year:2000"}, tr)
	assert.Equal(t, "attribute:gt:year:2000", tr.String())

	_, err = ParseTriple("name:exact")
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"all": All, "AND": All, "&": All, "any": Any, "or": Any, "|": Any} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMode("xor")
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestParsePredicate(t *testing.T) {
	tests := []struct {
		name    string
		want    predicate
		wantErr bool
	}{
		{name: "exact", want: predicate{op: opExact}},
		{name: "icontains", want: predicate{op: opContains, fold: true}},
		{name: "not_startswith", want: predicate{op: opStartsWith, negate: true}},
		{name: "not_iendswith", want: predicate{op: opEndsWith, fold: true, negate: true}},
		{name: "le", want: predicate{op: opLE}},
		{name: "not_gt", want: predicate{op: opGT, negate: true}},
		{name: "regexp", want: predicate{op: opRegexp}},
		{name: "iregexp", wantErr: true},
		{name: "not_regexp", wantErr: true},
		{name: "igt", wantErr: true},
		{name: "like", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePredicate(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalidFilter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngineFiles(t *testing.T) {
	ws := fixture(t)
	e := New()

	tests := []struct {
		name    string
		triples []Triple
		mode    Mode
		want    []string
	}{
		{
			name:    "exact name selects the whole root",
			triples: []Triple{{FieldName, "exact", "f_A"}},
			want:    []string{"/data/f_A.TextGrid", "/data/f_A.wav"},
		},
		{
			name:    "case insensitive name",
			triples: []Triple{{FieldName, "iexact", "F_b"}},
			want:    []string{"/data/f_B.wav"},
		},
		{
			name:    "extension with and without dot",
			triples: []Triple{{FieldExtension, "exact", "wav,.png"}},
			want:    []string{"/data/f_A.wav", "/data/f_B.wav", "/other/g.png"},
		},
		{
			name:    "path intersection with extension",
			triples: []Triple{{FieldPath, "exact", "/data"}, {FieldExtension, "exact", "wav"}},
			want:    []string{"/data/f_A.wav", "/data/f_B.wav"},
		},
		{
			name:    "union of two names",
			triples: []Triple{{FieldName, "exact", "f_B"}, {FieldName, "startswith", "g"}},
			mode:    Any,
			want:    []string{"/data/f_B.wav", "/other/g.png"},
		},
		{
			name:    "negated contains",
			triples: []Triple{{FieldName, "not_contains", "f_"}},
			want:    []string{"/other/g.png"},
		},
		{
			name:    "files through associated reference",
			triples: []Triple{{FieldReference, "exact", "R1"}},
			want:    []string{"/data/f_A.TextGrid", "/data/f_A.wav"},
		},
		{
			name:    "files through attribute",
			triples: []Triple{{FieldAttribute, "gt", "year:2000"}},
			want:    []string{"/data/f_A.TextGrid", "/data/f_A.wav"},
		},
		{
			name:    "regexp is not split on commas",
			triples: []Triple{{FieldName, "regexp", "^f_[AB]{1,2}$"}},
			want:    []string{"/data/f_A.TextGrid", "/data/f_A.wav", "/data/f_B.wav"},
		},
		{
			name:    "empty intersection",
			triples: []Triple{{FieldName, "exact", "f_A"}, {FieldName, "exact", "f_B"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Files(ws, tt.triples, tt.mode)
			require.NoError(t, err)
			assert.Empty(t, got.Skipped)
			assert.Equal(t, tt.want, got.IDs)
		})
	}
}

func TestEngineRefs(t *testing.T) {
	ws := fixture(t)
	e := New()

	tests := []struct {
		name    string
		triples []Triple
		mode    Mode
		want    []string
	}{
		{
			name:    "numeric greater than",
			triples: []Triple{{FieldAttribute, "gt", "year:2000"}},
			want:    []string{"R1"},
		},
		{
			name:    "negated numeric",
			triples: []Triple{{FieldAttribute, "not_gt", "year:2000"}},
			want:    []string{"R2"},
		},
		{
			name:    "boolean canonical form",
			triples: []Triple{{FieldAttribute, "exact", "native:1"}},
			want:    []string{"R1"},
		},
		{
			name:    "string attribute case insensitive",
			triples: []Triple{{FieldAttribute, "iexact", "town:aix"}},
			want:    []string{"R1", "R2"},
		},
		{
			name:    "numeric on string attribute never matches",
			triples: []Triple{{FieldAttribute, "not_gt", "town:0"}},
		},
		{
			name:    "alternatives are or-ed",
			triples: []Triple{{FieldReference, "exact", "R2,R1"}},
			want:    []string{"R1", "R2"},
		},
		{
			name:    "attribute regexp",
			triples: []Triple{{FieldAttribute, "regexp", "year:^19"}},
			want:    []string{"R2"},
		},
		{
			name:    "any mode",
			triples: []Triple{{FieldReference, "exact", "R1"}, {FieldAttribute, "lt", "year:2000"}},
			mode:    Any,
			want:    []string{"R1", "R2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Refs(ws, tt.triples, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.IDs)
		})
	}
}

func TestEngineSkipsMalformedTriples(t *testing.T) {
	ws := fixture(t)
	e := New()

	got, err := e.Refs(ws, []Triple{
		{FieldAttribute, "gt", "year:2000"},
		{"colour", "exact", "red"},
		{FieldAttribute, "gt", "year:recent"},
		{FieldName, "exact", "f_A"},
		{FieldReference, "like", "R"},
	}, All)
	require.NoError(t, err)
	assert.Equal(t, []string{"R1"}, got.IDs)
	assert.Len(t, got.Skipped, 4)
	for _, s := range got.Skipped {
		assert.ErrorIs(t, s, types.ErrInvalidFilter)
	}
}

func TestEngineInvalidRegexpFailsTheCall(t *testing.T) {
	ws := fixture(t)
	e := New()

	_, err := e.Files(ws, []Triple{{FieldName, "exact", "f_A"}, {FieldName, "regexp", "("}}, All)
	assert.ErrorIs(t, err, types.ErrInvalidPattern)
}

func TestEngineOrderIndependent(t *testing.T) {
	ws := fixture(t)
	e := New()
	a := Triple{FieldPath, "exact", "/data"}
	b := Triple{FieldExtension, "exact", "wav"}

	for _, mode := range []Mode{All, Any} {
		ab, err := e.Files(ws, []Triple{a, b}, mode)
		require.NoError(t, err)
		ba, err := e.Files(ws, []Triple{b, a}, mode)
		require.NoError(t, err)
		assert.Equal(t, ab.IDs, ba.IDs, mode.String())
	}
}

func TestEngineNoTriples(t *testing.T) {
	ws := fixture(t)
	got, err := New().Files(ws, nil, All)
	require.NoError(t, err)
	assert.Empty(t, got.IDs)
}
