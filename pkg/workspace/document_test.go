package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

func sampleWorkspace(t *testing.T) *Workspace {
	t.Helper()
	w := populated(t, "/a/b/f_A.wav", "/a/b/f_A.xra", "/a/b/f_B.wav")
	w.SetID("corpus")
	r1 := addRef(t, w, "R1", types.RefTypeSpeaker)
	addRef(t, w, "R2", types.RefTypeSpeaker)
	_, err := r1.SetAttribute("year", "2003", types.ValueTypeInt, "recording year")
	require.NoError(t, err)
	_, _ = w.SetObjectState(types.StateChecked, "R1")
	_, _ = w.SetObjectState(types.StateChecked, "R2")
	_, _ = w.SetObjectState(types.StateChecked, "/a/b/f_A")
	require.Equal(t, 2, w.Associate())
	_, _ = w.SetObjectState(types.StateLocked, "/a/b/f_A.wav")
	_, _ = w.SetObjectState(types.StateMissing, "/a/b/f_B.wav")
	return w
}

func TestDocumentCollapsesSelection(t *testing.T) {
	doc := sampleWorkspace(t).Document().Workspace

	assert.Equal(t, "corpus", doc.ID)
	assert.Equal(t, DocumentVersion, doc.Version)
	require.Len(t, doc.Paths, 1)
	roots := doc.Paths[0].Roots
	require.Len(t, roots, 2)
	for _, f := range roots[0].Files {
		assert.Equal(t, "unused", f.State, f.ID)
	}
	assert.Equal(t, "missing", roots[1].Files[0].State)
	assert.Equal(t, "missing", roots[1].State)
	assert.Equal(t, "unused", doc.Paths[0].State)
	assert.Equal(t, [][2]string{{"/a/b/f_A", "R1"}, {"/a/b/f_A", "R2"}}, doc.Associations)
	assert.Equal(t, "unused", doc.References[0].State)
	assert.Equal(t, AttributeDoc{ID: "year", Value: "2003", Type: "int", Description: "recording year"},
		doc.References[0].Attributes[0])
}

func TestFromDocumentRoundTrip(t *testing.T) {
	w := sampleWorkspace(t)
	doc := w.Document()

	loaded, err := FromDocument(doc, types.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, doc, loaded.Document())
	assert.Equal(t, "corpus", loaded.ID())
	assert.False(t, loaded.HasLockedFiles())
	assert.Equal(t, w.Edges(), loaded.Edges())
	assert.Equal(t, types.StateUnused, loaded.GetObject("/a/b/f_A.wav").State())
}

func TestFromDocumentValidation(t *testing.T) {
	base := func() Document { return sampleWorkspace(t).Document() }

	tests := []struct {
		name   string
		mutate func(d *Document)
	}{
		{"relative folder", func(d *Document) { d.Workspace.Paths[0].ID = "a/b" }},
		{"root outside folder", func(d *Document) { d.Workspace.Paths[0].Roots[0].ID = "/x/f_A" }},
		{"file outside root", func(d *Document) {
			d.Workspace.Paths[0].Roots[0].Files[0].ID = "/a/b/f_B.wav"
		}},
		{"duplicate root", func(d *Document) {
			d.Workspace.Paths[0].Roots[1] = d.Workspace.Paths[0].Roots[0]
		}},
		{"empty root", func(d *Document) { d.Workspace.Paths[0].Roots[1].Files = nil }},
		{"duplicate reference", func(d *Document) {
			d.Workspace.References[1].ID = "R1"
		}},
		{"duplicate attribute", func(d *Document) {
			r := &d.Workspace.References[0]
			r.Attributes = append(r.Attributes, r.Attributes[0])
		}},
		{"dangling root edge", func(d *Document) {
			d.Workspace.Associations = append(d.Workspace.Associations, [2]string{"/a/b/zz", "R1"})
		}},
		{"dangling reference edge", func(d *Document) {
			d.Workspace.Associations = append(d.Workspace.Associations, [2]string{"/a/b/f_A", "R9"})
		}},
		{"unknown reference type", func(d *Document) { d.Workspace.References[0].Type = "CORPUS" }},
		{"bad state", func(d *Document) { d.Workspace.Paths[0].Roots[0].Files[0].State = "selected" }},
		{"bad attribute value", func(d *Document) { d.Workspace.References[0].Attributes[0].Value = "twenty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base()
			tt.mutate(&d)
			w, err := FromDocument(d, types.DefaultConfig())
			assert.ErrorIs(t, err, types.ErrInvalidDocument)
			assert.Nil(t, w)
		})
	}
}
