package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinks(t *testing.T) {
	l := NewLinks()

	assert.True(t, l.Add("r1", "A"))
	assert.False(t, l.Add("r1", "A"), "edges are unique")
	assert.True(t, l.Add("r1", "B"))
	assert.True(t, l.Add("r2", "A"))
	assert.Equal(t, 3, l.Len())

	assert.Equal(t, []string{"A", "B"}, l.RefsOf("r1"))
	assert.Equal(t, []string{"r1", "r2"}, l.RootsOf("A"))
	assert.Equal(t, []Edge{{"r1", "A"}, {"r1", "B"}, {"r2", "A"}}, l.Edges())

	assert.True(t, l.Remove("r1", "B"))
	assert.False(t, l.Remove("r1", "B"))
	assert.Equal(t, 2, l.Len())

	assert.Equal(t, 2, l.DropRef("A"))
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Edges())
	assert.Empty(t, l.RootsOf("A"))
}

func TestLinksDropRoot(t *testing.T) {
	l := NewLinks()
	l.Add("r1", "A")
	l.Add("r1", "B")
	l.Add("r2", "B")

	assert.Equal(t, 2, l.DropRoot("r1"))
	assert.Equal(t, []Edge{{"r2", "B"}}, l.Edges())
	assert.False(t, l.Has("r1", "A"))
	assert.True(t, l.Has("r2", "B"))
}
