package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relgraph/internal/domain"
)

func TestRegistry(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(Options{Debug: true})
	a := &recordingCaps{schema: blogSchema(t)}
	b := &recordingCaps{schema: blogSchema(t)}

	_, ok := reg.Peek(a)
	assert.False(t, ok)

	ga := reg.For(a)
	assert.Same(t, ga, reg.For(a))
	assert.NotSame(t, ga, reg.For(b))
	assert.Equal(t, 2, reg.Len())

	require.NoError(t, ga.Push(post1, "comments", domain.Payload{Data: domain.Many(c1)}))
	e, err := ga.Get(post1, "comments")
	require.NoError(t, err)

	assert.True(t, reg.Destroy(a))
	assert.False(t, reg.Destroy(a))
	assert.Equal(t, 1, reg.Len())
	assert.True(t, e.base().destroyed)
	assert.Empty(t, ga.Identifiers())

	assert.NotSame(t, ga, reg.For(a), "a destroyed graph is never handed out again")
}
