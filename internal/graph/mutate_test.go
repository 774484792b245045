package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relgraph/internal/domain"
)

func TestGraph_ReplaceAppliesMinimalDiff(t *testing.T) {
	t.Parallel()
	g, caps := newTestGraph(t, blogSchema(t))
	require.NoError(t, g.Push(post1, "comments", domain.Payload{Data: domain.Many(c1, c2)}))
	caps.reset()

	require.NoError(t, g.Replace(post1, "comments", c2, c3))

	assert.Equal(t, ids(c2, c3), members(t, g, post1, "comments"))
	e, _ := g.Get(post1, "comments")
	coll := e.(*CollectionEdge)
	assert.Equal(t, ids(c1), coll.Removals())
	assert.Equal(t, ids(c3), coll.Additions())

	assert.True(t, value(t, g, c1, "post").IsNull())
	got, _ := value(t, g, c3, "post").Single()
	assert.Equal(t, post1, got)

	assert.ElementsMatch(t, []string{
		"relationships:post:1.comments",
		"relationships:comment:1.post",
		"relationships:comment:3.post",
	}, caps.notes, "the retained member is left alone")
}

func TestGraph_ReplaceClearsToOne(t *testing.T) {
	t.Parallel()
	g, _ := newTestGraph(t, blogSchema(t))
	require.NoError(t, g.Push(post1, "author", domain.Payload{Data: domain.One(user1)}))

	require.NoError(t, g.Replace(post1, "author"))

	assert.True(t, value(t, g, post1, "author").IsNull())
	assert.Empty(t, members(t, g, user1, "posts"))

	t.Run("clearing an unloaded edge records null", func(t *testing.T) {
		require.NoError(t, g.Replace(post2, "author"))
		data := value(t, g, post2, "author")
		assert.False(t, data.IsPresent(), "null local state of a never loaded edge is not data")

		e, _ := g.Get(post2, "author")
		local, set := e.(*ResourceEdge).LocalState()
		assert.True(t, set)
		assert.Nil(t, local)
	})
}

func TestGraph_RollbackCollection(t *testing.T) {
	t.Parallel()
	g, _ := newTestGraph(t, blogSchema(t))
	require.NoError(t, g.Push(post1, "comments", domain.Payload{Data: domain.Many(c1, c2)}))
	require.NoError(t, g.Add(post1, "comments", c3))
	require.NoError(t, g.Remove(post1, "comments", c1))

	require.NoError(t, g.Rollback(post1))

	assert.Equal(t, ids(c1, c2), members(t, g, post1, "comments"))
	e, _ := g.Get(post1, "comments")
	assert.False(t, e.(*CollectionEdge).HasLocalChanges())

	got, _ := value(t, g, c1, "post").Single()
	assert.Equal(t, post1, got)
	_, ok := value(t, g, c3, "post").Single()
	assert.False(t, ok)
}

func TestGraph_RollbackToOne(t *testing.T) {
	t.Parallel()
	g, _ := newTestGraph(t, blogSchema(t))
	require.NoError(t, g.Push(post1, "author", domain.Payload{Data: domain.One(user1)}))
	require.NoError(t, g.Replace(post1, "author", user2))

	assert.Empty(t, members(t, g, user1, "posts"))
	assert.Equal(t, ids(post1), members(t, g, user2, "posts"))

	require.NoError(t, g.Rollback(post1))

	got, _ := value(t, g, post1, "author").Single()
	assert.Equal(t, user1, got)
	assert.Equal(t, ids(post1), members(t, g, user1, "posts"))
	assert.Empty(t, members(t, g, user2, "posts"))

	e, _ := g.Get(post1, "author")
	_, set := e.(*ResourceEdge).LocalState()
	assert.False(t, set)
}

func TestGraph_CommitCollection(t *testing.T) {
	t.Parallel()
	g, _ := newTestGraph(t, blogSchema(t))
	require.NoError(t, g.Push(post1, "comments", domain.Payload{Data: domain.Many(c1)}))
	require.NoError(t, g.Add(post1, "comments", c2))

	require.NoError(t, g.Commit(post1))

	e, _ := g.Get(post1, "comments")
	coll := e.(*CollectionEdge)
	assert.Equal(t, ids(c1, c2), coll.RemoteState())
	assert.False(t, coll.HasLocalChanges())

	inv, _ := g.Get(c2, "post")
	re := inv.(*ResourceEdge)
	remote, ok := re.RemoteState()
	require.True(t, ok)
	assert.Equal(t, post1, *remote)
	_, set := re.LocalState()
	assert.False(t, set, "the committed value satisfies the local one")
	assert.True(t, re.HasReceivedData())
}

func TestGraph_CommitClearedToOne(t *testing.T) {
	t.Parallel()
	g, _ := newTestGraph(t, blogSchema(t))
	require.NoError(t, g.Push(post1, "author", domain.Payload{Data: domain.One(user1)}))
	require.NoError(t, g.Replace(post1, "author"))

	require.NoError(t, g.Commit(post1))

	e, _ := g.Get(post1, "author")
	remote, ok := e.(*ResourceEdge).RemoteState()
	assert.True(t, ok)
	assert.Nil(t, remote)

	inv, _ := g.Get(user1, "posts")
	coll := inv.(*CollectionEdge)
	assert.Empty(t, coll.RemoteState())
	assert.False(t, coll.HasLocalChanges())
}

func TestGraph_CommitNewCollection(t *testing.T) {
	t.Parallel()
	g, _ := newTestGraph(t, blogSchema(t))
	require.NoError(t, g.Replace(post1, "tags"))

	require.NoError(t, g.Commit(post1))

	e, _ := g.Get(post1, "tags")
	assert.True(t, e.HasReceivedData())
	data := value(t, g, post1, "tags")
	assert.True(t, data.IsPresent())
	assert.Empty(t, data.List())
}

func TestGraph_DeleteRecord(t *testing.T) {
	t.Parallel()

	t.Run("persisted record is removed locally", func(t *testing.T) {
		g, _ := newTestGraph(t, blogSchema(t))
		require.NoError(t, g.Push(post1, "comments", domain.Payload{Data: domain.Many(c1, c2)}))

		require.NoError(t, g.DeleteRecord(c1, false))
		assert.Equal(t, ids(c2), members(t, g, post1, "comments"))
		e, _ := g.Get(post1, "comments")
		assert.Equal(t, ids(c1), e.(*CollectionEdge).Removals())

		require.NoError(t, g.Rollback(c1))
		assert.Equal(t, ids(c1, c2), members(t, g, post1, "comments"))
	})

	t.Run("new record is unloaded", func(t *testing.T) {
		g, _ := newTestGraph(t, blogSchema(t))
		require.NoError(t, g.Add(post1, "comments", c3))
		require.True(t, g.Has(c3, "post"))

		require.NoError(t, g.DeleteRecord(c3, true))
		assert.False(t, g.Has(c3, "post"))
		assert.Empty(t, members(t, g, post1, "comments"))
	})
}

// assertConsistent checks that every explicit edge agrees with its inverse and
// that no collection holds an identifier as both addition and removal
func assertConsistent(t *testing.T, g *Graph) {
	t.Helper()
	for _, id := range g.Identifiers() {
		for _, e := range g.edgesOf(id) {
			def := e.Definition()
			if coll, ok := e.(*CollectionEdge); ok {
				for _, added := range coll.Additions() {
					assert.NotContains(t, coll.Removals(), added, "%s.%s", id, def.Key)
				}
			}
			if def.IsImplicit() || !def.HasInverse || def.InverseIsImplicit {
				continue
			}
			for _, m := range e.members(localLayer) {
				other := g.peek(m, def.InverseKey)
				if assert.NotNil(t, other, "%s.%s has no reciprocal edge", m, def.InverseKey) {
					assert.True(t, other.contains(localLayer, id),
						"%s.%s holds %s but %s.%s does not hold %s", id, def.Key, m, m, def.InverseKey, id)
				}
			}
		}
	}
}

func TestGraph_BidirectionalConsistency(t *testing.T) {
	t.Parallel()
	g, _ := newTestGraph(t, blogSchema(t))

	steps := []struct {
		name string
		run  func() error
	}{
		{"push", func() error { return g.Push(post1, "comments", domain.Payload{Data: domain.Many(c1, c2)}) }},
		{"add", func() error { return g.Add(post1, "comments", c3) }},
		{"remove", func() error { return g.Remove(post1, "comments", c1) }},
		{"move to-one", func() error { return g.Replace(c2, "post", post2) }},
		{"push partial", func() error { return g.Push(post1, "comments", domain.Payload{Data: domain.Many(c2, c3)}) }},
		{"rollback", func() error { return g.Rollback(c2) }},
		{"batch", func() error {
			return g.Batch(func() error {
				if err := g.Replace(post2, "comments", c1, c2); err != nil {
					return err
				}
				return g.Remove(post2, "comments", c1)
			})
		}},
	}
	for _, step := range steps {
		require.NoError(t, step.run(), step.name)
		assertConsistent(t, g)
	}

	assert.Equal(t, ids(c3), members(t, g, post1, "comments"))
	assert.Equal(t, ids(c2), members(t, g, post2, "comments"))
}
