package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relgraph/internal/domain"
	"relgraph/internal/graph"
	"relgraph/internal/hub"
	"relgraph/internal/schema"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	reg := schema.NewRegistry()
	require.NoError(t, reg.Define("post", domain.Relationship{
		Name: "comments", Kind: domain.KindCollection, RelatedType: "comment", Inverse: domain.NamedInverse("post"),
	}))
	require.NoError(t, reg.Define("comment", domain.Relationship{
		Name: "post", Kind: domain.KindResource, RelatedType: "post", Inverse: domain.NamedInverse("comments"),
	}))
	return New(reg, graph.NewRegistry(graph.Options{Debug: true}))
}

func TestStore_Graph(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	g := s.Graph()
	assert.Same(t, g, s.Graph())

	s.Destroy()
	assert.NotSame(t, g, s.Graph())
}

func TestStore_NotifiesThroughHub(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	var got []hub.Notification
	unsubscribe := s.Hub().Subscribe(func(n hub.Notification) { got = append(got, n) })
	defer unsubscribe()

	post, err := s.Identifier("post", "1")
	require.NoError(t, err)
	comment, err := s.Identifier("comment", "1")
	require.NoError(t, err)

	require.NoError(t, s.Graph().Push(post, "comments", domain.Payload{Data: domain.Many(comment)}))

	require.Len(t, got, 2)
	assert.Equal(t, hub.Notification{Identifier: post, Bucket: graph.BucketRelationships, Key: "comments"}, got[0])
	assert.Equal(t, hub.Notification{Identifier: comment, Bucket: graph.BucketRelationships, Key: "post"}, got[1])
}

func TestStore_PushCanonicalizesReferences(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	post, err := s.Identifier("post", "1")
	require.NoError(t, err)
	raw := domain.Identifier{Type: "comment", ID: "7"}

	require.NoError(t, s.Graph().Push(post, "comments", domain.Payload{Data: domain.Many(raw)}))

	comment, err := s.Identifier("comment", "7")
	require.NoError(t, err)
	assert.NotEmpty(t, comment.LID)

	data, err := s.Graph().GetData(post, "comments")
	require.NoError(t, err)
	assert.Equal(t, []domain.Identifier{comment}, data.Data.List())
}

func TestStore_CreateRecord(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	id, err := s.CreateRecord("comment")
	require.NoError(t, err)
	assert.Empty(t, id.ID)
	assert.True(t, strings.HasPrefix(id.LID, "@lid:comment-"))

	again, err := s.Identity().GetOrCreate(id.Ref())
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestStore_UnloadRecord(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	post, _ := s.Identifier("post", "1")
	comment, _ := s.Identifier("comment", "1")
	g := s.Graph()
	require.NoError(t, g.Push(post, "comments", domain.Payload{Data: domain.Many(comment)}))

	s.UnloadRecord(comment)

	assert.False(t, g.Has(comment, "post"))
	data, err := g.GetData(post, "comments")
	require.NoError(t, err)
	assert.Empty(t, data.Data.List())

	again, err := s.Identifier("comment", "1")
	require.NoError(t, err)
	assert.NotEqual(t, comment.LID, again.LID, "a forgotten identity is allocated afresh")
}

func TestStore_ServerIDForCreatedRecord(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	post, err := s.Identifier("post", "1")
	require.NoError(t, err)
	comment, err := s.CreateRecord("comment")
	require.NoError(t, err)
	require.NoError(t, s.Graph().Add(post, "comments", comment))

	// the save response carries the server id alongside the lid
	saved := domain.Identifier{Type: "comment", ID: "9", LID: comment.LID}
	require.NoError(t, s.Graph().Push(post, "comments", domain.Payload{Data: domain.Many(saved)}))

	data, err := s.Graph().GetData(post, "comments")
	require.NoError(t, err)
	assert.Equal(t, []domain.Identifier{comment}, data.Data.List())

	byServerID, err := s.Identifier("comment", "9")
	require.NoError(t, err)
	assert.Equal(t, comment, byServerID)

	// a later reference by server id alone lands on the same member
	require.NoError(t, s.Graph().Push(post, "comments", domain.Payload{
		Data: domain.Many(domain.Identifier{Type: "comment", ID: "9"}),
	}))
	data, err = s.Graph().GetData(post, "comments")
	require.NoError(t, err)
	assert.Equal(t, []domain.Identifier{comment}, data.Data.List())

	seen := make(map[domain.Identifier]int)
	for _, id := range s.Graph().Identifiers() {
		seen[id]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "%s listed twice", id)
	}
	assert.Equal(t, 1, seen[comment])
}
