package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relgraph/internal/domain"
)

func TestRegistry_Define(t *testing.T) {
	t.Parallel()

	t.Run("defines and copies fields", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Define("post", domain.Relationship{
			Name: "comments", Kind: domain.KindCollection, RelatedType: "comment",
			Inverse: domain.NamedInverse("post"),
		}))

		rels, ok := r.Relationships("post")
		require.True(t, ok)
		assert.Equal(t, "comment", rels["comments"].RelatedType)

		delete(rels, "comments")
		again, _ := r.Relationships("post")
		assert.Len(t, again, 1)
	})

	t.Run("unknown type", func(t *testing.T) {
		r := NewRegistry()
		_, ok := r.Relationships("ghost")
		assert.False(t, ok)
		assert.False(t, r.HasType("ghost"))
	})

	tests := []struct {
		name string
		typ  string
		rels []domain.Relationship
	}{
		{"empty type", "", nil},
		{"empty field", "post", []domain.Relationship{{Kind: domain.KindResource, RelatedType: "user"}}},
		{"bad kind", "post", []domain.Relationship{{Name: "author", Kind: "many", RelatedType: "user"}}},
		{"duplicate", "post", []domain.Relationship{
			{Name: "author", Kind: domain.KindResource, RelatedType: "user"},
			{Name: "author", Kind: domain.KindResource, RelatedType: "user"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, NewRegistry().Define(tt.typ, tt.rels...))
		})
	}
}

func TestRegistry_Types(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Define("user"))
	require.NoError(t, r.Define("comment"))
	require.NoError(t, r.Define("post"))
	assert.Equal(t, []string{"comment", "post", "user"}, r.Types())
	assert.True(t, r.HasType("user"))
}

func TestNormalizeType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "user", NormalizeType("user"))
	assert.Equal(t, "blog-post", NormalizeType("BlogPost"))
	assert.Equal(t, "blog-post", NormalizeType("blog_post"))
	assert.Equal(t, "comment", InferRelatedType("comments"))
}
