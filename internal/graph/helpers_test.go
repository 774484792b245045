package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"relgraph/internal/domain"
	"relgraph/internal/schema"
)

type passthroughIdentity struct{}

func (passthroughIdentity) GetOrCreate(ref domain.ResourceIdentifier) (domain.Identifier, error) {
	if !ref.Valid() {
		return domain.Identifier{}, errors.New("invalid reference")
	}
	lid := ref.LID
	if lid == "" {
		lid = ref.Type + "-" + ref.ID
	}
	return domain.Identifier{Type: ref.Type, ID: ref.ID, LID: lid}, nil
}

type recordingCaps struct {
	schema *schema.Registry
	notes  []string
}

func (c *recordingCaps) Schema() SchemaService { return c.schema }
func (c *recordingCaps) Identity() IdentityService { return passthroughIdentity{} }
func (c *recordingCaps) NotifyChange(id domain.Identifier, bucket, key string) {
	c.notes = append(c.notes, bucket+":"+id.String()+"."+key)
}

func (c *recordingCaps) reset() { c.notes = nil }

func rid(typ, id string) domain.Identifier {
	return domain.Identifier{Type: typ, ID: id, LID: typ + "-" + id}
}

var (
	user1 = rid("user", "1")
	user2 = rid("user", "2")
	user3 = rid("user", "3")
	post1 = rid("post", "1")
	post2 = rid("post", "2")
	c1    = rid("comment", "1")
	c2    = rid("comment", "2")
	c3    = rid("comment", "3")
	tag1  = rid("tag", "1")
)

func rel(name string, kind domain.RelationshipKind, related string, inverse domain.Inverse) domain.Relationship {
	return domain.Relationship{Name: name, Kind: kind, RelatedType: related, Inverse: inverse}
}

// blogSchema covers a reflexive to-one, undeclared self-referential
// collections, a one-to-many pair and a one-directional collection
func blogSchema(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	require.NoError(t, reg.Define("user",
		rel("bestFriend", domain.KindResource, "user", domain.NamedInverse("bestFriend")),
		rel("following", domain.KindCollection, "user", domain.Inverse{}),
		rel("blockedBy", domain.KindCollection, "user", domain.Inverse{}),
		rel("posts", domain.KindCollection, "post", domain.NamedInverse("author")),
	))
	require.NoError(t, reg.Define("post",
		rel("author", domain.KindResource, "user", domain.NamedInverse("posts")),
		rel("comments", domain.KindCollection, "comment", domain.NamedInverse("post")),
		rel("tags", domain.KindCollection, "tag", domain.NoInverse()),
	))
	require.NoError(t, reg.Define("comment",
		rel("post", domain.KindResource, "post", domain.NamedInverse("comments")),
	))
	require.NoError(t, reg.Define("tag"))
	return reg
}

// polymorphicSchema has comment.commentable pointing at the abstract
// "commentable", satisfied by post and video but not by tag
func polymorphicSchema(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	commentable := domain.Relationship{
		Name: "commentable", Kind: domain.KindResource, RelatedType: "commentable",
		Polymorphic: true, Inverse: domain.NamedInverse("comments"),
	}
	comments := func(as string) domain.Relationship {
		r := rel("comments", domain.KindCollection, "comment", domain.NamedInverse("commentable"))
		r.As = as
		return r
	}
	require.NoError(t, reg.Define("comment", commentable))
	require.NoError(t, reg.Define("post", comments("commentable")))
	require.NoError(t, reg.Define("video", comments("commentable")))
	require.NoError(t, reg.Define("tag", comments("")))
	return reg
}

func newTestGraph(t *testing.T, reg *schema.Registry) (*Graph, *recordingCaps) {
	t.Helper()
	caps := &recordingCaps{schema: reg}
	return New(caps, Options{Debug: true}), caps
}

func members(t *testing.T, g *Graph, id domain.Identifier, field string) []domain.Identifier {
	t.Helper()
	data, err := g.GetData(id, field)
	require.NoError(t, err)
	return data.Data.List()
}

func value(t *testing.T, g *Graph, id domain.Identifier, field string) domain.Data {
	t.Helper()
	data, err := g.GetData(id, field)
	require.NoError(t, err)
	return data.Data
}

func ids(list ...domain.Identifier) []domain.Identifier { return list }
