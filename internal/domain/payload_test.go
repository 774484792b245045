package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayload_UnmarshalJSON(t *testing.T) {
	t.Parallel()
	post := Identifier{Type: "post", ID: "1"}

	tests := []struct {
		name  string
		input string
		check func(t *testing.T, p Payload)
	}{
		{"absent data", `{"links": {"related": "/x"}}`, func(t *testing.T, p Payload) {
			assert.False(t, p.Data.IsPresent())
			assert.Equal(t, "/x", p.Links.Related())
		}},
		{"null data", `{"data": null}`, func(t *testing.T, p Payload) {
			assert.True(t, p.Data.IsPresent())
			assert.True(t, p.Data.IsNull())
			assert.Empty(t, p.Data.List())
		}},
		{"single", `{"data": {"type": "post", "id": "1"}}`, func(t *testing.T, p Payload) {
			got, ok := p.Data.Single()
			require.True(t, ok)
			assert.Equal(t, post, got)
			assert.False(t, p.Data.IsMany())
		}},
		{"empty list", `{"data": []}`, func(t *testing.T, p Payload) {
			assert.True(t, p.Data.IsMany())
			assert.False(t, p.Data.IsNull())
			assert.Empty(t, p.Data.List())
		}},
		{"list with meta", `{"data": [{"type": "post", "id": "1"}], "meta": {"total": 1}}`, func(t *testing.T, p Payload) {
			assert.Equal(t, []Identifier{post}, p.Data.List())
			assert.Equal(t, float64(1), p.Meta["total"])
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Payload
			require.NoError(t, json.Unmarshal([]byte(tt.input), &p))
			tt.check(t, p)
		})
	}
}

func TestPayload_UnmarshalJSONRejectsScalars(t *testing.T) {
	t.Parallel()
	var p Payload
	assert.Error(t, json.Unmarshal([]byte(`{"data": "post:1"}`), &p))
}

func TestLinks(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/posts/1/comments", Links{"related": "/posts/1/comments"}.Related())
	assert.Equal(t, "/posts/1/comments", Links{"related": map[string]any{"href": "/posts/1/comments"}}.Related())
	assert.Equal(t, "/posts/1", Links{"self": "/posts/1"}.Self())
	assert.Empty(t, Links{"related": 42}.Related())
	assert.Empty(t, Links(nil).Related())
}

func TestData_List(t *testing.T) {
	t.Parallel()
	a := Identifier{Type: "post", ID: "1"}
	b := Identifier{Type: "post", ID: "2"}

	ids := []Identifier{a, b}
	d := Many(ids...)
	ids[0] = b
	assert.Equal(t, []Identifier{a, b}, d.List(), "Many copies its input")

	out := d.List()
	out[0] = b
	assert.Equal(t, []Identifier{a, b}, d.List(), "List returns a copy")

	assert.Equal(t, []Identifier{a}, One(a).List())
	assert.Nil(t, Null().List())
	assert.False(t, Omitted().IsPresent())
}

func TestRelationshipData_MarshalJSON(t *testing.T) {
	t.Parallel()
	post := Identifier{Type: "post", ID: "1", LID: "@lid:post-1"}

	tests := []struct {
		name string
		data RelationshipData
		want string
	}{
		{"never loaded", RelationshipData{Links: Links{"related": "/x"}}, `{"links": {"related": "/x"}}`},
		{"null", RelationshipData{Data: Null()}, `{"data": null}`},
		{"single", RelationshipData{Data: One(post)}, `{"data": {"type": "post", "id": "1", "lid": "@lid:post-1"}}`},
		{"empty list", RelationshipData{Data: Many(), Meta: Meta{"total": 0}}, `{"data": [], "meta": {"total": 0}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := json.Marshal(tt.data)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(out))
		})
	}
}
