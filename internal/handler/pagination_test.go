package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodgram/internal/repository"
)

func TestPaginator_Page(t *testing.T) {
	p := Paginator{DefaultSize: 6, MaxSize: 100}
	tests := []struct {
		name  string
		query string
		want  repository.Page
	}{
		{"defaults", "", repository.Page{Number: 1, Size: 6}},
		{"explicit", "?page=3&limit=10", repository.Page{Number: 3, Size: 10}},
		{"clamped", "?limit=500", repository.Page{Number: 1, Size: 100}},
		{"garbage", "?page=x&limit=-4", repository.Page{Number: 1, Size: 6}},
		{"zero page", "?page=0", repository.Page{Number: 1, Size: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(t, http.MethodGet, "/api/recipes"+tt.query, "", 0)
			assert.Equal(t, tt.want, p.Page(c))
		})
	}
}

func TestEnvelope(t *testing.T) {
	t.Run("first page of many", func(t *testing.T) {
		c, _ := newContext(t, http.MethodGet, "http://example.com/api/users?limit=2", "", 0)

		resp := Envelope(c, repository.Page{Number: 1, Size: 2}, 3, []int{1, 2})

		assert.Equal(t, int64(3), resp.Count)
		require.NotNil(t, resp.Next)
		assert.Equal(t, "http://example.com/api/users?limit=2&page=2", *resp.Next)
		assert.Nil(t, resp.Previous)
	})

	t.Run("last page", func(t *testing.T) {
		c, _ := newContext(t, http.MethodGet, "http://example.com/api/users?limit=2&page=2", "", 0)

		resp := Envelope(c, repository.Page{Number: 2, Size: 2}, 3, []int{3})

		assert.Nil(t, resp.Next)
		require.NotNil(t, resp.Previous)
		assert.Equal(t, "http://example.com/api/users?limit=2", *resp.Previous)
	})

	t.Run("empty results serialize as a list", func(t *testing.T) {
		c, _ := newContext(t, http.MethodGet, "/api/users", "", 0)

		resp := Envelope[int](c, repository.Page{Number: 1, Size: 6}, 0, nil)

		assert.NotNil(t, resp.Results)
		assert.Empty(t, resp.Results)
	})
}

func TestQueryFlag(t *testing.T) {
	for raw, want := range map[string]bool{"1": true, "true": true, "True": true, "0": false, "": false, "yes": false} {
		c, _ := newContext(t, http.MethodGet, "/?f="+raw, "", 0)
		assert.Equal(t, want, queryFlag(c, "f"), "value %q", raw)
	}
}
