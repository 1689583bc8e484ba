package guardian

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchPassesThroughResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "world", r.URL.Query().Get("section"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api-key"))
		w.Write([]byte(`{
			"response": {
				"status": "ok",
				"results": [
					{"webTitle": "A Guardian story", "webUrl": "https://example.com/g", "sectionName": "World",
					 "fields": {"thumbnail": "https://img.example.com/t.jpg", "trailText": "Short trail."}}
				]
			}
		}`))
	}))
	defer srv.Close()

	c := New("test-key")
	c.baseURL = srv.URL

	items, err := c.Search(context.Background(), "world")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "A Guardian story", items[0].WebTitle)
	assert.Equal(t, "https://img.example.com/t.jpg", items[0].Fields.Thumbnail)
}

func TestSearchRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": {"status": "error", "results": []}}`))
	}))
	defer srv.Close()

	c := New("test-key")
	c.baseURL = srv.URL

	_, err := c.Search(context.Background(), "world")
	assert.Error(t, err)
}
