package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(Config{BaseURL: srv.URL}), srv
}

func TestSearchDecodesPairRows(t *testing.T) {
	var gotQuery, gotTopN string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/search", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		gotTopN = r.URL.Query().Get("top_n")
		fmt.Fprint(w, `[["Naruto", 0.95], ["Naruto Shippuden", 0.81]]`)
	})
	defer srv.Close()

	items, err := c.Search(context.Background(), "naruto", 10)
	require.NoError(t, err)
	assert.Equal(t, "naruto", gotQuery)
	assert.Equal(t, "10", gotTopN)
	require.Len(t, items, 2)
	assert.Equal(t, "Naruto", items[0].Name)
	assert.InDelta(t, 0.95, items[0].Score, 1e-9)
	assert.Equal(t, "Naruto Shippuden", items[1].Name)
}

func TestSearchDecodesLegacyObjectRows(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name":"Dark","score":0.7,"synopsis":"time travel","image_url":"http://img/dark.jpg"},["Lost",0.5]]`)
	})
	defer srv.Close()

	items, err := c.Search(context.Background(), "mystery", 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Dark", items[0].Name)
	assert.Equal(t, "time travel", items[0].Synopsis)
	assert.Equal(t, "http://img/dark.jpg", items[0].ImageURL)
	assert.Equal(t, "Lost", items[1].Name)
	assert.Empty(t, items[1].Synopsis)
}

func TestSearchRejectsUnknownRowShape(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[42]`)
	})
	defer srv.Close()

	_, err := c.Search(context.Background(), "naruto", 10)
	require.Error(t, err)
}

func TestSearchReportsStatusError(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	defer srv.Close()

	_, err := c.Search(context.Background(), "naruto", 10)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}

func TestRecommendSendsUserParams(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("user_id"))
		assert.Equal(t, "true", r.URL.Query().Get("exclude_seen"))
		fmt.Fprint(w, `[["Dark", 0.9]]`)
	})
	defer srv.Close()

	items, err := c.Recommend(context.Background(), 7, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Dark", items[0].Name)
}

func TestSeriesMetaBatchesNames(t *testing.T) {
	calls := 0
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, "/api/series_meta", r.URL.Path)
		assert.Equal(t, "Naruto,Dark", r.URL.Query().Get("names"))
		fmt.Fprint(w, `{"Naruto":{"image_url":"http://img/n.jpg","synopsis":"ninja"},"Dark":{"image_url":"","synopsis":"time travel"}}`)
	})
	defer srv.Close()

	meta, err := c.SeriesMeta(context.Background(), []string{"Naruto", "Dark"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	require.Len(t, meta, 2)
	assert.Equal(t, "ninja", meta["Naruto"].Synopsis)
	assert.Empty(t, meta["Dark"].ImageURL)
}

func TestSeriesMetaEmptyNamesSkipsRequest(t *testing.T) {
	calls := 0
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	defer srv.Close()

	meta, err := c.SeriesMeta(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, meta)
	assert.Equal(t, 0, calls)
}

func TestRateSendsPayload(t *testing.T) {
	var body map[string]any
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/rate", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, decodeBody(r, &body))
		fmt.Fprint(w, `{"success": true}`)
	})
	defer srv.Close()

	require.NoError(t, c.Rate(context.Background(), "Naruto", 4))
	assert.Equal(t, "Naruto", body["serie_name"])
	assert.EqualValues(t, 4, body["rating"])
}

func TestUnrateFallsBackToLegacyRate(t *testing.T) {
	var rateBody map[string]any
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/unrate":
			http.NotFound(w, r)
		case "/api/rate":
			require.NoError(t, decodeBody(r, &rateBody))
			fmt.Fprint(w, `{"success": true}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})
	defer srv.Close()

	require.NoError(t, c.Unrate(context.Background(), "Naruto"))
	assert.Equal(t, "Naruto", rateBody["serie_name"])
	assert.EqualValues(t, 0, rateBody["rating"])
}

func TestUnrateUsesDedicatedEndpoint(t *testing.T) {
	unrateCalls, rateCalls := 0, 0
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/unrate":
			unrateCalls++
			fmt.Fprint(w, `{"success": true}`)
		case "/api/rate":
			rateCalls++
		}
	})
	defer srv.Close()

	require.NoError(t, c.Unrate(context.Background(), "Naruto"))
	assert.Equal(t, 1, unrateCalls)
	assert.Equal(t, 0, rateCalls)
}

func TestMyRatingsDecodes(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/my_ratings", r.URL.Path)
		fmt.Fprint(w, `{"Naruto": 5, "Dark": 3}`)
	})
	defer srv.Close()

	out, err := c.MyRatings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Naruto": 5, "Dark": 3}, out)
}

func decodeBody(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}
