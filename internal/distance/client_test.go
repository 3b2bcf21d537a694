package distance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{URL: srv.URL, APIKey: "test-key", TimeoutSeconds: 1}), srv
}

func TestFindNearbyFiltersByStatusAndThreshold(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rows":[{"elements":[
			{"status":"OK","distance":{"value":0}},
			{"status":"OK","distance":{"value":600}},
			{"status":"NOT_FOUND"}
		]}]}`))
	})

	dests := []Point{{0, 0}, {0, 0}, {0, 0}}
	got := client.FindNearby(context.Background(), Point{0, 0}, dests)
	assert.Equal(t, []int{0}, got)
}

func TestFindNearbyThresholdIsStrict(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rows":[{"elements":[
			{"status":"OK","distance":{"value":499}},
			{"status":"OK","distance":{"value":500}}
		]}]}`))
	})

	got := client.FindNearby(context.Background(), Point{1, 1}, []Point{{1, 1}, {1, 1}})
	assert.Equal(t, []int{0}, got)
}

func TestFindNearbyQueryEncoding(t *testing.T) {
	var query url.Values
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{"rows":[{"elements":[]}]}`))
	})

	origin := Point{Latitude: 41.43206, Longitude: -81.38992}
	dests := []Point{
		{Latitude: 41.43206, Longitude: -81.38992},
		{Latitude: 59.93, Longitude: 30.33},
	}
	client.FindNearby(context.Background(), origin, dests)

	require.NotNil(t, query)
	assert.Equal(t, "41.43206,-81.38992", query.Get("origins"))
	assert.Equal(t, "41.43206,-81.38992|59.93,30.33", query.Get("destinations"))
	assert.Equal(t, "test-key", query.Get("key"))
}

func TestFindNearbyKeepsConfiguredQueryParams(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{"rows":[{"elements":[]}]}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		URL:            srv.URL + "?mode=walking",
		APIKey:         "test-key",
		TimeoutSeconds: 1,
	})
	client.FindNearby(context.Background(), Point{1, 1}, []Point{{2, 2}})

	require.NotNil(t, query)
	assert.Equal(t, "walking", query.Get("mode"))
	assert.Equal(t, "1,1", query.Get("origins"))
	assert.Equal(t, "2,2", query.Get("destinations"))
	assert.Equal(t, "test-key", query.Get("key"))
}

func TestFindNearbyTimeoutYieldsEmpty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	})

	got := client.FindNearby(context.Background(), Point{0, 0}, []Point{{1, 1}, {2, 2}})
	assert.Empty(t, got)
}

func TestFindNearbyHTTPErrorYieldsEmpty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	got := client.FindNearby(context.Background(), Point{0, 0}, []Point{{1, 1}})
	assert.Empty(t, got)
}

func TestFindNearbyMalformedResponseYieldsEmpty(t *testing.T) {
	cases := map[string]string{
		"not json":     `this is not json`,
		"empty object": `{}`,
		"no rows":      `{"rows":[]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})
			got := client.FindNearby(context.Background(), Point{0, 0}, []Point{{1, 1}})
			assert.Empty(t, got)
		})
	}
}

func TestFindNearbyNoDestinationsSkipsCall(t *testing.T) {
	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	got := client.FindNearby(context.Background(), Point{0, 0}, nil)
	assert.Empty(t, got)
	assert.False(t, called)
}
