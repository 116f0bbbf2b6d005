package distance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"route-sequencer-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string]domain.Coordinates
}

func (m *memoryCache) GetMany(_ context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]domain.Coordinates{}
	for _, a := range addresses {
		if c, ok := m.data[a]; ok {
			out[a] = c
		}
	}
	return out, nil
}

func (m *memoryCache) PutMany(_ context.Context, results map[string]domain.Coordinates) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range results {
		m.data[k] = v
	}
	return nil
}

func TestORSGeocoderRetriesTransientFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/search", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		assert.Equal(t, "Rua A, 10", r.URL.Query().Get("text"))
		assert.Equal(t, "BR", r.URL.Query().Get("boundary.country"))

		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[-49.27,-25.43]}}]}`))
	}))
	defer srv.Close()

	cache := &memoryCache{data: map[string]domain.Coordinates{}}
	g, err := NewORSGeocoder("secret", cache, WithBaseURL(srv.URL), WithRetry(3, time.Millisecond))
	require.NoError(t, err)

	c, err := g.Geocode(context.Background(), "Rua A,   10")
	require.NoError(t, err)
	require.Equal(t, domain.Coordinates{Lat: -25.43, Lon: -49.27}, c)
	require.EqualValues(t, 2, hits.Load())

	// Second lookup is served from the cache.
	_, err = g.Geocode(context.Background(), "Rua A, 10")
	require.NoError(t, err)
	require.EqualValues(t, 2, hits.Load())
	require.Contains(t, cache.data, "Rua A, 10")
}

func TestORSGeocoderDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer srv.Close()

	g, err := NewORSGeocoder("secret", nil, WithBaseURL(srv.URL), WithRetry(3, time.Millisecond))
	require.NoError(t, err)

	_, err = g.Geocode(context.Background(), "Rua B")
	require.ErrorContains(t, err, "Code 403")
	require.EqualValues(t, 1, hits.Load())
}

func TestORSGeocoderNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	g, err := NewORSGeocoder("secret", nil, WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = g.Geocode(context.Background(), "Nowhere")
	require.ErrorContains(t, err, "no geocode results")
}

func TestNewORSGeocoderRequiresKey(t *testing.T) {
	_, err := NewORSGeocoder("", nil)
	require.Error(t, err)
}
