package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/platform/obs"
	"route-sequencer-service/internal/ports"
	"time"

	log "github.com/sirupsen/logrus"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ORSGeocoder implements ports.Geocoder using OpenRouteService (/geocode/search).
//
// It coordinates:
//   - Address normalization
//   - Persistent geocode caching (optional)
//   - External API calls with retry/backoff
//
// The geocoder is safe for concurrent use.
type ORSGeocoder struct {
	session    *http.Client
	apiKey     string
	baseURL    string
	country    string
	cache      ports.GeocodeCache
	maxRetries uint64
	backoff    time.Duration
}

type ORSOption func(*ORSGeocoder)

func WithBaseURL(u string) ORSOption { return func(o *ORSGeocoder) { o.baseURL = u } }

// WithCountry restricts results to an ISO 3166-1 alpha-2 country.
func WithCountry(code string) ORSOption { return func(o *ORSGeocoder) { o.country = code } }

func WithHTTPClient(c *http.Client) ORSOption { return func(o *ORSGeocoder) { o.session = c } }

func WithRetry(maxRetries uint64, backoff time.Duration) ORSOption {
	return func(o *ORSGeocoder) {
		o.maxRetries = maxRetries
		o.backoff = backoff
	}
}

func NewORSGeocoder(apiKey string, cache ports.GeocodeCache, opts ...ORSOption) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	g := &ORSGeocoder{
		session:    &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		baseURL:    "https://api.openrouteservice.org",
		country:    "BR",
		cache:      cache,
		maxRetries: 3,
		backoff:    200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Delegate to batched path to reuse caching logic.
func (o *ORSGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, errors.New("geocode: address must be non-empty")
	}

	results, err := o.GeocodeMany(ctx, []string{norm})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", norm, err)
	}

	c, ok := results[norm]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("no geocode result for %q", norm)
	}

	return c, nil
}

// GeocodeMany resolves addresses, consulting the cache before calling ORS.
// Returned keys are the normalized addresses.
func (o *ORSGeocoder) GeocodeMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.GeocodeMany")(&err)

	seen := make(map[string]struct{}, len(addresses))
	needed := make([]string, 0, len(addresses))
	for _, a := range addresses {
		n := normalize(a)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		needed = append(needed, n)
	}

	if len(needed) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	hits := make(map[string]domain.Coordinates)
	if o.cache != nil {
		hits, err = o.cache.GetMany(ctx, needed)
		if err != nil {
			return nil, fmt.Errorf("ORS get geocode cache: %w", err)
		}
	}

	fresh := make(map[string]domain.Coordinates)
	for _, a := range needed {
		if _, ok := hits[a]; ok {
			continue
		}

		c, err := o.search(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("retrieving coordinates: %w", err)
		}
		fresh[a] = c
	}

	// A failed cache write only costs a future remote call.
	if o.cache != nil && len(fresh) > 0 {
		if err := o.cache.PutMany(ctx, fresh); err != nil {
			log.WithError(err).Warn("geocode cache write failed")
		}
	}

	out := make(map[string]domain.Coordinates, len(hits)+len(fresh))
	for k, v := range hits {
		out[k] = v
	}
	for k, v := range fresh {
		out[k] = v
	}

	return out, nil
}

func (o *ORSGeocoder) search(ctx context.Context, address string) (domain.Coordinates, error) {
	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", address)
		if o.country != "" {
			q.Set("boundary.country", o.country)
		}
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q", address)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", address)
	}

	// GeoJSON order is [lon, lat].
	c := domain.Coordinates{Lon: coords[0], Lat: coords[1]}
	if !c.Valid() {
		return domain.Coordinates{}, fmt.Errorf("out of range coordinates for %q: %v", address, coords)
	}
	return c, nil
}
