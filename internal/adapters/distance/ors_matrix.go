package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"tapas-route-service/internal/domain"
	"tapas-route-service/internal/platform/obs"
	"tapas-route-service/internal/ports"
	"time"

	"github.com/rs/zerolog/log"
)

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
}

type matrixResponse struct {
	Durations [][]*float64 `json:"durations"`
}

// ORSMatrixSource implements ports.MatrixPreparer using the OpenRouteService
// matrix endpoint, so travel times follow the real street network.
//
// It coordinates:
//   - Persistent distance caching keyed by coordinates
//   - A single many-to-many matrix call for all cache misses
//   - Retry/backoff on transient failures
//
// The source is safe for concurrent use.
type ORSMatrixSource struct {
	session        *http.Client
	apiKey         string
	baseURL        string
	profile        string
	cache          ports.DistanceCache
	initialBackoff time.Duration
}

type ORSOption func(*ORSMatrixSource)

// WithBaseURL points the source at another ORS deployment.
func WithBaseURL(u string) ORSOption { return func(o *ORSMatrixSource) { o.baseURL = u } }

// WithProfile selects the ORS routing profile, e.g. "foot-walking".
func WithProfile(p string) ORSOption { return func(o *ORSMatrixSource) { o.profile = p } }

// WithInitialBackoff sets the first retry delay.
func WithInitialBackoff(d time.Duration) ORSOption {
	return func(o *ORSMatrixSource) { o.initialBackoff = d }
}

func NewORSMatrixSource(apiKey string, cache ports.DistanceCache, opts ...ORSOption) (*ORSMatrixSource, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	source := &ORSMatrixSource{
		session:        &http.Client{Timeout: 10 * time.Second},
		apiKey:         apiKey,
		baseURL:        "https://api.openrouteservice.org",
		profile:        "foot-walking",
		cache:          cache,
		initialBackoff: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(source)
	}

	return source, nil
}

// Duration resolves a single pair. Prefer Prepare for whole requests.
func (o *ORSMatrixSource) Duration(a, b domain.Point) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	model, err := o.Prepare(ctx, []domain.Point{a, b})
	if err != nil {
		return 0, err
	}
	return model.Duration(a, b)
}

// Prepare resolves all ordered pairs of points and returns an in-memory
// MatrixModel keyed by point ID.
func (o *ORSMatrixSource) Prepare(ctx context.Context, points []domain.Point) (_ ports.DistanceModel, err error) {
	defer obs.Time(ctx, "ors.Prepare")(&err)

	keys := make([]string, 0, len(points))
	byKey := make(map[string]domain.Point, len(points))
	for _, p := range points {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		k := p.Key()
		if _, ok := byKey[k]; ok {
			continue
		}
		byKey[k] = p
		keys = append(keys, k)
	}

	known := make(map[string]map[string]time.Duration, len(keys))
	complete := true
	// Check the persistent cache before issuing external API calls.
	for _, origin := range keys {
		others := otherKeys(keys, origin)
		hits := map[string]time.Duration{}
		if o.cache != nil && len(others) > 0 {
			hits, err = o.cache.GetMany(ctx, origin, others)
			if err != nil {
				return nil, fmt.Errorf("ORS get distance cache: %w", err)
			}
		}
		known[origin] = hits
		if len(hits) < len(others) {
			complete = false
		}
	}

	if !complete {
		locations := make([]domain.Point, 0, len(keys))
		for _, k := range keys {
			locations = append(locations, byKey[k])
		}

		fetched, err := o.fetchMatrix(ctx, locations)
		if err != nil {
			return nil, fmt.Errorf("fetching matrix: %w", err)
		}

		for i, origin := range keys {
			row := make(map[string]time.Duration, len(keys)-1)
			for j, dest := range keys {
				if i == j {
					continue
				}
				row[dest] = fetched[i][j]
			}
			known[origin] = row

			if o.cache != nil {
				if err := o.cache.PutMany(ctx, origin, row); err != nil {
					log.Warn().Err(err).Str("origin", origin).Msg("distance cache write failed")
				}
			}
		}
	}

	pairs := make([]Pair, 0, len(points)*len(points))
	for _, a := range points {
		for _, b := range points {
			if a.ID == b.ID {
				continue
			}
			ka, kb := a.Key(), b.Key()
			if ka == kb {
				pairs = append(pairs, Pair{From: a.ID, To: b.ID})
				continue
			}
			d, ok := known[ka][kb]
			if !ok {
				return nil, fmt.Errorf("ORS matrix has no duration for %q -> %q", a.ID, b.ID)
			}
			pairs = append(pairs, Pair{From: a.ID, To: b.ID, Duration: d})
		}
	}

	return NewMatrixModel(pairs)
}

// fetchMatrix retrieves the full many-to-many duration matrix for the
// given locations in one call.
func (o *ORSMatrixSource) fetchMatrix(ctx context.Context, locations []domain.Point) ([][]time.Duration, error) {
	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	coords := make([][]float64, 0, len(locations))
	for _, p := range locations {
		coords = append(coords, p.CoordsToList())
	}

	payload, err := json.Marshal(matrixRequest{
		Locations: coords,
		Metrics:   []string{"duration"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}

	n := len(locations)
	if len(mr.Durations) != n {
		return nil, fmt.Errorf("expected %d source rows; got %d", n, len(mr.Durations))
	}

	out := make([][]time.Duration, n)
	for i, row := range mr.Durations {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d entries, want %d", i, len(row), n)
		}
		out[i] = make([]time.Duration, n)
		for j, secondsPtr := range row {
			if i == j {
				continue
			}
			// ORS reports null for unroutable pairs.
			if secondsPtr == nil || *secondsPtr < 0 {
				return nil, fmt.Errorf("matrix returned invalid duration for %q -> %q", locations[i].ID, locations[j].ID)
			}
			out[i][j] = time.Duration(math.Round(*secondsPtr)) * time.Second
		}
	}

	return out, nil
}

func otherKeys(keys []string, exclude string) []string {
	out := make([]string, 0, len(keys)-1)
	for _, k := range keys {
		if k != exclude {
			out = append(out, k)
		}
	}
	return out
}
