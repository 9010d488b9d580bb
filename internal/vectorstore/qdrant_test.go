package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
)

// fakeQdrant implements just enough of the Qdrant REST surface for the
// client methods under test, backed by an in-memory point list per
// collection.
type fakeQdrant struct {
	collections map[string][]Point
	dimensions  map[string]int
}

func newFakeQdrant() *fakeQdrant {
	return &fakeQdrant{
		collections: make(map[string][]Point),
		dimensions:  make(map[string]int),
	}
}

func (f *fakeQdrant) matches(p Point, filter map[string]any) bool {
	if filter == nil {
		return true
	}
	must, _ := filter["must"].([]any)
	for _, clause := range must {
		m, _ := clause.(map[string]any)
		key, _ := m["key"].(string)
		match, _ := m["match"].(map[string]any)
		if p.Payload[key] != match["value"] {
			return false
		}
	}
	return true
}

func (f *fakeQdrant) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET /collections", func(w http.ResponseWriter, r *http.Request) {
		var cols []map[string]string
		for name := range f.collections {
			cols = append(cols, map[string]string{"name": name})
		}
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{"collections": cols},
		})
	})

	mux.HandleFunc("PUT /collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Vectors struct {
				Size int `json:"size"`
			} `json:"vectors"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		name := r.PathValue("name")
		f.collections[name] = nil
		f.dimensions[name] = body.Vectors.Size
		json.NewEncoder(w).Encode(map[string]any{"result": true})
	})

	mux.HandleFunc("DELETE /collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		if _, ok := f.collections[name]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(f.collections, name)
		json.NewEncoder(w).Encode(map[string]any{"result": true})
	})

	mux.HandleFunc("GET /collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		points, ok := f.collections[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"points_count": len(points),
				"config": map[string]any{
					"params": map[string]any{
						"vectors": map[string]any{
							"size":     f.dimensions[name],
							"distance": "Cosine",
						},
					},
				},
			},
		})
	})

	mux.HandleFunc("PUT /collections/{name}/points", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Points []Point `json:"points"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		name := r.PathValue("name")
		f.collections[name] = append(f.collections[name], body.Points...)
		json.NewEncoder(w).Encode(map[string]any{"result": true})
	})

	mux.HandleFunc("POST /collections/{name}/points/count", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Filter map[string]any `json:"filter"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		count := 0
		for _, p := range f.collections[r.PathValue("name")] {
			if f.matches(p, body.Filter) {
				count++
			}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{"count": count},
		})
	})

	mux.HandleFunc("POST /collections/{name}/points/scroll", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Limit  int            `json:"limit"`
			Filter map[string]any `json:"filter"`
			Offset *int           `json:"offset"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		var matched []Point
		for _, p := range f.collections[r.PathValue("name")] {
			if f.matches(p, body.Filter) {
				matched = append(matched, p)
			}
		}

		start := 0
		if body.Offset != nil {
			start = *body.Offset
		}
		end := start + body.Limit
		if end > len(matched) {
			end = len(matched)
		}
		page := matched[start:end]

		var next any
		if end < len(matched) {
			next = end
		}
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"points":           page,
				"next_page_offset": next,
			},
		})
	})

	mux.HandleFunc("POST /collections/{name}/points/delete", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Filter map[string]any `json:"filter"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		name := r.PathValue("name")
		var kept []Point
		for _, p := range f.collections[name] {
			if !f.matches(p, body.Filter) {
				kept = append(kept, p)
			}
		}
		f.collections[name] = kept
		json.NewEncoder(w).Encode(map[string]any{"result": true})
	})

	return mux
}

func setupClient(t *testing.T) (*QdrantClient, *fakeQdrant) {
	t.Helper()
	fake := newFakeQdrant()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	return NewQdrantClient(srv.URL), fake
}

func seedPoint(id, ns, fp string) Point {
	return Point{
		ID:     id,
		Vector: []float32{1, 0, 0},
		Payload: map[string]any{
			PayloadNamespace:   ns,
			PayloadFingerprint: fp,
			PayloadContent:     "content " + id,
		},
	}
}

func TestCreateDescribeListDelete(t *testing.T) {
	client, _ := setupClient(t)
	ctx := context.Background()

	require.NoError(t, client.CreateIndex(ctx, "memories", 768, "cosine"))

	desc, err := client.DescribeIndex(ctx, "memories")
	require.NoError(t, err)
	assert.Equal(t, 768, desc.Dimension)
	assert.Equal(t, "cosine", desc.Metric)
	assert.Equal(t, 0, desc.VectorCount)

	names, err := client.ListIndexes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"memories"}, names)

	exists, err := client.IndexExists(ctx, "memories")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, client.DeleteIndex(ctx, "memories"))

	exists, err = client.IndexExists(ctx, "memories")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCreateIndexRejectsUnknownMetric(t *testing.T) {
	client, _ := setupClient(t)

	err := client.CreateIndex(context.Background(), "memories", 768, "manhattan")
	var cfgErr *models.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "metric", cfgErr.Field)
}

func TestUpsertCountScopedByNamespace(t *testing.T) {
	client, _ := setupClient(t)
	ctx := context.Background()

	require.NoError(t, client.CreateIndex(ctx, "memories", 3, "cosine"))
	require.NoError(t, client.Upsert(ctx, "memories", []Point{
		seedPoint("1", "alpha", "fp-1"),
		seedPoint("2", "alpha", "fp-2"),
		seedPoint("3", "beta", "fp-3"),
	}))

	alpha, err := client.Count(ctx, "memories", "alpha")
	require.NoError(t, err)
	assert.Equal(t, 2, alpha)

	all, err := client.Count(ctx, "memories", "")
	require.NoError(t, err)
	assert.Equal(t, 3, all)
}

func TestScrollPaginates(t *testing.T) {
	client, fake := setupClient(t)
	ctx := context.Background()

	require.NoError(t, client.CreateIndex(ctx, "memories", 3, "cosine"))
	for i := 0; i < 600; i++ {
		fake.collections["memories"] = append(fake.collections["memories"],
			seedPoint(string(rune('a'+i%26)), "alpha", "fp"))
	}

	points, err := client.Scroll(ctx, "memories", "alpha", 0)
	require.NoError(t, err)
	assert.Len(t, points, 600)

	limited, err := client.Scroll(ctx, "memories", "alpha", 300)
	require.NoError(t, err)
	assert.Len(t, limited, 300)
}

func TestFetchFingerprints(t *testing.T) {
	client, _ := setupClient(t)
	ctx := context.Background()

	require.NoError(t, client.CreateIndex(ctx, "memories", 3, "cosine"))
	require.NoError(t, client.Upsert(ctx, "memories", []Point{
		seedPoint("1", "alpha", "fp-1"),
		seedPoint("2", "alpha", "fp-2"),
		seedPoint("3", "alpha", "fp-2"),
		seedPoint("4", "beta", "fp-9"),
	}))

	fps, err := client.FetchFingerprints(ctx, "memories", "alpha")
	require.NoError(t, err)
	assert.Len(t, fps, 2)
	assert.Contains(t, fps, "fp-1")
	assert.Contains(t, fps, "fp-2")
	assert.NotContains(t, fps, "fp-9")
}

func TestListNamespaces(t *testing.T) {
	client, _ := setupClient(t)
	ctx := context.Background()

	require.NoError(t, client.CreateIndex(ctx, "memories", 3, "cosine"))
	require.NoError(t, client.Upsert(ctx, "memories", []Point{
		seedPoint("1", "alpha", "fp-1"),
		seedPoint("2", "beta", "fp-2"),
		seedPoint("3", "alpha", "fp-3"),
	}))

	namespaces, err := client.ListNamespaces(ctx, "memories")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, namespaces)
}

func TestWipeNamespaceOnly(t *testing.T) {
	client, _ := setupClient(t)
	ctx := context.Background()

	require.NoError(t, client.CreateIndex(ctx, "memories", 3, "cosine"))
	require.NoError(t, client.Upsert(ctx, "memories", []Point{
		seedPoint("1", "alpha", "fp-1"),
		seedPoint("2", "beta", "fp-2"),
	}))

	require.NoError(t, client.Wipe(ctx, "memories", "alpha"))

	remaining, err := client.Count(ctx, "memories", "")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestTransportErrorIsStoreUnavailable(t *testing.T) {
	client := NewQdrantClient("http://127.0.0.1:1") // nothing listens here

	err := client.HealthCheck(context.Background())
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	_, err = client.Count(context.Background(), "memories", "")
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}
