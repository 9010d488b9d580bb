// Package vectorstore is the client for the durable secondary vector store
// (Qdrant). Indexes map to Qdrant collections; namespaces are modeled as a
// payload field because Qdrant has no native namespace concept.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
)

// Payload keys stored on every point.
const (
	PayloadNamespace   = "namespace"
	PayloadFingerprint = "fingerprint"
	PayloadContent     = "content"
	PayloadType        = "type"
	PayloadOriginID    = "origin_message_id"
	PayloadTimestamp   = "timestamp"
	PayloadMetadata    = "metadata"
)

// QdrantClient interfaces with the Qdrant REST API for vector operations.
type QdrantClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewQdrantClient(baseURL string) *QdrantClient {
	return &QdrantClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Point represents a vector point in Qdrant.
type Point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload,omitempty"`
}

// IndexDescription summarizes a collection's configuration and size.
type IndexDescription struct {
	Name        string
	Dimension   int
	Metric      string
	VectorCount int
}

// HealthCheck verifies Qdrant connectivity.
func (c *QdrantClient) HealthCheck(ctx context.Context) error {
	_, err := c.get(ctx, "/healthz")
	return err
}

// CreateIndex creates a collection with the given dimension and distance
// metric (cosine, euclid, or dot).
func (c *QdrantClient) CreateIndex(ctx context.Context, name string, dimension int, metric string) error {
	distance, err := normalizeMetric(metric)
	if err != nil {
		return err
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": distance,
		},
	}
	return c.put(ctx, "/collections/"+name, body)
}

// DeleteIndex removes a collection and all of its vectors.
func (c *QdrantClient) DeleteIndex(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/collections/"+name, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: DELETE /collections/%s: %v", models.ErrStoreUnavailable, name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant DELETE /collections/%s: status %d: %s", name, resp.StatusCode, string(respBody))
	}
	return nil
}

// IndexExists checks if a collection exists.
func (c *QdrantClient) IndexExists(ctx context.Context, name string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/collections/"+name, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: check collection: %v", models.ErrStoreUnavailable, err)
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// ListIndexes returns the names of all collections.
func (c *QdrantClient) ListIndexes(ctx context.Context) ([]string, error) {
	respBody, err := c.get(ctx, "/collections")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result struct {
			Collections []struct {
				Name string `json:"name"`
			} `json:"collections"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decode collections response: %w", err)
	}

	names := make([]string, 0, len(resp.Result.Collections))
	for _, col := range resp.Result.Collections {
		names = append(names, col.Name)
	}
	return names, nil
}

// DescribeIndex returns a collection's dimension, metric, and vector count.
func (c *QdrantClient) DescribeIndex(ctx context.Context, name string) (*IndexDescription, error) {
	respBody, err := c.get(ctx, "/collections/"+name)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result struct {
			PointsCount int `json:"points_count"`
			Config      struct {
				Params struct {
					Vectors struct {
						Size     int    `json:"size"`
						Distance string `json:"distance"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decode collection response: %w", err)
	}

	return &IndexDescription{
		Name:        name,
		Dimension:   resp.Result.Config.Params.Vectors.Size,
		Metric:      strings.ToLower(resp.Result.Config.Params.Vectors.Distance),
		VectorCount: resp.Result.PointsCount,
	}, nil
}

// Upsert inserts or updates vector points in a collection, waiting for the
// write to be applied so counts observed afterwards are consistent.
func (c *QdrantClient) Upsert(ctx context.Context, index string, points []Point) error {
	body := map[string]any{
		"points": points,
	}
	return c.put(ctx, "/collections/"+index+"/points?wait=true", body)
}

// Count returns the number of points in a namespace (all namespaces when
// empty).
func (c *QdrantClient) Count(ctx context.Context, index, namespace string) (int, error) {
	body := map[string]any{
		"exact": true,
	}
	if namespace != "" {
		body["filter"] = namespaceFilter(namespace)
	}

	respBody, err := c.post(ctx, "/collections/"+index+"/points/count", body)
	if err != nil {
		return 0, err
	}

	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return 0, fmt.Errorf("decode count response: %w", err)
	}
	return resp.Result.Count, nil
}

// Scroll fetches up to limit points from a namespace, vectors and payloads
// included, paginating internally.
func (c *QdrantClient) Scroll(ctx context.Context, index, namespace string, limit int) ([]Point, error) {
	return c.scroll(ctx, index, namespace, limit, true)
}

// FetchFingerprints collects the fingerprint payload values of every point
// in a namespace. Used to seed the duplicate set at sync start.
func (c *QdrantClient) FetchFingerprints(ctx context.Context, index, namespace string) (map[string]struct{}, error) {
	points, err := c.scroll(ctx, index, namespace, 0, false)
	if err != nil {
		return nil, err
	}

	fingerprints := make(map[string]struct{}, len(points))
	for _, pt := range points {
		if fp, ok := pt.Payload[PayloadFingerprint].(string); ok && fp != "" {
			fingerprints[fp] = struct{}{}
		}
	}
	return fingerprints, nil
}

// ListNamespaces returns the distinct namespace payload values in an index.
func (c *QdrantClient) ListNamespaces(ctx context.Context, index string) ([]string, error) {
	points, err := c.scroll(ctx, index, "", 0, false)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var namespaces []string
	for _, pt := range points {
		ns, ok := pt.Payload[PayloadNamespace].(string)
		if !ok || seen[ns] {
			continue
		}
		seen[ns] = true
		namespaces = append(namespaces, ns)
	}
	return namespaces, nil
}

// Wipe deletes every point in a namespace (the whole index when empty).
func (c *QdrantClient) Wipe(ctx context.Context, index, namespace string) error {
	var filter map[string]any
	if namespace != "" {
		filter = namespaceFilter(namespace)
	} else {
		filter = map[string]any{"must": []any{}} // matches everything
	}
	_, err := c.post(ctx, "/collections/"+index+"/points/delete?wait=true", map[string]any{
		"filter": filter,
	})
	return err
}

// scroll pages through the scroll API. limit <= 0 means exhaustive.
func (c *QdrantClient) scroll(ctx context.Context, index, namespace string, limit int, withVector bool) ([]Point, error) {
	const pageSize = 256

	var out []Point
	var offset any

	for {
		want := pageSize
		if limit > 0 && limit-len(out) < want {
			want = limit - len(out)
		}
		if want <= 0 {
			break
		}

		body := map[string]any{
			"limit":        want,
			"with_payload": true,
			"with_vector":  withVector,
		}
		if namespace != "" {
			body["filter"] = namespaceFilter(namespace)
		}
		if offset != nil {
			body["offset"] = offset
		}

		respBody, err := c.post(ctx, "/collections/"+index+"/points/scroll", body)
		if err != nil {
			return nil, err
		}

		var resp struct {
			Result struct {
				Points []struct {
					ID      any            `json:"id"`
					Payload map[string]any `json:"payload"`
					Vector  []float32      `json:"vector"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return nil, fmt.Errorf("decode scroll response: %w", err)
		}

		for _, p := range resp.Result.Points {
			out = append(out, Point{
				ID:      fmt.Sprintf("%v", p.ID),
				Vector:  p.Vector,
				Payload: p.Payload,
			})
		}

		if resp.Result.NextPageOffset == nil || len(resp.Result.Points) == 0 {
			break
		}
		offset = resp.Result.NextPageOffset
	}

	return out, nil
}

func namespaceFilter(namespace string) map[string]any {
	return map[string]any{
		"must": []any{
			map[string]any{
				"key":   PayloadNamespace,
				"match": map[string]any{"value": namespace},
			},
		},
	}
}

func normalizeMetric(metric string) (string, error) {
	switch strings.ToLower(metric) {
	case "", "cosine":
		return "Cosine", nil
	case "euclid", "euclidean":
		return "Euclid", nil
	case "dot", "dotproduct":
		return "Dot", nil
	default:
		return "", &models.ConfigError{Field: "metric", Reason: fmt.Sprintf("unsupported metric %q", metric)}
	}
}

func (c *QdrantClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", models.ErrStoreUnavailable, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("qdrant GET %s: status %d: %s", path, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

func (c *QdrantClient) put(ctx context.Context, path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: PUT %s: %v", models.ErrStoreUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant PUT %s: status %d: %s", path, resp.StatusCode, string(respBody))
	}
	return nil
}

func (c *QdrantClient) post(ctx context.Context, path string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: POST %s: %v", models.ErrStoreUnavailable, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("qdrant POST %s: status %d: %s", path, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
