package syncer

import (
	"context"
	"fmt"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/fingerprint"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/vectorstore"
)

// Hydrate replaces the primary store's contents with up to limit memories
// from an index namespace (limit <= 0 means all). The primary store is
// cleared before re-insertion and the two steps are not atomic: an insert
// failure leaves the primary store partially filled and returns a
// PartialHydrateError. Re-running hydrate is the recovery path.
func (p *Pipeline) Hydrate(ctx context.Context, index, namespace string, limit int) (*models.HydrateResult, error) {
	if _, err := p.lock.Begin(models.OperationHydrate, index, namespace); err != nil {
		return nil, err
	}
	defer p.lock.End()

	exists, err := p.secondary.IndexExists(ctx, index)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &models.ConfigError{Field: "indexName", Reason: fmt.Sprintf("index %q does not exist", index)}
	}

	points, err := p.secondary.Scroll(ctx, index, namespace, limit)
	if err != nil {
		return nil, err
	}

	p.logger.Info("hydrate started",
		"index", index, "namespace", namespace, "fetched", len(points))

	// Dedup and validate before touching the primary store, so Expected is
	// exact and a bad vector cannot cost the working set. Dimension errors
	// are rejected before any mutation.
	dim := p.primary.Dimension()
	seen := make(map[string]struct{}, len(points))
	duplicates := 0
	memories := make([]*models.Memory, 0, len(points))
	for _, pt := range points {
		mem := pointToMemory(pt)
		if len(mem.Embedding) != dim {
			return nil, fmt.Errorf("%w: point %s has %d dimensions, primary store configured for %d",
				models.ErrDimensionMismatch, mem.ID, len(mem.Embedding), dim)
		}
		fp := fingerprint.ForMemory(mem)
		if stored, ok := pt.Payload[vectorstore.PayloadFingerprint].(string); ok && stored != fp {
			p.logger.Warn("stored fingerprint disagrees with recomputed one",
				"id", mem.ID, "stored", stored, "recomputed", fp)
		}
		if _, dup := seen[fp]; dup {
			duplicates++
			continue
		}
		seen[fp] = struct{}{}
		memories = append(memories, mem)
	}

	if err := p.primary.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clear primary store: %w", err)
	}

	inserted := 0
	for _, mem := range memories {
		if err := p.primary.Insert(ctx, mem); err != nil {
			if mErr := p.metrics.AddHydrate(inserted, duplicates); mErr != nil {
				p.logger.Warn("hydrate metrics update failed", "error", mErr)
			}
			p.logger.Error("hydrate failed mid-run",
				"inserted", inserted, "expected", len(memories), "error", err)

			return &models.HydrateResult{
					RestoredCount:    inserted,
					DuplicateCount:   duplicates,
					DedupRate:        dedupRate(inserted, duplicates),
					VectorsProcessed: len(points),
				}, &models.PartialHydrateError{
					Inserted: inserted,
					Expected: len(memories),
					Err:      err,
				}
		}
		inserted++
	}

	if err := p.metrics.AddHydrate(inserted, duplicates); err != nil {
		p.logger.Warn("hydrate metrics update failed", "error", err)
	}
	if err := p.settings.BindIndex(index, namespace); err != nil {
		return nil, fmt.Errorf("bind index after hydrate: %w", err)
	}

	result := &models.HydrateResult{
		RestoredCount:    inserted,
		DuplicateCount:   duplicates,
		DedupRate:        dedupRate(inserted, duplicates),
		VectorsProcessed: len(points),
	}
	p.logger.Info("hydrate completed",
		"index", index, "namespace", namespace,
		"restored", inserted, "duplicates", duplicates)
	return result, nil
}

func pointToMemory(pt vectorstore.Point) *models.Memory {
	mem := &models.Memory{
		ID:        pt.ID,
		Embedding: pt.Vector,
	}
	if v, ok := pt.Payload[vectorstore.PayloadContent].(string); ok {
		mem.Content = v
	}
	if v, ok := pt.Payload[vectorstore.PayloadType].(string); ok {
		mem.Type = models.MemoryType(v)
	}
	if v, ok := pt.Payload[vectorstore.PayloadOriginID].(string); ok {
		mem.OriginMessageID = v
	}
	switch ts := pt.Payload[vectorstore.PayloadTimestamp].(type) {
	case float64: // JSON numbers decode as float64
		mem.Timestamp = int64(ts)
	case int64:
		mem.Timestamp = ts
	case int:
		mem.Timestamp = int64(ts)
	}
	if raw, ok := pt.Payload[vectorstore.PayloadMetadata].(map[string]any); ok {
		meta := make(map[string]string, len(raw))
		for k, v := range raw {
			if s, ok := v.(string); ok {
				meta[k] = s
			}
		}
		mem.Metadata = meta
	}
	return mem
}
