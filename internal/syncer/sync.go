package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/fingerprint"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/vectorstore"
)

// Primary is the slice of the working-memory store the pipelines use.
type Primary interface {
	List(ctx context.Context) []*models.Memory
	Insert(ctx context.Context, mem *models.Memory) error
	Clear(ctx context.Context) error
	Count() int
	Dimension() int
}

// Secondary is the slice of the durable store the pipelines use.
type Secondary interface {
	IndexExists(ctx context.Context, name string) (bool, error)
	FetchFingerprints(ctx context.Context, index, namespace string) (map[string]struct{}, error)
	Upsert(ctx context.Context, index string, points []vectorstore.Point) error
	Count(ctx context.Context, index, namespace string) (int, error)
	Scroll(ctx context.Context, index, namespace string, limit int) ([]vectorstore.Point, error)
}

// Binder updates the active index binding after a successful operation.
type Binder interface {
	BindIndex(index, namespace string) error
}

// Recorder accumulates the persistent dedup counters.
type Recorder interface {
	AddSync(pushed, duplicates int) error
	AddHydrate(restored, duplicates int) error
}

const defaultBatchSize = 100

// Pipeline runs sync and hydrate under the operation lock.
type Pipeline struct {
	lock      *LockManager
	primary   Primary
	secondary Secondary
	settings  Binder
	metrics   Recorder
	batchSize int
	logger    *slog.Logger
}

func NewPipeline(lock *LockManager, primary Primary, secondary Secondary, settings Binder, metrics Recorder, batchSize int, logger *slog.Logger) *Pipeline {
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}
	return &Pipeline{
		lock:      lock,
		primary:   primary,
		secondary: secondary,
		settings:  settings,
		metrics:   metrics,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Current exposes the in-flight operation for the status endpoint.
func (p *Pipeline) Current() *models.SyncOperation {
	return p.lock.Current()
}

// Sync pushes the primary store's memories into an index namespace, skipping
// any whose fingerprint already exists there. Idempotent: re-running against
// the same namespace pushes nothing new. On a batch failure the
// already-pushed vectors stay in place and a PartialSyncError reports the
// counts.
func (p *Pipeline) Sync(ctx context.Context, index, namespace string) (*models.SyncResult, error) {
	if _, err := p.lock.Begin(models.OperationSync, index, namespace); err != nil {
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

	seen, err := p.secondary.FetchFingerprints(ctx, index, namespace)
	if err != nil {
		return nil, err
	}

	memories := p.primary.List(ctx)
	sort.Slice(memories, func(i, j int) bool {
		if memories[i].Timestamp != memories[j].Timestamp {
			return memories[i].Timestamp < memories[j].Timestamp
		}
		return memories[i].ID < memories[j].ID
	})

	p.logger.Info("sync started",
		"index", index, "namespace", namespace,
		"candidates", len(memories), "existingFingerprints", len(seen))

	pushed := 0
	duplicates := 0
	batch := make([]vectorstore.Point, 0, p.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.secondary.Upsert(ctx, index, batch); err != nil {
			return err
		}
		pushed += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, mem := range memories {
		fp := fingerprint.ForMemory(mem)
		if _, dup := seen[fp]; dup {
			duplicates++
			continue
		}
		seen[fp] = struct{}{} // dedup within the run too

		batch = append(batch, memoryToPoint(mem, namespace, fp))
		if len(batch) >= p.batchSize {
			if err := flush(); err != nil {
				return p.syncFailed(pushed, duplicates, len(batch), err)
			}
		}
	}
	if err := flush(); err != nil {
		return p.syncFailed(pushed, duplicates, len(batch), err)
	}

	total, err := p.secondary.Count(ctx, index, namespace)
	if err != nil {
		p.logger.Warn("post-sync count failed", "error", err)
		total = -1
	}

	if err := p.metrics.AddSync(pushed, duplicates); err != nil {
		p.logger.Warn("sync metrics update failed", "error", err)
	}
	if err := p.settings.BindIndex(index, namespace); err != nil {
		return nil, fmt.Errorf("bind index after sync: %w", err)
	}

	result := &models.SyncResult{
		PushedCount:         pushed,
		DuplicateCount:      duplicates,
		DedupRate:           dedupRate(pushed, duplicates),
		TotalVectorsInIndex: total,
	}
	p.logger.Info("sync completed",
		"index", index, "namespace", namespace,
		"pushed", pushed, "duplicates", duplicates, "total", total)
	return result, nil
}

func (p *Pipeline) syncFailed(pushed, duplicates, failed int, err error) (*models.SyncResult, error) {
	if mErr := p.metrics.AddSync(pushed, duplicates); mErr != nil {
		p.logger.Warn("sync metrics update failed", "error", mErr)
	}
	p.logger.Error("sync failed mid-run",
		"pushed", pushed, "duplicates", duplicates, "failedBatch", failed, "error", err)

	return &models.SyncResult{
			PushedCount:    pushed,
			DuplicateCount: duplicates,
			DedupRate:      dedupRate(pushed, duplicates),
		}, &models.PartialSyncError{
			Pushed:     pushed,
			Duplicates: duplicates,
			Failed:     failed,
			Err:        err,
		}
}

func dedupRate(kept, duplicates int) float64 {
	processed := kept + duplicates
	if processed == 0 {
		return 0
	}
	return float64(duplicates) / float64(processed)
}

func memoryToPoint(mem *models.Memory, namespace, fp string) vectorstore.Point {
	payload := map[string]any{
		vectorstore.PayloadContent:     mem.Content,
		vectorstore.PayloadType:        string(mem.Type),
		vectorstore.PayloadOriginID:    mem.OriginMessageID,
		vectorstore.PayloadTimestamp:   mem.Timestamp,
		vectorstore.PayloadFingerprint: fp,
		vectorstore.PayloadNamespace:   namespace,
	}
	if len(mem.Metadata) > 0 {
		meta := make(map[string]any, len(mem.Metadata))
		for k, v := range mem.Metadata {
			meta[k] = v
		}
		payload[vectorstore.PayloadMetadata] = meta
	}
	return vectorstore.Point{
		ID:      mem.ID,
		Vector:  mem.Embedding,
		Payload: payload,
	}
}
