// Package syncer reconciles the recipe collection with flat JSON files:
// export scans the collection into a snapshot file, import replays a
// snapshot record by record with a per-record outcome manifest.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tastebase/recipedex/internal/codec"
	"github.com/tastebase/recipedex/internal/domain"
	"github.com/tastebase/recipedex/internal/domain/syncrun"
)

// exportBatch is the page size used when scanning the collection.
const exportBatch = 200

// defaultImportWorkers bounds concurrent upserts during import.
const defaultImportWorkers = 4

// snapshot is the on-disk file format.
type snapshot struct {
	Recipes []json.RawMessage `json:"recipes"`
}

// Progress receives per-record completion ticks during long runs. The
// signature matches progressbar's Add; a nil Progress is valid.
type Progress interface {
	Add(n int) error
}

// Service handles collection export and import.
type Service struct {
	repo    Repository
	ingest  Ingestor
	workers int
	logger  *zap.Logger
}

// New creates a syncer service.
func New(repo Repository, ingest Ingestor, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		ingest:  ingest,
		workers: defaultImportWorkers,
		logger:  logger,
	}
}

// WithWorkers overrides the import concurrency bound.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// Export writes every stored recipe to path as one JSON snapshot. The file
// is written to a temp sibling and renamed, so readers never see a partial
// snapshot. Cancellation between batches abandons the temp file.
func (s *Service) Export(ctx context.Context, path string, progress Progress) (int, error) {
	snap := snapshot{Recipes: []json.RawMessage{}}

	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("%w: %w", domain.ErrSyncCancelled, err)
		}

		records, next, err := s.repo.GetAll(ctx, cursor, exportBatch)
		if err != nil {
			return 0, fmt.Errorf("scan recipes: %w", err)
		}

		for _, rec := range records {
			body := rec.JSON
			if body == "" {
				// Older records carry only flattened metadata.
				r, err := codec.Decode(rec.Metadata)
				if err != nil {
					s.logger.Warn("skipping unreadable record",
						zap.String("id", rec.ID), zap.Error(err))
					continue
				}
				body, err = codec.EncodeJSON(&r)
				if err != nil {
					s.logger.Warn("skipping unencodable record",
						zap.String("id", rec.ID), zap.Error(err))
					continue
				}
			}
			snap.Recipes = append(snap.Recipes, json.RawMessage(body))
			if progress != nil {
				_ = progress.Add(1)
			}
		}

		if next == "" {
			break
		}
		cursor = next
	}

	if err := writeSnapshot(path, &snap); err != nil {
		return 0, err
	}
	return len(snap.Recipes), nil
}

// Import replays a snapshot file into the collection with bounded
// concurrency. Each record gets an outcome in the manifest; one bad record
// never aborts the run. Cancellation stops dispatch and returns the partial
// manifest wrapped in ErrSyncCancelled.
func (s *Service) Import(ctx context.Context, path string, progress Progress) (*syncrun.Manifest, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}

	manifest := &syncrun.Manifest{SourceCount: len(snap.Recipes)}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, raw := range snap.Recipes {
		if err := gctx.Err(); err != nil {
			break
		}

		i, raw := i, raw
		g.Go(func() error {
			result := s.importOne(gctx, i, raw)
			mu.Lock()
			manifest.Add(result)
			mu.Unlock()
			if progress != nil {
				_ = progress.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return manifest, err
	}
	if err := ctx.Err(); err != nil {
		return manifest, fmt.Errorf("%w: %w", domain.ErrSyncCancelled, err)
	}
	return manifest, nil
}

// importOne parses and stores a single snapshot entry.
func (s *Service) importOne(ctx context.Context, idx int, raw json.RawMessage) syncrun.Result {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		id := fmt.Sprintf("#%d", idx)
		s.logger.Warn("skipping malformed snapshot entry",
			zap.Int("index", idx), zap.Error(err))
		return syncrun.NewFailed(id, err)
	}

	rec, err := s.ingest.Ingest(ctx, m)
	if err != nil {
		id, _ := m["id"].(string)
		if id == "" {
			id = fmt.Sprintf("#%d", idx)
		}
		if errors.Is(err, context.Canceled) {
			return syncrun.NewSkipped(id)
		}
		s.logger.Warn("skipping snapshot entry",
			zap.String("id", id), zap.Error(err))
		return syncrun.NewFailed(id, err)
	}
	return syncrun.NewOK(rec.ID())
}

// Count returns the number of stored recipes, for progress bar sizing.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// writeSnapshot writes the snapshot atomically via temp file and rename.
func writeSnapshot(path string, snap *snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".recipedex-export-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("finalize snapshot %s: %w", path, err)
	}
	return nil
}
