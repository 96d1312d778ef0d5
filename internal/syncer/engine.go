package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ytsync/internal/config"
	"ytsync/internal/index"
	"ytsync/internal/logging"
	"ytsync/internal/services"
	"ytsync/internal/services/ytdlp"
	"ytsync/internal/textutil"
)

// AcquisitionClient is the capability the engine needs from the
// acquisition tool: ordered playlist enumeration and single-item fetch.
// FetchItem returns nil when the item is present locally afterwards,
// including the tool's "already satisfied" outcome.
type AcquisitionClient interface {
	ListPlaylist(ctx context.Context, playlistID string) ([]ytdlp.Item, error)
	FetchItem(ctx context.Context, itemID, destDir string, format config.MediaFormat) error
}

// Option configures the engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProgress installs a callback invoked after each item of a target
// is reconciled, with the number of items handled so far and the total.
func WithProgress(progress func(done, total int)) Option {
	return func(e *Engine) {
		e.progress = progress
	}
}

// WithResultHandler installs a callback invoked after each target
// completes successfully, before the next target starts.
func WithResultHandler(handler func(Result)) Option {
	return func(e *Engine) {
		e.onResult = handler
	}
}

// Engine reconciles sync targets one at a time, items in playlist order.
type Engine struct {
	client   AcquisitionClient
	logger   *slog.Logger
	progress func(done, total int)
	onResult func(Result)
}

// New constructs a sync engine.
func New(client AcquisitionClient, opts ...Option) (*Engine, error) {
	if client == nil {
		return nil, errors.New("acquisition client required")
	}
	engine := &Engine{
		client: client,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// Result reports the outcome of one target's reconciliation.
type Result struct {
	PlaylistID string
	Location   string
	// Total is the number of items in the remote playlist.
	Total int
	// Present counts items already satisfied by the pre-run snapshot.
	Present int
	// Fetched counts items newly downloaded during this run.
	Fetched int
	// Failed counts items whose fetch failed and were skipped.
	Failed int
	// IndexPath is the written index file, empty when none was requested.
	IndexPath string
	// StartedAt and FinishedAt bound the target's reconciliation.
	StartedAt  time.Time
	FinishedAt time.Time
}

// Summary returns the human-readable completion message for the target.
func (r Result) Summary() string {
	if r.Fetched == 1 {
		return fmt.Sprintf("1 new item synced to %s", r.Location)
	}
	return fmt.Sprintf("%d new items synced to %s", r.Fetched, r.Location)
}

// Sync reconciles every target in order. A failing target is skipped,
// the remaining targets still run, and the joined error reports every
// target-level failure so the process can exit non-zero.
func (e *Engine) Sync(ctx context.Context, targets []config.Target) ([]Result, error) {
	results := make([]Result, 0, len(targets))
	var errs []error
	for _, target := range targets {
		result, err := e.SyncTarget(ctx, target)
		if err != nil {
			e.logger.Error("playlist sync failed", "playlist", target.PlaylistID, "error", err)
			errs = append(errs, fmt.Errorf("playlist %s: %w", target.PlaylistID, err))
			continue
		}
		results = append(results, *result)
		if e.onResult != nil {
			e.onResult(*result)
		}
	}
	return results, errors.Join(errs...)
}

// SyncTarget reconciles a single target: list remote items, snapshot the
// local directory, fetch what is missing, and maintain the index file.
// Item fetch failures are absorbed; everything else aborts the target.
func (e *Engine) SyncTarget(ctx context.Context, target config.Target) (*Result, error) {
	started := time.Now()
	log := e.logger.With("playlist", target.PlaylistID, "location", target.Location)
	log.Info("syncing playlist")

	if err := os.MkdirAll(target.Location, 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, "syncer", "create location", target.Location, err)
	}

	items, err := e.client.ListPlaylist(ctx, target.PlaylistID)
	if err != nil {
		return nil, err
	}
	if log.Enabled(ctx, slog.LevelDebug) {
		titles := make([]string, len(items))
		for i, item := range items {
			titles[i] = item.Title
		}
		log.Debug("playlist contains", "count", len(items), "titles", titles)
	}

	snapshot, err := ScanLocation(target.Location)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "syncer", "scan location", target.Location, err)
	}
	log.Debug("directory scanned", "files", len(snapshot))

	var idx *index.Writer
	if target.SavePlaylist {
		idx, err = index.Create(target.Location)
		if err != nil {
			return nil, services.Wrap(services.ErrIO, "syncer", "create index", target.Location, err)
		}
		defer func() {
			if idx != nil {
				_ = idx.Close()
			}
		}()
	}

	result := &Result{
		PlaylistID: target.PlaylistID,
		Location:   target.Location,
		Total:      len(items),
		StartedAt:  started,
	}

	for i, item := range items {
		fileName := itemFileName(item, target.Format)
		if _, ok := snapshot[fileName]; ok {
			result.Present++
			if err := e.record(idx, target.Location, fileName); err != nil {
				return nil, err
			}
		} else if err := e.client.FetchItem(ctx, item.ID, target.Location, target.Format); err != nil {
			result.Failed++
			log.Warn("item fetch failed, skipping", "item", item.ID, "title", item.Title, "error", err)
		} else {
			result.Fetched++
			log.Debug("fetched item", "file", fileName)
			if err := e.record(idx, target.Location, fileName); err != nil {
				return nil, err
			}
		}
		if e.progress != nil {
			e.progress(i+1, len(items))
		}
	}

	if idx != nil {
		result.IndexPath = idx.Path()
		err := idx.Close()
		idx = nil
		if err != nil {
			return nil, services.Wrap(services.ErrIO, "syncer", "close index", result.IndexPath, err)
		}
	}

	result.FinishedAt = time.Now()
	log.Info("playlist synced", "total", result.Total, "present", result.Present,
		"fetched", result.Fetched, "failed", result.Failed)
	return result, nil
}

// record appends a satisfied item to the index when one is being kept.
// Index write failures are fatal to the target: a partial index would
// silently misrepresent local state.
func (e *Engine) record(idx *index.Writer, location, fileName string) error {
	if idx == nil {
		return nil
	}
	if err := idx.Add(filepath.Join(location, fileName)); err != nil {
		return services.Wrap(services.ErrIO, "syncer", "write index", idx.Path(), err)
	}
	return nil
}

// itemFileName computes the on-disk name the acquisition tool produces
// for an item. This string is the join key between remote items and
// local files. Titles arrive sanitized from the lister; sanitizing again
// here is a no-op for those and keeps the invariant even for clients
// that skip ingestion sanitization.
func itemFileName(item ytdlp.Item, format config.MediaFormat) string {
	return fmt.Sprintf("%s [%s].%s", textutil.SanitizeFileName(item.Title), item.ID, format.Extension())
}
