package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archdraw/pkg/arch"
	"github.com/matzehuels/archdraw/pkg/cache"
	"github.com/matzehuels/archdraw/pkg/drawio"
	"github.com/matzehuels/archdraw/pkg/errors"
	"github.com/matzehuels/archdraw/pkg/geom"
	"github.com/matzehuels/archdraw/pkg/layout"
	"github.com/matzehuels/archdraw/pkg/observability"
	"github.com/matzehuels/archdraw/pkg/reconstruct"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeDocument = "document"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Render runs build, layout, synthesis, and encoding with caching.
func (r *Runner) Render(ctx context.Context, d arch.Diagram, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result, layoutKey, err := r.layout(ctx, d, &opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, result.Stats.NodeCount)
	doc, data, hit, err := r.document(ctx, result, layoutKey, &opts)
	result.Stats.RenderTime = time.Since(start)
	if err != nil {
		observability.Pipeline().OnRenderComplete(ctx, 0, result.Stats.RenderTime, err)
		return nil, err
	}
	result.Document = doc
	result.Data = data
	result.Stats.CellCount = doc.Len()
	result.CacheInfo.DocumentHit = hit
	observability.Pipeline().OnRenderComplete(ctx, result.Stats.CellCount, result.Stats.RenderTime, nil)

	opts.Logger.Info("rendered document",
		"cells", result.Stats.CellCount,
		"bytes", len(data),
		"compressed", opts.Compressed,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Layout runs build and layout with caching. The result carries no
// document.
func (r *Runner) Layout(ctx context.Context, d arch.Diagram, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	result, _, err := r.layout(ctx, d, &opts)
	return result, err
}

func (r *Runner) layout(ctx context.Context, d arch.Diagram, opts *Options) (*Result, string, error) {
	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, len(d.Layers)+len(d.Boxes)+len(d.Components))

	result, key, err := r.computeLayout(ctx, d, opts)
	elapsed := time.Since(start)
	if err != nil {
		observability.Pipeline().OnLayoutComplete(ctx, 0, elapsed, err)
		return nil, "", err
	}
	result.Stats.LayoutTime = elapsed
	observability.Pipeline().OnLayoutComplete(ctx, result.Stats.NodeCount, elapsed, nil)

	opts.Logger.Info("computed layout",
		"nodes", result.Stats.NodeCount,
		"connections", result.Stats.ConnectionCount,
		"crossings", result.Crossings,
		"cached", result.CacheInfo.LayoutHit,
		"duration", elapsed)
	for _, w := range result.Warnings {
		opts.Logger.Debug("record warning", "type", w.Type, "node", w.NodeID, "message", w.Message)
	}
	return result, key, nil
}

func (r *Runner) computeLayout(ctx context.Context, d arch.Diagram, opts *Options) (*Result, string, error) {
	f, err := arch.Build(d)
	if err != nil {
		return nil, "", err
	}

	recordsHash, err := cache.HashJSON(d)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "hash records")
	}

	width, height := opts.Canvas(d.Config)
	key := r.Keyer.LayoutKey(recordsHash, opts.LayoutKeyOpts(width, height))

	result := &Result{
		Forest:      f,
		RecordsHash: recordsHash,
		Warnings:    arch.Validate(d),
		Stats: Stats{
			NodeCount:       f.Len(),
			ConnectionCount: len(f.Connections),
		},
	}

	rects, hit := r.cachedRects(ctx, key, opts)
	if !hit {
		opts.stage(StageEvent{
			Stage:       StageLayout,
			Elements:    result.Stats.NodeCount,
			Connections: result.Stats.ConnectionCount,
		})
		rects, err = layout.Compute(f, width, height, opts.LayoutOptions()...)
		if err != nil {
			return nil, "", err
		}
		if data, err := json.Marshal(rects); err == nil {
			r.store(ctx, keyTypeLayout, key, data, cache.LayoutTTL, opts)
		}
	}
	result.Rects = rects
	result.CacheInfo.LayoutHit = hit

	result.Crossings = layout.EstimateCrossings(rects, f.Connections)
	if w, ok := arch.CrossingWarning(result.Crossings); ok {
		result.Warnings = append(result.Warnings, w)
	}
	return result, key, nil
}

func (r *Runner) cachedRects(ctx context.Context, key string, opts *Options) (map[string]geom.Rect, bool) {
	data, hit := r.lookup(ctx, keyTypeLayout, key, opts)
	if !hit {
		return nil, false
	}
	var rects map[string]geom.Rect
	if err := json.Unmarshal(data, &rects); err != nil {
		// Undecodable entry; recompute and overwrite
		return nil, false
	}
	return rects, true
}

func (r *Runner) document(ctx context.Context, result *Result, layoutKey string, opts *Options) (*drawio.Document, []byte, bool, error) {
	key := r.Keyer.DocumentKey(layoutKey, opts.DocumentKeyOpts())

	if data, hit := r.lookup(ctx, keyTypeDocument, key, opts); hit {
		if doc, err := drawio.Unmarshal(data); err == nil {
			return doc, data, true, nil
		}
	}

	width, height := result.Forest.Width, result.Forest.Height
	if opts.Width > 0 {
		width = opts.Width
	}
	if opts.Height > 0 {
		height = opts.Height
	}
	ev := StageEvent{
		Stage:       StageSynthesize,
		Elements:    result.Stats.NodeCount,
		Connections: result.Stats.ConnectionCount,
		Crossings:   result.Crossings,
	}
	opts.stage(ev)
	doc := drawio.Synthesize(result.Forest, result.Rects, opts.SynthOptions(width, height)...)

	ev.Stage, ev.Cells = StageEncode, doc.Len()
	opts.stage(ev)
	data, err := opts.Encode(doc)
	if err != nil {
		return nil, nil, false, errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	r.store(ctx, keyTypeDocument, key, data, cache.DocumentTTL, opts)
	return doc, data, false, nil
}

// Merge composes two documents. See [drawio.Merge].
func (r *Runner) Merge(ctx context.Context, base, addition *drawio.Document, opts ...drawio.MergeOption) *drawio.Document {
	start := time.Now()
	merged := drawio.Merge(base, addition, opts...)
	elapsed := time.Since(start)

	cells := 0
	if !merged.IsEmpty() {
		cells = merged.Len()
	}
	observability.Pipeline().OnMerge(ctx, cells, elapsed)
	r.Logger.Info("merged documents", "cells", cells, "duration", elapsed)
	return merged
}

// Reconstruct recovers a record set from doc. See [reconstruct.Reconstruct].
func (r *Runner) Reconstruct(ctx context.Context, doc *drawio.Document) *arch.Diagram {
	start := time.Now()
	d := reconstruct.Reconstruct(doc)
	elapsed := time.Since(start)

	cells := 0
	if !doc.IsEmpty() {
		cells = doc.Len()
	}
	observability.Pipeline().OnReconstruct(ctx, cells, elapsed)
	r.Logger.Info("reconstructed records",
		"layers", len(d.Layers),
		"boxes", len(d.Boxes),
		"components", len(d.Components),
		"connections", len(d.Connections),
		"duration", elapsed)
	return d
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lookup reads key unless a refresh was requested. Backend errors are
// logged and treated as misses.
func (r *Runner) lookup(ctx context.Context, keyType, key string, opts *Options) ([]byte, bool) {
	if opts.Refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("cache read failed", "type", keyType, "error", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration, opts *Options) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		opts.Logger.Warn("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
