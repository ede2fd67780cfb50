// Package pipeline provides the diagram pipeline shared by the CLI and the
// HTTP server.
//
// The pipeline runs the core operations in a fixed order:
//
//  1. Build: resolve records into a containment forest ([arch.Build])
//  2. Layout: compute absolute rectangles ([layout.Compute])
//  3. Synthesize: emit the draw.io document ([drawio.Synthesize])
//  4. Encode: serialize the document, plain or compressed
//
// Layouts and encoded documents are cached by content hash, so repeated
// renders of the same record set skip the work. Warnings from
// [arch.Validate] and the crossing estimate travel with the result.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Render(ctx, diagram, pipeline.Options{Compressed: true})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("arch.drawio", result.Data, 0644)
//
// Merge and reconstruction are wrapped the same way:
//
//	merged := runner.Merge(ctx, base, addition)
//	records := runner.Reconstruct(ctx, doc)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archdraw/pkg/arch"
	"github.com/matzehuels/archdraw/pkg/cache"
	"github.com/matzehuels/archdraw/pkg/drawio"
	"github.com/matzehuels/archdraw/pkg/errors"
	"github.com/matzehuels/archdraw/pkg/geom"
	"github.com/matzehuels/archdraw/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMarginLeft and DefaultMarginRight are the row margins in percent.
	DefaultMarginLeft  = layout.DefaultMargin
	DefaultMarginRight = layout.DefaultMargin

	// DefaultGap is the gap between row items in percent.
	DefaultGap = layout.DefaultGap

	// MaxCanvas bounds the canvas in either dimension.
	MaxCanvas = 100000.0
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the diagram pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options. Width and Height override the record set's config
	// when positive. Nil margins and gap take the defaults.
	Width       float64  `json:"width,omitempty"`
	Height      float64  `json:"height,omitempty"`
	MarginLeft  *float64 `json:"margin_left,omitempty"`
	MarginRight *float64 `json:"margin_right,omitempty"`
	Gap         *float64 `json:"gap,omitempty"`

	// Render options
	Compressed bool   `json:"compressed,omitempty"`
	DiagramID  string `json:"diagram_id,omitempty"`

	// Refresh bypasses cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
	// OnStage, when set, is called as each uncached stage begins.
	OnStage func(StageEvent) `json:"-"`
	// Now stamps the document's modified time; defaults to time.Now.
	Now func() time.Time `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Stage names a step of a pipeline run.
type Stage string

const (
	StageLayout     Stage = "layout"
	StageSynthesize Stage = "synthesize"
	StageEncode     Stage = "encode"
)

// StageEvent reports a stage with the counts known when it begins.
// Crossings is set from StageSynthesize on, Cells from StageEncode on.
type StageEvent struct {
	Stage       Stage
	Elements    int
	Connections int
	Crossings   int
	Cells       int
}

func (o *Options) stage(ev StageEvent) {
	if o.OnStage != nil {
		o.OnStage(ev)
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Forest is the resolved containment tree.
	Forest *arch.Forest

	// RecordsHash is the content hash of the record set.
	RecordsHash string

	// Rects holds the absolute rectangle of every node.
	Rects map[string]geom.Rect

	// Document is the synthesized document. Nil after Layout.
	Document *drawio.Document

	// Data is the encoded document. Nil after Layout.
	Data []byte

	// Crossings is the estimated number of connection crossings.
	Crossings int

	// Warnings lists record anomalies and the crossing warning.
	Warnings []arch.Warning

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount       int
	ConnectionCount int
	CellCount       int
	LayoutTime      time.Duration
	RenderTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit   bool // Whether rectangles came from cache
	DocumentHit bool // Whether the encoded document came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks option values and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.MarginLeft == nil {
		o.MarginLeft = arch.Float(DefaultMarginLeft)
	}
	if o.MarginRight == nil {
		o.MarginRight = arch.Float(DefaultMarginRight)
	}
	if o.Gap == nil {
		o.Gap = arch.Float(DefaultGap)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout sets layout defaults and checks the canvas and row
// parameters.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas size must not be negative")
	}
	if o.Width > MaxCanvas || o.Height > MaxCanvas {
		return errors.New(errors.ErrCodeInvalidInput, "canvas size exceeds %.0f", MaxCanvas)
	}
	for _, p := range []*float64{o.MarginLeft, o.MarginRight, o.Gap} {
		if *p < 0 || *p > 100 {
			return errors.New(errors.ErrCodeInvalidInput, "margins and gap must be within 0..100 percent")
		}
	}
	if *o.MarginLeft+*o.MarginRight >= 100 {
		return errors.New(errors.ErrCodeInvalidInput, "margins leave no room for row items")
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Canvas returns the effective canvas size for a record set config.
func (o *Options) Canvas(cfg arch.Config) (float64, float64) {
	cfg = cfg.WithDefaults()
	w, h := cfg.Width, cfg.Height
	if o.Width > 0 {
		w = o.Width
	}
	if o.Height > 0 {
		h = o.Height
	}
	return w, h
}

// LayoutOptions returns the layout engine options.
func (o *Options) LayoutOptions() []layout.Option {
	o.SetLayoutDefaults()
	return []layout.Option{
		layout.WithMargins(*o.MarginLeft, *o.MarginRight),
		layout.WithGap(*o.Gap),
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts(width, height float64) cache.LayoutKeyOpts {
	o.SetLayoutDefaults()
	return cache.LayoutKeyOpts{
		Width:       width,
		Height:      height,
		MarginLeft:  *o.MarginLeft,
		MarginRight: *o.MarginRight,
		Gap:         *o.Gap,
	}
}

// DocumentKeyOpts returns cache key options for document rendering.
func (o *Options) DocumentKeyOpts() cache.DocumentKeyOpts {
	return cache.DocumentKeyOpts{
		Compressed: o.Compressed,
		DiagramID:  o.DiagramID,
	}
}

// SynthOptions returns the synthesizer options for a canvas.
func (o *Options) SynthOptions(width, height float64) []drawio.Option {
	o.SetRenderDefaults()
	opts := []drawio.Option{
		drawio.WithPageSize(width, height),
		drawio.WithModified(o.Now()),
	}
	if o.DiagramID != "" {
		opts = append(opts, drawio.WithDiagramID(o.DiagramID))
	}
	return opts
}

// Encode serializes doc as the options request.
func (o *Options) Encode(doc *drawio.Document) ([]byte, error) {
	if o.Compressed {
		return drawio.MarshalCompressed(doc)
	}
	return drawio.Marshal(doc)
}
