package pipeline

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archdraw/pkg/arch"
	"github.com/matzehuels/archdraw/pkg/cache"
	"github.com/matzehuels/archdraw/pkg/drawio"
	"github.com/matzehuels/archdraw/pkg/errors"
	"github.com/matzehuels/archdraw/pkg/observability"
)

var fixed = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.New(io.Discard))
}

// crossed has two connections whose origin segments intersect.
func crossed() arch.Diagram {
	return arch.Diagram{
		Config: arch.Config{Title: "Crossed", Width: 1000, Height: 600},
		Layers: []arch.Layer{
			{ID: "top", Name: "Top"},
			{ID: "bottom", Name: "Bottom"},
		},
		Boxes: []arch.Box{
			{ID: "a", Name: "A", ParentID: "top"},
			{ID: "b", Name: "B", ParentID: "top"},
			{ID: "c", Name: "C", ParentID: "bottom"},
			{ID: "d", Name: "D", ParentID: "bottom"},
		},
		Connections: []arch.Connection{
			{From: "a", To: "d"},
			{From: "b", To: "c"},
		},
	}
}

func TestRunnerRender(t *testing.T) {
	r := quietRunner(nil)
	result, err := r.Render(context.Background(), crossed(), Options{DiagramID: "fixed", Now: func() time.Time { return fixed }})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if result.Stats.NodeCount != 6 {
		t.Errorf("NodeCount = %d, want 6", result.Stats.NodeCount)
	}
	if len(result.Rects) != 6 {
		t.Errorf("len(Rects) = %d, want 6", len(result.Rects))
	}
	// 2 layers x (bg + header) + 4 childless boxes + 2 edges
	if result.Stats.CellCount != 10 {
		t.Errorf("CellCount = %d, want 10", result.Stats.CellCount)
	}
	if result.Document.ID != "fixed" {
		t.Errorf("Document.ID = %q, want fixed", result.Document.ID)
	}
	if !result.Document.Modified.Equal(fixed) {
		t.Errorf("Document.Modified = %v, want %v", result.Document.Modified, fixed)
	}
	if !bytes.Contains(result.Data, []byte("<mxGraphModel")) {
		t.Error("uncompressed output should contain the model inline")
	}

	if result.Crossings != 1 {
		t.Errorf("Crossings = %d, want 1", result.Crossings)
	}
	found := false
	for _, w := range result.Warnings {
		if w.Type == arch.WarnCrossings {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want a crossing warning", result.Warnings)
	}
}

func TestRunnerRenderCompressed(t *testing.T) {
	r := quietRunner(nil)
	result, err := r.Render(context.Background(), crossed(), Options{Compressed: true})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if bytes.Contains(result.Data, []byte("<mxGraphModel")) {
		t.Error("compressed output should not contain the model inline")
	}
	doc, err := drawio.Unmarshal(result.Data)
	if err != nil {
		t.Fatalf("Unmarshal(compressed) error: %v", err)
	}
	if doc.Len() != result.Document.Len() {
		t.Errorf("decoded cells = %d, want %d", doc.Len(), result.Document.Len())
	}
}

func TestRunnerCaching(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache()
	r := quietRunner(c)
	opts := Options{DiagramID: "same"}

	first, err := r.Render(ctx, crossed(), opts)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.DocumentHit {
		t.Errorf("first render CacheInfo = %+v, want misses", first.CacheInfo)
	}
	if c.Len() != 2 {
		t.Errorf("cache entries = %d, want 2", c.Len())
	}

	second, err := r.Render(ctx, crossed(), opts)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.DocumentHit {
		t.Errorf("second render CacheInfo = %+v, want hits", second.CacheInfo)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Error("cached document should be byte-identical")
	}
	if second.Crossings != first.Crossings {
		t.Errorf("cached Crossings = %d, want %d", second.Crossings, first.Crossings)
	}

	refreshed, err := r.Render(ctx, crossed(), Options{DiagramID: "same", Refresh: true})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if refreshed.CacheInfo.LayoutHit || refreshed.CacheInfo.DocumentHit {
		t.Errorf("refresh CacheInfo = %+v, want misses", refreshed.CacheInfo)
	}

	// A different gap is a different layout.
	other, err := r.Render(ctx, crossed(), Options{DiagramID: "same", Gap: arch.Float(4)})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if other.CacheInfo.LayoutHit {
		t.Error("changed gap should miss the layout cache")
	}
}

func TestRunnerStages(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(cache.NewMemoryCache())

	var got []StageEvent
	opts := Options{DiagramID: "same", OnStage: func(ev StageEvent) { got = append(got, ev) }}
	if _, err := r.Render(ctx, crossed(), opts); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	want := []StageEvent{
		{Stage: StageLayout, Elements: 6, Connections: 2},
		{Stage: StageSynthesize, Elements: 6, Connections: 2, Crossings: 1},
		{Stage: StageEncode, Elements: 6, Connections: 2, Crossings: 1, Cells: 10},
	}
	if len(got) != len(want) {
		t.Fatalf("stages = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stage %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	// Cached stages are not reported.
	got = nil
	if _, err := r.Render(ctx, crossed(), opts); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("cached render stages = %+v, want none", got)
	}
}

func TestRunnerCorruptCacheEntry(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache()
	r := quietRunner(c)

	first, err := r.Layout(ctx, crossed(), Options{})
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	key := r.Keyer.LayoutKey(first.RecordsHash, cache.LayoutKeyOpts{
		Width: 1000, Height: 600,
		MarginLeft: DefaultMarginLeft, MarginRight: DefaultMarginRight, Gap: DefaultGap,
	})
	_ = c.Set(ctx, key, []byte("not json"), 0)

	again, err := r.Layout(ctx, crossed(), Options{})
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if again.CacheInfo.LayoutHit {
		t.Error("corrupt entry should be recomputed")
	}
	if len(again.Rects) != len(first.Rects) {
		t.Errorf("len(Rects) = %d, want %d", len(again.Rects), len(first.Rects))
	}
}

func TestRunnerLayoutHasNoDocument(t *testing.T) {
	result, err := quietRunner(nil).Layout(context.Background(), crossed(), Options{Width: 2000})
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if result.Document != nil || result.Data != nil {
		t.Error("Layout should not synthesize a document")
	}
	if got := result.Rects["top"].Width; got != 2000 {
		t.Errorf("layer width = %v, want canvas override 2000", got)
	}
}

func TestRunnerErrors(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(nil)

	cyclic := arch.Diagram{
		Layers: []arch.Layer{{ID: "l", Name: "L"}},
		Boxes: []arch.Box{
			{ID: "a", Name: "A", ParentID: "b"},
			{ID: "b", Name: "B", ParentID: "a"},
		},
	}
	if _, err := r.Render(ctx, cyclic, Options{}); !errors.IsStructural(err) {
		t.Errorf("cycle error = %v, want STRUCTURAL", err)
	}

	mixed := arch.Diagram{
		Layers: []arch.Layer{{ID: "l", Name: "L"}},
		Boxes: []arch.Box{
			{ID: "a", Name: "A", ParentID: "l", Placement: arch.Placement{Row: arch.Int(1)}},
			{ID: "b", Name: "B", ParentID: "l", Placement: arch.Placement{XPercent: arch.Float(10), WidthPercent: arch.Float(20)}},
		},
	}
	if _, err := r.Render(ctx, mixed, Options{}); !errors.IsUnsupportedInput(err) {
		t.Errorf("mixed placement error = %v, want UNSUPPORTED_INPUT", err)
	}

	if _, err := r.Render(ctx, crossed(), Options{Width: -5}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("negative width error = %v, want INVALID_INPUT", err)
	}
}

func TestRunnerMergeAndReconstruct(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(nil)

	result, err := r.Render(ctx, crossed(), Options{})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	merged := r.Merge(ctx, result.Document, result.Document)
	if merged.Len() != 2*result.Document.Len() {
		t.Errorf("merged cells = %d, want %d", merged.Len(), 2*result.Document.Len())
	}

	d := r.Reconstruct(ctx, result.Document)
	if len(d.Layers) != 2 {
		t.Errorf("reconstructed layers = %d, want 2", len(d.Layers))
	}
	if len(d.Connections) != 2 {
		t.Errorf("reconstructed connections = %d, want 2", len(d.Connections))
	}

	if empty := r.Reconstruct(ctx, nil); len(empty.Layers) != 0 {
		t.Errorf("Reconstruct(nil) layers = %d, want 0", len(empty.Layers))
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	h.events = append(h.events, e)
	h.mu.Unlock()
}

func (h *recordingHooks) OnLayoutStart(context.Context, int) { h.record("layout-start") }
func (h *recordingHooks) OnLayoutComplete(context.Context, int, time.Duration, error) {
	h.record("layout-done")
}
func (h *recordingHooks) OnRenderStart(context.Context, int) { h.record("render-start") }
func (h *recordingHooks) OnRenderComplete(context.Context, int, time.Duration, error) {
	h.record("render-done")
}

func TestRunnerHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	if _, err := quietRunner(nil).Render(context.Background(), crossed(), Options{}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	want := []string{"layout-start", "layout-done", "render-start", "render-done"}
	if len(hooks.events) != len(want) {
		t.Fatalf("events = %v, want %v", hooks.events, want)
	}
	for i := range want {
		if hooks.events[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, hooks.events[i], want[i])
		}
	}
}
