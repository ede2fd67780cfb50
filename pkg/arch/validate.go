package arch

import (
	"fmt"
	"math"

	"github.com/matzehuels/archdraw/pkg/errors"
)

// Warning thresholds.
const (
	MaxComponents          = 50
	MaxConnections         = 100
	HeightPercentTolerance = 5.0
)

// Warning types.
const (
	WarnInvalidID        = "invalid_id"
	WarnDuplicateID      = "duplicate_id"
	WarnDanglingParent   = "dangling_parent"
	WarnDanglingEndpoint = "dangling_endpoint"
	WarnSelfConnection   = "self_connection"
	WarnHeightSum        = "height_sum"
	WarnTooManyNodes     = "too_many_components"
	WarnTooManyEdges     = "too_many_connections"
	WarnCrossings        = "crossings"
)

// Warning is a non-fatal finding about a record set. The engine tolerates
// every condition reported here; callers decide whether to surface them.
type Warning struct {
	Type    string `json:"type"`
	NodeID  string `json:"node_id,omitempty"`
	Message string `json:"message"`
}

// String returns the warning message.
func (w Warning) String() string { return w.Message }

// Validate reports anomalies that the layout and synthesizer will silently
// absorb: dangling references are dropped, duplicate ids keep the first
// record, and so on.
func Validate(d Diagram) []Warning {
	var warns []Warning

	seen := make(map[string]bool)
	addID := func(id string) {
		if err := errors.ValidateID(id); err != nil {
			warns = append(warns, Warning{Type: WarnInvalidID, NodeID: id, Message: errors.UserMessage(err)})
		}
		if seen[id] {
			warns = append(warns, Warning{Type: WarnDuplicateID, NodeID: id,
				Message: fmt.Sprintf("duplicate id %s; the first declaration wins", id)})
		}
		seen[id] = true
	}
	for _, l := range d.Layers {
		addID(l.ID)
	}
	for _, b := range d.Boxes {
		addID(b.ID)
	}
	for _, c := range d.Components {
		addID(c.ID)
	}

	checkParent := func(id, parent string) {
		if parent != "" && !seen[parent] {
			warns = append(warns, Warning{Type: WarnDanglingParent, NodeID: id,
				Message: fmt.Sprintf("%s references unknown parent %s", id, parent)})
		}
	}
	for _, b := range d.Boxes {
		checkParent(b.ID, b.ParentID)
	}
	for _, c := range d.Components {
		checkParent(c.ID, c.ParentID)
	}

	for _, c := range d.Connections {
		if c.From == c.To {
			warns = append(warns, Warning{Type: WarnSelfConnection, NodeID: c.From,
				Message: fmt.Sprintf("%s is connected to itself", c.From)})
		}
		for _, end := range []string{c.From, c.To} {
			if !seen[end] {
				warns = append(warns, Warning{Type: WarnDanglingEndpoint, NodeID: end,
					Message: fmt.Sprintf("connection %s -> %s references unknown node %s; it will be dropped", c.From, c.To, end)})
			}
		}
	}

	if sum, ok := layerHeightSum(d.Layers); ok && math.Abs(sum-100) > HeightPercentTolerance {
		warns = append(warns, Warning{Type: WarnHeightSum,
			Message: fmt.Sprintf("layer heights sum to %.1f%%; expected 100%% (±%.0f%%)", sum, HeightPercentTolerance)})
	}

	if n := len(d.Components); n > MaxComponents {
		warns = append(warns, Warning{Type: WarnTooManyNodes,
			Message: fmt.Sprintf("%d components; %d or fewer recommended", n, MaxComponents)})
	}
	if n := len(d.Connections); n > MaxConnections {
		warns = append(warns, Warning{Type: WarnTooManyEdges,
			Message: fmt.Sprintf("%d connections; the diagram may be hard to read", n)})
	}

	return warns
}

// CrossingWarning returns a warning when count > 0.
func CrossingWarning(count int) (Warning, bool) {
	if count <= 0 {
		return Warning{}, false
	}
	return Warning{Type: WarnCrossings,
		Message: fmt.Sprintf("about %d connection crossings expected; manual adjustment may be needed", count)}, true
}

// layerHeightSum sums explicit layer heights. It reports false when no layer
// sets a height, since the defaults always sum to 100.
func layerHeightSum(layers []Layer) (float64, bool) {
	sum, explicit := 0.0, false
	for _, l := range layers {
		if l.HeightPercent != nil {
			explicit = true
		}
	}
	if !explicit {
		return 0, false
	}
	def := 100 / float64(len(layers))
	for _, l := range layers {
		sum += floatOr(l.HeightPercent, def)
	}
	return sum, true
}
