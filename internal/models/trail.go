package models

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ali01/trailnet/internal/geomops"
)

// TrailKind classifies an input trail by its role in the network (spec
// §4.5, Glossary "Connector").
type TrailKind string

const (
	TrailKindTrail     TrailKind = "trail"
	TrailKindConnector TrailKind = "connector"
	TrailKindService   TrailKind = "service_road"
	TrailKindUnknown   TrailKind = ""
)

// IsConnector reports whether a trail is classified as a connector, either
// by its kind field or, failing that, by a name match against common
// connector naming conventions (spec §4.5 "by kind or name match").
func (t Trail) IsConnector(connectorNamePatterns []string) bool {
	if t.Kind == TrailKindConnector {
		return true
	}
	lower := strings.ToLower(t.Name)
	for _, pat := range connectorNamePatterns {
		if pat != "" && strings.Contains(lower, strings.ToLower(pat)) {
			return true
		}
	}
	return false
}

// BBox is a 2D bounding box in (min_lng, min_lat, max_lng, max_lat) order,
// matching the inbound trail record shape in spec §6.
type BBox struct {
	MinLng, MinLat, MaxLng, MaxLat float64
}

// Trail is a single input georeferenced polyline, read-mostly except for
// the Preprocessor (simplify/drop) and Trail-Level Bridging (append) stages
// (spec §3 "Trail (input, read-mostly)").
type Trail struct {
	ID             uuid.UUID
	Name           string
	Kind           TrailKind
	LengthKM       float64
	ElevationGainM float64
	ElevationLossM float64
	BBox           BBox
	Geometry       geomops.LineString3D
}

// NewTrail builds a Trail from a fresh geometry, deriving length and
// elevation gain/loss and the bounding box from the geometry itself —
// callers that already have authoritative values (e.g. re-ingested from the
// export collaborator) should set the fields directly instead.
func NewTrail(id uuid.UUID, name string, kind TrailKind, geom geomops.LineString3D) Trail {
	t := Trail{ID: id, Name: name, Kind: kind, Geometry: geom}
	t.RecomputeDerived()
	return t
}

// RecomputeDerived recalculates LengthKM, ElevationGainM/LossM and BBox from
// the current Geometry. Called after any mutation of Geometry (simplify,
// split).
func (t *Trail) RecomputeDerived() {
	t.LengthKM = t.Geometry.LengthMeters() / 1000.0
	gain, loss := t.Geometry.ElevationGainLoss()
	t.ElevationGainM = gain
	t.ElevationLossM = loss

	b := t.Geometry.Bound()
	t.BBox = BBox{MinLng: b.Min[0], MinLat: b.Min[1], MaxLng: b.Max[0], MaxLat: b.Max[1]}
}
