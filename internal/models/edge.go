package models

import (
	"github.com/google/uuid"

	"github.com/ali01/trailnet/internal/geomops"
)

// Edge is a routing edge between two distinct vertices (spec §3 "Edge
// (routing edge)"). TrailID is nil for synthesized edges (bridges, merged
// chains) that have no single origin trail.
type Edge struct {
	ID             EdgeID
	Source, Target VertexID
	Geometry       geomops.LineString3D
	LengthKM       float64
	ElevationGainM float64
	ElevationLossM float64
	TrailID        *uuid.UUID
	Name           string
	Provenance     Provenance
}

// RecomputeDerived recalculates LengthKM and elevation gain/loss from the
// current Geometry, mirroring Trail.RecomputeDerived.
func (e *Edge) RecomputeDerived() {
	e.LengthKM = e.Geometry.LengthMeters() / 1000.0
	gain, loss := e.Geometry.ElevationGainLoss()
	e.ElevationGainM = gain
	e.ElevationLossM = loss
}

// IsSelfLoop reports whether the edge's endpoints are the same vertex,
// which violates spec §3's "source ≠ target" invariant.
func (e Edge) IsSelfLoop() bool { return e.Source == e.Target }

// OtherEndpoint returns the endpoint of e that is not v. Panics if v is not
// one of the edge's endpoints -- callers only call this after confirming
// incidence.
func (e Edge) OtherEndpoint(v VertexID) VertexID {
	switch v {
	case e.Source:
		return e.Target
	case e.Target:
		return e.Source
	default:
		panic("models: OtherEndpoint called with non-incident vertex")
	}
}
