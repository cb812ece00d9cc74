// Package pruner implements the Short Dead-End Pruner stage (spec §4.7):
// removes connector-typed edges shorter than maxConnectorLengthMeters whose
// target vertex has degree 1, unblocking the Compactor by converting
// artificial degree-3 hubs into degree-2 chains.
package pruner

import (
	"context"

	"github.com/ali01/trailnet/internal/graph"
	"github.com/ali01/trailnet/internal/models"
	"github.com/ali01/trailnet/internal/pipeline/stageerr"
	"github.com/ali01/trailnet/internal/report"
)

// Config holds this stage's tunables (spec §6 "maxConnectorLengthMeters",
// "connectorNamePatterns").
type Config struct {
	MaxConnectorLengthMeters float64
	NamePatterns             []string
}

// Stage implements pipeline.Stage.
type Stage struct {
	cfg Config
}

// New returns a configured pruner stage.
func New(cfg Config) *Stage { return &Stage{cfg: cfg} }

func (s *Stage) Name() string { return "pruner" }

// Run removes every connector-provenance edge shorter than
// MaxConnectorLengthMeters whose target vertex has degree 1, then
// removes orphaned vertices and recomputes degrees (spec §4.7
// Post-condition).
func (s *Stage) Run(ctx context.Context, ws *graph.WorkingSet) (report.StageResult, error) {
	result := report.StageResult{}

	if err := ctx.Err(); err != nil {
		return result, stageerr.Cancelled(s.Name(), err)
	}

	ws.RecomputeDegrees()

	for _, e := range ws.Edges() {
		if !s.isConnectorTyped(ws, e) {
			continue
		}
		if e.LengthKM*1000 >= s.cfg.MaxConnectorLengthMeters {
			continue
		}
		source, target := ws.Vertex(e.Source), ws.Vertex(e.Target)
		if source == nil || target == nil {
			continue
		}
		if target.Degree != 1 {
			continue
		}
		ws.DeleteEdge(e.ID)
		result.Removed++
	}

	result.Skipped = len(ws.RemoveOrphanVertices())
	ws.RecomputeDegrees()

	return result, nil
}

// isConnectorTyped reports whether e is connector-typed: either synthesized
// by a bridging/connector stage, or a split of a trail classified as a
// connector by kind or name (spec §4.5's IsConnector match).
func (s *Stage) isConnectorTyped(ws *graph.WorkingSet, e *models.Edge) bool {
	switch e.Provenance.Kind {
	case models.ProvenanceBridge, models.ProvenanceBridgeExtend, models.ProvenanceConnectorBridged:
		return true
	}
	if e.TrailID == nil {
		return false
	}
	t, ok := ws.Trails[e.TrailID.String()]
	return ok && t.IsConnector(s.cfg.NamePatterns)
}
