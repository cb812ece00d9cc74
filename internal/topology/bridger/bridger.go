// Package bridger implements the Gap Bridger stage (spec §4.4): closes
// small gaps between trail endpoints that the Noder could not merge because
// they were farther apart than snapMeters but closer than bridgeMeters.
package bridger

import (
	"context"
	"sort"

	"github.com/ali01/trailnet/internal/geomops"
	"github.com/ali01/trailnet/internal/graph"
	"github.com/ali01/trailnet/internal/models"
	"github.com/ali01/trailnet/internal/pipeline/stageerr"
	"github.com/ali01/trailnet/internal/report"
)

// Config holds this stage's tunables (spec §6 "gapBridgeMeters").
type Config struct {
	ToleranceMeters float64
}

// Stage implements pipeline.Stage.
type Stage struct {
	cfg Config
}

// New returns a configured gap bridger stage.
func New(cfg Config) *Stage { return &Stage{cfg: cfg} }

func (s *Stage) Name() string { return "gap-bridger" }

// Run enumerates candidate (degree-1, degree-1) and (degree-1, degree-2)
// vertex pairs within tolerance, excludes pairs already directly connected,
// and inserts a straight bridge edge for each survivor in deterministic
// (source_id, target_id) order (spec §4.4 Algorithm).
func (s *Stage) Run(ctx context.Context, ws *graph.WorkingSet) (report.StageResult, error) {
	result := report.StageResult{}

	ws.RecomputeDegrees()

	var candidates []models.VertexID
	for _, v := range ws.Vertices() {
		if v.Degree == 1 || v.Degree == 2 {
			candidates = append(candidates, v.ID)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

	degreeOf := make(map[models.VertexID]int, len(candidates))
	for _, v := range ws.Vertices() {
		degreeOf[v.ID] = v.Degree
	}

	type pair struct{ a, b models.VertexID }
	var pairs []pair

	// Every unordered pair is visited exactly once, in ascending ID order
	// (candidates is sorted), and kept when it's a valid (degree-1,
	// degree-1) or (degree-1, degree-2) combination in either assignment
	// of degree to a/b -- vertex ID carries no relation to which side of
	// the pair ends up degree-1 (spec §4.4 Algorithm).
	for i := 0; i < len(candidates); i++ {
		a := candidates[i]
		for j := i + 1; j < len(candidates); j++ {
			b := candidates[j]
			da, db := degreeOf[a], degreeOf[b]
			if da == 1 && (db == 1 || db == 2) {
				pairs = append(pairs, pair{a: a, b: b})
			} else if db == 1 && da == 2 {
				pairs = append(pairs, pair{a: a, b: b})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})

	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			return result, stageerr.Cancelled(s.Name(), err)
		}

		va, vb := ws.Vertex(p.a), ws.Vertex(p.b)
		if va == nil || vb == nil {
			continue
		}
		d := geomops.DistanceMeters(
			geomops.Point3D{X: va.X, Y: va.Y, Z: va.Z},
			geomops.Point3D{X: vb.X, Y: vb.Y, Z: vb.Z},
		)
		if d > s.cfg.ToleranceMeters {
			continue
		}
		if alreadyConnected(ws, p.a, p.b) {
			continue
		}

		geom := geomops.LineString3D{
			{X: va.X, Y: va.Y, Z: va.Z},
			{X: vb.X, Y: vb.Y, Z: vb.Z},
		}
		e := models.Edge{
			Source:     p.a,
			Target:     p.b,
			Geometry:   geom,
			LengthKM:   geom.LengthMeters() / 1000.0,
			Provenance: models.BridgeExtend(),
		}
		ws.AddEdge(e)
		result.Created++
	}

	ws.RecomputeDegrees()
	return result, nil
}

func alreadyConnected(ws *graph.WorkingSet, a, b models.VertexID) bool {
	for _, eid := range ws.IncidentEdges(a) {
		e := ws.Edge(eid)
		if e == nil {
			continue
		}
		if e.OtherEndpoint(a) == b {
			return true
		}
	}
	return false
}
