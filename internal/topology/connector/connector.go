// Package connector implements the Connector Integrator stage (spec §4.5):
// guarantees every trail marked "connector" has a traversable edge spanning
// its endpoints, then fuses each connector edge with its non-connector
// neighbors into a single continuous edge where safe.
package connector

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/ali01/trailnet/internal/geomops"
	"github.com/ali01/trailnet/internal/graph"
	"github.com/ali01/trailnet/internal/models"
	"github.com/ali01/trailnet/internal/pipeline/stageerr"
	"github.com/ali01/trailnet/internal/report"
	"github.com/ali01/trailnet/internal/topology/welder"
)

// Config holds this stage's tunables (spec §6 "connectorToleranceMeters",
// "connectorNamePatterns").
type Config struct {
	ToleranceMeters float64
	NamePatterns    []string
}

// Stage implements pipeline.Stage.
type Stage struct {
	cfg Config
}

// New returns a configured connector integrator stage.
func New(cfg Config) *Stage { return &Stage{cfg: cfg} }

func (s *Stage) Name() string { return "connector-integrator" }

// Run performs ensureConnectorEdges, collapseConnectors, and
// weldConnectorEndpoints in sequence (spec §4.5 Operations).
func (s *Stage) Run(ctx context.Context, ws *graph.WorkingSet) (report.StageResult, error) {
	result := report.StageResult{}

	if err := ctx.Err(); err != nil {
		return result, stageerr.Cancelled(s.Name(), err)
	}

	inserted := s.ensureConnectorEdges(ws)
	result.Created += inserted

	collapsed := s.collapseConnectors(ws)
	result.Merged += collapsed

	endpoints := s.connectorEndpointVertices(ws)
	merged, removedLoops := welder.Merge(ws, endpoints, s.cfg.ToleranceMeters)
	result.Merged += merged
	result.Removed += removedLoops

	ws.RecomputeDegrees()
	return result, nil
}

// ensureConnectorEdges finds every trail classified as a connector and
// checks whether a path already exists between the vertices nearest its
// original start and end points; if not, it inserts a direct
// ConnectorBridged edge between them (spec §4.5 "guarantee ... a
// traversable edge spanning its endpoints").
func (s *Stage) ensureConnectorEdges(ws *graph.WorkingSet) int {
	inserted := 0

	for _, id := range sortedTrailIDs(ws) {
		t := ws.Trails[id]
		if !t.IsConnector(s.cfg.NamePatterns) {
			continue
		}
		touched := verticesForTrail(ws, t.ID)
		if len(touched) < 2 {
			continue
		}
		start := nearestVertex(ws, touched, t.Geometry.Start())
		end := nearestVertex(ws, touched, t.Geometry.End())
		if start == end {
			continue
		}
		if pathExists(ws, start, end) {
			continue
		}

		vs, ve := ws.Vertex(start), ws.Vertex(end)
		geom := geomops.LineString3D{
			{X: vs.X, Y: vs.Y, Z: vs.Z},
			{X: ve.X, Y: ve.Y, Z: ve.Z},
		}
		e := models.Edge{
			Source:     start,
			Target:     end,
			Geometry:   geom,
			Provenance: models.ConnectorBridged(t.ID),
		}
		e.RecomputeDerived()
		ws.AddEdge(e)
		inserted++
	}

	return inserted
}

// collapseConnectors fuses every connector edge that has exactly one
// non-connector neighbor on each side into a single edge spanning all three,
// oriented so consecutive segments meet (spec §4.5 collapseConnectors).
func (s *Stage) collapseConnectors(ws *graph.WorkingSet) int {
	collapsed := 0

	for {
		isConnector := s.connectorEdgeSet(ws)
		fused := false

		for _, e := range ws.Edges() {
			if !isConnector[e.ID] {
				continue
			}
			left, okL := singleNonConnectorNeighbor(ws, e.Source, e.ID, isConnector)
			right, okR := singleNonConnectorNeighbor(ws, e.Target, e.ID, isConnector)
			if !okL || !okR {
				continue
			}
			if left.ID == right.ID {
				continue // would collapse a 2-cycle; leave intact
			}

			merged, ok := fuseThree(left, e, right)
			if !ok {
				continue
			}

			ws.DeleteEdge(left.ID)
			ws.DeleteEdge(e.ID)
			ws.DeleteEdge(right.ID)
			merged.RecomputeDerived()
			ws.AddEdge(merged)

			collapsed++
			fused = true
			break // restart scan: edge set changed
		}

		if !fused {
			break
		}
	}

	ws.RemoveOrphanVertices()
	return collapsed
}

// connectorEdgeSet marks every edge currently attributable to a connector
// trail, either directly (Original provenance whose trail is a connector)
// or synthetically (ConnectorBridged provenance).
func (s *Stage) connectorEdgeSet(ws *graph.WorkingSet) map[models.EdgeID]bool {
	set := make(map[models.EdgeID]bool)
	for _, e := range ws.Edges() {
		switch e.Provenance.Kind {
		case models.ProvenanceConnectorBridged:
			set[e.ID] = true
		case models.ProvenanceOriginal:
			if t, ok := ws.Trails[e.Provenance.TrailID.String()]; ok && t.IsConnector(s.cfg.NamePatterns) {
				set[e.ID] = true
			}
		}
	}
	return set
}

// connectorEndpointVertices returns every vertex touched by a current
// connector edge, the restricted population weldConnectorEndpoints operates
// over.
func (s *Stage) connectorEndpointVertices(ws *graph.WorkingSet) []*models.Vertex {
	isConnector := s.connectorEdgeSet(ws)
	seen := make(map[models.VertexID]bool)
	var out []*models.Vertex
	for _, e := range ws.Edges() {
		if !isConnector[e.ID] {
			continue
		}
		for _, id := range []models.VertexID{e.Source, e.Target} {
			if seen[id] {
				continue
			}
			seen[id] = true
			if v := ws.Vertex(id); v != nil {
				out = append(out, v)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// singleNonConnectorNeighbor reports the unique edge incident to v other
// than exclude, provided it is exactly one edge and it is not itself a
// connector edge.
func singleNonConnectorNeighbor(ws *graph.WorkingSet, v models.VertexID, exclude models.EdgeID, isConnector map[models.EdgeID]bool) (*models.Edge, bool) {
	var other *models.Edge
	count := 0
	for _, eid := range ws.IncidentEdges(v) {
		if eid == exclude {
			continue
		}
		count++
		other = ws.Edge(eid)
	}
	if count != 1 || other == nil || isConnector[other.ID] {
		return nil, false
	}
	return other, true
}

// fuseThree stitches left - connector - right into one edge, orienting each
// neighbor so its near endpoint (shared with the connector) comes first,
// its far endpoint last (spec §4.5 Orientation rule).
func fuseThree(left, conn, right *models.Edge) (models.Edge, bool) {
	leftGeom, farLeft, ok := orientTowards(left, conn.Source)
	if !ok {
		return models.Edge{}, false
	}
	rightGeom, farRight, ok := orientAwayFrom(right, conn.Target)
	if !ok {
		return models.Edge{}, false
	}

	connGeom := conn.Geometry
	combined := make(geomops.LineString3D, 0, len(leftGeom)+len(connGeom)+len(rightGeom))
	combined = append(combined, leftGeom...)
	combined = append(combined, connGeom[1:]...)
	combined = append(combined, rightGeom[1:]...)

	merged := models.Edge{
		Source:     farLeft,
		Target:     farRight,
		Geometry:   combined,
		Name:       conn.Name,
		Provenance: models.ConnectorBridged(connectorTrailID(conn)),
	}
	return merged, true
}

// orientTowards returns e's geometry ordered so it ends at near, plus its
// far endpoint.
func orientTowards(e *models.Edge, near models.VertexID) (geomops.LineString3D, models.VertexID, bool) {
	switch near {
	case e.Target:
		return e.Geometry, e.Source, true
	case e.Source:
		return e.Geometry.Reversed(), e.Target, true
	default:
		return nil, 0, false
	}
}

// orientAwayFrom returns e's geometry ordered so it starts at near, plus its
// far endpoint.
func orientAwayFrom(e *models.Edge, near models.VertexID) (geomops.LineString3D, models.VertexID, bool) {
	switch near {
	case e.Source:
		return e.Geometry, e.Target, true
	case e.Target:
		return e.Geometry.Reversed(), e.Source, true
	default:
		return nil, 0, false
	}
}

func connectorTrailID(e *models.Edge) uuid.UUID {
	switch e.Provenance.Kind {
	case models.ProvenanceConnectorBridged:
		return e.Provenance.ConnectorID
	case models.ProvenanceOriginal:
		return e.Provenance.TrailID
	default:
		return uuid.UUID{}
	}
}

func sortedTrailIDs(ws *graph.WorkingSet) []string {
	ids := make([]string, 0, len(ws.Trails))
	for id := range ws.Trails {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// verticesForTrail returns every vertex touched by an edge whose origin is
// trailID.
func verticesForTrail(ws *graph.WorkingSet, trailID uuid.UUID) []models.VertexID {
	seen := make(map[models.VertexID]bool)
	var out []models.VertexID
	for _, e := range ws.Edges() {
		if e.TrailID == nil || *e.TrailID != trailID {
			continue
		}
		for _, id := range []models.VertexID{e.Source, e.Target} {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

func nearestVertex(ws *graph.WorkingSet, candidates []models.VertexID, p geomops.Point3D) models.VertexID {
	best := candidates[0]
	bestDist := geomops.DistanceMeters(p, vertexPoint(ws, best))
	for _, id := range candidates[1:] {
		d := geomops.DistanceMeters(p, vertexPoint(ws, id))
		if d < bestDist {
			best, bestDist = id, d
		}
	}
	return best
}

func vertexPoint(ws *graph.WorkingSet, id models.VertexID) geomops.Point3D {
	v := ws.Vertex(id)
	if v == nil {
		return geomops.Point3D{}
	}
	return geomops.Point3D{X: v.X, Y: v.Y, Z: v.Z}
}

// pathExists reports whether to is reachable from from via a breadth-first
// search over the current edge set.
func pathExists(ws *graph.WorkingSet, from, to models.VertexID) bool {
	if from == to {
		return true
	}
	visited := map[models.VertexID]bool{from: true}
	queue := []models.VertexID{from}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, n := range ws.Neighbors(v) {
			if n == to {
				return true
			}
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false
}
