// Package compactor implements the Degree-2 Chain Compactor stage (spec
// §4.8, "the hard part"): finds every maximal simple path whose internal
// vertices all have degree exactly 2 and replaces it with a single fused
// edge between its two endpoints.
package compactor

import (
	"sort"

	"context"

	"github.com/ali01/trailnet/internal/geomops"
	"github.com/ali01/trailnet/internal/graph"
	"github.com/ali01/trailnet/internal/models"
	"github.com/ali01/trailnet/internal/pipeline/stageerr"
	"github.com/ali01/trailnet/internal/report"
)

// Config holds this stage's tunables (spec §6 "chainJoinMeters",
// "maxChainEdges"). ChainJoinMeters is not read by this stage: chains are
// fused with geomops LineMerge, whose endpoint join tolerance is fixed at
// 1e-6 degrees.
type Config struct {
	ChainJoinMeters float64
	MaxChainEdges   int
}

// Stage implements pipeline.Stage.
type Stage struct {
	cfg Config
	ops geomops.Ops
}

// New returns a configured compactor stage.
func New(cfg Config) *Stage {
	if cfg.MaxChainEdges <= 0 {
		cfg.MaxChainEdges = 20
	}
	return &Stage{cfg: cfg, ops: geomops.New()}
}

func (s *Stage) Name() string { return "compactor" }

// chain is a candidate maximal path: vertices[0]..vertices[len-1] joined by
// edges in order, with every internal vertex at degree 2 at discovery time.
type chain struct {
	vertices []models.VertexID
	edges    []models.EdgeID
}

// Run recomputes degrees, enumerates every maximal chain, ranks and selects
// non-overlapping ones by priority, fuses each into a single edge via
// geometry line-merge, and repeats until no chain of length ≥2 remains
// (spec §4.8 Execution, Idempotence & termination).
func (s *Stage) Run(ctx context.Context, ws *graph.WorkingSet) (report.StageResult, error) {
	result := report.StageResult{}

	for {
		if err := ctx.Err(); err != nil {
			return result, stageerr.Cancelled(s.Name(), err)
		}

		ws.RecomputeDegrees()
		chains := s.buildChains(ws)
		if len(chains) == 0 {
			break
		}

		fusedThisRound := 0
		claimed := make(map[models.EdgeID]bool)

		for _, c := range rankChains(ws, chains) {
			if chainOverlaps(c, claimed) {
				continue
			}
			if !s.fuse(ws, c) {
				result.Skipped++
				continue
			}
			for _, eid := range c.edges {
				claimed[eid] = true
			}
			result.Merged++
			fusedThisRound++
		}

		ws.RemoveSelfLoops()
		ws.RemoveOrphanVertices()
		ws.RecomputeDegrees()

		if fusedThisRound == 0 {
			break
		}
	}

	return result, nil
}

// buildChains partitions the current edge set into maximal chains: one pass
// seeded from every non-degree-2 ("boundary") vertex's incident edges, then
// a second pass sweeping up whatever remains into pure degree-2 cycles
// (spec §4.8 "State machine per chain build", "Cycle handling").
func (s *Stage) buildChains(ws *graph.WorkingSet) []chain {
	generated := make(map[models.EdgeID]bool)
	var chains []chain

	for _, v := range ws.Vertices() {
		if v.Degree == 2 {
			continue
		}
		for _, eid := range ws.IncidentEdges(v.ID) {
			if generated[eid] {
				continue
			}
			c := walkChain(ws, v.ID, eid, s.cfg.MaxChainEdges)
			for _, e := range c.edges {
				generated[e] = true
			}
			// A chain seeded from a boundary vertex that loops back to that
			// same vertex (a loop hanging off a junction) closes at a vertex
			// whose degree is never 2 -- not a valid cycle closure (spec
			// §4.8 "Cycle handling" requires v0 itself to be degree-2) and
			// not a valid boundary-to-boundary span either. Leave it intact.
			if len(c.edges) >= 2 && c.vertices[len(c.vertices)-1] != v.ID {
				chains = append(chains, c)
			}
		}
	}

	for _, e := range ws.Edges() {
		if generated[e.ID] {
			continue
		}
		c := walkCycle(ws, e.ID, s.cfg.MaxChainEdges)
		for _, eid := range c.edges {
			generated[eid] = true
		}
		if len(c.edges) >= 2 {
			chains = append(chains, c)
		}
	}

	return chains
}

// walkChain extends from a boundary vertex through successive degree-2
// vertices until it hits another boundary vertex, the visit cap, or would
// revisit its own start (Extend / Finalize states).
func walkChain(ws *graph.WorkingSet, start models.VertexID, firstEdge models.EdgeID, maxEdges int) chain {
	c := chain{vertices: []models.VertexID{start}}
	cur := start
	edge := firstEdge

	for {
		e := ws.Edge(edge)
		if e == nil {
			break
		}
		next := e.OtherEndpoint(cur)
		c.edges = append(c.edges, edge)
		c.vertices = append(c.vertices, next)

		if len(c.edges) >= maxEdges {
			break
		}
		nv := ws.Vertex(next)
		if nv == nil || nv.Degree != 2 || next == start {
			break
		}
		nextEdge, ok := otherIncidentEdge(ws, next, edge)
		if !ok {
			break
		}
		cur, edge = next, nextEdge
	}

	return c
}

// walkCycle walks a pure degree-2 loop back to its own start, producing a
// chain with v0 == vn (spec §4.8 "Cycle handling").
func walkCycle(ws *graph.WorkingSet, seedEdge models.EdgeID, maxEdges int) chain {
	e0 := ws.Edge(seedEdge)
	if e0 == nil {
		return chain{}
	}
	start := e0.Source
	c := chain{vertices: []models.VertexID{start}}
	cur := start
	edge := seedEdge

	for {
		e := ws.Edge(edge)
		if e == nil {
			break
		}
		next := e.OtherEndpoint(cur)
		c.edges = append(c.edges, edge)
		c.vertices = append(c.vertices, next)

		if next == start || len(c.edges) >= maxEdges {
			break
		}
		nextEdge, ok := otherIncidentEdge(ws, next, edge)
		if !ok {
			break
		}
		cur, edge = next, nextEdge
	}

	return c
}

func otherIncidentEdge(ws *graph.WorkingSet, v models.VertexID, exclude models.EdgeID) (models.EdgeID, bool) {
	for _, eid := range ws.IncidentEdges(v) {
		if eid != exclude {
			return eid, true
		}
	}
	return 0, false
}

// rankChains orders candidates by spec §4.8's Selection rule: longer chain
// (by edge count) first, tie-break by larger total length, tie-break by
// smaller (min-endpoint-id, max-endpoint-id) lexicographically.
func rankChains(ws *graph.WorkingSet, chains []chain) []chain {
	type scored struct {
		c      chain
		length float64
		lo, hi models.VertexID
	}
	s := make([]scored, len(chains))
	for i, c := range chains {
		v0, vn := c.vertices[0], c.vertices[len(c.vertices)-1]
		lo, hi := v0, vn
		if hi < lo {
			lo, hi = hi, lo
		}
		s[i] = scored{c: c, length: chainLengthKM(ws, c), lo: lo, hi: hi}
	}
	sort.Slice(s, func(i, j int) bool {
		if len(s[i].c.edges) != len(s[j].c.edges) {
			return len(s[i].c.edges) > len(s[j].c.edges)
		}
		if s[i].length != s[j].length {
			return s[i].length > s[j].length
		}
		if s[i].lo != s[j].lo {
			return s[i].lo < s[j].lo
		}
		return s[i].hi < s[j].hi
	})
	out := make([]chain, len(s))
	for i, v := range s {
		out[i] = v.c
	}
	return out
}

func chainLengthKM(ws *graph.WorkingSet, c chain) float64 {
	total := 0.0
	for _, eid := range c.edges {
		if e := ws.Edge(eid); e != nil {
			total += e.LengthKM
		}
	}
	return total
}

func chainOverlaps(c chain, claimed map[models.EdgeID]bool) bool {
	for _, eid := range c.edges {
		if claimed[eid] {
			return true
		}
	}
	return false
}

// fuse builds the fused edge for chain c and installs it in ws, deleting the
// constituents. Returns false (leaving the constituents untouched) if the
// constituent geometries fail to line-merge into one connected polyline
// (spec §4.8 Failure semantics).
func (s *Stage) fuse(ws *graph.WorkingSet, c chain) bool {
	parts := make([]geomops.LineString3D, 0, len(c.edges))

	for i, eid := range c.edges {
		e := ws.Edge(eid)
		if e == nil {
			return false
		}
		geom, ok := orientAlong(e, c.vertices[i])
		if !ok {
			return false
		}
		parts = append(parts, geom)
	}

	merged, ok := s.ops.LineMerge(parts)
	if !ok {
		return false
	}

	v0, vn := c.vertices[0], c.vertices[len(c.vertices)-1]
	source, target := v0, vn
	if target < source {
		source, target = target, source
	}

	innerVertices := c.vertices[1 : len(c.vertices)-1]
	fused := models.Edge{
		Source:     source,
		Target:     target,
		Geometry:   merged,
		Provenance: models.MergedChain(append([]models.VertexID{}, innerVertices...), append([]models.EdgeID{}, c.edges...)),
	}
	fused.RecomputeDerived()

	for _, eid := range c.edges {
		ws.DeleteEdge(eid)
	}
	ws.AddEdge(fused)

	return true
}

// orientAlong returns e's geometry ordered so it starts at from.
func orientAlong(e *models.Edge, from models.VertexID) (geomops.LineString3D, bool) {
	switch from {
	case e.Source:
		return e.Geometry, true
	case e.Target:
		return e.Geometry.Reversed(), true
	default:
		return nil, false
	}
}
