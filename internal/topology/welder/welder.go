// Package welder implements the Vertex Welder / Coincidence Merger stage
// (spec §4.3): repairs small ID-level discrepancies where two distinct
// vertex IDs represent the same physical point within tolerance.
package welder

import (
	"context"
	"sort"

	"github.com/ali01/trailnet/internal/geomops"
	"github.com/ali01/trailnet/internal/graph"
	"github.com/ali01/trailnet/internal/models"
	"github.com/ali01/trailnet/internal/pipeline/stageerr"
	"github.com/ali01/trailnet/internal/report"
)

// Config holds this stage's tunables (spec §6 "vertexMergeMeters").
type Config struct {
	ToleranceMeters float64
}

// Stage implements pipeline.Stage.
type Stage struct {
	cfg Config
}

// New returns a configured welder stage.
func New(cfg Config) *Stage { return &Stage{cfg: cfg} }

func (s *Stage) Name() string { return "welder" }

// Run clusters vertices by spatial proximity within ToleranceMeters,
// canonicalizes each cluster to its minimum vertex ID, remaps incident edges,
// deletes the absorbed vertices, scrubs any resulting self-loops, and
// recomputes degrees (spec §4.3 Algorithm). Clustering is density-based with
// a single-link rule: any two vertices within tolerance join the same
// cluster, transitively.
func (s *Stage) Run(ctx context.Context, ws *graph.WorkingSet) (report.StageResult, error) {
	result := report.StageResult{}

	if err := ctx.Err(); err != nil {
		return result, stageerr.Cancelled(s.Name(), err)
	}

	merged, removed := Merge(ws, ws.Vertices(), s.cfg.ToleranceMeters)
	result.Merged = merged
	result.Removed = removed

	return result, nil
}

// Merge clusters the given vertices by spatial proximity within
// toleranceMeters, canonicalizes each cluster to its minimum vertex ID,
// remaps every edge in ws referencing a non-canonical vertex, deletes the
// absorbed vertices, scrubs any resulting self-loops, and recomputes
// degrees. Exported so the Connector Integrator can run a targeted weld
// restricted to connector endpoint vertices (spec §4.5
// weldConnectorEndpoints, "a targeted application of §4.3").
func Merge(ws *graph.WorkingSet, vertices []*models.Vertex, toleranceMeters float64) (merged, removedSelfLoops int) {
	clusters := cluster(vertices, toleranceMeters)

	canonical := make(map[models.VertexID]models.VertexID)
	for _, c := range clusters {
		if len(c) < 2 {
			continue
		}
		min := c[0]
		for _, id := range c[1:] {
			if id < min {
				min = id
			}
		}
		for _, id := range c {
			canonical[id] = min
		}
	}

	if len(canonical) == 0 {
		return 0, 0
	}

	for _, e := range ws.Edges() {
		newSource, remapS := canonical[e.Source]
		newTarget, remapT := canonical[e.Target]
		if !remapS && !remapT {
			continue
		}
		updated := *e
		if remapS {
			updated.Source = newSource
		}
		if remapT {
			updated.Target = newTarget
		}
		ws.DeleteEdge(e.ID)
		ws.PutEdge(updated)
	}

	for id, to := range canonical {
		if id == to {
			continue // the canonical vertex itself stays
		}
		ws.DeleteVertex(id)
		merged++
	}

	removedSelfLoops = len(ws.RemoveSelfLoops())
	ws.RecomputeDegrees()

	return merged, removedSelfLoops
}

// cluster groups vertices into connected components under the relation
// "within toleranceMeters of each other", using a uniform grid keyed by
// tolerance-sized cells to keep the candidate search sub-quadratic, then
// union-find to merge transitively-close vertices into one cluster.
func cluster(vertices []*models.Vertex, toleranceMeters float64) [][]models.VertexID {
	if len(vertices) == 0 {
		return nil
	}

	uf := newUnionFind(vertices)

	cellOf := func(v *models.Vertex) [2]int64 {
		step := geomops.MetersToDegrees(toleranceMeters, v.Y)
		if step <= 0 {
			step = 1e-9
		}
		return [2]int64{int64(v.X / step), int64(v.Y / step)}
	}

	grid := make(map[[2]int64][]*models.Vertex)
	for _, v := range vertices {
		c := cellOf(v)
		grid[c] = append(grid[c], v)
	}

	for _, v := range vertices {
		c := cellOf(v)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				neighborCell := [2]int64{c[0] + int64(dx), c[1] + int64(dy)}
				for _, other := range grid[neighborCell] {
					if other.ID == v.ID {
						continue
					}
					d := geomops.DistanceMeters(
						geomops.Point3D{X: v.X, Y: v.Y, Z: v.Z},
						geomops.Point3D{X: other.X, Y: other.Y, Z: other.Z},
					)
					if d <= toleranceMeters {
						uf.union(v.ID, other.ID)
					}
				}
			}
		}
	}

	groups := make(map[models.VertexID][]models.VertexID)
	for _, v := range vertices {
		root := uf.find(v.ID)
		groups[root] = append(groups[root], v.ID)
	}

	out := make([][]models.VertexID, 0, len(groups))
	for _, ids := range groups {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		out = append(out, ids)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

type unionFind struct {
	parent map[models.VertexID]models.VertexID
}

func newUnionFind(vertices []*models.Vertex) *unionFind {
	uf := &unionFind{parent: make(map[models.VertexID]models.VertexID, len(vertices))}
	for _, v := range vertices {
		uf.parent[v.ID] = v.ID
	}
	return uf
}

func (uf *unionFind) find(id models.VertexID) models.VertexID {
	for uf.parent[id] != id {
		uf.parent[id] = uf.parent[uf.parent[id]]
		id = uf.parent[id]
	}
	return id
}

func (uf *unionFind) union(a, b models.VertexID) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		uf.parent[rb] = ra
	} else {
		uf.parent[ra] = rb
	}
}
