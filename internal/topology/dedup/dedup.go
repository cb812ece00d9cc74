// Package dedup implements the Edge Deduplicator stage (spec §4.6): removes
// exact and reverse-direction duplicate edges between identical endpoints,
// keeping a chosen representative.
package dedup

import (
	"context"
	"sort"

	"github.com/ali01/trailnet/internal/geomops"
	"github.com/ali01/trailnet/internal/graph"
	"github.com/ali01/trailnet/internal/models"
	"github.com/ali01/trailnet/internal/pipeline/stageerr"
	"github.com/ali01/trailnet/internal/report"
)

// Policy selects which duplicate survives.
type Policy string

const (
	KeepShortest Policy = "keep_shortest"
	KeepLongest  Policy = "keep_longest"
)

// Config holds this stage's tunables (spec §6 "dedupPolicy", "snapMeters").
type Config struct {
	Policy Policy
	// SnapMeters bounds how far two same-endpoint edges' sampled midpoints
	// may differ and still be treated as the same duplicate geometry
	// (spec §4.6 "exact duplicates", testable property 5).
	SnapMeters float64
}

// Stage implements pipeline.Stage.
type Stage struct {
	cfg Config
}

// New returns a configured deduplicator stage.
func New(cfg Config) *Stage { return &Stage{cfg: cfg} }

func (s *Stage) Name() string { return "dedup" }

// Run groups edges by their undirected endpoint pair, splits each group
// into geometry-similarity clusters (sampled-midpoint distance within
// SnapMeters -- spec §4.6 "exact duplicates" means matching geometry, not
// merely matching endpoints), and within each cluster of size >1 keeps
// exactly one edge per policy, ties broken by lowest edge ID (spec §4.6
// Policy).
func (s *Stage) Run(ctx context.Context, ws *graph.WorkingSet) (report.StageResult, error) {
	result := report.StageResult{}

	if err := ctx.Err(); err != nil {
		return result, stageerr.Cancelled(s.Name(), err)
	}

	groups := make(map[[2]models.VertexID][]*models.Edge)
	for _, e := range ws.Edges() {
		key := endpointKey(e.Source, e.Target)
		groups[key] = append(groups[key], e)
	}

	for _, edges := range groups {
		if len(edges) < 2 {
			continue
		}
		for _, cluster := range clusterBySimilarity(edges, s.cfg.SnapMeters) {
			if len(cluster) < 2 {
				continue
			}
			keep := selectSurvivor(cluster, s.cfg.Policy)
			for _, e := range cluster {
				if e.ID == keep.ID {
					continue
				}
				ws.DeleteEdge(e.ID)
				result.Removed++
			}
		}
	}

	ws.RemoveOrphanVertices()
	ws.RecomputeDegrees()

	return result, nil
}

// clusterBySimilarity partitions edges sharing an endpoint pair into groups
// whose sampled midpoints all lie within tol of one another, so two
// genuinely distinct routes between the same two junctions survive as
// separate edges instead of collapsing into one.
func clusterBySimilarity(edges []*models.Edge, tol float64) [][]*models.Edge {
	n := len(edges)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(i, j int) {
		ri, rj := find(i), find(j)
		if ri != rj {
			parent[ri] = rj
		}
	}

	mids := make([]geomops.Point3D, n)
	for i, e := range edges {
		mids[i] = e.Geometry.PointAtFraction(0.5)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if geomops.DistanceMeters(mids[i], mids[j]) <= tol {
				union(i, j)
			}
		}
	}

	byRoot := make(map[int][]*models.Edge)
	for i, e := range edges {
		r := find(i)
		byRoot[r] = append(byRoot[r], e)
	}
	clusters := make([][]*models.Edge, 0, len(byRoot))
	for _, c := range byRoot {
		clusters = append(clusters, c)
	}
	return clusters
}

func endpointKey(a, b models.VertexID) [2]models.VertexID {
	if a <= b {
		return [2]models.VertexID{a, b}
	}
	return [2]models.VertexID{b, a}
}

func selectSurvivor(edges []*models.Edge, policy Policy) *models.Edge {
	sorted := append([]*models.Edge(nil), edges...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].LengthKM != sorted[j].LengthKM {
			if policy == KeepLongest {
				return sorted[i].LengthKM > sorted[j].LengthKM
			}
			return sorted[i].LengthKM < sorted[j].LengthKM
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted[0]
}
