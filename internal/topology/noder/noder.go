// Package noder implements the Noder stage (spec §4.2): splits every trail
// at every point it shares with another trail, producing the initial vertex
// and edge tables the rest of the pipeline operates on.
package noder

import (
	"context"
	"sort"

	"github.com/tidwall/rtree"

	"github.com/ali01/trailnet/internal/cache"
	"github.com/ali01/trailnet/internal/geomops"
	"github.com/ali01/trailnet/internal/graph"
	"github.com/ali01/trailnet/internal/models"
	"github.com/ali01/trailnet/internal/pipeline/stageerr"
	"github.com/ali01/trailnet/internal/report"
)

// Config holds this stage's tunables (spec §6 "snapMeters"). Cache is
// optional -- a nil Cache makes every pair computation a live call, exactly
// as if caching were never wired in.
type Config struct {
	SnapMeters float64
	Cache      *cache.GeometryCache
}

// Stage implements pipeline.Stage.
type Stage struct {
	cfg Config
	ops geomops.Ops
}

// New returns a configured noder stage.
func New(cfg Config) *Stage {
	return &Stage{cfg: cfg, ops: geomops.New()}
}

func (s *Stage) Name() string { return "noder" }

// cut is a pending split point on one trail's snapped geometry, expressed as
// a segment index and the arc-length fraction within that segment.
type cut struct {
	segIdx int
	frac   float64
	point  geomops.Point3D
}

// Run snaps every trail to the configured grid, finds every pairwise
// intersection via a broad-phase R-tree candidate search followed by exact
// segment intersection, splits both trails' geometries at each crossing,
// then emits one vertex per unique split point and one edge per resulting
// segment, tagged Original(trailID) (spec §4.2 Algorithm).
func (s *Stage) Run(ctx context.Context, ws *graph.WorkingSet) (report.StageResult, error) {
	result := report.StageResult{}

	ids := sortedTrailIDs(ws)
	snapped := make(map[string]geomops.LineString3D, len(ids))
	for _, id := range ids {
		t := ws.Trails[id]
		snapped[id] = s.ops.SnapToGrid(t.Geometry, s.cfg.SnapMeters)
	}

	var tree rtree.RTree[string]
	for _, id := range ids {
		min, max := bounds2(snapped[id])
		tree.Insert(min, max, id)
	}

	cuts := make(map[string][]cut, len(ids))

	for _, idA := range ids {
		if err := ctx.Err(); err != nil {
			return result, stageerr.Cancelled(s.Name(), err)
		}

		min, max := bounds2(snapped[idA])
		var candidates []string
		tree.Search(min, max, func(_, _ [2]float64, idB string) bool {
			if idB > idA { // visit each unordered pair once, deterministically
				candidates = append(candidates, idB)
			}
			return true
		})
		sort.Strings(candidates)

		for _, idB := range candidates {
			crossings := s.pairIntersections(ctx, idA, idB, snapped[idA], snapped[idB])
			for _, c := range crossings {
				cuts[idA] = append(cuts[idA], cut{segIdx: c.IdxA, frac: c.FracA, point: c.Point})
				cuts[idB] = append(cuts[idB], cut{segIdx: c.IdxB, frac: c.FracB, point: c.Point})
			}
		}
	}

	vertexIndex := make(map[[2]int64]models.VertexID)
	vertexOf := func(p geomops.Point3D) models.VertexID {
		key := coordKey(p, s.cfg.SnapMeters)
		if id, ok := vertexIndex[key]; ok {
			return id
		}
		id := ws.AddVertex(p.X, p.Y, p.Z)
		vertexIndex[key] = id
		return id
	}

	for _, id := range ids {
		t := ws.Trails[id]
		geom := snapped[id]

		pts, isVertex := splitGeometry(geom, cuts[id])
		demoteShortSplits(pts, isVertex, s.cfg.SnapMeters)

		lastIdx := 0
		for i := 1; i < len(pts); i++ {
			if !isVertex[i] {
				continue
			}
			segGeom := geomops.LineString3D(pts[lastIdx : i+1])
			source := vertexOf(pts[lastIdx])
			target := vertexOf(pts[i])
			lastIdx = i

			if source == target {
				continue // degenerate loop collapsed by snapping; drop silently
			}

			e := models.Edge{
				Source:     source,
				Target:     target,
				Geometry:   segGeom,
				Name:       t.Name,
				TrailID:    &t.ID,
				Provenance: models.Original(t.ID),
			}
			e.RecomputeDerived()
			ws.AddEdge(e)
			result.Created++
		}
	}

	ws.RemoveSelfLoops()
	return result, nil
}

// pairIntersections computes the crossings between two already-snapped
// trail geometries, serving a memoized result from s.cfg.Cache when
// available. A cache miss or disabled cache falls through to a live
// computation, which is then stored for the next run over the same trail
// set (spec §6 supplemented feature: bound repeated full-rebuild cost).
func (s *Stage) pairIntersections(ctx context.Context, idA, idB string, a, b geomops.LineString3D) []geomops.Intersection {
	key := idA + ":" + idB

	if cached, ok := s.cfg.Cache.GetIntersections(ctx, key); ok {
		return fromCacheIntersections(cached)
	}

	crossings := s.ops.IntersectionPoints(a, b)
	s.cfg.Cache.PutIntersections(ctx, key, toCacheIntersections(crossings))
	return crossings
}

func toCacheIntersections(cs []geomops.Intersection) []cache.Intersection {
	out := make([]cache.Intersection, len(cs))
	for i, c := range cs {
		out[i] = cache.Intersection{
			PointX: c.Point.X, PointY: c.Point.Y, PointZ: c.Point.Z,
			FracA: c.FracA, FracB: c.FracB,
			IdxA: c.IdxA, IdxB: c.IdxB,
		}
	}
	return out
}

func fromCacheIntersections(cs []cache.Intersection) []geomops.Intersection {
	out := make([]geomops.Intersection, len(cs))
	for i, c := range cs {
		out[i] = geomops.Intersection{
			Point: geomops.Point3D{X: c.PointX, Y: c.PointY, Z: c.PointZ},
			FracA: c.FracA, FracB: c.FracB,
			IdxA: c.IdxA, IdxB: c.IdxB,
		}
	}
	return out
}

func sortedTrailIDs(ws *graph.WorkingSet) []string {
	ids := make([]string, 0, len(ws.Trails))
	for id := range ws.Trails {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func bounds2(l geomops.LineString3D) ([2]float64, [2]float64) {
	b := l.Bound()
	return [2]float64{b.Min[0], b.Min[1]}, [2]float64{b.Max[0], b.Max[1]}
}

// coordKey quantizes a point to the snap grid's resolution so that points
// produced independently from two different trails' intersection
// computations -- or simply lying within the same grid cell -- collapse to
// the same vertex.
func coordKey(p geomops.Point3D, snapMeters float64) [2]int64 {
	step := geomops.MetersToDegrees(snapMeters, p.Y)
	if step <= 0 {
		step = 1e-9
	}
	return [2]int64{round(p.X / step), round(p.Y / step)}
}

func round(v float64) int64 {
	if v >= 0 {
		return int64(v + 0.5)
	}
	return int64(v - 0.5)
}

// splitGeometry walks geom's segments in order, inserting every cut whose
// fraction falls strictly inside its segment, and returns the resulting
// point sequence alongside a parallel flag marking which points are vertex
// candidates (the original start/end of the trail, plus every inserted
// crossing). Interior points of the original trail are not vertices.
func splitGeometry(geom geomops.LineString3D, cs []cut) (geomops.LineString3D, []bool) {
	bySeg := make(map[int][]cut)
	for _, c := range cs {
		bySeg[c.segIdx] = append(bySeg[c.segIdx], c)
	}
	for seg := range bySeg {
		sort.Slice(bySeg[seg], func(i, j int) bool { return bySeg[seg][i].frac < bySeg[seg][j].frac })
	}

	pts := make(geomops.LineString3D, 0, len(geom)+len(cs))
	isVertex := make([]bool, 0, len(geom)+len(cs))

	pts = append(pts, geom[0])
	isVertex = append(isVertex, true)

	const epsFrac = 1e-9
	for i := 0; i < len(geom)-1; i++ {
		for _, c := range bySeg[i] {
			if c.frac <= epsFrac || c.frac >= 1-epsFrac {
				continue // effectively at an existing endpoint, no new vertex needed
			}
			pts = append(pts, c.point)
			isVertex = append(isVertex, true)
		}
		pts = append(pts, geom[i+1])
		isVertex = append(isVertex, i == len(geom)-2)
	}

	return pts, isVertex
}

// demoteShortSplits un-marks any intersection-induced vertex that would
// produce a segment shorter than snapMeters, folding it back into the
// growing edge instead of emitting a near-zero-length edge. The trail's
// final point always stays a vertex.
func demoteShortSplits(pts geomops.LineString3D, isVertex []bool, snapMeters float64) {
	lastVertex := 0
	for i := 1; i < len(pts); i++ {
		if !isVertex[i] {
			continue
		}
		if i == len(pts)-1 {
			lastVertex = i
			continue
		}
		segLen := geomops.LineString3D(pts[lastVertex : i+1]).LengthMeters()
		if segLen < snapMeters {
			isVertex[i] = false
			continue
		}
		lastVertex = i
	}
}
