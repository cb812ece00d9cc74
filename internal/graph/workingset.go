// Package graph holds the pipeline's working set: the mutable collection of
// trails, vertices, and edges owned by a single pipeline run (spec §3
// "Working set"). It is the in-memory arena-plus-index structure spec §9
// calls for in place of the source's staging-schema SQL tables -- vertices
// and edges live in contiguous-ID maps, referenced only by integer ID,
// never by pointer, so stages can freely delete and remap without dangling
// references.
package graph

import (
	"sort"

	"github.com/ali01/trailnet/internal/models"
)

// WorkingSet owns one pipeline run's trails, vertices and edges. It is not
// safe for concurrent use -- the pipeline driver guarantees single-threaded,
// single-stage-at-a-time access (spec §5).
type WorkingSet struct {
	Trails map[string]*models.Trail // keyed by trail_uuid string

	vertices map[models.VertexID]*models.Vertex
	edges    map[models.EdgeID]*models.Edge

	nextVertexID models.VertexID
	nextEdgeID   models.EdgeID

	incidence map[models.VertexID][]models.EdgeID
}

// New returns an empty working set.
func New() *WorkingSet {
	return &WorkingSet{
		Trails:    make(map[string]*models.Trail),
		vertices:  make(map[models.VertexID]*models.Vertex),
		edges:     make(map[models.EdgeID]*models.Edge),
		incidence: make(map[models.VertexID][]models.EdgeID),
	}
}

// AddTrail inserts or overwrites a trail by ID.
func (ws *WorkingSet) AddTrail(t models.Trail) {
	ws.Trails[t.ID.String()] = &t
}

// DeleteTrail removes a trail by ID.
func (ws *WorkingSet) DeleteTrail(id string) {
	delete(ws.Trails, id)
}

// AddVertex inserts a new vertex, assigning it the next available ID, and
// returns the ID.
func (ws *WorkingSet) AddVertex(x, y, z float64) models.VertexID {
	ws.nextVertexID++
	id := ws.nextVertexID
	ws.vertices[id] = &models.Vertex{ID: id, X: x, Y: y, Z: z}
	return id
}

// PutVertex inserts or overwrites a vertex at a caller-chosen ID, advancing
// the ID allocator past it. Used when rebuilding a working set from a
// persisted store (spec §8 property 9, round-trip).
func (ws *WorkingSet) PutVertex(v models.Vertex) {
	ws.vertices[v.ID] = &v
	if v.ID > ws.nextVertexID {
		ws.nextVertexID = v.ID
	}
}

// Vertex returns the vertex with the given ID, or nil if absent.
func (ws *WorkingSet) Vertex(id models.VertexID) *models.Vertex { return ws.vertices[id] }

// DeleteVertex removes a vertex. Callers must ensure no edge still
// references it (spec §3 "A vertex is removed only when no edge
// references it").
func (ws *WorkingSet) DeleteVertex(id models.VertexID) {
	delete(ws.vertices, id)
	delete(ws.incidence, id)
}

// VertexCount returns the number of vertices currently in the working set.
func (ws *WorkingSet) VertexCount() int { return len(ws.vertices) }

// Vertices returns all vertices sorted by ID, for deterministic iteration.
func (ws *WorkingSet) Vertices() []*models.Vertex {
	out := make([]*models.Vertex, 0, len(ws.vertices))
	for _, v := range ws.vertices {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddEdge inserts a new edge, assigning it the next available ID, and
// returns the ID. Incidence lists are updated immediately.
func (ws *WorkingSet) AddEdge(e models.Edge) models.EdgeID {
	ws.nextEdgeID++
	e.ID = ws.nextEdgeID
	ws.edges[e.ID] = &e
	ws.incidence[e.Source] = append(ws.incidence[e.Source], e.ID)
	ws.incidence[e.Target] = append(ws.incidence[e.Target], e.ID)
	return e.ID
}

// PutEdge inserts or overwrites an edge at a caller-chosen ID, advancing the
// ID allocator past it, and rebuilds incidence for it. Used for round-trip
// reconstruction.
func (ws *WorkingSet) PutEdge(e models.Edge) {
	ws.edges[e.ID] = &e
	if e.ID > ws.nextEdgeID {
		ws.nextEdgeID = e.ID
	}
	ws.incidence[e.Source] = append(ws.incidence[e.Source], e.ID)
	ws.incidence[e.Target] = append(ws.incidence[e.Target], e.ID)
}

// Edge returns the edge with the given ID, or nil if absent.
func (ws *WorkingSet) Edge(id models.EdgeID) *models.Edge { return ws.edges[id] }

// DeleteEdge removes an edge and updates the incidence lists of both
// endpoints. It does not touch vertex degree counts or remove orphaned
// vertices -- callers run RecomputeDegrees (and their own orphan sweep)
// once per batch of deletions (spec §4.9).
func (ws *WorkingSet) DeleteEdge(id models.EdgeID) {
	e, ok := ws.edges[id]
	if !ok {
		return
	}
	delete(ws.edges, id)
	ws.incidence[e.Source] = removeID(ws.incidence[e.Source], id)
	ws.incidence[e.Target] = removeID(ws.incidence[e.Target], id)
}

// EdgeCount returns the number of edges currently in the working set.
func (ws *WorkingSet) EdgeCount() int { return len(ws.edges) }

// Edges returns all edges sorted by ID, for deterministic iteration.
func (ws *WorkingSet) Edges() []*models.Edge {
	out := make([]*models.Edge, 0, len(ws.edges))
	for _, e := range ws.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IncidentEdges returns the IDs of edges touching v, in no particular
// order. The returned slice must not be mutated by the caller.
func (ws *WorkingSet) IncidentEdges(v models.VertexID) []models.EdgeID {
	return ws.incidence[v]
}

// RemoveOrphanVertices deletes every vertex with zero incident edges.
// Returns the removed vertex IDs. Run after any batch of edge deletions
// that might have isolated a vertex (spec §4.7, §4.8 post-conditions).
func (ws *WorkingSet) RemoveOrphanVertices() []models.VertexID {
	var removed []models.VertexID
	for id := range ws.vertices {
		if len(ws.incidence[id]) == 0 {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		ws.DeleteVertex(id)
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return removed
}

// RemoveSelfLoops deletes every edge whose source equals its target.
// Returns the removed edge IDs. Several stages can incidentally produce
// self-loops (vertex welding, chain compaction around a closed loop) and
// must scrub them before recomputing degrees (spec §3 edge invariant).
func (ws *WorkingSet) RemoveSelfLoops() []models.EdgeID {
	var removed []models.EdgeID
	for id, e := range ws.edges {
		if e.IsSelfLoop() {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		ws.DeleteEdge(id)
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return removed
}

func removeID(ids []models.EdgeID, target models.EdgeID) []models.EdgeID {
	for i, id := range ids {
		if id == target {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
