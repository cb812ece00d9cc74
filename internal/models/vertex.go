package models

// Vertex is a routing vertex: a 3D position plus a cached incident-edge
// count (spec §3 "Vertex (routing vertex)"). Degree is maintained by
// graph.WorkingSet.RecomputeDegrees and must never be trusted stale across
// a stage boundary.
type Vertex struct {
	ID     VertexID `json:"id"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Z      float64  `json:"z"`
	Degree int      `json:"degree"`
}

// Position returns the vertex's (x, y) location, ignoring elevation —
// the coordinate pair every tolerance/distance check operates on.
func (v Vertex) Position() (x, y float64) { return v.X, v.Y }
