package graph

import "github.com/ali01/trailnet/internal/models"

// RecomputeDegrees recounts every vertex's Degree field from the current
// incidence lists. Spec §4.9 requires this to run after every stage whose
// own logic depends on degree, since stages mutate edges directly and do
// not maintain Degree incrementally.
func (ws *WorkingSet) RecomputeDegrees() {
	for _, v := range ws.vertices {
		v.Degree = len(ws.incidence[v.ID])
	}
}

// Neighbors returns the distinct vertices reachable from v by a single
// edge. A multi-edge pair (two parallel edges between the same vertices)
// yields the neighbor once.
func (ws *WorkingSet) Neighbors(v models.VertexID) []models.VertexID {
	seen := make(map[models.VertexID]bool)
	var out []models.VertexID
	for _, eid := range ws.incidence[v] {
		e := ws.edges[eid]
		if e == nil {
			continue
		}
		other := e.OtherEndpoint(v)
		if !seen[other] {
			seen[other] = true
			out = append(out, other)
		}
	}
	return out
}

// DegreeHistogram tallies vertex count by degree, for the pipeline Report
// (spec §6 Outbound "vertex degree histogram").
func (ws *WorkingSet) DegreeHistogram() map[int]int {
	h := make(map[int]int)
	for _, v := range ws.vertices {
		h[v.Degree]++
	}
	return h
}
