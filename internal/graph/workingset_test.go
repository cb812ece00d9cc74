package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/trailnet/internal/models"
)

func TestAddVertexAndEdgeUpdatesIncidence(t *testing.T) {
	ws := New()
	v1 := ws.AddVertex(0, 0, 0)
	v2 := ws.AddVertex(1, 1, 0)

	eid := ws.AddEdge(models.Edge{Source: v1, Target: v2})

	require.NotNil(t, ws.Edge(eid))
	assert.ElementsMatch(t, []models.EdgeID{eid}, ws.IncidentEdges(v1))
	assert.ElementsMatch(t, []models.EdgeID{eid}, ws.IncidentEdges(v2))
}

func TestRecomputeDegrees(t *testing.T) {
	ws := New()
	v1 := ws.AddVertex(0, 0, 0)
	v2 := ws.AddVertex(1, 0, 0)
	v3 := ws.AddVertex(2, 0, 0)

	ws.AddEdge(models.Edge{Source: v1, Target: v2})
	ws.AddEdge(models.Edge{Source: v2, Target: v3})

	ws.RecomputeDegrees()

	assert.Equal(t, 1, ws.Vertex(v1).Degree)
	assert.Equal(t, 2, ws.Vertex(v2).Degree)
	assert.Equal(t, 1, ws.Vertex(v3).Degree)
}

func TestDeleteEdgeUpdatesIncidence(t *testing.T) {
	ws := New()
	v1 := ws.AddVertex(0, 0, 0)
	v2 := ws.AddVertex(1, 0, 0)
	eid := ws.AddEdge(models.Edge{Source: v1, Target: v2})

	ws.DeleteEdge(eid)

	assert.Empty(t, ws.IncidentEdges(v1))
	assert.Empty(t, ws.IncidentEdges(v2))
	assert.Nil(t, ws.Edge(eid))
}

func TestRemoveOrphanVertices(t *testing.T) {
	ws := New()
	v1 := ws.AddVertex(0, 0, 0)
	v2 := ws.AddVertex(1, 0, 0)
	v3 := ws.AddVertex(2, 0, 0)
	ws.AddEdge(models.Edge{Source: v1, Target: v2})

	removed := ws.RemoveOrphanVertices()

	assert.Equal(t, []models.VertexID{v3}, removed)
	assert.Nil(t, ws.Vertex(v3))
	assert.NotNil(t, ws.Vertex(v1))
}

func TestRemoveSelfLoops(t *testing.T) {
	ws := New()
	v1 := ws.AddVertex(0, 0, 0)
	v2 := ws.AddVertex(1, 0, 0)
	loop := ws.AddEdge(models.Edge{Source: v1, Target: v1})
	ws.AddEdge(models.Edge{Source: v1, Target: v2})

	removed := ws.RemoveSelfLoops()

	assert.Equal(t, []models.EdgeID{loop}, removed)
	assert.Equal(t, 1, ws.EdgeCount())
}

func TestNeighborsDedupsParallelEdges(t *testing.T) {
	ws := New()
	v1 := ws.AddVertex(0, 0, 0)
	v2 := ws.AddVertex(1, 0, 0)
	ws.AddEdge(models.Edge{Source: v1, Target: v2})
	ws.AddEdge(models.Edge{Source: v1, Target: v2})

	neighbors := ws.Neighbors(v1)

	assert.Equal(t, []models.VertexID{v2}, neighbors)
}

func TestDegreeHistogram(t *testing.T) {
	ws := New()
	v1 := ws.AddVertex(0, 0, 0)
	v2 := ws.AddVertex(1, 0, 0)
	v3 := ws.AddVertex(2, 0, 0)
	ws.AddEdge(models.Edge{Source: v1, Target: v2})
	ws.AddEdge(models.Edge{Source: v2, Target: v3})
	ws.RecomputeDegrees()

	hist := ws.DegreeHistogram()

	assert.Equal(t, 2, hist[1])
	assert.Equal(t, 1, hist[2])
}

func TestPutVertexAdvancesAllocator(t *testing.T) {
	ws := New()
	ws.PutVertex(models.Vertex{ID: 42, X: 5, Y: 5})

	next := ws.AddVertex(0, 0, 0)

	assert.Equal(t, models.VertexID(43), next)
}
