package welder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/trailnet/internal/geomops"
	"github.com/ali01/trailnet/internal/graph"
	"github.com/ali01/trailnet/internal/models"
)

func TestRunMergesCoincidentVertices(t *testing.T) {
	ws := graph.New()
	v1 := ws.AddVertex(-105.2800, 39.9800, 0)
	v2 := ws.AddVertex(-105.28001, 39.98001, 0) // ~1.3m away
	v3 := ws.AddVertex(-105.27000, 39.97000, 0) // far away

	ws.AddEdge(models.Edge{Source: v1, Target: v3, Geometry: geomops.LineString3D{{X: -105.28, Y: 39.98}, {X: -105.27, Y: 39.97}}})
	ws.AddEdge(models.Edge{Source: v2, Target: v3, Geometry: geomops.LineString3D{{X: -105.28001, Y: 39.98001}, {X: -105.27, Y: 39.97}}})

	result, err := New(Config{ToleranceMeters: 3}).Run(context.Background(), ws)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Merged)
	assert.Equal(t, 2, ws.VertexCount())

	canonical := v1
	if v2 < v1 {
		canonical = v2
	}
	for _, e := range ws.Edges() {
		assert.True(t, e.Source == canonical || e.Target == canonical)
	}
}

func TestRunLeavesDistinctVerticesAlone(t *testing.T) {
	ws := graph.New()
	v1 := ws.AddVertex(0, 0, 0)
	v2 := ws.AddVertex(1, 1, 0)
	ws.AddEdge(models.Edge{Source: v1, Target: v2, Geometry: geomops.LineString3D{{X: 0, Y: 0}, {X: 1, Y: 1}}})

	result, err := New(Config{ToleranceMeters: 3}).Run(context.Background(), ws)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Merged)
	assert.Equal(t, 2, ws.VertexCount())
}

func TestRunRemovesResultingSelfLoop(t *testing.T) {
	ws := graph.New()
	v1 := ws.AddVertex(-105.2800, 39.9800, 0)
	v2 := ws.AddVertex(-105.28001, 39.98001, 0)
	ws.AddEdge(models.Edge{Source: v1, Target: v2, Geometry: geomops.LineString3D{{X: -105.28, Y: 39.98}, {X: -105.28001, Y: 39.98001}}})

	result, err := New(Config{ToleranceMeters: 3}).Run(context.Background(), ws)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Merged)
	assert.Equal(t, 1, result.Removed)
	assert.Equal(t, 0, ws.EdgeCount())
}

func TestRunIsIdempotent(t *testing.T) {
	ws := graph.New()
	v1 := ws.AddVertex(-105.2800, 39.9800, 0)
	v2 := ws.AddVertex(-105.28001, 39.98001, 0)
	v3 := ws.AddVertex(-105.27000, 39.97000, 0)
	ws.AddEdge(models.Edge{Source: v1, Target: v3, Geometry: geomops.LineString3D{{X: -105.28, Y: 39.98}, {X: -105.27, Y: 39.97}}})
	ws.AddEdge(models.Edge{Source: v2, Target: v3, Geometry: geomops.LineString3D{{X: -105.28001, Y: 39.98001}, {X: -105.27, Y: 39.97}}})

	stage := New(Config{ToleranceMeters: 3})
	_, err := stage.Run(context.Background(), ws)
	require.NoError(t, err)

	result, err := stage.Run(context.Background(), ws)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Merged)
}
