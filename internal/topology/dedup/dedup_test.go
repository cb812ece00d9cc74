package dedup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/trailnet/internal/geomops"
	"github.com/ali01/trailnet/internal/graph"
	"github.com/ali01/trailnet/internal/models"
)

// Scenario F (spec §8): two edges between the same vertices, 0.42km and
// 0.44km. With keep_shortest, the 0.42km edge survives.
func TestRunKeepsShortestByDefault(t *testing.T) {
	ws := graph.New()
	v7 := ws.AddVertex(0, 0, 0)
	v8 := ws.AddVertex(0, 0.01, 0)

	short := models.Edge{Source: v7, Target: v8, Geometry: geomops.LineString3D{{X: 0, Y: 0}, {X: 0, Y: 0.01}}, LengthKM: 0.42}
	long := models.Edge{Source: v8, Target: v7, Geometry: geomops.LineString3D{{X: 0, Y: 0.01}, {X: 0, Y: 0}}, LengthKM: 0.44}
	shortID := ws.AddEdge(short)
	ws.AddEdge(long)

	result, err := New(Config{Policy: KeepShortest}).Run(context.Background(), ws)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Removed)
	assert.Equal(t, 1, ws.EdgeCount())
	assert.Equal(t, shortID, ws.Edges()[0].ID)
}

func TestRunKeepsLongestWhenConfigured(t *testing.T) {
	ws := graph.New()
	v1 := ws.AddVertex(0, 0, 0)
	v2 := ws.AddVertex(0, 0.01, 0)

	ws.AddEdge(models.Edge{Source: v1, Target: v2, Geometry: geomops.LineString3D{{X: 0, Y: 0}, {X: 0, Y: 0.01}}, LengthKM: 0.42})
	longID := ws.AddEdge(models.Edge{Source: v2, Target: v1, Geometry: geomops.LineString3D{{X: 0, Y: 0.01}, {X: 0, Y: 0}}, LengthKM: 0.44})

	result, err := New(Config{Policy: KeepLongest}).Run(context.Background(), ws)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Removed)
	assert.Equal(t, longID, ws.Edges()[0].ID)
}

// Two genuinely distinct routes between the same two junctions (e.g. a
// direct path and a long detour) must both survive even though they share
// an endpoint pair, since their sampled midpoints differ by far more than
// snapMeters (spec §8 testable property 5).
func TestRunKeepsBothWhenGeometryDiffersSubstantially(t *testing.T) {
	ws := graph.New()
	v1 := ws.AddVertex(0, 0, 0)
	v2 := ws.AddVertex(0, 0.01, 0)

	direct := ws.AddEdge(models.Edge{
		Source:   v1,
		Target:   v2,
		Geometry: geomops.LineString3D{{X: 0, Y: 0}, {X: 0, Y: 0.01}},
		LengthKM: 1.1,
	})
	detour := ws.AddEdge(models.Edge{
		Source:   v1,
		Target:   v2,
		Geometry: geomops.LineString3D{{X: 0, Y: 0}, {X: 0.05, Y: 0.005}, {X: 0, Y: 0.01}},
		LengthKM: 8,
	})

	result, err := New(Config{Policy: KeepShortest, SnapMeters: 10}).Run(context.Background(), ws)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Removed)
	assert.Equal(t, 2, ws.EdgeCount())
	assert.NotNil(t, ws.Edge(direct))
	assert.NotNil(t, ws.Edge(detour))
}

func TestRunLeavesUniqueEdgesAlone(t *testing.T) {
	ws := graph.New()
	v1 := ws.AddVertex(0, 0, 0)
	v2 := ws.AddVertex(0, 0.01, 0)
	v3 := ws.AddVertex(0, 0.02, 0)
	ws.AddEdge(models.Edge{Source: v1, Target: v2, Geometry: geomops.LineString3D{{X: 0, Y: 0}, {X: 0, Y: 0.01}}, LengthKM: 1})
	ws.AddEdge(models.Edge{Source: v2, Target: v3, Geometry: geomops.LineString3D{{X: 0, Y: 0.01}, {X: 0, Y: 0.02}}, LengthKM: 1})

	result, err := New(Config{Policy: KeepShortest}).Run(context.Background(), ws)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Removed)
	assert.Equal(t, 2, ws.EdgeCount())
}
