package bridger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/trailnet/internal/geomops"
	"github.com/ali01/trailnet/internal/graph"
	"github.com/ali01/trailnet/internal/models"
)

// Scenario B (spec §8): two trail endpoints 5m apart, gapBridgeMeters = 10.
func TestRunBridgesDegreeOnePair(t *testing.T) {
	ws := graph.New()
	v1 := ws.AddVertex(-105.280, 39.980, 0)
	v2 := ws.AddVertex(-105.27995, 39.98002, 0)
	v3 := ws.AddVertex(-105.290, 39.990, 0)
	v4 := ws.AddVertex(-105.270, 39.970, 0)
	ws.AddEdge(models.Edge{Source: v1, Target: v3, Geometry: geomops.LineString3D{{X: -105.28, Y: 39.98}, {X: -105.29, Y: 39.99}}})
	ws.AddEdge(models.Edge{Source: v2, Target: v4, Geometry: geomops.LineString3D{{X: -105.27995, Y: 39.98002}, {X: -105.27, Y: 39.97}}})

	result, err := New(Config{ToleranceMeters: 10}).Run(context.Background(), ws)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 3, ws.EdgeCount())
}

func TestRunSkipsPairBeyondTolerance(t *testing.T) {
	ws := graph.New()
	v1 := ws.AddVertex(0, 0, 0)
	v2 := ws.AddVertex(0, 0.01, 0)
	v3 := ws.AddVertex(1, 1, 0)
	v4 := ws.AddVertex(1, 1.01, 0)
	ws.AddEdge(models.Edge{Source: v1, Target: v3, Geometry: geomops.LineString3D{{X: 0, Y: 0}, {X: 1, Y: 1}}})
	ws.AddEdge(models.Edge{Source: v2, Target: v4, Geometry: geomops.LineString3D{{X: 0, Y: 0.01}, {X: 1, Y: 1.01}}})

	result, err := New(Config{ToleranceMeters: 10}).Run(context.Background(), ws)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Created)
}

// A (degree-1, degree-2) candidate pair must bridge regardless of which
// side carries the lower vertex ID -- Noder-assigned IDs bear no relation
// to final degree.
func TestRunBridgesDegreeOneAndTwoRegardlessOfIDOrder(t *testing.T) {
	ws := graph.New()
	vA := ws.AddVertex(0, 0, 0)
	vLow := ws.AddVertex(0, 0.001, 0) // lower ID, will end up degree 2
	vB := ws.AddVertex(0, 0.002, 0)
	vHigh := ws.AddVertex(0, 0.00104, 0) // higher ID, degree 1, ~4.4m from vLow
	vC := ws.AddVertex(1, 1, 0)

	ws.AddEdge(models.Edge{Source: vA, Target: vLow, Geometry: geomops.LineString3D{{X: 0, Y: 0}, {X: 0, Y: 0.001}}})
	ws.AddEdge(models.Edge{Source: vLow, Target: vB, Geometry: geomops.LineString3D{{X: 0, Y: 0.001}, {X: 0, Y: 0.002}}})
	ws.AddEdge(models.Edge{Source: vHigh, Target: vC, Geometry: geomops.LineString3D{{X: 0, Y: 0.00104}, {X: 1, Y: 1}}})

	result, err := New(Config{ToleranceMeters: 10}).Run(context.Background(), ws)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.True(t, alreadyConnected(ws, vLow, vHigh))
}

func TestRunSkipsAlreadyConnectedPair(t *testing.T) {
	ws := graph.New()
	v1 := ws.AddVertex(0, 0, 0)
	v2 := ws.AddVertex(0, 0.00001, 0)
	ws.AddEdge(models.Edge{Source: v1, Target: v2, Geometry: geomops.LineString3D{{X: 0, Y: 0}, {X: 0, Y: 0.00001}}})

	result, err := New(Config{ToleranceMeters: 10}).Run(context.Background(), ws)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Created)
}
