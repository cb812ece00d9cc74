package connector

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/trailnet/internal/geomops"
	"github.com/ali01/trailnet/internal/graph"
	"github.com/ali01/trailnet/internal/models"
)

func defaultConfig() Config {
	return Config{ToleranceMeters: 5, NamePatterns: []string{"connector", "cutoff", "link"}}
}

func TestRunCollapsesConnectorBetweenTwoTrailEdges(t *testing.T) {
	ws := graph.New()
	a := ws.AddVertex(0, 0, 0)
	b := ws.AddVertex(0, 0.001, 0)
	c := ws.AddVertex(0, 0.002, 0)
	d := ws.AddVertex(0, 0.003, 0)

	connTrail := uuid.New()
	leftTrail := uuid.New()
	rightTrail := uuid.New()

	ws.AddEdge(models.Edge{Source: a, Target: b, Geometry: geomops.LineString3D{{X: 0, Y: 0}, {X: 0, Y: 0.001}}, TrailID: &leftTrail, Provenance: models.Original(leftTrail)})
	ws.AddEdge(models.Edge{Source: b, Target: c, Geometry: geomops.LineString3D{{X: 0, Y: 0.001}, {X: 0, Y: 0.002}}, TrailID: &connTrail, Name: "connector a", Provenance: models.Original(connTrail)})
	ws.AddEdge(models.Edge{Source: c, Target: d, Geometry: geomops.LineString3D{{X: 0, Y: 0.002}, {X: 0, Y: 0.003}}, TrailID: &rightTrail, Provenance: models.Original(rightTrail)})

	ws.AddTrail(models.NewTrail(connTrail, "connector a", models.TrailKindConnector, geomops.LineString3D{{X: 0, Y: 0.001}, {X: 0, Y: 0.002}}))
	ws.AddTrail(models.NewTrail(leftTrail, "main", models.TrailKindTrail, geomops.LineString3D{{X: 0, Y: 0}, {X: 0, Y: 0.001}}))
	ws.AddTrail(models.NewTrail(rightTrail, "main2", models.TrailKindTrail, geomops.LineString3D{{X: 0, Y: 0.002}, {X: 0, Y: 0.003}}))

	result, err := New(defaultConfig()).Run(context.Background(), ws)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Merged)
	assert.Equal(t, 1, ws.EdgeCount())

	merged := ws.Edges()[0]
	assert.True(t, (merged.Source == a && merged.Target == d) || (merged.Source == d && merged.Target == a))
}

func TestRunLeavesAlreadyConnectedConnectorUntouched(t *testing.T) {
	ws := graph.New()
	connTrail := uuid.New()

	trail := models.NewTrail(connTrail, "cutoff", models.TrailKindConnector, geomops.LineString3D{{X: 0, Y: 0}, {X: 0, Y: 0.001}})
	ws.AddTrail(trail)

	a := ws.AddVertex(0, 0, 0)
	b := ws.AddVertex(0, 0.001, 0)
	ws.AddEdge(models.Edge{Source: a, Target: b, TrailID: &connTrail, Geometry: geomops.LineString3D{{X: 0, Y: 0}, {X: 0, Y: 0.001}}, Provenance: models.Original(connTrail)})

	result, err := New(defaultConfig()).Run(context.Background(), ws)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, result.Merged)
	assert.Equal(t, 1, ws.EdgeCount())
}

