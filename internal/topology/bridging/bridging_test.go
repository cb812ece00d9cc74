package bridging

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

func TestRunBridgesNearbyEndpoints(t *testing.T) {
	ws := graph.New()
	ws.AddTrail(models.NewTrail(uuid.New(), "a", models.TrailKindTrail, geomops.LineString3D{
		{X: -105.28000, Y: 39.98000}, {X: -105.28100, Y: 39.98100},
	}))
	ws.AddTrail(models.NewTrail(uuid.New(), "b", models.TrailKindTrail, geomops.LineString3D{
		{X: -105.27995, Y: 39.98002}, {X: -105.27900, Y: 39.97900},
	}))

	result, err := New(Config{ToleranceMeters: 10, SnapMeters: 1}).Run(context.Background(), ws)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Len(t, ws.Trails, 3)
}

func TestRunSkipsEndpointsBeyondTolerance(t *testing.T) {
	ws := graph.New()
	ws.AddTrail(models.NewTrail(uuid.New(), "a", models.TrailKindTrail, geomops.LineString3D{
		{X: 0, Y: 0}, {X: 0, Y: 0.001},
	}))
	ws.AddTrail(models.NewTrail(uuid.New(), "b", models.TrailKindTrail, geomops.LineString3D{
		{X: 1, Y: 1}, {X: 1, Y: 1.001},
	}))

	result, err := New(Config{ToleranceMeters: 10, SnapMeters: 1}).Run(context.Background(), ws)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Len(t, ws.Trails, 2)
}
