package preprocess

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
	return Config{MaxPasses: 3, MinLengthMeters: 5, SimplifyToleranceM: 0}
}

func TestRunDropsTooShortTrail(t *testing.T) {
	ws := graph.New()
	ws.AddTrail(models.NewTrail(uuid.New(), "tiny", models.TrailKindTrail, geomops.LineString3D{
		{X: 0, Y: 0}, {X: 0.00001, Y: 0},
	}))

	_, err := New(defaultConfig()).Run(context.Background(), ws)

	require.NoError(t, err)
	assert.Empty(t, ws.Trails)
}

func TestRunKeepsValidTrail(t *testing.T) {
	ws := graph.New()
	ws.AddTrail(models.NewTrail(uuid.New(), "long enough", models.TrailKindTrail, geomops.LineString3D{
		{X: 0, Y: 0}, {X: 0, Y: 0.01},
	}))

	_, err := New(defaultConfig()).Run(context.Background(), ws)

	require.NoError(t, err)
	assert.Len(t, ws.Trails, 1)
}

func TestRunDropsDuplicateGeometry(t *testing.T) {
	ws := graph.New()
	geom := geomops.LineString3D{{X: 0, Y: 0}, {X: 0, Y: 0.01}}
	ws.AddTrail(models.NewTrail(uuid.New(), "first", models.TrailKindTrail, append(geomops.LineString3D{}, geom...)))
	ws.AddTrail(models.NewTrail(uuid.New(), "duplicate", models.TrailKindTrail, append(geomops.LineString3D{}, geom...)))

	_, err := New(defaultConfig()).Run(context.Background(), ws)

	require.NoError(t, err)
	assert.Len(t, ws.Trails, 1)
}

func TestRunDropsEmptyGeometry(t *testing.T) {
	ws := graph.New()
	ws.AddTrail(models.Trail{ID: uuid.New(), Name: "empty", Geometry: geomops.LineString3D{{X: 0, Y: 0}}})

	_, err := New(defaultConfig()).Run(context.Background(), ws)

	require.NoError(t, err)
	assert.Empty(t, ws.Trails)
}
