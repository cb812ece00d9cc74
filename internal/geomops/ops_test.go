package geomops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLengthMetersAndElevation(t *testing.T) {
	l := LineString3D{
		{X: -105.285, Y: 39.985, Z: 2000},
		{X: -105.284, Y: 39.985, Z: 2010},
		{X: -105.283, Y: 39.985, Z: 1995},
	}
	assert.Greater(t, l.LengthMeters(), 0.0)
	gain, loss := l.ElevationGainLoss()
	assert.InDelta(t, 10, gain, 1e-9)
	assert.InDelta(t, 15, loss, 1e-9)
}

func TestPointAtFractionEndpoints(t *testing.T) {
	l := LineString3D{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 0.001, Z: 10}}
	start := l.PointAtFraction(0)
	end := l.PointAtFraction(1)
	assert.Equal(t, l[0], start)
	assert.Equal(t, l[1], end)
}

func TestIntersectionPointsXCrossing(t *testing.T) {
	o := New()
	a := LineString3D{{X: -1, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}}
	b := LineString3D{{X: 0, Y: -1, Z: 0}, {X: 0, Y: 1, Z: 0}}
	pts := o.IntersectionPoints(a, b)
	require.Len(t, pts, 1)
	assert.InDelta(t, 0, pts[0].Point.X, 1e-9)
	assert.InDelta(t, 0, pts[0].Point.Y, 1e-9)
	assert.InDelta(t, 0.5, pts[0].FracA, 1e-6)
	assert.InDelta(t, 0.5, pts[0].FracB, 1e-6)
}

func TestLineMergeOrientsSegments(t *testing.T) {
	o := New()
	a := LineString3D{{X: 0, Y: 0}, {X: 1, Y: 0}}
	b := LineString3D{{X: 2, Y: 0}, {X: 1, Y: 0}} // reversed relative to a's tail
	merged, ok := o.LineMerge([]LineString3D{a, b})
	require.True(t, ok)
	assert.Equal(t, Point3D{X: 0, Y: 0}, merged[0])
	assert.Equal(t, Point3D{X: 2, Y: 0}, merged[len(merged)-1])
}

func TestSnapToGridCollapsesNearDuplicates(t *testing.T) {
	o := New()
	l := LineString3D{
		{X: 0, Y: 0},
		{X: 0.0000001, Y: 0.0000001},
		{X: 1, Y: 1},
	}
	snapped := o.SnapToGrid(l, 0.5)
	assert.Less(t, len(snapped), len(l))
}

func TestIsSimpleRejectsSelfIntersection(t *testing.T) {
	o := New()
	simple := LineString3D{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}
	assert.True(t, o.IsSimple(simple))

	bowtie := LineString3D{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	assert.False(t, o.IsSimple(bowtie))
}
