// Package geomops provides the geometric primitives the topology pipeline
// builds on: 3D trail geometries backed by github.com/paulmach/orb for the
// planar/spherical predicates, with elevation carried as the Z field of
// each Point3D.
package geomops

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Point3D is a single vertex of a trail or edge geometry: longitude,
// latitude, and elevation in meters.
type Point3D struct {
	X, Y, Z float64
}

// LineString3D is an ordered sequence of Point3D, matching the data model's
// "3D LINESTRING with elevation and attributes" (spec §1).
type LineString3D []Point3D

// To2D projects the line onto its planar (orb) representation, discarding
// elevation. Every predicate that only needs X/Y goes through this.
func (l LineString3D) To2D() orb.LineString {
	pts := make(orb.LineString, len(l))
	for i, p := range l {
		pts[i] = orb.Point{p.X, p.Y}
	}
	return pts
}

// Bound returns the 2D envelope of the line.
func (l LineString3D) Bound() orb.Bound {
	return l.To2D().Bound()
}

// Start returns the line's first point.
func (l LineString3D) Start() Point3D {
	return l[0]
}

// End returns the line's last point.
func (l LineString3D) End() Point3D {
	return l[len(l)-1]
}

// Reversed returns a copy of the line with point order reversed.
func (l LineString3D) Reversed() LineString3D {
	out := make(LineString3D, len(l))
	for i, p := range l {
		out[len(l)-1-i] = p
	}
	return out
}

// Clone returns an independent copy of the line.
func (l LineString3D) Clone() LineString3D {
	out := make(LineString3D, len(l))
	copy(out, l)
	return out
}

// LengthMeters sums the great-circle distance between consecutive points.
func (l LineString3D) LengthMeters() float64 {
	total := 0.0
	for i := 1; i < len(l); i++ {
		total += geo.Distance(orb.Point{l[i-1].X, l[i-1].Y}, orb.Point{l[i].X, l[i].Y})
	}
	return total
}

// ElevationGainLoss sums positive and negative deltas in Z across the line.
func (l LineString3D) ElevationGainLoss() (gainM, lossM float64) {
	for i := 1; i < len(l); i++ {
		d := l[i].Z - l[i-1].Z
		if d > 0 {
			gainM += d
		} else {
			lossM += -d
		}
	}
	return gainM, lossM
}

// PointAtFraction linearly interpolates a point (including Z) at arc-length
// fraction t ∈ [0, 1] along the line. Used by the Noder to assign elevation
// to freshly split segments and by the Compactor to validate join
// continuity.
func (l LineString3D) PointAtFraction(t float64) Point3D {
	if len(l) == 0 {
		return Point3D{}
	}
	if t <= 0 {
		return l[0]
	}
	if t >= 1 {
		return l[len(l)-1]
	}

	total := l.LengthMeters()
	if total == 0 {
		return l[0]
	}

	target := t * total
	acc := 0.0
	for i := 1; i < len(l); i++ {
		seg := geo.Distance(orb.Point{l[i-1].X, l[i-1].Y}, orb.Point{l[i].X, l[i].Y})
		if acc+seg >= target || i == len(l)-1 {
			if seg == 0 {
				return l[i-1]
			}
			frac := (target - acc) / seg
			return lerp(l[i-1], l[i], frac)
		}
		acc += seg
	}
	return l[len(l)-1]
}

func lerp(a, b Point3D, t float64) Point3D {
	return Point3D{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// DistanceMeters returns the great-circle distance between two points,
// ignoring elevation (matching the source's planar-tolerance semantics,
// spec §9's "use geographic-distance calls").
func DistanceMeters(a, b Point3D) float64 {
	return geo.Distance(orb.Point{a.X, a.Y}, orb.Point{b.X, b.Y})
}

// MetersToDegrees approximates a meter tolerance as a degree offset at the
// given latitude, used only where a planar degree-space tolerance is needed
// (e.g. bounding an R-tree query by a metric radius). Spec §9 calls for a
// single meters-to-radians helper rather than the source's fixed 1/111320
// factor; this accounts for latitude-dependent longitude compression.
func MetersToDegrees(meters, atLatitude float64) float64 {
	const metersPerDegreeLat = 111320.0
	latRad := atLatitude * math.Pi / 180
	cosLat := math.Cos(latRad)
	if cosLat < 1e-6 {
		cosLat = 1e-6
	}
	// Use the larger of the lat/lon conversions so a square query box is
	// guaranteed to cover a `meters`-radius circle.
	lonFactor := metersPerDegreeLat * cosLat
	if lonFactor > metersPerDegreeLat {
		lonFactor = metersPerDegreeLat
	}
	return meters / lonFactor
}
