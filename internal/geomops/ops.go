package geomops

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// Ops is the abstract geometry capability set spec §9 asks for in place of
// the source's ST_* calls: simplify, validity/simplicity checks, pairwise
// intersection, grid snapping, line merging and the handful of accessors
// every stage needs. Backed by github.com/paulmach/orb.
type Ops interface {
	IsValid(l LineString3D) bool
	IsSimple(l LineString3D) bool
	Simplify(l LineString3D, toleranceMeters float64) LineString3D
	LengthMeters(l LineString3D) float64
	DistanceMeters(a, b Point3D) float64
	SnapToGrid(l LineString3D, resolutionMeters float64) LineString3D
	Intersects(a, b LineString3D) bool
	IntersectionPoints(a, b LineString3D) []Intersection
	LineMerge(parts []LineString3D) (LineString3D, bool)
	StartPoint(l LineString3D) Point3D
	EndPoint(l LineString3D) Point3D
	Envelope(l LineString3D) orb.Bound
}

// Intersection is a single crossing point between two lines, expressed as
// the fractional position along each line's arc length (0 at the line's
// start, 1 at its end) so callers can split both geometries consistently.
type Intersection struct {
	Point  Point3D
	FracA  float64
	FracB  float64
	IdxA   int // segment index within a at which the crossing occurs
	IdxB   int // segment index within b
}

type ops struct{}

// New returns the default orb-backed Ops implementation.
func New() Ops { return ops{} }

func (ops) IsValid(l LineString3D) bool {
	if len(l) < 2 {
		return false
	}
	for _, p := range l {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return false
		}
		if p.X < -180 || p.X > 180 || p.Y < -90 || p.Y > 90 {
			return false
		}
	}
	return true
}

// IsSimple reports whether the line is non-self-intersecting, i.e. no two
// non-adjacent segments cross. O(n^2) in segment count; trail geometries are
// short enough for this to be acceptable per-row validation work.
func (o ops) IsSimple(l LineString3D) bool {
	pts := l.To2D()
	n := len(pts)
	if n < 2 {
		return false
	}
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n-1; j++ {
			if j == i+1 {
				continue // adjacent segments legitimately share an endpoint
			}
			if segmentsCross(pts[i], pts[i+1], pts[j], pts[j+1]) {
				return false
			}
		}
	}
	return true
}

func (ops) Simplify(l LineString3D, toleranceMeters float64) LineString3D {
	if len(l) <= 2 {
		return l.Clone()
	}
	simplifier := simplify.DouglasPeucker(MetersToDegrees(toleranceMeters, l[0].Y))
	simplified := simplifier.LineString(l.To2D())
	return reattachElevation(l, simplified)
}

func (ops) LengthMeters(l LineString3D) float64 { return l.LengthMeters() }

func (ops) DistanceMeters(a, b Point3D) float64 { return DistanceMeters(a, b) }

// SnapToGrid rounds each coordinate to the nearest cell of a grid whose
// resolution is resolutionMeters, so that points within half a cell of each
// other collapse to the same coordinate (spec §4.2's snapping step).
// Degenerate consecutive duplicates introduced by snapping are collapsed.
func (ops) SnapToGrid(l LineString3D, resolutionMeters float64) LineString3D {
	if len(l) == 0 {
		return l
	}
	step := MetersToDegrees(resolutionMeters, l[0].Y)
	if step <= 0 {
		return l.Clone()
	}
	out := make(LineString3D, 0, len(l))
	for _, p := range l {
		snapped := Point3D{
			X: math.Round(p.X/step) * step,
			Y: math.Round(p.Y/step) * step,
			Z: p.Z,
		}
		if len(out) > 0 && out[len(out)-1].X == snapped.X && out[len(out)-1].Y == snapped.Y {
			continue
		}
		out = append(out, snapped)
	}
	if len(out) < 2 {
		return l.Clone()
	}
	return out
}

func (ops) Intersects(a, b LineString3D) bool {
	pa, pb := a.To2D(), b.To2D()
	if !boundsOverlap(pa.Bound(), pb.Bound()) {
		return false
	}
	for i := 0; i < len(pa)-1; i++ {
		for j := 0; j < len(pb)-1; j++ {
			if segmentsCross(pa[i], pa[i+1], pb[j], pb[j+1]) || segmentsTouch(pa[i], pa[i+1], pb[j], pb[j+1]) {
				return true
			}
		}
	}
	return false
}

// IntersectionPoints enumerates every point where a and b cross, expressed
// as arc-length fractions on each line (the Noder uses these to split both
// geometries at once).
func (o ops) IntersectionPoints(a, b LineString3D) []Intersection {
	pa, pb := a.To2D(), b.To2D()
	if !boundsOverlap(pa.Bound(), pb.Bound()) {
		return nil
	}

	lenA := a.LengthMeters()
	lenB := b.LengthMeters()
	var accA float64
	var out []Intersection

	for i := 0; i < len(pa)-1; i++ {
		segA := DistanceMeters(Point3D{pa[i][0], pa[i][1], 0}, Point3D{pa[i+1][0], pa[i+1][1], 0})
		var accB float64
		for j := 0; j < len(pb)-1; j++ {
			segB := DistanceMeters(Point3D{pb[j][0], pb[j][1], 0}, Point3D{pb[j+1][0], pb[j+1][1], 0})
			if pt, tA, tB, ok := segmentIntersection(pa[i], pa[i+1], pb[j], pb[j+1]); ok {
				fracA := safeDiv(accA+tA*segA, lenA)
				fracB := safeDiv(accB+tB*segB, lenB)
				out = append(out, Intersection{
					Point: Point3D{X: pt[0], Y: pt[1]},
					FracA: clamp01(fracA),
					FracB: clamp01(fracB),
					IdxA:  i,
					IdxB:  j,
				})
			}
			accB += segB
		}
		accA += segA
	}
	return out
}

// LineMerge stitches a sequence of lines end-to-head into one connected
// line. Each part is oriented (possibly reversed) to connect to the
// running tail. Returns ok=false if any adjacent pair doesn't meet within
// a small absolute tolerance, matching spec §4.8's "failure disqualifies
// the chain" semantics -- callers supply already snapped/welded geometry so
// the tolerance here is tight.
func (ops) LineMerge(parts []LineString3D) (LineString3D, bool) {
	const joinEps = 1e-6 // degrees; ~10cm, fixed (no configured join distance is read)
	if len(parts) == 0 {
		return nil, false
	}
	merged := parts[0].Clone()
	for _, next := range parts[1:] {
		tail := merged.End()
		var seg LineString3D
		switch {
		case closeEnough(tail, next.Start(), joinEps):
			seg = next
		case closeEnough(tail, next.End(), joinEps):
			seg = next.Reversed()
		default:
			return nil, false
		}
		merged = append(merged, seg[1:]...)
	}
	return merged, true
}

func (ops) StartPoint(l LineString3D) Point3D { return l.Start() }
func (ops) EndPoint(l LineString3D) Point3D   { return l.End() }
func (ops) Envelope(l LineString3D) orb.Bound { return l.Bound() }

func closeEnough(a, b Point3D, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func boundsOverlap(a, b orb.Bound) bool {
	return a.Min[0] <= b.Max[0] && a.Max[0] >= b.Min[0] &&
		a.Min[1] <= b.Max[1] && a.Max[1] >= b.Min[1]
}

// orientation returns the signed area of the triangle (a, b, c): positive
// if c is left of a→b, negative if right, zero if collinear.
func orientation(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// segmentsCross reports a proper crossing (interiors intersect).
func segmentsCross(p1, p2, p3, p4 orb.Point) bool {
	d1 := orientation(p3, p4, p1)
	d2 := orientation(p3, p4, p2)
	d3 := orientation(p1, p2, p3)
	d4 := orientation(p1, p2, p4)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// segmentsTouch reports whether the segments share an endpoint or an
// endpoint lies on the other segment (non-proper intersection).
func segmentsTouch(p1, p2, p3, p4 orb.Point) bool {
	return onSegment(p1, p2, p3) || onSegment(p1, p2, p4) ||
		onSegment(p3, p4, p1) || onSegment(p3, p4, p2)
}

func onSegment(a, b, p orb.Point) bool {
	if math.Abs(orientation(a, b, p)) > 1e-12 {
		return false
	}
	return math.Min(a[0], b[0])-1e-12 <= p[0] && p[0] <= math.Max(a[0], b[0])+1e-12 &&
		math.Min(a[1], b[1])-1e-12 <= p[1] && p[1] <= math.Max(a[1], b[1])+1e-12
}

// segmentIntersection returns the intersection point of two segments and
// the parametric position (0..1) along each, if they meet anywhere in their
// closed extents (endpoint touches included). Parallel or collinear segments
// report false.
func segmentIntersection(p1, p2, p3, p4 orb.Point) (orb.Point, float64, float64, bool) {
	rX, rY := p2[0]-p1[0], p2[1]-p1[1]
	sX, sY := p4[0]-p3[0], p4[1]-p3[1]
	denom := rX*sY - rY*sX
	if math.Abs(denom) < 1e-15 {
		return orb.Point{}, 0, 0, false
	}
	qpX, qpY := p3[0]-p1[0], p3[1]-p1[1]
	t := (qpX*sY - qpY*sX) / denom
	u := (qpX*rY - qpY*rX) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return orb.Point{}, 0, 0, false
	}
	pt := orb.Point{p1[0] + t*rX, p1[1] + t*rY}
	return pt, t, u, true
}

// reattachElevation maps a simplified 2D line back onto the original 3D
// line by nearest-index lookup, since Douglas-Peucker only drops points
// rather than moving them.
func reattachElevation(orig LineString3D, simplified orb.LineString) LineString3D {
	out := make(LineString3D, len(simplified))
	oi := 0
	for i, p := range simplified {
		for oi < len(orig)-1 && (orig[oi].X != p[0] || orig[oi].Y != p[1]) {
			oi++
		}
		z := orig[oi].Z
		out[i] = Point3D{X: p[0], Y: p[1], Z: z}
	}
	return out
}
