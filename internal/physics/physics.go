// Package physics provides collision detection and distance utilities.
package physics

import "github.com/go-gl/mathgl/mgl64"

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(a, b mgl64.Vec3) float64 {
	d := b.Sub(a)
	return d.Dot(d)
}

// SpheresOverlap checks if two spheres overlap.
func SpheresOverlap(a mgl64.Vec3, ra float64, b mgl64.Vec3, rb float64) bool {
	minDist := ra + rb
	return DistanceSquared(a, b) < minDist*minDist
}

// ClosestOnSegment returns the point on segment from-to nearest to p.
func ClosestOnSegment(from, to, p mgl64.Vec3) mgl64.Vec3 {
	d := to.Sub(from)
	lenSq := d.Dot(d)
	if lenSq == 0 {
		return from
	}
	t := min(max(p.Sub(from).Dot(d)/lenSq, 0), 1)
	return from.Add(d.Mul(t))
}

// SweptSpheresOverlap checks if a sphere of radius ra moving from from to
// to overlaps a static sphere b at any point along the way.
func SweptSpheresOverlap(from, to mgl64.Vec3, ra float64, b mgl64.Vec3, rb float64) bool {
	return SpheresOverlap(ClosestOnSegment(from, to, b), ra, b, rb)
}
