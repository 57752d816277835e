// Package spatial declares the query contracts the map renderer will
// need once world geometry is available. The extraction pipeline does
// not implement them; consumers plug in their own engine and the
// interfaces keep that seam stable.
package spatial

// Point is a position in native-resolution map pixel coordinates.
type Point struct {
	X float64
	Y float64
}

// Visibility is the outcome of a line-of-sight query.
type Visibility struct {
	Visible bool
	// BlockingObject identifies the first occluder when not visible;
	// empty otherwise. The identifier namespace belongs to the
	// implementation.
	BlockingObject string
}

// LineOfSight answers whether target can be seen from origin.
type LineOfSight interface {
	Check(origin, target Point) (Visibility, error)
}

// Pathfinder produces a traversable route between two points. An empty
// path with a nil error means no route exists.
type Pathfinder interface {
	FindPath(start, end Point) ([]Point, error)
}
