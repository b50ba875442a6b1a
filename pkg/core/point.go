package core

import "fmt"

// Point is a two-axis integer coordinate. In vehicle-local (mount) space
// positive X points forward and positive Y points to the right.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the component-wise sum of p and q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the component-wise difference of p and q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Tripoint is an absolute world coordinate including the Z level.
type Tripoint struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Add returns the component-wise sum of t and the given offset.
func (t Tripoint) Add(d Tripoint) Tripoint {
	return Tripoint{X: t.X + d.X, Y: t.Y + d.Y, Z: t.Z + d.Z}
}

// XY drops the Z level.
func (t Tripoint) XY() Point {
	return Point{X: t.X, Y: t.Y}
}

func (t Tripoint) String() string {
	return fmt.Sprintf("(%d,%d,%d)", t.X, t.Y, t.Z)
}
