// pkg/physics/vector.go
package physics

import "github.com/EngoEngine/math"

// Vector2D represents a 2D vector with x and y components.
// Components are float32 to match the persisted world layout.
type Vector2D struct {
	X float32
	Y float32
}

// Vec creates a vector from its components
func Vec(x, y float32) Vector2D {
	return Vector2D{X: x, Y: y}
}

// Splat creates a vector with both components set to v
func Splat(v float32) Vector2D {
	return Vector2D{X: v, Y: v}
}

// Add returns the sum of two vectors
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X + other.X,
		Y: v.Y + other.Y,
	}
}

// Sub returns the difference between two vectors
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X - other.X,
		Y: v.Y - other.Y,
	}
}

// Scale multiplies the vector by a scalar value
func (v Vector2D) Scale(factor float32) Vector2D {
	return Vector2D{
		X: v.X * factor,
		Y: v.Y * factor,
	}
}

// Neg returns the vector pointing the opposite way
func (v Vector2D) Neg() Vector2D {
	return Vector2D{X: -v.X, Y: -v.Y}
}

// Length returns the magnitude of the vector
func (v Vector2D) Length() float32 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// LengthSquared returns magnitude squared (optimization for comparisons)
func (v Vector2D) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns a unit vector in the same direction
func (v Vector2D) Normalize() Vector2D {
	length := v.Length()
	if length == 0 {
		return Vector2D{}
	}
	return Vector2D{
		X: v.X / length,
		Y: v.Y / length,
	}
}

// Distance returns the distance between two vectors
func (v Vector2D) Distance(other Vector2D) float32 {
	return v.Sub(other).Length()
}

// DistanceSquared returns the squared distance between two vectors
func (v Vector2D) DistanceSquared(other Vector2D) float32 {
	return v.Sub(other).LengthSquared()
}

// Dot returns the dot product of two vectors
func (v Vector2D) Dot(other Vector2D) float32 {
	return v.X*other.X + v.Y*other.Y
}

// Perp returns the vector rotated by 90 degrees counter-clockwise
func (v Vector2D) Perp() Vector2D {
	return Vector2D{X: -v.Y, Y: v.X}
}

// Min returns the component-wise minimum
func (v Vector2D) Min(other Vector2D) Vector2D {
	if other.X < v.X {
		v.X = other.X
	}
	if other.Y < v.Y {
		v.Y = other.Y
	}
	return v
}

// Max returns the component-wise maximum
func (v Vector2D) Max(other Vector2D) Vector2D {
	if other.X > v.X {
		v.X = other.X
	}
	if other.Y > v.Y {
		v.Y = other.Y
	}
	return v
}

// Lerp interpolates linearly between v and other by k
func (v Vector2D) Lerp(other Vector2D, k float32) Vector2D {
	return v.Add(other.Sub(v).Scale(k))
}
