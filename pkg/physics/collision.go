// pkg/physics/collision.go
package physics

// Circle represents a circular collision shape
type Circle struct {
	Center Vector2D
	Radius float32
}

// Collides checks if two circles are overlapping
func (c Circle) Collides(other Circle) bool {
	r := c.Radius + other.Radius
	return c.Center.DistanceSquared(other.Center) < r*r
}

// Contains reports whether point lies inside or on the circle
func (c Circle) Contains(point Vector2D) bool {
	return c.Center.DistanceSquared(point) <= c.Radius*c.Radius
}

// CollisionResult contains information about a collision
type CollisionResult struct {
	Collided    bool
	Normal      Vector2D
	Penetration float32
	Distance    float32
}

// CheckCollision performs detailed collision detection between two circles.
// The normal points from a to b. Distances below minDist are clamped, and
// coincident centers use +X as the normal.
func CheckCollision(a, b Circle, minDist float32) CollisionResult {
	delta := b.Center.Sub(a.Center)
	distance := delta.Length()

	if distance >= a.Radius+b.Radius {
		return CollisionResult{Collided: false, Distance: distance}
	}

	normal, distance := Direction(delta, distance, minDist)

	return CollisionResult{
		Collided:    true,
		Normal:      normal,
		Penetration: a.Radius + b.Radius - distance,
		Distance:    distance,
	}
}

// Direction returns delta/length, guarding against tiny lengths.
// The returned length is clamped to at least minDist.
func Direction(delta Vector2D, length, minDist float32) (Vector2D, float32) {
	if length < minDist {
		if length == 0 {
			return Vector2D{X: 1}, minDist
		}
		return delta.Scale(1 / length), minDist
	}
	return delta.Scale(1 / length), length
}

// Body is the kinematic state of a unit point mass
type Body struct {
	P Vector2D
	V Vector2D
}

// ResolveContact separates two overlapping equal-mass bodies of the given
// diameter and exchanges the closing normal component of their velocities.
// It reports whether the pair was in contact.
func ResolveContact(a, b *Body, diameter, minDist float32) bool {
	hit := CheckCollision(
		Circle{Center: a.P, Radius: diameter / 2},
		Circle{Center: b.P, Radius: diameter / 2},
		minDist,
	)
	if !hit.Collided {
		return false
	}

	push := hit.Normal.Scale(hit.Penetration * 0.5)
	a.P = a.P.Sub(push)
	b.P = b.P.Add(push)

	closing := a.V.Sub(b.V).Dot(hit.Normal)
	if closing > 0 {
		impulse := hit.Normal.Scale(closing)
		a.V = a.V.Sub(impulse)
		b.V = b.V.Add(impulse)
	}
	return true
}

// Rect is an axis-aligned rectangle given by its corners
type Rect struct {
	Min Vector2D
	Max Vector2D
}

// RectFromPoints builds a rectangle spanning two arbitrary corners
func RectFromPoints(a, b Vector2D) Rect {
	return Rect{Min: a.Min(b), Max: a.Max(b)}
}

// Contains reports whether point lies inside or on the rectangle
func (r Rect) Contains(point Vector2D) bool {
	return point.X >= r.Min.X && point.X <= r.Max.X &&
		point.Y >= r.Min.Y && point.Y <= r.Max.Y
}

// Size returns the rectangle's width and height
func (r Rect) Size() Vector2D {
	return r.Max.Sub(r.Min)
}

// SegmentDistance returns the distance from p to the segment a-b
func SegmentDistance(p, a, b Vector2D) float32 {
	pa := p.Sub(a)
	ba := b.Sub(a)
	den := ba.LengthSquared()
	if den == 0 {
		return pa.Length()
	}
	h := pa.Dot(ba) / den
	if h < 0 {
		h = 0
	} else if h > 1 {
		h = 1
	}
	return pa.Sub(ba.Scale(h)).Length()
}
