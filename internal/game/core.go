package game

import "math"

type Vec2 struct{ X, Y float64 }

func (a Vec2) Add(b Vec2) Vec2      { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2      { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Len() float64         { return math.Hypot(a.X, a.Y) }
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }

// Rect is an axis-aligned box identified by its center and half extents.
type Rect struct {
	Center Vec2
	HalfW  float64
	HalfH  float64
}

func RectFromBounds(minX, minY, maxX, maxY float64) Rect {
	return Rect{
		Center: Vec2{X: (minX + maxX) / 2, Y: (minY + maxY) / 2},
		HalfW:  (maxX - minX) / 2,
		HalfH:  (maxY - minY) / 2,
	}
}

func (r Rect) MinX() float64 { return r.Center.X - r.HalfW }
func (r Rect) MaxX() float64 { return r.Center.X + r.HalfW }
func (r Rect) MinY() float64 { return r.Center.Y - r.HalfH }
func (r Rect) MaxY() float64 { return r.Center.Y + r.HalfH }

func (r Rect) Overlaps(o Rect) bool {
	return r.MinX() < o.MaxX() && r.MaxX() > o.MinX() &&
		r.MinY() < o.MaxY() && r.MaxY() > o.MinY()
}

func (r Rect) At(center Vec2) Rect {
	r.Center = center
	return r
}

// Facing is the cardinal direction a sprite is drawn toward.
type Facing string

const (
	FacingUp    Facing = "up"
	FacingDown  Facing = "down"
	FacingLeft  Facing = "left"
	FacingRight Facing = "right"
)

// FacingFor picks the dominant axis of a movement intent. A zero vector
// keeps the previous facing.
func FacingFor(intent Vec2, prev Facing) Facing {
	if intent.X == 0 && intent.Y == 0 {
		return prev
	}
	if math.Abs(intent.X) >= math.Abs(intent.Y) {
		if intent.X > 0 {
			return FacingRight
		}
		return FacingLeft
	}
	if intent.Y > 0 {
		return FacingDown
	}
	return FacingUp
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
