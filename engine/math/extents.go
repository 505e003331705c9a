package math

// corner sign table: bit 0 selects -X, bit 1 selects -Y, bit 2 selects +Z.
var extentsMap = [8]Vec3{
	{1, 1, -1},
	{-1, 1, -1},
	{1, -1, -1},
	{-1, -1, -1},
	{1, 1, 1},
	{-1, 1, 1},
	{1, -1, 1},
	{-1, -1, 1},
}

func NewExtents3D(min, max Vec3) Extents3D {
	return Extents3D{Min: min, Max: max}
}

// Center returns the midpoint of the extents.
func (e Extents3D) Center() Vec3 {
	return e.Min.Add(e.Max).MulScalar(0.5)
}

// HalfSize returns half the size of the extents along each axis.
func (e Extents3D) HalfSize() Vec3 {
	return e.Max.Sub(e.Min).MulScalar(0.5)
}

// Radius is the distance from the center to any corner.
func (e Extents3D) Radius() float32 {
	return e.HalfSize().Length()
}

// IsInverted reports whether max is below min on any axis.
func (e Extents3D) IsInverted() bool {
	return e.Max.X < e.Min.X || e.Max.Y < e.Min.Y || e.Max.Z < e.Min.Z
}

// Corners returns the eight corners of the box. The order is fixed and
// shared with the triangle table used to clip the box:
// (+,+,-) (-,+,-) (+,-,-) (-,-,-) (+,+,+) (-,+,+) (+,-,+) (-,-,+).
func (e Extents3D) Corners() [8]Vec3 {
	center := e.Center()
	half := e.HalfSize()

	var corners [8]Vec3
	for i, sign := range extentsMap {
		corners[i] = sign.Mul(half).Add(center)
	}
	return corners
}
