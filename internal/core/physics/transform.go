package physics

// Transform places a rigid visual piece in world space.
type Transform struct {
	Position Vec3
	Rotation Quat
}

// SegmentTransform centres a piece of the given length on the segment start-end
// and orients its forward axis along the segment.
func SegmentTransform(start, end Vec3, length float64) Transform {
	dir := NormalizeOrZero(end.Sub(start))
	return Transform{
		Position: start.Add(dir.Mul(length / 2)),
		Rotation: LookingTowards(dir, Up),
	}
}

// Axes returns the world-space directions of the local X, Y and Z axes.
func (t Transform) Axes() (x, y, z Vec3) {
	return t.Rotation.Rotate(Right), t.Rotation.Rotate(Up), t.Rotation.Rotate(Back)
}
