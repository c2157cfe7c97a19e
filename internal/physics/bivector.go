package physics

import "cogentcore.org/core/math32"

// RotationExp maps an angular-velocity bivector to the rotation it
// generates over a unit interval, as a quaternion. Closed form: the
// magnitude becomes the rotation half-angle, the direction the axis.
func RotationExp(b math32.Vector3) math32.Quat {
	l := b.Length()
	if l == 0 {
		var q math32.Quat
		q.SetIdentity()
		return q
	}
	s := math32.Sin(l) / l
	return math32.Quat{X: b.X * s, Y: b.Y * s, Z: b.Z * s, W: math32.Cos(l)}
}
