package physics

import (
	"cogentcore.org/core/math32"

	"sim3d/internal/transform"
)

// obb is the exact world-space shape of a cuboid collider: center,
// rotated unit axes and half extents.
type obb struct {
	center   math32.Vector3
	halfSize math32.Vector3
	axes     [3]math32.Vector3
}

// obbFromModel extracts an obb from a world matrix. The canonical cube
// has radius 1, so each half extent is the length of the matching
// matrix column.
func obbFromModel(m *math32.Matrix4) obb {
	cols := [3]math32.Vector3{
		math32.Vec3(m[0], m[1], m[2]),
		math32.Vec3(m[4], m[5], m[6]),
		math32.Vec3(m[8], m[9], m[10]),
	}
	o := obb{center: math32.Vec3(m[12], m[13], m[14])}
	o.halfSize = math32.Vec3(cols[0].Length(), cols[1].Length(), cols[2].Length())
	for i, c := range cols {
		o.axes[i] = c.Normal()
	}
	return o
}

// project returns the radius of the obb projected onto axis.
func (o obb) project(axis math32.Vector3) float32 {
	return o.halfSize.X*math32.Abs(o.axes[0].Dot(axis)) +
		o.halfSize.Y*math32.Abs(o.axes[1].Dot(axis)) +
		o.halfSize.Z*math32.Abs(o.axes[2].Dot(axis))
}

// closestPoint returns the point on the obb's surface (or interior)
// nearest to p.
func (o obb) closestPoint(p math32.Vector3) math32.Vector3 {
	rel := p.Sub(o.center)
	out := o.center
	half := [3]float32{o.halfSize.X, o.halfSize.Y, o.halfSize.Z}
	for i, axis := range o.axes {
		d := math32.Clamp(rel.Dot(axis), -half[i], half[i])
		out = out.Add(axis.MulScalar(d))
	}
	return out
}

// CollideCuboids runs the full 15-axis separating-axis test between
// two cuboid colliders. When the boxes overlap it reports a contact
// point on b's surface, the minimum-penetration axis oriented so that
// a escapes along it, and the penetration depth.
func CollideCuboids(ts *transform.System, a, b *CuboidCollider) (position, normal math32.Vector3, penetration float32, hit bool, err error) {
	ma, err := ts.GlobalModel(a.Transform)
	if err != nil {
		return position, normal, 0, false, err
	}
	mb, err := ts.GlobalModel(b.Transform)
	if err != nil {
		return position, normal, 0, false, err
	}
	oa := obbFromModel(&ma)
	ob := obbFromModel(&mb)

	t := ob.center.Sub(oa.center)
	minPen := math32.Inf(1)
	separated := false

	testAxis := func(axis math32.Vector3) {
		if separated || axis.LengthSquared() < 1e-8 {
			return
		}
		axis = axis.Normal()
		dist := t.Dot(axis)
		pen := oa.project(axis) + ob.project(axis) - math32.Abs(dist)
		if pen < 0 {
			separated = true
			return
		}
		if pen < minPen {
			minPen = pen
			// Escape direction for a is away from b.
			if dist < 0 {
				normal = axis
			} else {
				normal = axis.Negate()
			}
		}
	}

	for i := 0; i < 3; i++ {
		testAxis(oa.axes[i])
	}
	for i := 0; i < 3; i++ {
		testAxis(ob.axes[i])
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			testAxis(oa.axes[i].Cross(ob.axes[j]))
		}
	}
	if separated {
		return position, normal, 0, false, nil
	}

	position = ob.closestPoint(oa.center)
	return position, normal, minPen, true, nil
}
