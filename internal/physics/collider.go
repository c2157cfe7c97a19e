package physics

import (
	"cogentcore.org/core/math32"

	"sim3d/internal/transform"
)

// cubeCorners are the vertices of the unit cube with radius 1, the
// canonical collider shape before the owning transform is applied.
var cubeCorners = [8]math32.Vector3{
	{X: -1, Y: -1, Z: -1},
	{X: 1, Y: -1, Z: -1},
	{X: -1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: 1},
	{X: 1, Y: 1, Z: -1},
	{X: 1, Y: -1, Z: 1},
	{X: -1, Y: 1, Z: 1},
	{X: 1, Y: 1, Z: 1},
}

// CuboidCollider is a cube of radius 1 under its owning transform,
// with a cached world-space bounding box for the broad phase.
type CuboidCollider struct {
	Transform transform.ID
	Body      *RigidBody

	bounds math32.Box3
}

// NewCuboidCollider builds a collider for the given transform and
// computes its initial bounds.
func NewCuboidCollider(ts *transform.System, id transform.ID) (*CuboidCollider, error) {
	c := &CuboidCollider{Transform: id}
	if err := c.UpdateBounds(ts); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateBounds recomputes the world bounding box from the eight cube
// corners pushed through the current world matrix.
func (c *CuboidCollider) UpdateBounds(ts *transform.System) error {
	model, err := ts.GlobalModel(c.Transform)
	if err != nil {
		return err
	}
	b := math32.B3Empty()
	for _, corner := range cubeCorners {
		b.ExpandByPoint(corner.MulMatrix4(&model))
	}
	c.bounds = b
	return nil
}

// Bounds returns the cached world-space bounding box.
func (c *CuboidCollider) Bounds() math32.Box3 {
	return c.bounds
}
