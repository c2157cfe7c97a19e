package physics

import (
	"fmt"

	"cogentcore.org/core/math32"

	"sim3d/internal/heap"
	"sim3d/internal/transform"
)

// contactBodyRef caches one body's view of a contact: where the
// contact sits relative to the body and how hard the body is to move
// along the constraint.
type contactBodyRef struct {
	body *RigidBody

	relativePos      math32.Vector3
	torquePerImpulse math32.Vector3

	invMass        float32
	angularInertia float32
}

// inertia is the body's total inverse effective mass along the
// contact normal.
func (r *contactBodyRef) inertia() float32 {
	return r.invMass + r.angularInertia
}

// Contact is a single interpenetration between two bodies (or one body
// and static geometry), built by the narrow phase and consumed by the
// resolver within the same tick.
type Contact struct {
	Position math32.Vector3
	// Normal points in the direction body 1 must move to separate.
	Normal      math32.Vector3
	Penetration float32

	body1 contactBodyRef
	body2 *contactBodyRef

	closingVelocity math32.Vector3
	// targetDeltaVelocity is the relative velocity change the
	// velocity phase would need to apply.
	targetDeltaVelocity float32

	// handle locates this contact in the resolver's pending heap; it
	// is also registered on each involved body so resolving one
	// contact can re-key the body's other contacts.
	handle *heap.Handle
}

// NewContact builds a contact and registers its heap handle with every
// involved body. rb2 may be nil for contacts against static geometry.
// Every body must have a live transform; a failed lookup here means
// the simulation state is corrupt.
func NewContact(ts *transform.System, position, normal math32.Vector3, penetration float32, rb1 *RigidBody, rb2 *RigidBody) *Contact {
	handle := &heap.Handle{}

	local1, err := ts.Local(rb1.Transform)
	if err != nil {
		panic(fmt.Sprintf("physics: contact references body without transform: %v", err))
	}
	relPos1 := position.Sub(local1.Translation)

	// Orient the normal so it points the way body 1 escapes. Assumes
	// convex shapes, where the body center is behind its own surface.
	if normal.Dot(relPos1) > 0 {
		normal = normal.Negate()
	}

	c := &Contact{
		Position:    position,
		Normal:      normal,
		Penetration: penetration,
		handle:      handle,
	}

	c.body1 = contactBodyRef{
		body:             rb1,
		relativePos:      relPos1,
		torquePerImpulse: normal.Cross(relPos1),
		invMass:          rb1.InvMass,
	}
	c.body1.angularInertia = rb1.AngularVelPerImpulse(c.body1.torquePerImpulse, local1.Rotation)
	rb1.contacts = append(rb1.contacts, handle)

	pointVel1 := rb1.PointVelocity(relPos1)

	if rb2 != nil {
		local2, err := ts.Local(rb2.Transform)
		if err != nil {
			panic(fmt.Sprintf("physics: contact references body without transform: %v", err))
		}
		relPos2 := position.Sub(local2.Translation)

		ref := &contactBodyRef{
			body:             rb2,
			relativePos:      relPos2,
			torquePerImpulse: normal.Cross(relPos2).Negate(),
			invMass:          rb2.InvMass,
		}
		ref.angularInertia = rb2.AngularVelPerImpulse(ref.torquePerImpulse, local2.Rotation)
		rb2.contacts = append(rb2.contacts, handle)
		c.body2 = ref

		c.closingVelocity = pointVel1.Sub(rb2.PointVelocity(relPos2))
	} else {
		c.closingVelocity = pointVel1
	}
	c.targetDeltaVelocity = -2 * c.closingVelocity.Dot(normal)

	return c
}
