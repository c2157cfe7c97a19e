package physics

import (
	"fmt"

	"cogentcore.org/core/math32"

	"sim3d/internal/heap"
	"sim3d/internal/transform"
)

// Restitution scales how much of each penetration is corrected per
// resolver pass.
var Restitution float32 = 0.8

// ContactResolver removes interpenetration by repeatedly correcting
// the worst contact first. Correcting one contact re-keys every other
// pending contact on the moved bodies, since moving a body changes how
// much its remaining contacts overlap.
type ContactResolver struct {
	pending *heap.MaxHeap[float32, *Contact]
	settled []*Contact
}

func NewContactResolver() *ContactResolver {
	return &ContactResolver{
		pending: heap.New[float32, *Contact](),
	}
}

// AddContact queues a contact, keyed by penetration depth.
func (r *ContactResolver) AddContact(c *Contact) {
	r.pending.InsertWithHandle(c.Penetration, c, c.handle)
}

// Pending reports how many contacts await resolution.
func (r *ContactResolver) Pending() int {
	return r.pending.Len()
}

// Resolve runs the position phase over every pending contact, then
// re-queues the settled contacts keyed by target velocity change for
// the velocity phase.
func (r *ContactResolver) Resolve(ts *transform.System) {
	r.resolvePenetration(ts)

	for _, c := range r.settled {
		r.pending.InsertWithHandle(c.targetDeltaVelocity, c, c.handle)
	}
	r.settled = r.settled[:0]

	r.resolveVelocity(ts)
}

// resolvePenetration drains the heap worst-first. Contacts whose
// penetration has dropped to zero or below by the time they surface
// need no correction.
func (r *ContactResolver) resolvePenetration(ts *transform.System) {
	for {
		c, ok := r.pending.ExtractMax()
		if !ok {
			return
		}
		if c.Penetration > 0 {
			r.applyCorrection(ts, c)
		}
		r.settled = append(r.settled, c)
	}
}

// resolveVelocity is the second phase: converting each contact's
// target velocity change into impulses. Deliberately a no-op for now;
// the position phase alone keeps bodies separated, and the data it
// needs (targetDeltaVelocity, per-body inertia) is already carried on
// every contact.
func (r *ContactResolver) resolveVelocity(ts *transform.System) {}

// applyCorrection moves each involved body by its share of the
// correction, then patches the penetration of every other contact on
// the moved bodies.
func (r *ContactResolver) applyCorrection(ts *transform.System, c *Contact) {
	total := c.body1.inertia()
	if c.body2 != nil {
		total += c.body2.inertia()
	}
	if total == 0 {
		return
	}
	// j is the positional impulse closing the gap: each body moves
	// j times its own inertia, summing to the full correction.
	j := Restitution * c.Penetration / total

	r.moveBody(ts, c, &c.body1, j, 1)
	if c.body2 != nil {
		r.moveBody(ts, c, c.body2, j, -1)
	}
}

func (r *ContactResolver) moveBody(ts *transform.System, c *Contact, ref *contactBodyRef, j, sign float32) {
	translation := c.Normal.MulScalar(j * ref.invMass * sign)
	// Rotation vector of the small corrective turn; the per-body sign
	// is already baked into torquePerImpulse.
	rotVec := ref.torquePerImpulse.MulScalar(j * ref.angularInertia)

	if translation.LengthSquared() == 0 && rotVec.LengthSquared() == 0 {
		return
	}

	rot := RotationExp(rotVec.MulScalar(0.5))
	if err := ts.Mutate(ref.body.Transform, func(local *transform.TRS) {
		local.Translation = local.Translation.Add(translation)
		local.Rotation = rot.Mul(local.Rotation)
	}); err != nil {
		panic(fmt.Sprintf("physics: resolver moved body without transform: %v", err))
	}

	r.propagate(ref.body, c, translation, rotVec)
}

// propagate adjusts the stored penetration of every other pending
// contact touching body, after body moved by translation and rotVec.
func (r *ContactResolver) propagate(body *RigidBody, resolved *Contact, translation, rotVec math32.Vector3) {
	for _, hd := range body.contacts {
		if hd == resolved.handle || hd.Removed() {
			continue
		}
		r.pending.ModifyKey(hd, func(v **Contact) float32 {
			other := *v
			ref := &other.body1
			escape := float32(1)
			if other.body2 != nil && other.body2.body == body {
				ref = other.body2
				escape = -1
			}
			// Displacement of the contact point on the moved body.
			moved := translation.Add(rotVec.Cross(ref.relativePos))
			// Moving along the body's escape direction shrinks the
			// overlap.
			other.Penetration -= escape * moved.Dot(other.Normal)
			return other.Penetration
		})
	}
}

// Clear drains every remaining contact and scrubs the involved bodies'
// handle lists, so nothing points into the emptied heap next tick.
func (r *ContactResolver) Clear() {
	for {
		c, ok := r.pending.ExtractMax()
		if !ok {
			break
		}
		r.settled = append(r.settled, c)
	}
	for _, c := range r.settled {
		c.body1.body.ClearContacts()
		if c.body2 != nil {
			c.body2.body.ClearContacts()
		}
	}
	r.settled = r.settled[:0]
}
