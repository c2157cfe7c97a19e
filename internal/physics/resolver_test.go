package physics

import (
	"testing"

	"cogentcore.org/core/math32"

	"sim3d/internal/transform"
)

const tol = 1e-4

func vecNear(t *testing.T, got, want math32.Vector3, what string) {
	t.Helper()
	if got.Sub(want).Length() > tol {
		t.Errorf("%s = %v, want %v", what, got, want)
	}
}

func TestResolveSingleContact(t *testing.T) {
	ts := transform.NewSystem()

	dynamic := NewRigidBody(ts.Create(transform.IdentityTRS()))
	static := NewRigidBody(ts.Create(transform.IdentityTRS()))
	static.InvMass = 0

	r := NewContactResolver()
	// Contact at both body origins: no torque arm, purely linear.
	r.AddContact(NewContact(ts, math32.Vec3(0, 0, 0), math32.Vec3(0, 1, 0), 1.0, dynamic, static))
	r.Resolve(ts)
	r.Clear()

	local, err := ts.Local(dynamic.Transform)
	if err != nil {
		t.Fatalf("Local: %v", err)
	}
	vecNear(t, local.Translation, math32.Vec3(0, Restitution, 0), "dynamic body translation")

	local, err = ts.Local(static.Transform)
	if err != nil {
		t.Fatalf("Local: %v", err)
	}
	vecNear(t, local.Translation, math32.Vec3(0, 0, 0), "static body translation")
}

func TestResolveRekeysCrossContacts(t *testing.T) {
	ts := transform.NewSystem()

	body := NewRigidBody(ts.Create(transform.IdentityTRS()))
	s1 := NewRigidBody(ts.Create(transform.IdentityTRS()))
	s1.InvMass = 0
	s2 := NewRigidBody(ts.Create(transform.IdentityTRS()))
	s2.InvMass = 0

	deep := NewContact(ts, math32.Vec3(0, 0, 0), math32.Vec3(0, 1, 0), 1.0, body, s1)
	shallow := NewContact(ts, math32.Vec3(0, 0, 0), math32.Vec3(0, 1, 0), 0.5, body, s2)

	r := NewContactResolver()
	r.AddContact(deep)
	r.AddContact(shallow)
	r.Resolve(ts)

	// Correcting the deep contact moved the body up by Restitution,
	// which more than closed the shallow contact. Its stored
	// penetration must reflect that.
	want := 0.5 - Restitution
	if diff := shallow.Penetration - float32(want); diff > tol || diff < -tol {
		t.Errorf("shallow contact penetration = %v, want %v", shallow.Penetration, want)
	}

	// Only the deep contact may have moved the body.
	local, err := ts.Local(body.Transform)
	if err != nil {
		t.Fatalf("Local: %v", err)
	}
	vecNear(t, local.Translation, math32.Vec3(0, Restitution, 0), "body translation")

	r.Clear()
	if r.Pending() != 0 {
		t.Errorf("resolver still holds %d contacts after Clear", r.Pending())
	}
}

func TestClearScrubsBodyHandles(t *testing.T) {
	ts := transform.NewSystem()
	body := NewRigidBody(ts.Create(transform.IdentityTRS()))

	r := NewContactResolver()
	r.AddContact(NewContact(ts, math32.Vec3(0, 0, 0), math32.Vec3(0, 1, 0), 0.1, body, nil))
	if len(body.contacts) != 1 {
		t.Fatalf("body holds %d contact handles, want 1", len(body.contacts))
	}
	r.Resolve(ts)
	r.Clear()
	if len(body.contacts) != 0 {
		t.Errorf("body still holds %d contact handles after Clear", len(body.contacts))
	}
}

func TestContactNormalOrientation(t *testing.T) {
	ts := transform.NewSystem()
	trs := transform.IdentityTRS()
	trs.Translation = math32.Vec3(0, 2, 0)
	body := NewRigidBody(ts.Create(trs))

	// The contact sits below the body center; a normal handed in
	// pointing down must be flipped to point the body's escape way.
	c := NewContact(ts, math32.Vec3(0, 1, 0), math32.Vec3(0, -1, 0), 0.5, body, nil)
	vecNear(t, c.Normal, math32.Vec3(0, 1, 0), "re-oriented normal")
}
