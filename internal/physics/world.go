package physics

import (
	"time"

	"cogentcore.org/core/math32"
	"go.uber.org/zap"

	"sim3d/internal/transform"
)

// deepPenetration is the overlap depth beyond which a contact is
// suspicious: a body moving fast enough to sink this far in one tick
// is close to tunneling through its neighbor.
const deepPenetration = 1.0

// StepMetrics summarizes one fixed tick of the physics pipeline.
type StepMetrics struct {
	Bodies     int
	BroadPairs int
	Contacts   int

	Integrate time.Duration
	Broad     time.Duration
	Resolve   time.Duration
}

// MetricsSink receives per-tick measurements. A nil sink disables
// measurement entirely.
type MetricsSink func(StepMetrics)

type worldEntry struct {
	collider *CuboidCollider
	leaf     AttachedLeaf
	body     *RigidBody
}

// World ties the pipeline together: rigid bodies posed by the
// transform hierarchy, a bounding-volume tree for the broad phase, and
// the contact resolver. Not safe for concurrent use; the simulation
// loop serializes access.
type World struct {
	Transforms *transform.System

	tree     *Tree
	resolver *ContactResolver
	entries  []worldEntry
	bodies   []*RigidBody

	log *zap.Logger
}

func NewWorld(ts *transform.System, log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	return &World{
		Transforms: ts,
		tree:       NewTree(),
		resolver:   NewContactResolver(),
		log:        log,
	}
}

// AddBody registers a dynamic body whose transform also carries a
// cuboid collider.
func (w *World) AddBody(rb *RigidBody) error {
	c, err := NewCuboidCollider(w.Transforms, rb.Transform)
	if err != nil {
		return err
	}
	c.Body = rb
	leaf, err := w.tree.Insert(w.tree.Register(c))
	if err != nil {
		return err
	}
	w.entries = append(w.entries, worldEntry{collider: c, leaf: leaf, body: rb})
	w.bodies = append(w.bodies, rb)
	return nil
}

// AddStatic registers a collider with no body: immovable geometry.
func (w *World) AddStatic(id transform.ID) error {
	c, err := NewCuboidCollider(w.Transforms, id)
	if err != nil {
		return err
	}
	leaf, err := w.tree.Insert(w.tree.Register(c))
	if err != nil {
		return err
	}
	w.entries = append(w.entries, worldEntry{collider: c, leaf: leaf})
	return nil
}

// Tree exposes the broad-phase index for queries.
func (w *World) Tree() *Tree {
	return w.tree
}

// Raycast queries the broad-phase tree.
func (w *World) Raycast(ray math32.Ray) (RaycastHit, bool) {
	return w.tree.Raycast(ray)
}

// Step advances the simulation one fixed tick: integrate bodies,
// re-fit moved colliders, collect overlaps, build and resolve
// contacts, then snapshot poses for render interpolation.
func (w *World) Step(dt float32, sink MetricsSink) error {
	var m StepMetrics
	m.Bodies = len(w.bodies)

	start := time.Now()
	for _, rb := range w.bodies {
		rb.StoreOldVelocity()
		if err := rb.Integrate(w.Transforms, dt); err != nil {
			return err
		}
	}
	m.Integrate = time.Since(start)

	start = time.Now()
	if err := w.refitMoved(); err != nil {
		return err
	}
	pairs := w.tree.Overlaps()
	m.BroadPairs = len(pairs)
	m.Broad = time.Since(start)

	start = time.Now()
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		if a.Body == nil && b.Body == nil {
			continue
		}
		// The contact's first body must be dynamic.
		if a.Body == nil {
			a, b = b, a
		}
		pos, normal, pen, hit, err := CollideCuboids(w.Transforms, a, b)
		if err != nil {
			return err
		}
		if !hit {
			continue
		}
		if pen > deepPenetration {
			w.log.Warn("deep penetration, bodies may be tunneling",
				zap.Float32("depth", pen))
		}
		w.resolver.AddContact(NewContact(w.Transforms, pos, normal, pen, a.Body, b.Body))
		m.Contacts++
	}
	w.resolver.Resolve(w.Transforms)
	w.resolver.Clear()
	m.Resolve = time.Since(start)

	for i := range w.entries {
		if err := w.Transforms.StoreLastModel(w.entries[i].collider.Transform); err != nil {
			return err
		}
	}
	w.Transforms.UpdateLastFixed()

	if sink != nil {
		sink(m)
	}
	return nil
}

// refitMoved re-fits the tree leaf of every dynamic collider to its
// body's new pose.
func (w *World) refitMoved() error {
	for i := range w.entries {
		e := &w.entries[i]
		if e.body == nil {
			continue
		}
		var boundsErr error
		leaf, err := w.tree.Modify(e.leaf, func(c *CuboidCollider) {
			boundsErr = c.UpdateBounds(w.Transforms)
		})
		if err != nil {
			return err
		}
		if boundsErr != nil {
			return boundsErr
		}
		e.leaf = leaf
	}
	return nil
}
