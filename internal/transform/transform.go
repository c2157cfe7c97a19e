// Package transform maintains the scene-graph pose hierarchy. Local
// and world matrices are memoized and rebuilt on read, and each
// transform keeps a last-fixed-tick snapshot of its world matrix so the
// render path can interpolate between physics steps.
package transform

import (
	"errors"
	"fmt"
	"time"

	"cogentcore.org/core/math32"
)

// ErrUnknownTransform is returned by every lookup given an ID the
// system never issued.
var ErrUnknownTransform = errors.New("unknown transform id")

// ID is an opaque handle into the hierarchy. IDs are never reused.
type ID uint32

// TRS is a local pose relative to the parent transform.
type TRS struct {
	Translation math32.Vector3
	Rotation    math32.Quat
	Scale       math32.Vector3
}

// IdentityTRS returns a pose with zero translation, identity rotation
// and unit scale.
func IdentityTRS() TRS {
	var q math32.Quat
	q.SetIdentity()
	return TRS{Rotation: q, Scale: math32.Vec3(1, 1, 1)}
}

type node struct {
	parent    ID
	hasParent bool
	children  map[ID]struct{}
	local     TRS

	localModel  *math32.Matrix4
	globalModel *math32.Matrix4
	lastModel   *math32.Matrix4
}

// System owns every transform in the hierarchy. It is not thread-safe;
// the simulation and render threads share it under one external lock.
type System struct {
	nodes  map[ID]*node
	roots  map[ID]struct{}
	nextID ID

	lastFixed time.Time
	alpha     float32
	now       func() time.Time
}

func NewSystem() *System {
	return &System{
		nodes: map[ID]*node{},
		roots: map[ID]struct{}{},
		now:   time.Now,
	}
}

// Create adds a root transform with the given local pose.
func (s *System) Create(local TRS) ID {
	id := s.nextID
	s.nextID++
	s.nodes[id] = &node{children: map[ID]struct{}{}, local: local}
	s.roots[id] = struct{}{}
	return id
}

// CreateChild adds a transform parented under parent.
func (s *System) CreateChild(parent ID, local TRS) (ID, error) {
	p, ok := s.nodes[parent]
	if !ok {
		return 0, fmt.Errorf("create child of %d: %w", parent, ErrUnknownTransform)
	}
	id := s.nextID
	s.nextID++
	s.nodes[id] = &node{parent: parent, hasParent: true, children: map[ID]struct{}{}, local: local}
	p.children[id] = struct{}{}
	return id, nil
}

// SetParent reparents child under parent and invalidates the child's
// cached world matrices, subtree included.
func (s *System) SetParent(child, parent ID) error {
	c, ok := s.nodes[child]
	if !ok {
		return fmt.Errorf("reparent %d: %w", child, ErrUnknownTransform)
	}
	p, ok := s.nodes[parent]
	if !ok {
		return fmt.Errorf("reparent %d under %d: %w", child, parent, ErrUnknownTransform)
	}
	s.detach(child, c)
	c.parent = parent
	c.hasParent = true
	p.children[child] = struct{}{}
	s.dirtyNode(c)
	return nil
}

// ClearParent detaches child from its parent and moves it to the root
// set.
func (s *System) ClearParent(child ID) error {
	c, ok := s.nodes[child]
	if !ok {
		return fmt.Errorf("unparent %d: %w", child, ErrUnknownTransform)
	}
	s.detach(child, c)
	c.hasParent = false
	s.roots[child] = struct{}{}
	s.dirtyNode(c)
	return nil
}

func (s *System) detach(id ID, n *node) {
	if n.hasParent {
		if p, ok := s.nodes[n.parent]; ok {
			delete(p.children, id)
		}
	} else {
		delete(s.roots, id)
	}
}

// Local returns a copy of id's local pose.
func (s *System) Local(id ID) (TRS, error) {
	n, ok := s.nodes[id]
	if !ok {
		return TRS{}, fmt.Errorf("local pose of %d: %w", id, ErrUnknownTransform)
	}
	return n.local, nil
}

// Mutate applies fn to id's local pose, then invalidates the cached
// matrices of id and every descendant. All pose edits go through here,
// so a stale world matrix can never survive a mutation.
func (s *System) Mutate(id ID, fn func(local *TRS)) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("mutate %d: %w", id, ErrUnknownTransform)
	}
	fn(&n.local)
	n.localModel = nil
	s.dirtyNode(n)
	return nil
}

// Dirty invalidates the cached world matrix of id and every descendant
// without touching local state.
func (s *System) Dirty(id ID) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("dirty %d: %w", id, ErrUnknownTransform)
	}
	s.dirtyNode(n)
	return nil
}

func (s *System) dirtyNode(n *node) {
	n.globalModel = nil
	for child := range n.children {
		if c, ok := s.nodes[child]; ok {
			s.dirtyNode(c)
		}
	}
}

func (n *node) localMatrix() *math32.Matrix4 {
	if n.localModel == nil {
		var m math32.Matrix4
		m.SetTransform(n.local.Translation, n.local.Rotation, n.local.Scale)
		n.localModel = &m
	}
	return n.localModel
}

// GlobalModel returns id's world matrix, composing and caching the
// parent chain on demand.
func (s *System) GlobalModel(id ID) (math32.Matrix4, error) {
	n, ok := s.nodes[id]
	if !ok {
		return math32.Matrix4{}, fmt.Errorf("global model of %d: %w", id, ErrUnknownTransform)
	}
	m, err := s.globalOf(n)
	if err != nil {
		return math32.Matrix4{}, err
	}
	return *m, nil
}

func (s *System) globalOf(n *node) (*math32.Matrix4, error) {
	if n.globalModel != nil {
		return n.globalModel, nil
	}
	local := n.localMatrix()
	if !n.hasParent {
		m := *local
		n.globalModel = &m
		return n.globalModel, nil
	}
	p, ok := s.nodes[n.parent]
	if !ok {
		return nil, fmt.Errorf("resolve parent %d: %w", n.parent, ErrUnknownTransform)
	}
	pm, err := s.globalOf(p)
	if err != nil {
		return nil, err
	}
	var m math32.Matrix4
	m.MulMatrices(pm, local)
	n.globalModel = &m
	return n.globalModel, nil
}

// StoreLastModel snapshots id's current world matrix as the
// interpolation baseline. Called once per fixed tick for every
// transform the render path interpolates.
func (s *System) StoreLastModel(id ID) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("store last model of %d: %w", id, ErrUnknownTransform)
	}
	g, err := s.globalOf(n)
	if err != nil {
		return err
	}
	m := *g
	n.lastModel = &m
	return nil
}

// UpdateLastFixed resets the fixed-step clock. The simulation loop
// calls it once per tick, after StoreLastModel has run for the tick.
func (s *System) UpdateLastFixed() {
	s.lastFixed = s.now()
}

// UpdateInterpolation recomputes the interpolation factor for a fixed
// timestep of dt. The result is clamped to [0, 1] no matter how far
// real time has drifted past the tick boundary.
func (s *System) UpdateInterpolation(dt time.Duration) float32 {
	if dt <= 0 {
		s.alpha = 1
		return s.alpha
	}
	alpha := float32(s.now().Sub(s.lastFixed)) / float32(dt)
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	s.alpha = alpha
	return s.alpha
}

// LerpModel returns the render-facing matrix for id: the last-fixed
// snapshot blended element-wise against the current world matrix by
// the interpolation factor. Blending raw columns shears slightly under
// large per-tick rotations. Without a snapshot it returns the current
// world matrix.
func (s *System) LerpModel(id ID) (math32.Matrix4, error) {
	n, ok := s.nodes[id]
	if !ok {
		return math32.Matrix4{}, fmt.Errorf("lerp model of %d: %w", id, ErrUnknownTransform)
	}
	g, err := s.globalOf(n)
	if err != nil {
		return math32.Matrix4{}, err
	}
	if n.lastModel == nil {
		return *g, nil
	}
	var out math32.Matrix4
	for i := range out {
		out[i] = n.lastModel[i]*(1-s.alpha) + g[i]*s.alpha
	}
	return out, nil
}

// Len reports how many transforms the system holds.
func (s *System) Len() int {
	return len(s.nodes)
}
