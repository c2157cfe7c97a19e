package physics

import (
	"errors"

	"cogentcore.org/core/math32"
	"github.com/google/uuid"
)

var (
	// ErrForeignLeaf is returned when a leaf token was issued by a
	// different tree instance. The tree is left untouched.
	ErrForeignLeaf = errors.New("leaf token belongs to a different tree")
	// ErrStaleLeaf is returned when a leaf token refers to a node
	// generation that has since been recycled or transitioned.
	ErrStaleLeaf = errors.New("leaf token is stale")
)

type nodeID int32

const nilNode nodeID = -1

type nodeKind uint8

const (
	kindNone nodeKind = iota
	kindLeaf
	kindBranch
)

type treeNode struct {
	kind      nodeKind
	parent    nodeID
	rightSide bool
	left      nodeID
	right     nodeID

	bounds   math32.Box3
	depth    int32
	collider *CuboidCollider

	// gen is bumped on every allocation and attach/detach transition
	// so outstanding tokens can be recognized as stale.
	gen uint32
}

// DetachedLeaf is a registered collider that is not part of the tree.
// It is owned solely by the holder; Insert consumes it.
type DetachedLeaf struct {
	tree uuid.UUID
	node nodeID
	gen  uint32
}

// AttachedLeaf is a collider linked into exactly one tree. Remove and
// Modify consume it.
type AttachedLeaf struct {
	tree uuid.UUID
	node nodeID
	gen  uint32
}

// Tree is the broad-phase bounding-volume hierarchy: a binary tree of
// axis-aligned boxes kept within one level of height balance by AVL
// style rotations. Nodes live in an arena slice and reference each
// other by index. Not safe for concurrent use.
type Tree struct {
	id    uuid.UUID
	nodes []treeNode
	free  []nodeID
	root  nodeID
}

func NewTree() *Tree {
	return &Tree{id: uuid.New(), root: nilNode}
}

func (t *Tree) alloc() nodeID {
	if n := len(t.free); n > 0 {
		id := t.free[n-1]
		t.free = t.free[:n-1]
		gen := t.nodes[id].gen + 1
		t.nodes[id] = treeNode{gen: gen}
		return id
	}
	t.nodes = append(t.nodes, treeNode{})
	return nodeID(len(t.nodes) - 1)
}

// Register wraps a collider in a standalone leaf owned by the caller.
func (t *Tree) Register(c *CuboidCollider) DetachedLeaf {
	id := t.alloc()
	n := &t.nodes[id]
	n.kind = kindLeaf
	n.parent = nilNode
	n.left, n.right = nilNode, nilNode
	n.collider = c
	n.bounds = c.Bounds()
	n.depth = 0
	return DetachedLeaf{tree: t.id, node: id, gen: n.gen}
}

// Deregister frees a detached leaf and returns its collider.
func (t *Tree) Deregister(d DetachedLeaf) (*CuboidCollider, error) {
	if err := t.checkToken(d.tree, d.node, d.gen); err != nil {
		return nil, err
	}
	n := &t.nodes[d.node]
	c := n.collider
	n.gen++
	n.kind = kindNone
	n.collider = nil
	t.free = append(t.free, d.node)
	return c, nil
}

// Insert links a detached leaf into the tree, consuming the token. The
// leaf's bounds are refreshed from its collider first. Descent always
// follows the child whose box would grow least by volume.
func (t *Tree) Insert(d DetachedLeaf) (AttachedLeaf, error) {
	if err := t.checkToken(d.tree, d.node, d.gen); err != nil {
		return AttachedLeaf{}, err
	}
	leaf := d.node
	ln := &t.nodes[leaf]
	ln.bounds = ln.collider.Bounds()
	ln.gen++

	if t.root == nilNode {
		t.root = leaf
		ln.parent = nilNode
		return AttachedLeaf{tree: t.id, node: leaf, gen: ln.gen}, nil
	}

	leafBounds := ln.bounds
	cur := t.root
	for t.nodes[cur].kind == kindBranch {
		cn := &t.nodes[cur]
		cn.bounds = cn.bounds.Union(leafBounds)

		l, r := cn.left, cn.right
		growL := boxVolume(t.nodes[l].bounds.Union(leafBounds)) - boxVolume(t.nodes[l].bounds)
		growR := boxVolume(t.nodes[r].bounds.Union(leafBounds)) - boxVolume(t.nodes[r].bounds)
		if growL <= growR {
			cur = l
		} else {
			cur = r
		}
	}
	if t.nodes[cur].kind != kindLeaf {
		panic("physics: placeholder node reached during insert descent")
	}

	// Convert the arrival leaf into a branch holding it and the new
	// leaf.
	branch := t.alloc()
	bn := &t.nodes[branch]
	old := &t.nodes[cur]

	bn.kind = kindBranch
	bn.parent = old.parent
	bn.rightSide = old.rightSide
	bn.left, bn.right = cur, leaf
	bn.bounds = old.bounds.Union(leafBounds)
	bn.depth = 1

	if old.parent == nilNode {
		t.root = branch
	} else if old.rightSide {
		t.nodes[old.parent].right = branch
	} else {
		t.nodes[old.parent].left = branch
	}
	old.parent, old.rightSide = branch, false
	t.nodes[leaf].parent, t.nodes[leaf].rightSide = branch, true

	t.upWalk(t.nodes[branch].parent)
	return AttachedLeaf{tree: t.id, node: leaf, gen: t.nodes[leaf].gen}, nil
}

// Remove unlinks an attached leaf, consuming the token. The leaf's
// parent branch is dissolved and the sibling subtree takes its place.
func (t *Tree) Remove(a AttachedLeaf) (DetachedLeaf, error) {
	if err := t.checkToken(a.tree, a.node, a.gen); err != nil {
		return DetachedLeaf{}, err
	}
	leaf := a.node
	ln := &t.nodes[leaf]
	ln.gen++
	out := DetachedLeaf{tree: t.id, node: leaf, gen: ln.gen}

	if t.root == leaf {
		t.root = nilNode
		ln.parent = nilNode
		return out, nil
	}

	parent := ln.parent
	pn := &t.nodes[parent]
	if pn.kind != kindBranch {
		panic("physics: leaf parent is not a branch")
	}
	sibling := pn.left
	if sibling == leaf {
		sibling = pn.right
	}

	grand := pn.parent
	if grand == nilNode {
		t.root = sibling
		t.nodes[sibling].parent = nilNode
	} else {
		t.setChild(grand, pn.rightSide, sibling)
		t.upWalk(grand)
	}

	pn.kind = kindNone
	pn.collider = nil
	t.free = append(t.free, parent)

	ln.parent = nilNode
	return out, nil
}

// Modify re-fits a leaf after its collider changed: the leaf is pulled
// out of the tree, fn mutates the collider, and the leaf is inserted
// fresh. The old token is consumed so it cannot outlive the move.
func (t *Tree) Modify(a AttachedLeaf, fn func(c *CuboidCollider)) (AttachedLeaf, error) {
	d, err := t.Remove(a)
	if err != nil {
		return AttachedLeaf{}, err
	}
	fn(t.nodes[d.node].collider)
	return t.Insert(d)
}

// LeafCollider returns the collider behind a live attached leaf token.
func (t *Tree) LeafCollider(a AttachedLeaf) (*CuboidCollider, error) {
	if err := t.checkToken(a.tree, a.node, a.gen); err != nil {
		return nil, err
	}
	return t.nodes[a.node].collider, nil
}

// Depth reports the height of the tree: 0 for a single leaf or an
// empty tree.
func (t *Tree) Depth() int {
	if t.root == nilNode {
		return 0
	}
	return int(t.nodes[t.root].depth)
}

// WalkBounds visits every linked node's bounding box depth-first,
// reporting its distance from the root and whether it is a leaf.
func (t *Tree) WalkBounds(fn func(bounds math32.Box3, fromRoot int, leaf bool)) {
	t.walkBounds(t.root, 0, fn)
}

func (t *Tree) walkBounds(n nodeID, fromRoot int, fn func(bounds math32.Box3, fromRoot int, leaf bool)) {
	if n == nilNode {
		return
	}
	nd := &t.nodes[n]
	fn(nd.bounds, fromRoot, nd.kind == kindLeaf)
	if nd.kind == kindBranch {
		t.walkBounds(nd.left, fromRoot+1, fn)
		t.walkBounds(nd.right, fromRoot+1, fn)
	}
}

// Len reports the number of leaves linked into the tree.
func (t *Tree) Len() int {
	n := 0
	for i := range t.nodes {
		if t.nodes[i].kind == kindLeaf && (t.nodes[i].parent != nilNode || t.root == nodeID(i)) {
			n++
		}
	}
	return n
}

func (t *Tree) checkToken(tree uuid.UUID, node nodeID, gen uint32) error {
	if tree != t.id {
		return ErrForeignLeaf
	}
	if node < 0 || int(node) >= len(t.nodes) || t.nodes[node].gen != gen {
		return ErrStaleLeaf
	}
	if t.nodes[node].kind != kindLeaf {
		panic("physics: leaf token resolves to a non-leaf node")
	}
	return nil
}

func (t *Tree) setChild(parent nodeID, rightSide bool, child nodeID) {
	if rightSide {
		t.nodes[parent].right = child
	} else {
		t.nodes[parent].left = child
	}
	t.nodes[child].parent = parent
	t.nodes[child].rightSide = rightSide
}

// refresh recomputes a branch's bounds and depth from its children.
func (t *Tree) refresh(n nodeID) {
	nd := &t.nodes[n]
	if nd.kind != kindBranch {
		return
	}
	l, r := &t.nodes[nd.left], &t.nodes[nd.right]
	nd.bounds = l.bounds.Union(r.bounds)
	nd.depth = 1 + max(l.depth, r.depth)
}

// upWalk refreshes and rebalances every ancestor from n to the root,
// stopping once a level's depth and bounds both come out unchanged;
// nothing above can change after that.
func (t *Tree) upWalk(n nodeID) {
	for n != nilNode {
		oldDepth := t.nodes[n].depth
		oldBounds := t.nodes[n].bounds
		t.refresh(n)
		t.rebalance(n)
		if t.nodes[n].depth == oldDepth && t.nodes[n].bounds == oldBounds {
			return
		}
		n = t.nodes[n].parent
	}
}

// rebalance restores the height invariant at n with a single rotation:
// the shallower child swaps places with the deeper grandchild of the
// taller child.
func (t *Tree) rebalance(n nodeID) {
	nd := &t.nodes[n]
	if nd.kind != kindBranch {
		return
	}
	dl := t.nodes[nd.left].depth
	dr := t.nodes[nd.right].depth
	if dl-dr < 2 && dr-dl < 2 {
		return
	}

	tall, short := nd.left, nd.right
	if dr > dl {
		tall, short = short, tall
	}
	tn := &t.nodes[tall]
	if tn.kind != kindBranch {
		panic("physics: unbalanced node with leaf child deeper than sibling")
	}
	big := tn.left
	if t.nodes[tn.right].depth > t.nodes[big].depth {
		big = tn.right
	}

	t.swapSlots(short, big)
	t.refresh(tall)
	t.refresh(n)
}

// swapSlots exchanges two subtrees' positions under their parents.
func (t *Tree) swapSlots(a, b nodeID) {
	pa, sa := t.nodes[a].parent, t.nodes[a].rightSide
	pb, sb := t.nodes[b].parent, t.nodes[b].rightSide
	t.setChild(pa, sa, b)
	t.setChild(pb, sb, a)
}

func boxVolume(b math32.Box3) float32 {
	s := b.Size()
	return s.X * s.Y * s.Z
}

// Overlaps returns every pair of leaves whose boxes intersect. Broad
// phase only; callers still run exact geometry tests.
func (t *Tree) Overlaps() [][2]*CuboidCollider {
	if t.root == nilNode {
		return nil
	}
	var out [][2]*CuboidCollider
	t.overlapsWithin(t.root, &out)
	return out
}

func (t *Tree) overlapsWithin(n nodeID, out *[][2]*CuboidCollider) {
	nd := &t.nodes[n]
	if nd.kind != kindBranch {
		return
	}
	t.overlapsWithin(nd.left, out)
	t.overlapsWithin(nd.right, out)
	t.overlapsBetween(nd.left, nd.right, out)
}

func (t *Tree) overlapsBetween(a, b nodeID, out *[][2]*CuboidCollider) {
	an, bn := &t.nodes[a], &t.nodes[b]
	if !an.bounds.IntersectsBox(bn.bounds) {
		return
	}
	if an.kind == kindLeaf && bn.kind == kindLeaf {
		*out = append(*out, [2]*CuboidCollider{an.collider, bn.collider})
		return
	}
	// Split the side with the larger box first.
	if bn.kind == kindLeaf ||
		(an.kind == kindBranch && boxVolume(an.bounds) >= boxVolume(bn.bounds)) {
		t.overlapsBetween(an.left, b, out)
		t.overlapsBetween(an.right, b, out)
	} else {
		t.overlapsBetween(a, bn.left, out)
		t.overlapsBetween(a, bn.right, out)
	}
}
