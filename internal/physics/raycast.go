package physics

import "cogentcore.org/core/math32"

// RaycastHit is the nearest collider struck by a ray and the distance
// along the ray at which its bounding box is entered.
type RaycastHit struct {
	Distance float32
	Collider *CuboidCollider
}

// slabDistances runs the slab test of ray against box, returning the
// entry and exit distances along the ray. ok is false when the ray
// misses or the box lies entirely behind the origin.
func slabDistances(ray math32.Ray, b math32.Box3) (near, far float32, ok bool) {
	near = math32.Inf(-1)
	far = math32.Inf(1)

	axes := [3][4]float32{
		{ray.Origin.X, ray.Dir.X, b.Min.X, b.Max.X},
		{ray.Origin.Y, ray.Dir.Y, b.Min.Y, b.Max.Y},
		{ray.Origin.Z, ray.Dir.Z, b.Min.Z, b.Max.Z},
	}
	for _, a := range axes {
		origin, dir, lo, hi := a[0], a[1], a[2], a[3]
		if dir == 0 {
			if origin < lo || origin > hi {
				return 0, 0, false
			}
			continue
		}
		t1 := (lo - origin) / dir
		t2 := (hi - origin) / dir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > near {
			near = t1
		}
		if t2 < far {
			far = t2
		}
		if near > far {
			return 0, 0, false
		}
	}
	if far < 0 {
		return 0, 0, false
	}
	return near, far, true
}

// Raycast returns the nearest leaf whose bounding box the ray enters.
// At each branch the nearer child is descended first and the farther
// child is skipped outright when its own entry distance already
// exceeds the best hit found.
func (t *Tree) Raycast(ray math32.Ray) (RaycastHit, bool) {
	best := RaycastHit{Distance: math32.Inf(1)}
	if t.root != nilNode {
		t.raycastNode(t.root, ray, &best)
	}
	if best.Collider == nil {
		return RaycastHit{}, false
	}
	return best, true
}

func (t *Tree) raycastNode(n nodeID, ray math32.Ray, best *RaycastHit) {
	nd := &t.nodes[n]
	if nd.kind == kindLeaf {
		near, _, ok := slabDistances(ray, nd.bounds)
		if ok && near < best.Distance {
			best.Distance = near
			best.Collider = nd.collider
		}
		return
	}

	lNear, _, lOK := slabDistances(ray, t.nodes[nd.left].bounds)
	rNear, _, rOK := slabDistances(ray, t.nodes[nd.right].bounds)

	first, second := nd.left, nd.right
	firstNear, secondNear := lNear, rNear
	firstOK, secondOK := lOK, rOK
	if rOK && (!lOK || rNear < lNear) {
		first, second = second, first
		firstNear, secondNear = secondNear, firstNear
		firstOK, secondOK = secondOK, firstOK
	}
	if firstOK && firstNear < best.Distance {
		t.raycastNode(first, ray, best)
	}
	if secondOK && secondNear < best.Distance {
		t.raycastNode(second, ray, best)
	}
}
