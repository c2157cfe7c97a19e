// Package heap implements an indexed binary max-heap. Every inserted
// item is tracked by a handle that the heap keeps pointed at the item's
// current slot, so holders can remove or re-key their item even after
// unrelated operations have reordered the backing slice.
package heap

import "cmp"

// removedIndex marks a handle whose item has left the heap.
const removedIndex = -1

// Handle tracks one item's current position. The heap rewrites it on
// every internal swap; after the item is extracted or removed the
// handle reports Removed and must not be passed back in.
type Handle struct {
	index int
}

// Removed reports whether the item behind the handle is gone.
func (h *Handle) Removed() bool {
	return h.index == removedIndex
}

type item[K cmp.Ordered, V any] struct {
	key    K
	value  V
	handle *Handle
}

// MaxHeap is a binary heap ordered largest-key-first. It is not safe
// for concurrent use; callers serialize access externally.
type MaxHeap[K cmp.Ordered, V any] struct {
	items []item[K, V]
}

func New[K cmp.Ordered, V any]() *MaxHeap[K, V] {
	return &MaxHeap[K, V]{}
}

func (h *MaxHeap[K, V]) Len() int {
	return len(h.items)
}

// Insert adds a value under key and returns a handle tracking it.
func (h *MaxHeap[K, V]) Insert(key K, value V) *Handle {
	hd := &Handle{}
	h.InsertWithHandle(key, value, hd)
	return hd
}

// InsertWithHandle is Insert with a caller-allocated handle, for values
// that must register the handle with other structures before they enter
// the heap.
func (h *MaxHeap[K, V]) InsertWithHandle(key K, value V, hd *Handle) {
	hd.index = len(h.items)
	h.items = append(h.items, item[K, V]{key: key, value: value, handle: hd})
	h.upHeap(hd.index)
}

// ExtractMax removes and returns the value with the largest key, or
// false if the heap is empty.
func (h *MaxHeap[K, V]) ExtractMax() (V, bool) {
	if len(h.items) == 0 {
		var zero V
		return zero, false
	}
	top := h.items[0]
	top.handle.index = removedIndex
	last := len(h.items) - 1
	h.items[0] = h.items[last]
	h.items[last] = item[K, V]{}
	h.items = h.items[:last]
	if last > 0 {
		h.items[0].handle.index = 0
		h.downHeap(0)
	}
	return top.value, true
}

// Remove deletes the item behind hd from any position and returns its
// value. Panics if the handle is dead; check Removed before calling.
func (h *MaxHeap[K, V]) Remove(hd *Handle) V {
	i := hd.index
	if i < 0 || i >= len(h.items) {
		panic("heap: Remove through a dead handle")
	}
	out := h.items[i]
	out.handle.index = removedIndex
	last := len(h.items) - 1
	h.items[i] = h.items[last]
	h.items[last] = item[K, V]{}
	h.items = h.items[:last]
	if i < last {
		h.items[i].handle.index = i
		h.siftFrom(i)
	}
	return out.value
}

// ModifyKey lets fn mutate the item's value in place and re-keys the
// item to fn's return value, restoring heap order in either direction.
// Panics if the handle is dead.
func (h *MaxHeap[K, V]) ModifyKey(hd *Handle, fn func(v *V) K) {
	i := hd.index
	if i < 0 || i >= len(h.items) {
		panic("heap: ModifyKey through a dead handle")
	}
	old := h.items[i].key
	h.items[i].key = fn(&h.items[i].value)
	if h.items[i].key > old {
		h.upHeap(i)
	} else if h.items[i].key < old {
		h.downHeap(i)
	}
}

// siftFrom restores order for a slot whose occupant just changed to an
// item of unknown relative key.
func (h *MaxHeap[K, V]) siftFrom(i int) {
	if i > 0 && h.items[i].key > h.items[(i-1)/2].key {
		h.upHeap(i)
	} else {
		h.downHeap(i)
	}
}

func (h *MaxHeap[K, V]) upHeap(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[parent].key >= h.items[i].key {
			return
		}
		h.swap(parent, i)
		i = parent
	}
}

func (h *MaxHeap[K, V]) downHeap(i int) {
	for {
		largest := i
		if l := 2*i + 1; l < len(h.items) && h.items[l].key > h.items[largest].key {
			largest = l
		}
		if r := 2*i + 2; r < len(h.items) && h.items[r].key > h.items[largest].key {
			largest = r
		}
		if largest == i {
			return
		}
		h.swap(i, largest)
		i = largest
	}
}

func (h *MaxHeap[K, V]) swap(a, b int) {
	h.items[a], h.items[b] = h.items[b], h.items[a]
	h.items[a].handle.index = a
	h.items[b].handle.index = b
}
