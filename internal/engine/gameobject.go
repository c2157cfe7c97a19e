package engine

import (
	"sim3d/internal/transform"
)

type GameObject struct {
	Name       string
	UID        uint64 // unique per scene, 0 is never assigned
	Tags       []string
	Transform  transform.ID
	Active     bool
	Scene      *Scene
	Parent     *GameObject
	Children   []*GameObject
	components []Component
	started    bool
}

func (g *GameObject) AddComponent(c Component) {
	c.SetGameObject(g)
	g.components = append(g.components, c)
}

// GetComponent returns the first component of the requested type, or the
// zero value when the object carries none.
func GetComponent[T Component](g *GameObject) T {
	var zero T
	for _, c := range g.components {
		if typed, ok := c.(T); ok {
			return typed
		}
	}
	return zero
}

func (g *GameObject) Start() {
	if g.started {
		return
	}
	for _, c := range g.components {
		c.Start()
	}
	g.started = true
}

func (g *GameObject) Update(deltaTime float32) {
	if !g.Active {
		return
	}
	for _, c := range g.components {
		c.Update(deltaTime)
	}
}

func (g *GameObject) Components() []Component {
	return g.components
}

func (g *GameObject) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddChild links child under g in both the object hierarchy and the
// transform hierarchy, so the child's model matrix composes with g's.
func (g *GameObject) AddChild(child *GameObject) error {
	if g.Scene != nil {
		if err := g.Scene.Transforms.SetParent(child.Transform, g.Transform); err != nil {
			return err
		}
	}
	child.Parent = g
	g.Children = append(g.Children, child)
	return nil
}

func (g *GameObject) RemoveChild(child *GameObject) error {
	for i, c := range g.Children {
		if c == child {
			g.Children = append(g.Children[:i], g.Children[i+1:]...)
			child.Parent = nil
			if g.Scene != nil {
				return g.Scene.Transforms.ClearParent(child.Transform)
			}
			return nil
		}
	}
	return nil
}

// Local returns the object's local pose from the scene's transform system.
func (g *GameObject) Local() (transform.TRS, error) {
	return g.Scene.Transforms.Local(g.Transform)
}

// Mutate edits the object's local pose in place and marks the subtree
// dirty for the next model-matrix query.
func (g *GameObject) Mutate(fn func(*transform.TRS)) error {
	return g.Scene.Transforms.Mutate(g.Transform, fn)
}
