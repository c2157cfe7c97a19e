package engine

import (
	"sim3d/internal/transform"
)

// Scene owns a flat list of game objects plus the transform hierarchy
// their poses live in. Objects are created through NewGameObject so every
// one gets a transform node and a stable UID.
type Scene struct {
	Name        string
	GameObjects []*GameObject
	Transforms  *transform.System

	nextUID uint64
}

func NewScene(name string) *Scene {
	return &Scene{
		Name:        name,
		GameObjects: make([]*GameObject, 0),
		Transforms:  transform.NewSystem(),
	}
}

func (s *Scene) NewGameObject(name string) *GameObject {
	s.nextUID++
	g := &GameObject{
		Name:       name,
		UID:        s.nextUID,
		Active:     true,
		Scene:      s,
		Transform:  s.Transforms.Create(transform.IdentityTRS()),
		components: make([]Component, 0),
		Children:   make([]*GameObject, 0),
	}
	s.GameObjects = append(s.GameObjects, g)
	return g
}

func (s *Scene) RemoveGameObject(g *GameObject) {
	for i, obj := range s.GameObjects {
		if obj == g {
			s.GameObjects = append(s.GameObjects[:i], s.GameObjects[i+1:]...)
			return
		}
	}
}

func (s *Scene) FindByName(name string) *GameObject {
	for _, g := range s.GameObjects {
		if g.Name == name {
			return g
		}
	}
	return nil
}

func (s *Scene) FindByUID(uid uint64) *GameObject {
	for _, g := range s.GameObjects {
		if g.UID == uid {
			return g
		}
	}
	return nil
}

func (s *Scene) FindByTag(tag string) []*GameObject {
	var result []*GameObject
	for _, g := range s.GameObjects {
		if g.HasTag(tag) {
			result = append(result, g)
		}
	}
	return result
}

func (s *Scene) Start() {
	for _, g := range s.GameObjects {
		g.Start()
	}
}

func (s *Scene) Update(deltaTime float32) {
	for _, g := range s.GameObjects {
		g.Update(deltaTime)
	}
}
