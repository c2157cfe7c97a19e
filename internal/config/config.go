// Package config loads simulation setups from YAML: global physics
// parameters plus a declarative scene description that Build turns
// into live objects.
package config

import (
	"fmt"
	"io"
	"os"

	"cogentcore.org/core/math32"
	"gopkg.in/yaml.v3"

	"sim3d/internal/components"
	"sim3d/internal/engine"
	"sim3d/internal/physics"
	"sim3d/internal/transform"
)

type Vec3 struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

func (v Vec3) vector3() math32.Vector3 {
	return math32.Vec3(v.X, v.Y, v.Z)
}

type Config struct {
	TickRate    int      `yaml:"tick_rate,omitempty"`
	Gravity     *Vec3    `yaml:"gravity,omitempty"`
	Restitution *float32 `yaml:"restitution,omitempty"`
	Scene       Scene    `yaml:"scene"`
}

type Scene struct {
	Name    string   `yaml:"name"`
	Objects []Object `yaml:"objects"`
}

type Object struct {
	Name     string   `yaml:"name"`
	Tags     []string `yaml:"tags,omitempty"`
	Position Vec3     `yaml:"position"`
	Scale    *Vec3    `yaml:"scale,omitempty"`

	// Static objects get an immovable collider; everything else gets
	// a rigid body with the given mass (0 means infinite).
	Static   bool    `yaml:"static,omitempty"`
	Mass     float32 `yaml:"mass,omitempty"`
	Velocity Vec3    `yaml:"velocity,omitempty"`
}

// LoadYAML loads config from a YAML reader.
func LoadYAML(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile loads config from a YAML file on disk.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadYAML(f)
}

func (c *Config) Validate() error {
	if c.TickRate < 0 {
		return fmt.Errorf("tick_rate must not be negative, got %d", c.TickRate)
	}
	if c.Restitution != nil && (*c.Restitution <= 0 || *c.Restitution > 1) {
		return fmt.Errorf("restitution must be in (0, 1], got %v", *c.Restitution)
	}
	seen := make(map[string]bool)
	for i, o := range c.Scene.Objects {
		if o.Name == "" {
			return fmt.Errorf("object %d has no name", i)
		}
		if seen[o.Name] {
			return fmt.Errorf("duplicate object name %q", o.Name)
		}
		seen[o.Name] = true
		if o.Mass < 0 {
			return fmt.Errorf("object %q: mass must not be negative", o.Name)
		}
		if o.Scale != nil && (o.Scale.X <= 0 || o.Scale.Y <= 0 || o.Scale.Z <= 0) {
			return fmt.Errorf("object %q: scale components must be positive", o.Name)
		}
		if o.Static && o.Mass != 0 {
			return fmt.Errorf("object %q: static objects cannot have mass", o.Name)
		}
	}
	return nil
}

// Build instantiates the configured scene and a physics world sharing
// its transform hierarchy. A configured gravity overrides the default.
func (c *Config) Build() (*engine.Scene, *physics.World, error) {
	if c.Gravity != nil {
		physics.Gravity = c.Gravity.vector3()
	}
	if c.Restitution != nil {
		physics.Restitution = *c.Restitution
	}

	scene := engine.NewScene(c.Scene.Name)
	world := physics.NewWorld(scene.Transforms, nil)

	for _, o := range c.Scene.Objects {
		obj := scene.NewGameObject(o.Name)
		obj.Tags = o.Tags
		scale := o.Scale
		if err := obj.Mutate(func(local *transform.TRS) {
			local.Translation = o.Position.vector3()
			if scale != nil {
				local.Scale = scale.vector3()
			}
		}); err != nil {
			return nil, nil, err
		}

		if o.Static {
			obj.AddComponent(components.NewBoxCollider(world))
			continue
		}
		rb := components.NewRigidbody(world)
		rb.Mass = o.Mass
		rb.Velocity = o.Velocity.vector3()
		obj.AddComponent(rb)
	}
	return scene, world, nil
}
