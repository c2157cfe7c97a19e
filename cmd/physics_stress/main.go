// Stress test comparing tree-accelerated broad phase against the naive
// O(n²) sweep, plus full-pipeline tick timings at various body counts.
package main

import (
	"fmt"
	"math/rand"
	"time"

	"cogentcore.org/core/math32"

	"sim3d/internal/physics"
	"sim3d/internal/transform"
)

func main() {
	testCounts := []int{100, 500, 1000, 2000, 5000}

	fmt.Println("broad phase: tree vs naive sweep")
	for _, count := range testCounts {
		testBroadPhase(count)
	}

	fmt.Println()
	fmt.Println("full pipeline tick")
	for _, count := range []int{100, 500, 1000} {
		testFullStep(count)
	}
}

func randomScene(count int, rng *rand.Rand) (*transform.System, []*physics.CuboidCollider) {
	ts := transform.NewSystem()
	// Spawn volume scales with count to keep overlap density reasonable.
	spawnSize := 50.0 + float32(count)/100.0

	colliders := make([]*physics.CuboidCollider, count)
	for i := range colliders {
		id := ts.Create(transform.TRS{
			Translation: math32.Vec3(
				rng.Float32()*spawnSize-spawnSize/2,
				rng.Float32()*spawnSize-spawnSize/2,
				rng.Float32()*spawnSize-spawnSize/2,
			),
			Rotation: math32.Quat{W: 1},
			Scale:    math32.Vec3(0.5+rng.Float32()*0.5, 0.5+rng.Float32()*0.5, 0.5+rng.Float32()*0.5),
		})
		c, err := physics.NewCuboidCollider(ts, id)
		if err != nil {
			panic(err)
		}
		colliders[i] = c
	}
	return ts, colliders
}

func testBroadPhase(count int) {
	rng := rand.New(rand.NewSource(42))
	_, colliders := randomScene(count, rng)

	tree := physics.NewTree()
	for _, c := range colliders {
		if _, err := tree.Insert(tree.Register(c)); err != nil {
			panic(err)
		}
	}

	const iterations = 10

	treeStart := time.Now()
	var treePairs int
	for i := 0; i < iterations; i++ {
		treePairs = len(tree.Overlaps())
	}
	treeTime := time.Since(treeStart) / iterations

	naiveStart := time.Now()
	var naivePairs int
	for iter := 0; iter < iterations; iter++ {
		naivePairs = 0
		for i := 0; i < len(colliders); i++ {
			for j := i + 1; j < len(colliders); j++ {
				if colliders[i].Bounds().IntersectsBox(colliders[j].Bounds()) {
					naivePairs++
				}
			}
		}
	}
	naiveTime := time.Since(naiveStart) / iterations

	var leafDepthSum, leaves int
	tree.WalkBounds(func(_ math32.Box3, fromRoot int, leaf bool) {
		if leaf {
			leafDepthSum += fromRoot
			leaves++
		}
	})

	speedup := float64(naiveTime) / float64(treeTime)
	fmt.Printf("%5d objects: tree %8v (%5d pairs, height %2d, avg leaf depth %.1f) | naive %10v (%5d pairs) | %.1fx speedup\n",
		count, treeTime.Round(time.Microsecond), treePairs, tree.Depth(),
		float64(leafDepthSum)/float64(leaves),
		naiveTime.Round(time.Microsecond), naivePairs, speedup)
}

func testFullStep(count int) {
	rng := rand.New(rand.NewSource(42))
	ts := transform.NewSystem()
	world := physics.NewWorld(ts, nil)

	// Floor plus a rain of unit cubes.
	floor := ts.Create(transform.TRS{
		Translation: math32.Vec3(0, -2, 0),
		Rotation:    math32.Quat{W: 1},
		Scale:       math32.Vec3(100, 1, 100),
	})
	if err := world.AddStatic(floor); err != nil {
		panic(err)
	}
	for i := 0; i < count; i++ {
		id := ts.Create(transform.TRS{
			Translation: math32.Vec3(
				rng.Float32()*80-40,
				2+rng.Float32()*40,
				rng.Float32()*80-40,
			),
			Rotation: math32.Quat{W: 1},
			Scale:    math32.Vec3(0.5, 0.5, 0.5),
		})
		if err := world.AddBody(physics.NewRigidBody(id)); err != nil {
			panic(err)
		}
	}

	const ticks = 60
	var total physics.StepMetrics
	start := time.Now()
	for i := 0; i < ticks; i++ {
		err := world.Step(1.0/60, func(m physics.StepMetrics) {
			total.BroadPairs += m.BroadPairs
			total.Contacts += m.Contacts
			total.Integrate += m.Integrate
			total.Broad += m.Broad
			total.Resolve += m.Resolve
		})
		if err != nil {
			panic(err)
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("%5d bodies: %8v/tick | integrate %7v broad %7v resolve %7v | %5d pairs %5d contacts\n",
		count, (elapsed / ticks).Round(time.Microsecond),
		(total.Integrate / ticks).Round(time.Microsecond),
		(total.Broad / ticks).Round(time.Microsecond),
		(total.Resolve / ticks).Round(time.Microsecond),
		total.BroadPairs/ticks, total.Contacts/ticks)
}
