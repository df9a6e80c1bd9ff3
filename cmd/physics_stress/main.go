// Stress test timing World.Update at growing body counts. The pairwise pass
// is O(n²), so this shows where a broad phase would start to pay off.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"arenaphys/internal/logging"
	"arenaphys/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type sphere struct {
	pos rl.Vector3
}

func (s *sphere) PositionRef() *rl.Vector3 { return &s.pos }

func main() {
	iterations := flag.Int("iterations", 10, "ticks timed per body count")
	flag.Parse()
	if *iterations < 1 {
		*iterations = 1
	}

	testCounts := []int{100, 250, 500, 1000, 2000, 4000}

	for _, count := range testCounts {
		if err := testUpdate(count, *iterations); err != nil {
			fmt.Fprintf(os.Stderr, "%5d bodies: %v\n", count, err)
			os.Exit(1)
		}
	}
}

func testUpdate(count, iterations int) error {
	world, err := physics.NewWorld(physics.DefaultSettings(), physics.WithLogger(logging.Discard()))
	if err != nil {
		return err
	}

	contacts := 0
	world.OnContact(func(physics.Contact) { contacts++ })

	rng := rand.New(rand.NewSource(42)) // Consistent results

	// Spawn in a cube, size scales with count to keep density reasonable
	spawnSize := float32(50.0) + float32(count)/100.0

	for i := 0; i < count; i++ {
		s := &sphere{pos: rl.Vector3{
			X: rng.Float32()*spawnSize - spawnSize/2,
			Y: rng.Float32()*spawnSize + 1,
			Z: rng.Float32()*spawnSize - spawnSize/2,
		}}
		radius := 0.5 + rng.Float32()*0.5 // 0.5 to 1.0 radius
		group := physics.GroupEnemy
		if i%4 == 0 {
			group = physics.GroupProjectile
		}
		if _, err := world.AddObject(s, radius, 2*radius, radius*radius, group, physics.GroupEnemy|physics.GroupTerrain); err != nil {
			return err
		}
	}

	const dt = float32(1.0 / 60.0)

	// Warm up
	world.Update(dt)
	contacts = 0

	start := time.Now()
	for i := 0; i < iterations; i++ {
		world.Update(dt)
	}
	perTick := time.Since(start) / time.Duration(iterations)

	fmt.Printf("%5d bodies: %10v per tick | %5d contacts/tick | %.1f ticks/s\n",
		count, perTick.Round(time.Microsecond), contacts/iterations, float64(time.Second)/float64(perTick))
	return nil
}
