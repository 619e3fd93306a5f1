// Profiling entity churn:
// go build ./profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"fmt"

	"github.com/pkg/profile"

	"github.com/tessera-ecs/tessera"
)

type position struct {
	X, Y float64
}

type velocity struct {
	X, Y float64
}

func main() {
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(50, 10000, 1000)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		w := tessera.NewWorld()

		pos, err := tessera.RegisterComponent[position](w, "position")
		if err != nil {
			panic(err)
		}

		vel, err := tessera.RegisterComponent[velocity](w, "velocity")
		if err != nil {
			panic(err)
		}

		entities := make([]tessera.Entity, 0, numEntities)

		for range iters {
			entities = entities[:0]
			for i := 0; i < numEntities; i++ {
				e, err := w.CreateEntity(
					tessera.Value(pos, position{X: float64(i)}),
					tessera.Value(vel, velocity{X: 1}),
				)
				if err != nil {
					panic(err)
				}

				entities = append(entities, e)
			}

			// migrate half of them out of the archetype and back
			for i := 0; i < numEntities; i += 2 {
				if err := w.RemoveComponent(entities[i], vel); err != nil {
					panic(err)
				}
			}

			for i := 0; i < numEntities; i += 2 {
				if err := w.AddComponent(entities[i], vel, velocity{X: 2}); err != nil {
					panic(err)
				}
			}

			for _, e := range entities {
				if err := w.DestroyEntity(e); err != nil {
					panic(err)
				}
			}
		}

		fmt.Printf("round done, %d archetypes\n", w.Stats().Archetypes)
	}
}
