// Profiling tick iteration:
// go build ./profile/query
// go tool pprof -http=":8000" -nodefraction=0.001 ./query cpu.pprof

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
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	run(20000, 10000)
	p.Stop()
}

func run(ticks, numEntities int) {
	w := tessera.NewWorld()

	pos, err := tessera.RegisterComponent[position](w, "position")
	if err != nil {
		panic(err)
	}

	vel, err := tessera.RegisterComponent[velocity](w, "velocity")
	if err != nil {
		panic(err)
	}

	for i := 0; i < numEntities; i++ {
		components := []tessera.ComponentValue{
			tessera.Value(pos, position{X: float64(i)}),
		}

		// a third of the entities have no velocity, so the system's match
		// set covers more than one chunk
		if i%3 != 0 {
			components = append(components, tessera.Value(vel, velocity{X: 1}))
		}

		if _, err := w.CreateEntity(components...); err != nil {
			panic(err)
		}
	}

	err = w.AddSystem(tessera.SystemConfig{
		Name: "integrate",
		System: tessera.ChunkSystemFunc(func(ctx *tessera.TickContext, chunk *tessera.ChunkView) {
			positions := tessera.ColumnOf[position](chunk, pos)
			velocities := tessera.ColumnOf[velocity](chunk, vel)

			for row := range positions {
				positions[row].X += velocities[row].X * ctx.Dt
				positions[row].Y += velocities[row].Y * ctx.Dt
			}
		}),
		Filter: tessera.And(tessera.Comp(pos), tessera.Comp(vel)),
		Reads:  []tessera.ComponentID{vel},
		Writes: []tessera.ComponentID{pos},
	})
	if err != nil {
		panic(err)
	}

	for range ticks {
		w.RunTick(1.0 / 64)
	}

	fmt.Printf("done, %d entities\n", w.Stats().Entities)
}
