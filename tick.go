package tessera

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunTick executes one tick: every barrier of the schedule in order, systems
// within a barrier in parallel, and each system's command buffer drained with
// exclusive storage access once its barrier has finished.
//
// A panicking system is logged and treated as a no-op for this tick; the rest
// of the barrier still runs. dt is the tick's delta time in seconds.
func (w *World) RunTick(dt float64) {
	w.tick++

	if t, err := ResourceOf[Time](w); err == nil {
		t.Delta = dt
		t.Elapsed += dt
		t.Tick = w.tick
	}

	for _, barrier := range w.schedule.barriers {
		w.runBarrier(barrier, dt)

		// drain phase: single-writer, no iterators active
		for _, sys := range barrier {
			sys.commands.apply()
			w.checkFailureStreak(sys)
		}
	}
}

func (w *World) runBarrier(barrier []*registeredSystem, dt float64) {
	w.inBarrier = true
	defer func() { w.inBarrier = false }()

	if len(barrier) == 1 {
		w.runSystem(barrier[0], dt)
		return
	}

	var group errgroup.Group
	for _, sys := range barrier {
		group.Go(func() error {
			w.runSystem(sys, dt)
			return nil
		})
	}

	// systems never return errors; failures are recovered per system
	_ = group.Wait()
}

// runSystem drives one system over its matching chunks (or its single tick
// call), recovering panics at this boundary.
func (w *World) runSystem(sys *registeredSystem, dt float64) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			sys.failures++
			w.logger.Error("system panicked",
				zap.String("system", sys.Name),
				zap.Any("panic", r),
				zap.Int("consecutive_failures", sys.failures),
				zap.Stack("stack"))
			return
		}

		sys.failures = 0
		sys.escalated = false
		sys.timings = sys.timings.Add(time.Since(start))
	}()

	ctx := &TickContext{
		World:    w,
		Dt:       dt,
		Commands: sys.commands,
	}

	if sys.runOnce != nil {
		sys.runOnce(ctx)
		return
	}

	for index := range sys.matches.All() {
		a := w.storage.Archetypes()[index]
		if a.Len() == 0 {
			continue
		}

		sys.runChunk(ctx, &ChunkView{a: a})
	}
}

// checkFailureStreak runs in the sequential drain phase, so counters written
// by the system's goroutine are safely visible here.
func (w *World) checkFailureStreak(sys *registeredSystem) {
	if sys.failures < w.failureThreshold || sys.escalated {
		return
	}

	sys.escalated = true

	err := fmt.Errorf("system %q panicked in %d consecutive ticks", sys.Name, sys.failures)
	w.logger.Error("system keeps failing", zap.String("system", sys.Name), zap.Error(err))

	if w.failureHandler != nil {
		w.failureHandler(sys.Name, err)
	}
}
