package tessera

import "time"

// Timings aggregates run durations of one system.
type Timings struct {
	Count         int
	Latest        time.Duration
	MovingAverage time.Duration
	Min, Max      time.Duration
}

func (t Timings) Add(d time.Duration) Timings {
	t.Latest = d

	if t.Count == 0 {
		t.Min = d
		t.Max = d
	} else {
		t.Min = min(t.Min, d)
		t.Max = max(t.Max, d)
	}

	t.MovingAverage = (95*t.MovingAverage + 5*d) / 100
	t.Count += 1

	return t
}

// WorldStats is a snapshot of the world's storage and system timings. Take
// it between ticks; it must not be taken while a tick is running.
type WorldStats struct {
	Entities   int
	Archetypes int
	Systems    int
	Barriers   int

	// ChunkSizes lists the live entity count per chunk, indexed by chunk id.
	ChunkSizes []int

	BySystem map[string]Timings
}

func (w *World) Stats() WorldStats {
	stats := WorldStats{
		Entities:   w.storage.EntityCount(),
		Archetypes: len(w.storage.Archetypes()),
		Systems:    len(w.systems),
		Barriers:   len(w.schedule.barriers),
		BySystem:   map[string]Timings{},
	}

	for _, a := range w.storage.Archetypes() {
		stats.ChunkSizes = append(stats.ChunkSizes, a.Len())
	}

	for _, sys := range w.systems {
		stats.BySystem[sys.Name] = sys.timings
	}

	return stats
}
