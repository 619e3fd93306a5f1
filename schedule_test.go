package tessera

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func noopSystem() TickSystemFunc {
	return func(ctx *TickContext) {}
}

func addNamed(t *testing.T, w *testWorld, name string, mutate ...func(*SystemConfig)) {
	t.Helper()

	cfg := SystemConfig{
		Name:           name,
		System:         noopSystem(),
		ReadsResources: []ResourceKey{ResourceKeyFor[Time]()},
	}

	for _, fn := range mutate {
		fn(&cfg)
	}

	require.NoError(t, w.AddSystem(cfg))
}

func TestSchedule_BeforeAfter(t *testing.T) {
	w := newTestWorld(t)

	addNamed(t, w, "render", func(cfg *SystemConfig) { cfg.After = []string{"movement"} })
	addNamed(t, w, "movement", func(cfg *SystemConfig) { cfg.After = []string{"input"} })
	addNamed(t, w, "input")

	require.Equal(t, []string{"input", "movement", "render"}, w.Systems())
}

func TestSchedule_PriorityTieBreak(t *testing.T) {
	w := newTestWorld(t)

	addNamed(t, w, "c", func(cfg *SystemConfig) { cfg.Priority = 3 })
	addNamed(t, w, "a", func(cfg *SystemConfig) { cfg.Priority = 1 })
	addNamed(t, w, "b", func(cfg *SystemConfig) { cfg.Priority = 2 })

	require.Equal(t, []string{"a", "b", "c"}, w.Systems())
}

func TestSchedule_RegistrationOrderTieBreak(t *testing.T) {
	w := newTestWorld(t)

	// no constraints, equal priority: registration order wins
	addNamed(t, w, "gamma")
	addNamed(t, w, "alpha")
	addNamed(t, w, "beta")

	require.Equal(t, []string{"gamma", "alpha", "beta"}, w.Systems())
}

func TestSchedule_Groups(t *testing.T) {
	w := newTestWorld(t)

	require.NoError(t, w.AddGroup(GroupConfig{Name: "simulation", After: []string{"input"}}))
	require.NoError(t, w.AddGroup(GroupConfig{Name: "presentation", After: []string{"simulation"}}))

	addNamed(t, w, "draw", func(cfg *SystemConfig) { cfg.Group = "presentation" })
	addNamed(t, w, "physics", func(cfg *SystemConfig) { cfg.Group = "simulation" })
	addNamed(t, w, "ai", func(cfg *SystemConfig) { cfg.Group = "simulation" })
	addNamed(t, w, "input")

	order := w.Systems()
	require.Equal(t, "input", order[0])
	require.Equal(t, "draw", order[3])
	require.ElementsMatch(t, []string{"physics", "ai"}, order[1:3])
}

func TestSchedule_GroupMemberWithOwnConstraints(t *testing.T) {
	w := newTestWorld(t)

	require.NoError(t, w.AddGroup(GroupConfig{Name: "late", After: []string{"early"}}))

	addNamed(t, w, "early")
	// individual constraints take precedence over the group's
	addNamed(t, w, "override", func(cfg *SystemConfig) {
		cfg.Group = "late"
		cfg.Before = []string{"early"}
	})
	addNamed(t, w, "member", func(cfg *SystemConfig) { cfg.Group = "late" })

	require.Equal(t, []string{"override", "early", "member"}, w.Systems())
}

func TestSchedule_CyclicDependency(t *testing.T) {
	w := newTestWorld(t)

	addNamed(t, w, "a")
	addNamed(t, w, "b", func(cfg *SystemConfig) { cfg.After = []string{"a"} })

	// before(a) and after(a)... the opposite direction on the same pair
	err := w.AddSystem(SystemConfig{
		Name:   "c",
		System: noopSystem(),
		Before: []string{"a"},
		After:  []string{"b"},
	})
	require.ErrorIs(t, err, ErrCyclicDependency)

	// the offending systems are named in the error
	require.Contains(t, err.Error(), "a")
	require.Contains(t, err.Error(), "b")
	require.Contains(t, err.Error(), "c")

	// the failed registration must not poison the world
	require.Equal(t, []string{"a", "b"}, w.Systems())
	w.RunTick(0.016)
}

func TestSchedule_DirectCycle(t *testing.T) {
	w := newTestWorld(t)

	addNamed(t, w, "x")
	err := w.AddSystem(SystemConfig{
		Name:   "y",
		System: noopSystem(),
		Before: []string{"x"},
		After:  []string{"x"},
	})
	require.ErrorIs(t, err, ErrCyclicDependency)
}

func TestSchedule_UnknownTarget(t *testing.T) {
	w := newTestWorld(t)

	err := w.AddSystem(SystemConfig{
		Name:   "orphan",
		System: noopSystem(),
		After:  []string{"no-such-system"},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no-such-system")
}

func TestSchedule_DuplicateSystem(t *testing.T) {
	w := newTestWorld(t)

	addNamed(t, w, "movement")

	err := w.AddSystem(SystemConfig{Name: "movement", System: noopSystem()})
	require.ErrorIs(t, err, ErrDuplicateRegistration)
}

func TestSchedule_BarrierPartitioning(t *testing.T) {
	reader := func(ids ...ComponentID) func(*SystemConfig) {
		return func(cfg *SystemConfig) {
			cfg.ReadsResources = nil
			cfg.Reads = ids
		}
	}
	writer := func(ids ...ComponentID) func(*SystemConfig) {
		return func(cfg *SystemConfig) {
			cfg.ReadsResources = nil
			cfg.Writes = ids
		}
	}

	t.Run("disjoint writers share a barrier", func(t *testing.T) {
		w := newTestWorld(t)
		addNamed(t, w, "moves", writer(w.position))
		addNamed(t, w, "heals", writer(w.health))

		require.Equal(t, 1, w.Stats().Barriers)
	})

	t.Run("write overlapping read splits", func(t *testing.T) {
		w := newTestWorld(t)
		addNamed(t, w, "moves", writer(w.position))
		addNamed(t, w, "draws", reader(w.position))

		require.Equal(t, 2, w.Stats().Barriers)
	})

	t.Run("two writers of the same component split", func(t *testing.T) {
		w := newTestWorld(t)
		addNamed(t, w, "one", writer(w.position))
		addNamed(t, w, "two", writer(w.position))

		require.Equal(t, 2, w.Stats().Barriers)
	})

	t.Run("undeclared access conflicts with everything", func(t *testing.T) {
		w := newTestWorld(t)
		addNamed(t, w, "declared", writer(w.position))
		require.NoError(t, w.AddSystem(SystemConfig{Name: "mystery", System: noopSystem()}))

		require.Equal(t, 2, w.Stats().Barriers)
	})

	t.Run("resource write serializes against any declaration", func(t *testing.T) {
		type Score struct{ Value int }

		w := newTestWorld(t)
		require.NoError(t, w.RegisterResource(Score{}))

		addNamed(t, w, "scores", func(cfg *SystemConfig) {
			cfg.ReadsResources = nil
			cfg.WritesResources = []ResourceKey{ResourceKeyFor[Score]()}
		})
		addNamed(t, w, "hud", func(cfg *SystemConfig) {
			cfg.ReadsResources = []ResourceKey{ResourceKeyFor[Score]()}
		})

		require.Equal(t, 2, w.Stats().Barriers)
	})
}

func TestSchedule_ExplicitEdgeSplitsBarrier(t *testing.T) {
	w := newTestWorld(t)

	addNamed(t, w, "first", func(cfg *SystemConfig) {
		cfg.ReadsResources = nil
		cfg.Writes = []ComponentID{w.position}
	})
	addNamed(t, w, "second", func(cfg *SystemConfig) {
		cfg.ReadsResources = nil
		cfg.Writes = []ComponentID{w.velocity}
		cfg.After = []string{"first"}
	})

	// the access sets are disjoint, but the explicit ordering still forces
	// two barriers
	require.Equal(t, 2, w.Stats().Barriers)
}
