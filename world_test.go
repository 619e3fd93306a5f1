package tessera

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Health struct {
	Current, Max int
}

type testWorld struct {
	*World
	position, velocity, health ComponentID
}

func newTestWorld(t *testing.T, opts ...Option) *testWorld {
	t.Helper()

	w := NewWorld(opts...)

	position, err := RegisterComponent[Position](w, "Position")
	require.NoError(t, err)

	velocity, err := RegisterComponent[Velocity](w, "Velocity")
	require.NoError(t, err)

	health, err := RegisterComponent[Health](w, "Health")
	require.NoError(t, err)

	return &testWorld{
		World:    w,
		position: position,
		velocity: velocity,
		health:   health,
	}
}

func TestWorld_EntityLifecycle(t *testing.T) {
	w := newTestWorld(t)

	e, err := w.CreateEntity(
		Value(w.position, Position{X: 1, Y: 2}),
		Value(w.velocity, Velocity{X: 3}),
	)
	require.NoError(t, err)
	require.True(t, w.Alive(e))

	pos, err := ComponentOf[Position](w.World, e, w.position)
	require.NoError(t, err)
	require.Equal(t, Position{X: 1, Y: 2}, pos)

	require.NoError(t, w.SetComponent(e, w.position, Position{X: 9}))

	pos, err = ComponentOf[Position](w.World, e, w.position)
	require.NoError(t, err)
	require.Equal(t, Position{X: 9}, pos)

	require.NoError(t, w.DestroyEntity(e))
	require.False(t, w.Alive(e))

	_, err = w.GetComponent(e, w.position)
	require.ErrorIs(t, err, ErrStaleHandle)
}

func TestWorld_ComponentByName(t *testing.T) {
	w := newTestWorld(t)

	id, ok := w.ComponentByName("Velocity")
	require.True(t, ok)
	require.Equal(t, w.velocity, id)

	_, ok = w.ComponentByName("Sprite")
	require.False(t, ok)
}

func TestWorld_DuplicateComponent(t *testing.T) {
	w := newTestWorld(t)

	_, err := RegisterComponent[Position](w.World, "Position")
	require.ErrorIs(t, err, ErrDuplicateRegistration)
}

func TestWorld_Match(t *testing.T) {
	w := newTestWorld(t)

	e, err := w.CreateEntity(
		Value(w.position, Position{}),
		Value(w.velocity, Velocity{}),
	)
	require.NoError(t, err)

	both := And(Comp(w.position), Comp(w.velocity))
	posOnly := And(Comp(w.position), Not(Comp(w.velocity)))

	ok, err := w.Match(both, e)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = w.Match(posOnly, e)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, w.RemoveComponent(e, w.velocity))

	ok, err = w.Match(both, e)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = w.Match(posOnly, e)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestWorld_Resources(t *testing.T) {
	type Gravity struct {
		Y float64
	}

	w := newTestWorld(t)

	require.NoError(t, w.RegisterResource(Gravity{Y: -9.81}))
	require.ErrorIs(t, w.RegisterResource(Gravity{}), ErrDuplicateRegistration)

	gravity, err := ResourceOf[Gravity](w.World)
	require.NoError(t, err)
	require.Equal(t, -9.81, gravity.Y)

	// updates through the pointer are world-visible
	gravity.Y = -1.62
	gravity, err = ResourceOf[Gravity](w.World)
	require.NoError(t, err)
	require.Equal(t, -1.62, gravity.Y)

	type Unregistered struct{}
	_, err = ResourceOf[Unregistered](w.World)
	require.ErrorIs(t, err, ErrUnregisteredType)
}

func TestWorld_Stats(t *testing.T) {
	w := newTestWorld(t)

	for i := 0; i < 3; i++ {
		_, err := w.CreateEntity(Value(w.position, Position{}))
		require.NoError(t, err)
	}

	_, err := w.CreateEntity(Value(w.velocity, Velocity{}))
	require.NoError(t, err)

	stats := w.Stats()
	require.Equal(t, 4, stats.Entities)

	total := 0
	for _, size := range stats.ChunkSizes {
		total += size
	}

	require.Equal(t, 4, total)
}
