package tessera

// Time is a resource tracking the progression of ticks. It is registered by
// NewWorld and updated at the start of every RunTick, before any barrier
// executes, so all systems of a tick observe the same values.
type Time struct {
	// Delta is the delta time of the current tick in seconds.
	Delta float64

	// Elapsed is the sum of all deltas so far.
	Elapsed float64

	// Tick counts executed ticks, starting at 1.
	Tick uint64
}
