package tessera

import (
	"fmt"
	"strings"

	"github.com/tessera-ecs/tessera/internal/set"
)

// schedule is the resolved execution plan for one tick: every registered
// system in one deterministic topological order, partitioned into barriers
// of systems that may run concurrently.
type schedule struct {
	order    []*registeredSystem
	barriers [][]*registeredSystem
}

// buildSchedule turns the registered systems and groups into a schedule.
// It fails with ErrCyclicDependency, naming the offending cycle, if the
// declared constraints admit no order.
func buildSchedule(systems []*registeredSystem, groups map[string]GroupConfig) (*schedule, error) {
	n := len(systems)

	byName := map[string]int{}
	byGroup := map[string][]int{}
	for i, sys := range systems {
		byName[sys.Name] = i
		if sys.Group != "" {
			byGroup[sys.Group] = append(byGroup[sys.Group], i)
		}
	}

	// resolve maps a constraint target to the systems it names: itself for a
	// system name, every member for a group name.
	resolve := func(target string) ([]int, error) {
		if i, ok := byName[target]; ok {
			return []int{i}, nil
		}

		if members, ok := byGroup[target]; ok {
			return members, nil
		}

		if _, ok := groups[target]; ok {
			// a declared group with no members constrains nothing
			return nil, nil
		}

		return nil, fmt.Errorf("ordering constraint names unknown system or group %q", target)
	}

	// an edge a -> b means a must complete before b starts
	adjacency := make([]set.Set[int], n)
	inDegree := make([]int, n)

	addEdge := func(a, b int) {
		if a == b {
			return
		}

		if adjacency[a].Insert(b) {
			inDegree[b]++
		}
	}

	for i, sys := range systems {
		before, after := sys.Before, sys.After
		if len(before) == 0 && len(after) == 0 && sys.Group != "" {
			// no individual constraints, inherit the group's
			group := groups[sys.Group]
			before, after = group.Before, group.After
		}

		for _, target := range before {
			targets, err := resolve(target)
			if err != nil {
				return nil, err
			}

			for _, t := range targets {
				addEdge(i, t)
			}
		}

		for _, target := range after {
			targets, err := resolve(target)
			if err != nil {
				return nil, err
			}

			for _, t := range targets {
				addEdge(t, i)
			}
		}
	}

	// Kahn's algorithm with a deterministic ready-set order: ascending
	// priority, then registration order.
	var ready []int
	for i, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]*registeredSystem, 0, n)
	remaining := make([]int, n)
	copy(remaining, inDegree)

	for len(ready) > 0 {
		best := 0
		for i := 1; i < len(ready); i++ {
			if scheduledBefore(systems, groups, ready[i], ready[best]) {
				best = i
			}
		}

		current := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		order = append(order, systems[current])

		for next := range adjacency[current].Values() {
			remaining[next]--
			if remaining[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(order) != n {
		return nil, cycleError(systems, adjacency, remaining)
	}

	return &schedule{
		order:    order,
		barriers: partitionBarriers(order, byName, adjacency),
	}, nil
}

// scheduledBefore is the tie-break between two simultaneously schedulable
// systems: lower effective priority first, then registration order.
func scheduledBefore(systems []*registeredSystem, groups map[string]GroupConfig, a, b int) bool {
	pa := effectivePriority(systems[a], groups)
	pb := effectivePriority(systems[b], groups)

	if pa != pb {
		return pa < pb
	}

	return systems[a].index < systems[b].index
}

func effectivePriority(sys *registeredSystem, groups map[string]GroupConfig) int {
	if sys.Priority == 0 && sys.Group != "" {
		return groups[sys.Group].Priority
	}

	return sys.Priority
}

// partitionBarriers packs the sorted systems greedily into barriers. A system
// starts a new barrier if a member of the current one must complete before it
// or has a conflicting access set.
func partitionBarriers(order []*registeredSystem, byName map[string]int, adjacency []set.Set[int]) [][]*registeredSystem {
	var barriers [][]*registeredSystem
	var current []*registeredSystem

	for _, sys := range order {
		split := false
		for _, member := range current {
			if adjacency[byName[member.Name]].Has(byName[sys.Name]) {
				split = true
				break
			}

			if member.access.conflictsWith(&sys.access) {
				split = true
				break
			}
		}

		if split {
			barriers = append(barriers, current)
			current = nil
		}

		current = append(current, sys)
	}

	if len(current) > 0 {
		barriers = append(barriers, current)
	}

	return barriers
}

// cycleError walks the unsortable remainder of the graph to name one cycle.
func cycleError(systems []*registeredSystem, adjacency []set.Set[int], remaining []int) error {
	start := -1
	for i, deg := range remaining {
		if deg > 0 {
			start = i
			break
		}
	}

	// every unsorted node has an unsorted predecessor, so walking edges
	// backwards stays within the remainder and must revisit a node
	visitedAt := map[int]int{}
	var path []int

	current := start
	for {
		if at, seen := visitedAt[current]; seen {
			path = path[at:]
			break
		}

		visitedAt[current] = len(path)
		path = append(path, current)

		previous := -1
		for candidate, edges := range adjacency {
			if remaining[candidate] > 0 && edges.Has(current) {
				previous = candidate
				break
			}
		}

		current = previous
	}

	// the path was collected against edge direction
	names := make([]string, 0, len(path)+1)
	for i := len(path) - 1; i >= 0; i-- {
		names = append(names, systems[path[i]].Name)
	}

	names = append(names, systems[path[len(path)-1]].Name)

	return fmt.Errorf("%w: %s", ErrCyclicDependency, strings.Join(names, " -> "))
}
