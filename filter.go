package tessera

import (
	"fmt"
	"strings"

	"github.com/tessera-ecs/tessera/internal/arch"
	"github.com/tessera-ecs/tessera/internal/set"
)

type filterOp uint8

const (
	opComp filterOp = iota
	opAnd
	opOr
	opNot
)

// Filter is a boolean expression over component types, evaluated against an
// archetype's component set. A nil Filter behaves like And() and matches
// every archetype, including the empty one.
type Filter struct {
	op   filterOp
	id   ComponentID
	subs []*Filter
}

// Comp matches archetypes containing the given component type.
func Comp(id ComponentID) *Filter {
	return &Filter{op: opComp, id: id}
}

// And matches archetypes matching all sub filters. And() matches everything.
func And(subs ...*Filter) *Filter {
	return &Filter{op: opAnd, subs: subs}
}

// Or matches archetypes matching at least one sub filter. Or() matches
// nothing.
func Or(subs ...*Filter) *Filter {
	return &Filter{op: opOr, subs: subs}
}

// Not matches archetypes not matching the sub filter.
func Not(sub *Filter) *Filter {
	return &Filter{op: opNot, subs: []*Filter{sub}}
}

func (f *Filter) matches(mask arch.Mask) bool {
	if f == nil {
		return true
	}

	switch f.op {
	case opComp:
		return mask.Contains(f.id)

	case opAnd:
		for _, sub := range f.subs {
			if !sub.matches(mask) {
				return false
			}
		}

		return true

	case opOr:
		for _, sub := range f.subs {
			if sub.matches(mask) {
				return true
			}
		}

		return false

	case opNot:
		return !f.subs[0].matches(mask)

	default:
		panic(fmt.Sprintf("invalid filter op %d", f.op))
	}
}

// componentIDs collects every component id referenced anywhere in the tree.
func (f *Filter) componentIDs(into *set.Set[ComponentID]) {
	if f == nil {
		return
	}

	if f.op == opComp {
		into.Insert(f.id)
		return
	}

	for _, sub := range f.subs {
		sub.componentIDs(into)
	}
}

func (f *Filter) String() string {
	if f == nil {
		return "And()"
	}

	switch f.op {
	case opComp:
		return fmt.Sprintf("Comp(%d)", f.id)

	case opNot:
		return fmt.Sprintf("Not(%s)", f.subs[0])

	default:
		name := "And"
		if f.op == opOr {
			name = "Or"
		}

		var sb strings.Builder
		sb.WriteString(name)
		sb.WriteString("(")
		for i, sub := range f.subs {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(sub.String())
		}

		sb.WriteString(")")

		return sb.String()
	}
}
