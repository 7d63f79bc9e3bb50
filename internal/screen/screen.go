// Package screen maps a count of detected outputs to logical screen slots.
package screen

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nigeltao/tiler/internal/topology"
)

// Role distinguishes the single master screen from the rest.
type Role int

const (
	Master Role = iota
	Slave
)

func (r Role) String() string {
	if r == Master {
		return "master"
	}
	return "slave"
}

// Slot is one logical screen. Output is nil until Bind attaches one.
type Slot struct {
	Index  int
	Role   Role
	Output *topology.Output
}

func (s Slot) String() string {
	if s.Output == nil {
		return fmt.Sprintf("%d:%v", s.Index, s.Role)
	}
	return fmt.Sprintf("%d:%v:%s", s.Index, s.Role, s.Output.ID)
}

// Layout returns max(1, n) unbound slots, slot 0 master and the rest slaves.
// It is pure: equal inputs give structurally equal results.
func Layout(n int) []Slot {
	if n < 1 {
		n = 1
	}
	slots := make([]Slot, n)
	for i := range slots {
		slots[i] = Slot{Index: i, Role: Slave}
	}
	slots[0].Role = Master
	return slots
}

// Bind attaches the i'th output to the i'th slot. Slots beyond the outputs
// stay unbound; surplus outputs are ignored. The input slice is not modified.
func Bind(slots []Slot, outputs []topology.Output) []Slot {
	bound := make([]Slot, len(slots))
	copy(bound, slots)
	for i := range bound {
		bound[i].Output = nil
		if i < len(outputs) {
			o := outputs[i]
			bound[i].Output = &o
		}
	}
	return bound
}

// Fixup applies an n-screen physical layout to the display server, changing
// output resolutions and positions. It runs before logical screens are bound.
type Fixup interface {
	Apply(ctx context.Context, n int) error
}

// FixupFunc adapts a function to Fixup.
type FixupFunc func(ctx context.Context, n int) error

func (f FixupFunc) Apply(ctx context.Context, n int) error { return f(ctx, n) }

// Allocator produces the slot layout for an output count, running the
// physical fixup first.
type Allocator struct {
	fixup Fixup
	log   *logrus.Entry
}

// NewAllocator returns an Allocator. A nil fixup skips the physical layout
// step.
func NewAllocator(fixup Fixup, log *logrus.Entry) *Allocator {
	return &Allocator{fixup: fixup, log: log}
}

// Allocate applies the fixup for max(1, n) screens and returns Layout(n).
// A fixup failure is logged and otherwise ignored: the display keeps
// whatever geometry it currently has.
func (a *Allocator) Allocate(ctx context.Context, n int) []Slot {
	slots := Layout(n)
	if a.fixup != nil {
		if err := a.fixup.Apply(ctx, len(slots)); err != nil {
			a.log.WithError(err).WithField("screens", len(slots)).Warn("screen layout fixup failed")
		}
	}
	a.log.WithField("screens", len(slots)).Info("allocated screens")
	return slots
}
