// Package reconfig re-derives the screen set when the output topology
// changes.
package reconfig

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nigeltao/tiler/internal/screen"
	"github.com/nigeltao/tiler/internal/topology"
)

// State is the controller's state.
type State int

const (
	Idle State = iota
	Reconfiguring
)

func (s State) String() string {
	if s == Reconfiguring {
		return "reconfiguring"
	}
	return "idle"
}

// Detector counts outputs. topology.Detector implements it.
type Detector interface {
	Detect() ([]topology.Output, int)
}

// Allocator lays out screens for an output count. screen.Allocator
// implements it.
type Allocator interface {
	Allocate(ctx context.Context, n int) []screen.Slot
}

// Signal tells the host to reload onto a new screen set. It runs on the main
// loop.
type Signal func(slots []screen.Slot)

// Controller owns the live screen slots. Handle, Start and Slots must be
// called from the main loop only; Enqueue may be called from anywhere.
type Controller struct {
	detector  Detector
	allocator Allocator
	signal    Signal
	log       *logrus.Entry

	queue   chan topology.Event
	state   State
	pending bool
	slots   []screen.Slot
	count   int
}

func New(detector Detector, allocator Allocator, signal Signal, log *logrus.Entry) *Controller {
	return &Controller{
		detector:  detector,
		allocator: allocator,
		signal:    signal,
		log:       log,
		queue:     make(chan topology.Event, 1),
	}
}

// Enqueue posts ev for the main loop without blocking. If a request is
// already waiting, ev is merged into it: events carry no payload, so one
// waiting request stands for any number.
func (c *Controller) Enqueue(ev topology.Event) {
	select {
	case c.queue <- ev:
	default:
		c.log.Debug("topology change already queued")
	}
}

// Queue is the channel the main loop receives enqueued events from, passing
// each to Handle.
func (c *Controller) Queue() <-chan topology.Event {
	return c.queue
}

// Start performs the initial allocation without signalling the host.
func (c *Controller) Start(ctx context.Context) []screen.Slot {
	c.state = Reconfiguring
	c.apply(ctx)
	c.state = Idle
	return c.Slots()
}

// Handle reacts to a topology event. An event arriving while a
// reconfiguration is running (delivered from within it) schedules exactly
// one follow-up, however many such events arrive.
func (c *Controller) Handle(ctx context.Context, ev topology.Event) {
	if c.state == Reconfiguring {
		c.pending = true
		return
	}
	c.state = Reconfiguring
	for {
		c.pending = false
		c.apply(ctx)
		c.count++
		if c.signal != nil {
			c.signal(c.Slots())
		}
		if !c.pending {
			break
		}
		c.log.Info("topology changed during reconfiguration, running again")
	}
	c.state = Idle
}

func (c *Controller) apply(ctx context.Context) {
	outputs, n := c.detector.Detect()
	slots := screen.Bind(c.allocator.Allocate(ctx, n), outputs)
	c.slots = slots
	c.log.WithFields(logrus.Fields{
		"outputs": n,
		"screens": len(slots),
	}).Info("screens reconfigured")
}

// Slots returns a copy of the live screen slots.
func (c *Controller) Slots() []screen.Slot {
	return append([]screen.Slot(nil), c.slots...)
}

func (c *Controller) State() State { return c.state }

// Reconfigurations returns how many event-driven reconfigurations have run.
func (c *Controller) Reconfigurations() int { return c.count }
