// Package sim is the concurrency core: the scheduler, the XBus rendezvous
// channel, the controller-thread lifecycle, and the simple pin. Everything
// else in this repository (peripherals, the CSV harness, the scenario
// loader) is a consumer of this package.
package sim

import "sync/atomic"

// SimplePin is a shared, lock-free scalar cell. Reads and writes never
// block and never participate in the sleeper registry; controllers
// synchronize with each other only through XBus, never through a pin.
type SimplePin struct {
	v atomic.Int32
}

// NewSimplePin returns a pin initialized to zero.
func NewSimplePin() *SimplePin { return &SimplePin{} }

// Load reads the current value.
func (p *SimplePin) Load() int32 { return p.v.Load() }

// Store sets the current value.
func (p *SimplePin) Store(val int32) { p.v.Store(val) }
