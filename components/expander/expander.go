// Package expander implements the digit-expander peripheral: three simple
// pins projected onto (and driven by) up to three XBuses, each bus acting
// as both a source and a sink for the same shared pin set. It is grounded
// on original_source/src/components/expander.rs.
package expander

import "shenzhenvm/sim"

// threshold is the "pin is high" cutoff the original uses for both the
// read projection and deciding which pins a write should raise.
const threshold = 50

// Expander holds up to three simple pins and exposes each of x0/x1/x2 as
// an XBus that reads the combined value back as a 0-111 weighted sum and
// writes a value back out across the same three pins (§9 cyclic
// ownership: the bus owns the expander as both source and sink, and the
// expander's output feeds straight back onto the bus it was read from).
// Any of p0, p1, p2 may be nil — an expander need not wire every pin.
type Expander struct {
	p0, p1, p2 *sim.SimplePin
}

// New builds an Expander over the given pins (any may be nil) and returns
// three freshly constructed buses, each connected to it as both source and
// sink.
func New(p0, p1, p2 *sim.SimplePin) (x0, x1, x2 *sim.XBus) {
	e := &Expander{p0: p0, p1: p1, p2: p2}
	x0, x1, x2 = sim.NewXBus("x0"), sim.NewXBus("x1"), sim.NewXBus("x2")
	for _, b := range []*sim.XBus{x0, x1, x2} {
		b.ConnectSource(e)
		b.ConnectSink(e)
	}
	return x0, x1, x2
}

func isHigh(p *sim.SimplePin) bool {
	return p != nil && p.Load() >= threshold
}

// CanRead is always true: the expander has a value to report regardless
// of pin state.
func (e *Expander) CanRead() bool { return true }

// Read projects p2/p1/p0 onto the hundreds/tens/units digit of the
// result, each either 0 or its place value.
func (e *Expander) Read() int32 {
	var total int32
	if isHigh(e.p2) {
		total += 100
	}
	if isHigh(e.p1) {
		total += 10
	}
	if isHigh(e.p0) {
		total += 1
	}
	return total
}

// Write decomposes abs(val) into decimal digits and raises each connected
// pin to 100 if its digit is nonzero, else drops it to 0.
func (e *Expander) Write(val int32) {
	abs := val
	if abs < 0 {
		abs = -abs
	}
	if e.p2 != nil {
		if abs >= 100 {
			e.p2.Store(100)
		} else {
			e.p2.Store(0)
		}
	}
	if e.p1 != nil {
		if abs%100 >= 10 {
			e.p1.Store(100)
		} else {
			e.p1.Store(0)
		}
	}
	if e.p0 != nil {
		if abs%10 >= 1 {
			e.p0.Store(100)
		} else {
			e.p0.Store(0)
		}
	}
}
