package scenario

import (
	"errors"
	"fmt"

	"shenzhenvm/sim"
)

func init() {
	RegisterController("math", newMathController)
}

// newMathController builds the reference "Math" controller from
// original_source/examples/doubler.rs: it sleeps on an XBus input,
// reads it, adds a simple-pin input, writes the sum to an XBus output,
// and stores the difference to a simple-pin output. Scenario parameters:
// input_a (XBus name), input_b (pin name), output_added (XBus name),
// output_subtracted (pin name).
func newMathController(params map[string]any, w *Wiring) (sim.Body, error) {
	busParam := func(key string) (*sim.XBus, error) {
		name, _ := params[key].(string)
		b, ok := w.Buses[name]
		if !ok {
			return nil, fmt.Errorf("math controller: no bus %q for param %q", name, key)
		}
		return b, nil
	}
	pinParam := func(key string) (*sim.SimplePin, error) {
		name, _ := params[key].(string)
		p, ok := w.Pins[name]
		if !ok {
			return nil, fmt.Errorf("math controller: no pin %q for param %q", name, key)
		}
		return p, nil
	}

	inputA, err := busParam("input_a")
	if err != nil {
		return nil, err
	}
	inputB, err := pinParam("input_b")
	if err != nil {
		return nil, err
	}
	outputAdded, err := busParam("output_added")
	if err != nil {
		return nil, err
	}
	outputSubtracted, err := pinParam("output_subtracted")
	if err != nil {
		return nil, err
	}

	return func(ctx *sim.Context, state *sim.State) error {
		if !inputA.Sleep(ctx) {
			return errors.New("stop")
		}
		a, ok := inputA.Read(ctx)
		if !ok {
			return errors.New("stop")
		}
		b := inputB.Load()

		if !outputAdded.Write(ctx, a+b) {
			return errors.New("stop")
		}
		outputSubtracted.Store(a - b)
		return nil
	}, nil
}
