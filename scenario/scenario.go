// Package scenario turns a JSON wiring document into a running
// simulation. Which controllers exist and which buses, pins, and
// peripherals they are plugged into is data, not code, the same way the
// teacher's HAL device list is data loaded by services/config — this
// package keeps that exact idiom (a tinyjson.Raw parse into a plain
// map[string]any/[]any tree, no generated schema, no encoding/json struct
// tags) and generalizes it from "which HAL devices exist" to "which
// controllers and peripherals exist".
package scenario

import (
	"fmt"

	"github.com/andreyvit/tinyjson"

	"shenzhenvm/components/expander"
	"shenzhenvm/components/inputsource"
	"shenzhenvm/components/memory"
	"shenzhenvm/components/outputsink"
	"shenzhenvm/csvharness"
	"shenzhenvm/errcode"
	"shenzhenvm/sim"
)

// Wiring is every named thing a scenario document declares, handed to
// controller factories so they can look up the pins/buses/peripherals
// they were wired to, and handed back to the caller so a CSV harness or
// REPL can reach the same handles.
type Wiring struct {
	Pins    map[string]*sim.SimplePin
	Buses   map[string]*sim.XBus
	Sources map[string]*inputsource.Source
	Sinks   map[string]*outputsink.Sink
}

// Harness builds the inputs/outputs maps csvharness.Runner.Verify expects,
// keyed by the same names the scenario document used for its pins and
// peripherals. Pin names and peripheral bus names are declared
// independently, so a document may reuse one name for both; such a name
// resolves to the XBus binding, which overwrites the pin binding.
func (w *Wiring) Harness() (map[string]csvharness.Input, map[string]csvharness.Output) {
	inputs := make(map[string]csvharness.Input, len(w.Pins)+len(w.Sources))
	outputs := make(map[string]csvharness.Output, len(w.Pins)+len(w.Sinks))

	for name, pin := range w.Pins {
		inputs[name] = csvharness.Input{Simple: pin}
		outputs[name] = csvharness.Output{Simple: pin}
	}
	for name, src := range w.Sources {
		inputs[name] = csvharness.Input{XBus: src}
	}
	for name, sink := range w.Sinks {
		outputs[name] = csvharness.Output{XBus: sink}
	}
	return inputs, outputs
}

func newWiring() *Wiring {
	return &Wiring{
		Pins:    make(map[string]*sim.SimplePin),
		Buses:   make(map[string]*sim.XBus),
		Sources: make(map[string]*inputsource.Source),
		Sinks:   make(map[string]*outputsink.Sink),
	}
}

// OutputLogger is satisfied by internal/logx.OutputAdapter; passing nil
// disables output-sink reporting.
type OutputLogger = outputsink.Logger

// Build parses doc and wires up every pin, bus, peripheral, and
// controller it declares, then constructs and returns the running
// Scheduler (blocking, per sim.New, until every controller's startup
// handshake lands) along with the Wiring a harness needs to drive it.
func Build(doc []byte, outLog OutputLogger, opts ...sim.Option) (*sim.Scheduler, *Wiring, error) {
	raw := tinyjson.Raw(doc)
	val := raw.Value()
	raw.EnsureEOF()

	root, ok := val.(map[string]any)
	if !ok {
		return nil, nil, errcode.New(errcode.InvalidScenario, "scenario.Build", "document is not a JSON object")
	}

	w := newWiring()

	for _, name := range stringList(root["pins"]) {
		w.Pins[name] = sim.NewSimplePin()
	}
	for _, name := range stringList(root["buses"]) {
		w.Buses[name] = sim.NewXBus(name)
	}

	for _, raw := range listOf(root["peripherals"]) {
		spec, ok := raw.(map[string]any)
		if !ok {
			return nil, nil, errcode.New(errcode.InvalidScenario, "scenario.Build", "peripheral entry is not an object")
		}
		if err := w.buildPeripheral(spec, outLog); err != nil {
			return nil, nil, err
		}
	}

	var specs []sim.ControllerSpec
	for _, raw := range listOf(root["controllers"]) {
		spec, ok := raw.(map[string]any)
		if !ok {
			return nil, nil, errcode.New(errcode.InvalidScenario, "scenario.Build", "controller entry is not an object")
		}

		name, _ := spec["name"].(string)
		ctorName, _ := spec["constructor"].(string)
		params, _ := spec["params"].(map[string]any)
		if name == "" || ctorName == "" {
			return nil, nil, errcode.New(errcode.InvalidScenario, "scenario.Build", "controller entry needs name and constructor")
		}

		factory, ok := lookupController(ctorName)
		if !ok {
			return nil, nil, errcode.New(errcode.InvalidScenario, "scenario.Build",
				fmt.Sprintf("no registered controller constructor %q", ctorName))
		}

		body, err := factory(params, w)
		if err != nil {
			return nil, nil, errcode.Wrap(errcode.InvalidScenario, "scenario.Build",
				fmt.Sprintf("building controller %q", name), err)
		}
		specs = append(specs, sim.ControllerSpec{Name: name, Body: body})
	}

	scheduler, err := sim.New(specs, opts...)
	if err != nil {
		return nil, nil, err
	}
	return scheduler, w, nil
}

func (w *Wiring) buildPeripheral(spec map[string]any, outLog OutputLogger) error {
	typ, _ := spec["type"].(string)
	name := func(key string) string { s, _ := spec[key].(string); return s }

	switch typ {
	case "inputsource.blocking", "inputsource.nonblocking":
		mode := inputsource.ModeBlocking
		if typ == "inputsource.nonblocking" {
			mode = inputsource.ModeNonBlocking
		}
		src, bus := inputsource.New(mode)
		w.Sources[name("bus")] = src
		w.Buses[name("bus")] = bus

	case "outputsink":
		sink, bus := outputsink.New(name("bus"), outLog)
		w.Sinks[name("bus")] = sink
		w.Buses[name("bus")] = bus

	case "rom":
		contents, err := int32Array14(spec["contents"])
		if err != nil {
			return errcode.Wrap(errcode.InvalidScenario, "scenario.buildPeripheral", "rom contents", err)
		}
		pins := memory.ROM(contents)
		w.Buses[name("addr0")] = pins.Addr0
		w.Buses[name("addr1")] = pins.Addr1
		w.Buses[name("data0")] = pins.Data0
		w.Buses[name("data1")] = pins.Data1

	case "ram":
		pins := memory.RAM()
		w.Buses[name("addr0")] = pins.Addr0
		w.Buses[name("addr1")] = pins.Addr1
		w.Buses[name("data0")] = pins.Data0
		w.Buses[name("data1")] = pins.Data1

	case "expander":
		p0 := w.Pins[name("p0")]
		p1 := w.Pins[name("p1")]
		p2 := w.Pins[name("p2")]
		x0, x1, x2 := expander.New(p0, p1, p2)
		w.Buses[name("x0")] = x0
		w.Buses[name("x1")] = x1
		w.Buses[name("x2")] = x2

	default:
		return errcode.New(errcode.InvalidScenario, "scenario.buildPeripheral", fmt.Sprintf("unknown peripheral type %q", typ))
	}
	return nil
}

func stringList(v any) []string {
	var out []string
	for _, item := range listOf(v) {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func listOf(v any) []any {
	list, _ := v.([]any)
	return list
}

func int32Array14(v any) ([14]int32, error) {
	var out [14]int32
	list := listOf(v)
	if len(list) > 14 {
		return out, fmt.Errorf("contents has %d entries, max 14", len(list))
	}
	for i, item := range list {
		n, ok := item.(float64) // tinyjson decodes all JSON numbers as float64
		if !ok {
			return out, fmt.Errorf("contents[%d] is not a number", i)
		}
		out[i] = int32(n)
	}
	return out, nil
}
