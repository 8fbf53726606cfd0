// Package csvharness replays a CSV test-vector file against a running
// simulation: each data row sets inputs, advances the scheduler one
// timestep, and checks outputs. It is a direct port of
// original_source/src/filerunner.rs's FileRunner, which spec.md §6 names
// but leaves unspecified.
//
// The format is deliberately not real CSV — there is no quoting, because
// every field is either blank or a space-separated list of integers — so
// this package parses it with a plain comma split rather than
// encoding/csv.
package csvharness

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shenzhenvm/components/inputsource"
	"shenzhenvm/components/outputsink"
	"shenzhenvm/errcode"
	"shenzhenvm/sim"
)

// Input is one input column's binding: exactly one of Simple or XBus must
// be set.
type Input struct {
	Simple *sim.SimplePin
	XBus   *inputsource.Source
}

// Output is one output column's binding: exactly one of Simple or XBus
// must be set.
type Output struct {
	Simple *sim.SimplePin
	XBus   *outputsink.Sink
}

type fieldSpec struct {
	index int
	name  string
}

// Runner holds a parsed header and streams data rows from the underlying
// reader on each Verify call.
type Runner struct {
	scanner *bufio.Scanner
	inputs  []fieldSpec
	outputs []fieldSpec
}

// New parses the header row off r: each comma-separated field must read
// "in <name>" or "out <name>".
func New(r io.Reader) (*Runner, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errcode.Wrap(errcode.CSVFormat, "csvharness.New", "reading header", err)
		}
		return nil, errcode.New(errcode.CSVFormat, "csvharness.New", "empty input: no header row")
	}

	run := &Runner{scanner: scanner}
	for index, field := range splitRow(scanner.Text()) {
		switch {
		case strings.HasPrefix(field, "in "):
			run.inputs = append(run.inputs, fieldSpec{index: index, name: field[3:]})
		case strings.HasPrefix(field, "out "):
			run.outputs = append(run.outputs, fieldSpec{index: index, name: field[4:]})
		default:
			return nil, errcode.New(errcode.CSVFormat, "csvharness.New",
				fmt.Sprintf("invalid field in header: %q", field))
		}
	}
	return run, nil
}

func splitRow(line string) []string {
	fields := strings.Split(line, ",")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// Verify drives scheduler through every remaining data row: apply that
// row's inputs, advance one timestep, check that row's outputs. inputs and
// outputs must have an entry for every name the header declared. Returns
// the number of timesteps verified.
func (r *Runner) Verify(scheduler *sim.Scheduler, inputs map[string]Input, outputs map[string]Output) (int, error) {
	timestep := 0

	for r.scanner.Scan() {
		fields := splitRow(r.scanner.Text())

		for _, spec := range r.inputs {
			raw := fields[spec.index]
			if raw == "" {
				continue // blank field: leave this input unchanged this timestep
			}
			values := strings.Fields(raw)

			in, ok := inputs[spec.name]
			if !ok {
				return timestep, errcode.New(errcode.CSVFormat, "csvharness.Verify",
					fmt.Sprintf("expected input bus %q, but not present", spec.name))
			}

			switch {
			case in.Simple != nil:
				if len(values) > 1 {
					return timestep, errcode.New(errcode.CSVFormat, "csvharness.Verify",
						fmt.Sprintf("multiple values given for simple input %q: %v", spec.name, values))
				}
				v, err := strconv.ParseInt(values[0], 10, 32)
				if err != nil {
					return timestep, errcode.Wrap(errcode.CSVFormat, "csvharness.Verify",
						fmt.Sprintf("parsing simple input %q", spec.name), err)
				}
				in.Simple.Store(int32(v))
			case in.XBus != nil:
				for _, raw := range values {
					v, err := strconv.ParseInt(raw, 10, 32)
					if err != nil {
						return timestep, errcode.Wrap(errcode.CSVFormat, "csvharness.Verify",
							fmt.Sprintf("parsing XBus input %q", spec.name), err)
					}
					in.XBus.Inject(int32(v))
				}
			}
		}

		if err := scheduler.Advance(); err != nil {
			return timestep, err
		}
		timestep++

		for _, spec := range r.outputs {
			raw := fields[spec.index]
			var expected []string
			if raw != "" {
				expected = strings.Fields(raw)
			}

			out, ok := outputs[spec.name]
			if !ok {
				return timestep, errcode.New(errcode.CSVFormat, "csvharness.Verify",
					fmt.Sprintf("expected output bus %q, but not present", spec.name))
			}

			switch {
			case out.Simple != nil:
				if len(expected) == 0 {
					continue
				}
				if len(expected) > 1 {
					return timestep, errcode.New(errcode.CSVFormat, "csvharness.Verify",
						fmt.Sprintf("multiple values expected for simple output %q: %v", spec.name, expected))
				}
				want, err := strconv.ParseInt(expected[0], 10, 32)
				if err != nil {
					return timestep, errcode.Wrap(errcode.CSVFormat, "csvharness.Verify",
						fmt.Sprintf("parsing expected output %q", spec.name), err)
				}
				got := out.Simple.Load()
				if int32(want) != got {
					return timestep, errcode.New(errcode.CSVFormat, "csvharness.Verify",
						fmt.Sprintf("incorrect output %q at timestep %d: expected %d, got %d",
							spec.name, timestep, want, got))
				}
			case out.XBus != nil:
				actual := out.XBus.Drain()
				if len(expected) != len(actual) {
					return timestep, errcode.New(errcode.CSVFormat, "csvharness.Verify",
						fmt.Sprintf("incorrect number of values output for %q at timestep %d: expected %d, got %d",
							spec.name, timestep, len(expected), len(actual)))
				}
				for i, want := range expected {
					wantVal, err := strconv.ParseInt(want, 10, 32)
					if err != nil {
						return timestep, errcode.Wrap(errcode.CSVFormat, "csvharness.Verify",
							fmt.Sprintf("parsing expected output %q", spec.name), err)
					}
					if int32(wantVal) != actual[i] {
						return timestep, errcode.New(errcode.CSVFormat, "csvharness.Verify",
							fmt.Sprintf("incorrect output %q at timestep %d: expected %v, got %v",
								spec.name, timestep, expected, actual))
					}
				}
			}
		}
	}

	if err := r.scanner.Err(); err != nil {
		return timestep, errcode.Wrap(errcode.CSVFormat, "csvharness.Verify", "reading data row", err)
	}
	return timestep, nil
}
