// Command shzrepl is an interactive debug console for stepping a scenario
// by hand: load a wiring document, then issue one command per line to
// inspect or poke pins and buses and to advance the clock. Command lines
// are tokenized with shlex rather than strings.Fields so a bus name or
// injected value could later carry a quoted space without breaking the
// parse, the same reasoning the teacher's go.mod pulls shlex in for.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/google/shlex"

	"shenzhenvm/errcode"
	"shenzhenvm/scenario"
	"shenzhenvm/sim"
)

func main() {
	scenarioPath := flag.String("scenario", "", "path to a scenario JSON document (required)")
	flag.Parse()

	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "usage: shzrepl -scenario <file.json>")
		os.Exit(2)
	}

	doc, err := os.ReadFile(*scenarioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading scenario: %v\n", err)
		os.Exit(1)
	}

	sched, wiring, err := scenario.Build(doc, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building scenario: %v\n", err)
		os.Exit(1)
	}
	defer sched.End()

	repl := &repl{wiring: wiring, out: os.Stdout}
	repl.run(os.Stdin, sched)
}

type repl struct {
	wiring *scenario.Wiring
	out    io.Writer
}

// run reads one command per line until EOF, dispatching each to its
// handler. Commands:
//
//	advance                advance the clock one tick
//	time                   print the current tick
//	pin get <name>         print a simple pin's value
//	pin set <name> <val>   store into a simple pin
//	inject <name> <val>    push a value into an inputsource peripheral
//	drain <name>           print and clear an outputsink's queued values
func (r *repl) run(in io.Reader, sched *sim.Scheduler) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		args, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if err := r.dispatch(sched, args); err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
	}
}

func (r *repl) dispatch(sched *sim.Scheduler, args []string) error {
	switch args[0] {
	case "advance":
		if err := sched.Advance(); err != nil {
			if errcode.Of(err) == errcode.Deadlock || errcode.Of(err) == errcode.Watchdog {
				fmt.Fprintf(r.out, "%s: %v\n", errcode.Of(err), err)
				return nil
			}
			return err
		}
		fmt.Fprintf(r.out, "t=%d\n", sched.Time())
		return nil

	case "time":
		fmt.Fprintf(r.out, "%d\n", sched.Time())
		return nil

	case "pin":
		if len(args) < 3 {
			return fmt.Errorf("usage: pin get|set <name> [value]")
		}
		pin, ok := r.wiring.Pins[args[2]]
		if !ok {
			return fmt.Errorf("no pin %q", args[2])
		}
		switch args[1] {
		case "get":
			fmt.Fprintf(r.out, "%d\n", pin.Load())
		case "set":
			if len(args) < 4 {
				return fmt.Errorf("usage: pin set <name> <value>")
			}
			v, err := strconv.ParseInt(args[3], 10, 32)
			if err != nil {
				return err
			}
			pin.Store(int32(v))
		default:
			return fmt.Errorf("unknown pin subcommand %q", args[1])
		}
		return nil

	case "inject":
		if len(args) < 3 {
			return fmt.Errorf("usage: inject <name> <value>")
		}
		src, ok := r.wiring.Sources[args[1]]
		if !ok {
			return fmt.Errorf("no input source %q", args[1])
		}
		v, err := strconv.ParseInt(args[2], 10, 32)
		if err != nil {
			return err
		}
		src.Inject(int32(v))
		return nil

	case "drain":
		if len(args) < 2 {
			return fmt.Errorf("usage: drain <name>")
		}
		sink, ok := r.wiring.Sinks[args[1]]
		if !ok {
			return fmt.Errorf("no output sink %q", args[1])
		}
		fmt.Fprintf(r.out, "%v\n", sink.Drain())
		return nil

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
