// Command shzrun builds a scenario from a JSON wiring document and replays
// a CSV test-vector file against it, reporting pass/fail and the number of
// timesteps executed. It is the hosted-Go analogue of the teacher's
// on-device self-test binaries (bus/cmd/selftest): same "build something,
// run fixed checks against it, report PASS/FAIL" shape, aimed at a
// scenario + CSV pair instead of the bus package's built-in test table.
//
// While the scenario runs, shzrun also stands up the telemetry bus:
// services/monitor publishes the scheduler's tick, and a deadlock or
// watchdog failure from the run is published as fault telemetry (see
// bus/topics.go) and echoed to stderr, the same way an operator watching a
// live bus connection would see it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"shenzhenvm/bus"
	"shenzhenvm/csvharness"
	"shenzhenvm/internal/logx"
	"shenzhenvm/scenario"
	"shenzhenvm/services/monitor"
	"shenzhenvm/sim"
)

func main() {
	scenarioPath := flag.String("scenario", "", "path to a scenario JSON document (required)")
	csvPath := flag.String("csv", "", "path to a CSV test-vector file (required)")
	verbose := flag.Bool("v", false, "emit debug-level logging")
	flag.Parse()

	if *scenarioPath == "" || *csvPath == "" {
		fmt.Fprintln(os.Stderr, "usage: shzrun -scenario <file.json> -csv <file.csv>")
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := logx.New(level)

	if err := run(*scenarioPath, *csvPath, log); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		os.Exit(1)
	}
}

func run(scenarioPath, csvPath string, log logx.Logger) error {
	doc, err := os.ReadFile(scenarioPath)
	if err != nil {
		return fmt.Errorf("reading scenario: %w", err)
	}
	csvFile, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("opening csv: %w", err)
	}
	defer csvFile.Close()

	outLog := logx.OutputAdapter{L: log}
	sched, wiring, err := scenario.Build(doc, outLog, sim.WithLogger(logx.SchedulerAdapter{L: log}))
	if err != nil {
		return fmt.Errorf("building scenario: %w", err)
	}
	defer sched.End()

	telemetry := bus.NewBus(8)
	conn := telemetry.NewConnection("shzrun")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mon := &monitor.Service{Scheduler: sched}
	if err := mon.Start(ctx, conn); err != nil {
		return fmt.Errorf("starting monitor: %w", err)
	}

	faultSub := conn.Subscribe(bus.T("sim", "+"))
	defer conn.Unsubscribe(faultSub)
	go echoFaults(faultSub)

	runner, err := csvharness.New(csvFile)
	if err != nil {
		return fmt.Errorf("reading csv header: %w", err)
	}

	inputs, outputs := wiring.Harness()

	steps, verifyErr := runner.Verify(sched, inputs, outputs)
	bus.PublishFault(conn, verifyErr)
	if verifyErr != nil {
		// Give the telemetry echo goroutine a moment to print before exiting.
		time.Sleep(50 * time.Millisecond)
		return fmt.Errorf("at step %d: %w", steps, verifyErr)
	}

	fmt.Printf("PASS: %d steps\n", steps)
	return nil
}

// echoFaults prints every deadlock/watchdog fault published on sub to
// stderr until the subscription is closed (by Unsubscribe).
func echoFaults(sub *bus.Subscription) {
	for msg := range sub.Channel() {
		fmt.Fprintf(os.Stderr, "telemetry: %v: %v\n", msg.Topic, msg.Payload)
	}
}
