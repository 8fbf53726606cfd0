package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"shenzhenvm/bus"
	"shenzhenvm/sim"
)

func TestServicePublishesTickRetained(t *testing.T) {
	specs := []sim.ControllerSpec{
		{Name: "a", Body: func(ctx *sim.Context, state *sim.State) error {
			if !ctx.Sleep(1) {
				return errors.New("stop")
			}
			return nil
		}},
	}
	scheduler, err := sim.New(specs)
	if err != nil {
		t.Fatal(err)
	}
	defer scheduler.End()

	if err := scheduler.Advance(); err != nil {
		t.Fatal(err)
	}

	b := bus.NewBus(4)
	conn := b.NewConnection("test-monitor")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := &Service{Scheduler: scheduler}
	if err := svc.Start(ctx, conn); err != nil {
		t.Fatal(err)
	}

	// Force an immediate tick rather than waiting out the 1s default.
	conn.Publish(conn.NewMessage(topicConfigMonitor, map[string]any{"interval": 0.05}, true))

	sub := conn.Subscribe(bus.Topic{"monitor", "tick"})
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		select {
		case msg := <-sub.Channel():
			if tick, ok := msg.Payload.(int32); ok && tick >= 1 {
				return
			}
		case <-time.After(10 * time.Millisecond):
		}
	}
	t.Fatal("did not observe a monitor tick message in time")
}
