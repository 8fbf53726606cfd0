// Package monitor publishes the simulation's tick as retained telemetry
// on the shared bus, the same ticking-reporter shape as the teacher's
// services/heartbeat, generalized from "device is alive" to "simulation
// is at tick N".
package monitor

import (
	"context"
	"time"

	"shenzhenvm/bus"
	"shenzhenvm/sim"
)

var topicConfigMonitor = bus.Topic{"config", "monitor"}

// Service periodically publishes the Scheduler's current tick to
// bus.Topic{"monitor","tick"} as a retained message, so any connection can
// read the latest tick without racing a timer of its own. The reporting
// interval defaults to one second and can be changed at runtime via a
// retained config message.
type Service struct {
	Scheduler *sim.Scheduler
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigMonitor)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			conn.Publish(conn.NewMessage(bus.TopicMonitorTick, s.Scheduler.Time(), true))
		case msg := <-cfgSub.Channel():
			m, ok := msg.Payload.(map[string]any)
			if !ok {
				continue
			}
			iv, ok := m["interval"].(float64)
			if !ok || iv <= 0 {
				continue
			}
			tick.Reset(time.Duration(iv * float64(time.Second)))
		}
	}
}

// Start launches the monitor loop in a goroutine; it stops when ctx is
// cancelled.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
