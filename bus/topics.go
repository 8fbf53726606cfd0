package bus

import (
	"fmt"

	"shenzhenvm/errcode"
)

// Topic constructors for the simulator's telemetry bus. The trie/pub-sub
// mechanics in bus.go are unchanged from the teacher's device message bus;
// these are the sim-specific topic names layered on top of it, the same
// way the teacher's own services each owned a handful of Topic literals
// (services/heartbeat's topicConfigHeartbeat, services/config's
// configPrefix).
var (
	// TopicMonitorTick is where services/monitor retains the current
	// scheduler tick.
	TopicMonitorTick = Topic{"monitor", "tick"}

	// TopicDeadlock is where PublishFault publishes, non-retained, an
	// error carrying errcode.Deadlock (as Scheduler.Advance returns).
	TopicDeadlock = Topic{"sim", "deadlock"}

	// TopicWatchdog is where PublishFault publishes, non-retained, an
	// error carrying errcode.Watchdog (as Scheduler.Advance returns).
	TopicWatchdog = Topic{"sim", "watchdog"}
)

// PublishFault reports a deadlock or watchdog error from a Scheduler
// Advance call on conn, using TopicDeadlock or TopicWatchdog to match. Any
// other error (or nil) is not a fault telemetry event and is not published.
func PublishFault(conn *Connection, err error) {
	var topic Topic
	switch errcode.Of(err) {
	case errcode.Deadlock:
		topic = TopicDeadlock
	case errcode.Watchdog:
		topic = TopicWatchdog
	default:
		return
	}
	conn.Publish(conn.NewMessage(topic, fmt.Sprint(err), false))
}
