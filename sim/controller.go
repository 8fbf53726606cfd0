package sim

// State holds a controller's persistent registers, named after the
// SHENZHEN I/O `acc`/`dat` registers they stand in for (§3). A controller
// body is handed the same *State on every call and may read or write it
// freely; the scheduler never inspects it.
type State struct {
	Acc int32
	Dat int32
}

// Body is one controller's program. It is called repeatedly; each call
// should perform one logical step and is expected to block the goroutine
// (via ctx.Sleep or an XBus operation) before returning, the same way a
// SHENZHEN I/O chip blocks on slp/slx. Returning a non-nil error ends the
// controller permanently — its goroutine exits and it stops participating
// in ticks.
//
// A Body must stop looping (return an error) if any ctx call returns
// false; that signals the scheduler is shutting down.
type Body func(ctx *Context, state *State) error

// ControllerSpec names a controller and the program it runs (§4.1).
type ControllerSpec struct {
	Name string
	Body Body
}

// runController is the goroutine entry point for one controller. It
// performs the mandatory startup handshake (posting Time(0), mirroring the
// original's first sleep before any instruction executes) and then loops
// the body until it returns or the scheduler shuts down.
func runController(spec ControllerSpec, s *Scheduler) {
	defer s.wg.Done()

	ctx := &Context{
		name: spec.Name,
		post: func(t SleepToken) bool { return s.postSleep(spec.Name, t) },
	}

	if !ctx.Sleep(0) {
		return
	}

	state := &State{}
	for {
		if err := spec.Body(ctx, state); err != nil {
			return
		}
	}
}
