package sim

// Context is the explicit handle a controller body uses to identify
// itself and to park on a SleepToken. Go has no ergonomic per-goroutine
// thread-local storage, so where the original passed ambient identity
// through ambient thread-local state (§9), this package threads it
// explicitly: every blocking call takes a *Context instead of reading it
// out of the calling goroutine.
type Context struct {
	name string
	post func(SleepToken) bool
}

// Name returns the owning controller's name, as registered with the
// scheduler.
func (c *Context) Name() string { return c.name }

// Sleep parks the calling controller for n timesteps relative to the
// current time at the point of the call (Time(n), §3). Returns false if
// the simulation ended while parked; a controller body must stop on a
// false return rather than loop again.
func (c *Context) Sleep(n int32) bool {
	return c.post(Time(n))
}

// NewContext builds a Context outside of a Scheduler, identified by name,
// whose blocking calls are resolved by post. Scheduler-driven controllers
// never need this directly (runController builds their Context for them);
// it exists for tests and for standalone drivers exercising a bus or
// peripheral without a full Scheduler.
func NewContext(name string, post func(SleepToken) bool) *Context {
	return &Context{name: name, post: post}
}
