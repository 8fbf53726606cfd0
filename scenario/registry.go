package scenario

import (
	"sync"

	"shenzhenvm/sim"
)

// ControllerFactory builds one controller's Body from its scenario
// parameters and the Wiring it was declared against. Registered factories
// are how a JSON scenario document names Go code without embedding it;
// adapted from the teacher's services/hal/internal/registry Builder
// pattern (a name -> constructor map guarded by a RWMutex), generalized
// from "device driver by name" to "controller program by name".
type ControllerFactory func(params map[string]any, w *Wiring) (sim.Body, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]ControllerFactory)
)

// RegisterController makes a controller program available to scenario
// documents under name. Call it from an init() in the package that defines
// the controller, the same way the teacher's HAL drivers self-register.
func RegisterController(name string, f ControllerFactory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = f
}

func lookupController(name string) (ControllerFactory, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := factories[name]
	return f, ok
}
