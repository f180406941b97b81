package console

import xip8 "github.com/guslan/xip8vm"

// Hook observes the machine around cycles and frames.
// Hooks run with the console locked: they must not call back into the Console.
type Hook func(m *xip8.Machine)

// ErrorHook is called with the error that halted the console
type ErrorHook func(m *xip8.Machine, err error)

type hooks struct {
	// Hooks that run before every frame
	beforeFrame []Hook
	// Hooks that run before every cycle
	beforeCycle []Hook
	// Hooks that run after every cycle
	afterCycle []Hook
	// Hooks that run after every frame
	afterFrame []Hook
	// Hooks that run after an error
	onError []ErrorHook
}

// AddBeforeFrameHook adds a hook that will run before every frame
func (c *Console) AddBeforeFrameHook(h Hook) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hooks.beforeFrame = append(c.hooks.beforeFrame, h)

	return len(c.hooks.beforeFrame)
}

// AddBeforeCycleHook adds a hook that will run before every cycle
func (c *Console) AddBeforeCycleHook(h Hook) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hooks.beforeCycle = append(c.hooks.beforeCycle, h)

	return len(c.hooks.beforeCycle)
}

// AddAfterCycleHook adds a hook that will run after every successful cycle
func (c *Console) AddAfterCycleHook(h Hook) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hooks.afterCycle = append(c.hooks.afterCycle, h)

	return len(c.hooks.afterCycle)
}

// AddAfterFrameHook adds a hook that will run after every frame
func (c *Console) AddAfterFrameHook(h Hook) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hooks.afterFrame = append(c.hooks.afterFrame, h)

	return len(c.hooks.afterFrame)
}

// AddErrorHook adds a hook that will run when the machine fails
func (c *Console) AddErrorHook(h ErrorHook) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hooks.onError = append(c.hooks.onError, h)

	return len(c.hooks.onError)
}

func (c *Console) runHooks(hooks []Hook) {
	for _, h := range hooks {
		h(c.machine)
	}
}
