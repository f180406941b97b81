// Package console drives a xip8 machine in real time: it runs cycles at a
// configurable speed, ticks the timers and renders at 60 Hz, and lets frontends
// feed keys and control the execution.
package console

import (
	"context"
	"errors"
	"sync"
	"time"

	xip8 "github.com/guslan/xip8vm"
)

var ErrNotBooted = errors.New("the console has not been booted properly")

const (
	DefaultSpeed uint = 500
	MaxSpeed     uint = 700
	MinSpeed     uint = 5

	// TimerFrequency is the rate of the delay and sound timers, in Hz
	TimerFrequency = 60
)

// Console owns a Machine and the devices attached to it.
// All of its methods are safe for concurrent use.
type Console struct {
	mu sync.Mutex

	machine  *xip8.Machine
	executor *xip8.Executor
	program  []byte

	display Display
	buzzer  Buzzer
	buzzing bool

	speedInHz uint
	cycles    uint
	frames    uint

	isBooted  bool
	isPaused  bool
	lastError error

	hooks hooks
}

// Option configures a Console
type Option func(*Console)

// WithSpeed sets the number of cycles per second
func WithSpeed(inHz uint) Option {
	return func(c *Console) {
		c.speedInHz = clampSpeed(inHz)
	}
}

// WithSysHandler installs the interpreter of 0NNN machine code routines
func WithSysHandler(h xip8.SysHandler) Option {
	return func(c *Console) {
		c.executor.SysHandler = h
	}
}

// Paused creates the console stopped, waiting for Start or Step
func Paused() Option {
	return func(c *Console) {
		c.isPaused = true
	}
}

func New(machine *xip8.Machine, quirks xip8.Quirks, display Display, buzzer Buzzer, opts ...Option) *Console {
	c := &Console{
		machine:  machine,
		executor: xip8.NewExecutor(quirks),
		program:  nil,

		display: display,
		buzzer:  buzzer,
		buzzing: false,

		speedInHz: DefaultSpeed,
		cycles:    0,
		frames:    0,

		isBooted:  false,
		isPaused:  false,
		lastError: nil,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func clampSpeed(inHz uint) uint {
	return max(MinSpeed, min(inHz, MaxSpeed))
}

// Boot initializes all the devices.
// If the console was already booted, this method is a noop.
func (c *Console) Boot() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isBooted {
		return nil
	}

	if err := c.display.Boot(); err != nil {
		return err
	}

	if err := c.buzzer.Boot(); err != nil {
		return err
	}

	c.isBooted = true

	return nil
}

func (c *Console) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return !c.isPaused
}

func (c *Console) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.isPaused = false
}

func (c *Console) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.isPaused = true
}

func (c *Console) SpeedInHz() uint {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.speedInHz
}

// SetSpeedInHz changes the speed, clamped to [MinSpeed, MaxSpeed]
func (c *Console) SetSpeedInHz(inHz uint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.speedInHz = clampSpeed(inHz)
}

func (c *Console) Cycles() uint {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cycles
}

func (c *Console) Frames() uint {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.frames
}

// Err returns the error that halted the console, if any
func (c *Console) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastError
}

// LoadProgram resets the machine and loads the program
func (c *Console) LoadProgram(program []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.machine.LoadProgram(program); err != nil {
		return err
	}
	c.program = append([]byte(nil), program...)

	return c.reset()
}

// Reset restarts the last loaded program
func (c *Console) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.machine.LoadProgram(c.program); err != nil {
		return err
	}

	return c.reset()
}

func (c *Console) reset() error {
	c.cycles = 0
	c.frames = 0
	c.lastError = nil
	c.stopBuzzer()
	c.machine.DisplayChanged()

	if !c.isBooted {
		return nil
	}

	return c.render()
}

// SetKey updates the state of a key of the keypad
func (c *Console) SetKey(k byte, pressed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.machine.SetKey(k, pressed)
}

func (c *Console) PressKey(k byte) error {
	return c.SetKey(k, true)
}

func (c *Console) ReleaseKey(k byte) error {
	return c.SetKey(k, false)
}

// Snapshot returns a copy of the registers of the machine
func (c *Console) Snapshot() xip8.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.machine.State()
}

// Display returns a copy of the screen
func (c *Console) Display() xip8.Screen {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.machine.Display()
}

// Inspect calls f with the console locked. f must not keep the machine nor
// call back into the Console.
func (c *Console) Inspect(f func(m *xip8.Machine)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f(c.machine)
}

// Run executes the machine at the configured speed and runs a frame at
// TimerFrequency until the context ends or the machine fails.
// It returns nil when the context ends.
func (c *Console) Run(ctx context.Context) error {
	c.mu.Lock()
	if !c.isBooted {
		c.mu.Unlock()
		return ErrNotBooted
	}
	if c.lastError != nil {
		err := c.lastError
		c.mu.Unlock()
		return err
	}
	speed := c.speedInHz
	c.mu.Unlock()

	cycles := time.NewTicker(time.Second / time.Duration(speed))
	defer cycles.Stop()
	frames := time.NewTicker(time.Second / TimerFrequency)
	defer frames.Stop()

	defer func() {
		c.mu.Lock()
		c.stopBuzzer()
		c.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-cycles.C:
			c.mu.Lock()
			var err error
			if !c.isPaused {
				err = c.cycle()
			}
			current := c.speedInHz
			c.mu.Unlock()

			if err != nil {
				return err
			}
			if current != speed {
				speed = current
				cycles.Reset(time.Second / time.Duration(speed))
			}

		case <-frames.C:
			if err := c.Frame(); err != nil {
				return err
			}
		}
	}
}

// Step runs a single cycle bypassing the pause state and renders the screen
// if it changed
func (c *Console) Step() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isBooted {
		return ErrNotBooted
	}
	if c.lastError != nil {
		return c.lastError
	}

	if err := c.cycle(); err != nil {
		return err
	}

	return c.renderIfChanged()
}

// Frame runs the 60 Hz part of the loop: while the console is running it ticks
// the timers and sounds the buzzer, and it renders the screen if it changed.
// Run calls it; frontends with their own loop may call it instead.
func (c *Console) Frame() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isBooted {
		return ErrNotBooted
	}

	c.runHooks(c.hooks.beforeFrame)

	running := !c.isPaused && c.lastError == nil
	if running {
		c.machine.TickTimers()
	}

	if running && c.machine.IsSoundTimerActive() {
		c.startBuzzer()
	} else {
		c.stopBuzzer()
	}

	if err := c.renderIfChanged(); err != nil {
		return err
	}

	c.frames++
	c.runHooks(c.hooks.afterFrame)

	return nil
}

func (c *Console) cycle() error {
	c.runHooks(c.hooks.beforeCycle)

	if err := c.executor.Cycle(c.machine); err != nil {
		c.fail(err)
		return err
	}
	c.cycles++

	c.runHooks(c.hooks.afterCycle)

	return nil
}

func (c *Console) renderIfChanged() error {
	if !c.machine.DisplayChanged() {
		return nil
	}

	if err := c.render(); err != nil {
		c.fail(err)
		return err
	}

	return nil
}

func (c *Console) render() error {
	return c.display.Render(c.machine.Display())
}

func (c *Console) fail(err error) {
	c.lastError = err
	c.stopBuzzer()
	for _, h := range c.hooks.onError {
		h(c.machine, err)
	}
}

func (c *Console) startBuzzer() {
	if !c.buzzing {
		c.buzzer.Play()
		c.buzzing = true
	}
}

func (c *Console) stopBuzzer() {
	if c.buzzing {
		c.buzzer.Stop()
		c.buzzing = false
	}
}
