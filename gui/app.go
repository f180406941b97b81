package gui

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	rl "github.com/gen2brain/raylib-go/raylib"
	xip8 "github.com/guslan/xip8vm"
	"github.com/guslan/xip8vm/config"
	"github.com/guslan/xip8vm/console"
	"github.com/guslan/xip8vm/disasm"
)

const (
	ScreenPixelSize = 15
	ScreenPositionX = 0
	ScreenPositionY = ToolbarHeight + 1
)

type AppConfig struct {
	Quirks xip8.Quirks
	// Speed in Hz
	Speed uint

	Foreground config.Color
	Background config.Color
	Layout     xip8.KeyboardLayout

	// UseDebugger logs every instruction at the debug level
	UseDebugger bool

	Random io.Reader
	Logger *slog.Logger
}
type AppConfigCb func(config *AppConfig)

type App struct {
	console *console.Console
	config  AppConfig
	logger  *slog.Logger

	// Unpacked screen representation, written by the console loop
	screenMu sync.Mutex
	screen   []byte

	// Set by the console loop, the sound is played from the UI loop
	buzzing atomic.Bool
	tone    rl.Sound
	hasTone bool

	// Speed factor
	// Speed in Hz is speedFactor+1 * 5
	speedFactor float32

	keyboardLookupMap map[int32]byte
	keys              xip8.KeyboardState

	// Window width and height
	winW, winH int

	// Toolbar
	startBtn, stopBtn, stepBtn, restBtn bool

	loadedProgramPath string

	msgMu            sync.Mutex
	lastMessage      string
	lastMessageColor rl.Color

	// resumed wakes the console loop after an error
	resumed chan struct{}
}

func speedFactorToHz(s float32) uint {
	return uint((s + 1) * 5)
}

func hzToSpeedFactor(hz uint) float32 {
	return float32(hz)/5 - 1
}

func NewApp(configs ...AppConfigCb) *App {
	defaults := config.Default()
	cfg := AppConfig{
		Quirks:      defaults.Quirks,
		Speed:       defaults.Speed,
		Foreground:  defaults.Foreground,
		Background:  defaults.Background,
		Layout:      xip8.DefaultKeyboardLayout,
		UseDebugger: false,
		Random:      rand.Reader,
		Logger:      slog.Default(),
	}
	for _, cb := range configs {
		cb(&cfg)
	}

	app := &App{
		config:            cfg,
		logger:            cfg.Logger,
		screen:            make([]byte, xip8.DisplayWidth*xip8.DisplayHeight),
		speedFactor:       hzToSpeedFactor(cfg.Speed),
		keyboardLookupMap: keyboardLookupMap(cfg.Layout),
		lastMessageColor:  messageColors[MessageInfo],
		resumed:           make(chan struct{}, 1),
	}

	app.console = console.New(
		xip8.NewMachine(cfg.Random),
		cfg.Quirks,
		app,
		app,
		console.WithSpeed(cfg.Speed),
		console.Paused(),
	)
	app.console.AddErrorHook(func(m *xip8.Machine, err error) {
		app.showMessage(err.Error(), MessageError)
	})
	if cfg.UseDebugger {
		app.console.AddBeforeCycleHook(app.trace)
	}

	app.updateWindowSize()

	return app
}

// keyboardLookupMap maps raylib key codes to keypad keys.
// raylib uses the ASCII code of the uppercase character for letters and digits.
func keyboardLookupMap(layout xip8.KeyboardLayout) map[int32]byte {
	m := make(map[int32]byte, len(layout))
	for r, k := range layout {
		m[int32(unicode.ToUpper(r))] = k
	}

	return m
}

// Run boots the console and runs the UI loop until the window is closed
func (app *App) Run(autostart bool) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.console.Boot(); err != nil {
		app.logger.Error("Error booting the console", slog.Any("error", err))
		return
	}
	if autostart && app.hasProgramLoaded() {
		app.console.Start()
	} else {
		app.console.Stop()
	}

	app.logger.Info("starting CPU loop")
	go app.runConsole(ctx)

	rl.InitWindow(int32(app.winW), int32(app.winH), "xip8")
	defer rl.CloseWindow()

	rl.InitAudioDevice()
	defer rl.CloseAudioDevice()
	app.loadTone()
	defer app.unloadTone()

	rl.SetTargetFPS(60)
	for !rl.WindowShouldClose() {
		rl.BeginDrawing()

		rl.ClearBackground(rl.Black)

		app.handleFileLoad()
		app.handleActions()
		app.handleKeyPress()
		app.updateCpuSpeed()
		app.updateSound()

		app.drawMessageBar()
		app.drawScreen()
		app.drawToolbar()

		rl.EndDrawing()
	}
}

func (app *App) runConsole(ctx context.Context) {
	for {
		err := app.console.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		app.logger.Error("Console halted", slog.Any("error", err))

		select {
		case <-ctx.Done():
			return
		case <-app.resumed:
		}
	}
}

func (app *App) resume() {
	select {
	case app.resumed <- struct{}{}:
	default:
	}
}

func (app *App) trace(m *xip8.Machine) {
	hi, _ := m.Read(m.PC())
	lo, _ := m.Read(m.PC() + 1)
	opCode := uint16(hi)<<8 | uint16(lo)

	mnemonic, err := disasm.Mnemonic(opCode)
	if err != nil {
		mnemonic = fmt.Sprintf("DW $%04X", opCode)
	}
	app.logger.Debug("Cycle", slog.String("pc", fmt.Sprintf("%03X", m.PC())), slog.String("instruction", mnemonic))
}

// Load reads a program and starts it
func (app *App) Load(path string) {
	program, err := console.LoadFile(path)
	if err != nil {
		app.logger.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
		return
	}

	if err = app.console.LoadProgram(program); err != nil {
		app.logger.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
		return
	}
	app.resume()

	app.loadedProgramPath = path
	app.logger.Info("Program loaded", slog.String("path", path))
	app.showMessage(fmt.Sprintf("Program '%s' loaded", app.loadedProgramPath), MessageInfo)

	app.console.Start()
}

func (app *App) updateWindowSize() {
	app.winW = xip8.DisplayWidth * ScreenPixelSize
	app.winH = xip8.DisplayHeight*ScreenPixelSize + ToolbarHeight + MessageBarHeigh
	app.logger.Info("Updating window size", slog.Int("width", app.winW), slog.Int("height", app.winH))
}

func (app *App) handleFileLoad() {
	if rl.IsFileDropped() {
		files := rl.LoadDroppedFiles()
		defer rl.UnloadDroppedFiles()

		app.logger.Info("Files were dropped", "files", strings.Join(files, ","))
		if len(files) > 0 {
			app.Load(files[0])
		}
	}
}

func (app *App) hasProgramLoaded() bool {
	return len(app.loadedProgramPath) > 0
}

func (app *App) handleActions() {
	if app.startBtn {
		if app.hasProgramLoaded() {
			app.console.Start()
			app.logger.Info("Starting the console")
		} else {
			app.showMessage("There is no program loaded", MessageError)
		}
	}
	if app.stopBtn {
		app.console.Stop()
		app.logger.Info("Stopping the console")
	}
	if app.restBtn {
		if err := app.console.Reset(); err != nil {
			app.showMessage(err.Error(), MessageError)
		} else {
			app.resume()
			app.showMessage("Program restarted", MessageSuccess)
		}
		app.logger.Info("Resetting the program to the beginning")
	}
	if app.stepBtn {
		app.console.Stop()
		if err := app.console.Step(); err != nil {
			app.showMessage(err.Error(), MessageError)
		}
		app.logger.Info("Running a single cycle")
	}
}

func (app *App) handleKeyPress() {
	for scanCode, key := range app.keyboardLookupMap {
		down := rl.IsKeyDown(scanCode)
		if down == app.keys[key] {
			continue
		}
		app.keys[key] = down
		if err := app.console.SetKey(key, down); err != nil {
			app.logger.Warn("Invalid key", slog.Int("key", int(key)), slog.Any("error", err))
		}
	}
}

func (app *App) updateCpuSpeed() {
	app.console.SetSpeedInHz(speedFactorToHz(app.speedFactor))
}
