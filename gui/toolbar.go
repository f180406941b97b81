package gui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guslan/xip8vm/console"
)

const (
	ToolbarGap       = 5
	ToolbarBtnWidth  = 80
	ToolbarBtnHeight = 40
	ToolbarHeight    = 50
	ToolbarBtnOffset = ToolbarBtnWidth + ToolbarGap

	// speed controls, anchored to the right edge
	speedWidth = 150

	MessageBarGap      = 5
	MessageBarHeigh    = 30
	MessageBarFontSize = 16
)

// Slider bounds, as speed factors
const (
	MinSpeed = float32(console.MinSpeed/5) - 1
	MaxSpeed = float32(console.MaxSpeed/5) - 1
)

type MessageType byte

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

var MessageBarBgColor = rl.DarkGray

var messageColors = map[MessageType]rl.Color{
	MessageInfo:    rl.SkyBlue,
	MessageSuccess: rl.Lime,
	MessageWarning: rl.Gold,
	MessageError:   rl.Red,
}

// toolbarSlot is the bounds of the n-th element from the left
func toolbarSlot(n int) rl.Rectangle {
	return rl.NewRectangle(float32(ToolbarGap+ToolbarBtnOffset*n), ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight)
}

func statusText(running bool, err error) string {
	switch {
	case err != nil:
		return "Halted"
	case running:
		return "Running"
	default:
		return "Stopped"
	}
}

func (app *App) drawToolbar() {
	rl.DrawRectangle(0, 0, int32(rl.GetScreenWidth()), ToolbarHeight, rl.Gray)

	app.startBtn = gui.Button(toolbarSlot(0), gui.IconText(gui.ICON_PLAYER_PLAY, "Start"))
	app.stopBtn = gui.Button(toolbarSlot(1), gui.IconText(gui.ICON_PLAYER_STOP, "Stop"))
	app.stepBtn = gui.Button(toolbarSlot(2), gui.IconText(gui.ICON_PLAYER_NEXT, "Step"))
	app.restBtn = gui.Button(toolbarSlot(3), gui.IconText(gui.ICON_ROTATE, "Reset"))

	gui.Label(toolbarSlot(4), statusText(app.console.IsRunning(), app.console.Err()))

	app.drawSpeedControls(float32(app.winW - ToolbarGap - speedWidth))
}

func (app *App) drawSpeedControls(left float32) {
	gui.Label(
		rl.NewRectangle(left, 26, 50, 20),
		fmt.Sprintf("%d Hz", speedFactorToHz(app.speedFactor)),
	)

	// back to the configured speed
	if gui.Button(rl.NewRectangle(left+50, 26, 50, 20), gui.IconText(gui.ICON_ROTATE, "")) {
		app.speedFactor = hzToSpeedFactor(app.config.Speed)
	}

	app.speedFactor = gui.Slider(
		rl.NewRectangle(left, ToolbarGap, 100, 20),
		fmt.Sprintf("%d Hz", console.MinSpeed), fmt.Sprintf("%d Hz", console.MaxSpeed),
		app.speedFactor,
		MinSpeed,
		MaxSpeed,
	)
}

func (app *App) showMessage(msg string, mType MessageType) {
	app.msgMu.Lock()
	defer app.msgMu.Unlock()

	app.lastMessage = msg
	if c, ok := messageColors[mType]; ok {
		app.lastMessageColor = c
	}
}

func (app *App) message() (string, rl.Color) {
	app.msgMu.Lock()
	defer app.msgMu.Unlock()

	return app.lastMessage, app.lastMessageColor
}

func (app *App) drawMessageBar() {
	top := int32(app.winH) - MessageBarHeigh
	rl.DrawRectangle(0, top, int32(app.winW), MessageBarHeigh, MessageBarBgColor)

	msg, c := app.message()
	rl.DrawText(msg, MessageBarGap, top+MessageBarGap, MessageBarFontSize, c)
}
