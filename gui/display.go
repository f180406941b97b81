package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	xip8 "github.com/guslan/xip8vm"
	"github.com/guslan/xip8vm/config"
)

func toRlColor(c config.Color) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}

// Boot implements console.Display and console.Buzzer.
func (app *App) Boot() error {
	return nil
}

// Render implements console.Display.
// It only keeps the screen, the UI loop draws it.
func (app *App) Render(screen xip8.Screen) error {
	px := screen.Unpack()

	app.screenMu.Lock()
	app.screen = px
	app.screenMu.Unlock()

	return nil
}

func (app *App) drawScreen() {
	app.screenMu.Lock()
	px := app.screen
	app.screenMu.Unlock()

	fg := toRlColor(app.config.Foreground)
	bg := toRlColor(app.config.Background)

	for y := 0; y < xip8.DisplayHeight; y++ {
		for x := 0; x < xip8.DisplayWidth; x++ {
			color := bg
			if px[y*xip8.DisplayWidth+x] > 0 {
				color = fg
			}

			rl.DrawRectangle(
				ScreenPositionX+ScreenPixelSize*int32(x),
				ScreenPositionY+ScreenPixelSize*int32(y),
				ScreenPixelSize,
				ScreenPixelSize,
				color)
		}
	}
}
