package gui

import (
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guslan/xip8vm/sound"
)

// toneLength is replayed for as long as the sound timer is active
const toneLength = time.Second

// Play implements console.Buzzer.
func (app *App) Play() {
	app.buzzing.Store(true)
}

// Stop implements console.Buzzer.
func (app *App) Stop() {
	app.buzzing.Store(false)
}

func (app *App) loadTone() {
	if !rl.IsAudioDeviceReady() {
		app.logger.Warn("No audio device, the buzzer is muted")
		return
	}

	data, err := sound.Tone(sound.DefaultFrequency, toneLength)
	if err != nil {
		app.logger.Error("Error creating the tone", slog.Any("error", err))
		return
	}

	wave := rl.LoadWaveFromMemory(".wav", data, int32(len(data)))
	defer rl.UnloadWave(wave)

	app.tone = rl.LoadSoundFromWave(wave)
	app.hasTone = true
}

func (app *App) unloadTone() {
	if app.hasTone {
		rl.UnloadSound(app.tone)
		app.hasTone = false
	}
}

func (app *App) updateSound() {
	if !app.hasTone {
		return
	}

	playing := rl.IsSoundPlaying(app.tone)
	if app.buzzing.Load() && !playing {
		rl.PlaySound(app.tone)
	} else if !app.buzzing.Load() && playing {
		rl.StopSound(app.tone)
	}
}
