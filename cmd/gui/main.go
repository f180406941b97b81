package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/guslan/xip8vm/config"
	"github.com/guslan/xip8vm/gui"
)

func main() {
	options := config.Default()
	options.Register(flag.CommandLine)
	autostart := flag.Bool("start", false, "Starts the console automatically if there is a program loaded (defaults = false).")

	flag.Parse()

	if err := options.Validate(); err != nil {
		slog.Error("Invalid options", slog.Any("error", err))
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: options.SlogLevel()})))

	app := gui.NewApp(func(cfg *gui.AppConfig) {
		cfg.Quirks = options.Quirks
		cfg.Speed = options.Speed
		cfg.Foreground = options.Foreground
		cfg.Background = options.Background
		cfg.UseDebugger = options.Debug
	})

	if flag.NArg() > 0 {
		app.Load(flag.Arg(0))
	}

	app.Run(*autostart)
}
