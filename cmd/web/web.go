/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/guslan/xip8vm/config"
	"github.com/guslan/xip8vm/console"
	"github.com/guslan/xip8vm/web"
	"github.com/retroenv/retrogolib/app"
)

func main() {
	options := config.Default()
	options.Register(flag.CommandLine)
	port := flag.Int("port", 9999, "The port of the server")
	static := flag.String("static", "./static", "The directory of the web page")
	stats := flag.String("stats", "", "Address of the runtime statistics page, e.g. localhost:12600 (disabled when empty)")
	debugger := flag.Bool("debugger", false, "Stream the state of the machine on /debugger")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatalln("must provide the path to a rom as an argument")
	}
	if err := options.Validate(); err != nil {
		log.Fatalln(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: options.SlogLevel()}))

	program, err := console.LoadFile(flag.Arg(0))
	if err != nil {
		log.Fatalln(err)
	}

	server := web.NewServer(func(cfg *web.ServerConfig) {
		cfg.Quirks = options.Quirks
		cfg.Speed = options.Speed
		cfg.UseDebugger = *debugger
		cfg.StaticDir = *static
		cfg.StatsAddr = *stats
		cfg.Logger = logger
	})
	if err := server.LoadProgram(program); err != nil {
		log.Fatalln(err)
	}

	if err := server.Listen(app.Context(), fmt.Sprintf(":%d", *port)); err != nil {
		log.Fatalln(err)
	}
}
