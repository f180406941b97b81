/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"os"

	xip8 "github.com/guslan/xip8vm"
	"github.com/guslan/xip8vm/config"
	"github.com/guslan/xip8vm/console"
	"github.com/guslan/xip8vm/disasm"
	"github.com/guslan/xip8vm/terminal"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

type optionFlags struct {
	config.Options

	input   string
	tty     string
	disasm  bool
	noCheck bool
}

func main() {
	ctx := app.Context()

	options := readArguments()
	logger := options.Logger()

	program, err := console.LoadFile(options.input)
	if err != nil {
		logger.Fatal(err.Error())
	}

	if options.disasm {
		if err := disasm.Listing(os.Stdout, program, xip8.ProgramStart); err != nil {
			logger.Fatal(err.Error())
		}
		return
	}

	state, err := run(ctx, options, program)
	switch {
	case err == nil, errors.Is(err, terminal.ErrQuit), errors.Is(err, context.Canceled):
		logger.Info("Emulation stopped")

	default:
		logger.Error("Emulation failed",
			log.Err(err),
			log.Hex("pc", state.Pc),
			log.Hex("i", state.I))
		os.Exit(1)
	}
}

func readArguments() optionFlags {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	options := optionFlags{Options: config.Default()}

	options.Register(flags)
	flags.StringVar(&options.tty, "tty", "/dev/tty", "terminal to read the keys from")
	flags.BoolVar(&options.disasm, "disasm", false, "print the disassembly of the program and exit")
	flags.BoolVar(&options.noCheck, "nocheck", false, "do not check the size of the terminal")

	err := flags.Parse(os.Args[1:])
	args := flags.Args()

	if err != nil || len(args) == 0 {
		fmt.Printf("usage: xip8 [options] <rom>\n\n")
		flags.PrintDefaults()
		os.Exit(1)
	}
	if err := options.Validate(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	options.input = args[0]

	return options
}

// run plays the program in the terminal until the user quits or the machine
// fails, and returns the last state of the machine
func run(ctx context.Context, options optionFlags, program []byte) (xip8.State, error) {
	if !options.noCheck {
		if err := terminal.CheckGeometry(os.Stdout); err != nil {
			return xip8.State{}, err
		}
	}

	tty, err := terminal.OpenTTY(options.tty)
	if err != nil {
		return xip8.State{}, err
	}
	defer tty.Close()

	c := console.New(
		xip8.NewMachine(rand.Reader),
		options.Quirks,
		terminal.NewDisplay(os.Stdout),
		terminal.NewBell(os.Stdout),
		console.WithSpeed(options.Speed),
	)
	if err := c.LoadProgram(program); err != nil {
		return xip8.State{}, err
	}
	if err := c.Boot(); err != nil {
		return xip8.State{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 2)
	go func() {
		errs <- terminal.NewKeyboard(tty, c).Run(ctx)
	}()
	go func() {
		errs <- c.Run(ctx)
	}()

	// whichever ends first stops the other
	err = <-errs
	cancel()
	if other := <-errs; err == nil {
		err = other
	}

	return c.Snapshot(), err
}
