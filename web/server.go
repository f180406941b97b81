// Package web serves the machine over HTTP: control endpoints, a websocket
// display and keypad, and an optional live debugger.
package web

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/gorilla/websocket"
	xip8 "github.com/guslan/xip8vm"
	"github.com/guslan/xip8vm/console"
)

type Server struct {
	console  *console.Console
	display  *socketDisplay
	buzzer   *console.DummyBuzzer
	debugger *HttpDebugger

	config ServerConfig
	logger *slog.Logger

	// resumed wakes the console loop after a reset clears an error
	resumed chan struct{}
}

type ServerConfig struct {
	Quirks xip8.Quirks
	// Speed in cycles per second
	Speed       uint
	UseDebugger bool
	// StaticDir holds the web page, served under /
	StaticDir string
	// StatsAddr enables the runtime statistics page on that address
	StatsAddr string
	Random    io.Reader
	Logger    *slog.Logger
}
type ServerConfigCb func(config *ServerConfig)

func NewServer(configs ...ServerConfigCb) *Server {
	config := ServerConfig{
		Quirks:      xip8.DefaultQuirks,
		Speed:       console.DefaultSpeed,
		UseDebugger: false,
		StaticDir:   "./static",
		StatsAddr:   "",
		Random:      rand.Reader,
		Logger:      slog.Default(),
	}
	for _, cb := range configs {
		cb(&config)
	}

	s := &Server{
		display: &socketDisplay{logger: config.Logger},
		buzzer:  console.NewDummyBuzzer(),

		config:  config,
		logger:  config.Logger,
		resumed: make(chan struct{}, 1),
	}

	// the page drives the execution: the console waits for /start or /step
	s.console = console.New(
		xip8.NewMachine(config.Random),
		config.Quirks,
		s.display,
		s.buzzer,
		console.WithSpeed(config.Speed),
		console.Paused(),
	)
	if config.UseDebugger {
		s.debugger = NewHttpDebugger(s.console, config.Logger)
	}

	return s
}

func (s *Server) Console() *console.Console {
	return s.console
}

// LoadProgram loads the program into memory and sets the PC to the start-of-program address
func (s *Server) LoadProgram(program []byte) error {
	if err := s.console.LoadProgram(program); err != nil {
		return err
	}
	s.resume()

	return nil
}

func (s *Server) resume() {
	select {
	case s.resumed <- struct{}{}:
	default:
	}
}

var upgrader = websocket.Upgrader{} // use default options

// Handler routes the endpoints of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	mux.HandleFunc("/start", s.handleStart)
	mux.HandleFunc("/stop", s.handleStop)
	mux.HandleFunc("/reset", s.handleReset)
	mux.HandleFunc("/step", s.handleStep)
	mux.HandleFunc("/display", s.handleDisplay)
	mux.HandleFunc("/keys", s.handleKeys)
	if s.debugger != nil {
		mux.HandleFunc("/debugger", s.debugger.handle)
	}

	return mux
}

func setHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Type")

	w.Header().Set("Cache-Control", "no-cache")
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	s.logger.Info("Starting")
	s.console.Start()
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	s.logger.Info("Stopping")
	s.console.Stop()
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	s.logger.Info("Stopping and resetting")
	s.console.Stop()
	if err := s.console.Reset(); err != nil {
		s.logger.Error("Resetting", slog.Any("error", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.resume()
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	s.logger.Info("Single cycle")
	if err := s.console.Step(); err != nil {
		s.logger.Error("Stepping", slog.Any("error", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleKeys receives [key, pressed] pairs
func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	s.logger.Info("Connecting to keypad")
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			s.logger.Info("Disconnecting from keypad")
			return
		}
		if len(msg) != 2 {
			s.logger.Warn("Malformed key message", slog.Int("length", len(msg)))
			continue
		}
		if err := s.console.SetKey(msg[0], msg[1] != 0); err != nil {
			s.logger.Warn("Invalid key", slog.Int("key", int(msg[0])), slog.Any("error", err))
		}
	}
}

// Listen boots the console and serves on addr until the context ends.
// A machine error halts the console until the next reset or program load.
func (s *Server) Listen(ctx context.Context, addr string) error {
	if err := s.console.Boot(); err != nil {
		return err
	}

	if s.config.StatsAddr != "" {
		s.startStats()
	}

	go s.runConsole(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("Listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) runConsole(ctx context.Context) {
	for {
		err := s.console.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("Console halted", slog.Any("error", err))

		select {
		case <-ctx.Done():
			return
		case <-s.resumed:
		}
	}
}

func (s *Server) startStats() {
	go func(addr string) {
		viewer.SetConfiguration(viewer.WithAddr(addr))
		mgr := statsview.New()
		mgr.Start()
	}(s.config.StatsAddr)

	s.logger.Info("Runtime statistics", slog.String("addr", "http://"+s.config.StatsAddr+"/debug/statsview"))
}
