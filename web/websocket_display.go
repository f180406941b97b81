package web

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	xip8 "github.com/guslan/xip8vm"
)

const writeWait = time.Second

// socketDisplay streams every rendered screen to the connected client
type socketDisplay struct {
	mu     sync.Mutex
	socket *websocket.Conn
	logger *slog.Logger
}

func (d *socketDisplay) setWs(conn *websocket.Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.socket != nil {
		d.socket.Close()
	}
	d.socket = conn
}

func (d *socketDisplay) unsetWs(conn *websocket.Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.socket == conn {
		d.socket = nil
	}
}

// Boot implements console.Display.
func (d *socketDisplay) Boot() error {
	return nil
}

// Render implements console.Display.
// A client that can not keep up is dropped instead of halting the console.
func (d *socketDisplay) Render(screen xip8.Screen) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.socket == nil {
		return nil
	}

	if err := writeBinary(d.socket, screen); err != nil {
		d.logger.Warn("Dropping display client", slog.Any("error", err))
		d.socket.Close()
		d.socket = nil
	}

	return nil
}

func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	s.logger.Info("Connecting to display")
	s.display.setWs(conn)
	defer s.display.unsetWs(conn)

	// the client gets the current screen right away, later frames come from Render
	if err := s.display.Render(s.console.Display()); err != nil {
		return
	}

	waitClose(conn)
	s.logger.Info("Disconnecting from display")
}

func writeBinary(conn *websocket.Conn, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return conn.WriteMessage(websocket.BinaryMessage, data)
}

// waitClose reads and discards messages until the client goes away
func waitClose(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
