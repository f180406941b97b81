package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	xip8 "github.com/guslan/xip8vm"
	"github.com/guslan/xip8vm/console"
	"github.com/guslan/xip8vm/disasm"
)

// EventSize is the length of the binary debugger event
const EventSize = 2 + 2 + xip8.RegisterCount + 2 + 1 + 2*xip8.StackSize + 1 + 1 + 2

// event is a snapshot of the machine after a cycle
type event struct {
	// opCode that ran in the cycle, 0 before the first one
	opCode uint16
	// next is the opCode at the new PC
	next  uint16
	state xip8.State
}

type HttpDebugger struct {
	console *console.Console
	logger  *slog.Logger

	// SendEvery cycles an event is published
	SendEvery uint

	mu            sync.Mutex
	currentOpCode uint16
	cycles        uint

	// send keeps only the latest event, a slow client skips cycles
	send chan event
}

// NewHttpDebugger creates a new debugger and registers its hooks
func NewHttpDebugger(c *console.Console, logger *slog.Logger) *HttpDebugger {
	d := &HttpDebugger{
		console:   c,
		logger:    logger,
		SendEvery: 1,
		send:      make(chan event, 1),
	}

	c.AddBeforeCycleHook(d.beforeCycle)
	c.AddAfterCycleHook(d.afterCycle)
	c.AddErrorHook(d.onError)

	return d
}

func readOpCode(m *xip8.Machine, addr uint16) uint16 {
	hi, err := m.Read(addr)
	if err != nil {
		return 0
	}
	lo, err := m.Read(addr + 1)
	if err != nil {
		return 0
	}

	return uint16(hi)<<8 | uint16(lo)
}

func (d *HttpDebugger) beforeCycle(m *xip8.Machine) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.currentOpCode = readOpCode(m, m.PC())
}

func (d *HttpDebugger) afterCycle(m *xip8.Machine) {
	d.mu.Lock()
	d.cycles++
	publish := d.SendEvery <= 1 || d.cycles%d.SendEvery == 0
	d.mu.Unlock()

	if publish {
		d.publish(m)
	}
}

func (d *HttpDebugger) onError(m *xip8.Machine, err error) {
	d.logger.Error("Machine halted", slog.Any("error", err))
	d.publish(m)
}

func (d *HttpDebugger) snapshot(m *xip8.Machine) event {
	d.mu.Lock()
	defer d.mu.Unlock()

	return event{
		opCode: d.currentOpCode,
		next:   readOpCode(m, m.PC()),
		state:  m.State(),
	}
}

func (d *HttpDebugger) publish(m *xip8.Machine) {
	ev := d.snapshot(m)

	for {
		select {
		case d.send <- ev:
			return
		default:
		}

		// drop the stale event
		select {
		case <-d.send:
		default:
		}
	}
}

func (d *HttpDebugger) handle(w http.ResponseWriter, r *http.Request) {
	d.logger.Info("Connecting to debugger")
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.Error("upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		waitClose(conn)
		close(closed)
	}()

	var ev event
	d.console.Inspect(func(m *xip8.Machine) {
		ev = d.snapshot(m)
	})

	d.logger.Info("Listening for events")
	for {
		if err := d.write(conn, ev); err != nil {
			d.logger.Error("Error writing debugger message", slog.Any("error", err))
			return
		}

		select {
		case ev = <-d.send:
		case <-closed:
			d.logger.Info("Disconnecting from debugger")
			return
		case <-r.Context().Done():
			return
		}
	}
}

// write sends the binary event followed by the disassembly of the next instruction
func (d *HttpDebugger) write(conn *websocket.Conn, ev event) error {
	if err := writeBinary(conn, formatAsEvent(ev)); err != nil {
		return err
	}

	mnemonic, err := disasm.Mnemonic(ev.next)
	if err != nil {
		mnemonic = fmt.Sprintf("DW $%04X", ev.next)
	}
	text := fmt.Sprintf("%03X: %s", ev.state.Pc, mnemonic)

	return conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func formatAsEvent(ev event) []byte {
	buf := make([]byte, 0, EventSize)

	buf = append(buf, byte(ev.opCode>>8), byte(ev.opCode))
	buf = append(buf, byte(ev.state.Pc>>8), byte(ev.state.Pc))
	buf = append(buf, ev.state.V[:]...)
	buf = append(buf, byte(ev.state.I>>8), byte(ev.state.I))
	buf = append(buf, ev.state.Sp)
	for _, addr := range ev.state.Stack {
		buf = append(buf, byte(addr>>8), byte(addr))
	}
	buf = append(buf, ev.state.Dt, ev.state.St)
	buf = append(buf, xip8.DisplayWidth, xip8.DisplayHeight)

	return buf
}
