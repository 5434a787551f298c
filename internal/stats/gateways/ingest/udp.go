// Package ingest receives live engine events over UDP, one JSON event per
// datagram, and applies them to an eventlog.Sink.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/haukened/rr-stats/internal/stats/common/log"
	"github.com/haukened/rr-stats/internal/stats/gateways/eventlog"
)

// maxDatagram bounds a single event.
const maxDatagram = 64 * 1024

// UDPListener reads event datagrams and dispatches them in arrival order.
type UDPListener struct {
	addr   string
	conn   *net.UDPConn
	logger log.Logger

	mu      sync.RWMutex
	running bool
	done    chan struct{}
}

// NewUDPListener creates a listener for addr.
func NewUDPListener(addr string, logger log.Logger) *UDPListener {
	return &UDPListener{addr: addr, logger: logger}
}

// Start binds the socket and starts the read loop.
func (l *UDPListener) Start(ctx context.Context, sink eventlog.Sink) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return fmt.Errorf("UDP listener already running")
	}
	udpAddr, err := net.ResolveUDPAddr("udp", l.addr)
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address %s: %w", l.addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("failed to bind UDP socket on %s: %w", l.addr, err)
	}
	l.conn = conn
	l.running = true
	l.done = make(chan struct{})

	l.logger.Info(map[string]any{"address": conn.LocalAddr().String()}, "Event ingest started")

	go func() {
		<-ctx.Done()
		_ = l.Stop()
	}()
	go l.readLoop(sink)
	return nil
}

// Stop closes the socket and waits for the read loop to exit.
func (l *UDPListener) Stop() error {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return nil
	}
	l.running = false
	err := l.conn.Close()
	done := l.done
	l.mu.Unlock()

	<-done
	l.logger.Info(map[string]any{"address": l.addr}, "Event ingest stopped")
	return err
}

// Address returns the bound address, or the configured one before Start.
func (l *UDPListener) Address() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.conn != nil {
		return l.conn.LocalAddr().String()
	}
	return l.addr
}

func (l *UDPListener) readLoop(sink eventlog.Sink) {
	defer close(l.done)
	buf := make([]byte, maxDatagram)
	for {
		n, from, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			l.mu.RLock()
			running := l.running
			l.mu.RUnlock()
			if !running {
				return
			}
			l.logger.Warn(map[string]any{"error": err.Error()}, "Failed to read event datagram")
			continue
		}
		l.handle(buf[:n], from, sink)
	}
}

// handle applies a datagram inline; events for one query must not be
// reordered.
func (l *UDPListener) handle(data []byte, from *net.UDPAddr, sink eventlog.Sink) {
	var ev eventlog.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		l.logger.Warn(map[string]any{"from": from.String(), "size": len(data), "error": err.Error()}, "Failed to decode event")
		return
	}
	if err := eventlog.Dispatch(ev, sink); err != nil {
		l.logger.Warn(map[string]any{"from": from.String(), "event": ev.Kind, "error": err.Error()}, "Event rejected")
	}
}
