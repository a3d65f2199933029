// Package host implements the host side of the servo link: sending
// commands and consuming the controller's telemetry, fault and
// heartbeat frames.
package host

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/servolink/pkg/framework"
	"github.com/robotalks/servolink/pkg/hal"
	"github.com/robotalks/servolink/pkg/link"
)

// FrameHandler receives decoded controller→host frames.
type FrameHandler interface {
	HandleFrame(link.Frame)
}

// HandleFrameFunc is the func form of FrameHandler.
type HandleFrameFunc func(link.Frame)

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(fr link.Frame) {
	f(fr)
}

// Telemetry is the last decoded telemetry sample.
type Telemetry struct {
	AngleRaw   int16     `json:"angle_raw"`
	LoopRateHz uint16    `json:"loop_rate_hz"`
	When       time.Time `json:"when"`
}

// Session owns one end of the link from the host. Run consumes the
// port; commands may be sent from any goroutine.
type Session struct {
	Port hal.Port

	reasm link.Reassembler

	lock      sync.RWMutex
	handler   FrameHandler
	lastSeen  time.Time
	telemetry Telemetry
	hasTele   bool
	fault     byte
}

// NewSession creates a session over an opened port.
func NewSession(port hal.Port) *Session {
	return &Session{Port: port}
}

// Run implements framework.Runnable, reading the port until the context
// is cancelled. The port is closed on exit either way.
func (s *Session) Run(ctx context.Context) error {
	return framework.RunWithContextCloser(ctx, s.Port, func() error {
		buf := make([]byte, link.BufferCap)
		for {
			n, err := s.Port.Read(buf)
			if err != nil {
				return err
			}
			if n == 0 {
				continue
			}
			s.Feed(buf[:n])
		}
	})
}

// Feed pushes received bytes through the reassembler and dispatches the
// resulting frames.
func (s *Session) Feed(b []byte) {
	s.reasm.Push(b)
	for _, f := range s.reasm.Drain() {
		s.handle(f)
	}
}

// SetHandler replaces the frame handler. Safe to call while Run is
// consuming the port; nil stops dispatching.
func (s *Session) SetHandler(h FrameHandler) {
	s.lock.Lock()
	s.handler = h
	s.lock.Unlock()
}

func (s *Session) handle(f link.Frame) {
	now := time.Now()
	s.lock.Lock()
	h := s.handler
	s.lastSeen = now
	switch f.Cmd {
	case link.CmdTelemetry:
		if len(f.Payload) >= 4 {
			s.telemetry = Telemetry{
				AngleRaw:   int16(binary.LittleEndian.Uint16(f.Payload[0:2])),
				LoopRateHz: binary.LittleEndian.Uint16(f.Payload[2:4]),
				When:       now,
			}
			s.hasTele = true
		}
	case link.CmdFault:
		if len(f.Payload) >= 1 {
			s.fault = f.Payload[0]
			glog.Warningf("controller fault %#02x", f.Payload[0])
		}
	}
	s.lock.Unlock()
	if h != nil {
		h.HandleFrame(f)
	}
}

// SetSteering commands the steering position.
func (s *Session) SetSteering(pos int16) error {
	var p [2]byte
	binary.LittleEndian.PutUint16(p[:], uint16(pos))
	return s.send(link.CmdSetSteering, p[:])
}

// SetGain commands the steering gain. Values above 100 are clamped by
// the controller.
func (s *Session) SetGain(gain uint8) error {
	return s.send(link.CmdSetGain, []byte{gain})
}

// SetEnable enables or disables the servo.
func (s *Session) SetEnable(enabled bool) error {
	var v byte
	if enabled {
		v = 1
	}
	return s.send(link.CmdSetEnable, []byte{v})
}

// Heartbeat refreshes the controller's liveness watchdog.
func (s *Session) Heartbeat() error {
	return s.send(link.CmdHeartbeat, nil)
}

func (s *Session) send(cmd byte, payload []byte) error {
	_, err := s.Port.Write(link.Encode(cmd, payload))
	return err
}

// RunKeepAlive sends heartbeats at the given interval so the
// controller's watchdog stays satisfied while the session is up.
func (s *Session) RunKeepAlive(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Heartbeat(); err != nil {
				return err
			}
		}
	}
}

// LastTelemetry returns the most recent telemetry sample, if any.
func (s *Session) LastTelemetry() (Telemetry, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.telemetry, s.hasTele
}

// LastFault returns the most recent fault code received.
func (s *Session) LastFault() byte {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.fault
}

// Alive reports whether any frame arrived within window.
func (s *Session) Alive(window time.Duration) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return !s.lastSeen.IsZero() && time.Since(s.lastSeen) <= window
}
