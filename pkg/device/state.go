// Package device holds the actuation and fault state of the steering
// servo and the pure command/safety logic operating on it.
package device

import (
	"encoding/binary"
	"time"

	"github.com/robotalks/servolink/pkg/link"
)

// MaxGain is the upper bound the gain is clamped to.
const MaxGain = 100

// State is the controller's device state. It is pure state: hardware
// effects requested by a command or the watchdog are signalled to the
// caller, never performed here. Exactly one goroutine, the control loop,
// mutates it.
type State struct {
	Enabled     bool
	Commanded   int16
	Gain        uint8
	Fault       byte
	LastCommand time.Time

	minUs, maxUs int
}

// Apply applies one received command. Any frame that survived the
// checksum, recognized or not, refreshes the liveness clock. The
// returned flag asks the caller to put the actuator into its relaxed
// output (an explicit disable).
func (s *State) Apply(cmd byte, payload []byte, now time.Time) (relax bool) {
	s.LastCommand = now
	switch cmd {
	case link.CmdSetSteering:
		if len(payload) >= 2 {
			s.Commanded = int16(binary.LittleEndian.Uint16(payload))
		}
	case link.CmdSetGain:
		if len(payload) >= 1 {
			g := payload[0]
			if g > MaxGain {
				g = MaxGain
			}
			s.Gain = g
		}
	case link.CmdSetEnable:
		if len(payload) >= 1 {
			s.Enabled = payload[0] != 0
			relax = !s.Enabled
		}
	case link.CmdHeartbeat:
		// liveness refresh only
	default:
		// unrecognized commands are ignored but still count as liveness
	}
	return
}

// ActuatorMicros maps the commanded position through the gain onto a
// pulse width in microseconds, clamped to [MinPulseUs, MaxPulseUs].
// Gain 0 always yields the center pulse width; gain 100 passes the full
// deflection through. Integer arithmetic throughout, truncating, to stay
// bit-compatible with the controller firmware.
func (s *State) ActuatorMicros() uint32 {
	deflection := int32(s.Commanded) * int32(s.Gain) / 100
	span := int32(s.maxUs - s.minUs)
	us := (deflection+32768)*span/65535 + int32(s.minUs)
	if us < int32(s.minUs) {
		us = int32(s.minUs)
	} else if us > int32(s.maxUs) {
		us = int32(s.maxUs)
	}
	return uint32(us)
}

// EvaluateTimeout runs the liveness watchdog. When the link has been
// silent for longer than timeout while enabled, the state transitions to
// disabled with FaultSerialTimeout and the method reports true. Because
// disabling falsifies the guard, it reports true exactly once per
// timeout episode.
func (s *State) EvaluateTimeout(now time.Time, timeout time.Duration) bool {
	if s.Enabled && now.Sub(s.LastCommand) > timeout {
		s.Enabled = false
		s.Fault = link.FaultSerialTimeout
		return true
	}
	return false
}
