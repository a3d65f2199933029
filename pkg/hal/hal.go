package hal

import (
	"io"
	"time"
)

// Actuator drives the servo output signal.
type Actuator interface {
	// WritePulseWidth sets the drive pulse width in microseconds.
	WritePulseWidth(us uint32) error
	// Disable stops the drive signal entirely, relaxing the servo.
	Disable() error
}

// AngleSensor samples the raw servo angle feedback.
type AngleSensor interface {
	Read() (int16, error)
}

// Port is the byte stream to the peer. The controller side opens it for
// polled I/O: a Read with no bytes pending returns n == 0 immediately
// instead of blocking.
type Port interface {
	io.ReadWriter
	io.Closer
}

// Clock provides monotonic time and pacing for the control loop.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock implements Clock with the process clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// Sleep implements Clock.
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }
