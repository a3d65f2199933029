// Package hal abstracts the hardware touched by the servo controller:
// the PWM actuator, the angle feedback sensor, the serial byte stream
// and the monotonic clock. The control core depends only on the
// interfaces here, never on their internals.
package hal
