package control

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/servolink/pkg/device"
	"github.com/robotalks/servolink/pkg/hal"
	"github.com/robotalks/servolink/pkg/link"
)

type loopFixture struct {
	loop     *Loop
	state    *device.State
	port     *hal.MockPort
	actuator *hal.MockActuator
	sensor   *hal.MockAngleSensor
	clock    *hal.MockClock
}

func newLoopFixture(t0 time.Time) *loopFixture {
	f := &loopFixture{
		state:    device.NewConfig().NewState(),
		port:     &hal.MockPort{},
		actuator: &hal.MockActuator{},
		sensor:   &hal.MockAngleSensor{},
		clock:    &hal.MockClock{Current: t0},
	}
	f.loop = NewConfig().NewLoop(f.state, f.port, f.actuator, f.sensor, f.clock)
	f.state.LastCommand = t0
	f.loop.lastTelemetry = t0
	f.loop.lastHeartbeat = t0
	f.loop.rateWindow = t0
	return f
}

// step feeds inbound bytes and runs one iteration at the clock's time.
func (f *loopFixture) step(inbound []byte) {
	f.port.ReadData = append(f.port.ReadData, inbound...)
	f.loop.iterate(f.clock.Now())
}

// sentFrames decodes everything the loop wrote to the port. The loop's
// own output is always well-formed, so frames decode back to back.
func (f *loopFixture) sentFrames(t *testing.T) []link.Frame {
	t.Helper()
	var frames []link.Frame
	b := f.port.WrittenData
	for len(b) > 0 {
		fr, n, err := link.Decode(b)
		require.NoError(t, err)
		frames = append(frames, fr)
		b = b[n:]
	}
	return frames
}

func framesByCmd(frames []link.Frame, cmd byte) []link.Frame {
	var out []link.Frame
	for _, f := range frames {
		if f.Cmd == cmd {
			out = append(out, f)
		}
	}
	return out
}

func TestLoopAppliesCommandsInArrivalOrder(t *testing.T) {
	t0 := time.Unix(1000, 0)
	f := newLoopFixture(t0)

	f.step(append(link.Encode(link.CmdSetSteering, []byte{0xF4, 0x01}), link.Encode(link.CmdSetGain, []byte{80})...))
	require.Equal(t, int16(500), f.state.Commanded)
	require.Equal(t, uint8(80), f.state.Gain)
	require.Equal(t, t0, f.state.LastCommand)

	// a later heartbeat refreshes liveness without touching the rest
	f.clock.Advance(40 * time.Millisecond)
	f.step(link.Encode(link.CmdHeartbeat, nil))
	require.Equal(t, t0.Add(40*time.Millisecond), f.state.LastCommand)
	require.Equal(t, int16(500), f.state.Commanded)
	require.Equal(t, link.FaultNone, f.state.Fault)
}

func TestLoopDrivesActuatorWhenEnabled(t *testing.T) {
	f := newLoopFixture(time.Unix(1000, 0))

	f.step(link.Encode(link.CmdSetSteering, []byte{0xFF, 0x7F}))
	require.Empty(t, f.actuator.Pulses, "disabled servo must not be driven")

	f.step(append(link.Encode(link.CmdSetEnable, []byte{1}), link.Encode(link.CmdSetGain, []byte{100})...))
	require.Equal(t, []uint32{2500}, f.actuator.Pulses)
}

func TestLoopDisableRelaxesImmediately(t *testing.T) {
	f := newLoopFixture(time.Unix(1000, 0))
	f.step(link.Encode(link.CmdSetEnable, []byte{1}))
	require.Zero(t, f.actuator.Disables)

	f.step(link.Encode(link.CmdSetEnable, []byte{0}))
	require.Equal(t, 1, f.actuator.Disables)
	// and the actuator stays untouched from then on
	pulses := len(f.actuator.Pulses)
	f.clock.Advance(20 * time.Millisecond)
	f.step(nil)
	require.Len(t, f.actuator.Pulses, pulses)
}

func TestLoopTimeoutFaultFiresOnce(t *testing.T) {
	t0 := time.Unix(1000, 0)
	f := newLoopFixture(t0)
	f.step(link.Encode(link.CmdSetEnable, []byte{1}))

	// iterate for 3s without any inbound command
	for i := 0; i < 150; i++ {
		f.clock.Advance(20 * time.Millisecond)
		f.step(nil)
	}
	require.False(t, f.state.Enabled)
	require.Equal(t, link.FaultSerialTimeout, f.state.Fault)
	require.Equal(t, 1, f.actuator.Disables)

	faults := framesByCmd(f.sentFrames(t), link.CmdFault)
	require.Len(t, faults, 1)
	require.Equal(t, []byte{link.FaultSerialTimeout}, faults[0].Payload)
}

func TestLoopSamplesAngleWhileDisabled(t *testing.T) {
	t0 := time.Unix(1000, 0)
	f := newLoopFixture(t0)
	f.sensor.Samples = []int16{-123}

	f.clock.Advance(f.loop.Config.TelemetryInterval)
	f.step(nil)

	tele := framesByCmd(f.sentFrames(t), link.CmdTelemetry)
	require.Len(t, tele, 1)
	require.Equal(t, []byte{0x85, 0xFF, 0x00, 0x00}, tele[0].Payload) // -123 LE, rate 0
}

func TestLoopTelemetryAndHeartbeatPacing(t *testing.T) {
	t0 := time.Unix(1000, 0)
	f := newLoopFixture(t0)

	// one second of 20ms iterations
	for i := 0; i < 50; i++ {
		f.clock.Advance(20 * time.Millisecond)
		f.step(nil)
	}
	frames := f.sentFrames(t)
	require.Len(t, framesByCmd(frames, link.CmdTelemetry), 50)
	require.Len(t, framesByCmd(frames, link.CmdHeartbeat), 2)
}

func TestLoopRateSnapshotOncePerSecond(t *testing.T) {
	t0 := time.Unix(1000, 0)
	f := newLoopFixture(t0)
	for i := 0; i < 51; i++ {
		f.clock.Advance(20 * time.Millisecond)
		f.step(nil)
	}
	require.Equal(t, uint16(50), f.loop.loopRateHz)

	// the snapshot rides the next telemetry frame
	f.clock.Advance(20 * time.Millisecond)
	f.step(nil)
	tele := framesByCmd(f.sentFrames(t), link.CmdTelemetry)
	last := tele[len(tele)-1]
	require.Equal(t, []byte{0x00, 0x00, 50, 0x00}, last.Payload)
}

func TestLoopGarbageTolerant(t *testing.T) {
	f := newLoopFixture(time.Unix(1000, 0))
	f.step([]byte{0x00, 0xAA, 0x13})
	f.step(link.Encode(link.CmdSetSteering, []byte{0x2C, 0x01}))
	require.Equal(t, int16(300), f.state.Commanded)
}

func TestLoopRunPacesAndStops(t *testing.T) {
	f := newLoopFixture(time.Unix(1000, 0))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.loop.Run(ctx) }()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	// with a mock clock every iteration is instantaneous, so each pace
	// idles for the full period
	require.NotEmpty(t, f.clock.Slept)
	for _, d := range f.clock.Slept {
		require.Equal(t, 20*time.Millisecond, d)
	}
}
