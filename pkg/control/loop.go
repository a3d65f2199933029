// Package control implements the fixed-rate loop driving the steering
// servo controller: command ingestion, safety enforcement, actuation and
// telemetry emission.
package control

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/servolink/pkg/device"
	"github.com/robotalks/servolink/pkg/hal"
	"github.com/robotalks/servolink/pkg/link"
)

// Loop is the top-level scheduler. One iteration per period it pulls
// link bytes into the reassembler, applies decoded frames to the device
// state, evaluates the liveness watchdog, drives the actuator and emits
// telemetry and heartbeat frames. Everything runs on one goroutine; the
// step order inside an iteration is the only ordering guarantee the
// protocol needs.
type Loop struct {
	Config   Config
	State    *device.State
	Port     hal.Port
	Actuator hal.Actuator
	Sensor   hal.AngleSensor
	Clock    hal.Clock

	reasm   link.Reassembler
	readBuf [link.BufferCap]byte

	angle      int16
	loopRateHz uint16
	loopCount  uint32

	lastTelemetry time.Time
	lastHeartbeat time.Time
	rateWindow    time.Time
}

// Run implements framework.Runnable. The loop never halts itself; it
// runs until the context is cancelled. An iteration that overruns the
// period proceeds immediately with no catch-up.
func (l *Loop) Run(ctx context.Context) error {
	period := time.Second / time.Duration(l.Config.LoopHz)
	now := l.Clock.Now()
	l.State.LastCommand = now
	l.lastTelemetry = now
	l.lastHeartbeat = now
	l.rateWindow = now
	glog.Infof("control loop started: %dHz, timeout %s", l.Config.LoopHz, l.Config.SerialTimeout)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		start := l.Clock.Now()
		l.iterate(start)
		if elapsed := l.Clock.Now().Sub(start); elapsed < period {
			l.Clock.Sleep(period - elapsed)
		}
	}
}

// iterate runs one control period. The step order is load-bearing:
// commands are ingested before the watchdog check, the watchdog before
// actuation, and the angle sensor is sampled whether or not the servo is
// enabled.
func (l *Loop) iterate(now time.Time) {
	l.ingest(now)

	if l.State.EvaluateTimeout(now, l.Config.SerialTimeout) {
		glog.Warningf("no command for %s, servo disabled", l.Config.SerialTimeout)
		l.disableActuator()
		l.send(link.CmdFault, []byte{l.State.Fault})
	}

	if sample, err := l.Sensor.Read(); err != nil {
		glog.V(1).Infof("angle sample: %v", err)
	} else {
		l.angle = sample
	}

	if l.State.Enabled {
		if err := l.Actuator.WritePulseWidth(l.State.ActuatorMicros()); err != nil {
			glog.Errorf("actuator write: %v", err)
		}
	}

	if now.Sub(l.lastTelemetry) >= l.Config.TelemetryInterval {
		l.lastTelemetry = now
		var p [4]byte
		binary.LittleEndian.PutUint16(p[0:2], uint16(l.angle))
		binary.LittleEndian.PutUint16(p[2:4], l.loopRateHz)
		l.send(link.CmdTelemetry, p[:])
	}

	if now.Sub(l.lastHeartbeat) >= l.Config.HeartbeatInterval {
		l.lastHeartbeat = now
		l.send(link.CmdHeartbeat, nil)
	}

	l.loopCount++
	if now.Sub(l.rateWindow) >= time.Second {
		l.loopRateHz = uint16(l.loopCount)
		l.loopCount = 0
		l.rateWindow = now
	}
}

// ingest pulls all currently available port bytes and applies the
// resulting frames to the device state in arrival order.
func (l *Loop) ingest(now time.Time) {
	for {
		n, err := l.Port.Read(l.readBuf[:])
		if n > 0 {
			l.reasm.Push(l.readBuf[:n])
		}
		if err != nil {
			glog.V(1).Infof("port read: %v", err)
			break
		}
		if n == 0 {
			break
		}
	}
	for _, f := range l.reasm.Drain() {
		glog.V(4).Infof("frame cmd=%#02x len=%d", f.Cmd, len(f.Payload))
		if l.State.Apply(f.Cmd, f.Payload, now) {
			l.disableActuator()
		}
	}
}

func (l *Loop) disableActuator() {
	if err := l.Actuator.Disable(); err != nil {
		glog.Errorf("actuator disable: %v", err)
	}
}

func (l *Loop) send(cmd byte, payload []byte) {
	if _, err := l.Port.Write(link.Encode(cmd, payload)); err != nil {
		glog.Errorf("link write: %v", err)
	}
}
