package control

import (
	"flag"
	"time"

	"github.com/robotalks/servolink/pkg/device"
	"github.com/robotalks/servolink/pkg/hal"
)

// Config defines the control loop timing.
type Config struct {
	LoopHz            int
	SerialTimeout     time.Duration
	TelemetryInterval time.Duration
	HeartbeatInterval time.Duration
}

var defaultConfig = Config{
	LoopHz:            50,
	SerialTimeout:     time.Second,
	TelemetryInterval: 20 * time.Millisecond,
	HeartbeatInterval: 500 * time.Millisecond,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.LoopHz, "loop-hz", defaultConfig.LoopHz, "Control loop rate, iterations per second.")
	flag.DurationVar(&defaultConfig.SerialTimeout, "serial-timeout", defaultConfig.SerialTimeout, "Disable the servo after this long without a command.")
	flag.DurationVar(&defaultConfig.TelemetryInterval, "telemetry-interval", defaultConfig.TelemetryInterval, "Interval between telemetry frames.")
	flag.DurationVar(&defaultConfig.HeartbeatInterval, "heartbeat-interval", defaultConfig.HeartbeatInterval, "Interval between heartbeat frames.")
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewLoop creates a control loop over the given state and hardware.
func (c *Config) NewLoop(state *device.State, port hal.Port, actuator hal.Actuator, sensor hal.AngleSensor, clock hal.Clock) *Loop {
	return &Loop{
		Config:   *c,
		State:    state,
		Port:     port,
		Actuator: actuator,
		Sensor:   sensor,
		Clock:    clock,
	}
}
