package device

import "flag"

// Config defines the servo actuation parameters.
type Config struct {
	MinPulseUs  int
	MaxPulseUs  int
	DefaultGain uint
}

var defaultConfig = Config{
	MinPulseUs:  500,
	MaxPulseUs:  2500,
	DefaultGain: 50,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.MinPulseUs, "servo-min-us", defaultConfig.MinPulseUs, "Servo pulse width at full negative deflection, microseconds.")
	flag.IntVar(&defaultConfig.MaxPulseUs, "servo-max-us", defaultConfig.MaxPulseUs, "Servo pulse width at full positive deflection, microseconds.")
	flag.UintVar(&defaultConfig.DefaultGain, "gain", defaultConfig.DefaultGain, "Initial steering gain, 0-100.")
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewState creates the startup state: disabled, centered, no fault.
func (c *Config) NewState() *State {
	gain := c.DefaultGain
	if gain > MaxGain {
		gain = MaxGain
	}
	return &State{
		Gain:  uint8(gain),
		minUs: c.MinPulseUs,
		maxUs: c.MaxPulseUs,
	}
}
