package hal

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

// SysfsPWM drives a servo through an exported Linux sysfs PWM channel
// (e.g. /sys/class/pwm/pwmchip0/pwm0). The channel must already be
// exported; period is owned by this type, duty cycle follows the
// commanded pulse width.
type SysfsPWM struct {
	Dir string

	periodNs uint64
	enabled  bool
}

// NewSysfsPWM prepares the PWM channel for servo output at freqHz.
func NewSysfsPWM(dir string, freqHz int) (*SysfsPWM, error) {
	p := &SysfsPWM{Dir: dir, periodNs: uint64(1e9) / uint64(freqHz)}
	// duty_cycle must not exceed period, so zero it before setting period
	if err := p.writeAttr("duty_cycle", 0); err != nil {
		return nil, err
	}
	if err := p.writeAttr("period", p.periodNs); err != nil {
		return nil, err
	}
	if err := p.writeAttr("enable", 0); err != nil {
		return nil, err
	}
	glog.Infof("pwm channel %s configured: period %dns", dir, p.periodNs)
	return p, nil
}

// WritePulseWidth implements Actuator.
func (p *SysfsPWM) WritePulseWidth(us uint32) error {
	if err := p.writeAttr("duty_cycle", uint64(us)*1000); err != nil {
		return err
	}
	if !p.enabled {
		if err := p.writeAttr("enable", 1); err != nil {
			return err
		}
		p.enabled = true
	}
	return nil
}

// Disable implements Actuator. With the channel disabled no pulses are
// produced and the servo relaxes.
func (p *SysfsPWM) Disable() error {
	if err := p.writeAttr("enable", 0); err != nil {
		return err
	}
	p.enabled = false
	return nil
}

func (p *SysfsPWM) writeAttr(name string, value uint64) error {
	path := filepath.Join(p.Dir, name)
	if err := os.WriteFile(path, []byte(strconv.FormatUint(value, 10)), 0644); err != nil {
		return fmt.Errorf("pwm write %s: %w", path, err)
	}
	return nil
}

// SysfsADC reads the raw angle sample from a Linux IIO ADC channel
// attribute (e.g. /sys/bus/iio/devices/iio:device0/in_voltage0_raw).
type SysfsADC struct {
	Path string
}

// Read implements AngleSensor.
func (a *SysfsADC) Read() (int16, error) {
	raw, err := os.ReadFile(a.Path)
	if err != nil {
		return 0, fmt.Errorf("adc read %s: %w", a.Path, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("adc parse %s: %w", a.Path, err)
	}
	return int16(v), nil
}
