package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/servolink/pkg/control"
	"github.com/robotalks/servolink/pkg/device"
	"github.com/robotalks/servolink/pkg/framework"
	"github.com/robotalks/servolink/pkg/hal"
)

var (
	portPath  = "/dev/ttyUSB0"
	baud      = 115200
	pwmDir    = ""
	adcPath   = ""
	servoFreq = 50
)

func init() {
	flag.StringVar(&portPath, "port", portPath, "Serial port device.")
	flag.IntVar(&baud, "baud", baud, "Serial baud rate.")
	flag.StringVar(&pwmDir, "pwm", pwmDir, "Sysfs PWM channel directory, empty for a mock actuator.")
	flag.StringVar(&adcPath, "adc", adcPath, "Sysfs IIO raw attribute for angle feedback, empty for a mock sensor.")
	flag.IntVar(&servoFreq, "servo-freq-hz", servoFreq, "Servo PWM frequency.")
	device.SetupFlags()
	control.SetupFlags()
}

func main() {
	flag.Parse()

	port, err := hal.OpenSerial(portPath, baud, 0)
	if err != nil {
		glog.Exitf("open %s: %v", portPath, err)
	}
	defer port.Close()

	var actuator hal.Actuator
	if pwmDir != "" {
		if actuator, err = hal.NewSysfsPWM(pwmDir, servoFreq); err != nil {
			glog.Exitf("pwm setup: %v", err)
		}
	} else {
		glog.Warning("no -pwm given, actuation goes to a mock")
		actuator = &hal.MockActuator{}
	}

	var sensor hal.AngleSensor
	if adcPath != "" {
		sensor = &hal.SysfsADC{Path: adcPath}
	} else {
		glog.Warning("no -adc given, angle feedback reads zero")
		sensor = &hal.MockAngleSensor{}
	}

	state := device.NewConfig().NewState()
	loop := control.NewConfig().NewLoop(state, port, actuator, sensor, hal.SystemClock{})

	err = framework.NewRunner().
		HandleSignals().
		Go(framework.NamedRun("control", loop)).
		Wait()
	if err != nil {
		glog.Exit(err)
	}
}
