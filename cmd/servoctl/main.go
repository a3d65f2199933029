package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/servolink/pkg/hal"
	"github.com/robotalks/servolink/pkg/host"
	"github.com/robotalks/servolink/pkg/link"
)

var (
	portPath  = "/dev/ttyUSB0"
	baud      = 115200
	keepAlive = 250 * time.Millisecond
)

func init() {
	flag.StringVar(&portPath, "port", portPath, "Serial port device.")
	flag.IntVar(&baud, "baud", baud, "Serial baud rate.")
	flag.DurationVar(&keepAlive, "keepalive", keepAlive, "Heartbeat interval keeping the controller watchdog satisfied.")
}

func faultName(code byte) string {
	switch code {
	case link.FaultNone:
		return "none"
	case link.FaultSerialTimeout:
		return "serial timeout"
	case link.FaultServoError:
		return "servo error"
	case link.FaultAdcError:
		return "adc error"
	}
	return fmt.Sprintf("unknown (%#02x)", code)
}

func main() {
	flag.Parse()

	port, err := hal.OpenSerial(portPath, baud, 100*time.Millisecond)
	if err != nil {
		glog.Exitf("open %s: %v", portPath, err)
	}
	sess := host.NewSession(port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Run(ctx)
	go sess.RunKeepAlive(ctx, keepAlive)

	shell := ishell.New()
	shell.Println("servo link shell, 'help' lists commands")
	shell.SetPrompt("servo> ")

	shell.AddCmd(&ishell.Cmd{
		Name: "enable",
		Help: "enable the servo",
		Func: func(c *ishell.Context) {
			if err := sess.SetEnable(true); err != nil {
				c.Err(err)
			}
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "disable",
		Help: "disable the servo (relaxed output)",
		Func: func(c *ishell.Context) {
			if err := sess.SetEnable(false); err != nil {
				c.Err(err)
			}
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "steer",
		Help: "steer <position>: command position, -32768..32767",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("usage: steer <position>"))
				return
			}
			v, err := strconv.Atoi(c.Args[0])
			if err != nil || v < -32768 || v > 32767 {
				c.Err(fmt.Errorf("position %q out of range", c.Args[0]))
				return
			}
			if err := sess.SetSteering(int16(v)); err != nil {
				c.Err(err)
			}
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "center",
		Help: "steer back to center",
		Func: func(c *ishell.Context) {
			if err := sess.SetSteering(0); err != nil {
				c.Err(err)
			}
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "gain",
		Help: "gain <value>: set steering gain, 0..100",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("usage: gain <value>"))
				return
			}
			v, err := strconv.Atoi(c.Args[0])
			if err != nil || v < 0 || v > 100 {
				c.Err(fmt.Errorf("gain %q out of range", c.Args[0]))
				return
			}
			if err := sess.SetGain(uint8(v)); err != nil {
				c.Err(err)
			}
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "status",
		Help: "show link and controller status",
		Func: func(c *ishell.Context) {
			if sess.Alive(2 * keepAlive) {
				c.Println("link: alive")
			} else {
				c.Println("link: silent")
			}
			if tele, ok := sess.LastTelemetry(); ok {
				c.Printf("angle: %d raw, loop rate: %dHz (%.1fs ago)\n",
					tele.AngleRaw, tele.LoopRateHz, time.Since(tele.When).Seconds())
			} else {
				c.Println("no telemetry received yet")
			}
			c.Printf("fault: %s\n", faultName(sess.LastFault()))
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "watch",
		Help: "watch [seconds]: print telemetry as it arrives",
		Func: func(c *ishell.Context) {
			secs := 2
			if len(c.Args) == 1 {
				v, err := strconv.Atoi(c.Args[0])
				if err != nil || v <= 0 {
					c.Err(fmt.Errorf("bad duration %q", c.Args[0]))
					return
				}
				secs = v
			}
			sess.SetHandler(host.HandleFrameFunc(func(f link.Frame) {
				switch f.Cmd {
				case link.CmdTelemetry:
					if len(f.Payload) >= 4 {
						c.Printf("angle=%6d rate=%3dHz\n",
							int16(binary.LittleEndian.Uint16(f.Payload[0:2])),
							binary.LittleEndian.Uint16(f.Payload[2:4]))
					}
				case link.CmdFault:
					if len(f.Payload) >= 1 {
						c.Printf("fault: %s\n", faultName(f.Payload[0]))
					}
				}
			}))
			time.Sleep(time.Duration(secs) * time.Second)
			sess.SetHandler(nil)
		},
	})

	shell.Run()
}
