package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"

	"github.com/robotalks/servolink/pkg/framework"
	"github.com/robotalks/servolink/pkg/hal"
	"github.com/robotalks/servolink/pkg/host"
	"github.com/robotalks/servolink/pkg/link"
	"github.com/robotalks/servolink/pkg/mqtt"
)

var (
	portPath  = "/dev/ttyUSB0"
	baud      = 115200
	mqttURL   = "mqtt://localhost:1883/servolink/"
	keepAlive = 250 * time.Millisecond
)

func init() {
	if val := os.Getenv("SERVOLINK_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&portPath, "port", portPath, "Serial port device.")
	flag.IntVar(&baud, "baud", baud, "Serial baud rate.")
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.DurationVar(&keepAlive, "keepalive", keepAlive, "Heartbeat interval keeping the controller watchdog satisfied.")
}

type faultEvent struct {
	Code byte      `json:"code"`
	When time.Time `json:"when"`
}

func main() {
	flag.Parse()

	id, err := machineid.ID()
	if err != nil {
		glog.Exitf("machine id: %v", err)
	}

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		glog.Exitf("broker url: %v", err)
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		glog.Exitf("broker connect: %v", token.Error())
	}
	defer q.Close()

	port, err := hal.OpenSerial(portPath, baud, 100*time.Millisecond)
	if err != nil {
		glog.Exitf("open %s: %v", portPath, err)
	}

	pub := func(topic string, v interface{}) {
		payload, err := json.Marshal(v)
		if err != nil {
			glog.Errorf("encode %s: %v", topic, err)
			return
		}
		q.Pub(id+"/"+topic, payload)
	}

	sess := host.NewSession(port)
	sess.SetHandler(host.HandleFrameFunc(func(f link.Frame) {
		switch f.Cmd {
		case link.CmdTelemetry:
			if tele, ok := sess.LastTelemetry(); ok {
				pub("telemetry", tele)
			}
		case link.CmdFault:
			if len(f.Payload) >= 1 {
				pub("fault", faultEvent{Code: f.Payload[0], When: time.Now()})
			}
		case link.CmdHeartbeat:
			pub("heartbeat", time.Now())
		}
	}))

	err = framework.NewRunner().
		HandleSignals().
		Go(
			framework.NamedRun("session", sess),
			framework.NamedRun("keepalive", framework.RunnableFunc(func(ctx context.Context) error {
				return sess.RunKeepAlive(ctx, keepAlive)
			})),
		).
		Wait()
	if err != nil {
		glog.Exit(err)
	}
}
