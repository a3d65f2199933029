package hal

import (
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"
)

// OpenSerial opens the serial port at path as a link Port.
// A zero readTimeout configures non-blocking reads for polled use inside
// the control loop; host-side tools pass a small timeout instead so
// their read loops don't spin.
func OpenSerial(path string, baud int, readTimeout time.Duration) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, err
	}
	if err = port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, err
	}
	glog.Infof("serial port %s opened at %d baud", path, baud)
	return port, nil
}
