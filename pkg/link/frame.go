package link

// Frame header bytes.
const (
	Header0 byte = 0xAA
	Header1 byte = 0x55
)

// MaxPayload is the maximum payload length of a frame.
const MaxPayload = 16

const (
	headerSize = 4 // header(2) + cmd(1) + len(1)
	crcSize    = 1
)

// FrameOverhead is the number of non-payload bytes in an encoded frame.
const FrameOverhead = headerSize + crcSize

// Commands: host → controller.
const (
	// CmdSetSteering carries the commanded position as int16 little-endian.
	CmdSetSteering byte = 0x01
	// CmdSetGain carries the gain as uint8, valid range 0-100.
	CmdSetGain byte = 0x02
	// CmdSetEnable carries uint8, nonzero enables the servo.
	CmdSetEnable byte = 0x03
)

// Commands: controller → host.
const (
	// CmdTelemetry carries int16 raw angle followed by uint16 loop rate
	// in Hz, both little-endian.
	CmdTelemetry byte = 0x10
	// CmdFault carries a one-byte fault code.
	CmdFault byte = 0x11
)

// CmdHeartbeat is sent in both directions and carries no payload.
const CmdHeartbeat byte = 0xF0

// Fault codes carried by CmdFault.
const (
	FaultNone          byte = 0x00
	FaultSerialTimeout byte = 0x01
	// FaultServoError and FaultAdcError are reserved for external
	// actuator/sensor health collaborators; the core never raises them.
	FaultServoError byte = 0x02
	FaultAdcError   byte = 0x03
)

// Frame is one complete, checksum-validated protocol message.
type Frame struct {
	Cmd     byte
	Payload []byte
}

// Encode builds the wire representation of a frame.
// It panics if the payload exceeds MaxPayload: neither end of the link
// constructs oversized payloads, so this is a programming error rather
// than a runtime fault.
func Encode(cmd byte, payload []byte) []byte {
	if len(payload) > MaxPayload {
		panic("link: payload exceeds MaxPayload")
	}
	b := make([]byte, headerSize+len(payload)+crcSize)
	b[0], b[1] = Header0, Header1
	b[2], b[3] = cmd, byte(len(payload))
	copy(b[4:], payload)
	b[len(b)-1] = Crc8(b[2 : len(b)-1])
	return b
}

// Decode decodes one frame from b, which must begin at a located header.
// On success it returns the frame and the total number of bytes consumed
// (FrameOverhead plus the payload length). ErrShortFrame means b doesn't
// yet contain the whole frame. ErrChecksum is reported together with the
// consumed count of the rejected frame, so the caller can skip its full
// span; ErrPayloadLen consumes nothing.
func Decode(b []byte) (Frame, int, error) {
	if len(b) < headerSize+crcSize {
		return Frame{}, 0, ErrShortFrame
	}
	cmd, n := b[2], int(b[3])
	if n > MaxPayload {
		return Frame{}, 0, ErrPayloadLen
	}
	total := headerSize + n + crcSize
	if len(b) < total {
		return Frame{}, 0, ErrShortFrame
	}
	if Crc8(b[2:4+n]) != b[total-1] {
		return Frame{}, total, ErrChecksum
	}
	payload := make([]byte, n)
	copy(payload, b[4:4+n])
	return Frame{Cmd: cmd, Payload: payload}, total, nil
}
