package link

import "errors"

var (
	// ErrShortFrame indicates more bytes are needed to complete the frame.
	ErrShortFrame = errors.New("incomplete frame")
	// ErrChecksum indicates the frame checksum doesn't match.
	ErrChecksum = errors.New("checksum mismatch")
	// ErrPayloadLen indicates the length byte exceeds MaxPayload.
	ErrPayloadLen = errors.New("payload length out of range")
)
