// Package link implements the serial link protocol of the steering servo
// controller.
package link

// The link protocol is communicated between the host and the servo
// controller over a raw, full-duplex byte stream (e.g. serial port).
// There is no flow control and no acknowledgment above the per-frame
// CRC: framing errors are silently dropped and the host is expected to
// resend. Liveness is established by the heartbeat/timeout pair, not by
// replies to individual commands.
//
// Frame layout on the wire:
//
//	[0xAA] [0x55] [CMD] [LEN] [PAYLOAD...] [CRC8]
//
// LEN is the payload length (at most 16) and CRC8 covers CMD, LEN and
// PAYLOAD.
//
// Producer/Consumer: both ends of the link.
