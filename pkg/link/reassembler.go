package link

import "errors"

// BufferCap is the capacity of the receive buffer. The buffer is never
// grown: on overflow everything buffered is discarded and the controller
// resynchronizes on the next header. A host flooding the link loses
// buffered bytes, not the controller.
const BufferCap = 64

// Reassembler turns an arbitrary byte stream into a sequence of
// validated frames, keeping partial-frame state across calls.
// It is not safe for concurrent use; the control loop is the only caller.
type Reassembler struct {
	buf [BufferCap]byte
	w   int
}

// Buffered returns the number of bytes currently held.
func (r *Reassembler) Buffered() int {
	return r.w
}

// Push appends bytes to the receive buffer. A write that would exceed
// capacity discards the entire buffer first, including any partially
// received frame; the new bytes are still written. A single push larger
// than the whole buffer keeps only its most recent BufferCap bytes.
func (r *Reassembler) Push(p []byte) {
	if len(p) > BufferCap {
		p = p[len(p)-BufferCap:]
		r.w = 0
	} else if r.w+len(p) > BufferCap {
		r.w = 0
	}
	r.w += copy(r.buf[r.w:], p)
}

// Drain scans the buffer and returns all complete frames in arrival
// order, compacting consumed bytes out of the buffer. Bytes that never
// match the header pair are skipped one at a time. A frame failing its
// checksum is skipped over its full span: the length byte is trusted
// even though the checksum is not, which matches the controller firmware
// and can skip the start of a following frame when the length byte
// itself was corrupted.
func (r *Reassembler) Drain() []Frame {
	var frames []Frame
	scan := 0
scanning:
	for scan+FrameOverhead <= r.w {
		if r.buf[scan] != Header0 || r.buf[scan+1] != Header1 {
			scan++
			continue
		}
		f, n, err := Decode(r.buf[scan:r.w])
		switch {
		case err == nil:
			frames = append(frames, f)
			scan += n
		case errors.Is(err, ErrShortFrame):
			break scanning
		case errors.Is(err, ErrChecksum):
			scan += n
		default:
			// Oversized length byte: resume the byte-by-byte search
			// right after the header instead of trusting it.
			scan += 2
		}
	}
	if scan > 0 {
		r.w = copy(r.buf[:], r.buf[scan:r.w])
	}
	return frames
}
