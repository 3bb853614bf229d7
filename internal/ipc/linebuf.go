package ipc

import "bytes"

// LineBuffer accumulates bytes from a stream and splits them on newline
// boundaries. A trailing partial line is retained until the next Feed, so a
// request split across several socket reads still decodes exactly once, and
// several requests arriving in one read each decode separately.
//
// Each connection owns one LineBuffer; the type itself does no locking.
type LineBuffer struct {
	buf []byte
}

// Feed appends chunk to the buffer and returns all complete lines, without
// their trailing newline. Empty lines are dropped. The returned slices are
// copies and remain valid after subsequent Feed calls.
func (b *LineBuffer) Feed(chunk []byte) [][]byte {
	b.buf = append(b.buf, chunk...)

	var lines [][]byte
	for {
		i := bytes.IndexByte(b.buf, '\n')
		if i < 0 {
			return lines
		}
		line := bytes.TrimRight(b.buf[:i], "\r")
		if len(line) > 0 {
			out := make([]byte, len(line))
			copy(out, line)
			lines = append(lines, out)
		}
		b.buf = b.buf[i+1:]
	}
}

// Pending returns the number of buffered bytes awaiting a newline.
func (b *LineBuffer) Pending() int {
	return len(b.buf)
}
