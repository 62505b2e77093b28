package suggest

import "bytes"

// lineBuffer splits an arbitrarily chunked text stream into lines.
// Every '\n'-terminated line is complete; the unterminated tail is held
// until more text arrives or the stream ends.
type lineBuffer struct {
	pending []byte
}

// write appends p without emitting anything; drain complete lines with next.
func (b *lineBuffer) write(p []byte) {
	b.pending = append(b.pending, p...)
}

// next pops the oldest complete line, without its '\n'.
func (b *lineBuffer) next() (string, bool) {
	i := bytes.IndexByte(b.pending, '\n')
	if i < 0 {
		return "", false
	}
	line := string(b.pending[:i])
	b.pending = b.pending[i+1:]
	return line, true
}

// push appends p and calls emit for each complete line.
// Emission stops at the first error, which is returned; the remaining
// complete lines stay pending.
func (b *lineBuffer) push(p []byte, emit func(string) error) error {
	b.write(p)
	for line, ok := b.next(); ok; line, ok = b.next() {
		if err := emit(line); err != nil {
			return err
		}
	}
	return nil
}

// flush returns and clears the unterminated tail. ok is false when nothing
// is pending.
func (b *lineBuffer) flush() (tail string, ok bool) {
	if len(b.pending) == 0 {
		return "", false
	}
	tail = string(b.pending)
	b.pending = nil
	return tail, true
}
