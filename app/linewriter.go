package app

import (
	"bytes"

	"github.com/tock/design-explorations/hal"
)

// lineWriter adapts a hal.Logger to the io.Writer the console capsule
// drains into, flushing one logger line per newline.
type lineWriter struct {
	l   hal.Logger
	buf []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			return len(p), nil
		}
		w.l.WriteLineBytes(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
}
