//go:build !tinygo

package hal

import (
	"crypto/rand"
	"fmt"
	"os"
	"sync"
	"time"
)

const (
	hostLEDCount    = 4
	hostLogTail     = 12
	hostPanelWidth  = 320
	hostPanelHeight = 240
)

type hostHAL struct {
	logger  *hostLogger
	leds    []*hostLED
	keys    []*virtualPin
	buttons []GPIOPin
	t       *hostTime
	fb      *hostFramebuffer
}

// New returns a host HAL implementation: simulated LEDs and buttons, a
// stdout logger and a millisecond timebase.
func New() HAL {
	logger := newHostLogger(os.Stdout, hostLogTail)

	leds := make([]*hostLED, hostLEDCount)
	for i := range leds {
		leds[i] = &hostLED{name: fmt.Sprintf("led%d", i), logger: logger}
	}

	// BTN0/BTN1 are driven by the window's keyboard polling; the signal pin
	// stands in for an external source so button demos work headless too.
	keys := []*virtualPin{
		newVirtualPin("BTN0", GPIOCapInput),
		newVirtualPin("BTN1", GPIOCapInput),
	}
	buttons := []GPIOPin{
		keys[0],
		keys[1],
		newSignalPin("SIG1HZ", 1*time.Second, 500*time.Millisecond),
	}

	return &hostHAL{
		logger:  logger,
		leds:    leds,
		keys:    keys,
		buttons: buttons,
		t:       newHostTime(),
		fb:      newHostFramebuffer(hostPanelWidth, hostPanelHeight),
	}
}

func (h *hostHAL) Logger() Logger { return h.logger }

func (h *hostHAL) LEDs() []LED {
	out := make([]LED, len(h.leds))
	for i, l := range h.leds {
		out[i] = l
	}
	return out
}

func (h *hostHAL) Buttons() []GPIOPin { return h.buttons }
func (h *hostHAL) Entropy() Entropy   { return hostEntropy{} }
func (h *hostHAL) Time() Time         { return h.t }

type hostEntropy struct{}

func (hostEntropy) Read(p []byte) (int, error) { return rand.Read(p) }

// hostLogger writes to the underlying file and keeps a short tail for the
// panel renderer.
type hostLogger struct {
	mu   sync.Mutex
	w    *os.File
	tail []string
	max  int
}

func newHostLogger(w *os.File, max int) *hostLogger {
	return &hostLogger{w: w, max: max}
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
	l.push(s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
	l.push(string(b))
}

func (l *hostLogger) push(s string) {
	l.tail = append(l.tail, s)
	if len(l.tail) > l.max {
		l.tail = l.tail[len(l.tail)-l.max:]
	}
}

func (l *hostLogger) tailLines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.tail))
	copy(out, l.tail)
	return out
}

type hostLED struct {
	mu     sync.Mutex
	name   string
	on     bool
	logger *hostLogger
}

func (l *hostLED) High() {
	l.mu.Lock()
	l.on = true
	l.mu.Unlock()
	l.logger.WriteLineString(l.name + ": on")
}

func (l *hostLED) Low() {
	l.mu.Lock()
	l.on = false
	l.mu.Unlock()
	l.logger.WriteLineString(l.name + ": off")
}

func (l *hostLED) lit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}
