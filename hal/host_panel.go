//go:build !tinygo

package hal

import (
	"image/color"
	"strconv"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// fbDisplay adapts the host framebuffer to drivers.Displayer so the tinyfont
// renderer can draw into it.
type fbDisplay struct {
	fb *hostFramebuffer
}

var _ drivers.Displayer = fbDisplay{}

func (d fbDisplay) Size() (int16, int16) {
	return int16(d.fb.width), int16(d.fb.height)
}

func (d fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	d.fb.SetPixel(int(x), int(y), c.R, c.G, c.B)
}

func (d fbDisplay) Display() error { return nil }

var (
	panelText = color.RGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	panelDim  = color.RGBA{R: 0x70, G: 0x70, B: 0x80, A: 0xFF}
)

// renderPanel draws the simulated board into the framebuffer: LED squares,
// button levels and the last few console lines.
func (h *hostHAL) renderPanel() {
	h.fb.ClearRGB(0x10, 0x10, 0x18)
	d := fbDisplay{fb: h.fb}
	font := &proggy.TinySZ8pt7b

	for i, led := range h.leds {
		x := 10 + i*30
		if led.lit() {
			h.fb.FillRect(x, 10, 20, 20, 0x30, 0xD0, 0x30)
		} else {
			h.fb.FillRect(x, 10, 20, 20, 0x28, 0x28, 0x30)
		}
		tinyfont.WriteLine(d, font, int16(x+4), 44, strconv.Itoa(i), panelText)
	}

	for i, pin := range h.buttons {
		x := 10 + i*72
		level, err := pin.Read()
		c := panelDim
		if err == nil && level {
			c = panelText
		}
		tinyfont.WriteLine(d, font, int16(x), 62, pin.Name(), c)
	}

	y := int16(84)
	for _, line := range h.logger.tailLines() {
		if len(line) > 52 {
			line = line[:52]
		}
		tinyfont.WriteLine(d, font, 10, y, line, panelText)
		y += 12
	}
}
