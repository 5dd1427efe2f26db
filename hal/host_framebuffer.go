//go:build !tinygo

package hal

import "sync"

type hostFramebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	stride := width * 2
	return &hostFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
}

func (f *hostFramebuffer) Width() int          { return f.width }
func (f *hostFramebuffer) Height() int         { return f.height }
func (f *hostFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *hostFramebuffer) StrideBytes() int    { return f.stride }

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

func (f *hostFramebuffer) SetPixel(x, y int, r, g, b uint8) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	pixel := rgb565(r, g, b)
	i := y*f.stride + x*2
	f.buf[i] = byte(pixel)
	f.buf[i+1] = byte(pixel >> 8)
}

func (f *hostFramebuffer) FillRect(x, y, w, h int, r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for yy := y; yy < y+h; yy++ {
		if yy < 0 || yy >= f.height {
			continue
		}
		for xx := x; xx < x+w; xx++ {
			if xx < 0 || xx >= f.width {
				continue
			}
			i := yy*f.stride + xx*2
			f.buf[i] = lo
			f.buf[i+1] = hi
		}
	}
}

func (f *hostFramebuffer) snapshotRGB565(dst []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.buf)
}
