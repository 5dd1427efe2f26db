//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Hz    int
	Steps uint64
}

// RunHeadless runs the OS without opening a window. Buttons stay at their
// resting level except for the signal pins. It returns when ctx is done or
// after cfg.Steps runner iterations (0 means run forever).
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	h := New().(*hostHAL)
	step := newApp(h)

	t := time.NewTicker(d)
	defer t.Stop()

	var n uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			h.t.step()
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			n++
			if cfg.Steps > 0 && n >= cfg.Steps {
				return nil
			}
		}
	}
}
