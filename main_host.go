//go:build !tinygo

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/tock/design-explorations/app"
	"github.com/tock/design-explorations/hal"
)

func main() {
	var headless bool
	var cfg hal.HeadlessConfig
	var blink uint64
	flag.BoolVar(&headless, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 60, "Step rate in headless mode.")
	flag.Uint64Var(&cfg.Steps, "steps", 0, "Stop after N steps in headless mode (0 = run forever).")
	flag.Uint64Var(&blink, "blink", 500, "LED blink period in ticks.")
	flag.Parse()

	newApp := func(h hal.HAL) func() error {
		return app.NewWithConfig(h, app.Config{BlinkPeriod: blink})
	}

	if headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, newApp, cfg); err != nil {
			if err == context.Canceled {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(newApp); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
