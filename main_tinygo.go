//go:build tinygo

package main

import (
	"github.com/tock/design-explorations/app"
	"github.com/tock/design-explorations/hal"
)

func main() {
	app.Run(hal.New())
}
