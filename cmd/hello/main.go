// Command hello runs the smallest possible userspace program against the
// in-process kernel: share a buffer with the console driver, write it out,
// wait for the completion.
package main

import (
	"flag"
	"fmt"
	"os"

	capcon "github.com/tock/design-explorations/capsules/console"
	"github.com/tock/design-explorations/drivers/console"
	"github.com/tock/design-explorations/kernel"
	"github.com/tock/design-explorations/syscalls"
)

func main() {
	name := flag.String("name", "world", "Who to greet.")
	flag.Parse()

	k := kernel.New()
	k.AddCapsule(capcon.DriverNum, capcon.New(os.Stdout))

	c := console.New(k, 128, nil)
	if rc := c.Println("hello, " + *name); rc != syscalls.ErrNone {
		fmt.Fprintln(os.Stderr, "console write failed:", rc)
		os.Exit(1)
	}
}
