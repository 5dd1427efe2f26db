// Command rngstream exercises the double-buffered entropy stream: while one
// chunk is printed, the kernel fills the other.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	caprng "github.com/tock/design-explorations/capsules/rng"
	"github.com/tock/design-explorations/drivers/rng"
	"github.com/tock/design-explorations/kernel"
	"github.com/tock/design-explorations/syscalls"
)

func main() {
	chunks := flag.Int("chunks", 8, "Number of chunks to read.")
	size := flag.Int("size", 16, "Chunk size in bytes.")
	flag.Parse()

	k := kernel.New()
	k.AddCapsule(caprng.DriverNum, caprng.New(rand.Reader))

	s := rng.NewStream(k, *size)
	if rc := s.Start(); rc != syscalls.ErrNone {
		fmt.Fprintln(os.Stderr, "stream start failed:", rc)
		os.Exit(1)
	}
	defer s.Close()

	for i := 0; i < *chunks; i++ {
		chunk, rc := s.Next()
		if rc != syscalls.ErrNone {
			fmt.Fprintln(os.Stderr, "stream read failed:", rc)
			os.Exit(1)
		}
		fmt.Println(hex.EncodeToString(chunk))
	}
}
