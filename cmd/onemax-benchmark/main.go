package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"onemax/internal/ga"
	"onemax/internal/harness"
)

func main() {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	h, err := harness.New(ga.DefaultConfig(), "Go", rng, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if _, err := h.RunTests(harness.DefaultRunCount); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
