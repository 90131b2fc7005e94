// peerchat - direct two-peer text chat over a single TCP stream.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"peerchat/cmd"
	pcerr "peerchat/internal/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "peerchat: %v\n", err)
		cancel()
		if errors.Is(err, pcerr.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
