package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/formrunner/internal/cmd"
	"github.com/felixgeelhaar/formrunner/internal/exitcode"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nOperation cancelled by user")
			exitcode.Exit(exitcode.Interrupted)
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitcode.ExitWithError(err)
	}
	exitcode.Exit(exitcode.Success)
}
