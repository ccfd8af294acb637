// cmd/shelf/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/law-makers/shelf/internal/cli"
	"github.com/rs/zerolog/log"
)

func main() {
	// Interrupts cancel in-flight fetches and searches; outputs are only
	// written once a run completes.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.Execute(ctx)
	if ctx.Err() != nil {
		log.Warn().Msg("Interrupted, no output written")
		code = 130
	}
	stop()
	os.Exit(code)
}
