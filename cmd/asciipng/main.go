package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wbrown/asciipng/cmd/asciipng/cmd"
)

var (
	GitSHA string = "NA"
)

func main() {
	// register sigterm for graceful shutdown
	ctx, cnc := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cnc()
	go func() {
		defer cnc() // restores default signal handling so a second ctrl-c kills
		<-ctx.Done()
	}()
	if err := cmd.NewRoot(ctx, GitSHA).Execute(); err != nil {
		os.Exit(1)
	}
}
