package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bshnet/bsh/cmd/bsh/commands"
	"github.com/bshnet/bsh/cmd/bsh/internal/format"
	"github.com/bshnet/bsh/pkg/engine"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	root := commands.NewCommand()
	cmd, err := root.ExecuteContextC(ctx)
	stop()
	if err == nil {
		return
	}

	if cmd == nil {
		cmd = root
	}
	_ = format.FromCommand(cmd).PrintError(err, engine.ErrorCode(err), engine.Suggestions(err))
	os.Exit(engine.ExitCode(err))
}
