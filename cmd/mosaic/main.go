package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/mosaic/internal/cli"
	"github.com/matzehuels/mosaic/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context) int {
	root := cli.New(os.Stderr, cli.LogInfo).RootCommand()
	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return errors.ExitOK
	case stderrors.Is(err, context.Canceled):
		return 130 // Standard shell convention for SIGINT
	}
	fmt.Fprintln(os.Stderr, cli.StyleError.Render("Error:"), errors.UserMessage(err))
	return errors.ExitCode(err)
}
