package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mpgigat/actas-repfora/cli"
	"github.com/mpgigat/actas-repfora/output"
)

func main() {
	if err := run(); err != nil {
		formatter := output.NewFormatter(os.Stderr)
		formatter.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := &cli.Dependencies{In: os.Stdin, Out: os.Stdout}
	defer deps.Close()
	return cli.NewRootCmd(deps).ExecuteContext(ctx)
}
