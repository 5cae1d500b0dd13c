package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/kxue43/djangogen/config"
)

var logger = log.New(os.Stderr, "djangogen: ", 0)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI

	parser, err := newParser(&cli, config.DefaultPaths(), kong.BindTo(ctx, (*context.Context)(nil)))
	if err != nil {
		logger.Fatal(err)
	}

	kctx, err := parser.Parse(expandApps(os.Args[1:]))
	parser.FatalIfErrorf(err)

	err = kctx.Run()
	kctx.FatalIfErrorf(err)
}
