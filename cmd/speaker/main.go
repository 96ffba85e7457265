package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/speaker/internal/app"
	"github.com/dmitrijs2005/speaker/internal/cli"
	"github.com/dmitrijs2005/speaker/internal/config"
	"github.com/dmitrijs2005/speaker/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, rest, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	root := cli.NewRootCommand(cfg, app.WithStoreProvider(store.Default))
	root.SetArgs(rest)

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
