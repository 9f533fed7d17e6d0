package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"locationShare/internal/client"
	"locationShare/internal/logging"
)

func main() {
	addr := flag.String("a", "http://localhost:3000", "server URL")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	logging.Init(logging.Config{Level: *logLevel, Format: "console"})

	api, err := client.New(*addr)
	if err != nil {
		logging.Fatal().Err(err).Msg("client")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := client.NewConsole(client.NewApp(api), os.Stdin, os.Stdout)
	if err := console.Run(ctx); err != nil {
		logging.Error().Err(err).Msg("client stopped")
		os.Exit(1)
	}
}
