package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-authgate"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := authgate.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "authgate: %v\n", err)
		os.Exit(1)
	}

	logger := authgate.NewSlogLoggerFor(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()

	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed: %v", err)
		os.Exit(1)
	}
	defer app.Close()

	go func() {
		logger.Info("listening on %s", cfg.Server.Addr)
		if err := app.srv.Serve(cfg.Server.Addr); err != nil {
			logger.Error("server stopped: %v", err)
		}
	}()

	sig := WaitExitSignal()
	logger.Info("received %s, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := app.srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown: %v", err)
	}
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
