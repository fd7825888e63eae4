package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"studyrag/app/server"
	"studyrag/config"
	"studyrag/logger"
)

func main() {
	cfg, envErr := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	if envErr != nil {
		log.Warn("no .env file loaded, using process environment", "error", envErr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := server.NewServer(cfg, log)
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigch:
		log.Info("received shutdown signal, shutting down server")
	case err := <-errc:
		if err != nil {
			log.Error("server failed", "error", err)
		}
	}
	s.Stop()
}
