package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"studyrag/config"
	"studyrag/loader"
	"studyrag/logger"
	"studyrag/model"
	"studyrag/store"
)

func main() {
	dir := flag.String("dir", "", "directory with PDF files to import")
	flag.Parse()

	cfg, envErr := config.Load()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	if envErr != nil {
		log.Warn("no .env file loaded, using process environment", "error", envErr)
	}
	if *dir == "" {
		log.Fatal("missing -dir flag")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal("store unavailable", "error", err)
	}
	defer func() {
		log.Info("Closing database connection pool...")
		if err := st.Close(); err != nil {
			log.Error("error closing pool", "error", err)
		}
	}()

	provider := model.NewProviderFromConfig(cfg, log)
	svc := loader.NewService(log, st, loader.NewPDFExtractor(), provider, cfg.ChunkSize, cfg.ChunkOverlap)

	res, err := loader.NewImporter(log, svc, cfg.UploadDir).Run(ctx, *dir)
	if err != nil {
		log.Error("import interrupted", "error", err, "imported", res.Imported)
	}
}
