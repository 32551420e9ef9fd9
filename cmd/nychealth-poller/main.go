package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"nychealth/internal/config"
	"nychealth/internal/connectors"
	"nychealth/internal/connectors/local"
	"nychealth/internal/connectors/nychealth"
	"nychealth/internal/pipeline"
	"nychealth/internal/poller"
	"nychealth/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	var fetcher connectors.Fetcher = nychealth.NewClient(cfg, logger)
	if strings.TrimSpace(cfg.ReportSourceDir) != "" {
		fetcher = local.NewFetcher(cfg.ReportSourceDir)
	}

	proc := pipeline.NewProcessingService(fetcher, db, logger)
	svc := poller.NewService(db, cfg, proc, logger)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
