package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floorplans/pkg/api"
	"floorplans/pkg/config"
	"floorplans/pkg/floorplan"
	"floorplans/pkg/sheets"

	log "github.com/sirupsen/logrus"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose logging")
	configFile := flag.String("config", config.DefaultFilename, "Path to the TOML config file")

	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	setupLogging(cfg.Logging, *verbose)

	table, err := loadTable(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to load floor plan data: %v", err)
	}

	handler, err := api.NewHandler(table, floorplan.NewDirResolver(cfg.Data.ImageDir))
	if err != nil {
		log.Fatalf("Failed to build handler: %v", err)
	}
	go startServer(cfg.Server.Listen, api.GetRouter(handler))

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

mainloop:
	// In all cases, just exit and let the container restart from scratch.
	for {
		select {
		case <-signalChan:
			log.Info("Signalled, breaking main loop")
			break mainloop
		}
	}
}

func setupLogging(cfg config.LoggingConfig, verbose bool) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	// Set the log format to include a leading timestamp in ISO8601 format
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
}

// loadTable reads the table once at startup; it is not reloaded.
func loadTable(ctx context.Context, cfg config.Config) (floorplan.Table, error) {
	if !cfg.UsesSheet() {
		return floorplan.LoadCSV(cfg.Data.CSVPath)
	}
	client, err := sheets.NewSheetClient(ctx, cfg.Data.Sheet.CredentialsFile, cfg.Data.Sheet.SpreadsheetID, cfg.Data.Sheet.Range)
	if err != nil {
		return floorplan.Table{}, err
	}
	return sheets.LoadTable(ctx, client)
}

func startServer(addr string, router http.Handler) {
	server := http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
	}
	log.Infof("listening for HTTP on: %s", server.Addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("ListenAndServeError", err)
	}
}
