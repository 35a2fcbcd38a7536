package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/urban-guardians/backend/internal/config"
	"github.com/urban-guardians/backend/internal/services"
)

// Standalone export tool. Uses the same storage selection as the server, so
// it snapshots whichever backend the deployment actually runs on.
func main() {
	format := flag.String("format", "both", "export format: json, csv, or both")
	flag.Parse()

	cfg := config.Load()

	reports, users := buildStores(cfg)
	exporter := services.NewExportService(reports, users, cfg.DataDir, cfg.DatabaseName)

	if *format == "json" || *format == "both" {
		path, err := exporter.ExportJSON()
		if err != nil {
			log.Fatalf("JSON export failed: %v", err)
		}
		fmt.Printf("JSON export written to %s\n", path)
	}

	if *format == "csv" || *format == "both" {
		path, err := exporter.ExportCSV()
		if err != nil {
			log.Fatalf("CSV export failed: %v", err)
		}
		fmt.Printf("CSV export written to %s\n", path)
	}
}

func buildStores(cfg *config.Config) (services.ReportStore, services.UserStore) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectWait)
	defer cancel()

	client, err := services.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.Printf("MongoDB unavailable (%v), reading file storage in %s", err, cfg.DataDir)
		userStore, err := services.NewFileUserStore(cfg.DataDir)
		if err != nil {
			log.Fatalf("Failed to open file user store: %v", err)
		}
		reportStore, err := services.NewFileReportStore(cfg.DataDir, userStore)
		if err != nil {
			log.Fatalf("Failed to open file report store: %v", err)
		}
		return reportStore, userStore
	}

	db := client.Database(cfg.DatabaseName)
	userStore, err := services.NewMongoUserStore(ctx, db)
	if err != nil {
		log.Fatalf("Failed to initialize user store: %v", err)
	}
	reportStore, err := services.NewMongoReportStore(ctx, client, db)
	if err != nil {
		log.Fatalf("Failed to initialize report store: %v", err)
	}
	return reportStore, userStore
}
