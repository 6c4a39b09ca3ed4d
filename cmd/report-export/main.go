package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"

	"bilancio/internal/config"
	"bilancio/internal/export"
	applog "bilancio/internal/log"
	"bilancio/internal/storage"
)

// report-export is a one-shot tool: it rolls up the previous calendar month's
// expenses for the configured user and appends the report to Google Sheets.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentExport)
	applog.SetDefault(logger)

	logger.Info("Starting report-export")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateExport(); err != nil {
		logger.Error("Export configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	exporter, err := export.NewSheetsExporter(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, cfg.GoogleCredentialsFile)
	if err != nil {
		logger.Error("Failed to initialize Sheets exporter", "error", err)
		os.Exit(1)
	}

	// Previous calendar month.
	now := time.Now()
	firstOfThisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthStart := firstOfThisMonth.AddDate(0, -1, 0)
	monthEnd := firstOfThisMonth.Add(-time.Second)

	expenses, err := repo.ListExpensesBetween(ctx, cfg.ReportUserID, monthStart, monthEnd)
	if err != nil {
		logger.Error("Failed to load expenses for report", "error", err)
		os.Exit(1)
	}

	if err := exporter.AppendMonthlyReport(ctx, monthStart.Year(), monthStart.Month(), expenses); err != nil {
		logger.Error("Failed to export monthly report", "error", err)
		os.Exit(1)
	}

	logger.Info("Report export complete",
		"user_id", cfg.ReportUserID,
		"month", monthStart.Format("2006-01"),
		"expenses", len(expenses))
}
