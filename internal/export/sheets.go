package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"bilancio/internal/core"
	applog "bilancio/internal/log"
	"bilancio/internal/rollup"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// SheetsExporter appends monthly spending reports to a Google Sheets
// spreadsheet. Authentication uses a service account credentials file.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsExporter creates an exporter for the given spreadsheet.
func NewSheetsExporter(ctx context.Context, spreadsheetID, sheetName, credentialsFile string) (*SheetsExporter, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if sheetName == "" {
		return nil, errors.New("missing sheet name")
	}

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// AppendMonthlyReport writes one row per category plus a totals row for the
// given month. Amounts are written as decimal values so the sheet can sum
// them natively.
func (e *SheetsExporter) AppendMonthlyReport(ctx context.Context, year int, month time.Month, expenses []core.Expense) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	byCategory := rollup.CategoryBreakdown(expenses,
		func(x core.Expense) string { return x.Category },
		func(x core.Expense) int64 { return x.Amount.Cents })
	totals := rollup.Totals(expenses,
		func(x core.Expense) int64 { return x.Amount.Cents })

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	label := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
	rows := make([][]any, 0, len(categories)+1)
	for _, c := range categories {
		s := byCategory[c]
		rows = append(rows, []any{label, c, s.Total.Decimal(), s.Count})
	}
	rows = append(rows, []any{label, "TOTAL", totals.Total.Decimal(), totals.Count})

	rng := fmt.Sprintf("%s!A:D", e.sheetName)
	vr := &gsheet.ValueRange{Values: rows}
	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", e.sheetName, err)
	}

	slog.InfoContext(ctx, "Monthly report exported",
		applog.FieldComponent, applog.ComponentExport,
		applog.FieldOperation, applog.OpExport,
		"sheet", e.sheetName,
		"month", label,
		"rows", len(rows))
	return nil
}
