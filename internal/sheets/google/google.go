package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"payperless/internal/core"
	"payperless/internal/log"
	"payperless/internal/sheets"
)

var _ sheets.ReceiptExporter = (*Exporter)(nil)

// Config selects the spreadsheet and the service account used to write it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
	Logger          *log.Logger
}

// Exporter appends one row per receipt to a Google Sheet.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *log.Logger

	// serializes the read-then-write row allocation
	mu sync.Mutex
}

// New authenticates with service account credentials and returns an exporter.
func New(ctx context.Context, cfg Config) (*Exporter, error) {
	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, cfg)
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, cfg Config) (*Exporter, error) {
	if svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Receipts"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	return &Exporter{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheet:         sheet,
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Export writes r on the first free row. An empty sheet gets the header first.
func (e *Exporter) Export(ctx context.Context, r core.Receipt) (string, error) {
	if r.ID == "" {
		return "", errors.New("receipt has no id")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	rng := fmt.Sprintf("%s!A:A", e.sheet)
	resp, err := e.svc.Spreadsheets.Values.Get(e.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", e.sheet, err)
	}

	values := [][]any{sheets.Row(r)}
	nextRow := len(resp.Values) + 1
	if nextRow == 1 {
		header := make([]any, len(sheets.Header))
		for i, h := range sheets.Header {
			header[i] = h
		}
		values = [][]any{header, sheets.Row(r)}
	}
	lastRow := nextRow + len(values) - 1
	writeRange := fmt.Sprintf("%s!A%d:G%d", e.sheet, nextRow, lastRow)

	_, err = e.svc.Spreadsheets.Values.Update(e.spreadsheetID, writeRange, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", writeRange, err)
	}

	ref := fmt.Sprintf("%s!A%d:G%d", e.sheet, lastRow, lastRow)
	e.logger.DebugContext(ctx, "receipt exported", log.FieldReceiptID, r.ID, log.FieldExportRef, ref)
	return ref, nil
}
