package backend

import (
	"context"
	"fmt"

	"payperless/internal/log"
	recmemory "payperless/internal/recipes/memory"
	"payperless/internal/sheets"
	gsheet "payperless/internal/sheets/google"
	smemory "payperless/internal/sheets/memory"
	"payperless/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*StoreResult, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite recipe store", "db_path", config.SQLiteDBPath)
		return &StoreResult{Recipes: repo, Ready: repo.Ping, Cleanup: repo.Close}, nil
	case MemoryBackend:
		f.logger.InfoContext(ctx, "Initialized memory recipe store")
		return &StoreResult{Recipes: recmemory.New()}, nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", config.Type)
	}
}

func (f *DefaultFactory) CreateExporter(ctx context.Context, config Config) (sheets.ReceiptExporter, error) {
	switch config.ExportType {
	case SheetsBackend:
		exp, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			CredentialsFile: config.GoogleServiceAccountFile,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			Logger:          f.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets exporter: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized Google Sheets exporter", "sheet", config.GoogleSheetName)
		return exp, nil
	case MemoryBackend, "":
		f.logger.InfoContext(ctx, "Initialized memory exporter")
		return smemory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported export backend: %s", config.ExportType)
	}
}
