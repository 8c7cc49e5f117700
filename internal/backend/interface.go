// Package backend builds the storage and export adapters selected by
// configuration.
package backend

import (
	"context"

	"payperless/internal/recipes"
	"payperless/internal/sheets"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// StoreResult is the saved-recipes store plus its lifecycle hooks.
type StoreResult struct {
	Recipes recipes.Store
	// Ready is nil when the store has nothing to check.
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*StoreResult, error)
	CreateExporter(ctx context.Context, config Config) (sheets.ReceiptExporter, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type         BackendType
	SQLiteDBPath string

	ExportType               BackendType
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValidStore reports whether bt can hold saved recipes.
func (bt BackendType) IsValidStore() bool {
	return bt == SQLiteBackend || bt == MemoryBackend
}

// IsValidExport reports whether bt can receive exported receipts.
func (bt BackendType) IsValidExport() bool {
	return bt == SheetsBackend || bt == MemoryBackend
}
