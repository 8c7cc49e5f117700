package backend

import (
	"context"
	"path/filepath"
	"testing"

	"payperless/internal/config"
	"payperless/internal/recipes"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"sheets is not a store", Config{Type: SheetsBackend}, true},
		{"sqlite is not an exporter", Config{Type: MemoryBackend, ExportType: SQLiteBackend}, true},
		{"sheets without id", Config{Type: MemoryBackend, ExportType: SheetsBackend, GoogleServiceAccountJSON: "{}"}, true},
		{"sheets without credentials", Config{Type: MemoryBackend, ExportType: SheetsBackend, GoogleSpreadsheetID: "id"}, true},
		{"sheets", Config{Type: MemoryBackend, ExportType: SheetsBackend, GoogleSpreadsheetID: "id", GoogleServiceAccountFile: "sa.json"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	c, err := FromAppConfig(&config.Config{DataBackend: "memory", ExportBackend: "memory", SQLiteDBPath: "p"})
	if err != nil || c.Type != MemoryBackend || c.ExportType != MemoryBackend {
		t.Fatalf("got %+v %v", c, err)
	}
}

func TestCreateStore(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	mem, err := f.CreateStore(ctx, Config{Type: MemoryBackend})
	if err != nil || mem.Recipes == nil || mem.Cleanup != nil {
		t.Fatalf("memory store: %+v %v", mem, err)
	}

	res, err := f.CreateStore(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "r.db")})
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	defer res.Cleanup()
	if err := res.Ready(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := res.Recipes.Put(ctx, recipes.Recipe{ID: "1", Name: "Soup"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, err := f.CreateStore(ctx, Config{Type: "mongo"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestCreateExporter(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)
	if exp, err := f.CreateExporter(ctx, Config{ExportType: MemoryBackend}); err != nil || exp == nil {
		t.Fatalf("memory exporter: %v", err)
	}
	if _, err := f.CreateExporter(ctx, Config{ExportType: SheetsBackend, GoogleSpreadsheetID: "id"}); err == nil {
		t.Fatal("expected credentials error")
	}
}
