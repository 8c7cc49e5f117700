package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"payperless/internal/core"
)

type fakeSheet struct {
	mu      sync.Mutex
	rows    int
	updates []string
	bodies  []gsheet.ValueRange
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodGet:
		values := make([][]any, f.rows)
		for i := range values {
			values[i] = []any{"x"}
		}
		_ = json.NewEncoder(w).Encode(gsheet.ValueRange{Values: values})
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		var vr gsheet.ValueRange
		_ = json.Unmarshal(body, &vr)
		f.updates = append(f.updates, r.URL.Path)
		f.bodies = append(f.bodies, vr)
		f.rows += len(vr.Values)
		_, _ = w.Write([]byte(`{}`))
	default:
		http.Error(w, "unexpected", http.StatusMethodNotAllowed)
	}
}

func newTestExporter(t *testing.T, h http.Handler) *Exporter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	e, err := NewWithService(svc, Config{SpreadsheetID: "sheet-id", SheetName: "Receipts"})
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	return e
}

func TestExportWritesHeaderThenRows(t *testing.T) {
	fake := &fakeSheet{}
	e := newTestExporter(t, fake)
	r := core.Receipt{ID: "9", Date: "2024-02-01", StoreName: "Corner", TotalAmount: 3,
		Items: []core.ReceiptItem{{Name: "tea", Quantity: 1, Price: 3}}}

	ref, err := e.Export(context.Background(), r)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if ref != "Receipts!A2:G2" {
		t.Fatalf("first ref = %q", ref)
	}
	if len(fake.bodies[0].Values) != 2 || fake.bodies[0].Values[0][0] != "Date" {
		t.Fatalf("expected header and row, got %v", fake.bodies[0].Values)
	}

	ref, err = e.Export(context.Background(), r)
	if err != nil || ref != "Receipts!A3:G3" {
		t.Fatalf("second export: %q %v", ref, err)
	}
	if len(fake.bodies[1].Values) != 1 || fake.bodies[1].Values[0][6] != "9" {
		t.Fatalf("unexpected row: %v", fake.bodies[1].Values)
	}
	if !strings.Contains(fake.updates[1], "A3") {
		t.Fatalf("unexpected update path %q", fake.updates[1])
	}
}

func TestExportUpstreamError(t *testing.T) {
	e := newTestExporter(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
	}))
	if _, err := e.Export(context.Background(), core.Receipt{ID: "1"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestExportRequiresID(t *testing.T) {
	e := newTestExporter(t, &fakeSheet{})
	if _, err := e.Export(context.Background(), core.Receipt{}); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestNewWithServiceValidation(t *testing.T) {
	if _, err := NewWithService(nil, Config{SpreadsheetID: "x"}); err == nil {
		t.Fatal("expected error for nil service")
	}
	svc := &gsheet.Service{}
	if _, err := NewWithService(svc, Config{}); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	e, err := NewWithService(svc, Config{SpreadsheetID: "x"})
	if err != nil || e.sheet != "Receipts" {
		t.Fatalf("default sheet: %v %v", e, err)
	}
}

func TestCredentials(t *testing.T) {
	if _, err := credentials(Config{}); err == nil {
		t.Fatal("expected error without credentials")
	}
	if b, err := credentials(Config{CredentialsJSON: `{"a":1}`}); err != nil || string(b) != `{"a":1}` {
		t.Fatalf("inline json: %s %v", b, err)
	}
	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"b":2}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if b, err := credentials(Config{CredentialsFile: path}); err != nil || string(b) != `{"b":2}` {
		t.Fatalf("file: %s %v", b, err)
	}
	if _, err := credentials(Config{CredentialsFile: path + ".missing"}); err == nil {
		t.Fatal("expected error for missing file")
	}
}
