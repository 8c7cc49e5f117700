package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"payperless/internal/core"
	"payperless/internal/sheets"
)

var _ sheets.ReceiptExporter = (*Exporter)(nil)

// Exporter keeps exported rows in memory.
type Exporter struct {
	mu   sync.Mutex
	rows [][]any
	fail error
}

func New() *Exporter { return &Exporter{} }

// Export stores the row and returns a synthetic reference.
func (e *Exporter) Export(_ context.Context, r core.Receipt) (string, error) {
	if r.ID == "" {
		return "", errors.New("receipt has no id")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail != nil {
		return "", e.fail
	}
	e.rows = append(e.rows, sheets.Row(r))
	return fmt.Sprintf("mem:%d", len(e.rows)), nil
}

// FailWith makes subsequent exports return err. Pass nil to recover.
func (e *Exporter) FailWith(err error) {
	e.mu.Lock()
	e.fail = err
	e.mu.Unlock()
}

// Rows returns a copy of the exported rows.
func (e *Exporter) Rows() [][]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]any, len(e.rows))
	for i, row := range e.rows {
		out[i] = append([]any(nil), row...)
	}
	return out
}
