// Package worker turns receipt.uploaded messages into recorded, exported
// ingestion outcomes.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payperless/internal/amqp"
	"payperless/internal/core"
	"payperless/internal/log"
	"payperless/internal/receipts"
	"payperless/internal/sheets"
)

// OutcomeStore persists ingestion outcomes and their export state.
type OutcomeStore interface {
	RecordOutcome(ctx context.Context, o core.IngestionOutcome) error
	GetOutcome(ctx context.Context, receiptID string) (core.IngestionOutcome, error)
	PendingExports(ctx context.Context, limit int) ([]core.IngestionOutcome, error)
	MarkExported(ctx context.Context, receiptID, ref string) error
	MarkExportError(ctx context.Context, receiptID string, cause error) error
}

// Recorder receives ingest and export counts. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordIngest(status string)
	RecordExport(err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordIngest(string) {}
func (nopRecorder) RecordExport(error)  {}

// IngestWorker validates uploaded receipts, records the outcome and exports
// accepted receipts.
type IngestWorker struct {
	receipts  receipts.Getter
	store     OutcomeStore
	exporter  sheets.ReceiptExporter
	recorder  Recorder
	logger    *log.Logger
	batchSize int
	now       func() time.Time
}

func NewIngestWorker(getter receipts.Getter, store OutcomeStore, exporter sheets.ReceiptExporter, recorder Recorder, logger *log.Logger, batchSize int) *IngestWorker {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = log.Discard()
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	return &IngestWorker{
		receipts:  getter,
		store:     store,
		exporter:  exporter,
		recorder:  recorder,
		logger:    logger.WithComponent(log.ComponentWorker),
		batchSize: batchSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// HandleReceiptUploaded processes one message. Errors returned here are
// requeued by the consumer unless they wrap amqp.ErrDrop.
func (w *IngestWorker) HandleReceiptUploaded(ctx context.Context, msg *amqp.ReceiptUploadedMessage) error {
	w.logger.InfoContext(ctx, "processing receipt", log.FieldReceiptID, msg.ID, "label", msg.Label)

	raw, err := w.receipts.GetRaw(ctx, msg.ID)
	if errors.Is(err, receipts.ErrNotFound) {
		return fmt.Errorf("%w: receipt %s: %w", amqp.ErrDrop, msg.ID, err)
	}
	if err != nil {
		return fmt.Errorf("fetch receipt %s: %w", msg.ID, err)
	}

	r, verr := core.ValidateOne(raw)
	outcome := core.NewOutcome(msg.ID, msg.Label, r, verr, w.now())
	if err := w.store.RecordOutcome(ctx, outcome); err != nil {
		return fmt.Errorf("record outcome %s: %w", msg.ID, err)
	}
	w.recorder.RecordIngest(string(outcome.Status))

	if outcome.Status == core.OutcomeRejected {
		w.logger.WarnContext(ctx, "receipt rejected",
			log.FieldReceiptID, msg.ID, log.FieldReason, outcome.Reason)
		return nil
	}

	// redelivered receipts that were already exported keep their row
	stored, err := w.store.GetOutcome(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("reload outcome %s: %w", msg.ID, err)
	}
	if stored.ExportRef != "" {
		w.logger.DebugContext(ctx, "receipt already exported",
			log.FieldReceiptID, msg.ID, log.FieldExportRef, stored.ExportRef)
		return nil
	}

	// Export failures are left for ExportPending; the outcome is already stored.
	if err := w.export(ctx, outcome); err != nil {
		w.logger.ErrorContext(ctx, "export failed, will retry",
			log.FieldReceiptID, msg.ID, log.FieldError, err.Error())
	}
	return nil
}

// ExportPending re-exports one batch of valid outcomes that have no export
// reference yet and returns how many succeeded.
func (w *IngestWorker) ExportPending(ctx context.Context) (int, error) {
	pending, err := w.store.PendingExports(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("get pending exports: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "processing pending exports", "count", len(pending))
	exported := 0
	for _, o := range pending {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		if err := w.export(ctx, o); err != nil {
			w.logger.ErrorContext(ctx, "failed to export receipt",
				log.FieldReceiptID, o.ReceiptID, log.FieldError, err.Error())
			continue
		}
		exported++
	}
	return exported, nil
}

// Run calls ExportPending every interval until ctx is done.
func (w *IngestWorker) Run(ctx context.Context, interval time.Duration) error {
	if _, err := w.ExportPending(ctx); err != nil && ctx.Err() == nil {
		w.logger.ErrorContext(ctx, "startup export check failed", log.FieldError, err.Error())
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ExportPending(ctx); err != nil && ctx.Err() == nil {
				w.logger.ErrorContext(ctx, "periodic export failed", log.FieldError, err.Error())
			}
		}
	}
}

func (w *IngestWorker) export(ctx context.Context, o core.IngestionOutcome) error {
	if o.Receipt == nil {
		return fmt.Errorf("outcome %s has no receipt", o.ReceiptID)
	}
	ref, err := w.exporter.Export(ctx, *o.Receipt)
	w.recorder.RecordExport(err)
	if err != nil {
		if merr := w.store.MarkExportError(ctx, o.ReceiptID, err); merr != nil {
			w.logger.ErrorContext(ctx, "failed to mark export error",
				log.FieldReceiptID, o.ReceiptID, log.FieldError, merr.Error())
		}
		return err
	}
	if err := w.store.MarkExported(ctx, o.ReceiptID, ref); err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	w.logger.InfoContext(ctx, "receipt exported", log.FieldReceiptID, o.ReceiptID, log.FieldExportRef, ref)
	return nil
}
