package receipts

import (
	"context"
	"fmt"

	"payperless/internal/core"
	"payperless/internal/log"
)

// Order selects the presentation order of a receipt list.
type Order int

const (
	// OrderUpload keeps the backend order.
	OrderUpload Order = iota
	// OrderRecent shows the most recent upload first.
	OrderRecent
)

// ParseOrder maps the ?order= query value. Anything but "recent" is upload order.
func ParseOrder(s string) Order {
	if s == "recent" {
		return OrderRecent
	}
	return OrderUpload
}

// ValidationRecorder receives validator outcome counts.
type ValidationRecorder interface {
	RecordValidation(accepted, rejected int)
}

type Source interface {
	Lister
	Getter
}

// Service fetches raw records and returns only validated receipts.
type Service struct {
	src      Source
	logger   *log.Logger
	recorder ValidationRecorder
}

func NewService(src Source, logger *log.Logger, recorder ValidationRecorder) *Service {
	if logger == nil {
		logger = log.Discard()
	}
	return &Service{src: src, logger: logger.WithComponent(log.ComponentReceipts), recorder: recorder}
}

// List fetches the backend list and drops malformed records. Transport
// failures are returned as errors; malformed records never are.
func (s *Service) List(ctx context.Context, order Order) ([]core.Receipt, error) {
	raw, err := s.src.ListRaw(ctx)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	results := core.Validate(raw)
	receipts := core.Accepted(results)
	s.observe(ctx, results, len(receipts))
	if order == OrderRecent {
		receipts = core.ReverseChronological(receipts)
	}
	return receipts, nil
}

// Get fetches one receipt. A record that fails validation yields
// ErrInvalidReceipt wrapping the rejection.
func (s *Service) Get(ctx context.Context, id string) (core.Receipt, error) {
	raw, err := s.src.GetRaw(ctx, id)
	if err != nil {
		return core.Receipt{}, fmt.Errorf("get receipt %s: %w", id, err)
	}
	receipt, err := core.ValidateOne(raw)
	if err != nil {
		s.record(0, 1)
		s.logger.DebugContext(ctx, "receipt rejected",
			log.FieldReceiptID, id, log.FieldError, err.Error())
		return core.Receipt{}, fmt.Errorf("%w: %w", ErrInvalidReceipt, err)
	}
	s.record(1, 0)
	if receipt.ID == "" {
		receipt.ID = id
	}
	return receipt, nil
}

func (s *Service) observe(ctx context.Context, results []core.Result, accepted int) {
	rejected := len(results) - accepted
	s.record(accepted, rejected)
	if rejected == 0 {
		return
	}
	for _, rej := range core.Rejections(results) {
		s.logger.DebugContext(ctx, "receipt rejected",
			log.NewFields().WithRejection(rej.Index, rej.Reason).ToSlice()...)
	}
	s.logger.InfoContext(ctx, "receipts validated",
		log.FieldAccepted, accepted, log.FieldRejected, rejected)
}

func (s *Service) record(accepted, rejected int) {
	if s.recorder != nil {
		s.recorder.RecordValidation(accepted, rejected)
	}
}
