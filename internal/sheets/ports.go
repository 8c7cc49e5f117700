package sheets

import (
	"context"

	"payperless/internal/core"
)

// ReceiptExporter appends an accepted receipt to an external ledger and
// returns a reference to where it landed.
type ReceiptExporter interface {
	Export(ctx context.Context, r core.Receipt) (ref string, err error)
}

// Header names the exported columns, in order.
var Header = []string{"Date", "Store", "Label", "Total", "Items", "Subtotal", "Receipt ID"}

// Row renders r as one ledger row matching Header.
func Row(r core.Receipt) []any {
	return []any{
		r.Date,
		r.StoreName,
		r.Label,
		core.FormatAmount(r.TotalAmount),
		len(r.Items),
		core.FormatAmount(core.DetailSubtotal(r)),
		r.ID,
	}
}
