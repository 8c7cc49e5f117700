package core

import "time"

// OutcomeStatus is the result of validating an uploaded receipt.
type OutcomeStatus string

const (
	OutcomeValid    OutcomeStatus = "valid"
	OutcomeRejected OutcomeStatus = "rejected"
)

// IngestionOutcome records what the worker decided about one receipt.
type IngestionOutcome struct {
	ReceiptID string        `json:"receipt_id"`
	Label     string        `json:"label,omitempty"`
	Status    OutcomeStatus `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	// Receipt is set for valid outcomes so exports can be replayed.
	Receipt   *Receipt  `json:"receipt,omitempty"`
	ExportRef string    `json:"export_ref,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// NewOutcome builds the outcome for a validation result.
func NewOutcome(receiptID, label string, r Receipt, err error, at time.Time) IngestionOutcome {
	out := IngestionOutcome{ReceiptID: receiptID, Label: label, CheckedAt: at}
	if err != nil {
		out.Status = OutcomeRejected
		out.Reason = err.Error()
		if rej, ok := err.(*Rejection); ok {
			out.Reason = rej.Reason
		}
		return out
	}
	c := r.Clone()
	if c.ID == "" {
		c.ID = receiptID
	}
	if c.Label == "" {
		c.Label = label
	}
	out.Status = OutcomeValid
	out.Receipt = &c
	return out
}
