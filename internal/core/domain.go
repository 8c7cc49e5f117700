package core

import "errors"

type (
	// ReceiptItem is one purchased line item.
	ReceiptItem struct {
		Name     string  `json:"name"`
		Quantity float64 `json:"quantity"`
		Price    float64 `json:"price"`
		Category string  `json:"category,omitempty"` // empty when the backend sent none
	}

	// Receipt is the validated, read-only copy of a backend receipt record.
	Receipt struct {
		ID          string        `json:"id"`
		Label       string        `json:"label"`
		Date        string        `json:"date"`
		StoreName   string        `json:"store_name"`
		TotalAmount float64       `json:"total_amount"`
		Tax         *float64      `json:"tax,omitempty"`
		Tip         *float64      `json:"tip,omitempty"`
		Address     string        `json:"address,omitempty"`
		PhoneNumber string        `json:"phone_number,omitempty"`
		Items       []ReceiptItem `json:"items"`
	}

	// KeyTotal is a chart-ready aggregate. Total is already display-rounded.
	KeyTotal struct {
		Key   string  `json:"key"`
		Total float64 `json:"total"`
	}
)

// Rejection reasons reported by Validate.
const (
	ReasonNotObject       = "record is not an object"
	ReasonDataNotObject   = "data is not an object"
	ReasonMissingDate     = "missing date"
	ReasonTotalNotNumeric = "total_amount is not numeric"
	ReasonMissingStore    = "missing store_name"
	ReasonItemsNotArray   = "items is not an array"
	ReasonItemNotObject   = "item is not an object"
	ReasonItemName        = "item name is empty"
	ReasonItemQuantity    = "item quantity is not numeric"
	ReasonItemPrice       = "item price is not numeric"
)

var (
	ErrRejected = errors.New("receipt rejected")
	ErrNotArray = errors.New("response body is not a JSON array")
)

// Clone returns a copy that shares no slices or pointers with r.
func (r Receipt) Clone() Receipt {
	out := r
	if r.Items != nil {
		out.Items = append([]ReceiptItem(nil), r.Items...)
	}
	if r.Tax != nil {
		v := *r.Tax
		out.Tax = &v
	}
	if r.Tip != nil {
		v := *r.Tip
		out.Tip = &v
	}
	return out
}
