package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Rejection explains why a raw record was excluded from the working set.
type Rejection struct {
	Index  int    // position of the record in the input
	Item   int    // offending item index, -1 when the record itself is at fault
	Reason string // one of the Reason* constants
}

func (r *Rejection) Error() string {
	if r.Item >= 0 {
		return fmt.Sprintf("record %d item %d: %s", r.Index, r.Item, r.Reason)
	}
	return fmt.Sprintf("record %d: %s", r.Index, r.Reason)
}

func (r *Rejection) Unwrap() error { return ErrRejected }

// Result is the outcome of validating one raw record: either a Receipt
// (Rejected == nil) or a Rejection.
type Result struct {
	Receipt  Receipt
	Rejected *Rejection
}

// Valid reports whether the record passed validation.
func (r Result) Valid() bool { return r.Rejected == nil }

// Validate checks every raw record against the receipt shape and returns one
// Result per input element, in input order. It never fails as a whole.
func Validate(raw []any) []Result {
	out := make([]Result, 0, len(raw))
	for i, rec := range raw {
		receipt, rej := coerce(rec)
		if rej != nil {
			rej.Index = i
			out = append(out, Result{Rejected: rej})
			continue
		}
		out = append(out, Result{Receipt: receipt})
	}
	return out
}

// Accepted keeps the valid receipts, preserving their relative order.
func Accepted(results []Result) []Receipt {
	out := make([]Receipt, 0, len(results))
	for _, r := range results {
		if r.Valid() {
			out = append(out, r.Receipt)
		}
	}
	return out
}

// Rejections returns only the rejected outcomes.
func Rejections(results []Result) []*Rejection {
	var out []*Rejection
	for _, r := range results {
		if !r.Valid() {
			out = append(out, r.Rejected)
		}
	}
	return out
}

// ValidateReceipts is Accepted(Validate(raw)).
func ValidateReceipts(raw []any) []Receipt {
	return Accepted(Validate(raw))
}

// ValidateOne validates a single record. The returned error wraps ErrRejected.
func ValidateOne(raw any) (Receipt, error) {
	receipt, rej := coerce(raw)
	if rej != nil {
		return Receipt{}, rej
	}
	return receipt, nil
}

// ReverseChronological returns a reversed copy, most recent upload first.
func ReverseChronological(receipts []Receipt) []Receipt {
	out := make([]Receipt, len(receipts))
	for i, r := range receipts {
		out[len(receipts)-1-i] = r
	}
	return out
}

// DecodeList decodes a JSON array body into raw records. Numbers are kept as
// json.Number so large ids survive.
func DecodeList(data []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode receipts: %w", err)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, ErrNotArray
	}
	return list, nil
}

// DecodeOne decodes a single JSON object body.
func DecodeOne(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	return v, nil
}

// coerce accepts either the backend envelope {id, name, data} or a flat record.
func coerce(raw any) (Receipt, *Rejection) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Receipt{}, reject(ReasonNotObject)
	}

	var r Receipt
	body := obj
	if data, has := obj["data"]; has {
		inner, ok := data.(map[string]any)
		if !ok {
			return Receipt{}, reject(ReasonDataNotObject)
		}
		body = inner
		r.Label = optString(obj["name"])
	}
	r.ID = idString(obj["id"])
	if r.Label == "" {
		r.Label = optString(body["label"])
	}

	date, ok := body["date"].(string)
	if !ok || strings.TrimSpace(date) == "" {
		return Receipt{}, reject(ReasonMissingDate)
	}
	r.Date = date

	total, ok := number(body["total_amount"])
	if !ok {
		return Receipt{}, reject(ReasonTotalNotNumeric)
	}
	r.TotalAmount = total

	store, ok := body["store_name"].(string)
	if !ok || strings.TrimSpace(store) == "" {
		return Receipt{}, reject(ReasonMissingStore)
	}
	r.StoreName = store

	rawItems, ok := body["items"].([]any)
	if !ok {
		return Receipt{}, reject(ReasonItemsNotArray)
	}
	r.Items = make([]ReceiptItem, 0, len(rawItems))
	for i, ri := range rawItems {
		item, reason := coerceItem(ri)
		if reason != "" {
			return Receipt{}, &Rejection{Item: i, Reason: reason}
		}
		r.Items = append(r.Items, item)
	}

	// Optional fields of the wrong type are dropped, not fatal.
	if v, ok := number(body["tax"]); ok {
		r.Tax = &v
	}
	if v, ok := number(body["tip"]); ok {
		r.Tip = &v
	}
	r.Address = optString(body["address"])
	r.PhoneNumber = optString(body["phone_number"])

	return r, nil
}

func coerceItem(raw any) (ReceiptItem, string) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return ReceiptItem{}, ReasonItemNotObject
	}
	name, ok := obj["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return ReceiptItem{}, ReasonItemName
	}
	qty, ok := number(obj["quantity"])
	if !ok {
		return ReceiptItem{}, ReasonItemQuantity
	}
	price, ok := number(obj["price"])
	if !ok {
		return ReceiptItem{}, ReasonItemPrice
	}
	return ReceiptItem{
		Name:     name,
		Quantity: qty,
		Price:    price,
		Category: optString(obj["category"]),
	}, ""
}

func reject(reason string) *Rejection {
	return &Rejection{Item: -1, Reason: reason}
}

// number accepts JSON numbers only; numeric strings are not numbers.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func optString(v any) string {
	s, _ := v.(string)
	return s
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return ""
	}
}
