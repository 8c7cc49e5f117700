package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func goodRecord(store, date string) map[string]any {
	return map[string]any{
		"date":         date,
		"total_amount": 5.0,
		"store_name":   store,
		"items": []any{
			map[string]any{"name": "a", "quantity": 1.0, "price": 5.0},
		},
	}
}

func TestValidateEmpty(t *testing.T) {
	if got := Validate(nil); len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
	if got := ValidateReceipts([]any{}); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestValidateKeepsOnlyCompleteRecords(t *testing.T) {
	raw := []any{
		goodRecord("X", "2024-01-01"),
		map[string]any{"date": "2024-01-02"},
	}
	got := ValidateReceipts(raw)
	if len(got) != 1 {
		t.Fatalf("expected 1 receipt, got %d", len(got))
	}
	if got[0].StoreName != "X" || got[0].Date != "2024-01-01" || got[0].TotalAmount != 5 {
		t.Fatalf("unexpected receipt: %+v", got[0])
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(m map[string]any)
		reason string
		item   int
	}{
		{"missing date", func(m map[string]any) { delete(m, "date") }, ReasonMissingDate, -1},
		{"blank date", func(m map[string]any) { m["date"] = "  " }, ReasonMissingDate, -1},
		{"numeric date", func(m map[string]any) { m["date"] = 20240101.0 }, ReasonMissingDate, -1},
		{"string total", func(m map[string]any) { m["total_amount"] = "5" }, ReasonTotalNotNumeric, -1},
		{"null total", func(m map[string]any) { m["total_amount"] = nil }, ReasonTotalNotNumeric, -1},
		{"empty store", func(m map[string]any) { m["store_name"] = "" }, ReasonMissingStore, -1},
		{"missing items", func(m map[string]any) { delete(m, "items") }, ReasonItemsNotArray, -1},
		{"items object", func(m map[string]any) { m["items"] = map[string]any{} }, ReasonItemsNotArray, -1},
		{"item not object", func(m map[string]any) { m["items"] = []any{"milk"} }, ReasonItemNotObject, 0},
		{"item no name", func(m map[string]any) {
			m["items"] = []any{map[string]any{"quantity": 1.0, "price": 1.0}}
		}, ReasonItemName, 0},
		{"item string quantity", func(m map[string]any) {
			m["items"] = []any{map[string]any{"name": "a", "quantity": "1", "price": 1.0}}
		}, ReasonItemQuantity, 0},
		{"second item string price", func(m map[string]any) {
			m["items"] = []any{
				map[string]any{"name": "a", "quantity": 1.0, "price": 1.0},
				map[string]any{"name": "b", "quantity": 1.0, "price": "2.50"},
			}
		}, ReasonItemPrice, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := goodRecord("X", "2024-01-01")
			tc.mutate(rec)
			results := Validate([]any{goodRecord("A", "2024-01-01"), rec})
			if len(results) != 2 {
				t.Fatalf("expected 2 results, got %d", len(results))
			}
			if !results[0].Valid() {
				t.Fatalf("sibling should stay valid: %v", results[0].Rejected)
			}
			rej := results[1].Rejected
			if rej == nil {
				t.Fatalf("expected rejection with reason %q", tc.reason)
			}
			if rej.Reason != tc.reason || rej.Item != tc.item || rej.Index != 1 {
				t.Fatalf("got %+v, want reason=%q item=%d index=1", rej, tc.reason, tc.item)
			}
			if !errors.Is(rej, ErrRejected) {
				t.Fatalf("rejection should wrap ErrRejected")
			}
		})
	}
}

func TestValidateNonObjects(t *testing.T) {
	raw := []any{nil, 1.0, "receipt", []any{}, goodRecord("A", "2024-01-01")}
	results := Validate(raw)
	if len(results) != len(raw) {
		t.Fatalf("expected %d results, got %d", len(raw), len(results))
	}
	for i := 0; i < 4; i++ {
		if results[i].Valid() || results[i].Rejected.Reason != ReasonNotObject {
			t.Fatalf("case %d expected not-object rejection, got %+v", i, results[i])
		}
	}
	if got := Accepted(results); len(got) != 1 || got[0].StoreName != "A" {
		t.Fatalf("unexpected accepted: %+v", got)
	}
	if got := Rejections(results); len(got) != 4 {
		t.Fatalf("expected 4 rejections, got %d", len(got))
	}
}

func TestValidatePreservesOrder(t *testing.T) {
	raw := []any{
		goodRecord("A", "2024-01-01"),
		map[string]any{},
		goodRecord("B", "2024-01-02"),
		goodRecord("C", "2024-01-03"),
	}
	got := ValidateReceipts(raw)
	if len(got) != 3 {
		t.Fatalf("expected 3, got %d", len(got))
	}
	for i, want := range []string{"A", "B", "C"} {
		if got[i].StoreName != want {
			t.Fatalf("position %d: got %q want %q", i, got[i].StoreName, want)
		}
	}
	rev := ReverseChronological(got)
	if rev[0].StoreName != "C" || rev[2].StoreName != "A" || got[0].StoreName != "A" {
		t.Fatalf("reverse should copy: got=%v rev=%v", got, rev)
	}
}

func TestValidateEnvelope(t *testing.T) {
	body := []byte(`[
		{"id": 7, "name": "weekly shop", "data": {
			"date": "07-04-2017", "total_amount": 29.01, "store_name": "Main Street",
			"tax": 3.78, "tip": "n/a", "address": "6332 Business Drive", "phone_number": 5751628095,
			"items": [{"name": "Unknown Item", "quantity": 1, "price": 25.23, "category": "Food"}]
		}},
		{"id": 8, "name": "broken", "data": {"hello": "world"}},
		{"id": 9, "name": "null data", "data": null}
	]`)
	raw, err := DecodeList(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	results := Validate(raw)
	if !results[0].Valid() {
		t.Fatalf("first record should be valid: %v", results[0].Rejected)
	}
	r := results[0].Receipt
	if r.ID != "7" || r.Label != "weekly shop" || r.StoreName != "Main Street" {
		t.Fatalf("unexpected envelope mapping: %+v", r)
	}
	if r.Tax == nil || *r.Tax != 3.78 {
		t.Fatalf("expected tax 3.78, got %v", r.Tax)
	}
	if r.Tip != nil || r.PhoneNumber != "" {
		t.Fatalf("mistyped optional fields should be dropped: tip=%v phone=%q", r.Tip, r.PhoneNumber)
	}
	if len(r.Items) != 1 || r.Items[0].Category != "Food" || r.Items[0].Price != 25.23 {
		t.Fatalf("unexpected items: %+v", r.Items)
	}
	if results[1].Valid() || results[1].Rejected.Reason != ReasonMissingDate {
		t.Fatalf("second record: %+v", results[1])
	}
	if results[2].Valid() || results[2].Rejected.Reason != ReasonDataNotObject {
		t.Fatalf("third record: %+v", results[2])
	}
}

func TestDecodeListNotArray(t *testing.T) {
	if _, err := DecodeList([]byte(`{"detail":"boom"}`)); !errors.Is(err, ErrNotArray) {
		t.Fatalf("expected ErrNotArray, got %v", err)
	}
	if _, err := DecodeList([]byte(`not json`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestValidateOne(t *testing.T) {
	if _, err := ValidateOne(goodRecord("A", "2024-01-01")); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	_, err := ValidateOne(map[string]any{"date": "2024-01-01"})
	var rej *Rejection
	if !errors.As(err, &rej) || rej.Reason != ReasonTotalNotNumeric {
		t.Fatalf("expected total rejection, got %v", err)
	}
}

func TestNumberKinds(t *testing.T) {
	cases := []struct {
		in any
		ok bool
	}{
		{1.5, true},
		{float32(2), true},
		{3, true},
		{int64(4), true},
		{json.Number("5.25"), true},
		{json.Number("abc"), false},
		{"5", false},
		{true, false},
		{nil, false},
	}
	for i, tc := range cases {
		if _, ok := number(tc.in); ok != tc.ok {
			t.Fatalf("case %d (%v): expected ok=%v", i, tc.in, tc.ok)
		}
	}
}
