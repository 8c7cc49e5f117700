package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"payperless/internal/core"
	"payperless/internal/receipts"
)

func TestSeededStoreValidates(t *testing.T) {
	s, err := NewSeeded()
	if err != nil {
		t.Fatalf("NewSeeded: %v", err)
	}
	raw, err := s.ListRaw(context.Background())
	if err != nil {
		t.Fatalf("ListRaw: %v", err)
	}
	got := core.ValidateReceipts(raw)
	if len(got) != 8 {
		t.Fatalf("expected 8 valid receipts, got %d", len(got))
	}
	if got[0].ID != "1" || got[0].Label != "20200625" {
		t.Fatalf("unexpected first receipt %+v", got[0])
	}
}

func TestAddGetAndMalformed(t *testing.T) {
	s := New()
	good := s.Add("ok", []byte(`{"date":"2024-01-01","total_amount":5,"store_name":"X","items":[{"name":"a","quantity":1,"price":5}]}`))
	s.Add("bad", []byte(`{"date":"2024-01-02"}`))

	raw, err := s.ListRaw(context.Background())
	if err != nil {
		t.Fatalf("ListRaw: %v", err)
	}
	if got := core.ValidateReceipts(raw); len(got) != 1 || got[0].ID != good {
		t.Fatalf("unexpected receipts %+v", got)
	}

	one, err := s.GetRaw(context.Background(), good)
	if err != nil {
		t.Fatalf("GetRaw: %v", err)
	}
	if _, err := core.ValidateOne(one); err != nil {
		t.Fatalf("ValidateOne: %v", err)
	}
	if _, err := s.GetRaw(context.Background(), "99"); !errors.Is(err, receipts.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUploadAndImage(t *testing.T) {
	s := New()
	res, err := s.Upload(context.Background(), "lunch", "r.png", strings.NewReader("\x89PNG\r\n\x1a\nxx"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	img, err := s.Image(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if img.ContentType != "image/png" {
		t.Fatalf("content type %q", img.ContentType)
	}

	// freshly uploaded records have no parsed data yet
	raw, _ := s.GetRaw(context.Background(), res.ID)
	if _, err := core.ValidateOne(raw); err == nil {
		t.Fatal("unparsed upload should not validate")
	}
	if err := s.SetData(res.ID, []byte(`{"date":"2024-02-02","total_amount":1,"store_name":"Y","items":[]}`)); err != nil {
		t.Fatalf("SetData: %v", err)
	}
	raw, _ = s.GetRaw(context.Background(), res.ID)
	if _, err := core.ValidateOne(raw); err != nil {
		t.Fatalf("parsed upload should validate: %v", err)
	}

	s.Add("no image", []byte(`{}`))
	if _, err := s.Image(context.Background(), "2"); !errors.Is(err, receipts.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing image, got %v", err)
	}
}
