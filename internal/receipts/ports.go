// Package receipts connects the validator to the receipt-parsing backend.
package receipts

import (
	"context"
	"io"
	"time"
)

// Ports for the receipt backend.
type (
	// Lister returns the raw receipt list body, one element per record.
	Lister interface {
		ListRaw(ctx context.Context) ([]any, error)
	}

	// Getter returns the raw body of a single receipt.
	Getter interface {
		GetRaw(ctx context.Context, id string) (any, error)
	}

	// Uploader forwards a receipt image to the backend for parsing.
	Uploader interface {
		Upload(ctx context.Context, label, filename string, image io.Reader) (UploadResult, error)
	}

	// ImageFetcher returns the stored image of a receipt.
	ImageFetcher interface {
		Image(ctx context.Context, id string) (Image, error)
	}

	// Backend is everything the BFF needs from the receipt service.
	Backend interface {
		Lister
		Getter
		Uploader
		ImageFetcher
	}
)

// UploadResult is the backend's acknowledgement of an upload.
type UploadResult struct {
	ID        string    `json:"id"`
	Label     string    `json:"name"`
	Key       string    `json:"key,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Image is a receipt image as served by the backend.
type Image struct {
	Data        []byte
	ContentType string
}
