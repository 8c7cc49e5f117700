package cache

import (
	"context"

	"payperless/internal/receipts"
)

var _ receipts.ImageFetcher = (*ImageFetcher)(nil)

// ImageFetcher serves receipt images from an LRU before asking the backend.
// Images never change for a given id; failures are not cached.
type ImageFetcher struct {
	next  receipts.ImageFetcher
	cache Cache[receipts.Image]
}

func NewImageFetcher(next receipts.ImageFetcher, c Cache[receipts.Image]) *ImageFetcher {
	return &ImageFetcher{next: next, cache: c}
}

func (f *ImageFetcher) Image(ctx context.Context, id string) (receipts.Image, error) {
	if img, ok := f.cache.Get(id); ok {
		return img, nil
	}
	img, err := f.next.Image(ctx, id)
	if err != nil {
		return receipts.Image{}, err
	}
	f.cache.Set(id, img)
	return img, nil
}
