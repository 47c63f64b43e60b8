package port

import (
	"context"

	"registrum/internal/domain"
)

// TextSource fetches already-OCR'd document text from upstream storage.
type TextSource interface {
	FetchText(ctx context.Context, bucket, key string) (*domain.TextInput, error)
}
