package storage

import (
	"context"
	"io"
)

// Uploader archives call audio. Implementations return a URL the stored
// object can be fetched from.
type Uploader interface {
	Upload(ctx context.Context, objectName, contentType string, r io.Reader) (url string, err error)
}
