// Package media stores dish pictures, either inline in the dish row or in an
// S3-compatible bucket.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	ErrTooLarge    = errors.New("media: image too large")
	ErrUnsupported = errors.New("media: unsupported image type")
)

// ImageStore saves an image and returns the value to put in Dish.RecipeImage.
type ImageStore interface {
	Put(ctx context.Context, name string, r io.Reader) (string, error)
}

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// readImage reads at most max bytes from r and sniffs the content type.
func readImage(r io.Reader, max int64) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, "", fmt.Errorf("media: read: %w", err)
	}
	if int64(len(data)) > max {
		return nil, "", ErrTooLarge
	}
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	if _, ok := allowedTypes[ct]; !ok {
		return nil, "", ErrUnsupported
	}
	return data, ct, nil
}

// InlineStore encodes images as data URLs.
type InlineStore struct {
	MaxBytes int64
}

func NewInlineStore(maxBytes int64) *InlineStore {
	return &InlineStore{MaxBytes: maxBytes}
}

func (s *InlineStore) Put(_ context.Context, _ string, r io.Reader) (string, error) {
	data, ct, err := readImage(r, s.MaxBytes)
	if err != nil {
		return "", err
	}
	var b bytes.Buffer
	b.WriteString("data:")
	b.WriteString(ct)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String(), nil
}
