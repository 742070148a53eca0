// Package images decides where favorite meal images live. Inline data URIs
// can be offloaded to S3-compatible object storage so rows keep a short URL;
// without a bucket configured images are stored as sent.
package images

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mealmate/internal/common"
	"github.com/dmitrijs2005/mealmate/internal/server/config"
)

// ErrInvalidDataURI is returned for a "data:" image that cannot be decoded.
var ErrInvalidDataURI = fmt.Errorf("invalid data URI: %w", common.ErrorValidation)

// Store returns the value to persist for an image submitted by userID.
type Store interface {
	Put(ctx context.Context, userID, image string) (string, error)
}

// Passthrough keeps images exactly as submitted.
type Passthrough struct{}

func (Passthrough) Put(_ context.Context, _ string, image string) (string, error) {
	return image, nil
}

// New returns an S3Store when cfg names a bucket and Passthrough otherwise.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.S3Bucket == "" {
		return Passthrough{}, nil
	}
	return NewS3Store(ctx, cfg)
}

type dataURI struct {
	contentType string
	data        []byte
}

// parseDataURI decodes "data:<mime>;base64,<payload>". ok is false when s is
// not a data URI at all, in which case err is nil.
func parseDataURI(s string) (uri *dataURI, ok bool, err error) {
	rest, found := strings.CutPrefix(s, "data:")
	if !found {
		return nil, false, nil
	}

	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return nil, true, ErrInvalidDataURI
	}

	contentType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, true, ErrInvalidDataURI
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, true, errors.Join(ErrInvalidDataURI, err)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &dataURI{contentType: contentType, data: data}, true, nil
}

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}
