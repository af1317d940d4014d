package staging

import (
	"context"
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"animator-service/internal/entity"
)

var (
	ErrUnsupportedReference = errors.New("unsupported asset reference")
	ErrBlobExpired          = errors.New("uploaded asset is no longer available")
)

// Uploader puts raw bytes into durable storage and returns their URI.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename, contentType string) (string, error)
}

// Stager turns any asset reference into a durable URI, uploading inline and
// ephemeral assets on the way. Durable references are returned unchanged.
type Stager struct {
	blobs    *BlobCache
	uploader Uploader
}

func NewStager(blobs *BlobCache, uploader Uploader) *Stager {
	return &Stager{blobs: blobs, uploader: uploader}
}

func (s *Stager) Stage(ctx context.Context, ref, filename string) (string, error) {
	switch entity.ClassifyAsset(ref) {
	case entity.AssetDurable:
		return strings.TrimSpace(ref), nil
	case entity.AssetInline:
		data, contentType, err := DecodeDataURI(ref)
		if err != nil {
			return "", errors.Wrapf(err, "decode %s", filename)
		}
		return s.upload(ctx, data, filename, contentType)
	case entity.AssetEphemeral:
		b, ok := s.blobs.Get(ref)
		if !ok {
			return "", errors.Wrapf(ErrBlobExpired, "stage %s", filename)
		}
		return s.upload(ctx, b.Data, filename, b.ContentType)
	case entity.AssetNone:
		return "", errors.Errorf("stage %s: empty asset reference", filename)
	default:
		return "", errors.Wrapf(ErrUnsupportedReference, "stage %s", filename)
	}
}

func (s *Stager) upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	uri, err := s.uploader.Upload(ctx, data, filename, contentType)
	if err != nil {
		return "", errors.Wrapf(err, "upload %s", filename)
	}
	return uri, nil
}

// DecodeDataURI parses "data:[<mediatype>][;base64],<data>".
func DecodeDataURI(ref string) ([]byte, string, error) {
	rest := strings.TrimSpace(ref)
	if len(rest) < len(entity.InlinePrefix) || !strings.EqualFold(rest[:len(entity.InlinePrefix)], entity.InlinePrefix) {
		return nil, "", ErrUnsupportedReference
	}
	rest = rest[len(entity.InlinePrefix):]

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errors.New("malformed data uri")
	}

	isBase64 := false
	contentType := "application/octet-stream"
	for i, part := range strings.Split(meta, ";") {
		switch {
		case i == 0 && part != "":
			contentType = part
		case strings.EqualFold(part, "base64"):
			isBase64 = true
		}
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", errors.Wrap(err, "decode base64 payload")
		}
		return data, contentType, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", errors.Wrap(err, "unescape payload")
	}
	return []byte(unescaped), contentType, nil
}
