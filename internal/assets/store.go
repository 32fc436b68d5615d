// Package assets offloads inline base64 photos to object storage. Snapshots
// travel between machines as self-contained JSON, so photos arrive as data
// URLs; a configured bucket lets the server swap them for small references
// and keep the stored document light. A nil Store leaves data URLs inline.
package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const refPrefix = "asset://"

type Store struct {
	client *minio.Client
	bucket string
}

func New(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	return &Store{client: client, bucket: bucket}, nil
}

// OffloadDataURL uploads an inline data URL under key and returns an
// asset:// reference. Values that are not data URLs, and all values when the
// store is disabled, come back unchanged. Upload failures keep the photo
// inline rather than losing it.
func (s *Store) OffloadDataURL(ctx context.Context, key, value string) string {
	if s == nil || !IsDataURL(value) {
		return value
	}
	mimeType, payload, err := ParseDataURL(value)
	if err != nil {
		log.Printf("assets: parse data url for %s: %v", key, err)
		return value
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		log.Printf("assets: upload %s: %v", key, err)
		return value
	}
	return refPrefix + key
}

// Fetch returns the bytes and content type behind an asset:// reference.
func (s *Store) Fetch(ctx context.Context, ref string) ([]byte, string, error) {
	if s == nil {
		return nil, "", fmt.Errorf("asset storage not configured")
	}
	key, ok := ParseRef(ref)
	if !ok {
		return nil, "", fmt.Errorf("not an asset reference: %s", ref)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("get object %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("read object %s: %w", key, err)
	}
	stat, err := obj.Stat()
	if err != nil {
		return nil, "", fmt.Errorf("stat object %s: %w", key, err)
	}
	return data, stat.ContentType, nil
}

// Inline resolves an asset:// reference back to a data URL, for export.
// Inline is the inverse of OffloadDataURL; non-references pass through.
func (s *Store) Inline(ctx context.Context, value string) string {
	if s == nil {
		return value
	}
	if _, ok := ParseRef(value); !ok {
		return value
	}
	data, mimeType, err := s.Fetch(ctx, value)
	if err != nil {
		log.Printf("assets: inline %s: %v", value, err)
		return value
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func IsDataURL(value string) bool {
	return strings.HasPrefix(value, "data:")
}

// ParseRef extracts the object key from an asset:// reference.
func ParseRef(value string) (string, bool) {
	if !strings.HasPrefix(value, refPrefix) {
		return "", false
	}
	key := value[len(refPrefix):]
	if key == "" {
		return "", false
	}
	return key, true
}

// ParseDataURL splits a base64 data URL into its media type and raw bytes.
func ParseDataURL(value string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(value, "data:")
	if !ok {
		return "", nil, fmt.Errorf("missing data: prefix")
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("missing payload separator")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("unsupported encoding in %q", meta)
	}
	mimeType := strings.TrimSuffix(meta, ";base64")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("decode payload: %w", err)
	}
	return mimeType, payload, nil
}
