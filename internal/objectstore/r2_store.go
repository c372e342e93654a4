// Package objectstore provides the durable storage backends for generated
// audio: Cloudflare R2 through its S3-compatible API, and NATS JetStream for
// deployments that keep audio inside the messaging cluster.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Environment variables injected by the hosting platform. They are read at
// store construction and only checked for presence, not validity.
const (
	envAccountID       = "R2_ACCOUNT_ID"
	envAccessKeyID     = "R2_ACCESS_KEY_ID"
	envSecretAccessKey = "R2_SECRET_ACCESS_KEY"
	envBucketName      = "R2_BUCKET_NAME"
	envPublicURL       = "R2_PUBLIC_URL"
)

// defaultBucket is used when the platform does not name a bucket.
const defaultBucket = "audio-studio"

// endpointFormat builds the R2 S3 endpoint from the account id.
const endpointFormat = "%s.r2.cloudflarestorage.com"

// r2Region is the only region R2 accepts.
const r2Region = "auto"

// Static errors.
var (
	ErrAccountIDMissing       = errors.New("R2_ACCOUNT_ID is not set")
	ErrAccessKeyIDMissing     = errors.New("R2_ACCESS_KEY_ID is not set")
	ErrSecretAccessKeyMissing = errors.New("R2_SECRET_ACCESS_KEY is not set")
)

// R2Store implements core.ObjectStore against a Cloudflare R2 bucket.
type R2Store struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// NewR2Store wraps an existing S3 client. The publicBaseURL is the
// externally reachable address of the bucket; uploaded objects are announced
// as publicBaseURL + "/" + key.
func NewR2Store(client *minio.Client, bucket, publicBaseURL string) *R2Store {
	return &R2Store{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// NewR2StoreFromEnv builds an R2Store from the platform-injected environment.
func NewR2StoreFromEnv() (*R2Store, error) {
	accountID := os.Getenv(envAccountID)
	if accountID == "" {
		return nil, ErrAccountIDMissing
	}

	accessKeyID := os.Getenv(envAccessKeyID)
	if accessKeyID == "" {
		return nil, ErrAccessKeyIDMissing
	}

	secretAccessKey := os.Getenv(envSecretAccessKey)
	if secretAccessKey == "" {
		return nil, ErrSecretAccessKeyMissing
	}

	bucket := os.Getenv(envBucketName)
	if bucket == "" {
		bucket = defaultBucket
	}

	endpoint := fmt.Sprintf(endpointFormat, accountID)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: true,
		Region: r2Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create R2 client for endpoint '%s': %w", endpoint, err)
	}

	return NewR2Store(client, bucket, os.Getenv(envPublicURL)), nil
}

// Upload writes the payload under key, overwriting any previous object, and
// returns the public URL. A single attempt is made; retry policy belongs to
// the invoking platform.
func (s *R2Store) Upload(
	ctx context.Context,
	key string,
	data []byte,
	contentType string,
) (string, error) {
	reader := bytes.NewReader(data)

	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType,
		})
	if err != nil {
		return "", fmt.Errorf(
			"failed to put object '%s' to bucket '%s': %w",
			key,
			s.bucket,
			err,
		)
	}

	return s.PublicURL(key), nil
}

// PublicURL returns the externally reachable address for a key.
func (s *R2Store) PublicURL(key string) string {
	return s.publicBaseURL + "/" + key
}
