package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// natsURLScheme prefixes announced object addresses when no public base URL
// is configured for the bucket.
const natsURLScheme = "nats"

// headerContentType records the payload's content type on the stored object.
const headerContentType = "Content-Type"

// NatsStore implements core.ObjectStore on a NATS JetStream object-store
// bucket. It serves deployments where audio stays inside the messaging
// cluster instead of an external bucket.
type NatsStore struct {
	bucket        string
	store         nats.ObjectStore
	publicBaseURL string
}

// NewNatsStore creates or binds to the named JetStream bucket. The
// publicBaseURL is optional; without it, uploaded objects are announced with
// a nats:// address.
func NewNatsStore(
	jetstreamContext nats.JetStreamContext,
	bucketName, publicBaseURL string,
) (*NatsStore, error) {
	// Use a "create-first" approach.
	store, err := jetstreamContext.CreateObjectStore(&nats.ObjectStoreConfig{
		Bucket:      bucketName,
		Description: fmt.Sprintf("Generated audio for the %s bucket.", bucketName),
		TTL:         0,
		MaxBytes:    0,
		Storage:     nats.FileStorage,
		Replicas:    1,
		Placement:   nil,
		Metadata:    nil,
		Compression: false,
	})

	// If the bucket already exists, bind to it.
	if err != nil {
		if errors.Is(err, jetstream.ErrBucketExists) {
			store, err = jetstreamContext.ObjectStore(bucketName)
			if err != nil {
				return nil, fmt.Errorf(
					"failed to bind to existing object store bucket '%s': %w",
					bucketName,
					err,
				)
			}
		} else {
			// For any other error, fail.
			return nil, fmt.Errorf(
				"failed to create object store bucket '%s': %w",
				bucketName,
				err,
			)
		}
	}

	return &NatsStore{
		bucket:        bucketName,
		store:         store,
		publicBaseURL: publicBaseURL,
	}, nil
}

// Upload saves the payload under key, overwriting any previous object, and
// returns the address the object is reachable at.
func (n *NatsStore) Upload(
	_ context.Context,
	key string,
	data []byte,
	contentType string,
) (string, error) {
	reader := bytes.NewReader(data)

	_, err := n.store.Put(&nats.ObjectMeta{
		Name:        key,
		Description: "",
		Headers:     nats.Header{headerContentType: []string{contentType}},
		Metadata:    nil,
		Opts:        nil,
	}, reader)
	if err != nil {
		return "", fmt.Errorf(
			"failed to put object '%s' to bucket '%s': %w",
			key,
			n.bucket,
			err,
		)
	}

	return n.PublicURL(key), nil
}

// Download retrieves an object previously uploaded to the bucket.
func (n *NatsStore) Download(_ context.Context, key string) ([]byte, error) {
	obj, err := n.store.Get(key)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to get object '%s' from bucket '%s': %w",
			key,
			n.bucket,
			err,
		)
	}

	data, readErr := io.ReadAll(obj)
	closeErr := obj.Close()

	if readErr != nil {
		return nil, fmt.Errorf("failed to read object '%s': %w", key, readErr)
	}

	if closeErr != nil {
		return data, fmt.Errorf("failed to close object '%s': %w", key, closeErr)
	}

	return data, nil
}

// PublicURL returns the address announced for a key.
func (n *NatsStore) PublicURL(key string) string {
	if n.publicBaseURL != "" {
		return n.publicBaseURL + "/" + key
	}

	return fmt.Sprintf("%s://%s/%s", natsURLScheme, n.bucket, key)
}
