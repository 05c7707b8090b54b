package natsclient

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/scriptbridge/errors"
)

// CreateKeyValueBucket creates a JetStream key-value bucket, returning
// the existing bucket when one with the same name is already present
func (c *Client) CreateKeyValueBucket(ctx context.Context, cfg jetstream.KeyValueConfig) (jetstream.KeyValue, error) {
	js := c.JetStream()
	if js == nil {
		return nil, errors.WrapInvalidState(ErrNotConnected, "Client", "CreateKeyValueBucket", "bucket setup")
	}

	kv, err := js.CreateKeyValue(ctx, cfg)
	if err != nil {
		if stderrors.Is(err, jetstream.ErrBucketExists) {
			return c.KeyValue(ctx, cfg.Bucket)
		}
		return nil, errors.WrapInternal(err, "Client", "CreateKeyValueBucket",
			fmt.Sprintf("create bucket %s", cfg.Bucket))
	}
	return kv, nil
}

// KeyValue binds to an existing key-value bucket
func (c *Client) KeyValue(ctx context.Context, bucket string) (jetstream.KeyValue, error) {
	js := c.JetStream()
	if js == nil {
		return nil, errors.WrapInvalidState(ErrNotConnected, "Client", "KeyValue", "bucket lookup")
	}

	kv, err := js.KeyValue(ctx, bucket)
	if err != nil {
		if stderrors.Is(err, jetstream.ErrBucketNotFound) {
			return nil, errors.WrapNotFound(err, "Client", "KeyValue",
				fmt.Sprintf("bucket %s lookup", bucket))
		}
		return nil, errors.WrapInternal(err, "Client", "KeyValue",
			fmt.Sprintf("bind bucket %s", bucket))
	}
	return kv, nil
}
