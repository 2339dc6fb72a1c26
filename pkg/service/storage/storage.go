package storage

import (
	"bytes"
	"context"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// Service stores exported artifacts
type Service interface {
	// Upload writes data under name and returns its gs:// URL
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Client uploads objects to one Cloud Storage bucket
type Client struct {
	gcs    *storage.Client
	bucket string
	prefix string
}

var _ Service = (*Client)(nil)

type Option func(*Client)

// WithPrefix places every object below prefix
func WithPrefix(prefix string) Option {
	return func(c *Client) {
		c.prefix = prefix
	}
}

// New connects to Cloud Storage with application default credentials
func New(ctx context.Context, bucket string, opts ...Option) (*Client, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	gcs, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	c := &Client{gcs: gcs, bucket: bucket}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Close() error {
	if err := c.gcs.Close(); err != nil {
		return goerr.Wrap(err, "failed to close storage client", goerr.V("bucket", c.bucket))
	}
	return nil
}

func (c *Client) objectName(name string) string {
	if c.prefix == "" {
		return name
	}
	return path.Join(c.prefix, name)
}

func (c *Client) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	objName := c.objectName(name)

	// the writer aborts instead of committing when its context is canceled
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := c.gcs.Bucket(c.bucket).Object(objName).NewWriter(wctx)
	w.ContentType = contentType

	if err := writeObject(w, data, cancel); err != nil {
		return "", goerr.Wrap(err, "failed to upload object",
			goerr.V("bucket", c.bucket), goerr.V("object", objName))
	}
	return "gs://" + c.bucket + "/" + objName, nil
}

// writeObject copies data into w and commits it on Close. When the copy
// fails, abort runs before Close so no partial object is stored.
func writeObject(w io.WriteCloser, data []byte, abort context.CancelFunc) error {
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		abort()
		_ = w.Close()
		return goerr.Wrap(err, "failed to write object")
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object")
	}
	return nil
}
