package blob

import (
	"context"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/pjecz/plataforma-web/internal/metrics"
)

const defaultPublicBaseURL = "https://storage.googleapis.com"

// GCS stores objects in a Google Cloud Storage bucket
type GCS struct {
	client          *storage.Client
	bucket          *storage.BucketHandle
	bucketName      string
	credentialsFile string
	publicBaseURL   string
	logger          log.FieldLogger
	metrics         *metrics.Metrics
}

// NewGCS connects to the bucket configured through opts
func NewGCS(ctx context.Context, m *metrics.Metrics, opts ...GCSOptionFunc) (*GCS, error) {
	g := &GCS{
		publicBaseURL: defaultPublicBaseURL,
		metrics:       m,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = log.StandardLogger()
	}
	if g.bucketName == "" {
		return nil, errors.New("gcs blob: bucket not set")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	var clientOpts []option.ClientOption
	if g.credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(g.credentialsFile))
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "gcs blob: failed in creating storage client")
	}
	g.client = client
	g.bucket = client.Bucket(g.bucketName)
	g.logger.WithField("bucket", g.bucketName).Info("Connected to GCS bucket")
	return g, nil
}

// Put uploads data and returns the object's public URL
func (g *GCS) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	w := g.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		g.metrics.BlobOp("gcs", "put", err)
		return "", errors.Wrapf(err, "gcs blob: failed to write '%s'", path)
	}
	if err := w.Close(); err != nil {
		g.metrics.BlobOp("gcs", "put", err)
		return "", errors.Wrapf(err, "gcs blob: failed to close writer for '%s'", path)
	}
	g.metrics.BlobOp("gcs", "put", nil)
	g.logger.WithField("path", path).Debug("Uploaded object")
	return joinURL(g.publicBaseURL, g.bucketName+"/"+path), nil
}

// Get downloads an object
func (g *GCS) Get(ctx context.Context, path string) ([]byte, string, error) {
	r, err := g.bucket.Object(path).NewReader(ctx)
	if err != nil {
		g.metrics.BlobOp("gcs", "get", err)
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", errors.Wrapf(err, "gcs blob: failed to read '%s'", path)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	g.metrics.BlobOp("gcs", "get", err)
	if err != nil {
		return nil, "", errors.Wrapf(err, "gcs blob: failed to read '%s'", path)
	}
	return data, r.Attrs.ContentType, nil
}

// List returns the objects under prefix
func (g *GCS) List(ctx context.Context, prefix string) ([]Object, error) {
	var objs []Object
	it := g.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			g.metrics.BlobOp("gcs", "list", err)
			return nil, errors.Wrapf(err, "gcs blob: failed to list '%s'", prefix)
		}
		objs = append(
			objs, Object{
				Path:    attrs.Name,
				Size:    attrs.Size,
				Updated: attrs.Updated,
				URL:     joinURL(g.publicBaseURL, g.bucketName+"/"+attrs.Name),
			},
		)
	}
	g.metrics.BlobOp("gcs", "list", nil)
	return objs, nil
}

// Close closes the GCS client
func (g *GCS) Close() error {
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}
