package config

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pjecz/plataforma-web/internal/blob"
	"github.com/pjecz/plataforma-web/internal/metrics"
)

// Blob backends
const (
	BlobBackendBadger = "badger"
	BlobBackendGCS    = "gcs"
)

// blobConf selects the object store for uploaded PDFs
//
// YAML example:
//
//	blob:
//	  backend: gcs
//	  gcs:
//	    bucket: pjecz-consultas
//	    credentials_file: /etc/plataforma/gcs.json
//	    public_base_url: https://storage.googleapis.com/pjecz-consultas
type blobConf struct {
	Backend string         `yaml:"backend"`
	Badger  badgerBlobConf `yaml:"badger"`
	GCS     gcsBlobConf    `yaml:"gcs"`
}

type badgerBlobConf struct {
	DataDir string `yaml:"data_dir"`
	// BaseURL prefixes the download URLs, usually <external_url>/api/v1/archivos
	BaseURL string `yaml:"base_url"`
}

type gcsBlobConf struct {
	Bucket          string `yaml:"bucket"`
	CredentialsFile string `yaml:"credentials_file"`
	PublicBaseURL   string `yaml:"public_base_url"`
}

func (c *blobConf) validate() error {
	switch c.Backend {
	case BlobBackendBadger:
		if c.Badger.DataDir == "" {
			return errors.New("error in blob conf: badger.data_dir must be specified")
		}
	case BlobBackendGCS:
		if c.GCS.Bucket == "" {
			return errors.New("error in blob conf: gcs.bucket must be specified")
		}
	default:
		return errors.Errorf("error in blob conf: unknown backend '%s'", c.Backend)
	}
	return nil
}

var defaultBlobConf = blobConf{
	Backend: BlobBackendBadger,
	Badger: badgerBlobConf{
		DataDir: "data/archivos",
	},
}

// OpenBlobStore opens the configured object store. externalURL is used for
// the badger download URLs when no base_url is set.
func OpenBlobStore(ctx context.Context, c blobConf, externalURL string, m *metrics.Metrics) (blob.Store, error) {
	if c.Backend == BlobBackendGCS {
		opts := []blob.GCSOptionFunc{
			blob.WithBucket(c.GCS.Bucket),
			blob.WithCredentialsFile(c.GCS.CredentialsFile),
			blob.WithGCSLogger(log.WithField("blob", "gcs")),
		}
		if c.GCS.PublicBaseURL != "" {
			opts = append(opts, blob.WithPublicBaseURL(c.GCS.PublicBaseURL))
		}
		store, err := blob.NewGCS(ctx, m, opts...)
		if err != nil {
			return nil, err
		}
		log.WithField("bucket", c.GCS.Bucket).Info("Opened GCS object store")
		return store, nil
	}
	base := c.Badger.BaseURL
	if base == "" {
		base = externalURL + "/api/v1/archivos"
	}
	store, err := blob.NewBadger(
		m,
		blob.WithDataDir(c.Badger.DataDir),
		blob.WithBaseURL(base),
		blob.WithBadgerLogger(log.StandardLogger()),
	)
	if err != nil {
		return nil, err
	}
	log.WithField("data_dir", c.Badger.DataDir).Info("Opened badger object store")
	return store, nil
}
