package blob

import (
	log "github.com/sirupsen/logrus"
)

// GCSOptionFunc configures a GCS store
type GCSOptionFunc func(*GCS)

// WithBucket specifies the GCS bucket name
func WithBucket(bucket string) GCSOptionFunc {
	return func(g *GCS) {
		g.bucketName = bucket
	}
}

// WithCredentialsFile specifies a service account key file; without one the
// application default credentials are used
func WithCredentialsFile(path string) GCSOptionFunc {
	return func(g *GCS) {
		g.credentialsFile = path
	}
}

// WithPublicBaseURL overrides https://storage.googleapis.com
func WithPublicBaseURL(base string) GCSOptionFunc {
	return func(g *GCS) {
		g.publicBaseURL = base
	}
}

// WithGCSLogger specifies the logger to use
func WithGCSLogger(logger log.FieldLogger) GCSOptionFunc {
	return func(g *GCS) {
		g.logger = logger
	}
}

// BadgerOptionFunc configures a Badger store
type BadgerOptionFunc func(*Badger)

// WithDataDir stores the objects under dir; without it the store is in memory
func WithDataDir(dir string) BadgerOptionFunc {
	return func(b *Badger) {
		b.dataDir = dir
	}
}

// WithBaseURL is the prefix of the URLs returned by Put
func WithBaseURL(base string) BadgerOptionFunc {
	return func(b *Badger) {
		b.baseURL = base
	}
}

// WithBadgerLogger specifies the logger to use
func WithBadgerLogger(logger *log.Logger) BadgerOptionFunc {
	return func(b *Badger) {
		b.logger = logger
	}
}
