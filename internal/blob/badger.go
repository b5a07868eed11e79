package blob

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/pjecz/plataforma-web/internal/metrics"
)

// Badger keeps objects in a local badger database. Its URLs point at the
// application's own file route.
type Badger struct {
	db      *badger.DB
	dataDir string
	baseURL string
	logger  *log.Logger
	metrics *metrics.Metrics
}

type badgerEntry struct {
	ContentType string `msgpack:"ct"`
	Data        []byte `msgpack:"d"`
	Updated     int64  `msgpack:"u"`
}

// NewBadger opens the store configured through opts
func NewBadger(m *metrics.Metrics, opts ...BadgerOptionFunc) (*Badger, error) {
	b := &Badger{metrics: m}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = log.StandardLogger()
	}
	badgerOpts := badger.DefaultOptions(b.dataDir).
		WithLogger(b.logger).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)
	if b.dataDir == "" {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, errors.Wrap(err, "badger blob: failed to open")
	}
	b.db = db
	return b, nil
}

// Put stores data at path
func (b *Badger) Put(_ context.Context, path string, data []byte, contentType string) (string, error) {
	raw, err := msgpack.Marshal(
		badgerEntry{
			ContentType: contentType,
			Data:        data,
			Updated:     time.Now().Unix(),
		},
	)
	if err != nil {
		return "", errors.WithStack(err)
	}
	err = b.db.Update(
		func(txn *badger.Txn) error {
			return txn.Set([]byte(path), raw)
		},
	)
	b.metrics.BlobOp("badger", "put", err)
	if err != nil {
		return "", errors.Wrapf(err, "badger blob: failed to write '%s'", path)
	}
	return joinURL(b.baseURL, path), nil
}

// Get reads the object at path
func (b *Badger) Get(_ context.Context, path string) ([]byte, string, error) {
	var e badgerEntry
	err := b.db.View(
		func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(path))
			if err != nil {
				return err
			}
			return item.Value(
				func(val []byte) error {
					return msgpack.Unmarshal(val, &e)
				},
			)
		},
	)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, "", ErrNotFound
	}
	b.metrics.BlobOp("badger", "get", err)
	if err != nil {
		return nil, "", errors.Wrapf(err, "badger blob: failed to read '%s'", path)
	}
	return e.Data, e.ContentType, nil
}

// List returns the objects under prefix, in key order
func (b *Badger) List(_ context.Context, prefix string) ([]Object, error) {
	var objs []Object
	err := b.db.View(
		func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			p := []byte(prefix)
			for it.Seek(p); it.ValidForPrefix(p); it.Next() {
				item := it.Item()
				var e badgerEntry
				if err := item.Value(
					func(val []byte) error {
						return msgpack.Unmarshal(val, &e)
					},
				); err != nil {
					return err
				}
				path := string(item.KeyCopy(nil))
				objs = append(
					objs, Object{
						Path:    path,
						Size:    int64(len(e.Data)),
						Updated: time.Unix(e.Updated, 0).UTC(),
						URL:     joinURL(b.baseURL, path),
					},
				)
			}
			return nil
		},
	)
	b.metrics.BlobOp("badger", "list", err)
	if err != nil {
		return nil, errors.Wrapf(err, "badger blob: failed to list '%s'", prefix)
	}
	return objs, nil
}

// Close closes the database
func (b *Badger) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}
