package cache

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"

	errs "github.com/matzehuels/skelgraph/pkg/errors"
)

// BadgerCache stores entries in an embedded BadgerDB, using Badger's entry
// TTL for expiry.
type BadgerCache struct {
	db *badger.DB
}

// BadgerOptions configures a BadgerCache.
type BadgerOptions struct {
	// Dir is the database directory. Ignored when InMemory is set.
	Dir string
	// InMemory keeps everything in RAM; data is lost on Close.
	InMemory bool
	// Logger receives Badger's internal messages. Nil silences them.
	Logger *log.Logger
}

// badgerLogger adapts a charm logger to badger.Logger.
type badgerLogger struct{ l *log.Logger }

func (b badgerLogger) Errorf(f string, args ...any)   { b.l.Errorf(f, args...) }
func (b badgerLogger) Warningf(f string, args ...any) { b.l.Warnf(f, args...) }
func (b badgerLogger) Infof(f string, args ...any)    { b.l.Debugf(f, args...) }
func (b badgerLogger) Debugf(f string, args ...any)   { b.l.Debugf(f, args...) }

// NewBadgerCache opens (or creates) a Badger database.
func NewBadgerCache(opts BadgerOptions) (*BadgerCache, error) {
	var bo badger.Options
	if opts.InMemory {
		bo = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Dir == "" {
			return nil, errs.New(errs.ErrCodeInvalidConfig, "badger directory is required")
		}
		if err := os.MkdirAll(opts.Dir, 0o750); err != nil {
			return nil, errs.Wrap(errs.ErrCodeIO, err, "create badger dir %s", opts.Dir)
		}
		bo = badger.DefaultOptions(opts.Dir)
	}
	bo = bo.WithNumVersionsToKeep(1)
	if opts.Logger != nil {
		bo = bo.WithLogger(badgerLogger{opts.Logger})
	} else {
		bo = bo.WithLogger(nil)
	}

	db, err := badger.Open(bo)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "open badger")
	}
	return &BadgerCache{db: db}, nil
}

// Get returns the entry for key. Expired entries are invisible to Badger
// reads and surface as misses.
func (c *BadgerCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := errs.ValidateCacheKey(key); err != nil {
		return nil, false, err
	}
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.Wrap(errs.ErrCodeIO, err, "badger get")
	}
	return data, true, nil
}

// Set stores data under key.
func (c *BadgerCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	if err := errs.ValidateCacheKey(key); err != nil {
		return err
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "badger set")
	}
	return nil
}

// Delete removes key.
func (c *BadgerCache) Delete(_ context.Context, key string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "badger delete")
	}
	return nil
}

// Close flushes and closes the database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}

var _ Cache = (*BadgerCache)(nil)
