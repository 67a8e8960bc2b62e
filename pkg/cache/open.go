package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendNone   = "none"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendBadger = "badger"
)

// Config selects and configures a backend. It maps to the [cache] table of
// the configuration file.
type Config struct {
	Backend         string        `toml:"backend" json:"backend"`
	Dir             string        `toml:"dir" json:"dir,omitempty"`
	RedisAddr       string        `toml:"redis_addr" json:"redis_addr,omitempty"`
	RedisPassword   string        `toml:"redis_password" json:"-"`
	RedisDB         int           `toml:"redis_db" json:"redis_db,omitempty"`
	MongoURI        string        `toml:"mongo_uri" json:"-"`
	MongoDatabase   string        `toml:"mongo_database" json:"mongo_database,omitempty"`
	MongoCollection string        `toml:"mongo_collection" json:"mongo_collection,omitempty"`
	TTL             time.Duration `toml:"ttl" json:"ttl,omitempty"`
	// Namespace prefixes every key, so that several installations can share
	// one redis or mongo backend without reading each other's entries.
	Namespace string `toml:"namespace" json:"namespace,omitempty"`
}

// Open builds the backend named by cfg.Backend. An empty name selects the
// file backend, which needs cfg.Dir.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch cfg.Backend {
	case "", BackendFile:
		c, err = NewFileCache(cfg.Dir)
	case BackendNone:
		c = NewNullCache()
	case BackendRedis:
		c, err = NewRedisCache(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case BackendMongo:
		c, err = NewMongoCache(ctx, MongoOptions{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	case BackendBadger:
		c, err = NewBadgerCache(BadgerOptions{Dir: cfg.Dir, Logger: logger})
	default:
		return nil, fmt.Errorf("%w: %q (want file, none, redis, mongo or badger)", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// TTLOr returns the configured TTL, or def when none is set.
func (c Config) TTLOr(def time.Duration) time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return def
}

// Keyer returns the keyer for cfg: DefaultKeyer, scoped to Namespace when
// one is set.
func (c Config) Keyer() Keyer {
	if c.Namespace == "" {
		return NewDefaultKeyer()
	}
	return NewScopedKeyer(NewDefaultKeyer(), c.Namespace+":")
}
