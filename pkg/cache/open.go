package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend         string
	Dir             string
	RedisURL        string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open creates the backend named by opts.Backend. An empty name selects
// the file cache.
func Open(ctx context.Context, opts Options) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch opts.Backend {
	case "", BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: no directory")
		}
		var fc *FileCache
		if fc, err = NewFileCache(opts.Dir); err == nil {
			c = fc
		}
	case BackendRedis:
		var rc *RedisCache
		if rc, err = NewRedisCache(ctx, opts.RedisURL); err == nil {
			c = rc
		}
	case BackendMongo:
		var mc *MongoCache
		if mc, err = NewMongoCache(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection); err == nil {
			c = mc
		}
	case BackendNone:
		c = NewNullCache()
	default:
		err = fmt.Errorf("%w: %q", ErrBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
