package recipedex

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "redis" or "bolt"
	addrs    []string
	password string
	boltPath string

	embedStrategy string
	dimensions    int

	keyPrefix string
	readiness time.Duration
	cacheTTL  time.Duration

	hnswM           int
	hnswEFConstruct int

	logger *zap.Logger
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithBolt configures the client to use an embedded bbolt file store.
func WithBolt(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "bolt"
		c.boltPath = path
	})
}

// WithEmbedding selects the embedding strategy ("hash", "token") and vector
// dimensionality.
func WithEmbedding(strategy string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedStrategy = strategy
		c.dimensions = dimensions
	})
}

// WithKeyPrefix overrides the storage key prefix.
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithReadinessTimeout overrides how long the client waits for the backend
// before falling back to the in-memory store.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readiness = d
	})
}

// WithSearchCacheTTL overrides how long cached search results stay valid.
// Zero disables the search cache.
func WithSearchCacheTTL(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = d
	})
}

// WithHNSW tunes the backend vector index build parameters.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithLogger injects a logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = logger
	})
}
