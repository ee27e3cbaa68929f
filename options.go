package geodex

import "go.uber.org/zap"

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs          []string
	username       string
	password       string
	keyPrefix      string
	maxRadiusMiles float64
	blendText      float64
	blendDist      float64
	maxCandidates  int
	cacheSize      int
	logger         *zap.Logger
}

// WithRedis persists listings to Redis so indexes survive restarts.
// Without it the client runs memory-only.
func WithRedis(addrs []string, username, password string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
		c.username = username
		c.password = password
	}
}

// WithKeyPrefix overrides the Redis key namespace for listings.
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.keyPrefix = prefix
	}
}

// WithMaxRadiusMiles caps the radius accepted by Search.
func WithMaxRadiusMiles(miles float64) Option {
	return func(c *clientConfig) {
		c.maxRadiusMiles = miles
	}
}

// WithBlendWeights sets the text and distance weights for blended
// ranking. Defaults to 0.5/0.5.
func WithBlendWeights(text, distance float64) Option {
	return func(c *clientConfig) {
		c.blendText = text
		c.blendDist = distance
	}
}

// WithMaxCandidates caps how many candidates one query may rank.
func WithMaxCandidates(n int) Option {
	return func(c *clientConfig) {
		c.maxCandidates = n
	}
}

// WithCacheSize enables an LRU result cache with the given capacity.
func WithCacheSize(n int) Option {
	return func(c *clientConfig) {
		c.cacheSize = n
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
