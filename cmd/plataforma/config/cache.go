package config

import (
	"github.com/redis/go-redis/v9"
	"github.com/zachmann/go-utils/duration"
)

// cachingConf selects where the task guard keeps its locks. Without a redis
// address the locks live in memory.
type cachingConf struct {
	RedisAddr string                  `yaml:"redis_addr"`
	Username  string                  `yaml:"username"`
	Password  string                  `yaml:"password"`
	RedisDB   int                     `yaml:"redis_db"`
	TaskTTL   duration.DurationOption `yaml:"task_ttl"`
}

var defaultCachingConf = cachingConf{
	TaskTTL: duration.DurationOption(defaultTaskTTL),
}

// RedisOptions returns the client options, or nil when redis is not configured
func (c cachingConf) RedisOptions() *redis.Options {
	if c.RedisAddr == "" {
		return nil
	}
	return &redis.Options{
		Addr:     c.RedisAddr,
		Username: c.Username,
		Password: c.Password,
		DB:       c.RedisDB,
	}
}
