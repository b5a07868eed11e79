// Package config loads the configuration of the plataforma server and CLI.
package config

import (
	"os"
	"reflect"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/pjecz/plataforma-web"
)

// EnvPrefix prefixes the environment variables that override the file
const EnvPrefix = "PLATAFORMA"

// Config holds the complete configuration
type Config struct {
	Server   plataforma.ServerConf `yaml:"server"`
	Storage  storageConf           `yaml:"storage"`
	Logging  loggingConf           `yaml:"logging"`
	Blob     blobConf              `yaml:"blob"`
	Hashids  hashidsConf           `yaml:"hashids"`
	Workflow workflowConf          `yaml:"workflow"`
	Caching  cachingConf           `yaml:"caching"`
	API      apiConf               `yaml:"api"`
	Metrics  metricsConf           `yaml:"metrics"`
}

// envOverrides are the secrets and addresses that deployments usually pass
// through the environment.
type envOverrides struct {
	StorageDSN      string `envconfig:"STORAGE_DSN"`
	StoragePassword string `envconfig:"STORAGE_PASSWORD"`
	BlobBucket      string `envconfig:"BLOB_BUCKET"`
	HashidsSalt     string `envconfig:"HASHIDS_SALT"`
	AcuseSecret     string `envconfig:"ACUSE_SECRET"`
	RedisAddr       string `envconfig:"REDIS_ADDR"`
	RedisPassword   string `envconfig:"REDIS_PASSWORD"`
	Port            int    `envconfig:"PORT"`
}

func (e envOverrides) apply(c *Config) {
	setIfNotZero := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setIfNotZero(&c.Storage.DSN, e.StorageDSN)
	setIfNotZero(&c.Storage.Password, e.StoragePassword)
	setIfNotZero(&c.Blob.GCS.Bucket, e.BlobBucket)
	setIfNotZero(&c.Hashids.Salt, e.HashidsSalt)
	setIfNotZero(&c.Workflow.AcuseSecret, e.AcuseSecret)
	setIfNotZero(&c.Caching.RedisAddr, e.RedisAddr)
	setIfNotZero(&c.Caching.Password, e.RedisPassword)
	if e.Port != 0 {
		c.Server.Port = e.Port
	}
}

var c *Config

var defaultConfig = Config{
	Server: plataforma.ServerConf{
		Port: 8765,
	},
	Storage:  defaultStorageConf,
	Logging:  defaultLoggingConf,
	Blob:     defaultBlobConf,
	Hashids:  defaultHashidsConf,
	Workflow: defaultWorkflowConf,
	Caching:  defaultCachingConf,
	API:      defaultAPIConf,
	Metrics:  defaultMetricsConf,
}

// Get returns the Config
func Get() *Config {
	return c
}

// Load loads the configuration from the given file and the environment.
// It terminates the program on error.
func Load(filename string) {
	conf, err := LoadFile(filename)
	if err != nil {
		log.WithError(err).Fatal("could not load config")
	}
	c = conf
}

// LoadFile reads and validates the configuration without touching the
// package state. A missing file name uses the defaults.
func LoadFile(filename string) (*Config, error) {
	conf := defaultConfig
	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, errors.Wrap(err, "could not read config file")
		}
		if err = yaml.Unmarshal(data, &conf); err != nil {
			return nil, errors.Wrap(err, "could not parse config file")
		}
	}
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, errors.Wrap(err, "error processing environment")
	}
	env.apply(&conf)
	if err := validate(&conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

type validater interface {
	validate() error
}

func validate(conf *Config) error {
	if conf.Server.Port == 0 && !conf.Server.TLS.Enabled {
		return errors.New("error in server conf: port must be specified")
	}
	v := reflect.ValueOf(conf).Elem()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanAddr() {
			continue
		}
		if val, ok := field.Addr().Interface().(validater); ok {
			if err := val.validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
