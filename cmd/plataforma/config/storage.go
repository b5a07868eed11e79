package config

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pjecz/plataforma-web/storage"
	"github.com/pjecz/plataforma-web/storage/model"
)

type storageConf struct {
	Driver          storage.DriverType `yaml:"driver"`
	DataDir         string             `yaml:"data_dir"`
	DSN             string             `yaml:"dsn"`
	storage.DSNConf `yaml:",inline"`
	Debug           bool `yaml:"debug"`
	Tracing         bool `yaml:"tracing"`
}

func (c *storageConf) validate() error {
	if c.Driver == storage.DriverSQLite || c.Driver == storage.DriverSQLitePure {
		if c.DataDir == "" && c.DSN == "" {
			return errors.New("error in storage conf: data_dir must be specified")
		}
		return nil
	}
	var err error
	if c.DSN == "" {
		c.DSN, err = storage.DSN(c.Driver, c.DSNConf)
	}
	return err
}

var defaultStorageConf = storageConf{
	Driver: storage.DriverSQLite,
	DSNConf: storage.DSNConf{
		User: "plataforma",
		Host: "localhost",
		DB:   "plataforma_web",
	},
}

// StorageConfig converts the storage section into a storage.Config
func StorageConfig(c storageConf, usersHash storage.Argon2idParams) storage.Config {
	return storage.Config{
		Driver:    c.Driver,
		DSN:       c.DSN,
		DataDir:   c.DataDir,
		Debug:     c.Debug,
		Tracing:   c.Tracing,
		UsersHash: usersHash,
	}
}

// LoadStorageBackends loads and returns the storage backends for the passed Config
func LoadStorageBackends(c *Config) (model.Backends, error) {
	backs, err := storage.LoadStorageBackends(StorageConfig(c.Storage, c.API.Argon2idParams))
	if err != nil {
		return model.Backends{}, err
	}
	log.WithField("driver", c.Storage.Driver).Info("Loaded storage backend")
	return backs, nil
}
