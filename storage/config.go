package storage

import (
	"fmt"
	"path/filepath"
	"time"

	puresqlite "github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

const sqliteBusyTimeout = 10 * time.Second

// DriverType represents the type of database driver
type DriverType string

const (
	// DriverSQLite is the SQLite driver (cgo)
	DriverSQLite DriverType = "sqlite"
	// DriverSQLitePure is the pure-Go SQLite driver
	DriverSQLitePure DriverType = "sqlite-pure"
	// DriverMySQL is the MySQL driver
	DriverMySQL DriverType = "mysql"
	// DriverPostgres is the PostgreSQL driver
	DriverPostgres DriverType = "postgres"
)

var SupportedDrivers = []DriverType{
	DriverSQLite,
	DriverSQLitePure,
	DriverMySQL,
	DriverPostgres,
}

// DSN creates and returns a dsn connection string for the passed DriverType and DSNConf
func DSN(driver DriverType, conf DSNConf) (string, error) {
	switch driver {
	case DriverSQLite, DriverSQLitePure:
		return "", errors.Errorf("driver %s does not use dsn", driver)
	case DriverMySQL:
		if conf.Port == 0 {
			conf.Port = 3306
		}
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC", conf.User, conf.Password, conf.Host,
			conf.Port, conf.DB,
		), nil
	case DriverPostgres:
		if conf.Port == 0 {
			conf.Port = 5432
		}
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%d TimeZone=UTC",
			conf.Host, conf.User, conf.Password, conf.DB, conf.Port,
		), nil
	default:
		return "", errors.Errorf("unsupported driver '%s'", driver)
	}
}

// DSNConf provides configuration options for database connection strings.
// It contains common connection parameters used by the MySQL and PostgreSQL
// drivers.
type DSNConf struct {
	User     string `yaml:"user" envconfig:"USER"`
	Password string `yaml:"password" envconfig:"PASSWORD"`
	Host     string `yaml:"host" envconfig:"HOST"`
	Port     int    `yaml:"port" envconfig:"PORT"`
	DB       string `yaml:"db" envconfig:"DB"`
}

// Config represents the database configuration
type Config struct {
	// Driver is the database driver type
	Driver DriverType
	// DSN is the data source name (connection string)
	// For SQLite, this is the database file path
	// For MySQL, this is the connection string: user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True
	// For PostgreSQL, this is the connection string: host=localhost user=gorm password=gorm dbname=gorm port=5432
	DSN string
	// DataDir is the directory where database files are stored (for SQLite)
	DataDir string
	// Debug enables debug logging
	Debug bool
	// Tracing registers the OpenTelemetry gorm plugin
	Tracing bool
	// UsersHash defines parameters for hashing user passwords
	UsersHash Argon2idParams
}

// Argon2idParams configures Argon2id hashing parameters
type Argon2idParams struct {
	Time        uint32 `yaml:"time"`
	MemoryKiB   uint32 `yaml:"memory_kib"`
	Parallelism uint8  `yaml:"parallelism"`
	KeyLen      uint32 `yaml:"key_len"`
	SaltLen     uint32 `yaml:"salt_len"`
}

// Connect establishes a connection to the database based on the configuration
func Connect(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	// A database file in DataDir starts its transactions with a write lock
	// and waits for other writers instead of failing with SQLITE_BUSY.
	sqliteDSN := func(busyTimeout string) string {
		if cfg.DSN != "" {
			return cfg.DSN
		}
		return "file:" + filepath.Join(cfg.DataDir, "plataforma.db") + "?_txlock=immediate&" + busyTimeout
	}
	switch cfg.Driver {
	case DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(fmt.Sprintf("_busy_timeout=%d", sqliteBusyTimeout.Milliseconds())))
	case DriverSQLitePure:
		dialector = puresqlite.Open(sqliteDSN(fmt.Sprintf("_pragma=busy_timeout(%d)", sqliteBusyTimeout.Milliseconds())))
	case DriverMySQL:
		dialector = mysql.Open(cfg.DSN)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, errors.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	logMode := logger.Silent
	if cfg.Debug {
		logMode = logger.Info
	}

	db, err := gorm.Open(
		dialector, &gorm.Config{
			Logger: logger.Default.LogMode(logMode),
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
		},
	)
	if err != nil {
		return nil, err
	}
	if cfg.Tracing {
		if err = db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, errors.Wrap(err, "failed to register tracing plugin")
		}
	}
	return db, nil
}
