package config

import (
	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/fileutils"

	"github.com/pjecz/plataforma-web/internal/logger"
)

// loggingConf holds all logging-related configuration under the `logging` key.
//
// YAML example:
//
//	logging:
//	  access:
//	    dir: /var/log/plataforma
//	    stderr: false
//	  internal:
//	    dir: /var/log/plataforma
//	    stderr: false
//	    level: INFO
//	  banner:
//	    version: true
type loggingConf struct {
	Access   LoggerConf         `yaml:"access"`
	Internal internalLoggerConf `yaml:"internal"`
	Banner   bannerConf         `yaml:"banner"`
}

// bannerConf controls whether the version banner is printed on startup
type bannerConf struct {
	Version bool `yaml:"version"`
}

type internalLoggerConf struct {
	LoggerConf `yaml:",inline"`
	// Level sets the verbosity for internal logs (e.g. DEBUG, INFO).
	Level string `yaml:"level"`
}

// LoggerConf holds configuration related to logging
type LoggerConf struct {
	Dir    string `yaml:"dir"`
	StdErr bool   `yaml:"stderr"`
}

func checkLoggingDirExists(dir string) error {
	if dir != "" && !fileutils.FileExists(dir) {
		return errors.Errorf("logging directory '%s' does not exist", dir)
	}
	return nil
}

func (log *loggingConf) validate() error {
	if err := checkLoggingDirExists(log.Access.Dir); err != nil {
		return err
	}
	return checkLoggingDirExists(log.Internal.Dir)
}

// LoggerConfig converts the logging section for logger.Init
func (log *loggingConf) LoggerConfig() logger.Conf {
	return logger.Conf{
		Dir:          log.Internal.Dir,
		StdErr:       log.Internal.StdErr,
		Level:        log.Internal.Level,
		AccessDir:    log.Access.Dir,
		AccessStdErr: log.Access.StdErr,
	}
}

var defaultLoggingConf = loggingConf{
	Banner: bannerConf{
		Version: true,
	},
	Internal: internalLoggerConf{
		Level: "INFO",
	},
}
