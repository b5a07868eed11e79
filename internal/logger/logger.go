// Package logger sets up the internal and the access log.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/zachmann/go-utils/fileutils"
)

// File names used inside the configured log directories
const (
	InternalLogFile = "plataforma.log"
	AccessLogFile   = "access.log"
)

// Conf selects the destinations and the level of the logs. An empty Dir
// logs to stderr.
type Conf struct {
	Dir          string
	StdErr       bool
	Level        string
	AccessDir    string
	AccessStdErr bool
}

var accessWriter io.Writer = os.Stderr

// Init configures logrus and prepares the access log writer.
func Init(conf Conf) error {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	level := log.InfoLevel
	if conf.Level != "" {
		var err error
		level, err = log.ParseLevel(strings.ToLower(conf.Level))
		if err != nil {
			return errors.Wrap(err, "invalid log level")
		}
	}
	log.SetLevel(level)

	w, err := writer(conf.Dir, InternalLogFile, conf.StdErr)
	if err != nil {
		return err
	}
	log.SetOutput(w)

	accessWriter, err = writer(conf.AccessDir, AccessLogFile, conf.AccessStdErr)
	return err
}

// AccessWriter returns where http access lines are written.
func AccessWriter() io.Writer {
	return accessWriter
}

func writer(dir, name string, alsoStdErr bool) (io.Writer, error) {
	if dir == "" {
		return os.Stderr, nil
	}
	if !fileutils.FileExists(dir) {
		return nil, errors.Errorf("logging directory '%s' does not exist", dir)
	}
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open log file in '%s'", dir)
	}
	if alsoStdErr {
		return io.MultiWriter(f, os.Stderr), nil
	}
	return f, nil
}
