package config

import (
	"time"
	_ "time/tzdata" // hosts without zoneinfo

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pjecz/plataforma-web/internal/hashid"
)

const defaultTaskTTL = 30 * time.Minute

type hashidsConf struct {
	Salt      string `yaml:"salt"`
	MinLength int    `yaml:"min_length"`
}

func (c *hashidsConf) validate() error {
	if c.Salt == "" {
		return errors.New("error in hashids conf: salt must be specified")
	}
	if c.MinLength < 0 {
		return errors.New("error in hashids conf: min_length must not be negative")
	}
	return nil
}

// Codec returns the configured hashid codec
func (c hashidsConf) Codec() (*hashid.Codec, error) {
	return hashid.New(c.Salt, c.MinLength)
}

var defaultHashidsConf = hashidsConf{
	MinLength: 8,
}

// workflowConf holds the settings shared by the submission workflows
type workflowConf struct {
	// Timezone is the zone the courts work in; dates and windows use it
	Timezone string `yaml:"timezone"`
	// AcuseSecret is the HMAC key of the acknowledgement receipts
	AcuseSecret string `yaml:"acuse_secret"`
	AcuseIssuer string `yaml:"acuse_issuer"`

	location *time.Location
}

func (c *workflowConf) validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return errors.Wrapf(err, "error in workflow conf: invalid timezone '%s'", c.Timezone)
	}
	c.location = loc
	if c.AcuseSecret == "" {
		log.Warn("workflow.acuse_secret is not set, receipts are disabled")
	} else if len(c.AcuseSecret) < 16 {
		return errors.New("error in workflow conf: acuse_secret must be at least 16 characters")
	}
	return nil
}

// Location returns the loaded timezone
func (c workflowConf) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

var defaultWorkflowConf = workflowConf{
	Timezone:    "America/Mexico_City",
	AcuseIssuer: "plataforma-web",
}
