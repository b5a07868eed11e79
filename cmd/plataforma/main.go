package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	_ "go.uber.org/automaxprocs"

	"github.com/pjecz/plataforma-web"
	"github.com/pjecz/plataforma-web/api/webapi"
	"github.com/pjecz/plataforma-web/cmd/plataforma/config"
	"github.com/pjecz/plataforma-web/internal/acuse"
	"github.com/pjecz/plataforma-web/internal/logger"
	"github.com/pjecz/plataforma-web/internal/metrics"
	"github.com/pjecz/plataforma-web/internal/tasks"
	"github.com/pjecz/plataforma-web/internal/version"
	"github.com/pjecz/plataforma-web/internal/workflow"
)

func main() {
	var configFile string
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}
	config.Load(configFile)
	c := config.Get()
	if err := logger.Init(c.Logging.LoggerConfig()); err != nil {
		log.WithError(err).Fatal("could not init logging")
	}
	if c.Logging.Banner.Version {
		fmt.Fprintln(os.Stderr, version.Banner(60))
	}
	log.WithField("version", version.VERSION).Info("Loaded Config")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	backs, err := config.LoadStorageBackends(c)
	if err != nil {
		log.WithError(err).Fatal("could not load storage")
	}

	ctx := context.Background()
	blobs, err := config.OpenBlobStore(ctx, c.Blob, c.Server.ExternalURL, m)
	if err != nil {
		log.WithError(err).Fatal("could not open object store")
	}
	defer blobs.Close()

	codec, err := c.Hashids.Codec()
	if err != nil {
		log.WithError(err).Fatal("could not init hashids")
	}
	var signer *acuse.Signer
	if c.Workflow.AcuseSecret != "" {
		signer, err = acuse.NewSigner(c.Workflow.AcuseSecret, c.Workflow.AcuseIssuer)
		if err != nil {
			log.WithError(err).Fatal("could not init acuse signer")
		}
	}

	var guard tasks.Guard = tasks.NewMemoryGuard()
	if opts := c.Caching.RedisOptions(); opts != nil {
		guard, err = tasks.NewRedisGuard(ctx, opts)
		if err != nil {
			log.WithError(err).Fatal("could not init redis task guard")
		}
		log.Info("Loaded Redis task guard")
	}
	runner := tasks.NewRunner(guard, backs.Tareas, m, c.Caching.TaskTTL.Duration())
	defer runner.Close()

	submission := workflow.NewSubmission(backs, blobs, codec, m, workflow.NewClock(c.Workflow.Location()))

	opts := plataforma.Options{
		API: &webapi.Options{
			UsuariosEnabled: c.API.UsuariosEnabled,
		},
	}
	if c.Metrics.Enabled {
		opts.Gatherer = reg
		opts.MetricsPath = c.Metrics.Path
	}
	server, err := plataforma.NewPlataforma(
		c.Server, webapi.Deps{
			Backends:   backs,
			Submission: submission,
			Blobs:      blobs,
			Runner:     runner,
			Acuses:     signer,
		}, opts,
	)
	if err != nil {
		log.WithError(err).Fatal("could not init server")
	}
	log.Info("Added Endpoints")

	if err = server.Start(); err != nil {
		log.WithError(err).Error("server stopped")
	}
}
