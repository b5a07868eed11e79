// Package plataforma serves the web API of the judicial platform.
package plataforma

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	accesslog "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/pjecz/plataforma-web/api/webapi"
	"github.com/pjecz/plataforma-web/internal/logger"
	"github.com/pjecz/plataforma-web/internal/version"
)

// FiberServerConfig is the fiber.Config that is used to init the http fiber.App
var FiberServerConfig = fiber.Config{
	ReadTimeout:    3 * time.Second,
	WriteTimeout:   20 * time.Second,
	IdleTimeout:    150 * time.Second,
	ReadBufferSize: 8192,
	// uploaded PDFs travel in the body
	BodyLimit:    20 << 20,
	ErrorHandler: webapi.ErrorHandler,
	Network:      "tcp",
}

// Options holds the optional parts of the server
type Options struct {
	// Gatherer, when set, is exposed in the prometheus format at MetricsPath
	Gatherer    prometheus.Gatherer
	MetricsPath string
	API         *webapi.Options
}

// Plataforma is the http server of the platform
type Plataforma struct {
	server     *fiber.App
	serverConf ServerConf
}

// NewPlataforma creates the server and mounts every endpoint
func NewPlataforma(serverConf ServerConf, deps webapi.Deps, opts Options) (*Plataforma, error) {
	if tps := serverConf.TrustedProxies; len(tps) > 0 {
		FiberServerConfig.TrustedProxies = serverConf.TrustedProxies
		FiberServerConfig.EnableTrustedProxyCheck = true
	}
	FiberServerConfig.ProxyHeader = serverConf.ForwardedIPHeader
	server := fiber.New(FiberServerConfig)
	server.Use(recover.New())
	server.Use(compress.New())
	server.Use(accesslog.New(accesslog.Config{Output: logger.AccessWriter()}))
	server.Use(requestid.New())

	server.Get(
		"/api/v1/version", func(c *fiber.Ctx) error {
			return c.JSON(version.Current())
		},
	)
	if opts.Gatherer != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		server.Get(path, adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	serverURL := ""
	if serverConf.ExternalURL != "" {
		serverURL = strings.TrimSuffix(serverConf.ExternalURL, "/") + "/api/v1"
	}
	if err := webapi.Register(server.Group("/api/v1"), serverURL, deps, opts.API); err != nil {
		return nil, err
	}
	return &Plataforma{
		server:     server,
		serverConf: serverConf,
	}, nil
}

// App returns the underlying fiber app
func (p *Plataforma) App() *fiber.App {
	return p.server
}

// HttpHandlerFunc returns an http.HandlerFunc for serving all the endpoints
func (p *Plataforma) HttpHandlerFunc() http.HandlerFunc {
	return adaptor.FiberApp(p.server)
}

// Listen starts an http server at the specific address
func (p *Plataforma) Listen(addr string) error {
	return p.server.Listen(addr)
}

// Shutdown stops accepting connections and waits for running requests
func (p *Plataforma) Shutdown() error {
	return p.server.Shutdown()
}

// Start serves on the configured port, or on 443 with TLS. It blocks.
func (p *Plataforma) Start() error {
	conf := p.serverConf
	if !conf.TLS.Enabled {
		log.WithField("port", conf.Port).Info("TLS is disabled starting http server")
		return p.server.Listen(net.JoinHostPort(conf.IPListen, strconv.Itoa(conf.Port)))
	}
	if conf.TLS.RedirectHTTP {
		httpServer := fiber.New(FiberServerConfig)
		httpServer.All(
			"*", func(ctx *fiber.Ctx) error {
				//goland:noinspection HttpUrlsUsage
				return ctx.Redirect(
					strings.Replace(ctx.Request().URI().String(), "http://", "https://", 1),
					fiber.StatusPermanentRedirect,
				)
			},
		)
		log.Info("TLS and http redirect enabled, starting redirect server on port 80")
		go func() {
			log.WithError(httpServer.Listen(fmt.Sprintf("%s:80", conf.IPListen))).Fatal()
		}()
	}
	log.Info("TLS enabled, starting https server on port 443")
	return p.server.ListenTLS(fmt.Sprintf("%s:443", conf.IPListen), conf.TLS.Cert, conf.TLS.Key)
}
