package webapi

import (
	"embed"
	"net"
	neturl "net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pjecz/plataforma-web/internal/acuse"
	"github.com/pjecz/plataforma-web/internal/blob"
	"github.com/pjecz/plataforma-web/internal/tasks"
	"github.com/pjecz/plataforma-web/internal/workflow"
	"github.com/pjecz/plataforma-web/storage/model"
)

//go:embed swagger.html openapi.yaml
var assets embed.FS

// Deps are the collaborators the handlers work with
type Deps struct {
	Backends   model.Backends
	Submission *workflow.Submission
	Blobs      blob.Store
	// Runner may be nil; background tasks are then refused
	Runner *tasks.Runner
	// Acuses may be nil; receipts are then disabled
	Acuses *acuse.Signer
}

// Options controls optional features of the API registration.
type Options struct {
	// UsuariosEnabled controls whether the user management API is mounted.
	UsuariosEnabled bool
	// Port, when > 0, is used to adapt the serverURL for the docs.
	Port int
}

// Register mounts all API routes under the provided group, which must be
// mounted at /api/v1.
func Register(r fiber.Router, serverURL string, deps Deps, opts *Options) error {
	if opts != nil && opts.Port > 0 {
		serverURL = adaptServerURLPort(serverURL, opts.Port)
	}
	openapiRaw, err := assets.ReadFile("openapi.yaml")
	if err != nil {
		return errors.Wrap(err, "webapi: failed to read openapi.yaml")
	}
	openapiData := updateOpenAPIServers(openapiRaw, serverURL)
	openapiData = ensureBasicAuthSecurity(openapiData)
	swaggerHTML, err := assets.ReadFile("swagger.html")
	if err != nil {
		return errors.Wrap(err, "webapi: failed to read swagger.html")
	}

	r.Get(
		"/openapi.yaml", func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderContentType, "application/yaml")
			return c.Send(openapiData)
		},
	)
	r.Get(
		"/docs", func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
			return c.Send(swaggerHTML)
		},
	)
	if deps.Blobs != nil {
		registerArchivos(r, deps.Blobs)
	}

	r.Use(authMiddleware(deps.Backends.Usuarios))

	registerDistritos(r, deps.Backends)
	registerAutoridades(r, deps.Backends)
	registerListasDeAcuerdos(r, deps)
	registerAudiencias(r, deps)
	registerSentencias(r, deps.Backends)
	registerPeritos(r, deps.Backends)
	registerRepReportes(r, deps.Backends)
	registerCIDProcedimientos(r, deps.Backends)
	registerBitacoras(r, deps.Backends.Bitacoras)
	registerTareas(r, deps.Backends.Tareas)
	registerParametros(r, deps.Backends.Parametros, deps.Backends.Bitacoras)
	if opts == nil || opts.UsuariosEnabled {
		registerUsuarios(r, deps.Backends.Usuarios, deps.Backends.Bitacoras)
	}
	return nil
}

func updateOpenAPIServers(doc []byte, serverURL string) []byte {
	if len(serverURL) == 0 {
		return doc
	}
	var full map[string]any
	if err := yaml.Unmarshal(doc, &full); err != nil {
		return doc
	}
	full["servers"] = []map[string]any{
		{
			"url":         serverURL,
			"description": "This instance",
		},
	}
	res, err := yaml.Marshal(full)
	if err != nil {
		return doc
	}
	return res
}

// adaptServerURLPort updates or adds the port to the provided serverURL.
// If the input is invalid, it returns the original serverURL.
func adaptServerURLPort(serverURL string, port int) string {
	if len(serverURL) == 0 || port <= 0 {
		return serverURL
	}
	u, err := neturl.Parse(serverURL)
	if err != nil || u.Host == "" {
		return serverURL
	}
	name, _, err := net.SplitHostPort(u.Host)
	if err != nil {
		name = u.Host
	}
	u.Host = net.JoinHostPort(name, strconv.Itoa(port))
	return u.String()
}

// ensureBasicAuthSecurity injects a HTTP Basic security scheme and a global
// security requirement into the OpenAPI document, if not already present.
func ensureBasicAuthSecurity(doc []byte) []byte {
	var full map[string]any
	if err := yaml.Unmarshal(doc, &full); err != nil {
		return doc
	}
	components, _ := full["components"].(map[string]any)
	if components == nil {
		components = map[string]any{}
		full["components"] = components
	}
	securitySchemes, _ := components["securitySchemes"].(map[string]any)
	if securitySchemes == nil {
		securitySchemes = map[string]any{}
		components["securitySchemes"] = securitySchemes
	}
	if _, exists := securitySchemes["basicAuth"]; !exists {
		securitySchemes["basicAuth"] = map[string]any{
			"type":   "http",
			"scheme": "basic",
		}
	}
	if _, exists := full["security"]; !exists {
		full["security"] = []map[string]any{{"basicAuth": []any{}}}
	}
	res, err := yaml.Marshal(full)
	if err != nil {
		return doc
	}
	return res
}
