package webapi

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pjecz/plataforma-web/internal/workflow"
	"github.com/pjecz/plataforma-web/storage/model"
)

const localsActor = "actor"

// authMiddleware resolves the Actor of the request.
// If there are no users in storage, all requests are allowed and run as the
// bootstrap administrator.
// If there is at least one user, it requires HTTP Basic authentication
// and validates credentials using the UsuariosStore.
func authMiddleware(usuarios model.UsuariosStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, err := usuarios.Count()
		if err != nil {
			return writeError(c, err)
		}
		if count == 0 {
			c.Locals(localsActor, workflow.Bootstrap())
			return c.Next()
		}

		email, password, ok := parseBasicAuth(c)
		if !ok {
			return unauthorized(c, "missing credentials")
		}
		u, err := usuarios.Authenticate(email, password)
		if err != nil {
			return unauthorized(c, "invalid credentials")
		}
		c.Locals(localsActor, workflow.ActorFromUsuario(u))
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, description string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Basic realm=plataforma")
	return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "invalid_client", Description: description})
}

// actorFrom returns the Actor set by authMiddleware
func actorFrom(c *fiber.Ctx) workflow.Actor {
	a, _ := c.Locals(localsActor).(workflow.Actor)
	return a
}

var nivelNombres = map[model.Nivel]string{
	model.NivelVer:         "ver",
	model.NivelModificar:   "modificar",
	model.NivelCrear:       "crear",
	model.NivelAdministrar: "administrar",
}

// requirePermission rejects actors holding less than nivel on modulo
func requirePermission(modulo string, nivel model.Nivel) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !actorFrom(c).Can(modulo, nivel) {
			return writeError(
				c, workflow.AuthorizationError{
					Message: fmt.Sprintf("No tiene permiso para %s en %s.", nivelNombres[nivel], modulo),
				},
			)
		}
		return c.Next()
	}
}

// parseBasicAuth extracts Basic auth credentials from request headers
func parseBasicAuth(c *fiber.Ctx) (username, password string, ok bool) {
	auth := c.Get(fiber.HeaderAuthorization)
	if auth == "" {
		return "", "", false
	}
	const prefix = "Basic "
	if !strings.HasPrefix(auth, prefix) {
		return "", "", false
	}
	b, err := base64.StdEncoding.DecodeString(auth[len(prefix):])
	if err != nil {
		return "", "", false
	}
	creds := string(b)
	i := strings.IndexByte(creds, ':')
	if i < 0 {
		return "", "", false
	}
	return creds[:i], creds[i+1:], true
}
