package webapi

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"tideland.dev/go/slices"

	"github.com/pjecz/plataforma-web/internal/workflow"
	"github.com/pjecz/plataforma-web/storage/model"
)

// validatePermisos rejects unknown module names and levels
func validatePermisos(p model.Permisos) error {
	modulos := make([]string, 0, len(p))
	for m, nivel := range p {
		if nivel < model.NivelNinguno || nivel > model.NivelAdministrar {
			return workflow.ValidationError{Message: fmt.Sprintf("El nivel %d de %s no es válido.", nivel, m)}
		}
		modulos = append(modulos, m)
	}
	if unknown := slices.Subtract(modulos, model.Modulos); len(unknown) > 0 {
		return workflow.ValidationError{
			Message: fmt.Sprintf("Módulos desconocidos: %s.", strings.Join(unknown, ", ")),
		}
	}
	return nil
}

func registerUsuarios(r fiber.Router, usuarios model.UsuariosStore, bitacoras model.BitacorasStore) {
	const modulo = model.ModuloUsuarios
	g := r.Group("/usuarios", requirePermission(modulo, model.NivelVer))

	bitacora := func(c *fiber.Ctx, accion, email string) error {
		return workflow.RecordBitacora(
			bitacoras, modulo, actorFrom(c), fmt.Sprintf("%s usuario %s", accion, email),
			apiPrefix+"/usuarios/"+email,
		)
	}

	g.Get(
		"/", func(c *fiber.Ctx) error {
			list, err := usuarios.List()
			if err != nil {
				return writeError(c, err)
			}
			return sendPage(c, list, int64(len(list)))
		},
	)

	g.Get(
		"/:email", func(c *fiber.Ctx) error {
			u, err := usuarios.Get(c.Params("email"))
			if err != nil {
				return writeError(c, err)
			}
			return c.JSON(u)
		},
	)

	g.Post(
		"/", requirePermission(modulo, model.NivelAdministrar), func(c *fiber.Ctx) error {
			var form model.UsuarioForm
			if err := c.BodyParser(&form); err != nil {
				return badRequest(c, "invalid body")
			}
			if form.Email == "" || form.Password == nil || *form.Password == "" {
				return badRequest(c, "email and password are required")
			}
			if err := validatePermisos(form.Permisos); err != nil {
				return writeError(c, err)
			}
			u, err := usuarios.Create(form)
			if err != nil {
				return writeError(c, err)
			}
			if err = bitacora(c, "Nuevo", u.Email); err != nil {
				return writeError(c, err)
			}
			return c.Status(fiber.StatusCreated).JSON(u)
		},
	)

	g.Put(
		"/:email", requirePermission(modulo, model.NivelAdministrar), func(c *fiber.Ctx) error {
			var form model.UsuarioForm
			if err := c.BodyParser(&form); err != nil {
				return badRequest(c, "invalid body")
			}
			if err := validatePermisos(form.Permisos); err != nil {
				return writeError(c, err)
			}
			u, err := usuarios.Update(c.Params("email"), form)
			if err != nil {
				return writeError(c, err)
			}
			if err = bitacora(c, "Modificado", u.Email); err != nil {
				return writeError(c, err)
			}
			return c.JSON(u)
		},
	)

	g.Delete(
		"/:email", requirePermission(modulo, model.NivelAdministrar), func(c *fiber.Ctx) error {
			email := c.Params("email")
			if err := usuarios.Delete(email); err != nil {
				return writeError(c, err)
			}
			if err := bitacora(c, "Eliminado", email); err != nil {
				return writeError(c, err)
			}
			return c.SendStatus(fiber.StatusNoContent)
		},
	)
}
