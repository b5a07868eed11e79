package webapi

import (
	"fmt"
	"slices"

	"github.com/gofiber/fiber/v2"

	"github.com/pjecz/plataforma-web/internal/workflow"
	"github.com/pjecz/plataforma-web/storage/model"
)

var parametroKeys = []string{
	model.ParametroKeyLimiteDias,
	model.ParametroKeyLimiteAdministradoresDias,
}

// registerParametros exposes the runtime day limits of agreement lists
func registerParametros(r fiber.Router, parametros model.ParametrosStore, bitacoras model.BitacorasStore) {
	const scope = model.ParametroScopeListasDeAcuerdos
	g := r.Group("/parametros", requirePermission(model.ModuloListasDeAcuerdos, model.NivelAdministrar))

	g.Get(
		"/", func(c *fiber.Ctx) error {
			items, err := parametros.List(scope)
			if err != nil {
				return writeError(c, err)
			}
			return sendPage(c, items, int64(len(items)))
		},
	)

	known := func(c *fiber.Ctx) (string, error) {
		key := c.Params("key")
		if !slices.Contains(parametroKeys, key) {
			return "", model.NotFoundErrorFmt("parametro not found: %s", key)
		}
		return key, nil
	}

	g.Put(
		"/:key", func(c *fiber.Ctx) error {
			key, err := known(c)
			if err != nil {
				return writeError(c, err)
			}
			var req struct {
				Value *int `json:"value"`
			}
			if err = c.BodyParser(&req); err != nil || req.Value == nil {
				return badRequest(c, "value is required")
			}
			if *req.Value < 0 {
				return writeError(c, workflow.ValidationError{Message: "El valor no puede ser negativo.", Form: req})
			}
			if err = parametros.SetAny(scope, key, *req.Value); err != nil {
				return writeError(c, err)
			}
			if err = workflow.RecordBitacora(
				bitacoras, model.ModuloListasDeAcuerdos, actorFrom(c),
				fmt.Sprintf("Modificado parámetro %s a %d", key, *req.Value), apiPrefix+"/parametros/"+key,
			); err != nil {
				return writeError(c, err)
			}
			return c.JSON(fiber.Map{"scope": scope, "key": key, "value": *req.Value})
		},
	)

	g.Delete(
		"/:key", func(c *fiber.Ctx) error {
			key, err := known(c)
			if err != nil {
				return writeError(c, err)
			}
			if err = parametros.Delete(scope, key); err != nil {
				return writeError(c, err)
			}
			if err = workflow.RecordBitacora(
				bitacoras, model.ModuloListasDeAcuerdos, actorFrom(c), "Eliminado parámetro "+key,
				apiPrefix+"/parametros/"+key,
			); err != nil {
				return writeError(c, err)
			}
			return c.SendStatus(fiber.StatusNoContent)
		},
	)
}
