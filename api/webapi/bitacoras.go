package webapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pjecz/plataforma-web/storage/model"
)

func registerBitacoras(r fiber.Router, bitacoras model.BitacorasStore) {
	g := r.Group("/bitacoras", requirePermission(model.ModuloBitacoras, model.NivelVer))
	list := func(send func(*fiber.Ctx, []model.Bitacora, int64) error) fiber.Handler {
		return func(c *fiber.Ctx) error {
			q, err := listQuery(c, filtros{})
			if err != nil {
				return writeError(c, err)
			}
			items, total, err := bitacoras.List(q)
			if err != nil {
				return writeError(c, err)
			}
			return send(c, items, total)
		}
	}
	g.Get("/", list(sendPage[model.Bitacora]))
	g.Get("/datatable", list(sendDatatable[model.Bitacora]))
}

// registerTareas lists the background tasks of the current user
func registerTareas(r fiber.Router, tareas model.TareasStore) {
	r.Get(
		"/tareas", func(c *fiber.Ctx) error {
			items, err := tareas.ListByUsuario(actorFrom(c).UsuarioID)
			if err != nil {
				return writeError(c, err)
			}
			return sendPage(c, items, int64(len(items)))
		},
	)
}
