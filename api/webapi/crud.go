package webapi

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/pjecz/plataforma-web/internal/workflow"
	"github.com/pjecz/plataforma-web/storage/model"
)

// apiPrefix is where Register is mounted; bitacora entries link below it
const apiPrefix = "/api/v1"

// crud serves list, detail, create, update, delete and recover for a record
// type without submission rules. F is the json form of the record.
type crud[T model.Lifecycled, F any] struct {
	modulo    string
	ruta      string
	femenino  bool
	filtros   filtros
	store     model.LifecycleStore[T]
	bitacoras model.BitacorasStore
	// describe names a record in bitacora entries, e.g. "distrito NORTE"
	describe func(T) string
	// apply validates form and copies it onto item
	apply func(c *fiber.Ctx, form F, item *T) error
}

func (h *crud[T, F]) register(r fiber.Router) {
	g := r.Group(h.ruta, requirePermission(h.modulo, model.NivelVer))
	g.Get("/", h.list)
	g.Get("/datatable", h.datatable)
	g.Get("/:id", h.get)
	g.Post("/", requirePermission(h.modulo, model.NivelCrear), h.create)
	g.Put("/:id", requirePermission(h.modulo, model.NivelModificar), h.update)
	g.Delete("/:id", requirePermission(h.modulo, model.NivelAdministrar), h.remove)
	g.Post("/:id/recover", requirePermission(h.modulo, model.NivelAdministrar), h.recover)
}

func (h *crud[T, F]) list(c *fiber.Ctx) error {
	q, err := listQuery(c, h.filtros)
	if err != nil {
		return writeError(c, err)
	}
	items, total, err := h.store.List(q)
	if err != nil {
		return writeError(c, err)
	}
	return sendPage(c, items, total)
}

func (h *crud[T, F]) datatable(c *fiber.Ctx) error {
	q, err := listQuery(c, h.filtros)
	if err != nil {
		return writeError(c, err)
	}
	items, total, err := h.store.List(q)
	if err != nil {
		return writeError(c, err)
	}
	return sendDatatable(c, items, total)
}

func (h *crud[T, F]) get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	item, err := h.store.Get(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(item)
}

func (h *crud[T, F]) create(c *fiber.Ctx) error {
	var form F
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, "invalid body")
	}
	item := new(T)
	if err := h.apply(c, form, item); err != nil {
		return writeError(c, asValidation(err, form))
	}
	if err := h.store.Create(item); err != nil {
		return writeError(c, err)
	}
	if err := h.bitacora(c, "Nuevo", *item); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *crud[T, F]) update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	var form F
	if err = c.BodyParser(&form); err != nil {
		return badRequest(c, "invalid body")
	}
	item, err := h.store.Get(id)
	if err != nil {
		return writeError(c, err)
	}
	if (*item).GetEstatus() != model.EstatusActivo {
		return writeError(c, workflow.ValidationError{Message: "No puede modificar un registro eliminado.", Form: form})
	}
	if err = h.apply(c, form, item); err != nil {
		return writeError(c, asValidation(err, form))
	}
	if err = h.store.Save(item); err != nil {
		return writeError(c, err)
	}
	if item, err = h.store.Get(id); err != nil {
		return writeError(c, err)
	}
	if err = h.bitacora(c, "Modificado", *item); err != nil {
		return writeError(c, err)
	}
	return c.JSON(item)
}

func (h *crud[T, F]) remove(c *fiber.Ctx) error {
	return h.setEstatus(c, model.EstatusEliminado, "Eliminado")
}

func (h *crud[T, F]) recover(c *fiber.Ctx) error {
	return h.setEstatus(c, model.EstatusActivo, "Recuperado")
}

// setEstatus moves the record to e. A record already in e is returned
// unchanged and no bitacora is written.
func (h *crud[T, F]) setEstatus(c *fiber.Ctx, e model.Estatus, accion string) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	item, err := h.store.Get(id)
	if err != nil {
		return writeError(c, err)
	}
	if (*item).GetEstatus() == e {
		return c.JSON(item)
	}
	if err = h.store.SetEstatus(id, e); err != nil {
		return writeError(c, err)
	}
	if item, err = h.store.Get(id); err != nil {
		return writeError(c, err)
	}
	if err = h.bitacora(c, accion, *item); err != nil {
		return writeError(c, err)
	}
	return c.JSON(item)
}

func (h *crud[T, F]) bitacora(c *fiber.Ctx, accion string, item T) error {
	if h.femenino {
		accion = strings.TrimSuffix(accion, "o") + "a"
	}
	return workflow.RecordBitacora(
		h.bitacoras, h.modulo, actorFrom(c),
		fmt.Sprintf("%s %s", accion, h.describe(item)),
		fmt.Sprintf("%s%s/%d", apiPrefix, h.ruta, item.GetID()),
	)
}

// asValidation turns a plain form error into a ValidationError that echoes
// the form; typed workflow errors pass through.
func asValidation(err error, form any) error {
	var (
		authorization workflow.AuthorizationError
		validation    workflow.ValidationError
		notFound      model.NotFoundError
	)
	if errors.As(err, &authorization) || errors.As(err, &notFound) {
		return err
	}
	if errors.As(err, &validation) {
		if validation.Form == nil {
			validation.Form = form
		}
		return validation
	}
	return workflow.ValidationError{Message: err.Error(), Form: form}
}
