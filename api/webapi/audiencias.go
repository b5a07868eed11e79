package webapi

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/pjecz/plataforma-web/internal/workflow"
	"github.com/pjecz/plataforma-web/storage/model"
)

type audienciasHandler struct {
	sub       *workflow.Submission
	lifecycle *workflow.Lifecycle[model.Audiencia]
}

func registerAudiencias(r fiber.Router, deps Deps) {
	h := &audienciasHandler{
		sub:       deps.Submission,
		lifecycle: deps.Submission.AudienciasLifecycle(),
	}
	modulo := model.ModuloAudiencias
	ro := &crud[model.Audiencia, struct{}]{
		filtros: filtros{autoridad: true},
		store:   deps.Backends.Audiencias,
	}

	g := r.Group("/audiencias", requirePermission(modulo, model.NivelVer))
	g.Get("/", ro.list)
	g.Get("/datatable", ro.datatable)
	g.Get("/:id", ro.get)
	g.Post("/", requirePermission(modulo, model.NivelCrear), h.create)
	g.Put("/:id", requirePermission(modulo, model.NivelModificar), h.edit)
	g.Delete("/:id", requirePermission(modulo, model.NivelCrear), h.remove)
	g.Post("/:id/recover", requirePermission(modulo, model.NivelCrear), h.recover)
}

// decodeBody returns a decoder of the category fields of the request body.
// The body is copied because fiber reuses its buffer.
func decodeBody(c *fiber.Ctx) func(d model.AudienciaDetalle) error {
	body := append([]byte(nil), c.Body()...)
	return func(d model.AudienciaDetalle) error {
		return json.Unmarshal(body, d)
	}
}

func (h *audienciasHandler) create(c *fiber.Ctx) error {
	var in workflow.AudienciaInput
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return badRequest(c, "invalid body")
	}
	in.Decode = decodeBody(c)
	audiencia, err := h.sub.NewAudiencia(actorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(audiencia)
}

func (h *audienciasHandler) edit(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	if !json.Valid(c.Body()) {
		return badRequest(c, "invalid body")
	}
	audiencia, err := h.sub.EditAudiencia(actorFrom(c), id, decodeBody(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(audiencia)
}

func (h *audienciasHandler) remove(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	audiencia, err := h.lifecycle.Delete(actorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(audiencia)
}

func (h *audienciasHandler) recover(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	audiencia, err := h.lifecycle.Recover(actorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(audiencia)
}
