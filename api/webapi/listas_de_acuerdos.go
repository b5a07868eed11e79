package webapi

import (
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/pjecz/plataforma-web/internal/acuse"
	"github.com/pjecz/plataforma-web/internal/tasks"
	"github.com/pjecz/plataforma-web/internal/workflow"
	"github.com/pjecz/plataforma-web/storage/model"
)

// maxArchivoSize bounds the size of an uploaded PDF
const maxArchivoSize = 16 << 20

type listasHandler struct {
	sub       *workflow.Submission
	lifecycle *workflow.Lifecycle[model.ListaDeAcuerdo]
	backends  model.Backends
	runner    *tasks.Runner
	acuses    *acuse.Signer
}

func registerListasDeAcuerdos(r fiber.Router, deps Deps) {
	h := &listasHandler{
		sub:       deps.Submission,
		lifecycle: deps.Submission.ListasDeAcuerdosLifecycle(),
		backends:  deps.Backends,
		runner:    deps.Runner,
		acuses:    deps.Acuses,
	}
	modulo := model.ModuloListasDeAcuerdos
	ro := &crud[model.ListaDeAcuerdo, struct{}]{
		filtros: filtros{autoridad: true},
		store:   deps.Backends.ListasDeAcuerdos,
	}

	g := r.Group("/listas_de_acuerdos", requirePermission(modulo, model.NivelVer))
	g.Get("/", ro.list)
	g.Get("/datatable", ro.datatable)
	g.Get("/acuses/:id_hashed", h.acuse)
	g.Post("/acuses/verificar", h.verificarAcuse)
	g.Post("/refrescar/:autoridad_id", requirePermission(modulo, model.NivelCrear), h.refrescar)
	g.Get("/:id", ro.get)
	g.Post("/", requirePermission(modulo, model.NivelCrear), h.create)
	g.Put("/:id", requirePermission(modulo, model.NivelModificar), h.edit)
	g.Post("/:id/archivo", requirePermission(modulo, model.NivelModificar), h.retryArchivo)
	g.Delete("/:id", requirePermission(modulo, model.NivelCrear), h.remove)
	g.Post("/:id/recover", requirePermission(modulo, model.NivelCrear), h.recover)
}

func readArchivo(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxArchivoSize {
		return nil, workflow.ValidationError{Message: "El archivo es demasiado grande."}
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxArchivoSize+1))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

func (h *listasHandler) create(c *fiber.Ctx) error {
	in := workflow.ListaDeAcuerdoInput{
		Fecha:       c.FormValue("fecha"),
		Descripcion: c.FormValue("descripcion"),
	}
	if v := c.FormValue("autoridad_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid autoridad_id")
		}
		in.AutoridadID = uint(id)
	}
	fh, err := c.FormFile("archivo")
	if err != nil {
		return writeError(c, workflow.ValidationError{Message: "Falta el archivo PDF.", Form: in})
	}
	in.ArchivoNombre = fh.Filename
	if in.Archivo, err = readArchivo(fh); err != nil {
		return writeError(c, asValidation(err, in))
	}
	lista, err := h.sub.NewListaDeAcuerdo(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(lista)
}

func (h *listasHandler) edit(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	var form struct {
		Descripcion string `json:"descripcion"`
	}
	if err = c.BodyParser(&form); err != nil {
		return badRequest(c, "invalid body")
	}
	lista, err := h.sub.EditListaDeAcuerdo(actorFrom(c), id, form.Descripcion)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(lista)
}

func (h *listasHandler) retryArchivo(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	fh, err := c.FormFile("archivo")
	if err != nil {
		return writeError(c, workflow.ValidationError{Message: "Falta el archivo PDF."})
	}
	data, err := readArchivo(fh)
	if err != nil {
		return writeError(c, err)
	}
	lista, err := h.sub.RetryArchivo(c.UserContext(), actorFrom(c), id, fh.Filename, data)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(lista)
}

func (h *listasHandler) remove(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	lista, err := h.lifecycle.Delete(actorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(lista)
}

func (h *listasHandler) recover(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	lista, err := h.lifecycle.Recover(actorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(lista)
}

// refrescar launches the reconciliation of an authority's lists with the
// files found in storage
func (h *listasHandler) refrescar(c *fiber.Ctx) error {
	if h.runner == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(
			errorResponse{Error: "unavailable", Description: "background tasks are disabled"},
		)
	}
	actor := actorFrom(c)
	autoridad, err := h.backends.Autoridades.Find(c.Params("autoridad_id"))
	if err != nil {
		return writeError(c, err)
	}
	gate := workflow.ListasDeAcuerdos.Gate(h.sub.Clock())
	if err = gate.MayCreateFor(actor, autoridad.ID); err != nil {
		return writeError(c, err)
	}
	tarea, err := h.runner.RefrescarListasDeAcuerdos(c.UserContext(), h.sub, actor, autoridad)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(tarea)
}

type acuseResponse struct {
	Lista *model.ListaDeAcuerdo `json:"lista"`
	Token string                `json:"token"`
}

// acuse returns the agreement list addressed by its hashed id together with
// a signed receipt
func (h *listasHandler) acuse(c *fiber.Ctx) error {
	if h.acuses == nil {
		return writeError(c, model.NotFoundError("acuses are disabled"))
	}
	idHashed := c.Params("id_hashed")
	id, err := h.sub.Hashids().Decode(idHashed)
	if err != nil {
		return writeError(c, model.NotFoundErrorFmt("acuse not found: %s", idHashed))
	}
	lista, err := h.backends.ListasDeAcuerdos.Get(id)
	if err != nil {
		return writeError(c, err)
	}
	if lista.Estatus != model.EstatusActivo || lista.Incompleto {
		return writeError(c, model.NotFoundErrorFmt("acuse not found: %s", idHashed))
	}
	token, err := h.acuses.Sign(*lista, idHashed, h.sub.Clock().Now())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(acuseResponse{Lista: lista, Token: token})
}

func (h *listasHandler) verificarAcuse(c *fiber.Ctx) error {
	if h.acuses == nil {
		return writeError(c, model.NotFoundError("acuses are disabled"))
	}
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return badRequest(c, "token is required")
	}
	a, err := h.acuses.Verify(req.Token)
	if err != nil {
		return writeError(c, workflow.ValidationError{Message: "El acuse no es válido."})
	}
	return c.JSON(a)
}
