package webapi

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pjecz/plataforma-web/internal/safe"
	"github.com/pjecz/plataforma-web/internal/workflow"
	"github.com/pjecz/plataforma-web/storage/model"
)

func registerDistritos(r fiber.Router, backends model.Backends) {
	h := &crud[model.Distrito, model.DistritoForm]{
		modulo:    model.ModuloDistritos,
		ruta:      "/distritos",
		store:     backends.Distritos,
		bitacoras: backends.Bitacoras,
		describe: func(d model.Distrito) string {
			return "distrito " + d.Nombre
		},
		apply: func(_ *fiber.Ctx, form model.DistritoForm, d *model.Distrito) error {
			form.Nombre = safe.String(form.Nombre, 250)
			form.NombreCorto = safe.String(form.NombreCorto, 60)
			if form.Nombre == "" {
				return workflow.ValidationError{Message: "El nombre es obligatorio."}
			}
			form.Apply(d)
			return nil
		},
	}
	h.register(r)
}

// registerAutoridades mounts the crud of authorities plus the lookup by id
// or clave
func registerAutoridades(r fiber.Router, backends model.Backends) {
	r.Get(
		"/autoridades/buscar/:ident", requirePermission(model.ModuloAutoridades, model.NivelVer),
		func(c *fiber.Ctx) error {
			a, err := backends.Autoridades.Find(c.Params("ident"))
			if err != nil {
				return writeError(c, err)
			}
			return c.JSON(a)
		},
	)
	h := &crud[model.Autoridad, model.AutoridadForm]{
		modulo:    model.ModuloAutoridades,
		ruta:      "/autoridades",
		femenino:  true,
		filtros:   filtros{distrito: true},
		store:     backends.Autoridades,
		bitacoras: backends.Bitacoras,
		describe: func(a model.Autoridad) string {
			return "autoridad " + a.Clave
		},
		apply: func(_ *fiber.Ctx, form model.AutoridadForm, a *model.Autoridad) error {
			form.Clave = safe.Clave(form.Clave)
			if form.Clave == "" {
				return workflow.ValidationError{Message: "La clave es obligatoria."}
			}
			form.Descripcion = safe.String(form.Descripcion, 250)
			form.DescripcionCorta = safe.String(form.DescripcionCorta, 60)
			if form.OrganoJurisdiccional != "" && !form.OrganoJurisdiccional.Valid() {
				return workflow.ValidationError{Message: "El órgano jurisdiccional no es válido."}
			}
			if form.AudienciaCategoria != "" && form.AudienciaCategoria != model.CategoriaNoDefinida {
				if _, err := model.NewAudienciaDetalle(form.AudienciaCategoria); err != nil {
					return workflow.ValidationError{Message: "La categoría de audiencias no es válida."}
				}
			}
			if form.LimiteDiasListasDeAcuerdos < 0 {
				return workflow.ValidationError{Message: "El límite de días no puede ser negativo."}
			}
			if form.DistritoID != nil {
				if _, err := backends.Distritos.Get(*form.DistritoID); err != nil {
					return err
				}
			}
			form.Apply(a)
			return nil
		},
	}
	h.register(r)
}

func registerPeritos(r fiber.Router, backends model.Backends) {
	h := &crud[model.Perito, model.PeritoForm]{
		modulo:    model.ModuloPeritos,
		ruta:      "/peritos",
		filtros:   filtros{distrito: true},
		store:     backends.Peritos,
		bitacoras: backends.Bitacoras,
		describe: func(p model.Perito) string {
			return "perito " + p.Nombre
		},
		apply: func(_ *fiber.Ctx, form model.PeritoForm, p *model.Perito) error {
			form.Nombre = safe.String(form.Nombre, 250)
			form.Domicilio = safe.String(form.Domicilio, 250)
			form.Email = strings.ToLower(strings.TrimSpace(form.Email))
			if _, err := backends.Distritos.Get(form.DistritoID); err != nil && form.DistritoID != 0 {
				return err
			}
			return form.Apply(p)
		},
	}
	h.register(r)
}

func registerRepReportes(r fiber.Router, backends model.Backends) {
	h := &crud[model.RepReporte, model.RepReporteForm]{
		modulo:    model.ModuloRepReportes,
		ruta:      "/rep_reportes",
		store:     backends.RepReportes,
		bitacoras: backends.Bitacoras,
		describe: func(rr model.RepReporte) string {
			return "reporte " + rr.Descripcion
		},
		apply: func(_ *fiber.Ctx, form model.RepReporteForm, rr *model.RepReporte) error {
			form.Descripcion = safe.String(form.Descripcion, 250)
			if form.Descripcion == "" {
				return workflow.ValidationError{Message: "La descripción es obligatoria."}
			}
			return form.Apply(rr)
		},
	}
	h.register(r)
}

func registerSentencias(r fiber.Router, backends model.Backends) {
	h := &crud[model.Sentencia, model.SentenciaForm]{
		modulo:    model.ModuloSentencias,
		ruta:      "/sentencias",
		femenino:  true,
		filtros:   filtros{autoridad: true},
		store:     backends.Sentencias,
		bitacoras: backends.Bitacoras,
		describe: func(s model.Sentencia) string {
			return "sentencia " + s.Sentencia + " expediente " + s.Expediente
		},
		apply: func(c *fiber.Ctx, form model.SentenciaForm, s *model.Sentencia) error {
			actor := actorFrom(c)
			if !actor.IsAdminFor(model.ModuloSentencias) && form.AutoridadID != actor.AutoridadID {
				return workflow.AuthorizationError{Message: "No puede publicar sentencias de otra autoridad."}
			}
			if _, err := backends.Autoridades.Get(form.AutoridadID); err != nil && form.AutoridadID != 0 {
				return err
			}
			form.Sentencia = safe.String(form.Sentencia, 12)
			form.Expediente = safe.String(form.Expediente, 12)
			form.Descripcion = safe.String(form.Descripcion, 1000)
			return form.Apply(s)
		},
	}
	h.register(r)
}

// registerCIDProcedimientos mounts the crud of procedures; a new procedure
// belongs to the authority of whoever writes it
func registerCIDProcedimientos(r fiber.Router, backends model.Backends) {
	h := &crud[model.CIDProcedimiento, model.CIDProcedimientoForm]{
		modulo:    model.ModuloCIDProcedimientos,
		ruta:      "/cid_procedimientos",
		filtros:   filtros{autoridad: true},
		store:     backends.CIDProcedimientos,
		bitacoras: backends.Bitacoras,
		describe: func(p model.CIDProcedimiento) string {
			return "procedimiento " + p.TituloProcedimiento
		},
		apply: func(c *fiber.Ctx, form model.CIDProcedimientoForm, p *model.CIDProcedimiento) error {
			if p.ID == 0 {
				actor := actorFrom(c)
				if actor.AutoridadID == 0 {
					return workflow.AuthorizationError{Message: "No tiene una autoridad asignada."}
				}
				p.AutoridadID = actor.AutoridadID
			}
			form.TituloProcedimiento = safe.String(form.TituloProcedimiento, 250)
			form.Codigo = safe.String(form.Codigo, 12)
			if form.Fecha == "" {
				form.Fecha = time.Now().Format(time.DateOnly)
			}
			return form.Apply(p)
		},
	}
	h.register(r)
}
