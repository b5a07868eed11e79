package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/pjecz/plataforma-web/internal/metrics"
	"github.com/pjecz/plataforma-web/internal/safe"
	"github.com/pjecz/plataforma-web/storage/model"
)

const (
	expedienteMaxLen = 60
	audienciaTiempo  = "2006-01-02 15:04"
)

var tiempoLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTiempo reads a hearing time in loc and returns it in UTC. RFC 3339
// input keeps its own offset.
func ParseTiempo(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range tiempoLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.Errorf("tiempo incorrecto: '%s'", s)
}

// AudienciaInput is a submitted hearing. Decode fills the category-specific
// fields of the detalle chosen by the authority's category.
type AudienciaInput struct {
	AutoridadID uint                                 `json:"autoridad_id"`
	Tiempo      string                               `json:"tiempo"`
	Decode      func(d model.AudienciaDetalle) error `json:"-"`
}

// NewAudiencia stores a new hearing, replacing the active hearing of the
// same authority at the same time.
func (s *Submission) NewAudiencia(actor Actor, in AudienciaInput) (*model.Audiencia, error) {
	d := Audiencias
	if in.AutoridadID == 0 {
		in.AutoridadID = actor.AutoridadID
	}
	if err := d.Gate(s.clock).MayCreateFor(actor, in.AutoridadID); err != nil {
		return nil, s.reject(d, err)
	}
	autoridad, err := s.Eligible(d, in.AutoridadID)
	if err != nil {
		return nil, s.reject(d, err)
	}
	tiempo, err := ParseTiempo(in.Tiempo, s.clock.Location())
	if err != nil {
		return nil, s.reject(d, ValidationError{Message: "El tiempo es incorrecto.", Form: in})
	}
	detalle, err := s.decodeDetalle(autoridad.AudienciaCategoria, in.Decode)
	if err != nil {
		return nil, s.reject(d, ValidationError{Message: err.Error(), Form: in})
	}

	audiencia := &model.Audiencia{
		AutoridadID: autoridad.ID,
		Tiempo:      tiempo,
	}
	audiencia.ApplyDetalle(detalle)
	superseded, err := s.backends.Audiencias.InsertSuperseding(audiencia)
	if err != nil {
		return nil, err
	}
	audiencia.Autoridad = autoridad

	accion, resultado := "Nueva", metrics.ResultadoNueva
	if superseded {
		accion, resultado = "Reemplazada", metrics.ResultadoReemplazada
	}
	err = RecordBitacora(
		s.backends.Bitacoras, d.Modulo, actor,
		fmt.Sprintf("%s audiencia para %s", accion, audiencia.Tiempo.In(s.clock.Location()).Format(audienciaTiempo)),
		recordURL(d, audiencia.ID),
	)
	if err != nil {
		return audiencia, err
	}
	s.metrics.Submission(d.Modulo, resultado)
	return audiencia, nil
}

// EditAudiencia replaces the category-specific fields of an active hearing.
// Its tiempo does not change.
func (s *Submission) EditAudiencia(actor Actor, id uint, decode func(d model.AudienciaDetalle) error) (
	*model.Audiencia, error,
) {
	d := Audiencias
	audiencia, err := s.backends.Audiencias.Get(id)
	if err != nil {
		return nil, err
	}
	if err = d.Gate(s.clock).MayMutate(actor, *audiencia, OpEditar); err != nil {
		return nil, err
	}
	if audiencia.Estatus != model.EstatusActivo {
		return nil, ValidationError{Message: "No puede editar una audiencia eliminada."}
	}
	if audiencia.Autoridad == nil {
		return nil, errors.Errorf("audiencia %d without autoridad", id)
	}
	detalle, err := s.decodeDetalle(audiencia.Autoridad.AudienciaCategoria, decode)
	if err != nil {
		return nil, ValidationError{Message: err.Error()}
	}
	audiencia.ApplyDetalle(detalle)
	if err = s.backends.Audiencias.Save(audiencia); err != nil {
		return nil, err
	}
	err = RecordBitacora(
		s.backends.Bitacoras, d.Modulo, actor, "Editada "+s.describeAudiencia(*audiencia), recordURL(d, audiencia.ID),
	)
	return audiencia, err
}

func (s *Submission) decodeDetalle(c model.AudienciaCategoria, decode func(d model.AudienciaDetalle) error) (
	model.AudienciaDetalle, error,
) {
	detalle, err := model.NewAudienciaDetalle(c)
	if err != nil {
		return nil, err
	}
	if decode != nil {
		if err = decode(detalle); err != nil {
			return nil, errors.New("Los datos de la audiencia son incorrectos.")
		}
	}
	NormalizeDetalle(detalle)
	return detalle, nil
}

// NormalizeDetalle cleans every field of the detalle the way stored hearings
// expect: upper-case safe strings, a default hearing type, a short
// expediente and a caracter that is PUBLICA, PRIVADA or null.
func NormalizeDetalle(detalle model.AudienciaDetalle) {
	switch v := detalle.(type) {
	case *model.Generica:
		v.TipoAudiencia = tipoAudiencia(v.TipoAudiencia)
		v.Expediente = expediente(v.Expediente)
		v.Actores = safeDescripcion(v.Actores)
		v.Demandados = safeDescripcion(v.Demandados)
	case *model.Mapo:
		v.TipoAudiencia = tipoAudiencia(v.TipoAudiencia)
		v.Sala = safeDescripcion(v.Sala)
		if v.Caracter != nil {
			v.Caracter = model.NormalizeCaracter(safe.String(*v.Caracter, 0))
		}
		v.CausaPenal = safeDescripcion(v.CausaPenal)
		v.Delitos = safeDescripcion(v.Delitos)
	case *model.Dipe:
		v.TipoAudiencia = tipoAudiencia(v.TipoAudiencia)
		v.Expediente = expediente(v.Expediente)
		v.Actores = safeDescripcion(v.Actores)
		v.Demandados = safeDescripcion(v.Demandados)
		v.Toca = safeDescripcion(v.Toca)
		v.ExpedienteOrigen = safeDescripcion(v.ExpedienteOrigen)
		v.Imputados = safeDescripcion(v.Imputados)
	case *model.Sape:
		v.TipoAudiencia = tipoAudiencia(v.TipoAudiencia)
		v.Expediente = expediente(v.Expediente)
		v.Actores = safeDescripcion(v.Actores)
		v.Demandados = safeDescripcion(v.Demandados)
		v.Toca = safeDescripcion(v.Toca)
		v.ExpedienteOrigen = safeDescripcion(v.ExpedienteOrigen)
		v.Delitos = safeDescripcion(v.Delitos)
		v.Origen = safeDescripcion(v.Origen)
	}
}

func (s *Submission) describeAudiencia(a model.Audiencia) string {
	clave := ""
	if a.Autoridad != nil {
		clave = a.Autoridad.Clave
	}
	return fmt.Sprintf(
		"la audiencia del %s de %s", a.Tiempo.In(s.clock.Location()).Format(audienciaTiempo), clave,
	)
}

func safeDescripcion(s string) string {
	return safe.String(s, safe.DefaultMaxLen)
}

func tipoAudiencia(s string) string {
	s = safeDescripcion(s)
	if s == "" {
		return model.TipoAudienciaNoDefinido
	}
	return s
}

func expediente(s string) string {
	return safe.String(s, expedienteMaxLen)
}
