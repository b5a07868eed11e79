package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pjecz/plataforma-web/internal/blob"
	"github.com/pjecz/plataforma-web/internal/hashid"
	"github.com/pjecz/plataforma-web/internal/metrics"
	"github.com/pjecz/plataforma-web/storage"
	"github.com/pjecz/plataforma-web/storage/model"
)

// Submission runs the authority-scoped submission workflows.
type Submission struct {
	backends model.Backends
	blobs    blob.Store
	hashids  *hashid.Codec
	metrics  *metrics.Metrics
	clock    Clock
}

// NewSubmission returns a Submission. m may be nil.
func NewSubmission(
	backends model.Backends, blobs blob.Store, hashids *hashid.Codec, m *metrics.Metrics, clock Clock,
) *Submission {
	return &Submission{
		backends: backends,
		blobs:    blobs,
		hashids:  hashids,
		metrics:  m,
		clock:    clock,
	}
}

// Clock returns the clock used by the workflows
func (s *Submission) Clock() Clock {
	return s.clock
}

// Hashids returns the id codec used in file names and receipts
func (s *Submission) Hashids() *hashid.Codec {
	return s.hashids
}

// Eligible loads the authority and checks that it may submit records of
// the workflow d.
func (s *Submission) Eligible(d Descriptor, autoridadID uint) (*model.Autoridad, error) {
	a, err := s.backends.Autoridades.Get(autoridadID)
	if err != nil {
		var nf model.NotFoundError
		if errors.As(err, &nf) {
			return nil, EligibilityError{Message: "El juzgado/autoridad no existe o no es activa."}
		}
		return nil, err
	}
	if a.Estatus != model.EstatusActivo {
		return nil, EligibilityError{Message: "El juzgado/autoridad no existe o no es activa."}
	}
	if d.FileRequired && !a.EnDistritoJudicial() {
		return nil, EligibilityError{Message: "El juzgado/autoridad no está en un distrito jurisdiccional."}
	}
	if !a.EsJurisdiccional {
		return nil, EligibilityError{Message: "El juzgado/autoridad no es jurisdiccional."}
	}
	switch d.Modulo {
	case model.ModuloListasDeAcuerdos:
		if a.DirectorioListasDeAcuerdos == "" {
			return nil, EligibilityError{Message: "El juzgado/autoridad no tiene directorio para listas de acuerdos."}
		}
	case model.ModuloAudiencias:
		if _, err = model.NewAudienciaDetalle(a.AudienciaCategoria); err != nil {
			return nil, EligibilityError{Message: "El juzgado/autoridad no tiene categoría de audiencias."}
		}
	}
	return a, nil
}

// Limit returns how many days back actor may date a record of autoridad.
func (s *Submission) Limit(d Descriptor, actor Actor, a *model.Autoridad) (int, error) {
	if actor.IsAdminFor(d.Modulo) {
		return storage.GetIntParametro(
			s.backends.Parametros, d.ParametroScope, model.ParametroKeyLimiteAdministradoresDias, d.AdminCap,
		)
	}
	selfCap, err := storage.GetIntParametro(
		s.backends.Parametros, d.ParametroScope, model.ParametroKeyLimiteDias, d.SelfCap,
	)
	if err != nil {
		return 0, err
	}
	return EffectiveLimit(a.LimiteDiasListasDeAcuerdos, selfCap), nil
}

func (s *Submission) reject(d Descriptor, err error) error {
	s.metrics.Submission(d.Modulo, metrics.ResultadoRechazada)
	return err
}

// ListaDeAcuerdoInput is a submitted agreement list. AutoridadID zero means
// the actor's own authority.
type ListaDeAcuerdoInput struct {
	AutoridadID   uint   `json:"autoridad_id"`
	Fecha         string `json:"fecha"`
	Descripcion   string `json:"descripcion"`
	ArchivoNombre string `json:"archivo_nombre"`
	Archivo       []byte `json:"-"`
}

// NewListaDeAcuerdo stores a new agreement list, replacing the active one of
// the same authority and date, and uploads its PDF.
//
// The record is inserted with Incompleto set, which is cleared only once the
// file is stored and the record saved. When either step fails the record is
// kept incompleto and a PartialFailureError is returned.
func (s *Submission) NewListaDeAcuerdo(ctx context.Context, actor Actor, in ListaDeAcuerdoInput) (
	*model.ListaDeAcuerdo, error,
) {
	d := ListasDeAcuerdos
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
	limit, err := s.Limit(d, actor, autoridad)
	if err != nil {
		return nil, err
	}

	fecha, err := model.ParseDate(in.Fecha)
	if err != nil {
		return nil, s.reject(d, ValidationError{Message: "La fecha es incorrecta.", Form: in})
	}
	if err = CheckWindow(s.clock.Today(), fecha, limit); err != nil {
		return nil, s.reject(d, withForm(err, in))
	}
	descripcion := safeDescripcion(in.Descripcion)
	if descripcion == "" {
		return nil, s.reject(d, ValidationError{Message: "La descripción es incorrecta.", Form: in})
	}
	if !isPDF(in.ArchivoNombre, in.Archivo) {
		return nil, s.reject(d, ValidationError{Message: "No es un archivo PDF.", Form: in})
	}

	lista := &model.ListaDeAcuerdo{
		AutoridadID: autoridad.ID,
		Fecha:       fecha,
		Descripcion: descripcion,
		Incompleto:  true,
	}
	superseded, err := s.backends.ListasDeAcuerdos.InsertSuperseding(lista)
	if err != nil {
		return nil, err
	}
	lista.Autoridad = autoridad

	uploadErr := s.storeArchivo(ctx, d, lista, in.Archivo)

	accion := "Nueva"
	resultado := metrics.ResultadoNueva
	if superseded {
		accion = "Reemplazada"
		resultado = metrics.ResultadoReemplazada
	}
	descripcionBitacora := fmt.Sprintf("%s %s", accion, describeLista(*lista))
	if err = RecordBitacora(
		s.backends.Bitacoras, d.Modulo, actor, descripcionBitacora, recordURL(d, lista.ID),
	); err != nil {
		return lista, err
	}
	if uploadErr != nil {
		s.metrics.Submission(d.Modulo, metrics.ResultadoIncompleta)
		return lista, PartialFailureError{
			Message: "La lista de acuerdos se guardó pero el archivo no pudo subirse.",
			Record:  lista,
			Err:     uploadErr,
		}
	}
	s.metrics.Submission(d.Modulo, resultado)
	return lista, nil
}

// storeArchivo uploads data under the record's deterministic path and saves
// the outcome on the record. The record stays incompleto unless both the
// upload and the save succeed.
func (s *Submission) storeArchivo(ctx context.Context, d Descriptor, lista *model.ListaDeAcuerdo, data []byte) error {
	hash, err := s.hashids.Encode(lista.ID)
	if err != nil {
		lista.Incompleto = true
		return err
	}
	nombre := ArchivoNombre(d, lista.Fecha, lista.Descripcion, hash)
	ruta := ArchivoRuta(d, lista.Autoridad.DirectorioListasDeAcuerdos, lista.Fecha, nombre)
	url, putErr := s.blobs.Put(ctx, ruta, data, d.ContentType)
	if putErr != nil {
		log.WithError(putErr).WithField("ruta", ruta).Error("upload failed")
		lista.SetArchivo(nombre, "", true)
	} else {
		lista.SetArchivo(nombre, url, false)
	}
	if err = s.backends.ListasDeAcuerdos.Save(lista); err != nil {
		log.WithError(err).WithField("ruta", ruta).Error("saving uploaded file failed")
		lista.Incompleto = true
		return err
	}
	return putErr
}

// RetryArchivo uploads the PDF of an existing agreement list again, typically
// one left incompleto by a failed upload.
func (s *Submission) RetryArchivo(ctx context.Context, actor Actor, id uint, nombre string, data []byte) (
	*model.ListaDeAcuerdo, error,
) {
	d := ListasDeAcuerdos
	lista, err := s.backends.ListasDeAcuerdos.Get(id)
	if err != nil {
		return nil, err
	}
	if err = d.Gate(s.clock).MayMutate(actor, *lista, OpEditar); err != nil {
		return nil, err
	}
	if lista.Estatus != model.EstatusActivo {
		return nil, ValidationError{Message: "No puede subir el archivo de una lista eliminada."}
	}
	if !isPDF(nombre, data) {
		return nil, ValidationError{Message: "No es un archivo PDF."}
	}
	if lista.Autoridad == nil {
		return nil, errors.Errorf("lista de acuerdos %d without autoridad", id)
	}
	uploadErr := s.storeArchivo(ctx, d, lista, data)
	if err = RecordBitacora(
		s.backends.Bitacoras, d.Modulo, actor, "Subido el archivo de "+describeLista(*lista), recordURL(d, lista.ID),
	); err != nil {
		return lista, err
	}
	if uploadErr != nil {
		return lista, PartialFailureError{
			Message: "El archivo no pudo subirse.",
			Record:  lista,
			Err:     uploadErr,
		}
	}
	return lista, nil
}

// EditListaDeAcuerdo changes the description of an active agreement list.
// The stored file keeps its name.
func (s *Submission) EditListaDeAcuerdo(actor Actor, id uint, descripcion string) (*model.ListaDeAcuerdo, error) {
	d := ListasDeAcuerdos
	lista, err := s.backends.ListasDeAcuerdos.Get(id)
	if err != nil {
		return nil, err
	}
	if err = d.Gate(s.clock).MayMutate(actor, *lista, OpEditar); err != nil {
		return nil, err
	}
	if lista.Estatus != model.EstatusActivo {
		return nil, ValidationError{Message: "No puede editar una lista eliminada."}
	}
	descripcion = safeDescripcion(descripcion)
	if descripcion == "" {
		return nil, ValidationError{Message: "La descripción es incorrecta.", Form: map[string]string{"descripcion": descripcion}}
	}
	lista.Descripcion = descripcion
	if err = s.backends.ListasDeAcuerdos.Save(lista); err != nil {
		return nil, err
	}
	err = RecordBitacora(
		s.backends.Bitacoras, d.Modulo, actor, "Editada "+describeListaArticulo(*lista), recordURL(d, lista.ID),
	)
	return lista, err
}

func describeLista(l model.ListaDeAcuerdo) string {
	clave := ""
	if l.Autoridad != nil {
		clave = l.Autoridad.Clave
	}
	return fmt.Sprintf("lista de acuerdos del %s de %s", l.Fecha.Format(time.DateOnly), clave)
}

func describeListaArticulo(l model.ListaDeAcuerdo) string {
	return "la " + describeLista(l)
}

func withForm(err error, form any) error {
	var v ValidationError
	if errors.As(err, &v) {
		v.Form = form
		return v
	}
	return err
}
