package workflow

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pjecz/plataforma-web/storage/model"
)

// RefreshResult counts what a refresh changed
type RefreshResult struct {
	Archivos   int `json:"archivos"`
	Reparadas  int `json:"reparadas"`
	Insertadas int `json:"insertadas"`
	Omitidas   int `json:"omitidas"`
}

func (r RefreshResult) String() string {
	return fmt.Sprintf(
		"%d archivos, %d reparadas, %d insertadas, %d omitidas", r.Archivos, r.Reparadas, r.Insertadas, r.Omitidas,
	)
}

// RefreshListasDeAcuerdos reconciles the agreement lists of an authority with
// the files stored under its directory. Incomplete records whose file exists
// get their url back, and stored files without any record get an active
// record, unless another active record already holds that date.
func (s *Submission) RefreshListasDeAcuerdos(ctx context.Context, actor Actor, autoridadID uint) (
	RefreshResult, error,
) {
	var res RefreshResult
	d := ListasDeAcuerdos
	if !actor.IsAdminFor(d.Modulo) && actor.AutoridadID != autoridadID {
		return res, AuthorizationError{Message: "No tiene permiso para refrescar listas de acuerdos de otra autoridad."}
	}
	autoridad, err := s.Eligible(d, autoridadID)
	if err != nil {
		return res, err
	}
	objects, err := s.blobs.List(ctx, Prefijo(d, autoridad.DirectorioListasDeAcuerdos))
	if err != nil {
		return res, errors.Wrap(err, "listing stored files")
	}
	store := s.backends.ListasDeAcuerdos
	for _, obj := range objects {
		if err = ctx.Err(); err != nil {
			return res, err
		}
		nombre := path.Base(obj.Path)
		fecha, descripcion, hash, ok := ParseArchivoNombre(nombre)
		if !ok {
			continue
		}
		res.Archivos++

		lista, err := s.findArchivo(autoridad.ID, nombre, fecha, hash)
		if err == nil {
			if lista.Incompleto || lista.URL == "" {
				lista.SetArchivo(nombre, obj.URL, false)
				if err = store.Save(lista); err != nil {
					return res, err
				}
				res.Reparadas++
			}
			continue
		}
		var nf model.NotFoundError
		if !errors.As(err, &nf) {
			return res, err
		}

		if _, err = store.FindActive(autoridad.ID, fecha); err == nil {
			log.WithFields(log.Fields{"autoridad": autoridad.Clave, "archivo": nombre}).
				Info("refresh: date already has an active lista, skipping file")
			res.Omitidas++
			continue
		} else if !errors.As(err, &nf) {
			return res, err
		}
		lista = &model.ListaDeAcuerdo{
			AutoridadID: autoridad.ID,
			Fecha:       fecha,
			Descripcion: safeDescripcion(descripcion),
		}
		lista.SetArchivo(nombre, obj.URL, false)
		if _, err = store.InsertSuperseding(lista); err != nil {
			return res, err
		}
		res.Insertadas++
	}
	if res.Reparadas+res.Insertadas > 0 {
		err = RecordBitacora(
			s.backends.Bitacoras, d.Modulo, actor,
			fmt.Sprintf("Refrescadas listas de acuerdos de %s: %s", autoridad.Clave, res),
			fmt.Sprintf("/api/v1/autoridades/%d", autoridad.ID),
		)
	}
	return res, err
}

// findArchivo returns the record stored under nombre. A record that never got
// its file name saved is found through the id encoded in the name.
func (s *Submission) findArchivo(autoridadID uint, nombre string, fecha time.Time, hash string) (
	*model.ListaDeAcuerdo, error,
) {
	store := s.backends.ListasDeAcuerdos
	lista, err := store.FindByArchivo(autoridadID, nombre)
	var nf model.NotFoundError
	if err == nil || !errors.As(err, &nf) {
		return lista, err
	}
	id, decodeErr := s.hashids.Decode(hash)
	if decodeErr != nil {
		return nil, err
	}
	byID, getErr := store.Get(id)
	if getErr != nil {
		if errors.As(getErr, &nf) {
			return nil, err
		}
		return nil, getErr
	}
	if byID.AutoridadID != autoridadID || byID.Archivo != "" || !byID.Fecha.Equal(fecha) {
		return nil, err
	}
	return byID, nil
}
