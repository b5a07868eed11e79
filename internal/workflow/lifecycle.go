package workflow

import (
	"github.com/pkg/errors"

	"github.com/pjecz/plataforma-web/storage/model"
)

// Lifecycle deletes and recovers submitted records of one workflow.
type Lifecycle[T model.Submittable] struct {
	descriptor Descriptor
	store      model.SubmittableStore[T]
	bitacoras  model.BitacorasStore
	gate       Gate
	describe   func(T) string
	conflict   string
}

// ListasDeAcuerdosLifecycle returns the lifecycle of agreement lists
func (s *Submission) ListasDeAcuerdosLifecycle() *Lifecycle[model.ListaDeAcuerdo] {
	return &Lifecycle[model.ListaDeAcuerdo]{
		descriptor: ListasDeAcuerdos,
		store:      s.backends.ListasDeAcuerdos,
		bitacoras:  s.backends.Bitacoras,
		gate:       ListasDeAcuerdos.Gate(s.clock),
		describe:   describeListaArticulo,
		conflict:   "No puede recuperar esta lista porque ya hay una activa de la misma fecha.",
	}
}

// AudienciasLifecycle returns the lifecycle of hearings
func (s *Submission) AudienciasLifecycle() *Lifecycle[model.Audiencia] {
	return &Lifecycle[model.Audiencia]{
		descriptor: Audiencias,
		store:      s.backends.Audiencias,
		bitacoras:  s.backends.Bitacoras,
		gate:       Audiencias.Gate(s.clock),
		describe:   s.describeAudiencia,
		conflict:   "No puede recuperar esta audiencia porque ya hay una activa en el mismo tiempo.",
	}
}

// Delete moves an active record to B. Deleting a deleted record changes
// nothing and writes no bitacora.
func (l *Lifecycle[T]) Delete(actor Actor, id uint) (*T, error) {
	item, err := l.store.Get(id)
	if err != nil {
		return nil, err
	}
	v := *item
	if v.GetEstatus() == model.EstatusEliminado {
		return item, nil
	}
	if err = l.gate.MayMutate(actor, v, OpEliminar); err != nil {
		return nil, err
	}
	if err = l.store.SetEstatus(id, model.EstatusEliminado); err != nil {
		return nil, err
	}
	if item, err = l.store.Get(id); err != nil {
		return nil, err
	}
	err = RecordBitacora(l.bitacoras, l.descriptor.Modulo, actor, "Eliminada "+l.describe(*item), recordURL(l.descriptor, id))
	return item, err
}

// Recover moves a deleted record back to A, unless another active record
// holds the same authority and logical date.
func (l *Lifecycle[T]) Recover(actor Actor, id uint) (*T, error) {
	item, err := l.store.Get(id)
	if err != nil {
		return nil, err
	}
	v := *item
	if v.GetEstatus() == model.EstatusActivo {
		return item, nil
	}
	if err = l.gate.MayMutate(actor, v, OpRecuperar); err != nil {
		return nil, err
	}
	if err = l.store.RecoverUnique(id); err != nil {
		var exists model.AlreadyExistsError
		if errors.As(err, &exists) {
			return nil, ConflictError{Message: l.conflict}
		}
		return nil, err
	}
	if item, err = l.store.Get(id); err != nil {
		return nil, err
	}
	err = RecordBitacora(l.bitacoras, l.descriptor.Modulo, actor, "Recuperada "+l.describe(*item), recordURL(l.descriptor, id))
	return item, err
}
