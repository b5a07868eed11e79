package workflow

import (
	"fmt"
	"time"

	"github.com/pjecz/plataforma-web/storage/model"
)

// Op is a mutating operation on a record
type Op string

// Operations checked by the Gate
const (
	OpCrear     Op = "crear"
	OpEditar    Op = "editar"
	OpEliminar  Op = "eliminar"
	OpRecuperar Op = "recuperar"
)

func (o Op) destructive() bool {
	return o == OpEliminar || o == OpRecuperar
}

func (o Op) nivel() model.Nivel {
	switch o {
	case OpEditar:
		return model.NivelModificar
	default:
		return model.NivelCrear
	}
}

// Gate decides whether an actor may mutate a submitted record.
type Gate struct {
	Modulo    string
	Retention time.Duration
	TimeKeyed bool
	Clock     Clock
}

// MayMutate returns an AuthorizationError when actor may not apply op to rec.
//
// Administrators of the module may do anything except delete or recover a
// record created before midnight of the day Retention ago. Everybody else needs the module
// permission, must belong to the record's authority and may only delete or
// recover records dated today.
func (g Gate) MayMutate(actor Actor, rec model.Submittable, op Op) error {
	if actor.IsAdminFor(g.Modulo) {
		if op.destructive() && g.Retention > 0 {
			days := int(g.Retention.Hours() / 24)
			if rec.GetCreado().Before(g.Clock.Midnight().AddDate(0, 0, -days)) {
				return AuthorizationError{
					Message: fmt.Sprintf("No tiene permiso para %s si fue creado hace %d días o más.", op, days),
				}
			}
		}
		return nil
	}
	if !actor.Can(g.Modulo, op.nivel()) {
		return AuthorizationError{Message: fmt.Sprintf("No tiene permiso para %s en %s.", op, g.Modulo)}
	}
	if actor.AutoridadID == 0 || actor.AutoridadID != rec.GetAutoridadID() {
		return AuthorizationError{Message: fmt.Sprintf("No tiene permiso para %s registros de otra autoridad.", op)}
	}
	if op.destructive() && !g.day(rec.LogicalDate()).Equal(g.Clock.Today()) {
		return AuthorizationError{Message: fmt.Sprintf("No tiene permiso para %s o sólo puede %s de hoy.", op, op)}
	}
	return nil
}

// MayCreateFor checks that actor may submit records for autoridadID.
func (g Gate) MayCreateFor(actor Actor, autoridadID uint) error {
	if actor.IsAdminFor(g.Modulo) {
		return nil
	}
	if !actor.Can(g.Modulo, OpCrear.nivel()) {
		return AuthorizationError{Message: fmt.Sprintf("No tiene permiso para %s en %s.", OpCrear, g.Modulo)}
	}
	if actor.AutoridadID == 0 || actor.AutoridadID != autoridadID {
		return AuthorizationError{Message: "No tiene permiso para crear registros de otra autoridad."}
	}
	return nil
}

func (g Gate) day(t time.Time) time.Time {
	if g.TimeKeyed {
		return model.Date(t, g.Clock.Location())
	}
	return t.UTC()
}
