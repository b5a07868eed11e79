package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pjecz/plataforma-web/storage/model"
)

var cst = time.FixedZone("CST", -6*60*60)

func listaActor(autoridadID uint, nivel model.Nivel) Actor {
	return Actor{
		UsuarioID:   7,
		AutoridadID: autoridadID,
		Permisos:    model.Permisos{model.ModuloListasDeAcuerdos: nivel},
	}
}

func TestGateMayMutate(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, cst)
	gate := ListasDeAcuerdos.Gate(FixedClock(now, cst))
	today := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	lista := func(autoridadID uint, fecha time.Time, age time.Duration) model.ListaDeAcuerdo {
		l := model.ListaDeAcuerdo{AutoridadID: autoridadID, Fecha: fecha}
		l.Creado = now.Add(-age)
		return l
	}

	tests := []struct {
		name    string
		actor   Actor
		rec     model.ListaDeAcuerdo
		op      Op
		allowed bool
	}{
		{
			name:    "admin deletes any authority",
			actor:   listaActor(0, model.NivelAdministrar),
			rec:     lista(3, today.AddDate(0, 0, -20), 20*24*time.Hour),
			op:      OpEliminar,
			allowed: true,
		},
		{
			name:    "admin cannot delete past retention",
			actor:   listaActor(0, model.NivelAdministrar),
			rec:     lista(3, today.AddDate(0, 0, -100), 91*24*time.Hour),
			op:      OpEliminar,
			allowed: false,
		},
		{
			name:    "admin edits past retention",
			actor:   listaActor(0, model.NivelAdministrar),
			rec:     lista(3, today.AddDate(0, 0, -100), 100*24*time.Hour),
			op:      OpEditar,
			allowed: true,
		},
		{
			name:    "owner deletes today",
			actor:   listaActor(3, model.NivelCrear),
			rec:     lista(3, today, time.Hour),
			op:      OpEliminar,
			allowed: true,
		},
		{
			name:    "owner cannot delete yesterday",
			actor:   listaActor(3, model.NivelCrear),
			rec:     lista(3, today.AddDate(0, 0, -1), time.Hour),
			op:      OpEliminar,
			allowed: false,
		},
		{
			name:    "owner recovers today",
			actor:   listaActor(3, model.NivelCrear),
			rec:     lista(3, today, time.Hour),
			op:      OpRecuperar,
			allowed: true,
		},
		{
			name:    "other authority",
			actor:   listaActor(4, model.NivelCrear),
			rec:     lista(3, today, time.Hour),
			op:      OpEliminar,
			allowed: false,
		},
		{
			name:    "viewer cannot edit",
			actor:   listaActor(3, model.NivelVer),
			rec:     lista(3, today, time.Hour),
			op:      OpEditar,
			allowed: false,
		},
		{
			name:    "modifier edits older record",
			actor:   listaActor(3, model.NivelModificar),
			rec:     lista(3, today.AddDate(0, 0, -3), 72*time.Hour),
			op:      OpEditar,
			allowed: true,
		},
	}
	for _, test := range tests {
		t.Run(
			test.name, func(t *testing.T) {
				err := gate.MayMutate(test.actor, test.rec, test.op)
				if test.allowed {
					require.NoError(t, err)
					return
				}
				var authErr AuthorizationError
				require.ErrorAs(t, err, &authErr)
			},
		)
	}
}

func TestGateRetentionMessage(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, cst)
	gate := ListasDeAcuerdos.Gate(FixedClock(now, cst))
	l := model.ListaDeAcuerdo{AutoridadID: 1}
	l.Creado = now.AddDate(0, 0, -91)

	err := gate.MayMutate(listaActor(0, model.NivelAdministrar), l, OpRecuperar)
	assert.EqualError(t, err, "No tiene permiso para recuperar si fue creado hace 90 días o más.")
}

func TestGateRetentionCountsFromMidnight(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, cst)
	gate := ListasDeAcuerdos.Gate(FixedClock(now, cst))
	admin := listaActor(0, model.NivelAdministrar)
	l := model.ListaDeAcuerdo{AutoridadID: 1}

	// 90 days ago, later in the day than now
	l.Creado = time.Date(2024, 2, 10, 18, 0, 0, 0, cst)
	require.NoError(t, gate.MayMutate(admin, l, OpEliminar))

	// 90 days ago, first minute of that day
	l.Creado = time.Date(2024, 2, 10, 0, 0, 0, 0, cst)
	require.NoError(t, gate.MayMutate(admin, l, OpRecuperar))

	// one minute before that midnight
	l.Creado = time.Date(2024, 2, 9, 23, 59, 0, 0, cst)
	var authErr AuthorizationError
	require.ErrorAs(t, gate.MayMutate(admin, l, OpEliminar), &authErr)
}

func TestGateTimeKeyedUsesLocalDay(t *testing.T) {
	// 23:30 local on May 10 is already May 11 in UTC
	now := time.Date(2024, 5, 10, 23, 30, 0, 0, cst)
	gate := Audiencias.Gate(FixedClock(now, cst))
	a := model.Audiencia{AutoridadID: 3, Tiempo: time.Date(2024, 5, 10, 22, 0, 0, 0, cst).UTC()}
	a.Creado = now

	actor := Actor{AutoridadID: 3, Permisos: model.Permisos{model.ModuloAudiencias: model.NivelCrear}}
	require.NoError(t, gate.MayMutate(actor, a, OpEliminar))
}

func TestGateMayCreateFor(t *testing.T) {
	gate := ListasDeAcuerdos.Gate(Clock{})
	require.NoError(t, gate.MayCreateFor(listaActor(3, model.NivelCrear), 3))
	require.NoError(t, gate.MayCreateFor(listaActor(0, model.NivelAdministrar), 9))
	require.Error(t, gate.MayCreateFor(listaActor(3, model.NivelCrear), 9))
	require.Error(t, gate.MayCreateFor(listaActor(3, model.NivelModificar), 3))
	require.Error(t, gate.MayCreateFor(listaActor(0, model.NivelCrear), 0))
}

func TestBootstrapActor(t *testing.T) {
	a := Bootstrap()
	for _, m := range model.Modulos {
		assert.True(t, a.IsAdminFor(m), m)
	}
	assert.Nil(t, a.usuarioID())
}
