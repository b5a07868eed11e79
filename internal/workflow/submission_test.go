package workflow

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pjecz/plataforma-web/internal/blob"
	"github.com/pjecz/plataforma-web/internal/hashid"
	"github.com/pjecz/plataforma-web/internal/testutil"
	"github.com/pjecz/plataforma-web/storage"
	"github.com/pjecz/plataforma-web/storage/model"
)

var pdf = []byte("%PDF-1.4\n%test\n")

type failingStore struct {
	blob.Store
}

func (failingStore) Put(context.Context, string, []byte, string) (string, error) {
	return "", errors.New("bucket unavailable")
}

type fixture struct {
	storage   *storage.Storage
	blobs     *blob.Badger
	hashids   *hashid.Codec
	clock     Clock
	sub       *Submission
	autoridad *model.Autoridad
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := testutil.NewStorage(t)
	blobs, err := blob.NewBadger(nil, blob.WithBaseURL("http://localhost/archivos"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })
	h, err := hashid.New("testing salt", 8)
	require.NoError(t, err)
	clock := FixedClock(time.Date(2024, 5, 10, 12, 0, 0, 0, cst), cst)
	return &fixture{
		storage:   s,
		blobs:     blobs,
		hashids:   h,
		clock:     clock,
		sub:       NewSubmission(s.Backends(), blobs, h, nil, clock),
		autoridad: testutil.Juzgado(t, s, "CIV01"),
	}
}

func (f *fixture) withBlobs(store blob.Store) *Submission {
	return NewSubmission(f.storage.Backends(), store, f.hashids, nil, f.clock)
}

func (f *fixture) bitacoras(t *testing.T) []string {
	t.Helper()
	items, _, err := f.storage.BitacorasStorage().List(model.ListQuery{})
	require.NoError(t, err)
	out := make([]string, len(items))
	for i, b := range items {
		out[i] = b.Descripcion
	}
	return out
}

func (f *fixture) owner() Actor {
	return listaActor(f.autoridad.ID, model.NivelCrear)
}

func listaInput(fecha string) ListaDeAcuerdoInput {
	return ListaDeAcuerdoInput{
		Fecha:         fecha,
		Descripcion:   "Lista de acuerdos",
		ArchivoNombre: "lista.pdf",
		Archivo:       pdf,
	}
}

func TestNewListaDeAcuerdo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lista, err := f.sub.NewListaDeAcuerdo(ctx, f.owner(), listaInput("2024-05-10"))
	require.NoError(t, err)
	require.NotZero(t, lista.ID)
	assert.Equal(t, f.autoridad.ID, lista.AutoridadID)
	assert.Equal(t, "LISTA DE ACUERDOS", lista.Descripcion)
	assert.False(t, lista.Incompleto)

	hash, err := f.hashids.Encode(lista.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-10-LISTA-DE-ACUERDOS-"+hash+".pdf", lista.Archivo)
	assert.Equal(
		t, "http://localhost/archivos/Listas%20de%20Acuerdos/Distrito/CIV01/2024/MAYO/"+lista.Archivo, lista.URL,
	)

	data, ct, err := f.blobs.Get(ctx, "Listas de Acuerdos/Distrito/CIV01/2024/MAYO/"+lista.Archivo)
	require.NoError(t, err)
	assert.Equal(t, pdf, data)
	assert.Equal(t, "application/pdf", ct)

	assert.Equal(t, []string{"Nueva lista de acuerdos del 2024-05-10 de CIV01"}, f.bitacoras(t))
}

func TestNewListaDeAcuerdoSupersedes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.sub.NewListaDeAcuerdo(ctx, f.owner(), listaInput("2024-05-09"))
	require.NoError(t, err)
	second, err := f.sub.NewListaDeAcuerdo(ctx, f.owner(), listaInput("2024-05-09"))
	require.NoError(t, err)

	got, err := f.storage.ListasDeAcuerdosStorage().Get(first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EstatusEliminado, got.Estatus)

	active, total, err := f.storage.ListasDeAcuerdosStorage().List(model.ListQuery{AutoridadID: f.autoridad.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, second.ID, active[0].ID)
	assert.Equal(t, "Reemplazada lista de acuerdos del 2024-05-09 de CIV01", f.bitacoras(t)[0])
}

func TestNewListaDeAcuerdoWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sub.NewListaDeAcuerdo(ctx, f.owner(), listaInput("2024-05-05"))
	require.NoError(t, err)

	_, err = f.sub.NewListaDeAcuerdo(ctx, f.owner(), listaInput("2024-05-04"))
	var v ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "La fecha no debe ser del futuro ni anterior a 5 días.", v.Message)
	assert.Equal(t, "2024-05-04", v.Form.(ListaDeAcuerdoInput).Fecha)

	_, err = f.sub.NewListaDeAcuerdo(ctx, f.owner(), listaInput("2024-05-11"))
	require.ErrorAs(t, err, &v)

	admin := listaActor(0, model.NivelAdministrar)
	in := listaInput("2024-03-01")
	in.AutoridadID = f.autoridad.ID
	_, err = f.sub.NewListaDeAcuerdo(ctx, admin, in)
	require.NoError(t, err)

	in.Fecha = "2024-02-01"
	_, err = f.sub.NewListaDeAcuerdo(ctx, admin, in)
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "La fecha no debe ser del futuro ni anterior a 90 días.", v.Message)
}

func TestNewListaDeAcuerdoParametroOverride(t *testing.T) {
	f := newFixture(t)
	require.NoError(
		t, f.storage.Parametros().SetAny(model.ParametroScopeListasDeAcuerdos, model.ParametroKeyLimiteDias, 2),
	)
	_, err := f.sub.NewListaDeAcuerdo(context.Background(), f.owner(), listaInput("2024-05-07"))
	var v ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "La fecha no debe ser del futuro ni anterior a 2 días.", v.Message)
}

func TestNewListaDeAcuerdoEligibility(t *testing.T) {
	f := newFixture(t)
	autoridades := f.storage.AutoridadesStorage()

	sinDirectorio := &model.Autoridad{
		DistritoID:       f.autoridad.DistritoID,
		Clave:            "CIV02",
		EsJurisdiccional: true,
	}
	require.NoError(t, autoridades.Create(sinDirectorio))
	noJurisdiccional := &model.Autoridad{
		DistritoID:                 f.autoridad.DistritoID,
		Clave:                      "ADM01",
		DirectorioListasDeAcuerdos: "Distrito/ADM01",
	}
	require.NoError(t, autoridades.Create(noJurisdiccional))

	tests := []struct {
		name        string
		autoridadID uint
		message     string
	}{
		{"missing", 999, "El juzgado/autoridad no existe o no es activa."},
		{"no directorio", sinDirectorio.ID, "El juzgado/autoridad no tiene directorio para listas de acuerdos."},
		{"not jurisdictional", noJurisdiccional.ID, "El juzgado/autoridad no es jurisdiccional."},
	}
	for _, test := range tests {
		t.Run(
			test.name, func(t *testing.T) {
				in := listaInput("2024-05-10")
				in.AutoridadID = test.autoridadID
				_, err := f.sub.NewListaDeAcuerdo(context.Background(), listaActor(0, model.NivelAdministrar), in)
				var e EligibilityError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, test.message, e.Message)
			},
		)
	}

	require.NoError(t, autoridades.SetEstatus(f.autoridad.ID, model.EstatusEliminado))
	_, err := f.sub.NewListaDeAcuerdo(context.Background(), f.owner(), listaInput("2024-05-10"))
	var e EligibilityError
	require.ErrorAs(t, err, &e)
	assert.Empty(t, f.bitacoras(t))
}

func TestNewListaDeAcuerdoPayload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := listaInput("2024-05-10")
	in.Descripcion = "¡¡ !!"
	_, err := f.sub.NewListaDeAcuerdo(ctx, f.owner(), in)
	assert.EqualError(t, err, "La descripción es incorrecta.")

	in = listaInput("2024-05-10")
	in.ArchivoNombre = "lista.docx"
	_, err = f.sub.NewListaDeAcuerdo(ctx, f.owner(), in)
	assert.EqualError(t, err, "No es un archivo PDF.")

	in = listaInput("10/05/2024")
	_, err = f.sub.NewListaDeAcuerdo(ctx, f.owner(), in)
	assert.EqualError(t, err, "La fecha es incorrecta.")

	_, total, err := f.storage.ListasDeAcuerdosStorage().List(model.ListQuery{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestNewListaDeAcuerdoOtherAuthority(t *testing.T) {
	f := newFixture(t)
	otra := testutil.Juzgado(t, f.storage, "FAM01")
	in := listaInput("2024-05-10")
	in.AutoridadID = otra.ID
	_, err := f.sub.NewListaDeAcuerdo(context.Background(), f.owner(), in)
	var authErr AuthorizationError
	require.ErrorAs(t, err, &authErr)
}

func TestNewListaDeAcuerdoPartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	broken := f.withBlobs(failingStore{Store: f.blobs})

	lista, err := broken.NewListaDeAcuerdo(ctx, f.owner(), listaInput("2024-05-10"))
	var partial PartialFailureError
	require.ErrorAs(t, err, &partial)
	require.NotNil(t, lista)

	stored, err := f.storage.ListasDeAcuerdosStorage().Get(lista.ID)
	require.NoError(t, err)
	assert.True(t, stored.Incompleto)
	assert.Empty(t, stored.URL)
	assert.Equal(t, model.EstatusActivo, stored.Estatus)
	assert.Len(t, f.bitacoras(t), 1)

	retried, err := f.sub.RetryArchivo(ctx, f.owner(), lista.ID, "lista.pdf", pdf)
	require.NoError(t, err)
	assert.False(t, retried.Incompleto)
	assert.Equal(t, lista.Archivo, retried.Archivo)
	assert.NotEmpty(t, retried.URL)
}

func TestNewListaDeAcuerdoSaveFailsAfterUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	db := f.storage.DB()
	require.NoError(
		t, db.Exec(
			"CREATE TRIGGER listas_sin_url BEFORE UPDATE ON listas_de_acuerdos WHEN NEW.url <> '' "+
				"BEGIN SELECT RAISE(ABORT, 'url rechazada'); END",
		).Error,
	)

	lista, err := f.sub.NewListaDeAcuerdo(ctx, f.owner(), listaInput("2024-05-10"))
	var partial PartialFailureError
	require.ErrorAs(t, err, &partial)
	require.NotNil(t, lista)
	assert.True(t, lista.Incompleto)

	stored, err := f.storage.ListasDeAcuerdosStorage().Get(lista.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EstatusActivo, stored.Estatus)
	assert.True(t, stored.Incompleto)
	assert.Empty(t, stored.Archivo)
	assert.Empty(t, stored.URL)

	incompletas, err := f.storage.ListasDeAcuerdosStorage().ListIncompletas(f.autoridad.ID)
	require.NoError(t, err)
	require.Len(t, incompletas, 1)
	assert.Equal(t, lista.ID, incompletas[0].ID)

	// the file is in the bucket, so a refresh finds the record by its hashid
	require.NoError(t, db.Exec("DROP TRIGGER listas_sin_url").Error)
	res, err := f.sub.RefreshListasDeAcuerdos(ctx, f.owner(), f.autoridad.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Reparadas)
	assert.Equal(t, 0, res.Insertadas)

	repaired, err := f.storage.ListasDeAcuerdosStorage().Get(lista.ID)
	require.NoError(t, err)
	assert.False(t, repaired.Incompleto)
	assert.Equal(t, lista.Archivo, repaired.Archivo)
	assert.NotEmpty(t, repaired.URL)
}

func TestEditListaDeAcuerdo(t *testing.T) {
	f := newFixture(t)
	lista, err := f.sub.NewListaDeAcuerdo(context.Background(), f.owner(), listaInput("2024-05-10"))
	require.NoError(t, err)

	edited, err := f.sub.EditListaDeAcuerdo(f.owner(), lista.ID, "Lista de acuerdos vespertina")
	require.NoError(t, err)
	assert.Equal(t, "LISTA DE ACUERDOS VESPERTINA", edited.Descripcion)
	assert.Equal(t, "Editada la lista de acuerdos del 2024-05-10 de CIV01", f.bitacoras(t)[0])

	_, err = f.sub.EditListaDeAcuerdo(listaActor(f.autoridad.ID+1, model.NivelCrear), lista.ID, "otra")
	var authErr AuthorizationError
	require.ErrorAs(t, err, &authErr)
}

func TestListaDeAcuerdoLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lifecycle := f.sub.ListasDeAcuerdosLifecycle()

	first, err := f.sub.NewListaDeAcuerdo(ctx, f.owner(), listaInput("2024-05-10"))
	require.NoError(t, err)

	deleted, err := lifecycle.Delete(f.owner(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EstatusEliminado, deleted.Estatus)
	assert.Equal(t, "Eliminada la lista de acuerdos del 2024-05-10 de CIV01", f.bitacoras(t)[0])

	// deleting again changes nothing
	_, err = lifecycle.Delete(f.owner(), first.ID)
	require.NoError(t, err)
	assert.Len(t, f.bitacoras(t), 2)

	recovered, err := lifecycle.Recover(f.owner(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EstatusActivo, recovered.Estatus)
	assert.Equal(t, "Recuperada la lista de acuerdos del 2024-05-10 de CIV01", f.bitacoras(t)[0])

	// a newer list supersedes the first one, which then cannot come back
	second, err := f.sub.NewListaDeAcuerdo(ctx, f.owner(), listaInput("2024-05-10"))
	require.NoError(t, err)
	_, err = lifecycle.Recover(f.owner(), first.ID)
	var conflict ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "No puede recuperar esta lista porque ya hay una activa de la misma fecha.", conflict.Message)

	got, err := f.storage.ListasDeAcuerdosStorage().Get(second.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EstatusActivo, got.Estatus)
}

func TestListaDeAcuerdoLifecycleRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lifecycle := f.sub.ListasDeAcuerdosLifecycle()

	ayer, err := f.sub.NewListaDeAcuerdo(ctx, f.owner(), listaInput("2024-05-09"))
	require.NoError(t, err)
	_, err = lifecycle.Delete(f.owner(), ayer.ID)
	assert.EqualError(t, err, "No tiene permiso para eliminar o sólo puede eliminar de hoy.")

	admin := listaActor(0, model.NivelAdministrar)
	testutil.SetCreado(t, f.storage, "listas_de_acuerdos", ayer.ID, f.clock.Now().AddDate(0, 0, -91))
	_, err = lifecycle.Delete(admin, ayer.ID)
	assert.EqualError(t, err, "No tiene permiso para eliminar si fue creado hace 90 días o más.")

	got, err := f.storage.ListasDeAcuerdosStorage().Get(ayer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EstatusActivo, got.Estatus)
}

func generica(body string) func(d model.AudienciaDetalle) error {
	return func(d model.AudienciaDetalle) error {
		return json.Unmarshal([]byte(body), d)
	}
}

func TestNewAudiencia(t *testing.T) {
	f := newFixture(t)
	actor := Actor{AutoridadID: f.autoridad.ID, Permisos: model.Permisos{model.ModuloAudiencias: model.NivelCrear}}

	a, err := f.sub.NewAudiencia(
		actor, AudienciaInput{
			Tiempo: "2024-05-20 10:30",
			Decode: generica(`{"expediente":"` + strings.Repeat("1", 70) + `","actores":"Juan Pérez"}`),
		},
	)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 5, 20, 16, 30, 0, 0, time.UTC).Equal(a.Tiempo))
	assert.Equal(t, model.TipoAudienciaNoDefinido, a.TipoAudiencia)
	assert.Equal(t, strings.Repeat("1", 60)+"...", a.Expediente)
	assert.Equal(t, "JUAN PEREZ", a.Actores)
	assert.Equal(t, "Nueva audiencia para 2024-05-20 10:30", f.bitacoras(t)[0])

	again, err := f.sub.NewAudiencia(
		actor, AudienciaInput{Tiempo: "2024-05-20T10:30", Decode: generica(`{"tipo_audiencia":"Inicial"}`)},
	)
	require.NoError(t, err)
	assert.Equal(t, "INICIAL", again.TipoAudiencia)
	assert.Equal(t, "Reemplazada audiencia para 2024-05-20 10:30", f.bitacoras(t)[0])

	_, total, err := f.storage.AudienciasStorage().List(model.ListQuery{AutoridadID: f.autoridad.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, err = f.sub.NewAudiencia(actor, AudienciaInput{Tiempo: "mañana"})
	var v ValidationError
	require.ErrorAs(t, err, &v)
}

func TestNewAudienciaMapo(t *testing.T) {
	f := newFixture(t)
	mapo := testutil.Juzgado(t, f.storage, "PEN01")
	mapo.AudienciaCategoria = model.CategoriaMapo
	require.NoError(t, f.storage.AutoridadesStorage().Save(mapo))
	admin := Actor{Permisos: model.Permisos{model.ModuloAudiencias: model.NivelAdministrar}}

	a, err := f.sub.NewAudiencia(
		admin, AudienciaInput{
			AutoridadID: mapo.ID,
			Tiempo:      "2024-05-20 09:00",
			Decode:      generica(`{"sala":"Sala 2","caracter":"publica","delitos":"robo"}`),
		},
	)
	require.NoError(t, err)
	require.NotNil(t, a.Caracter)
	assert.Equal(t, model.CaracterPublica, *a.Caracter)
	assert.Equal(t, "SALA 2", a.Sala)

	a, err = f.sub.NewAudiencia(
		admin, AudienciaInput{
			AutoridadID: mapo.ID,
			Tiempo:      "2024-05-20 11:00",
			Decode:      generica(`{"caracter":"reservada"}`),
		},
	)
	require.NoError(t, err)
	assert.Nil(t, a.Caracter)

	detalle, err := a.Detalle(model.CategoriaMapo)
	require.NoError(t, err)
	assert.IsType(t, &model.Mapo{}, detalle)
}

func TestNewAudienciaWithoutCategoria(t *testing.T) {
	f := newFixture(t)
	f.autoridad.AudienciaCategoria = model.CategoriaNoDefinida
	require.NoError(t, f.storage.AutoridadesStorage().Save(f.autoridad))
	actor := Actor{AutoridadID: f.autoridad.ID, Permisos: model.Permisos{model.ModuloAudiencias: model.NivelCrear}}

	_, err := f.sub.NewAudiencia(actor, AudienciaInput{Tiempo: "2024-05-20 10:30"})
	var e EligibilityError
	require.ErrorAs(t, err, &e)
}

func TestAudienciaLifecycle(t *testing.T) {
	f := newFixture(t)
	actor := Actor{AutoridadID: f.autoridad.ID, Permisos: model.Permisos{model.ModuloAudiencias: model.NivelCrear}}
	a, err := f.sub.NewAudiencia(actor, AudienciaInput{Tiempo: "2024-05-10 17:00"})
	require.NoError(t, err)

	lifecycle := f.sub.AudienciasLifecycle()
	_, err = lifecycle.Delete(actor, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Eliminada la audiencia del 2024-05-10 17:00 de CIV01", f.bitacoras(t)[0])
	_, err = lifecycle.Recover(actor, a.ID)
	require.NoError(t, err)

	edited, err := f.sub.EditAudiencia(actor, a.ID, generica(`{"demandados":"ACME SA"}`))
	require.NoError(t, err)
	assert.Equal(t, "ACME SA", edited.Demandados)
	assert.Equal(t, "Editada la audiencia del 2024-05-10 17:00 de CIV01", f.bitacoras(t)[0])
}
