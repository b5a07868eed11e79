package webapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pjecz/plataforma-web/internal/acuse"
	"github.com/pjecz/plataforma-web/internal/blob"
	"github.com/pjecz/plataforma-web/internal/hashid"
	"github.com/pjecz/plataforma-web/internal/tasks"
	"github.com/pjecz/plataforma-web/internal/testutil"
	"github.com/pjecz/plataforma-web/internal/workflow"
	"github.com/pjecz/plataforma-web/storage"
	"github.com/pjecz/plataforma-web/storage/model"
)

var (
	cst = time.FixedZone("CST", -6*60*60)
	pdf = []byte("%PDF-1.4\n%test\n")
)

type fixture struct {
	storage   *storage.Storage
	hashids   *hashid.Codec
	runner    *tasks.Runner
	app       *fiber.App
	autoridad *model.Autoridad
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := testutil.NewStorage(t)
	blobs, err := blob.NewBadger(nil, blob.WithBaseURL("http://localhost/api/v1/archivos"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })
	h, err := hashid.New("testing salt", 8)
	require.NoError(t, err)
	signer, err := acuse.NewSigner("a test secret of enough length", "plataforma")
	require.NoError(t, err)
	clock := workflow.FixedClock(time.Date(2024, 5, 10, 12, 0, 0, 0, cst), cst)
	backends := s.Backends()
	runner := tasks.NewRunner(tasks.NewMemoryGuard(), backends.Tareas, nil, time.Minute)
	t.Cleanup(runner.Close)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	require.NoError(
		t, Register(
			app.Group("/api/v1"), "", Deps{
				Backends:   backends,
				Submission: workflow.NewSubmission(backends, blobs, h, nil, clock),
				Blobs:      blobs,
				Runner:     runner,
				Acuses:     signer,
			}, nil,
		),
	)
	return &fixture{
		storage:   s,
		hashids:   h,
		runner:    runner,
		app:       app,
		autoridad: testutil.Juzgado(t, s, "CIV01"),
	}
}

type call struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	auth        [2]string
}

func (f *fixture) do(t *testing.T, c call, out any) int {
	t.Helper()
	req := httptest.NewRequest(c.method, c.path, c.body)
	if c.contentType != "" {
		req.Header.Set(fiber.HeaderContentType, c.contentType)
	}
	if c.auth[0] != "" {
		req.Header.Set(
			fiber.HeaderAuthorization,
			"Basic "+base64.StdEncoding.EncodeToString([]byte(c.auth[0]+":"+c.auth[1])),
		)
	}
	res, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func jsonCall(method, path string, v any) call {
	b, _ := json.Marshal(v)
	return call{method: method, path: path, body: bytes.NewReader(b), contentType: fiber.MIMEApplicationJSON}
}

func multipartCall(t *testing.T, path string, fields map[string]string, archivo []byte) call {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if archivo != nil {
		fw, err := w.CreateFormFile("archivo", "lista.pdf")
		require.NoError(t, err)
		_, err = fw.Write(archivo)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return call{method: http.MethodPost, path: path, body: &buf, contentType: w.FormDataContentType()}
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

func TestOpenWithoutUsuarios(t *testing.T) {
	f := newFixture(t)
	var p page[model.Distrito]
	assert.Equal(t, fiber.StatusOK, f.do(t, call{method: http.MethodGet, path: "/api/v1/distritos"}, &p))
	assert.EqualValues(t, 1, p.Total)
}

func TestBasicAuth(t *testing.T) {
	f := newFixture(t)
	password := "secreto"
	_, err := f.storage.UsuariosStorage().Create(
		model.UsuarioForm{
			Email:    "juez@pjecz.gob.mx",
			Password: &password,
			Permisos: model.Permisos{model.ModuloDistritos: model.NivelVer},
		},
	)
	require.NoError(t, err)

	get := func(path string, user, pass string) int {
		return f.do(t, call{method: http.MethodGet, path: path, auth: [2]string{user, pass}}, nil)
	}
	assert.Equal(t, fiber.StatusUnauthorized, get("/api/v1/distritos", "", ""))
	assert.Equal(t, fiber.StatusUnauthorized, get("/api/v1/distritos", "juez@pjecz.gob.mx", "otro"))
	assert.Equal(t, fiber.StatusOK, get("/api/v1/distritos", "juez@pjecz.gob.mx", password))
	assert.Equal(t, fiber.StatusForbidden, get("/api/v1/autoridades", "juez@pjecz.gob.mx", password))
	assert.Equal(t, fiber.StatusOK, get("/api/v1/openapi.yaml", "", ""))
}

func TestDistritosCrud(t *testing.T) {
	f := newFixture(t)

	var d model.Distrito
	status := f.do(
		t, jsonCall(
			http.MethodPost, "/api/v1/distritos",
			model.DistritoForm{Nombre: "Distrito de Saltillo", NombreCorto: "Saltillo", EsDistritoJudicial: true},
		), &d,
	)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "DISTRITO DE SALTILLO", d.Nombre)

	path := "/api/v1/distritos/" + itoa(d.ID)
	status = f.do(
		t, jsonCall(http.MethodPut, path, model.DistritoForm{Nombre: "Distrito Saltillo", NombreCorto: "Saltillo"}), &d,
	)
	require.Equal(t, fiber.StatusOK, status)
	assert.False(t, d.EsDistritoJudicial)

	require.Equal(t, fiber.StatusOK, f.do(t, call{method: http.MethodDelete, path: path}, &d))
	assert.Equal(t, model.EstatusEliminado, d.Estatus)
	require.Equal(t, fiber.StatusOK, f.do(t, call{method: http.MethodDelete, path: path}, nil))

	var eliminados page[model.Distrito]
	require.Equal(
		t, fiber.StatusOK, f.do(t, call{method: http.MethodGet, path: "/api/v1/distritos?estatus=B"}, &eliminados),
	)
	assert.EqualValues(t, 1, eliminados.Total)

	require.Equal(t, fiber.StatusOK, f.do(t, call{method: http.MethodPost, path: path + "/recover"}, &d))
	assert.Equal(t, model.EstatusActivo, d.Estatus)

	assert.Equal(
		t, []string{
			"Recuperado distrito DISTRITO SALTILLO",
			"Eliminado distrito DISTRITO SALTILLO",
			"Modificado distrito DISTRITO SALTILLO",
			"Nuevo distrito DISTRITO DE SALTILLO",
		}, f.bitacoras(t),
	)

	var res errorResponse
	status = f.do(t, jsonCall(http.MethodPost, "/api/v1/distritos", model.DistritoForm{}), &res)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "El nombre es obligatorio.", res.Description)
	assert.Equal(t, fiber.StatusNotFound, f.do(t, call{method: http.MethodGet, path: "/api/v1/distritos/999"}, nil))
}

func TestAutoridadFeminineBitacora(t *testing.T) {
	f := newFixture(t)
	var a model.Autoridad
	status := f.do(
		t, jsonCall(
			http.MethodPost, "/api/v1/autoridades",
			model.AutoridadForm{Clave: "fam01", Descripcion: "Juzgado Familiar", DistritoID: f.autoridad.DistritoID},
		), &a,
	)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "FAM01", a.Clave)
	assert.Equal(t, "Nueva autoridad FAM01", f.bitacoras(t)[0])

	var found model.Autoridad
	require.Equal(
		t, fiber.StatusOK, f.do(t, call{method: http.MethodGet, path: "/api/v1/autoridades/buscar/fam01"}, &found),
	)
	assert.Equal(t, a.ID, found.ID)

	status = f.do(
		t, jsonCall(http.MethodPost, "/api/v1/autoridades", model.AutoridadForm{Clave: "FAM01"}), nil,
	)
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestListaDeAcuerdoUpload(t *testing.T) {
	f := newFixture(t)
	fields := map[string]string{
		"autoridad_id": itoa(f.autoridad.ID),
		"fecha":        "2024-05-10",
		"descripcion":  "Lista de acuerdos",
	}

	var lista model.ListaDeAcuerdo
	status := f.do(t, multipartCall(t, "/api/v1/listas_de_acuerdos", fields, pdf), &lista)
	require.Equal(t, fiber.StatusCreated, status)
	assert.False(t, lista.Incompleto)

	// the returned url is served by the archivos route
	u, err := url.Parse(lista.URL)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, u.EscapedPath(), nil)
	res, err := f.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, pdf, body)

	status = f.do(t, multipartCall(t, "/api/v1/listas_de_acuerdos", fields, pdf), nil)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Reemplazada lista de acuerdos del 2024-05-10 de CIV01", f.bitacoras(t)[0])

	var rejected errorResponse
	fields["fecha"] = "2024-01-01"
	status = f.do(t, multipartCall(t, "/api/v1/listas_de_acuerdos", fields, pdf), &rejected)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "La fecha no debe ser del futuro ni anterior a 90 días.", rejected.Description)
	form, ok := rejected.Form.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", form["fecha"])

	fields["fecha"] = "2024-05-10"
	status = f.do(t, multipartCall(t, "/api/v1/listas_de_acuerdos", fields, []byte("hola")), &rejected)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "No es un archivo PDF.", rejected.Description)
}

func TestListaDeAcuerdoLifecycle(t *testing.T) {
	f := newFixture(t)
	fields := map[string]string{
		"autoridad_id": itoa(f.autoridad.ID),
		"fecha":        "2024-05-09",
		"descripcion":  "Lista",
	}
	var first, second model.ListaDeAcuerdo
	require.Equal(t, fiber.StatusCreated, f.do(t, multipartCall(t, "/api/v1/listas_de_acuerdos", fields, pdf), &first))
	require.Equal(t, fiber.StatusCreated, f.do(t, multipartCall(t, "/api/v1/listas_de_acuerdos", fields, pdf), &second))

	var res errorResponse
	status := f.do(
		t, call{method: http.MethodPost, path: "/api/v1/listas_de_acuerdos/" + itoa(first.ID) + "/recover"}, &res,
	)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "No puede recuperar esta lista porque ya hay una activa de la misma fecha.", res.Description)

	var edited model.ListaDeAcuerdo
	status = f.do(
		t, jsonCall(
			http.MethodPut, "/api/v1/listas_de_acuerdos/"+itoa(second.ID), map[string]string{"descripcion": "Otra"},
		), &edited,
	)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "OTRA", edited.Descripcion)

	var dt datatable[model.ListaDeAcuerdo]
	status = f.do(
		t, call{
			method: http.MethodGet,
			path:   "/api/v1/listas_de_acuerdos/datatable?draw=3&autoridad_id=" + itoa(f.autoridad.ID),
		}, &dt,
	)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 3, dt.Draw)
	assert.EqualValues(t, 1, dt.RecordsTotal)
	assert.Equal(t, second.ID, dt.Data[0].ID)
}

func TestAcuse(t *testing.T) {
	f := newFixture(t)
	fields := map[string]string{
		"autoridad_id": itoa(f.autoridad.ID),
		"fecha":        "2024-05-10",
		"descripcion":  "Lista",
	}
	var lista model.ListaDeAcuerdo
	require.Equal(t, fiber.StatusCreated, f.do(t, multipartCall(t, "/api/v1/listas_de_acuerdos", fields, pdf), &lista))
	idHashed, err := f.hashids.Encode(lista.ID)
	require.NoError(t, err)

	var res acuseResponse
	status := f.do(t, call{method: http.MethodGet, path: "/api/v1/listas_de_acuerdos/acuses/" + idHashed}, &res)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, lista.ID, res.Lista.ID)
	require.NotEmpty(t, res.Token)

	var a acuse.Acuse
	status = f.do(
		t, jsonCall(http.MethodPost, "/api/v1/listas_de_acuerdos/acuses/verificar", map[string]string{"token": res.Token}),
		&a,
	)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, idHashed, a.IDHashed)
	assert.Equal(t, "CIV01", a.Autoridad)
	assert.Equal(t, "2024-05-10", a.Fecha)

	status = f.do(t, call{method: http.MethodGet, path: "/api/v1/listas_de_acuerdos/acuses/zzzz"}, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestRefrescar(t *testing.T) {
	f := newFixture(t)
	var tarea model.Tarea
	status := f.do(
		t, call{method: http.MethodPost, path: "/api/v1/listas_de_acuerdos/refrescar/CIV01"}, &tarea,
	)
	require.Equal(t, fiber.StatusAccepted, status)
	assert.Equal(t, "Refrescar listas de acuerdos de CIV01", tarea.Descripcion)
	f.runner.Wait()

	var tareas page[model.Tarea]
	require.Equal(t, fiber.StatusOK, f.do(t, call{method: http.MethodGet, path: "/api/v1/tareas"}, &tareas))
	require.Len(t, tareas.Data, 1)
	assert.True(t, tareas.Data[0].HaTerminado)
	assert.Equal(t, "0 archivos, 0 reparadas, 0 insertadas, 0 omitidas", tareas.Data[0].Mensaje)
}

func TestAudiencias(t *testing.T) {
	f := newFixture(t)
	body := map[string]any{
		"autoridad_id":   f.autoridad.ID,
		"tiempo":         "2024-05-20 09:00",
		"tipo_audiencia": "Divorcio",
		"expediente":     "123/2024",
		"actores":        "Juan",
		"demandados":     "Maria",
	}
	var a model.Audiencia
	require.Equal(t, fiber.StatusCreated, f.do(t, jsonCall(http.MethodPost, "/api/v1/audiencias", body), &a))
	assert.Equal(t, "DIVORCIO", a.TipoAudiencia)
	assert.Equal(t, "123/2024", a.Expediente)
	assert.True(t, a.Tiempo.Equal(time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)))

	body["tiempo"] = "mañana"
	var res errorResponse
	assert.Equal(
		t, fiber.StatusUnprocessableEntity, f.do(t, jsonCall(http.MethodPost, "/api/v1/audiencias", body), &res),
	)

	path := "/api/v1/audiencias/" + itoa(a.ID)
	require.Equal(
		t, fiber.StatusOK, f.do(t, jsonCall(http.MethodPut, path, map[string]string{"actores": "Pedro"}), &a),
	)
	assert.Equal(t, "PEDRO", a.Actores)
	require.Equal(t, fiber.StatusOK, f.do(t, call{method: http.MethodDelete, path: path}, &a))
	assert.Equal(t, model.EstatusEliminado, a.Estatus)
}

func TestUsuariosPermisosValidation(t *testing.T) {
	f := newFixture(t)
	password := "secreto"
	var res errorResponse
	status := f.do(
		t, jsonCall(
			http.MethodPost, "/api/v1/usuarios", model.UsuarioForm{
				Email:    "nuevo@pjecz.gob.mx",
				Password: &password,
				Permisos: model.Permisos{"EDICTOS": model.NivelVer},
			},
		), &res,
	)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "Módulos desconocidos: EDICTOS.", res.Description)

	var u model.Usuario
	status = f.do(
		t, jsonCall(
			http.MethodPost, "/api/v1/usuarios", model.UsuarioForm{
				Email:    "nuevo@pjecz.gob.mx",
				Password: &password,
				Permisos: model.Permisos{model.ModuloListasDeAcuerdos: model.NivelCrear},
			},
		), &u,
	)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Nuevo usuario nuevo@pjecz.gob.mx", f.bitacoras(t)[0])
}

func TestParametros(t *testing.T) {
	f := newFixture(t)
	status := f.do(t, jsonCall(http.MethodPut, "/api/v1/parametros/limite_dias", map[string]int{"value": 2}), nil)
	require.Equal(t, fiber.StatusOK, status)
	var limit int
	found, err := f.storage.Parametros().GetAs(model.ParametroScopeListasDeAcuerdos, model.ParametroKeyLimiteDias, &limit)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, limit)
	assert.Equal(t, "Modificado parámetro limite_dias a 2", f.bitacoras(t)[0])

	status = f.do(t, jsonCall(http.MethodPut, "/api/v1/parametros/otro", map[string]int{"value": 2}), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{workflow.ValidationError{Message: "x"}, fiber.StatusUnprocessableEntity, "invalid_request"},
		{workflow.EligibilityError{Message: "x"}, fiber.StatusUnprocessableEntity, "not_eligible"},
		{workflow.AuthorizationError{Message: "x"}, fiber.StatusForbidden, "forbidden"},
		{workflow.ConflictError{Message: "x"}, fiber.StatusConflict, "conflict"},
		{workflow.PartialFailureError{Message: "x"}, fiber.StatusBadGateway, "partial_failure"},
		{model.NotFoundError("x"), fiber.StatusNotFound, "not_found"},
		{model.AlreadyExistsError("x"), fiber.StatusConflict, "already_exists"},
		{fiber.NewError(fiber.StatusBadRequest, "x"), fiber.StatusBadRequest, "invalid_request"},
		{io.EOF, fiber.StatusInternalServerError, "server_error"},
	}
	for _, test := range tests {
		status, res := classify(test.err)
		assert.Equal(t, test.status, status, test.err.Error())
		assert.Equal(t, test.code, res.Error)
	}
}

func TestAdaptServerURLPort(t *testing.T) {
	assert.Equal(t, "https://example.org:8443/api", adaptServerURLPort("https://example.org/api", 8443))
	assert.Equal(t, "http://localhost:9000", adaptServerURLPort("http://localhost:8080", 9000))
	assert.Equal(t, "", adaptServerURLPort("", 9000))
	assert.True(t, strings.Contains(string(updateOpenAPIServers([]byte("openapi: 3.0.3\n"), "http://x")), "http://x"))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
