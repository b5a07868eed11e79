package bulk

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pjecz/plataforma-web/internal/testutil"
	"github.com/pjecz/plataforma-web/storage/model"
)

var cst = time.FixedZone("CST", -6*60*60)

const feedCSV = `tiempo,tipo_audiencia,expediente,actores,demandados,caracter,sala
2024-05-20 10:30,Inicial,123/2024,Juan Pérez,ACME,publica,Sala 1
2024-05-20 11:00:00,,` + "0123456789012345678901234567890123456789012345678901234567890123456789" + `,,,reservada,
20/05/2024 12:00,Intermedia,1/2024,,,,
2024-05-20 10:30,Repetida,123/2024,,,,
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestFeed(t *testing.T) {
	s := testutil.NewStorage(t)
	autoridad := testutil.Juzgado(t, s, "CIV01")
	var out bytes.Buffer
	b := NewAudiencias(s.Backends(), cst, &out, nil)

	path := writeFile(t, t.TempDir(), "CIV01.csv", feedCSV)
	res, err := b.Feed(context.Background(), path, FeedOptions{})
	require.NoError(t, err)
	assert.Equal(t, FeedResult{Alimentadas: 3, Omitidas: 1}, res)
	assert.Contains(t, out.String(), "Tiempo incorrecto, se omite")
	assert.Contains(t, out.String(), "3 audiencias alimentadas.")

	items, total, err := s.AudienciasStorage().List(model.ListQuery{AutoridadID: autoridad.ID, Ascending: true})
	require.NoError(t, err)
	// without --supersede both 10:30 rows stay active
	assert.EqualValues(t, 3, total)

	first := items[0]
	assert.True(t, time.Date(2024, 5, 20, 16, 30, 0, 0, time.UTC).Equal(first.Tiempo))
	assert.Equal(t, "INICIAL", first.TipoAudiencia)
	assert.Equal(t, "JUAN PEREZ", first.Actores)
	require.NotNil(t, first.Caracter)
	assert.Equal(t, model.CaracterPublica, *first.Caracter)

	var second model.Audiencia
	for _, a := range items {
		if a.Tiempo.Equal(time.Date(2024, 5, 20, 17, 0, 0, 0, time.UTC)) {
			second = a
		}
	}
	require.NotZero(t, second.ID)
	assert.Equal(t, model.TipoAudienciaNoDefinido, second.TipoAudiencia)
	assert.Len(t, second.Expediente, 63)
	assert.True(t, strings.HasSuffix(second.Expediente, "..."))
	assert.Nil(t, second.Caracter)
}

func TestFeedTruncatesExpedienteByCharacter(t *testing.T) {
	s := testutil.NewStorage(t)
	autoridad := testutil.Juzgado(t, s, "CIV01")
	b := NewAudiencias(s.Backends(), cst, &bytes.Buffer{}, nil)

	largo := strings.Repeat("a", 59) + "ñandú/2024"
	path := writeFile(t, t.TempDir(), "CIV01.csv", "tiempo,expediente\n2024-05-20 10:30,"+largo+"\n")
	res, err := b.Feed(context.Background(), path, FeedOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Alimentadas)

	items, _, err := s.AudienciasStorage().List(model.ListQuery{AutoridadID: autoridad.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, utf8.ValidString(items[0].Expediente))
	assert.Equal(t, strings.Repeat("a", 59)+"ñ...", items[0].Expediente)
}

func TestFeedSupersede(t *testing.T) {
	s := testutil.NewStorage(t)
	autoridad := testutil.Juzgado(t, s, "CIV01")
	b := NewAudiencias(s.Backends(), cst, &bytes.Buffer{}, nil)

	path := writeFile(t, t.TempDir(), "CIV01.csv", feedCSV)
	res, err := b.Feed(context.Background(), path, FeedOptions{Supersede: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Reemplazadas)

	_, total, err := s.AudienciasStorage().List(model.ListQuery{AutoridadID: autoridad.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestFeedRejects(t *testing.T) {
	s := testutil.NewStorage(t)
	testutil.Juzgado(t, s, "CIV01")
	notaria := &model.Autoridad{Clave: "NOT01"}
	require.NoError(t, s.AutoridadesStorage().Create(notaria))
	b := NewAudiencias(s.Backends(), cst, &bytes.Buffer{}, nil)
	dir := t.TempDir()
	ctx := context.Background()

	_, err := b.Feed(ctx, filepath.Join(dir, "CIV01.csv"), FeedOptions{})
	require.Error(t, err)

	_, err = b.Feed(ctx, writeFile(t, dir, "XYZ99.csv", feedCSV), FeedOptions{})
	assert.EqualError(t, err, "con el nombre del archivo XYZ99.csv no hay clave en autoridades")

	_, err = b.Feed(ctx, writeFile(t, dir, "NOT01.csv", feedCSV), FeedOptions{})
	assert.EqualError(t, err, "la autoridad no es jurisdiccional")

	_, err = b.Feed(ctx, writeFile(t, dir, "CIV01.csv", "fecha,sala\n2024-05-20,x\n"), FeedOptions{})
	assert.EqualError(t, err, "missing required column: tiempo")
}

func TestBackup(t *testing.T) {
	s := testutil.NewStorage(t)
	autoridad := testutil.Juzgado(t, s, "CIV01")
	otra := testutil.Juzgado(t, s, "FAM01")
	audiencias := s.AudienciasStorage()
	caracter := model.CaracterPrivada
	for _, a := range []*model.Audiencia{
		{AutoridadID: autoridad.ID, Tiempo: time.Date(2024, 5, 21, 15, 0, 0, 0, time.UTC), TipoAudiencia: "B"},
		{AutoridadID: autoridad.ID, Tiempo: time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC), TipoAudiencia: "A", Caracter: &caracter},
		{AutoridadID: autoridad.ID, Tiempo: time.Date(2024, 4, 1, 15, 0, 0, 0, time.UTC), TipoAudiencia: "VIEJA"},
		{AutoridadID: otra.ID, Tiempo: time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC), TipoAudiencia: "OTRA"},
	} {
		require.NoError(t, audiencias.Insert(a))
	}
	eliminada := &model.Audiencia{AutoridadID: autoridad.ID, Tiempo: time.Date(2024, 5, 22, 15, 0, 0, 0, time.UTC)}
	require.NoError(t, audiencias.Insert(eliminada))
	require.NoError(t, audiencias.SetEstatus(eliminada.ID, model.EstatusEliminado))

	var out bytes.Buffer
	b := NewAudiencias(s.Backends(), cst, &out, nil)
	output := filepath.Join(t.TempDir(), "audiencias.csv")
	n, err := b.Backup(
		context.Background(), BackupOptions{AutoridadClave: "CIV01", Desde: "2024-05-01", Output: output},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, out.String(), "Respaldados 2 audiencias en audiencias.csv")

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(
		t, []string{
			"autoridad_clave", "tiempo", "tipo_audiencia", "expediente", "actores", "demandados", "sala",
			"caracter", "causa_penal", "delitos", "toca", "expediente_origen", "imputados", "origen",
		}, rows[0],
	)
	assert.Equal(t, []string{"CIV01", "2024-05-20 09:00:00", "A"}, rows[1][:3])
	assert.Equal(t, "PRIVADA", rows[1][7])
	assert.Equal(t, "B", rows[2][2])

	_, err = b.Backup(context.Background(), BackupOptions{Output: output})
	assert.EqualError(t, err, "audiencias.csv existe, no voy a sobreescribirlo")
}

func TestBackupFeedRoundTrip(t *testing.T) {
	s := testutil.NewStorage(t)
	autoridad := testutil.Juzgado(t, s, "CIV01")
	b := NewAudiencias(s.Backends(), cst, &bytes.Buffer{}, nil)
	dir := t.TempDir()
	ctx := context.Background()

	_, err := b.Feed(ctx, writeFile(t, dir, "CIV01.csv", feedCSV), FeedOptions{})
	require.NoError(t, err)
	backup := filepath.Join(dir, "respaldo.csv")
	n, err := b.Backup(ctx, BackupOptions{AutoridadID: autoridad.ID, Output: backup})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	other := testutil.NewStorage(t)
	testutil.Juzgado(t, other, "CIV01")
	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	res, err := NewAudiencias(other.Backends(), cst, &bytes.Buffer{}, nil).
		Feed(ctx, writeFile(t, t.TempDir(), "CIV01.csv", string(data)), FeedOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Alimentadas)
	assert.Zero(t, res.Omitidas)
}
