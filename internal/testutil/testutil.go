// Package testutil opens in-memory stores for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pjecz/plataforma-web/storage"
	"github.com/pjecz/plataforma-web/storage/model"
)

var databases atomic.Int64

// NewStorage returns a migrated storage backed by a private in-memory
// sqlite database.
func NewStorage(t *testing.T) *storage.Storage {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := storage.Connect(
		storage.Config{
			Driver: storage.DriverSQLitePure,
			DSN:    fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, databases.Add(1)),
		},
	)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s, err := storage.NewStorageFromDB(
		db, storage.Argon2idParams{
			Time:        1,
			MemoryKiB:   8 * 1024,
			Parallelism: 1,
			KeyLen:      32,
			SaltLen:     16,
		},
	)
	require.NoError(t, err)
	return s
}

// Juzgado creates an active jurisdictional authority inside a judicial
// district, able to submit every kind of record.
func Juzgado(t *testing.T, s *storage.Storage, clave string) *model.Autoridad {
	t.Helper()
	d := &model.Distrito{
		Nombre:             "DISTRITO " + clave,
		NombreCorto:        clave,
		EsDistritoJudicial: true,
	}
	require.NoError(t, s.DistritosStorage().Create(d))
	a := &model.Autoridad{
		DistritoID:                 &d.ID,
		Clave:                      clave,
		Descripcion:                "JUZGADO " + clave,
		DescripcionCorta:           clave,
		EsJurisdiccional:           true,
		OrganoJurisdiccional:       model.OrganoJuzgadoPrimeraInstancia,
		AudienciaCategoria:         model.CategoriaGenerica,
		DirectorioListasDeAcuerdos: "Distrito/" + clave,
		LimiteDiasListasDeAcuerdos: 5,
	}
	require.NoError(t, s.AutoridadesStorage().Create(a))
	a.Distrito = d
	return a
}

// SetCreado overwrites the creation time of a record.
func SetCreado(t *testing.T, s *storage.Storage, table string, id uint, creado time.Time) {
	t.Helper()
	require.NoError(
		t, s.DB().Table(table).Where("id = ?", id).UpdateColumn("creado", creado.UTC()).Error,
	)
}
