package storage

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/pjecz/plataforma-web/storage/model"
)

// Storage is a GORM-based storage implementation
type Storage struct {
	db         *gorm.DB
	userParams Argon2idParams
}

var models = []any{
	&model.Distrito{},
	&model.Autoridad{},
	&model.Audiencia{},
	&model.ListaDeAcuerdo{},
	&model.Sentencia{},
	&model.Perito{},
	&model.RepReporte{},
	&model.CIDProcedimiento{},
	&model.Bitacora{},
	&model.Tarea{},
	&model.Parametro{},
	&model.Usuario{},
}

// NewStorage connects to the database and creates a new GORM-based storage
func NewStorage(config Config) (*Storage, error) {
	db, err := Connect(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	return NewStorageFromDB(db, config.UsersHash)
}

// NewStorageFromDB migrates the schema on an open connection and wraps it.
func NewStorageFromDB(db *gorm.DB, userParams Argon2idParams) (*Storage, error) {
	if err := db.AutoMigrate(models...); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}
	// Fill user hash params with defaults if zero values
	if userParams.Time == 0 {
		userParams = defaultArgon2idParams()
	}
	return &Storage{
		db:         db,
		userParams: userParams,
	}, nil
}

// DB returns the underlying connection
func (s *Storage) DB() *gorm.DB {
	return s.db
}

// AutoridadesStorage returns an AutoridadesStorage
func (s *Storage) AutoridadesStorage() *AutoridadesStorage {
	return &AutoridadesStorage{
		LifecycleStorage: newLifecycleStorage[model.Autoridad](s.db, "clave", "Distrito"),
	}
}

// DistritosStorage returns the storage of distritos
func (s *Storage) DistritosStorage() *LifecycleStorage[model.Distrito] {
	return newLifecycleStorage[model.Distrito](s.db, "nombre")
}

// AudienciasStorage returns the storage of audiencias
func (s *Storage) AudienciasStorage() *SubmittableStorage[model.Audiencia] {
	return newSubmittableStorage[model.Audiencia](s.db)
}

// ListasDeAcuerdosStorage returns a ListasDeAcuerdosStorage
func (s *Storage) ListasDeAcuerdosStorage() *ListasDeAcuerdosStorage {
	return &ListasDeAcuerdosStorage{SubmittableStorage: newSubmittableStorage[model.ListaDeAcuerdo](s.db)}
}

// SentenciasStorage returns the storage of sentencias
func (s *Storage) SentenciasStorage() *LifecycleStorage[model.Sentencia] {
	return newLifecycleStorage[model.Sentencia](s.db, "fecha", "Autoridad")
}

// PeritosStorage returns the storage of peritos
func (s *Storage) PeritosStorage() *LifecycleStorage[model.Perito] {
	return newLifecycleStorage[model.Perito](s.db, "nombre", "Distrito")
}

// RepReportesStorage returns the storage of reportes
func (s *Storage) RepReportesStorage() *LifecycleStorage[model.RepReporte] {
	return newLifecycleStorage[model.RepReporte](s.db, "programado")
}

// CIDProcedimientosStorage returns the storage of procedimientos
func (s *Storage) CIDProcedimientosStorage() *LifecycleStorage[model.CIDProcedimiento] {
	return newLifecycleStorage[model.CIDProcedimiento](s.db, "fecha", "Autoridad")
}

// LoadStorageBackends initializes a warehouse and returns grouped backends.
func LoadStorageBackends(cfg Config) (model.Backends, error) {
	warehouse, err := NewStorage(cfg)
	if err != nil {
		return model.Backends{}, err
	}
	return warehouse.Backends(), nil
}

// Backends returns the grouped stores of this warehouse.
func (s *Storage) Backends() model.Backends {
	return model.Backends{
		Autoridades:       s.AutoridadesStorage(),
		Distritos:         s.DistritosStorage(),
		Audiencias:        s.AudienciasStorage(),
		ListasDeAcuerdos:  s.ListasDeAcuerdosStorage(),
		Sentencias:        s.SentenciasStorage(),
		Peritos:           s.PeritosStorage(),
		RepReportes:       s.RepReportesStorage(),
		CIDProcedimientos: s.CIDProcedimientosStorage(),
		Bitacoras:         s.BitacorasStorage(),
		Tareas:            s.TareasStorage(),
		Parametros:        s.Parametros(),
		Usuarios:          s.UsuariosStorage(),
	}
}
