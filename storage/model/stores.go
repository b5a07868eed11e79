package model

import (
	"time"
)

// ListQuery selects a page of records. Zero values mean "no filter", except
// Estatus, whose zero value lists active records.
type ListQuery struct {
	Estatus     Estatus
	AutoridadID uint
	DistritoID  uint
	// Desde and Hasta bound the logical date column, inclusive.
	Desde     *time.Time
	Hasta     *time.Time
	Ascending bool
	Offset    int
	Limit     int
}

// LifecycleStore is the storage abstraction shared by every soft-deletable
// record type.
type LifecycleStore[T Lifecycled] interface {
	Get(id uint) (*T, error)
	// List returns the page selected by q and the number of records matching
	// the filters.
	List(q ListQuery) ([]T, int64, error)
	Create(item *T) error
	Save(item *T) error
	SetEstatus(id uint, e Estatus) error
}

// SubmittableStore adds the (autoridad, logical date) uniqueness rules.
type SubmittableStore[T Submittable] interface {
	LifecycleStore[T]
	// InsertSuperseding deactivates the active record with the same
	// authority and logical date, if any, and inserts item, atomically.
	InsertSuperseding(item *T) (superseded bool, err error)
	// Insert stores item without looking at other records.
	Insert(item *T) error
	// FindActive returns the active record for the key or a NotFoundError.
	FindActive(autoridadID uint, key time.Time) (*T, error)
	// RecoverUnique reactivates the record unless another active record holds
	// its key, in which case an AlreadyExistsError is returned.
	RecoverUnique(id uint) error
}

// ListasDeAcuerdosStore adds the queries used when reconciling stored files.
type ListasDeAcuerdosStore interface {
	SubmittableStore[ListaDeAcuerdo]
	FindByArchivo(autoridadID uint, archivo string) (*ListaDeAcuerdo, error)
	ListIncompletas(autoridadID uint) ([]ListaDeAcuerdo, error)
}

// AutoridadesStore adds lookup by clave.
type AutoridadesStore interface {
	LifecycleStore[Autoridad]
	// Find accepts a numeric id or a clave.
	Find(ident string) (*Autoridad, error)
}
