package storage

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pjecz/plataforma-web/storage/model"
)

// LifecycleStorage implements model.LifecycleStore for one record type.
type LifecycleStorage[T model.Lifecycled] struct {
	db *gorm.DB
	// dateColumn is filtered by ListQuery.Desde/Hasta and orders listings
	dateColumn string
	preloads   []string
}

func newLifecycleStorage[T model.Lifecycled](db *gorm.DB, dateColumn string, preloads ...string) *LifecycleStorage[T] {
	return &LifecycleStorage[T]{
		db:         db,
		dateColumn: dateColumn,
		preloads:   preloads,
	}
}

func (s *LifecycleStorage[T]) withPreloads(tx *gorm.DB) *gorm.DB {
	for _, p := range s.preloads {
		tx = tx.Preload(p)
	}
	return tx
}

// Get returns the record with the passed id, whatever its estatus
func (s *LifecycleStorage[T]) Get(id uint) (*T, error) {
	item := new(T)
	if err := s.withPreloads(s.db).First(item, id).Error; err != nil {
		return nil, notFoundOr(err, "%s not found: %d", tableName[T](), id)
	}
	return item, nil
}

// List returns a page of records and the number of records matching the filters
func (s *LifecycleStorage[T]) List(q model.ListQuery) ([]T, int64, error) {
	estatus := q.Estatus
	if estatus == "" {
		estatus = model.EstatusActivo
	}
	base := s.db.Model(new(T)).Where("estatus = ?", estatus)
	if q.AutoridadID != 0 {
		base = base.Where("autoridad_id = ?", q.AutoridadID)
	}
	if q.DistritoID != 0 {
		base = base.Where("distrito_id = ?", q.DistritoID)
	}
	if q.Desde != nil {
		base = base.Where(s.dateColumn+" >= ?", q.Desde.UTC())
	}
	if q.Hasta != nil {
		// Hasta is a calendar day; include all of it
		base = base.Where(s.dateColumn+" < ?", q.Hasta.UTC().AddDate(0, 0, 1))
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrapf(err, "%s: count failed", tableName[T]())
	}

	tx := s.withPreloads(base).Order(
		clause.OrderByColumn{
			Column: clause.Column{Name: s.dateColumn},
			Desc:   !q.Ascending,
		},
	).Order("id")
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	var items []T
	if err := tx.Find(&items).Error; err != nil {
		return nil, 0, errors.Wrapf(err, "%s: list failed", tableName[T]())
	}
	return items, total, nil
}

func defaultEstatus(item any) {
	if r, ok := item.(interface{ DefaultEstatus() }); ok {
		r.DefaultEstatus()
	}
}

// Create inserts a new record
func (s *LifecycleStorage[T]) Create(item *T) error {
	defaultEstatus(item)
	if err := s.db.Omit(clause.Associations).Create(item).Error; err != nil {
		if isUniqueConstraintError(err) {
			return model.AlreadyExistsErrorFmt("%s already exists", tableName[T]())
		}
		return errors.Wrapf(err, "%s: create failed", tableName[T]())
	}
	return nil
}

// Save updates all columns of an existing record
func (s *LifecycleStorage[T]) Save(item *T) error {
	if err := s.db.Omit(clause.Associations).Save(item).Error; err != nil {
		if isUniqueConstraintError(err) {
			return model.AlreadyExistsErrorFmt("%s already exists", tableName[T]())
		}
		return errors.Wrapf(err, "%s: save failed", tableName[T]())
	}
	return nil
}

// SetEstatus moves the record to the passed estatus
func (s *LifecycleStorage[T]) SetEstatus(id uint, e model.Estatus) error {
	if !e.Valid() {
		return errors.Errorf("invalid estatus '%s'", e)
	}
	var n int64
	if err := s.db.Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
		return errors.WithStack(err)
	}
	if n == 0 {
		return model.NotFoundErrorFmt("%s not found: %d", tableName[T](), id)
	}
	return errors.WithStack(s.db.Model(new(T)).Where("id = ?", id).Update("estatus", e).Error)
}

// SubmittableStorage implements model.SubmittableStore. The (autoridad,
// logical date) invariant is kept by superseding inside one transaction that
// holds the authority row lock, never by a unique index.
type SubmittableStorage[T model.Submittable] struct {
	*LifecycleStorage[T]
	keyColumn string
}

func newSubmittableStorage[T model.Submittable](db *gorm.DB) *SubmittableStorage[T] {
	var zero T
	col := zero.KeyColumn()
	return &SubmittableStorage[T]{
		LifecycleStorage: newLifecycleStorage[T](db, col, "Autoridad"),
		keyColumn:        col,
	}
}

// lockAutoridad takes a row lock on the authority. SQLite ignores the FOR
// clause and serializes writers on its own.
func lockAutoridad(tx *gorm.DB, autoridadID uint) error {
	var a model.Autoridad
	err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Select("id").
		First(&a, autoridadID).Error
	if err != nil {
		return notFoundOr(err, "autoridad not found: %d", autoridadID)
	}
	return nil
}

// InsertSuperseding deactivates the active record holding the same key and
// inserts item as active.
func (s *SubmittableStorage[T]) InsertSuperseding(item *T) (superseded bool, err error) {
	defaultEstatus(item)
	v := *item
	key := v.LogicalDate().UTC()
	err = s.db.Transaction(
		func(tx *gorm.DB) error {
			if err := lockAutoridad(tx, v.GetAutoridadID()); err != nil {
				return err
			}
			res := tx.Model(new(T)).
				Where("autoridad_id = ? AND "+s.keyColumn+" = ? AND estatus = ?", v.GetAutoridadID(), key, model.EstatusActivo).
				Update("estatus", model.EstatusEliminado)
			if res.Error != nil {
				return errors.Wrapf(res.Error, "%s: supersede failed", tableName[T]())
			}
			superseded = res.RowsAffected > 0
			if err := tx.Omit(clause.Associations).Create(item).Error; err != nil {
				return errors.Wrapf(err, "%s: create failed", tableName[T]())
			}
			return nil
		},
	)
	return
}

// Insert stores item without the supersede step
func (s *SubmittableStorage[T]) Insert(item *T) error {
	return s.Create(item)
}

// FindActive returns the active record for the (autoridad, key)
func (s *SubmittableStorage[T]) FindActive(autoridadID uint, key time.Time) (*T, error) {
	item := new(T)
	err := s.withPreloads(s.db).
		Where("autoridad_id = ? AND "+s.keyColumn+" = ? AND estatus = ?", autoridadID, key.UTC(), model.EstatusActivo).
		First(item).Error
	if err != nil {
		return nil, notFoundOr(err, "no active %s for autoridad %d", tableName[T](), autoridadID)
	}
	return item, nil
}

// RecoverUnique reactivates the record unless its key is taken
func (s *SubmittableStorage[T]) RecoverUnique(id uint) error {
	return s.db.Transaction(
		func(tx *gorm.DB) error {
			item := new(T)
			if err := tx.First(item, id).Error; err != nil {
				return notFoundOr(err, "%s not found: %d", tableName[T](), id)
			}
			v := *item
			if err := lockAutoridad(tx, v.GetAutoridadID()); err != nil {
				return err
			}
			var n int64
			err := tx.Model(new(T)).
				Where(
					"autoridad_id = ? AND "+s.keyColumn+" = ? AND estatus = ? AND id <> ?",
					v.GetAutoridadID(), v.LogicalDate().UTC(), model.EstatusActivo, id,
				).
				Count(&n).Error
			if err != nil {
				return errors.WithStack(err)
			}
			if n > 0 {
				return model.AlreadyExistsErrorFmt("an active %s already holds this date", tableName[T]())
			}
			return errors.WithStack(tx.Model(new(T)).Where("id = ?", id).Update("estatus", model.EstatusActivo).Error)
		},
	)
}

// ListasDeAcuerdosStorage implements model.ListasDeAcuerdosStore
type ListasDeAcuerdosStorage struct {
	*SubmittableStorage[model.ListaDeAcuerdo]
}

// FindByArchivo returns the record, in any estatus, stored under archivo
func (s *ListasDeAcuerdosStorage) FindByArchivo(autoridadID uint, archivo string) (*model.ListaDeAcuerdo, error) {
	var l model.ListaDeAcuerdo
	if err := s.db.Where("autoridad_id = ? AND archivo = ?", autoridadID, archivo).First(&l).Error; err != nil {
		return nil, notFoundOr(err, "lista de acuerdos not found: %s", archivo)
	}
	return &l, nil
}

// ListIncompletas returns the active records whose file was never stored
func (s *ListasDeAcuerdosStorage) ListIncompletas(autoridadID uint) ([]model.ListaDeAcuerdo, error) {
	var items []model.ListaDeAcuerdo
	err := s.db.Where("autoridad_id = ? AND incompleto = ? AND estatus = ?", autoridadID, true, model.EstatusActivo).
		Order("fecha").
		Find(&items).Error
	return items, errors.WithStack(err)
}
