package storage

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/pjecz/plataforma-web/storage/model"
)

// BitacorasStorage is the append-only audit log
type BitacorasStorage struct {
	db *gorm.DB
}

// BitacorasStorage returns a BitacorasStorage
func (s *Storage) BitacorasStorage() *BitacorasStorage {
	return &BitacorasStorage{db: s.db}
}

// Append writes a new entry
func (s *BitacorasStorage) Append(entry *model.Bitacora) error {
	entry.ID = 0
	return errors.Wrap(s.db.Create(entry).Error, "bitacoras: append failed")
}

// List returns the newest entries first. Estatus and date filters of q do
// not apply; AutoridadID is ignored.
func (s *BitacorasStorage) List(q model.ListQuery) ([]model.Bitacora, int64, error) {
	base := s.db.Model(&model.Bitacora{})
	if q.Desde != nil {
		base = base.Where("creado >= ?", q.Desde.UTC())
	}
	if q.Hasta != nil {
		base = base.Where("creado < ?", q.Hasta.UTC().AddDate(0, 0, 1))
	}
	base = base.Session(&gorm.Session{})
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, errors.WithStack(err)
	}
	tx := base.Order("creado DESC").Order("id DESC")
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	var items []model.Bitacora
	if err := tx.Find(&items).Error; err != nil {
		return nil, 0, errors.WithStack(err)
	}
	return items, total, nil
}
