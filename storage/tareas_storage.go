package storage

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/pjecz/plataforma-web/storage/model"
)

// TareasStorage implements model.TareasStore
type TareasStorage struct {
	db *gorm.DB
}

// TareasStorage returns a TareasStorage
func (s *Storage) TareasStorage() *TareasStorage {
	return &TareasStorage{db: s.db}
}

// Create stores a new running tarea
func (s *TareasStorage) Create(t *model.Tarea) error {
	return errors.Wrap(s.db.Create(t).Error, "tareas: create failed")
}

// Finish marks the tarea as done with its final message
func (s *TareasStorage) Finish(id, mensaje string) error {
	res := s.db.Model(&model.Tarea{}).Where("id = ?", id).Updates(
		map[string]any{
			"mensaje":      mensaje,
			"ha_terminado": true,
		},
	)
	if res.Error != nil {
		return errors.WithStack(res.Error)
	}
	if res.RowsAffected == 0 {
		return model.NotFoundErrorFmt("tarea not found: %s", id)
	}
	return nil
}

// ListByUsuario returns the tareas launched by a user, newest first. The id
// zero selects the tareas launched while no users existed.
func (s *TareasStorage) ListByUsuario(usuarioID uint) ([]model.Tarea, error) {
	var items []model.Tarea
	tx := s.db.Where("usuario_id IS NULL")
	if usuarioID != 0 {
		tx = s.db.Where("usuario_id = ?", usuarioID)
	}
	err := tx.Order("creado DESC").Find(&items).Error
	return items, errors.WithStack(err)
}
