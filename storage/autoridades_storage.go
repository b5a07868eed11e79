package storage

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/pjecz/plataforma-web/storage/model"
)

// AutoridadesStorage implements model.AutoridadesStore using GORM
type AutoridadesStorage struct {
	*LifecycleStorage[model.Autoridad]
}

// Find looks an authority up by numeric id, falling back to its clave
func (s *AutoridadesStorage) Find(ident string) (*model.Autoridad, error) {
	var item model.Autoridad
	// Try numeric ID
	if id, err := strconv.ParseUint(ident, 10, 64); err == nil {
		if tx := s.withPreloads(s.db).First(&item, uint(id)); tx.Error == nil {
			return &item, nil
		}
	}
	// Fallback to clave match
	clave := strings.ToUpper(strings.TrimSpace(ident))
	if err := s.withPreloads(s.db).Where("clave = ?", clave).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundErrorFmt("autoridad not found: %s", ident)
		}
		return nil, errors.Wrap(err, "autoridades: get failed")
	}
	return &item, nil
}
