package model

import (
	"time"
)

// Tarea records a background job launched by a user.
type Tarea struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Creado      time.Time `gorm:"autoCreateTime" json:"creado"`
	Modificado  time.Time `gorm:"autoUpdateTime" json:"modificado"`
	UsuarioID   *uint     `gorm:"index" json:"usuario_id"`
	Comando     string    `gorm:"size:256;index" json:"comando"`
	Descripcion string    `gorm:"size:256" json:"descripcion"`
	Mensaje     string    `gorm:"size:1024" json:"mensaje"`
	HaTerminado bool      `gorm:"default:false" json:"ha_terminado"`
}

// TareasStore keeps track of background jobs.
type TareasStore interface {
	Create(t *Tarea) error
	Finish(id, mensaje string) error
	ListByUsuario(usuarioID uint) ([]Tarea, error)
}
