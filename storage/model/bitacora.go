package model

import (
	"time"
)

// Bitacora is an audit entry written for every mutating action. Entries are
// appended only; nothing updates or deletes them.
type Bitacora struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Creado      time.Time `gorm:"autoCreateTime;index" json:"creado"`
	Modulo      string    `gorm:"size:64;index" json:"modulo"`
	UsuarioID   *uint     `gorm:"index" json:"usuario_id"`
	Descripcion string    `gorm:"size:256" json:"descripcion"`
	URL         string    `gorm:"size:512" json:"url"`
}

// BitacorasStore is the audit sink.
type BitacorasStore interface {
	Append(entry *Bitacora) error
	List(q ListQuery) ([]Bitacora, int64, error)
}
