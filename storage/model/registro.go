package model

import (
	"time"
)

// Registro holds the columns shared by every table of the platform.
type Registro struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Creado     time.Time `gorm:"autoCreateTime" json:"creado"`
	Modificado time.Time `gorm:"autoUpdateTime" json:"modificado"`
	Estatus    Estatus   `gorm:"size:1;index;default:A" json:"estatus"`
}

// GetID returns the primary key
func (r Registro) GetID() uint { return r.ID }

// GetEstatus returns the soft-delete state
func (r Registro) GetEstatus() Estatus { return r.Estatus }

// GetCreado returns the creation timestamp
func (r Registro) GetCreado() time.Time { return r.Creado }

// Lifecycled is implemented by every record that follows the soft-delete
// lifecycle.
type Lifecycled interface {
	GetID() uint
	GetEstatus() Estatus
	GetCreado() time.Time
}

// Submittable is a dated record owned by one Autoridad, of which at most
// one may be active per (autoridad, logical date).
type Submittable interface {
	Lifecycled
	GetAutoridadID() uint
	// LogicalDate returns the value of the key column.
	LogicalDate() time.Time
	// KeyColumn names the column holding the logical date.
	KeyColumn() string
}

// Date truncates t to its calendar day in loc and returns that day as
// midnight UTC, the canonical form of every stored date column.
func Date(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into the canonical stored form.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}

// DefaultEstatus marks a record without estatus as active.
func (r *Registro) DefaultEstatus() {
	if r.Estatus == "" {
		r.Estatus = EstatusActivo
	}
}
