package model

import (
	"time"
)

// ListaDeAcuerdo is the daily agreement list a court publishes as a PDF.
type ListaDeAcuerdo struct {
	Registro
	AutoridadID uint       `gorm:"index:idx_listas_autoridad_fecha" json:"autoridad_id"`
	Autoridad   *Autoridad `json:"autoridad,omitempty"`
	Fecha       time.Time  `gorm:"index:idx_listas_autoridad_fecha" json:"fecha"`
	Descripcion string     `gorm:"size:256" json:"descripcion"`
	Archivo     string     `gorm:"size:256" json:"archivo"`
	URL         string     `gorm:"size:512" json:"url"`
	// Incompleto marks a record whose file could not be stored.
	Incompleto bool `gorm:"default:false" json:"incompleto"`
}

// GetAutoridadID implements Submittable
func (l ListaDeAcuerdo) GetAutoridadID() uint { return l.AutoridadID }

// LogicalDate implements Submittable
func (l ListaDeAcuerdo) LogicalDate() time.Time { return l.Fecha }

// KeyColumn implements Submittable
func (ListaDeAcuerdo) KeyColumn() string { return "fecha" }

// SetArchivo implements workflow.Archivable
func (l *ListaDeAcuerdo) SetArchivo(archivo, url string, incompleto bool) {
	l.Archivo, l.URL, l.Incompleto = archivo, url, incompleto
}
