package model

import (
	"time"

	"github.com/pkg/errors"
)

// Sentencia is a published ruling of an authority.
type Sentencia struct {
	Registro
	AutoridadID         uint       `gorm:"index" json:"autoridad_id"`
	Autoridad           *Autoridad `json:"autoridad,omitempty"`
	Sentencia           string     `gorm:"size:16" json:"sentencia"`
	SentenciaFecha      *time.Time `json:"sentencia_fecha"`
	Expediente          string     `gorm:"size:16" json:"expediente"`
	Fecha               time.Time  `gorm:"index" json:"fecha"`
	Descripcion         string     `gorm:"size:1024" json:"descripcion"`
	EsPerspectivaGenero bool       `gorm:"default:false" json:"es_perspectiva_genero"`
	Archivo             string     `gorm:"size:256" json:"archivo"`
	URL                 string     `gorm:"size:512" json:"url"`
}

// SentenciaForm is the editable part of a Sentencia.
type SentenciaForm struct {
	AutoridadID         uint   `json:"autoridad_id"`
	Sentencia           string `json:"sentencia"`
	SentenciaFecha      string `json:"sentencia_fecha"`
	Expediente          string `json:"expediente"`
	Fecha               string `json:"fecha"`
	Descripcion         string `json:"descripcion"`
	EsPerspectivaGenero bool   `json:"es_perspectiva_genero"`
	Archivo             string `json:"archivo"`
	URL                 string `json:"url"`
}

// Apply validates the form and copies it onto s.
func (f SentenciaForm) Apply(s *Sentencia) error {
	if f.AutoridadID == 0 {
		return errors.New("La autoridad es obligatoria.")
	}
	fecha, err := ParseDate(f.Fecha)
	if err != nil {
		return errors.New("La fecha es incorrecta.")
	}
	var sentenciaFecha *time.Time
	if f.SentenciaFecha != "" {
		sf, err := ParseDate(f.SentenciaFecha)
		if err != nil {
			return errors.New("La fecha de la sentencia es incorrecta.")
		}
		sentenciaFecha = &sf
	}
	if f.Sentencia == "" || f.Expediente == "" {
		return errors.New("La sentencia y el expediente son obligatorios.")
	}
	s.AutoridadID = f.AutoridadID
	s.Sentencia = f.Sentencia
	s.SentenciaFecha = sentenciaFecha
	s.Expediente = f.Expediente
	s.Fecha = fecha
	s.Descripcion = f.Descripcion
	s.EsPerspectivaGenero = f.EsPerspectivaGenero
	s.Archivo = f.Archivo
	s.URL = f.URL
	return nil
}
