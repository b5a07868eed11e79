package model

import (
	"time"

	"github.com/pkg/errors"
)

// Progreso is the processing state of a report.
type Progreso string

// Report states
const (
	ProgresoPendiente  Progreso = "PENDIENTE"
	ProgresoTrabajando Progreso = "TRABAJANDO"
	ProgresoTerminado  Progreso = "TERMINADO"
	ProgresoError      Progreso = "ERROR"
)

// Valid reports whether p is a known state.
func (p Progreso) Valid() bool {
	switch p {
	case ProgresoPendiente, ProgresoTrabajando, ProgresoTerminado, ProgresoError:
		return true
	}
	return false
}

// RepReporte is a scheduled report over a date range.
type RepReporte struct {
	Registro
	Descripcion string    `gorm:"size:256" json:"descripcion"`
	Desde       time.Time `json:"desde"`
	Hasta       time.Time `json:"hasta"`
	Programado  time.Time `json:"programado"`
	Progreso    Progreso  `gorm:"size:16;default:PENDIENTE" json:"progreso"`
}

// RepReporteForm is the editable part of a RepReporte.
type RepReporteForm struct {
	Descripcion string   `json:"descripcion"`
	Desde       string   `json:"desde"`
	Hasta       string   `json:"hasta"`
	Programado  string   `json:"programado"`
	Progreso    Progreso `json:"progreso"`
}

// Apply validates the form and copies it onto r. Programado accepts a date
// or a date and time.
func (f RepReporteForm) Apply(r *RepReporte) error {
	desde, err := ParseDate(f.Desde)
	if err != nil {
		return errors.New("La fecha desde es incorrecta.")
	}
	hasta, err := ParseDate(f.Hasta)
	if err != nil {
		return errors.New("La fecha hasta es incorrecta.")
	}
	if hasta.Before(desde) {
		return errors.New("La fecha hasta no puede ser anterior a desde.")
	}
	programado, err := time.Parse(time.RFC3339, f.Programado)
	if err != nil {
		if programado, err = ParseDate(f.Programado); err != nil {
			return errors.New("La fecha programada es incorrecta.")
		}
	}
	progreso := f.Progreso
	if progreso == "" {
		progreso = ProgresoPendiente
	}
	if !progreso.Valid() {
		return errors.Errorf("El progreso '%s' no es válido.", f.Progreso)
	}
	r.Descripcion = f.Descripcion
	r.Desde = desde
	r.Hasta = hasta
	r.Programado = programado.UTC()
	r.Progreso = progreso
	return nil
}
