package model

import (
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// PeritoTipo is the specialty of an expert witness.
type PeritoTipo string

// Perito specialties
const (
	PeritoNoDefinido     PeritoTipo = "NO DEFINIDO"
	PeritoAgrimensor     PeritoTipo = "AGRIMENSOR"
	PeritoAgronomo       PeritoTipo = "AGRONOMO"
	PeritoArquitecto     PeritoTipo = "ARQUITECTO"
	PeritoAuditor        PeritoTipo = "AUDITOR"
	PeritoCaligrafo      PeritoTipo = "CALIGRAFO"
	PeritoContador       PeritoTipo = "CONTADOR"
	PeritoGrafoscopo     PeritoTipo = "GRAFOSCOPO"
	PeritoIngenieroCivil PeritoTipo = "INGENIERO CIVIL"
	PeritoInterprete     PeritoTipo = "INTERPRETE"
	PeritoMedico         PeritoTipo = "MEDICO"
	PeritoTraductor      PeritoTipo = "TRADUCTOR"
	PeritoValuador       PeritoTipo = "VALUADOR"
)

var peritoTipos = []PeritoTipo{
	PeritoNoDefinido, PeritoAgrimensor, PeritoAgronomo, PeritoArquitecto, PeritoAuditor, PeritoCaligrafo,
	PeritoContador, PeritoGrafoscopo, PeritoIngenieroCivil, PeritoInterprete, PeritoMedico, PeritoTraductor,
	PeritoValuador,
}

// Valid reports whether t is a known specialty.
func (t PeritoTipo) Valid() bool {
	return slices.Contains(peritoTipos, t)
}

// Perito is an expert witness registered in a district.
type Perito struct {
	Registro
	DistritoID      uint       `gorm:"index" json:"distrito_id"`
	Distrito        *Distrito  `json:"distrito,omitempty"`
	Tipo            PeritoTipo `gorm:"size:64;default:NO DEFINIDO" json:"tipo"`
	Nombre          string     `gorm:"size:256;index" json:"nombre"`
	Domicilio       string     `gorm:"size:256" json:"domicilio"`
	TelefonoFijo    string     `gorm:"size:64" json:"telefono_fijo"`
	TelefonoCelular string     `gorm:"size:64" json:"telefono_celular"`
	Email           string     `gorm:"size:256" json:"email"`
	Renovacion      time.Time  `json:"renovacion"`
	Notas           string     `gorm:"type:text" json:"notas"`
}

// PeritoForm is the editable part of a Perito.
type PeritoForm struct {
	DistritoID      uint       `json:"distrito_id"`
	Tipo            PeritoTipo `json:"tipo"`
	Nombre          string     `json:"nombre"`
	Domicilio       string     `json:"domicilio"`
	TelefonoFijo    string     `json:"telefono_fijo"`
	TelefonoCelular string     `json:"telefono_celular"`
	Email           string     `json:"email"`
	Renovacion      string     `json:"renovacion"`
	Notas           string     `json:"notas"`
}

// Apply validates the form and copies it onto p.
func (f PeritoForm) Apply(p *Perito) error {
	if f.DistritoID == 0 {
		return errors.New("El distrito es obligatorio.")
	}
	if strings.TrimSpace(f.Nombre) == "" {
		return errors.New("El nombre es obligatorio.")
	}
	tipo := f.Tipo
	if tipo == "" {
		tipo = PeritoNoDefinido
	}
	if !tipo.Valid() {
		return errors.Errorf("El tipo '%s' no es válido.", f.Tipo)
	}
	renovacion, err := ParseDate(f.Renovacion)
	if err != nil {
		return errors.New("La fecha de renovación es incorrecta.")
	}
	p.DistritoID = f.DistritoID
	p.Tipo = tipo
	p.Nombre = f.Nombre
	p.Domicilio = f.Domicilio
	p.TelefonoFijo = f.TelefonoFijo
	p.TelefonoCelular = f.TelefonoCelular
	p.Email = f.Email
	p.Renovacion = renovacion
	p.Notas = f.Notas
	return nil
}
