package model

import (
	"time"

	"github.com/pkg/errors"
)

// AudienciaCategoria selects which set of hearing fields an Autoridad uses.
type AudienciaCategoria string

// Hearing categories
const (
	CategoriaNoDefinida AudienciaCategoria = "NO DEFINIDO"
	CategoriaGenerica   AudienciaCategoria = "CIVIL FAMILIAR MERCANTIL LETRADO TCYA"
	CategoriaMapo       AudienciaCategoria = "MATERIA ACUSATORIO PENAL ORAL"
	CategoriaDipe       AudienciaCategoria = "DISTRITALES"
	CategoriaSape       AudienciaCategoria = "SALAS"
)

// Caracteres accepted for a hearing; anything else is stored as null.
const (
	CaracterPublica = "PUBLICA"
	CaracterPrivada = "PRIVADA"
)

// TipoAudienciaNoDefinido is used when no hearing type was given.
const TipoAudienciaNoDefinido = "NO DEFINIDO"

// Audiencia is a scheduled hearing. The table is flat: which columns are
// meaningful depends on the owning authority's AudienciaCategoria.
type Audiencia struct {
	Registro
	AutoridadID      uint       `gorm:"index:idx_audiencias_autoridad_tiempo" json:"autoridad_id"`
	Autoridad        *Autoridad `json:"autoridad,omitempty"`
	Tiempo           time.Time  `gorm:"index:idx_audiencias_autoridad_tiempo" json:"tiempo"`
	TipoAudiencia    string     `gorm:"size:256" json:"tipo_audiencia"`
	Expediente       string     `gorm:"size:64" json:"expediente"`
	Actores          string     `gorm:"size:256" json:"actores"`
	Demandados       string     `gorm:"size:256" json:"demandados"`
	Sala             string     `gorm:"size:256" json:"sala"`
	Caracter         *string    `gorm:"size:16" json:"caracter"`
	CausaPenal       string     `gorm:"size:256" json:"causa_penal"`
	Delitos          string     `gorm:"size:256" json:"delitos"`
	Toca             string     `gorm:"size:256" json:"toca"`
	ExpedienteOrigen string     `gorm:"size:256" json:"expediente_origen"`
	Imputados        string     `gorm:"size:256" json:"imputados"`
	Origen           string     `gorm:"size:256" json:"origen"`
}

// GetAutoridadID implements Submittable
func (a Audiencia) GetAutoridadID() uint { return a.AutoridadID }

// LogicalDate implements Submittable
func (a Audiencia) LogicalDate() time.Time { return a.Tiempo }

// KeyColumn implements Submittable
func (Audiencia) KeyColumn() string { return "tiempo" }

// AudienciaDetalle is the category-specific part of a hearing. The set of
// implementations is closed: Generica, Mapo, Dipe and Sape.
type AudienciaDetalle interface {
	Categoria() AudienciaCategoria
	applyTo(a *Audiencia)
}

// Generica holds the fields of civil, family, mercantile, letrado and TCyA hearings.
type Generica struct {
	TipoAudiencia string `json:"tipo_audiencia"`
	Expediente    string `json:"expediente"`
	Actores       string `json:"actores"`
	Demandados    string `json:"demandados"`
}

// Mapo holds the fields of oral accusatory criminal hearings.
type Mapo struct {
	TipoAudiencia string  `json:"tipo_audiencia"`
	Sala          string  `json:"sala"`
	Caracter      *string `json:"caracter"`
	CausaPenal    string  `json:"causa_penal"`
	Delitos       string  `json:"delitos"`
}

// Dipe holds the fields of district tribunal hearings.
type Dipe struct {
	TipoAudiencia    string `json:"tipo_audiencia"`
	Expediente       string `json:"expediente"`
	Actores          string `json:"actores"`
	Demandados       string `json:"demandados"`
	Toca             string `json:"toca"`
	ExpedienteOrigen string `json:"expediente_origen"`
	Imputados        string `json:"imputados"`
}

// Sape holds the fields of appeal chamber hearings.
type Sape struct {
	TipoAudiencia    string `json:"tipo_audiencia"`
	Expediente       string `json:"expediente"`
	Actores          string `json:"actores"`
	Demandados       string `json:"demandados"`
	Toca             string `json:"toca"`
	ExpedienteOrigen string `json:"expediente_origen"`
	Delitos          string `json:"delitos"`
	Origen           string `json:"origen"`
}

func (*Generica) Categoria() AudienciaCategoria { return CategoriaGenerica }
func (*Mapo) Categoria() AudienciaCategoria     { return CategoriaMapo }
func (*Dipe) Categoria() AudienciaCategoria     { return CategoriaDipe }
func (*Sape) Categoria() AudienciaCategoria     { return CategoriaSape }

func (d *Generica) applyTo(a *Audiencia) {
	a.TipoAudiencia, a.Expediente, a.Actores, a.Demandados = d.TipoAudiencia, d.Expediente, d.Actores, d.Demandados
}

func (d *Mapo) applyTo(a *Audiencia) {
	a.TipoAudiencia, a.Sala, a.Caracter, a.CausaPenal, a.Delitos = d.TipoAudiencia, d.Sala, d.Caracter, d.CausaPenal, d.Delitos
}

func (d *Dipe) applyTo(a *Audiencia) {
	a.TipoAudiencia, a.Expediente, a.Actores, a.Demandados = d.TipoAudiencia, d.Expediente, d.Actores, d.Demandados
	a.Toca, a.ExpedienteOrigen, a.Imputados = d.Toca, d.ExpedienteOrigen, d.Imputados
}

func (d *Sape) applyTo(a *Audiencia) {
	a.TipoAudiencia, a.Expediente, a.Actores, a.Demandados = d.TipoAudiencia, d.Expediente, d.Actores, d.Demandados
	a.Toca, a.ExpedienteOrigen, a.Delitos, a.Origen = d.Toca, d.ExpedienteOrigen, d.Delitos, d.Origen
}

// NewAudienciaDetalle returns an empty detalle for the category, ready to be
// decoded into.
func NewAudienciaDetalle(c AudienciaCategoria) (AudienciaDetalle, error) {
	switch c {
	case CategoriaGenerica:
		return &Generica{}, nil
	case CategoriaMapo:
		return &Mapo{}, nil
	case CategoriaDipe:
		return &Dipe{}, nil
	case CategoriaSape:
		return &Sape{}, nil
	}
	return nil, errors.Errorf("categoria de audiencias no definida: '%s'", c)
}

// ApplyDetalle writes the fields of d onto a.
func (a *Audiencia) ApplyDetalle(d AudienciaDetalle) {
	d.applyTo(a)
}

// Detalle reads back the category-specific fields of a.
func (a Audiencia) Detalle(c AudienciaCategoria) (AudienciaDetalle, error) {
	switch c {
	case CategoriaGenerica:
		return &Generica{a.TipoAudiencia, a.Expediente, a.Actores, a.Demandados}, nil
	case CategoriaMapo:
		return &Mapo{a.TipoAudiencia, a.Sala, a.Caracter, a.CausaPenal, a.Delitos}, nil
	case CategoriaDipe:
		return &Dipe{a.TipoAudiencia, a.Expediente, a.Actores, a.Demandados, a.Toca, a.ExpedienteOrigen, a.Imputados}, nil
	case CategoriaSape:
		return &Sape{
			a.TipoAudiencia, a.Expediente, a.Actores, a.Demandados, a.Toca, a.ExpedienteOrigen, a.Delitos, a.Origen,
		}, nil
	}
	return nil, errors.Errorf("categoria de audiencias no definida: '%s'", c)
}

// NormalizeCaracter returns a pointer to c when it is PUBLICA or PRIVADA,
// and nil otherwise.
func NormalizeCaracter(c string) *string {
	if c == CaracterPublica || c == CaracterPrivada {
		return &c
	}
	return nil
}
