package model

import (
	"time"

	"github.com/pkg/errors"
)

// CIDProcedimiento is a quality-system procedure document of an authority.
type CIDProcedimiento struct {
	Registro
	AutoridadID         uint       `gorm:"index" json:"autoridad_id"`
	Autoridad           *Autoridad `json:"autoridad,omitempty"`
	TituloProcedimiento string     `gorm:"size:256" json:"titulo_procedimiento"`
	Codigo              string     `gorm:"size:16" json:"codigo"`
	Revision            int        `json:"revision"`
	Fecha               time.Time  `json:"fecha"`
	Objetivo            string     `gorm:"type:text" json:"objetivo"`
	Alcance             string     `gorm:"type:text" json:"alcance"`
	Documentos          string     `gorm:"type:text" json:"documentos"`
	Definiciones        string     `gorm:"type:text" json:"definiciones"`
	Responsabilidades   string     `gorm:"type:text" json:"responsabilidades"`
	Desarrollo          string     `gorm:"type:text" json:"desarrollo"`
	Registros           string     `gorm:"type:text" json:"registros"`
	ElaboroNombre       string     `gorm:"size:256" json:"elaboro_nombre"`
	ElaboroPuesto       string     `gorm:"size:256" json:"elaboro_puesto"`
	ElaboroEmail        string     `gorm:"size:256" json:"elaboro_email"`
	RevisoNombre        string     `gorm:"size:256" json:"reviso_nombre"`
	RevisoPuesto        string     `gorm:"size:256" json:"reviso_puesto"`
	RevisoEmail         string     `gorm:"size:256" json:"reviso_email"`
	AproboNombre        string     `gorm:"size:256" json:"aprobo_nombre"`
	AproboPuesto        string     `gorm:"size:256" json:"aprobo_puesto"`
	AproboEmail         string     `gorm:"size:256" json:"aprobo_email"`
	ControlCambios      string     `gorm:"type:text" json:"control_cambios"`
}

// CIDProcedimientoForm is the editable part of a CIDProcedimiento.
type CIDProcedimientoForm struct {
	TituloProcedimiento string `json:"titulo_procedimiento"`
	Codigo              string `json:"codigo"`
	Revision            int    `json:"revision"`
	Fecha               string `json:"fecha"`
	Objetivo            string `json:"objetivo"`
	Alcance             string `json:"alcance"`
	Documentos          string `json:"documentos"`
	Definiciones        string `json:"definiciones"`
	Responsabilidades   string `json:"responsabilidades"`
	Desarrollo          string `json:"desarrollo"`
	Registros           string `json:"registros"`
	ElaboroNombre       string `json:"elaboro_nombre"`
	ElaboroPuesto       string `json:"elaboro_puesto"`
	ElaboroEmail        string `json:"elaboro_email"`
	RevisoNombre        string `json:"reviso_nombre"`
	RevisoPuesto        string `json:"reviso_puesto"`
	RevisoEmail         string `json:"reviso_email"`
	AproboNombre        string `json:"aprobo_nombre"`
	AproboPuesto        string `json:"aprobo_puesto"`
	AproboEmail         string `json:"aprobo_email"`
	ControlCambios      string `json:"control_cambios"`
}

// Apply validates the form and copies it onto p. The authority is not part
// of the form; it is the one of the user who writes the procedure.
func (f CIDProcedimientoForm) Apply(p *CIDProcedimiento) error {
	if f.TituloProcedimiento == "" {
		return errors.New("El título es obligatorio.")
	}
	if f.Revision < 0 {
		return errors.New("La revisión no puede ser negativa.")
	}
	fecha, err := ParseDate(f.Fecha)
	if err != nil {
		return errors.New("La fecha es incorrecta.")
	}
	p.TituloProcedimiento = f.TituloProcedimiento
	p.Codigo = f.Codigo
	p.Revision = f.Revision
	p.Fecha = fecha
	p.Objetivo = f.Objetivo
	p.Alcance = f.Alcance
	p.Documentos = f.Documentos
	p.Definiciones = f.Definiciones
	p.Responsabilidades = f.Responsabilidades
	p.Desarrollo = f.Desarrollo
	p.Registros = f.Registros
	p.ElaboroNombre, p.ElaboroPuesto, p.ElaboroEmail = f.ElaboroNombre, f.ElaboroPuesto, f.ElaboroEmail
	p.RevisoNombre, p.RevisoPuesto, p.RevisoEmail = f.RevisoNombre, f.RevisoPuesto, f.RevisoEmail
	p.AproboNombre, p.AproboPuesto, p.AproboEmail = f.AproboNombre, f.AproboPuesto, f.AproboEmail
	p.ControlCambios = f.ControlCambios
	return nil
}
