package model

import (
	"slices"
)

// OrganoJurisdiccional classifies the kind of court an Autoridad is.
type OrganoJurisdiccional string

// Known organos jurisdiccionales
const (
	OrganoNoDefinido                  OrganoJurisdiccional = "NO DEFINIDO"
	OrganoJuzgadoPrimeraInstancia     OrganoJurisdiccional = "JUZGADO DE PRIMERA INSTANCIA"
	OrganoJuzgadoPrimeraInstanciaOral OrganoJurisdiccional = "JUZGADO DE PRIMERA INSTANCIA ORAL"
	OrganoPlenoOSalaTSJ               OrganoJurisdiccional = "PLENO O SALA DEL TSJ"
	OrganoTribunalDistrital           OrganoJurisdiccional = "TRIBUNAL DISTRITAL"
	OrganoTribunalConciliacion        OrganoJurisdiccional = "TRIBUNAL DE CONCILIACION Y ARBITRAJE"
)

var organosJurisdiccionales = []OrganoJurisdiccional{
	OrganoNoDefinido,
	OrganoJuzgadoPrimeraInstancia,
	OrganoJuzgadoPrimeraInstanciaOral,
	OrganoPlenoOSalaTSJ,
	OrganoTribunalDistrital,
	OrganoTribunalConciliacion,
}

// Valid reports whether o is a known organo jurisdiccional.
func (o OrganoJurisdiccional) Valid() bool {
	return slices.Contains(organosJurisdiccionales, o)
}

// Autoridad is a court, office or tribunal. It owns the dated records
// (audiencias, listas de acuerdos, sentencias) submitted under it.
type Autoridad struct {
	Registro
	DistritoID                 *uint                `gorm:"index" json:"distrito_id"`
	Distrito                   *Distrito            `json:"distrito,omitempty"`
	Clave                      string               `gorm:"size:16;uniqueIndex" json:"clave"`
	Descripcion                string               `gorm:"size:256" json:"descripcion"`
	DescripcionCorta           string               `gorm:"size:64" json:"descripcion_corta"`
	EsJurisdiccional           bool                 `gorm:"default:false" json:"es_jurisdiccional"`
	EsNotaria                  bool                 `gorm:"default:false" json:"es_notaria"`
	OrganoJurisdiccional       OrganoJurisdiccional `gorm:"size:64;default:NO DEFINIDO" json:"organo_jurisdiccional"`
	AudienciaCategoria         AudienciaCategoria   `gorm:"size:64;default:NO DEFINIDO" json:"audiencia_categoria"`
	DirectorioListasDeAcuerdos string               `gorm:"size:256" json:"directorio_listas_de_acuerdos"`
	DirectorioSentencias       string               `gorm:"size:256" json:"directorio_sentencias"`
	DirectorioEdictos          string               `gorm:"size:256" json:"directorio_edictos"`
	DirectorioGlosas           string               `gorm:"size:256" json:"directorio_glosas"`
	LimiteDiasListasDeAcuerdos int                  `gorm:"default:0" json:"limite_dias_listas_de_acuerdos"`
}

// EnDistritoJudicial reports whether the authority belongs to a judicial
// district. The Distrito association must be loaded.
func (a Autoridad) EnDistritoJudicial() bool {
	return a.Distrito != nil && a.Distrito.EsDistritoJudicial
}

// AutoridadForm is the editable part of an Autoridad.
type AutoridadForm struct {
	DistritoID                 *uint                `json:"distrito_id"`
	Clave                      string               `json:"clave"`
	Descripcion                string               `json:"descripcion"`
	DescripcionCorta           string               `json:"descripcion_corta"`
	EsJurisdiccional           bool                 `json:"es_jurisdiccional"`
	EsNotaria                  bool                 `json:"es_notaria"`
	OrganoJurisdiccional       OrganoJurisdiccional `json:"organo_jurisdiccional"`
	AudienciaCategoria         AudienciaCategoria   `json:"audiencia_categoria"`
	DirectorioListasDeAcuerdos string               `json:"directorio_listas_de_acuerdos"`
	DirectorioSentencias       string               `json:"directorio_sentencias"`
	DirectorioEdictos          string               `json:"directorio_edictos"`
	DirectorioGlosas           string               `json:"directorio_glosas"`
	LimiteDiasListasDeAcuerdos int                  `json:"limite_dias_listas_de_acuerdos"`
}

// Apply copies the form onto a.
func (f AutoridadForm) Apply(a *Autoridad) {
	a.DistritoID = f.DistritoID
	a.Clave = f.Clave
	a.Descripcion = f.Descripcion
	a.DescripcionCorta = f.DescripcionCorta
	a.EsJurisdiccional = f.EsJurisdiccional
	a.EsNotaria = f.EsNotaria
	a.OrganoJurisdiccional = f.OrganoJurisdiccional
	if a.OrganoJurisdiccional == "" {
		a.OrganoJurisdiccional = OrganoNoDefinido
	}
	a.AudienciaCategoria = f.AudienciaCategoria
	if a.AudienciaCategoria == "" {
		a.AudienciaCategoria = CategoriaNoDefinida
	}
	a.DirectorioListasDeAcuerdos = f.DirectorioListasDeAcuerdos
	a.DirectorioSentencias = f.DirectorioSentencias
	a.DirectorioEdictos = f.DirectorioEdictos
	a.DirectorioGlosas = f.DirectorioGlosas
	a.LimiteDiasListasDeAcuerdos = f.LimiteDiasListasDeAcuerdos
}
