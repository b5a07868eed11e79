package model

// Distrito is a judicial district grouping authorities.
type Distrito struct {
	Registro
	Nombre             string `gorm:"size:256;uniqueIndex" json:"nombre"`
	NombreCorto        string `gorm:"size:64" json:"nombre_corto"`
	EsDistritoJudicial bool   `gorm:"default:false" json:"es_distrito_judicial"`
}

// DistritoForm is the editable part of a Distrito.
type DistritoForm struct {
	Nombre             string `json:"nombre"`
	NombreCorto        string `json:"nombre_corto"`
	EsDistritoJudicial bool   `json:"es_distrito_judicial"`
}

// Apply copies the form onto d.
func (f DistritoForm) Apply(d *Distrito) {
	d.Nombre = f.Nombre
	d.NombreCorto = f.NombreCorto
	d.EsDistritoJudicial = f.EsDistritoJudicial
}
