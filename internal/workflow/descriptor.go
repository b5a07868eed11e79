package workflow

import (
	"time"

	"github.com/pjecz/plataforma-web/storage/model"
)

// Descriptor configures the submission workflow for one record type.
type Descriptor struct {
	Modulo string
	// Ruta is the API path of the records, used in bitacora links
	Ruta string
	// Subdirectory is the first path segment of stored files
	Subdirectory string
	// Windowed enables the date window; SelfCap bounds it for the
	// authority's own users and AdminCap for module administrators
	Windowed bool
	SelfCap  int
	AdminCap int
	// Retention is how long after creation administrators may still delete
	// or recover a record
	Retention time.Duration
	// TimeKeyed is set when the logical date is an instant, not a calendar day
	TimeKeyed    bool
	FileRequired bool
	Ext          string
	ContentType  string
	// ParametroScope holds the runtime overrides of SelfCap and AdminCap
	ParametroScope string
}

// ListasDeAcuerdos describes the agreement list workflow
var ListasDeAcuerdos = Descriptor{
	Modulo:         model.ModuloListasDeAcuerdos,
	Ruta:           "/api/v1/listas_de_acuerdos",
	Subdirectory:   "Listas de Acuerdos",
	Windowed:       true,
	SelfCap:        30,
	AdminCap:       90,
	Retention:      90 * 24 * time.Hour,
	FileRequired:   true,
	Ext:            ".pdf",
	ContentType:    "application/pdf",
	ParametroScope: model.ParametroScopeListasDeAcuerdos,
}

// Audiencias describes the hearing workflow
var Audiencias = Descriptor{
	Modulo:    model.ModuloAudiencias,
	Ruta:      "/api/v1/audiencias",
	Retention: 90 * 24 * time.Hour,
	TimeKeyed: true,
}

// Gate returns the authorization gate of the workflow
func (d Descriptor) Gate(clock Clock) Gate {
	return Gate{
		Modulo:    d.Modulo,
		Retention: d.Retention,
		TimeKeyed: d.TimeKeyed,
		Clock:     clock,
	}
}
