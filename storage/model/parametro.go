package model

import (
	"gorm.io/datatypes"
)

// Scopes and keys of the runtime parameters.
const (
	ParametroScopeListasDeAcuerdos = "listas_de_acuerdos"

	ParametroKeyLimiteDias                = "limite_dias"
	ParametroKeyLimiteAdministradoresDias = "limite_administradores_dias"
)

// Parametro stores a runtime setting as JSON.
//
// The `Scope` field namespaces keys per module; values use the database JSON
// type where available and TEXT otherwise.
type Parametro struct {
	CreatedAt int `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int `gorm:"autoUpdateTime" json:"updated_at"`

	Scope string `gorm:"primaryKey;size:64" json:"scope"`
	Key   string `gorm:"primaryKey;size:64" json:"key"`

	Value datatypes.JSON `json:"value"`
}

// ParametrosStore reads and writes runtime settings.
type ParametrosStore interface {
	// Get retrieves the value for a (scope, key). Returns (nil, nil) if not found.
	Get(scope, key string) (datatypes.JSON, error)
	// GetAs unmarshals the value into out. Returns (false, nil) if not found.
	GetAs(scope, key string, out any) (bool, error)
	// SetAny marshals v and upserts it at (scope, key).
	SetAny(scope, key string, v any) error
	// Delete removes the entry for a (scope, key). No error if missing.
	Delete(scope, key string) error
	List(scope string) ([]Parametro, error)
}
