package model

import (
	"time"

	"gorm.io/datatypes"
)

// Nivel is a permission level on a module. Higher levels include the lower ones.
type Nivel int

// Permission levels
const (
	NivelNinguno Nivel = iota
	NivelVer
	NivelModificar
	NivelCrear
	NivelAdministrar
)

// Module names used for permissions and as the bitacora module tag.
const (
	ModuloAudiencias        = "AUDIENCIAS"
	ModuloAutoridades       = "AUTORIDADES"
	ModuloBitacoras         = "BITACORAS"
	ModuloCIDProcedimientos = "CID PROCEDIMIENTOS"
	ModuloDistritos         = "DISTRITOS"
	ModuloListasDeAcuerdos  = "LISTAS DE ACUERDOS"
	ModuloPeritos           = "PERITOS"
	ModuloRepReportes       = "REP REPORTES"
	ModuloSentencias        = "SENTENCIAS"
	ModuloUsuarios          = "USUARIOS"
)

// Modulos lists every module name.
var Modulos = []string{
	ModuloAudiencias,
	ModuloAutoridades,
	ModuloBitacoras,
	ModuloCIDProcedimientos,
	ModuloDistritos,
	ModuloListasDeAcuerdos,
	ModuloPeritos,
	ModuloRepReportes,
	ModuloSentencias,
	ModuloUsuarios,
}

// Permisos maps module names to the granted level.
type Permisos map[string]Nivel

// Usuario is a person who can log in. Users are scoped to the authority they
// work for; their permisos decide what they may do in each module.
// When no users exist, the API is open; when one or more users exist,
// only authenticated users may access it.
type Usuario struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Email is the unique identifier for login
	Email string `gorm:"uniqueIndex;size:256" json:"email"`
	// PasswordHash stores a PHC-formatted argon2id hash of the user's password
	PasswordHash string                       `json:"-"`
	Nombres      string                       `gorm:"size:256" json:"nombres"`
	AutoridadID  *uint                        `gorm:"index" json:"autoridad_id"`
	Autoridad    *Autoridad                   `json:"autoridad,omitempty"`
	Permisos     datatypes.JSONType[Permisos] `json:"permisos"`
	// Disabled allows soft-disable of a user without deletion
	Disabled bool `json:"disabled"`
}

// UsuarioForm carries the fields used to create or update a Usuario.
type UsuarioForm struct {
	Email       string   `json:"email"`
	Password    *string  `json:"password"`
	Nombres     *string  `json:"nombres"`
	AutoridadID *uint    `json:"autoridad_id"`
	Permisos    Permisos `json:"permisos"`
	Disabled    *bool    `json:"disabled"`
}

// UsuariosStore abstracts CRUD and authentication helpers for users.
type UsuariosStore interface {
	// Count returns the number of users present in the store
	Count() (int64, error)
	// List returns all users (without password hashes)
	List() ([]Usuario, error)
	// Get returns a user by email
	Get(email string) (*Usuario, error)
	// Create creates a user; the implementation must hash the password
	Create(form UsuarioForm) (*Usuario, error)
	// Update changes the fields set in form
	Update(email string, form UsuarioForm) (*Usuario, error)
	// Delete deletes a user by email
	Delete(email string) error
	// Authenticate checks an email/password combo and returns the user
	Authenticate(email, password string) (*Usuario, error)
}
