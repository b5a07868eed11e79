package model

import (
	"github.com/pkg/errors"
)

// Estatus is the soft-delete state of a stored record. Records are never
// removed from the database; "deleting" one moves it to EstatusEliminado and
// recovering it moves it back to EstatusActivo.
type Estatus string

// Constants for Estatus
const (
	EstatusActivo    Estatus = "A"
	EstatusEliminado Estatus = "B"
)

// String returns a readable name for the estatus.
func (e Estatus) String() string {
	switch e {
	case EstatusActivo:
		return "activo"
	case EstatusEliminado:
		return "eliminado"
	default:
		return "desconocido"
	}
}

// Valid reports whether the estatus is one of the defined constants.
func (e Estatus) Valid() bool {
	return e == EstatusActivo || e == EstatusEliminado
}

// UnmarshalJSON decodes the estatus from a JSON string, accepting both the
// stored letter and the readable name.
func (e *Estatus) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return errors.New("estatus must be a JSON string")
	}
	pe, err := ParseEstatus(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*e = pe
	return nil
}

// ParseEstatus converts a string to an Estatus, returning an error for invalid values.
// The empty string is read as EstatusActivo, the default of every listing.
func ParseEstatus(v string) (Estatus, error) {
	switch v {
	case "", "A", "a", "activo":
		return EstatusActivo, nil
	case "B", "b", "eliminado":
		return EstatusEliminado, nil
	}
	return "", errors.Errorf("invalid estatus: %s", v)
}
