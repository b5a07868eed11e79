package safe

import (
	"time"
)

var meses = [...]string{
	"ENERO", "FEBRERO", "MARZO", "ABRIL", "MAYO", "JUNIO",
	"JULIO", "AGOSTO", "SEPTIEMBRE", "OCTUBRE", "NOVIEMBRE", "DICIEMBRE",
}

// MesEnPalabra returns the upper-case Spanish name of the month.
func MesEnPalabra(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return meses[m-1]
}
