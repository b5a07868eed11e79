package workflow

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/pjecz/plataforma-web/internal/safe"
)

var archivoNombreRE = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)-([A-Za-z0-9]+)\.pdf$`)

// ArchivoNombre returns the file name of a stored record:
// <YYYY-MM-DD>-<descripcion with dashes>-<hashid><ext>
func ArchivoNombre(d Descriptor, fecha time.Time, descripcion, hashid string) string {
	return fmt.Sprintf("%s-%s-%s%s", fecha.Format(time.DateOnly), safe.Slug(descripcion), hashid, d.Ext)
}

// ArchivoRuta returns the object path of a file:
// <subdirectory>/<directorio>/<YYYY>/<MES>/<nombre>
func ArchivoRuta(d Descriptor, directorio string, fecha time.Time, nombre string) string {
	return path.Join(
		d.Subdirectory, directorio, fecha.Format("2006"), safe.MesEnPalabra(fecha.Month()), nombre,
	)
}

// Prefijo returns the object prefix under which an authority's files live.
func Prefijo(d Descriptor, directorio string) string {
	return path.Join(d.Subdirectory, directorio) + "/"
}

// ParseArchivoNombre splits a stored file name back into its date,
// description and hashid.
func ParseArchivoNombre(nombre string) (fecha time.Time, descripcion, hashid string, ok bool) {
	m := archivoNombreRE.FindStringSubmatch(path.Base(nombre))
	if m == nil {
		return time.Time{}, "", "", false
	}
	fecha, err := time.Parse(time.DateOnly, m[1])
	if err != nil {
		return time.Time{}, "", "", false
	}
	return fecha, strings.ReplaceAll(m[2], "-", " "), m[3], true
}

// isPDF checks the name extension, when there is a name, and the magic bytes.
func isPDF(nombre string, data []byte) bool {
	if nombre != "" && !strings.EqualFold(path.Ext(nombre), ".pdf") {
		return false
	}
	return bytes.HasPrefix(data, []byte("%PDF-"))
}
