package workflow

import (
	"fmt"

	"github.com/pjecz/plataforma-web/internal/safe"
	"github.com/pjecz/plataforma-web/storage/model"
)

// RecordBitacora appends an audit entry for a mutation done by actor.
func RecordBitacora(store model.BitacorasStore, modulo string, actor Actor, descripcion, url string) error {
	return store.Append(
		&model.Bitacora{
			Modulo:      modulo,
			UsuarioID:   actor.usuarioID(),
			Descripcion: safe.Message(descripcion, 256),
			URL:         url,
		},
	)
}

func recordURL(d Descriptor, id uint) string {
	return fmt.Sprintf("%s/%d", d.Ruta, id)
}
