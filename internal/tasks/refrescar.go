package tasks

import (
	"context"

	"github.com/pjecz/plataforma-web/internal/workflow"
	"github.com/pjecz/plataforma-web/storage/model"
)

// ComandoRefrescarListas names the refresh job of agreement lists
const ComandoRefrescarListas = "listas_de_acuerdos.refrescar"

// RefrescarListasDeAcuerdos launches the reconciliation of an authority's
// agreement lists with its stored files.
func (r *Runner) RefrescarListasDeAcuerdos(
	ctx context.Context, sub *workflow.Submission, actor workflow.Actor, autoridad *model.Autoridad,
) (*model.Tarea, error) {
	return r.Launch(
		ctx, actor, ComandoRefrescarListas, "Refrescar listas de acuerdos de "+autoridad.Clave,
		func(ctx context.Context) (string, error) {
			res, err := sub.RefreshListasDeAcuerdos(ctx, actor, autoridad.ID)
			if err != nil {
				return "", err
			}
			return res.String(), nil
		},
	)
}
