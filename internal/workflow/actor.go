package workflow

import (
	"github.com/pjecz/plataforma-web/storage/model"
)

// Actor is the user on whose behalf an operation runs.
type Actor struct {
	UsuarioID   uint
	Email       string
	AutoridadID uint
	Permisos    model.Permisos
}

// ActorFromUsuario builds the Actor of an authenticated user.
func ActorFromUsuario(u *model.Usuario) Actor {
	a := Actor{
		UsuarioID: u.ID,
		Email:     u.Email,
		Permisos:  u.Permisos.Data(),
	}
	if u.AutoridadID != nil {
		a.AutoridadID = *u.AutoridadID
	}
	return a
}

// Bootstrap is the actor used while no users exist: an administrator of
// every module with no authority of its own.
func Bootstrap() Actor {
	p := make(model.Permisos, len(model.Modulos))
	for _, m := range model.Modulos {
		p[m] = model.NivelAdministrar
	}
	return Actor{Permisos: p}
}

// Can reports whether the actor holds at least nivel on modulo.
func (a Actor) Can(modulo string, nivel model.Nivel) bool {
	return a.Permisos[modulo] >= nivel
}

// IsAdminFor reports whether the actor administers modulo.
func (a Actor) IsAdminFor(modulo string) bool {
	return a.Can(modulo, model.NivelAdministrar)
}

func (a Actor) usuarioID() *uint {
	if a.UsuarioID == 0 {
		return nil
	}
	id := a.UsuarioID
	return &id
}
