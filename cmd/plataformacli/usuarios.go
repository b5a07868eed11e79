package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pjecz/plataforma-web/storage/model"
)

var nivelNames = map[string]model.Nivel{
	"VER":         model.NivelVer,
	"MODIFICAR":   model.NivelModificar,
	"CREAR":       model.NivelCrear,
	"ADMINISTRAR": model.NivelAdministrar,
}

// parsePermisos reads MODULO=NIVEL pairs; NIVEL is a name or a number 1-4.
func parsePermisos(pairs []string) (model.Permisos, error) {
	permisos := model.Permisos{}
	for _, p := range pairs {
		modulo, nivelStr, ok := strings.Cut(p, "=")
		if !ok {
			return nil, errors.Errorf("permiso '%s' must have the form MODULO=NIVEL", p)
		}
		modulo = strings.ToUpper(strings.TrimSpace(modulo))
		if !slices.Contains(model.Modulos, modulo) {
			return nil, errors.Errorf("unknown module '%s'", modulo)
		}
		nivelStr = strings.ToUpper(strings.TrimSpace(nivelStr))
		nivel, ok := nivelNames[nivelStr]
		if !ok {
			n, err := strconv.Atoi(nivelStr)
			if err != nil || n < int(model.NivelVer) || n > int(model.NivelAdministrar) {
				return nil, errors.Errorf("unknown level '%s'", nivelStr)
			}
			nivel = model.Nivel(n)
		}
		permisos[modulo] = nivel
	}
	return permisos, nil
}

func newUsuariosCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usuarios",
		Short: "Manage the users of the API",
	}

	var (
		password       string
		nombres        string
		autoridadClave string
		permisos       []string
		admin          bool
	)
	crear := &cobra.Command{
		Use:     "crear EMAIL",
		Aliases: []string{"create"},
		Short:   "Create a user",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return errors.New("--password is required")
			}
			perms, err := parsePermisos(permisos)
			if err != nil {
				return err
			}
			if admin {
				for _, m := range model.Modulos {
					perms[m] = model.NivelAdministrar
				}
			}
			form := model.UsuarioForm{
				Email:    args[0],
				Password: &password,
				Nombres:  &nombres,
				Permisos: perms,
			}
			if autoridadClave != "" {
				autoridad, err := a.backends.Autoridades.Find(autoridadClave)
				if err != nil {
					return err
				}
				form.AutoridadID = &autoridad.ID
			}
			u, err := a.backends.Usuarios.Create(form)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Usuario %s creado con id %d\n", u.Email, u.ID)
			return err
		},
	}
	crear.Flags().StringVarP(&password, "password", "p", "", "the password of the user")
	crear.Flags().StringVar(&nombres, "nombres", "", "the name of the user")
	crear.Flags().StringVar(&autoridadClave, "autoridad", "", "the clave of the user's authority")
	crear.Flags().StringArrayVar(&permisos, "permiso", nil, "a MODULO=NIVEL permission, can be repeated")
	crear.Flags().BoolVar(&admin, "admin", false, "grant ADMINISTRAR on every module")

	listar := &cobra.Command{
		Use:     "listar",
		Aliases: []string{"list"},
		Short:   "List the users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			usuarios, err := a.backends.Usuarios.List()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL\tNOMBRES\tACTIVO")
			for _, u := range usuarios {
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", u.ID, u.Email, u.Nombres, !u.Disabled)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(crear, listar)
	return cmd
}
