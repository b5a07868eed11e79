package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pjecz/plataforma-web/internal/bulk"
)

func newAudienciasCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audiencias",
		Short: "Feed and back up hearings with CSV files",
	}

	var feedOpts bulk.FeedOptions
	alimentar := &cobra.Command{
		Use:     "alimentar ARCHIVO.csv",
		Aliases: []string{"feed"},
		Short:   "Load the hearings of a CSV file named after the authority's clave",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := bulk.NewAudiencias(a.backends, a.conf.Workflow.Location(), cmd.OutOrStdout(), nil)
			res, err := b.Feed(cmd.Context(), args[0], feedOpts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d reemplazadas, %d omitidas\n", res.Reemplazadas, res.Omitidas)
			return err
		},
	}
	alimentar.Flags().BoolVar(
		&feedOpts.Supersede, "reemplazar", false,
		"replace the active hearing with the same authority and time (alias --supersede)",
	)

	var backupOpts bulk.BackupOptions
	respaldar := &cobra.Command{
		Use:     "respaldar",
		Aliases: []string{"backup"},
		Short:   "Write the active hearings to a new CSV file",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := bulk.NewAudiencias(a.backends, a.conf.Workflow.Location(), cmd.OutOrStdout(), nil)
			_, err := b.Backup(cmd.Context(), backupOpts)
			return err
		},
	}
	respaldar.Flags().UintVar(&backupOpts.AutoridadID, "autoridad-id", 0, "only the hearings of this authority id (alias --authority-id)")
	respaldar.Flags().StringVar(&backupOpts.AutoridadClave, "autoridad-clave", "", "only the hearings of this authority clave (alias --authority-code)")
	respaldar.Flags().StringVar(&backupOpts.Desde, "desde", "", "only hearings from this date on, YYYY-MM-DD (alias --since-date)")
	respaldar.Flags().StringVarP(&backupOpts.Output, "output", "o", "audiencias.csv", "the file to create")

	cmd.AddCommand(alimentar, respaldar)
	return cmd
}
