package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pjecz/plataforma-web/cmd/plataforma/config"
	"github.com/pjecz/plataforma-web/internal/logger"
	"github.com/pjecz/plataforma-web/storage/model"
)

// app holds what the subcommands need once the config is loaded
type app struct {
	configFile string
	conf       *config.Config
	backends   model.Backends
}

func (a *app) load() error {
	conf, err := config.LoadFile(a.configFile)
	if err != nil {
		return err
	}
	if err = logger.Init(conf.Logging.LoggerConfig()); err != nil {
		return err
	}
	log.WithField("file", a.configFile).Debug("Loaded Config")
	backs, err := config.LoadStorageBackends(conf)
	if err != nil {
		return err
	}
	a.conf = conf
	a.backends = backs
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "plataformacli",
		Short:         "plataformacli helps you manage the Plataforma Web",
		Long:          "plataformacli feeds and backs up hearings and manages the users of the Plataforma Web",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "config.yaml", "the config file to use")
	rootCmd.AddCommand(newAudienciasCmd(a), newUsuariosCmd(a))
	rootCmd.SetGlobalNormalizationFunc(flagAliases)
	return rootCmd
}

// englishFlags maps the english flag names to the ones the commands define
var englishFlags = map[string]string{
	"supersede":      "reemplazar",
	"authority-id":   "autoridad-id",
	"authority-code": "autoridad-clave",
	"since-date":     "desde",
}

func flagAliases(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if n, ok := englishFlags[name]; ok {
		name = n
	}
	return pflag.NormalizedName(name)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
