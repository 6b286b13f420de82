package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zephyrtronium/uncertainty"
	"github.com/zephyrtronium/uncertainty/internal/config"
	"github.com/zephyrtronium/uncertainty/internal/log"
)

func main() {
	if err := BuildRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the state shared by subcommands.
type app struct {
	configFile string
	v          *viper.Viper
	opts       *config.Options
}

// engine creates an engine from the loaded options.
func (a *app) engine(extra ...uncertainty.Option) (*uncertainty.Engine, error) {
	opts, err := a.opts.EngineOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, uncertainty.WithLogger(log.With().Str("service", "engine").Logger()))
	return uncertainty.NewEngine(append(opts, extra...)...), nil
}

func BuildRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:          "uncertainty",
		Short:        "Compute formulas of measured quantities with their propagated errors",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.New()
			if err != nil {
				return err
			}
			if err := config.BindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			opts, err := config.Load(v, a.configFile)
			if err != nil {
				return err
			}
			level, _ := opts.Level()
			log.SetLevel(level)
			a.v, a.opts = v, opts
			log.Debug().Str("config-file", a.configFile).Int("precision", opts.Precision).Msg("loaded options")
			return nil
		},
	}

	cmd.AddCommand(
		buildRunCmd(a),
		buildEvalCmd(a),
		buildDiffCmd(),
		buildTValueCmd(),
	)

	cmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file")
	config.Flags(cmd.PersistentFlags())

	return cmd
}

// usageError is an error in command arguments.
func usageError(format string, args ...any) error {
	return fmt.Errorf("usage: "+format, args...)
}
