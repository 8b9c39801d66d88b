package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/soyeahso/frontdesk/internal/config"
	"github.com/soyeahso/frontdesk/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths     config.Paths
	cfg       config.Config
	cfgErr    error
	log       *logging.Logger
	logCloser io.Closer
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frontdesk",
		Short: "Frontdesk: hospital reception kiosk",
		Long: "Frontdesk greets patients, collects their details, books them with a doctor " +
			"and issues a visit token with a QR code.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}

			// a broken config file must not lock the operator out of
			// `config set`; commands that need it call loadConfig
			cfg, cfgErr = config.Load(paths.Config)
			logCfg := config.Defaults().Logging
			if cfgErr == nil {
				logCfg = cfg.Logging
			}

			opts := logging.Options{
				Level:        logCfg.Level,
				ConsoleLevel: logCfg.ConsoleLevel,
				ConsoleStyle: logCfg.ConsoleStyle,
				File:         logCfg.File,
			}
			if logLevel != "" {
				opts.Level = logLevel
				opts.ConsoleLevel = logLevel
			}
			log, logCloser, err = logging.Open(opts, cmd.ErrOrStderr())
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.frontdesk/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// loadConfig returns the config loaded by the root command after checking
// it. Validation issues are logged one per line.
func loadConfig() (config.Config, error) {
	if cfgErr != nil {
		return config.Config{}, cfgErr
	}
	issues := config.Validate(&cfg)
	if len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return config.Config{}, &config.ConfigError{
			Message: fmt.Sprintf("%s: validation failed with %d issue(s)", paths.Config, len(issues)),
		}
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "frontdesk:", err)
	}
	return err
}
