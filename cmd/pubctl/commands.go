package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danmuck/pubctl/internal/config"
	"github.com/danmuck/pubctl/internal/logging"
	"github.com/danmuck/pubctl/internal/observability"
	"github.com/danmuck/pubctl/internal/publish"
	"github.com/danmuck/pubctl/internal/release"
	"github.com/danmuck/pubctl/internal/tools"
)

var version = "dev"

type rootOptions struct {
	configPath  string
	root        string
	registryURL string
	metricsFile string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "pubctl",
		Short:         "Publish changed packages and their dependents in dependency order",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.ConfigureRuntime()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "release config file")
	flags.StringVar(&opts.root, "root", "", "directory holding the package directories")
	flags.StringVar(&opts.registryURL, "registry-url", "", "registry endpoint passed to the publish tool")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write prometheus metrics to this file after the run")

	root.AddCommand(newPublishCommand(opts), newPlanCommand(opts), newConfigCommand())
	return root
}

func newPublishCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <package>...",
		Short: "Publish the given packages and every package depending on them",
		RunE: func(cmd *cobra.Command, args []string) error {
			// the credential gates all other work, including reading config
			creds, err := config.LoadCredentials()
			if err != nil {
				return err
			}
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}

			logger := log.Logger
			pub := publish.NewPublisher(publish.Config{
				Command:                cfg.PublishCommand,
				RegistryFlag:           cfg.RegistryFlag,
				RegistryURL:            cfg.RegistryURL,
				AlreadyPublishedMarker: cfg.AlreadyPublishedMarker,
				TokenEnv:               config.TokenEnv,
				Token:                  creds.Token,
			}, tools.ExecRunner{}, logger)

			_, runErr := release.New(cfg, pub, logger).Run(args)
			if err := writeMetrics(cfg, logger); err != nil && runErr == nil {
				return err
			}
			return runErr
		},
	}
}

func newPlanCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <package>...",
		Short: "Print the publish order without publishing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			plan, err := release.New(cfg, nil, log.Logger).Plan(args)
			if err != nil {
				return err
			}
			for i, name := range plan.Order {
				pkg, _ := plan.Index.Lookup(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s (%s) %s\n", i+1, name, pkg.Dir, pkg.Version())
			}
			return nil
		},
	}
}

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the release config file",
	}
	var output string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a release config template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(output, force); err != nil {
				return err
			}
			log.Info().Str("path", output).Msg("wrote release config template")
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", defaultConfigPath, "output path")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a release config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			cfg, err := loadReleaseConfig(path, true)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			log.Info().Str("path", path).Msg("release config valid")
			return nil
		},
	}
	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}

// resolve loads the config file and applies flag overrides.
func (o *rootOptions) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg, err := loadReleaseConfig(o.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("root") {
		cfg.Root = o.root
	}
	if cmd.Flags().Changed("registry-url") {
		cfg.RegistryURL = o.registryURL
	}
	if cmd.Flags().Changed("metrics-file") {
		cfg.MetricsFile = o.metricsFile
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func writeMetrics(cfg config.Config, logger zerolog.Logger) error {
	if cfg.MetricsFile == "" {
		return nil
	}
	if err := observability.WriteMetrics(cfg.MetricsFile); err != nil {
		logger.Error().Err(err).Str("path", cfg.MetricsFile).Msg("metrics write failed")
		return fmt.Errorf("write metrics: %w", err)
	}
	logger.Debug().Str("path", cfg.MetricsFile).Msg("metrics written")
	return nil
}
