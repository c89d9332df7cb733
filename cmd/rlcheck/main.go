// Command rlcheck runs the resource-leak / must-call consistency
// checker over one or more Go packages.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cockroachdb/rlcheck/config"
	"github.com/cockroachdb/rlcheck/declcheck"
	"github.com/cockroachdb/rlcheck/driver"
)

func main() {
	var (
		dir           string
		configPath    string
		setExitStatus bool
		verbose       bool
		concurrency   int
	)

	check := &cobra.Command{
		Use:           "check [packages]",
		Short:         "Check the given packages for resource-leak / must-call consistency violations",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var logger *zap.SugaredLogger
			if verbose {
				z, err := zap.NewDevelopment()
				if err != nil {
					return errors.Wrap(err, "building logger")
				}
				defer z.Sync() //nolint:errcheck
				logger = z.Sugar()
			}

			cfg := config.Default()
			if configPath != "" {
				data, err := os.ReadFile(configPath)
				if err != nil {
					return errors.Wrap(err, "reading config file")
				}
				cfg, err = config.Load(data)
				if err != nil {
					return errors.Wrap(err, "loading config")
				}
			}

			d := &driver.Driver{
				Dir:      dir,
				Patterns: args,
				Log:      logger,
				Config: declcheck.Config{
					PermitStaticOwning:     cfg.PermitStaticOwning,
					NoLightweightOwnership: cfg.NoLightweightOwnership,
					StrictFieldMatch:       cfg.StrictFieldMatch,
				},
				RLConfig:    cfg,
				Concurrency: concurrency,
			}

			collector, err := d.Run()
			if err != nil {
				return err
			}
			for _, diag := range collector.Diagnostics() {
				cmd.Printf("%s: %s %v\n", diag.Element.DiagString(), diag.Key, diag.Args)
			}
			if len(collector.Diagnostics()) > 0 && setExitStatus {
				return errors.New("violations reported")
			}
			return nil
		},
	}
	check.Flags().StringVarP(&dir, "dir", "d", ".", "override the current working directory")
	check.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML configuration file")
	check.Flags().BoolVar(&setExitStatus, "set_exit_status", false, "return a non-zero exit code if violations are reported")
	check.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable additional diagnostic logging")
	check.Flags().IntVar(&concurrency, "concurrency", 4, "maximum number of procedures analyzed in parallel")

	root := &cobra.Command{Use: "rlcheck"}
	root.AddCommand(check)

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
