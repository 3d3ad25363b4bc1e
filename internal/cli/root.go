package cli

import (
	"fmt"

	"github.com/arthur-debert/remnant/internal/version"
	"github.com/arthur-debert/remnant/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// globalOptions are the flags shared by every command
type globalOptions struct {
	verbosity   int
	configFile  string
	format      string
	loose       bool
	noSpotlight bool
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "remnant",
		Short: MsgRootShort,
		Long: `remnant finds the files an application leaves on disk outside its bundle:
sandbox containers, caches, preferences, logs, launch agents and the like.

It never modifies anything; it reports what it finds.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	flags.StringVarP(&opts.configFile, "config", "c", "", "Config file (default is $XDG_CONFIG_HOME/remnant/config.toml)")
	flags.StringVarP(&opts.format, "format", "f", "auto", "Output format: auto, term, text, json or yaml")
	flags.BoolVar(&opts.loose, "loose", false, "Accept names that contain the application name, not only exact matches")
	flags.BoolVar(&opts.noSpotlight, "no-spotlight", false, "Do not query the Spotlight index")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newFindCmd(opts))
	rootCmd.AddCommand(newOrphansCmd(opts))
	rootCmd.AddCommand(newConditionsCmd(opts))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Long:  `Print detailed version information including commit hash and build date`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "remnant version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(out, "Built:  %s\n", version.Date)
			}
		},
	}
}
