// Package cli implements the quotes command line: catalog search and the
// text tools the matchers are built on.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-finder/internal/platform/config"
	"github.com/jsamuelsen/quote-finder/internal/platform/logging"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	profile  string
	logLevel string
	output   string

	logger *slog.Logger
}

// NewRootCommand builds the quotes command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "quotes",
		Short:         "Search a quotation catalog from the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(opts.output); err != nil {
				return err
			}

			opts.logger = logging.NewWithWriter(&logging.Config{
				Level:   opts.logLevel,
				Format:  "pretty",
				Service: "quotes",
				Version: version,
			}, cmd.ErrOrStderr())

			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.profile, "profile", "", "configuration profile to load from "+config.Dir+"/")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: trace, debug, info, warn, error")
	flags.StringVarP(&opts.output, "output", "o", outputTable, "output format: table or json")

	root.AddCommand(
		newSearchCommand(opts),
		newSoundexCommand(opts),
		newDistanceCommand(opts),
		newNormalizeCommand(opts),
		newPhrasesCommand(opts),
	)

	return root
}
