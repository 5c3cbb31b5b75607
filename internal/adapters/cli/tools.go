package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-finder/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-finder/internal/match"
)

func newSoundexCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "soundex WORD...",
		Short:   "Print the Soundex code of each word",
		Example: "  quotes soundex Robert Rupert Tymczak",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := dto.SoundexResponse{Codes: make([]dto.SoundexEntry, 0, len(args))}
			for _, word := range args {
				resp.Codes = append(resp.Codes, dto.SoundexEntry{Word: word, Code: match.Soundex(word)})
			}

			if opts.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, entry := range resp.Codes {
				fmt.Fprintf(tw, "%s\t%s\n", entry.Word, entry.Code)
			}

			return tw.Flush()
		},
	}
}

func newDistanceCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "distance A B",
		Short:   "Print the Levenshtein distance between two strings",
		Example: "  quotes distance kitten sitting",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := dto.DistanceResponse{A: args[0], B: args[1], Distance: match.Distance(args[0], args[1])}

			if opts.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), resp.Distance)

			return err
		},
	}
}

func newNormalizeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "normalize TEXT...",
		Short:   "Fold accented characters to plain ASCII",
		Example: "  quotes normalize 'café à la crème'",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			resp := dto.NormalizeResponse{Text: text, Normalized: match.Normalize(text)}

			if opts.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), resp.Normalized)

			return err
		},
	}
}

func newPhrasesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "phrases QUERY...",
		Short:   "Split a keyword query into the phrases a search uses",
		Example: `  quotes phrases '"to be" or not'`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			phrases := match.ParsePhrases(query)
			if phrases == nil {
				phrases = []string{}
			}

			if opts.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), dto.PhrasesResponse{Query: query, Phrases: phrases})
			}

			for _, p := range phrases {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
