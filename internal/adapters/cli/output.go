package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/jsamuelsen/quote-finder/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-finder/internal/match"
	"github.com/jsamuelsen/quote-finder/internal/search"
)

const maxTableText = 72

func validateOutput(format string) error {
	switch format {
	case outputTable, outputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, outputTable, outputJSON)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(v)
}

// writeResultTable prints one row per quotation followed by a summary line.
func writeResultTable(w io.Writer, res search.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "#\tAUTHOR\tTEXT")

	for i, q := range res.Records {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, match.TitleCase(q.DisplayName()), truncate(oneLine(q.Text), maxTableText))
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintln(w, summary(res))

	return err
}

// writeResultDetail prints every field of each quotation.
func writeResultDetail(w io.Writer, res search.Result) error {
	for i, q := range res.Records {
		fmt.Fprintf(w, "[%d] %s\n", i+1, match.TitleCase(q.DisplayName()))
		fmt.Fprintf(w, "    %s\n", oneLine(q.Text))

		if q.Source != "" {
			fmt.Fprintf(w, "    source: %s\n", q.Source)
		}

		if q.Topic != "" {
			fmt.Fprintf(w, "    topic:  %s\n", q.Topic)
		}

		if q.Bio != "" {
			fmt.Fprintf(w, "    bio:    %s\n", oneLine(q.Bio))
		}

		fmt.Fprintf(w, "    id:     %s\n\n", q.ID)
	}

	_, err := fmt.Fprintln(w, summary(res))

	return err
}

func writeResult(w io.Writer, format string, detail bool, res search.Result) error {
	switch {
	case format == outputJSON:
		return writeJSON(w, dto.NewSearchResponse(res))
	case detail:
		return writeResultDetail(w, res)
	default:
		return writeResultTable(w, res)
	}
}

func summary(res search.Result) string {
	noun := "quotations"
	if res.Len() == 1 {
		noun = "quotation"
	}

	if res.Capped {
		return fmt.Sprintf("%d %s (capped at %d)", res.Len(), noun, res.Limit)
	}

	return fmt.Sprintf("%d %s", res.Len(), noun)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	runes := []rune(s)

	return string(runes[:n-1]) + "…"
}
