package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-finder/internal/adapters/catalog"
	"github.com/jsamuelsen/quote-finder/internal/app"
	"github.com/jsamuelsen/quote-finder/internal/platform/config"
	"github.com/jsamuelsen/quote-finder/internal/search"
)

type searchFlags struct {
	keyword   string
	author    string
	strategy  string
	matchCase bool
	limit     string
	catalogs  []string
	detail    bool
}

func newSearchCommand(opts *options) *cobra.Command {
	f := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the catalog by keyword and author",
		Long: `Search loads the catalog from the configured sources, or from the files
given with --catalog, and prints the matching quotations in catalog order.

Passing --limit caps the number of results. A limit that is not a positive
integer matches nothing.`,
		Example: `  quotes search -k truth
  quotes search -k '"to be" question' -a shakespeare
  quotes search -k 'tr.th' -s regex --limit 5 -o json
  quotes search -k Robbert -s soundex --catalog quotes.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearch(cmd, opts, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.keyword, "keyword", "k", "", "keyword phrases; double quotes group words")
	fl.StringVarP(&f.author, "author", "a", "", "author phrases matched against the display name")
	fl.StringVarP(&f.strategy, "strategy", "s", "contains_all",
		"keyword strategy: "+strings.Join(search.StrategyNames(), ", "))
	fl.BoolVar(&f.matchCase, "match-case", false, "match letter case exactly")
	fl.StringVar(&f.limit, "limit", "", "return at most this many quotations")
	fl.StringSliceVar(&f.catalogs, "catalog", nil, "catalog file to load instead of the configured sources (repeatable)")
	fl.BoolVar(&f.detail, "detail", false, "print every field of each quotation")

	return cmd
}

func runSearch(cmd *cobra.Command, opts *options, f *searchFlags) error {
	ctx := cmd.Context()

	strategy, err := search.ParseStrategy(f.strategy)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.profile)
	if err != nil {
		return err
	}

	output := opts.output
	if !cmd.Flags().Changed("output") && cfg.Search.DefaultOutput != "" {
		output = cfg.Search.DefaultOutput
	}

	catalogCfg := cfg.Catalog
	if len(f.catalogs) > 0 {
		catalogCfg = config.CatalogConfig{Files: f.catalogs, Concurrency: cfg.Catalog.Concurrency}
	}

	set, err := catalog.BuildSources(catalogCfg, cfg.Client, opts.logger)
	if err != nil {
		return err
	}

	if len(set.Sources) == 0 {
		return fmt.Errorf("no catalog sources configured; pass --catalog")
	}

	store := catalog.NewStore()

	report, err := app.NewCatalogService(app.CatalogServiceConfig{
		Store:       store,
		Sources:     set.Sources,
		Logger:      opts.logger,
		Concurrency: catalogCfg.Concurrency,
		AllowEmpty:  true,
	}).Load(ctx)
	if err != nil {
		return err
	}

	for _, name := range report.Skipped {
		opts.logger.WarnContext(ctx, "catalog source skipped", slog.String("source", name))
	}

	searcher := app.NewSearchService(app.SearchServiceConfig{
		Catalog: store,
		Engine: search.NewEngine(
			search.WithShards(cfg.Search.Shards),
			search.WithMinShardSize(cfg.Search.MinShardSize),
			search.WithMatchTimeout(cfg.Search.MaxRegexTime),
		),
		Logger: opts.logger,
	})

	res, err := searcher.Search(ctx, search.Request{
		Keyword:      f.keyword,
		Author:       f.author,
		Strategy:     strategy,
		MatchCase:    f.matchCase,
		LimitEnabled: cmd.Flags().Changed("limit"),
		LimitValue:   f.limit,
	})
	if err != nil {
		return err
	}

	return writeResult(cmd.OutOrStdout(), output, f.detail, res)
}
