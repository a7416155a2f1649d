package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/ChemHammer/internal/application/matrix"
	"github.com/turtacn/ChemHammer/internal/application/search"
	"github.com/turtacn/ChemHammer/pkg/errors"
)

type searchOptions struct {
	query       string
	corpus      string
	limit       int
	mustContain string
}

// SearchOutput wraps a search response for the CLI renderers.
type SearchOutput struct {
	*search.Response
}

func (o SearchOutput) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s  (%d compared, %s)\n", color.New(color.Bold).Sprint(o.Query), o.Compared, o.Took)
	for i, r := range o.Results {
		fmt.Fprintf(&sb, "%4d  %-12s %-24s %s\n", i+1, r.ID, r.Formula, color.CyanString(matrix.FormatValue(r.Distance)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (o SearchOutput) TableHeaders() []string {
	return []string{"Rank", "ID", "Formula", "Distance"}
}

func (o SearchOutput) TableRows() [][]string {
	rows := make([][]string, len(o.Results))
	for i, r := range o.Results {
		rows[i] = []string{strconv.Itoa(i + 1), r.ID, r.Formula, matrix.FormatValue(r.Distance)}
	}
	return rows
}

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Rank a corpus of formulas by distance to a query",
		Long: "Search loads a CSV (id,formula) or XLSX corpus, computes the distance from\n" +
			"the query to every compound and prints the closest matches.",
		Example: "  chemhammer search --query LiFePO4 --corpus compounds.csv --limit 10\n" +
			"  chemhammer search -q NaCl --corpus compounds.xlsx --must-contain Cl -o table",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.query, "query", "q", "", "query formula (required)")
	f.StringVar(&opts.corpus, "corpus", "", "corpus file, .csv or .xlsx (default: search.corpus_path)")
	f.IntVarP(&opts.limit, "limit", "n", 0, "maximum number of results (default: search.default_limit)")
	f.StringVar(&opts.mustContain, "must-contain", "", "only rank compounds containing this element")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func runSearch(cmd *cobra.Command, opts *searchOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg := cliCtx.Config

	path := opts.corpus
	if path == "" {
		path = cfg.Search.CorpusPath
	}
	if path == "" {
		return errors.New(errors.CodeValidation, "no corpus given; use --corpus or search.corpus_path")
	}
	if opts.limit < 0 {
		return errors.New(errors.CodeValidation, "limit must not be negative")
	}

	corpus, err := search.LoadCorpus(path, cliCtx.Engine.Table(), cliCtx.Logger.Named("corpus"))
	if err != nil {
		return err
	}
	svc := search.NewService(cliCtx.Engine, corpus, cliCtx.Logger.Named("search"),
		search.WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
		search.WithConcurrency(cfg.Worker.Concurrency),
	)

	ctx, cancel := cliCtx.withTimeout(cmd.Context())
	defer cancel()

	resp, err := svc.Search(ctx, search.Query{
		Formula:     opts.query,
		Limit:       opts.limit,
		MustContain: opts.mustContain,
	})
	if err != nil {
		return err
	}
	return PrintResult(cmd, SearchOutput{resp})
}
