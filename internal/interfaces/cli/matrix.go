package cli

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemHammer/internal/application/matrix"
	"github.com/turtacn/ChemHammer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemHammer/pkg/errors"
)

const (
	matrixFormatTable = "table"
	matrixFormatCSV   = "csv"
	matrixFormatXLSX  = "xlsx"
)

type matrixOptions struct {
	round  bool
	format string
	out    string
}

// MatrixOutput wraps a matrix result for the CLI renderers. JSON output uses
// the result's own encoding.
type MatrixOutput struct {
	*matrix.Result
}

func (o MatrixOutput) String() string {
	var sb strings.Builder
	for i, row := range o.Rows() {
		sb.WriteString(o.Formulas[i])
		for _, v := range row {
			sb.WriteString("\t")
			sb.WriteString(matrix.FormatValue(v))
		}
		if i < o.Size()-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (o MatrixOutput) TableHeaders() []string {
	return append([]string{""}, o.Formulas...)
}

func (o MatrixOutput) TableRows() [][]string {
	rows := make([][]string, o.Size())
	for i, row := range o.Rows() {
		rows[i] = make([]string, 0, len(row)+1)
		rows[i] = append(rows[i], o.Formulas[i])
		for _, v := range row {
			rows[i] = append(rows[i], matrix.FormatValue(v))
		}
	}
	return rows
}

// NewMatrixCmd creates the matrix command.
func NewMatrixCmd() *cobra.Command {
	opts := &matrixOptions{}
	cmd := &cobra.Command{
		Use:   "matrix FORMULA...",
		Short: "Build the pairwise distance matrix of a set of formulas",
		Long: "Matrix computes every pairwise distance. The table format follows --output;\n" +
			"csv writes row_label,col_label,value triples; xlsx writes a workbook with\n" +
			"the square matrix and the flat table.",
		Example: "  chemhammer matrix NaCl H2O Fe2O3 --round\n" +
			"  chemhammer matrix NaCl H2O Fe2O3 --format xlsx --out distances.xlsx",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatrix(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.round, "round", false, "round distances to the nearest integer (default: matrix.round)")
	f.StringVarP(&opts.format, "format", "f", matrixFormatTable, "output format (table, csv, xlsx)")
	f.StringVar(&opts.out, "out", "", "write to this file instead of stdout")
	return cmd
}

func runMatrix(cmd *cobra.Command, args []string, opts *matrixOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg := cliCtx.Config

	format := strings.ToLower(opts.format)
	switch format {
	case matrixFormatTable, matrixFormatCSV, matrixFormatXLSX:
	default:
		return errors.New(errors.CodeValidation, "unsupported matrix format").WithDetail(opts.format)
	}

	round := cfg.Matrix.Round
	if cmd.Flags().Changed("round") {
		round = opts.round
	}
	builder := matrix.NewBuilder(cliCtx.Engine, cliCtx.Logger.Named("matrix"),
		matrix.WithRound(round),
		matrix.WithConcurrency(cfg.Worker.Concurrency),
		matrix.WithMaxFormulas(cfg.Matrix.MaxFormulas),
	)

	ctx, cancel := cliCtx.withTimeout(cmd.Context())
	defer cancel()

	res, err := builder.Build(ctx, args)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return errors.Wrap(err, errors.CodeInternal, "create output file")
		}
		defer f.Close()
		w = f
		cmd.SetOut(f)
	}

	switch format {
	case matrixFormatCSV:
		err = res.WriteCSV(w)
	case matrixFormatXLSX:
		err = res.WriteXLSX(w)
	default:
		err = PrintResult(cmd, MatrixOutput{res})
	}
	if err != nil {
		return err
	}
	if opts.out != "" {
		cliCtx.Logger.Info("matrix written",
			logging.String("path", opts.out),
			logging.String("format", format),
			logging.Int("formulas", res.Size()),
		)
	}
	return nil
}
