package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/ChemHammer/internal/application/matrix"
	"github.com/turtacn/ChemHammer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemHammer/pkg/errors"
)

// DistanceOutput is the result of one pairwise comparison.
type DistanceOutput struct {
	First    string  `json:"first"`
	Second   string  `json:"second"`
	Distance float64 `json:"distance"`
	Pivots   int     `json:"pivots"`
}

func (o DistanceOutput) String() string {
	return fmt.Sprintf("%s  %s  %s", o.First, o.Second, color.CyanString(matrix.FormatValue(o.Distance)))
}

func (o DistanceOutput) TableHeaders() []string {
	return []string{"First", "Second", "Distance"}
}

func (o DistanceOutput) TableRows() [][]string {
	return [][]string{{o.First, o.Second, matrix.FormatValue(o.Distance)}}
}

// NewDistanceCmd creates the distance command.
func NewDistanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distance FORMULA FORMULA",
		Short: "Compute the distance between two formulas",
		Example: "  chemhammer distance NaCl H2O\n" +
			"  chemhammer distance LiMn2O4 LiFePO4 -o json",
		Args: cobra.ExactArgs(2),
		RunE: runDistance,
	}
}

func runDistance(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	engine := cliCtx.Engine

	first, err := engine.CompositionOf(args[0])
	if err != nil {
		return errors.Wrap(err, errors.CodeUnknown, "first formula")
	}
	second, err := engine.CompositionOf(args[1])
	if err != nil {
		return errors.Wrap(err, errors.CodeUnknown, "second formula")
	}

	d, stats, err := engine.DistanceWithStats(first, second)
	if err != nil {
		return err
	}
	cliCtx.Logger.Debug("distance computed",
		logging.String("first", args[0]),
		logging.String("second", args[1]),
		logging.Int("pivots", stats.Pivots),
	)

	return PrintResult(cmd, DistanceOutput{
		First:    args[0],
		Second:   args[1],
		Distance: d,
		Pivots:   stats.Pivots,
	})
}

// CompositionEntry is one element of a normalized composition.
type CompositionEntry struct {
	Symbol   string  `json:"symbol"`
	Position int     `json:"position"`
	Mass     float64 `json:"mass"`
}

// CompositionOutput lists the normalized composition of one formula.
type CompositionOutput struct {
	Formula     string             `json:"formula"`
	Composition []CompositionEntry `json:"composition"`
	Unknown     []string           `json:"unknown,omitempty"`
}

func (o CompositionOutput) String() string {
	s := o.Formula
	for _, e := range o.Composition {
		s += fmt.Sprintf("\n  %-3s %3d  %s", e.Symbol, e.Position, strconv.FormatFloat(e.Mass, 'f', -1, 64))
	}
	if len(o.Unknown) > 0 {
		s += "\n  unknown: " + strings.Join(o.Unknown, " ")
	}
	return s
}

func (o CompositionOutput) TableHeaders() []string {
	return []string{"Symbol", "Position", "Mass"}
}

func (o CompositionOutput) TableRows() [][]string {
	rows := make([][]string, len(o.Composition))
	for i, e := range o.Composition {
		rows[i] = []string{e.Symbol, strconv.Itoa(e.Position), strconv.FormatFloat(e.Mass, 'f', -1, 64)}
	}
	return rows
}

// NewCompositionCmd creates the composition command.
func NewCompositionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "composition FORMULA",
		Short:   "Show the normalized composition of a formula",
		Example: "  chemhammer composition Ca(OH)2",
		Args:    cobra.ExactArgs(1),
		RunE:    runComposition,
	}
}

func runComposition(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	comp, unknown, err := cliCtx.Engine.Inspect(args[0])
	if err != nil {
		return err
	}
	if len(unknown) > 0 {
		cliCtx.Logger.Warn("unknown symbols mapped to fallback position",
			logging.Formula(args[0]), logging.Any("symbols", unknown))
	}

	symbols, _ := cliCtx.Engine.Table().(interface{ SymbolAt(int) (string, bool) })
	out := CompositionOutput{Formula: args[0], Composition: make([]CompositionEntry, len(comp)), Unknown: unknown}
	for i, e := range comp {
		out.Composition[i] = CompositionEntry{Position: e.Position, Mass: e.Mass}
		if symbols != nil {
			out.Composition[i].Symbol, _ = symbols.SymbolAt(e.Position)
		}
	}
	return PrintResult(cmd, out)
}
