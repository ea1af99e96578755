package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/grid"
)

// gridFlags are the grid settings shared by generate and solve. Only flags
// the user set override the configuration.
type gridFlags struct {
	columns, rows  int
	seed           int64
	probability    float64
	minGap, maxGap float64
}

func (f *gridFlags) register(cmd *cobra.Command) {
	defaults := grid.DefaultConfig()
	cmd.Flags().IntVarP(&f.columns, "columns", "c", defaults.Columns, "number of grid columns")
	cmd.Flags().IntVarP(&f.rows, "rows", "r", defaults.Rows, "number of grid rows")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().Float64Var(&f.probability, "probability", defaults.EdgeProbability, "chance that a connection to a neighbour is kept")
	cmd.Flags().Float64Var(&f.minGap, "min-gap", defaults.MinGap, "minimum distance between adjacent columns and rows")
	cmd.Flags().Float64Var(&f.maxGap, "max-gap", defaults.MaxGap, "maximum distance between adjacent columns and rows")
}

// apply overlays the flags the user set on cfg.
func (f *gridFlags) apply(cmd *cobra.Command, cfg grid.Config) grid.Config {
	flags := cmd.Flags()
	if flags.Changed("columns") {
		cfg.Columns = f.columns
	}
	if flags.Changed("rows") {
		cfg.Rows = f.rows
	}
	if flags.Changed("seed") {
		cfg.Seed = f.seed
	}
	if flags.Changed("probability") {
		cfg.EdgeProbability = f.probability
	}
	if flags.Changed("min-gap") {
		cfg.MinGap = f.minGap
	}
	if flags.Changed("max-gap") {
		cfg.MaxGap = f.maxGap
	}
	return cfg
}

// generateCommand creates the generate command for writing random grid graphs.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		flags  gridFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random grid graph",
		Long: `Generate a random grid graph and write it as JSON.

Nodes sit on a jittered grid; each node keeps a connection to each of its
neighbours with the configured probability. Connection costs are the
Euclidean distance between the endpoints.`,
		Example: `  gridpath generate -c 20 -r 15 --seed 42 -o maze.json
  gridpath generate --probability 0.8 | gridpath solve -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())

			prog := newProgress(logger)
			g, err := grid.Generate(flags.apply(cmd, cfg.Grid))
			if err != nil {
				return err
			}
			prog.done("grid generated", "columns", g.Columns, "rows", g.Rows, "seed", g.Seed)

			if output == "" || output == "-" {
				return graph.WriteJSON(g.Graph, cmd.OutOrStdout())
			}
			if err := graph.WriteFile(g.Graph, output); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Generated %dx%d grid", g.Columns, g.Rows)
			printStats(g.Graph.Len(), g.Graph.ConnectionCount(), false)
			printKeyValue("Seed", fmt.Sprint(g.Seed))
			printFile(output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}
