package grid

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/graph"
)

// MaxCells bounds Columns*Rows.
const MaxCells = 1 << 20

// Config controls grid generation.
type Config struct {
	Columns         int     `toml:"columns" json:"columns"`
	Rows            int     `toml:"rows" json:"rows"`
	MinGap          float64 `toml:"min_gap" json:"min_gap"`
	MaxGap          float64 `toml:"max_gap" json:"max_gap"`
	EdgeProbability float64 `toml:"edge_probability" json:"edge_probability"`
	// Seed selects the random sequence. Zero picks a time-based seed.
	Seed int64 `toml:"seed" json:"seed"`
}

// DefaultConfig returns a 10x10 grid with gaps in [1, 2] and half of the
// possible connections.
func DefaultConfig() Config {
	return Config{
		Columns:         10,
		Rows:            10,
		MinGap:          1,
		MaxGap:          2,
		EdgeProbability: 0.5,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Columns < 1 || c.Rows < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "grid must have at least one column and row, got %dx%d", c.Columns, c.Rows)
	case c.Columns > MaxCells/c.Rows:
		return errors.New(errors.ErrCodeInvalidConfig, "grid %dx%d exceeds %d cells", c.Columns, c.Rows, MaxCells)
	case c.MinGap < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "min_gap must be non-negative, got %g", c.MinGap)
	case c.MaxGap < c.MinGap:
		return errors.New(errors.ErrCodeInvalidConfig, "max_gap (%g) is smaller than min_gap (%g)", c.MaxGap, c.MinGap)
	case c.EdgeProbability < 0 || c.EdgeProbability > 1:
		return errors.New(errors.ErrCodeInvalidConfig, "edge_probability must be within [0, 1], got %g", c.EdgeProbability)
	}
	return nil
}

// Grid is a generated graph together with its cell layout.
type Grid struct {
	Graph   *graph.Graph
	Columns int
	Rows    int
	// Seed is the seed actually used, resolved when Config.Seed was zero.
	Seed  int64
	cells [][]graph.Node
}

// NodeID returns the identity of the node at (col, row).
func NodeID(col, row int) graph.Node {
	return graph.Node(fmt.Sprintf("n[%d,%d]", col, row))
}

// Generate builds a grid graph from cfg.
func Generate(cfg Config) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))
	uniform := func() float64 {
		return cfg.MinGap + rng.Float64()*(cfg.MaxGap-cfg.MinGap)
	}

	g := graph.New()
	cells := make([][]graph.Node, cfg.Columns)
	for i := range cells {
		cells[i] = make([]graph.Node, cfg.Rows)
		for j := range cells[i] {
			n := NodeID(i, j)
			cells[i][j] = n
			x := float64(i) * uniform()
			z := float64(j) * uniform()
			g.SetPosition(n, graph.Position{X: x, Z: z})
			g.SetCell(n, graph.Cell{Col: i, Row: j})
		}
	}

	for i := range cells {
		for j := range cells[i] {
			from := cells[i][j]
			for _, to := range neighbours(cells, i, j) {
				if rng.Float64() >= cfg.EdgeProbability {
					continue
				}
				g.AddConnection(graph.Connection{
					From: from,
					To:   to,
					Cost: g.Position(from).Distance(g.Position(to)),
				})
			}
		}
	}

	return &Grid{Graph: g, Columns: cfg.Columns, Rows: cfg.Rows, Seed: seed, cells: cells}, nil
}

// neighbours lists the 4-neighbourhood of (i, j) in the order left, down,
// up, right.
func neighbours(cells [][]graph.Node, i, j int) []graph.Node {
	out := make([]graph.Node, 0, 4)
	if i > 0 {
		out = append(out, cells[i-1][j])
	}
	if j > 0 {
		out = append(out, cells[i][j-1])
	}
	if j < len(cells[i])-1 {
		out = append(out, cells[i][j+1])
	}
	if i < len(cells)-1 {
		out = append(out, cells[i+1][j])
	}
	return out
}

// At returns the node at (col, row).
func (g *Grid) At(col, row int) (graph.Node, bool) {
	if col < 0 || col >= g.Columns || row < 0 || row >= g.Rows {
		return "", false
	}
	return g.cells[col][row], true
}

// Corners returns the nodes at (0, 0) and (Columns-1, Rows-1), the default
// start and goal.
func (g *Grid) Corners() (start, goal graph.Node) {
	return g.cells[0][0], g.cells[g.Columns-1][g.Rows-1]
}
