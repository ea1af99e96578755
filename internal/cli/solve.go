package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridpath/pkg/cache"
	"github.com/matzehuels/gridpath/pkg/config"
	"github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/grid"
	"github.com/matzehuels/gridpath/pkg/heuristic"
	"github.com/matzehuels/gridpath/pkg/render"
	"github.com/matzehuels/gridpath/pkg/search"
)

// solveOpts holds the solve command's flags.
type solveOpts struct {
	grid      gridFlags
	from, to  string
	fromPos   string
	toPos     string
	algorithm string
	heuristic string
	delay     time.Duration
	animate   bool
	render    string
	labels    bool
	asJSON    bool
	noCache   bool
}

// problem is a graph with resolved endpoints.
type problem struct {
	graph *graph.Graph
	start graph.Node
	goal  graph.Node
	grid  *grid.Grid
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var opts solveOpts

	cmd := &cobra.Command{
		Use:   "solve [graph.json]",
		Short: "Find the shortest path between two nodes",
		Long: `Find the shortest path between two nodes of a graph.

Without a file argument a random grid is generated from the grid flags and
the search runs corner to corner. Pass "-" to read the graph from stdin.

Endpoints are given by node ID (--from, --to) or by a position "x,z", which
selects the nearest node (--from-pos, --to-pos).`,
		Example: `  gridpath solve -c 30 -r 20 --animate
  gridpath solve maze.json --from 'n[0,0]' --to 'n[9,9]' --algorithm dijkstra
  gridpath solve --heuristic manhattan --render search.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			return c.runSolve(cmd, input, opts)
		},
	}

	opts.grid.register(cmd)
	f := cmd.Flags()
	f.StringVar(&opts.from, "from", "", "start node ID")
	f.StringVar(&opts.to, "to", "", "goal node ID")
	f.StringVar(&opts.fromPos, "from-pos", "", "start at the node nearest to x,z")
	f.StringVar(&opts.toPos, "to-pos", "", "end at the node nearest to x,z")
	f.StringVarP(&opts.algorithm, "algorithm", "a", "", "search algorithm: astar or dijkstra (default from config)")
	f.StringVar(&opts.heuristic, "heuristic", "", "A* heuristic: "+strings.Join(heuristic.Names(), ", ")+" (default from config)")
	f.DurationVar(&opts.delay, "delay", 0, "pause between checkpoints (default from config when animating)")
	f.BoolVar(&opts.animate, "animate", false, "animate the search in the terminal")
	f.StringVar(&opts.render, "render", "", "write the final state to a .svg or .dot file")
	f.BoolVar(&opts.labels, "labels", false, "print node IDs in rendered output")
	f.BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the solve cache")
	cmd.MarkFlagsMutuallyExclusive("from", "from-pos")
	cmd.MarkFlagsMutuallyExclusive("to", "to-pos")
	cmd.MarkFlagsMutuallyExclusive("animate", "json")

	return cmd
}

func (c *CLI) runSolve(cmd *cobra.Command, input string, opts solveOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	sc, err := solverConfig(cmd, cfg, opts)
	if err != nil {
		return err
	}

	p, err := loadProblem(cmd, input, cfg, opts)
	if err != nil {
		return err
	}
	logger.Debug("problem ready", "nodes", p.graph.Len(), "connections", p.graph.ConnectionCount(),
		"start", p.start, "goal", p.goal, "algorithm", sc.Algorithm)

	var expanded atomic.Int64
	solver, err := search.New(sc, search.WithObserver(countExpanded(&expanded)))
	if err != nil {
		return err
	}

	if opts.animate {
		if !isTerminal(os.Stdout) {
			return errors.New(errors.ErrCodeUnsupported, "--animate needs a terminal")
		}
		run, err := solver.Solve(p.graph, p.start, p.goal)
		if err != nil {
			return err
		}
		res, err := animate(ctx, run, p.graph)
		if err != nil {
			return err
		}
		printResult(res, false)
		return writeRender(ctx, p.graph, run.Snapshot(), opts)
	}

	store := c.newCache(ctx, cfg.Cache, opts.noCache)
	defer store.Close()
	key, err := solveKey(p, sc)
	if err != nil {
		return err
	}

	res, snap, cached, err := c.solveCached(ctx, store, key, cfg.Cache.TTL.Duration, solver, p, &expanded)
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printResult(res, cached)
	return writeRender(ctx, p.graph, snap, opts)
}

// solveCached returns the cached result for key or runs the search and stores
// its result. Cached results carry no frontier, so their snapshot only holds
// the path.
func (c *CLI) solveCached(ctx context.Context, store cache.Cache, key string, ttl time.Duration, solver search.Solver, p *problem, expanded *atomic.Int64) (search.Result, search.Snapshot, bool, error) {
	logger := loggerFromContext(ctx)

	if data, ok, err := store.Get(ctx, key); err != nil {
		logger.Warn("cache read failed", "err", err)
	} else if ok {
		var entry cachedResult
		if err := json.Unmarshal(data, &entry); err == nil {
			if res, err := entry.result(p.graph); err == nil {
				logger.Debug("solve cache hit", "key", key)
				return res, search.Snapshot{Outcome: res.Outcome, Path: res.Path, Stats: res.Stats}, true, nil
			}
		}
		logger.Debug("discarding unreadable cache entry", "key", key)
	}

	run, err := solver.Solve(p.graph, p.start, p.goal)
	if err != nil {
		return search.Result{}, search.Snapshot{}, false, err
	}

	var res search.Result
	if run.StepDelay() > 0 {
		res, err = driveWithSpinner(ctx, run, expanded)
		if err != nil {
			return search.Result{}, search.Snapshot{}, false, err
		}
	} else {
		prog := newProgress(logger)
		res = search.Complete(run)
		prog.done("search finished", "steps", res.Stats.Steps)
	}

	if data, err := json.Marshal(newCachedResult(res)); err == nil {
		if err := store.Set(ctx, key, data, ttl); err != nil {
			logger.Warn("cache write failed", "err", err)
		}
	}
	return res, run.Snapshot(), false, nil
}

// driveWithSpinner steps run with its configured delay while a spinner shows
// how many nodes have been expanded so far.
func driveWithSpinner(ctx context.Context, run *search.Run, expanded *atomic.Int64) (search.Result, error) {
	s := newSpinnerWithContext(ctx, "Searching").withStatus(func() string {
		return fmt.Sprintf("%d expanded", expanded.Load())
	})
	s.Start()
	res, err := search.Drive(ctx, run)
	if err != nil {
		s.StopWithError(fmt.Sprintf("Search interrupted after %d expansions", res.Stats.Expanded))
		return res, err
	}
	s.Stop()
	return res, nil
}

// countExpanded returns an observer that counts nodes entering the closed
// set.
func countExpanded(n *atomic.Int64) search.Observer {
	return func(e search.Event) {
		if e.Kind == search.EventTransition && e.To == search.Closed {
			n.Add(1)
		}
	}
}

// =============================================================================
// Inputs
// =============================================================================

// solverConfig applies the solver flags to the configured defaults. Without
// --animate the configured delay is ignored unless --delay is given.
func solverConfig(cmd *cobra.Command, cfg config.Config, opts solveOpts) (search.Config, error) {
	sc, err := cfg.Search()
	if err != nil {
		return search.Config{}, err
	}
	if opts.algorithm != "" {
		if sc.Algorithm, err = search.ParseAlgorithm(opts.algorithm); err != nil {
			return search.Config{}, err
		}
	}
	if opts.heuristic != "" {
		if sc.Heuristic, err = heuristic.ParseType(opts.heuristic); err != nil {
			return search.Config{}, err
		}
	}
	switch {
	case cmd.Flags().Changed("delay"):
		if opts.delay < 0 {
			return search.Config{}, errors.New(errors.ErrCodeInvalidInput, "--delay must not be negative")
		}
		sc.StepDelay = opts.delay
	case !opts.animate:
		sc.StepDelay = 0
	}
	return sc, nil
}

// loadProblem reads or generates the graph and resolves the endpoints.
func loadProblem(cmd *cobra.Command, input string, cfg config.Config, opts solveOpts) (*problem, error) {
	p := &problem{}
	switch input {
	case "":
		gr, err := grid.Generate(opts.grid.apply(cmd, cfg.Grid))
		if err != nil {
			return nil, err
		}
		p.graph, p.grid = gr.Graph, gr
		p.start, p.goal = gr.Corners()
		loggerFromContext(cmd.Context()).Debug("grid generated", "columns", gr.Columns, "rows", gr.Rows, "seed", gr.Seed)
	case "-":
		g, err := graph.ReadJSON(cmd.InOrStdin())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read graph from stdin")
		}
		p.graph = g
	default:
		g, err := graph.ReadFile(input)
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph file %s", input)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read graph %s", input)
		}
		p.graph = g
	}

	if p.grid == nil {
		if nodes := p.graph.Nodes(); len(nodes) > 0 {
			p.start, p.goal = nodes[0], nodes[len(nodes)-1]
		}
	}

	var index *grid.Index
	nearest := func(raw string) (graph.Node, error) {
		pos, err := parsePosition(raw)
		if err != nil {
			return "", err
		}
		if index == nil {
			index = grid.NewIndex(p.graph)
		}
		n, ok := index.Nearest(pos)
		if !ok {
			return "", errors.New(errors.ErrCodeInvalidNode, "graph has no nodes near %s", raw)
		}
		return n, nil
	}

	var err error
	switch {
	case opts.from != "":
		p.start = graph.Node(opts.from)
	case opts.fromPos != "":
		if p.start, err = nearest(opts.fromPos); err != nil {
			return nil, err
		}
	}
	switch {
	case opts.to != "":
		p.goal = graph.Node(opts.to)
	case opts.toPos != "":
		if p.goal, err = nearest(opts.toPos); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// parsePosition parses "x,z" into a position on the ground plane.
func parsePosition(raw string) (graph.Position, error) {
	xs, zs, ok := strings.Cut(raw, ",")
	if !ok {
		return graph.Position{}, errors.New(errors.ErrCodeInvalidInput, "position %q must be x,z", raw)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return graph.Position{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "position %q", raw)
	}
	z, err := strconv.ParseFloat(strings.TrimSpace(zs), 64)
	if err != nil {
		return graph.Position{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "position %q", raw)
	}
	return graph.Position{X: x, Z: z}, nil
}

// =============================================================================
// Caching
// =============================================================================

func solveKey(p *problem, sc search.Config) (string, error) {
	data, err := graph.Marshal(p.graph)
	if err != nil {
		return "", err
	}
	opts := cache.SolveKeyOpts{
		Start:     string(p.start),
		Goal:      string(p.goal),
		Algorithm: sc.Algorithm.String(),
	}
	if sc.Algorithm == search.AlgorithmAStar {
		opts.Heuristic = sc.Heuristic.String()
	}
	return cache.SolveKey(cache.Hash(data), opts), nil
}

// cachedResult is the stored form of a search result. The path is kept as
// node IDs and rebuilt against the graph on load.
type cachedResult struct {
	Algorithm string       `json:"algorithm"`
	Start     string       `json:"start"`
	Goal      string       `json:"goal"`
	Outcome   string       `json:"outcome"`
	Nodes     []string     `json:"nodes,omitempty"`
	Stats     search.Stats `json:"stats"`
}

func newCachedResult(res search.Result) cachedResult {
	entry := cachedResult{
		Algorithm: res.Algorithm.String(),
		Start:     string(res.Start),
		Goal:      string(res.Goal),
		Outcome:   res.Outcome.String(),
		Stats:     res.Stats,
	}
	for _, n := range res.Nodes() {
		entry.Nodes = append(entry.Nodes, string(n))
	}
	return entry
}

func (e cachedResult) result(g *graph.Graph) (search.Result, error) {
	alg, err := search.ParseAlgorithm(e.Algorithm)
	if err != nil {
		return search.Result{}, err
	}
	res := search.Result{
		Algorithm: alg,
		Start:     graph.Node(e.Start),
		Goal:      graph.Node(e.Goal),
		Stats:     e.Stats,
	}
	switch e.Outcome {
	case search.Found.String():
		res.Outcome, res.Found = search.Found, true
	case search.Exhausted.String():
		res.Outcome = search.Exhausted
	default:
		return search.Result{}, fmt.Errorf("unexpected cached outcome %q", e.Outcome)
	}
	for i := 1; i < len(e.Nodes); i++ {
		c, ok := g.Connection(graph.Node(e.Nodes[i-1]), graph.Node(e.Nodes[i]))
		if !ok {
			return search.Result{}, fmt.Errorf("cached path uses missing connection %s -> %s", e.Nodes[i-1], e.Nodes[i])
		}
		res.Path = append(res.Path, c)
	}
	res.Cost = search.PathCost(res.Path)
	return res, nil
}

// =============================================================================
// Output
// =============================================================================

func printResult(res search.Result, cached bool) {
	if !res.Found {
		printWarning("No path from %s to %s", res.Start, res.Goal)
	} else {
		printSuccess("Found path from %s to %s", res.Start, res.Goal)
	}
	printKeyValue("Algorithm", res.Algorithm.String())
	if res.Found {
		printKeyValue("Cost", strconv.FormatFloat(res.Cost, 'f', 3, 64))
		nodes := res.Nodes()
		printKeyValue("Length", fmt.Sprintf("%d nodes", len(nodes)))
		printPath(nodes)
	}
	printSearchStats(res.Stats, cached)
}

// writeRender writes snap to the --render file, choosing the format by
// extension.
func writeRender(ctx context.Context, g *graph.Graph, snap search.Snapshot, opts solveOpts) error {
	if opts.render == "" {
		return nil
	}
	dot := render.ToDOT(g, &snap, render.Options{Labels: opts.labels, Costs: opts.labels})

	var data []byte
	switch ext := strings.ToLower(filepath.Ext(opts.render)); ext {
	case ".dot", ".gv":
		data = []byte(dot)
	case ".svg":
		spinner := newSpinnerWithContext(ctx, "Rendering SVG")
		spinner.Start()
		svg, err := render.RenderSVG(ctx, dot)
		if err != nil {
			spinner.Stop()
			return err
		}
		spinner.StopWithSuccess("Rendered SVG")
		data = svg
	default:
		return errors.New(errors.ErrCodeUnsupported, "unsupported render format %q (want .svg or .dot)", ext)
	}

	if err := os.WriteFile(opts.render, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.render, err)
	}
	printFile(opts.render)
	return nil
}
