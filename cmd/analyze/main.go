// Command analyze runs overland movement scenarios against a ruleset and
// prints the resulting cost matrix. For each scenario it shows the matrix
// plane by plane, the derived movement rates and build statistics, and how
// far the nearest enterable location lies from the stack's origin.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/realm-movement/game/config"
	"github.com/wricardo/realm-movement/game/engine"
	"github.com/wricardo/realm-movement/game/movement"
	"github.com/wricardo/realm-movement/game/service"
	"github.com/wricardo/realm-movement/game/topology"
)

// Scenario is a cost matrix request with a compact terrain layout. Each
// layout plane is a list of rows and each character is looked up in Legend.
// Characters missing from the legend are unknown terrain.
type Scenario struct {
	Name    string                    `json:"name" yaml:"name"`
	Ruleset string                    `json:"ruleset,omitempty" yaml:"ruleset,omitempty"`
	Origin  *topology.Coords          `json:"origin,omitempty" yaml:"origin,omitempty"`
	Legend  map[string]string         `json:"legend,omitempty" yaml:"legend,omitempty"`
	Layout  [][]string                `json:"layout,omitempty" yaml:"layout,omitempty"`
	Request service.CostMatrixRequest `json:"request" yaml:"request"`
}

// LoadScenario reads a YAML or JSON scenario file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	// JSON is a subset of YAML
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := s.expandLayout(); err != nil {
		return nil, err
	}
	return &s, nil
}

// expandLayout fills Request.Terrain from Layout and the map size from the
// layout when the request leaves them unset
func (s *Scenario) expandLayout() error {
	if len(s.Layout) == 0 || len(s.Request.Terrain) > 0 {
		return nil
	}

	req := &s.Request
	if req.Map.Type == "" {
		req.Map.Type = topology.Square
	}
	if req.Map.Depth == 0 {
		req.Map.Depth = len(s.Layout)
	}
	if req.Map.Height == 0 {
		req.Map.Height = len(s.Layout[0])
	}
	if req.Map.Width == 0 && len(s.Layout[0]) > 0 {
		req.Map.Width = len([]rune(s.Layout[0][0]))
	}

	req.Terrain = make([][][]string, len(s.Layout))
	for p, rows := range s.Layout {
		req.Terrain[p] = make([][]string, len(rows))
		for y, row := range rows {
			cells := []rune(row)
			if len(cells) != req.Map.Width {
				return fmt.Errorf("layout plane %d row %d has %d cells, want %d", p, y, len(cells), req.Map.Width)
			}
			req.Terrain[p][y] = make([]string, len(cells))
			for x, ch := range cells {
				req.Terrain[p][y][x] = s.Legend[string(ch)]
			}
		}
	}
	return nil
}

// analyzer prints scenario results to out
type analyzer struct {
	svc   service.MovementService
	out   io.Writer
	title *color.Color
	info  *color.Color
	bad   *color.Color
}

func newAnalyzer(svc service.MovementService, out io.Writer) *analyzer {
	return &analyzer{
		svc:   svc,
		out:   out,
		title: color.New(color.FgCyan, color.Bold),
		info:  color.New(color.FgYellow),
		bad:   color.New(color.FgRed),
	}
}

// analyzeScenario builds and prints one scenario
func (a *analyzer) analyzeScenario(ctx context.Context, s *Scenario, ruleset string) (*service.CostMatrixResponse, error) {
	if ruleset == "" {
		ruleset = s.Ruleset
	}

	resp, err := a.svc.OverlandCostMatrix(ctx, ruleset, &s.Request)
	if err != nil {
		return nil, err
	}

	a.title.Fprintf(a.out, "\n=== %s (ruleset %s) ===\n", s.Name, resp.Ruleset)

	matrix := engine.CostMatrixFromPlanes(s.Request.Map, resp.Matrix)

	for p := range resp.Matrix {
		if s.Request.Plane != nil && *s.Request.Plane != p {
			continue
		}
		a.info.Fprintf(a.out, "Plane %d: %d enterable\n", p, engine.CountEnterable(matrix, p))
		a.renderPlane(engine.PlaneStrings(matrix, p))
		if cheapest, ok := engine.CheapestCost(matrix, p); ok {
			fmt.Fprintf(a.out, "Cheapest step: %s\n", cheapest)
		} else {
			a.bad.Fprintln(a.out, "Nothing on this plane can be entered")
		}
	}

	if s.Origin != nil {
		if c, dist, ok := engine.NearestEnterable(matrix, *s.Origin); ok {
			fmt.Fprintf(a.out, "Nearest enterable from %s: %s at distance %.2f, cost %s\n",
				*s.Origin, c, dist, matrix.At(c))
		} else {
			a.bad.Fprintf(a.out, "Nothing enterable on plane %d\n", s.Origin.Plane)
		}
	}

	a.renderRates(resp.Rates)
	a.renderStats(resp.Stats)
	return resp, nil
}

func (a *analyzer) renderPlane(rows [][]string) {
	if len(rows) == 0 {
		return
	}
	header := []string{"y\\x"}
	for x := range rows[0] {
		header = append(header, strconv.Itoa(x))
	}

	table := tablewriter.NewTable(a.out, tablewriter.WithHeader(header))
	for y, row := range rows {
		_ = table.Append(append([]string{strconv.Itoa(y)}, row...))
	}
	_ = table.Render()
}

func (a *analyzer) renderRates(rates map[string]movement.DoubleMovement) {
	if len(rates) == 0 {
		return
	}
	ids := make([]string, 0, len(rates))
	for id := range rates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	table := tablewriter.NewTable(a.out, tablewriter.WithHeader([]string{"Tile type", "Cost", "Double movement"}))
	for _, id := range ids {
		_ = table.Append([]string{id, rates[id].String(), strconv.Itoa(int(rates[id]))})
	}
	_ = table.Render()
}

func (a *analyzer) renderStats(stats engine.BuildStats) {
	table := tablewriter.NewTable(a.out, tablewriter.WithHeader([]string{"Cells", "Enterable", "Unknown", "Derived", "Seeded", "Embark", "Stacking", "Wards"}))
	_ = table.Append([]string{
		strconv.Itoa(stats.CellsEvaluated),
		strconv.Itoa(stats.Enterable),
		strconv.Itoa(stats.UnknownTerrain),
		strconv.Itoa(stats.RatesDerived),
		strconv.Itoa(stats.RatesSeeded),
		strconv.Itoa(stats.Embarkations),
		strconv.Itoa(stats.StackingRejections),
		strconv.Itoa(stats.WardRejections),
	})
	_ = table.Render()
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return cli.Exit("at least one scenario file is required", 2)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	rulesets, err := config.NewManager(cmd.String("dir"), log)
	if err != nil {
		return err
	}
	a := newAnalyzer(service.NewMovementService(rulesets, log), os.Stdout)

	failed := 0
	for _, path := range cmd.Args().Slice() {
		s, err := LoadScenario(path)
		if err == nil {
			_, err = a.analyzeScenario(ctx, s, cmd.String("ruleset"))
		}
		if err != nil {
			color.Red("%s: %v", path, err)
			failed++
		}
	}

	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d scenario(s) failed", failed), 1)
	}
	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "print overland cost matrices for movement scenarios",
		ArgsUsage: "scenario files...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   "rulesets",
				Usage:   "ruleset directory",
				Sources: cli.EnvVars("RULESET_DIR"),
			},
			&cli.StringFlag{
				Name:    "ruleset",
				Aliases: []string{"r"},
				Usage:   "ruleset to use instead of the one named by each scenario",
			},
		},
		Action: run,
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
