package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/persistorai/actorweb/internal/catalog"
	"github.com/persistorai/actorweb/internal/config"
	"github.com/persistorai/actorweb/internal/layout"
	"github.com/persistorai/actorweb/internal/models"
	"github.com/persistorai/actorweb/internal/service"
)

// layoutResult is the settled layout of one connection graph.
type layoutResult struct {
	Center string        `json:"center"`
	Ticks  int           `json:"ticks"`
	AtRest bool          `json:"at_rest"`
	Alpha  float64       `json:"alpha"`
	Nodes  []models.Node `json:"nodes"`
	Edges  []models.Edge `json:"edges"`
	Notes  []string      `json:"warnings,omitempty"`
}

type layoutOptions struct {
	catalogFile string
	tuningFile  string
	width       float64
	height      float64
	maxTicks    int
}

func newLayoutCmd() *cobra.Command {
	var opts layoutOptions
	cmd := &cobra.Command{
		Use:   "layout <key>",
		Short: "Run the force layout locally until it settles",
		Long: `Build the connection graph for a title from a local catalog and run the
force simulation headless until it comes to rest. No server is needed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runLayout(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if flagFmt == "table" {
				fmt.Printf("%s: %d ticks, at rest: %v\n", res.Center, res.Ticks, res.AtRest)
				printLayoutTable(res.Nodes)
				return nil
			}
			output(res, strconv.Itoa(res.Ticks))
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.catalogFile, "catalog", "", "Catalog JSON file (default: built-in demo catalog)")
	cmd.Flags().StringVar(&opts.tuningFile, "tuning", "", "Layout tuning YAML file")
	cmd.Flags().Float64Var(&opts.width, "width", 800, "Viewport width")
	cmd.Flags().Float64Var(&opts.height, "height", 600, "Viewport height")
	cmd.Flags().IntVar(&opts.maxTicks, "max-ticks", 2000, "Tick budget")
	return cmd
}

func runLayout(ctx context.Context, key string, opts layoutOptions) (*layoutResult, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)

	var cat catalog.Catalog = catalog.Demo()
	if opts.catalogFile != "" {
		m, err := catalog.LoadFile(opts.catalogFile)
		if err != nil {
			return nil, err
		}
		cat = m
	}

	tuning := config.DefaultTuning()
	if opts.tuningFile != "" {
		t, err := config.LoadTuning(opts.tuningFile)
		if err != nil {
			return nil, err
		}
		tuning = t
	}

	model, err := service.NewGraphService(cat, log).BuildGraph(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}

	sim, warnings := layout.New(model, models.Vec{X: opts.width, Y: opts.height}, tuning.Layout)
	snap, ticks := sim.RunUntilRest(opts.maxTicks)

	return &layoutResult{
		Center: model.CenterID,
		Ticks:  ticks,
		AtRest: snap.AtRest,
		Alpha:  snap.Alpha,
		Nodes:  snap.Apply(model),
		Edges:  model.Edges,
		Notes:  warnings,
	}, nil
}

func printLayoutTable(nodes []models.Node) {
	headers := []string{"ID", "TITLE", "X", "Y", "SHARED"}
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{
			n.ID,
			n.Title,
			fmt.Sprintf("%.1f", n.Position.X),
			fmt.Sprintf("%.1f", n.Position.Y),
			strconv.Itoa(n.Weight),
		})
	}
	formatTable(headers, rows)
}
