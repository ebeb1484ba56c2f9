// Command salttol reproduces the statistical tables and figures of the
// multi-level tomato salt-tolerance screening from the master measurement
// CSV.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"salttol/internal/dataset"
	"salttol/internal/figure"
	"salttol/internal/network"
	"salttol/internal/params"
	"salttol/internal/report"
	"salttol/internal/unify"
)

var (
	dataPath   string
	outDir     string
	configPath string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "salttol",
	Short: "Salt-tolerance screening analysis of tomato wild relatives",
	Long: `salttol turns the master measurement table of the salinity trial
(6 varieties x 3 treatments, ~30 parameters over 7 biological levels) into
the unified analysis tables and the manuscript figures.

Run "salttol all" to produce everything, or individual subcommands for one
table or figure at a time.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// loadInputs reads the configuration and the master table. Any failure here
// is fatal before a single artifact is written.
func loadInputs() (params.Config, *dataset.Table, error) {
	cfg := params.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = params.LoadConfig(configPath)
		if err != nil {
			return params.Config{}, nil, err
		}
	}
	t, err := dataset.Load(dataPath)
	if err != nil {
		return params.Config{}, nil, err
	}
	return cfg, t, nil
}

func figureSet(cfg params.Config) (*figure.Set, error) {
	return figure.NewSet(outDir, cfg, logger.Sugar())
}

// runUnify builds the three unified analysis tables.
func runUnify(cfg params.Config, t *dataset.Table) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	log := logger.Sugar()

	activities := unify.Activities(t, cfg)
	path := filepath.Join(outDir, "pathway_activities.csv")
	if err := unify.WriteActivities(path, activities); err != nil {
		return err
	}
	log.Infow("wrote table", "path", path, "rows", len(activities))

	rankings := unify.Rankings(t, cfg)
	path = filepath.Join(outDir, "parameter_ranking.csv")
	if err := unify.WriteRankings(path, rankings); err != nil {
		return err
	}
	log.Infow("wrote table", "path", path, "rows", len(rankings))

	ids, edges, err := unify.NetworkTables(t, cfg)
	if err != nil {
		return err
	}
	nodesPath := filepath.Join(outDir, "nodes.csv")
	edgesPath := filepath.Join(outDir, "edges.csv")
	if err := unify.WriteNetwork(nodesPath, edgesPath, ids, edges, cfg); err != nil {
		return err
	}
	log.Infow("wrote network tables", "nodes", len(ids), "edges", len(edges))
	return nil
}

var unifyCmd = &cobra.Command{
	Use:   "unify",
	Short: "Build the unified analysis tables (activities, ranking, network)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, t, err := loadInputs()
		if err != nil {
			return err
		}
		return runUnify(cfg, t)
	},
}

// parseNetworkArgs reads the optional positional arguments of the network
// command: positive threshold, negative threshold, show-intra, show-cross.
func parseNetworkArgs(args []string) (network.FilterOptions, error) {
	opts := network.DefaultFilter()
	var err error
	if len(args) > 0 {
		if opts.PositiveThreshold, err = strconv.ParseFloat(args[0], 64); err != nil {
			return opts, fmt.Errorf("positive threshold %q: %w", args[0], err)
		}
	}
	if len(args) > 1 {
		if opts.NegativeThreshold, err = strconv.ParseFloat(args[1], 64); err != nil {
			return opts, fmt.Errorf("negative threshold %q: %w", args[1], err)
		}
	}
	if len(args) > 2 {
		if opts.ShowIntra, err = strconv.ParseBool(args[2]); err != nil {
			return opts, fmt.Errorf("show-intra %q: %w", args[2], err)
		}
	}
	if len(args) > 3 {
		if opts.ShowCross, err = strconv.ParseBool(args[3]); err != nil {
			return opts, fmt.Errorf("show-cross %q: %w", args[3], err)
		}
	}
	return opts, nil
}

// loadNetwork reads nodes.csv and edges.csv from the output directory,
// producing them from the dataset first when they are missing.
func loadNetwork(cfg params.Config, t *dataset.Table) (*network.Graph, error) {
	nodesPath := filepath.Join(outDir, "nodes.csv")
	edgesPath := filepath.Join(outDir, "edges.csv")
	_, nodesErr := os.Stat(nodesPath)
	_, edgesErr := os.Stat(edgesPath)
	if nodesErr != nil || edgesErr != nil {
		if err := runUnify(cfg, t); err != nil {
			return nil, err
		}
	}
	nodes, err := network.LoadNodes(nodesPath)
	if err != nil {
		return nil, err
	}
	edges, err := network.LoadEdges(edgesPath)
	if err != nil {
		return nil, err
	}
	return network.NewGraph(nodes, edges), nil
}

var networkCmd = &cobra.Command{
	Use:   "network [pos-threshold] [neg-threshold] [show-intra] [show-cross]",
	Short: "Render the Figure 3 correlation network",
	Args:  cobra.MaximumNArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := parseNetworkArgs(args)
		if err != nil {
			return err
		}
		cfg, t, err := loadInputs()
		if err != nil {
			return err
		}
		g, err := loadNetwork(cfg, t)
		if err != nil {
			return err
		}
		set, err := figureSet(cfg)
		if err != nil {
			return err
		}
		return set.Network(g, opts)
	},
}

// figureCmd wires one dataset-driven figure into a subcommand.
func figureCmd(use, short string, render func(*figure.Set, *dataset.Table) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, t, err := loadInputs()
			if err != nil {
				return err
			}
			set, err := figureSet(cfg)
			if err != nil {
				return err
			}
			return render(set, t)
		},
	}
}

var pathwayCmd = &cobra.Command{
	Use:   "pathway",
	Short: "Render the Figure 1 pathway activity heatmap",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, t, err := loadInputs()
		if err != nil {
			return err
		}
		set, err := figureSet(cfg)
		if err != nil {
			return err
		}
		return set.Pathway(unify.Activities(t, cfg))
	},
}

var responsivenessCmd = &cobra.Command{
	Use:   "responsiveness",
	Short: "Render the Figure 7 combined responsiveness heatmap",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, t, err := loadInputs()
		if err != nil {
			return err
		}
		set, err := figureSet(cfg)
		if err != nil {
			return err
		}
		return set.Responsiveness(unify.Rankings(t, cfg))
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Bundle the rendered figures into figures.pdf",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := report.Write(outDir, filepath.Join(outDir, "figures.pdf"), logger.Sugar())
		return err
	},
}

var sampleSeed int64

var genSampleCmd = &cobra.Command{
	Use:   "gen-sample",
	Short: "Write a synthetic master CSV with the real column layout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := params.DefaultConfig()
		if configPath != "" {
			var err error
			cfg, err = params.LoadConfig(configPath)
			if err != nil {
				return err
			}
		}
		if dir := filepath.Dir(dataPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating data dir: %w", err)
			}
		}
		if err := dataset.GenerateSample(dataPath, sampleSeed, cfg); err != nil {
			return err
		}
		logger.Sugar().Infow("wrote sample dataset", "path", dataPath, "seed", sampleSeed)
		return nil
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Build every table, figure and the report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, t, err := loadInputs()
		if err != nil {
			return err
		}
		if err := runUnify(cfg, t); err != nil {
			return err
		}
		set, err := figureSet(cfg)
		if err != nil {
			return err
		}
		g, err := loadNetwork(cfg, t)
		if err != nil {
			return err
		}

		steps := []func() error{
			func() error { return set.Pathway(unify.Activities(t, cfg)) },
			func() error { return set.Adaptive(t) },
			func() error { return set.Network(g, network.DefaultFilter()) },
			func() error { return set.Phenology(t) },
			func() error { return set.Temporal(t) },
			func() error { return set.Ranking(t) },
			func() error { return set.Responsiveness(unify.Rankings(t, cfg)) },
			func() error { return set.Regression(t) },
			func() error { return set.Supplementary(t) },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		_, err = report.Write(outDir, filepath.Join(outDir, "figures.pdf"), logger.Sugar())
		return err
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "data/master.csv", "master measurement CSV")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", "out", "artifact output directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "parameter mapping YAML override")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	genSampleCmd.Flags().Int64Var(&sampleSeed, "seed", 1, "random seed of the synthetic dataset")

	rootCmd.AddCommand(
		unifyCmd,
		networkCmd,
		pathwayCmd,
		figureCmd("adaptive", "Render the Figure 2 adaptive differences strip", (*figure.Set).Adaptive),
		figureCmd("phenology", "Render the Figure 4 phenological timing panels", (*figure.Set).Phenology),
		figureCmd("temporal", "Render the Figure 5 temporal dynamics panels", (*figure.Set).Temporal),
		figureCmd("ranking", "Render the Figure 6 variety ranking", (*figure.Set).Ranking),
		responsivenessCmd,
		figureCmd("regression", "Render the Figure 8 salinity regressions", (*figure.Set).Regression),
		figureCmd("supplementary", "Render the Figure S1 ionic/osmotic heatmap", (*figure.Set).Supplementary),
		reportCmd,
		genSampleCmd,
		allCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
