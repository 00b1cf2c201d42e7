package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/knotsim/internal/automation"
	"github.com/san-kum/knotsim/internal/chain"
	"github.com/san-kum/knotsim/internal/config"
	"github.com/san-kum/knotsim/internal/diagnose"
	"github.com/san-kum/knotsim/internal/export"
	"github.com/san-kum/knotsim/internal/metrics"
	"github.com/san-kum/knotsim/internal/optim"
	"github.com/san-kum/knotsim/internal/sim"
	"github.com/san-kum/knotsim/internal/storage"
	"github.com/san-kum/knotsim/internal/tui"
	"github.com/san-kum/knotsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	frames     int
	mode       string
	ratio      float64
	radius     float64
	closed     bool
	fixed      bool
	count      int
	seed       int64
	perturb    float64
	element    int
	// run
	record bool
	watch  bool
	fps    int
	// export
	outFile   string
	svgSize   int
	plotFile  string
	numTrials int
	// sweep
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "knotsim",
		Short:        "knot chain relaxation lab",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, nil)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".knotsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	addSessionFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "settle a chain for a number of frames and save the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSessionFlags(runCmd)
	runCmd.Flags().BoolVar(&record, "record", true, "store every frame's positions")
	runCmd.Flags().BoolVar(&watch, "watch", false, "draw the chain while running")
	runCmd.Flags().IntVar(&fps, "fps", 30, "watch frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot per-frame violation",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render a run's final chain to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")
	svgCmd.Flags().IntVar(&svgSize, "size", 600, "image width and height")
	svgCmd.Flags().StringVar(&plotFile, "violation", "", "also write the violation history to this SVG")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list the knot presets",
		RunE:  listPresets,
	}

	distancesCmd := &cobra.Command{
		Use:   "distances [preset] [i j ...]",
		Short: "pairwise distances after loading a preset",
		Args:  cobra.MinimumNArgs(1),
		RunE:  printDistances,
	}
	addSessionFlags(distancesCmd)

	scriptCmd := &cobra.Command{
		Use:   "script [file.yaml]",
		Short: "run a scripted sequence of session operations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
	addSessionFlags(scriptCmd)

	tuneCmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "grid search over per-frame iteration budgets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneIterations,
	}
	addSessionFlags(tuneCmd)

	trialsCmd := &cobra.Command{
		Use:   "trials [preset]",
		Short: "settle many randomly dragged copies in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTrials,
	}
	addSessionFlags(trialsCmd)
	trialsCmd.Flags().IntVar(&numTrials, "trials", 16, "number of trials")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "settle a preset across a range of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSessionFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "ratio", "ratio, stick_radius or count")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", chain.MinRatio, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", chain.MaxRatio, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "interactive terminal viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSessionFlags(liveCmd)

	pickCmd := &cobra.Command{
		Use:   "pick",
		Short: "choose a preset and options, then open the viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			return viz.RunInteractive(cfg)
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, exportCSVCmd, exportJSONCmd, svgCmd,
		presetsCmd, distancesCmd, scriptCmd, tuneCmd, trialsCmd, sweepCmd, liveCmd, pickCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSessionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&frames, "frames", config.DefaultFrames, "frames to run")
	f.StringVar(&mode, "mode", "spheres", "spheres or sticks")
	f.Float64Var(&ratio, "ratio", chain.DefaultRatio, "non-neighbor separation ratio (spheres)")
	f.Float64Var(&radius, "radius", chain.DefaultStickRadius, "stick radius (sticks)")
	f.BoolVar(&closed, "closed", false, "join the last element to the first")
	f.BoolVar(&fixed, "fixed", false, "hold segment lengths (sticks)")
	f.IntVar(&count, "count", 11, "element count")
	f.Int64Var(&seed, "seed", config.DefaultPerturbSeed, "random seed")
	f.Float64Var(&perturb, "perturb", 0, "drag magnitude applied before the run")
	f.IntVar(&element, "element", -1, "element to drag (-1 picks one at random)")
}

// loadConfig merges the config file, the preset argument and any flags the
// user set explicitly, in that order.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if len(args) > 0 {
		cfg.Preset = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("mode") {
		cfg.Mode = mode
	}
	if flags.Changed("ratio") {
		cfg.Ratio = ratio
	}
	if flags.Changed("radius") {
		cfg.StickRadius = radius
	}
	if flags.Changed("closed") {
		cfg.Closed = closed
	}
	if flags.Changed("fixed") {
		cfg.FixedLengths = fixed
	}
	if flags.Changed("count") {
		cfg.Count = count
	}
	if flags.Changed("seed") {
		cfg.Perturb.Seed = seed
	}
	if flags.Changed("perturb") {
		cfg.Perturb.Magnitude = perturb
	}
	if flags.Changed("element") {
		cfg.Perturb.Element = element
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildSession creates the configured session. An explicit --count resizes
// a loaded preset afterwards.
func buildSession(cmd *cobra.Command, cfg *config.Config) (*sim.Session, error) {
	s, err := sim.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Preset != "" && cmd.Flags().Changed("count") {
		s.SetCount(cfg.Count)
	}
	return s, nil
}

func applyPerturbation(s *sim.Session, cfg *config.Config) (int, error) {
	if cfg.Perturb.Magnitude == 0 {
		return -1, nil
	}
	rng := rand.New(rand.NewSource(cfg.Perturb.Seed))
	return s.Perturb(rng, cfg.Perturb.Element, cfg.Perturb.Magnitude)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	session, err := buildSession(cmd, cfg)
	if err != nil {
		return err
	}
	dragged, err := applyPerturbation(session, cfg)
	if err != nil {
		return err
	}

	s := sim.New(session)
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}
	if watch {
		w := tui.NewWatcher(os.Stdout, fps, cfg.Frames)
		w.Start()
		defer w.Stop()
		s.AddObserver(w)
	}

	ctx, cancel := signalContext()
	defer cancel()

	name := session.Preset()
	if name == "" {
		name = "custom"
	}
	fmt.Printf("running %s (%s, %d elements)...\n", name, session.Mode(), session.Count())
	if dragged >= 0 {
		fmt.Printf("dragged element %d by %.3f\n", dragged, cfg.Perturb.Magnitude)
	}
	start := time.Now()

	result, err := s.Run(ctx, sim.RunConfig{Frames: cfg.Frames, Record: record})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	info := storage.RunInfo{
		Preset:       session.Preset(),
		Mode:         session.Mode(),
		Ratio:        session.Ratio(),
		StickRadius:  session.StickRadius(),
		Closed:       session.Closed(),
		FixedLengths: session.FixedLengths(),
		Count:        session.Count(),
		Seed:         cfg.Perturb.Seed,
	}
	runID, err := st.Save(info, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", result.Frames)
	fmt.Println("\nmetrics:")
	for _, m := range metrics.Default() {
		fmt.Printf("  %s: %.6f\n", m.Name(), result.Metrics[m.Name()])
	}
	if report := diagnose.Report(result.Findings); report != "" {
		fmt.Print("\n" + report)
	} else {
		fmt.Println("\nno constraint issues")
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tMODE\tCOUNT\tCLOSED\tFRAMES\tFINDINGS\tTIME")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\t%d\t%d\t%s\n",
			run.ID,
			run.Preset,
			run.Mode,
			run.Count,
			run.Closed,
			run.Frames,
			len(run.Findings),
			run.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	records, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return fmt.Errorf("no data to plot")
	}

	data := make([]float64, len(records))
	for i, r := range records {
		data[i] = r.Violation
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s (%s)\n", meta.Preset, meta.Mode)
	fmt.Printf("frames: %d\n\n", len(records))

	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("constraint violation per frame"),
	)
	fmt.Println(graph)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outFile == "" {
		return st.CopyFrames(args[0], os.Stdout)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := st.CopyFrames(args[0], f); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outFile)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	records, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	data := storage.NewExportData(meta, records)
	if outFile == "" {
		return storage.WriteJSON(os.Stdout, data)
	}
	if err := storage.ExportJSON(outFile, data); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outFile)
	return nil
}

func runParams(meta *storage.RunMetadata) chain.Params {
	var m chain.Mode = chain.Spheres{Ratio: meta.Ratio}
	if meta.Mode == "sticks" {
		m = chain.Sticks{Radius: meta.StickRadius}
	}
	return chain.Params{Diameter: chain.Diameter, Closed: meta.Closed, Mode: m}
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	final := meta.FinalPositions()
	params := runParams(meta)
	cam := viz.NewCamera()
	cam.Fit(final)
	highlight := export.FindingElements(diagnose.Check(final, params), len(final))

	path := outFile
	if path == "" {
		path = runID + ".svg"
	}
	svg := export.ChainToSVG(final, params, cam, svgSize, svgSize, export.DefaultStyle, highlight)
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)

	if plotFile != "" {
		records, err := st.LoadFrames(runID)
		if err != nil {
			return err
		}
		values := make([]float64, len(records))
		for i, r := range records {
			values[i] = r.Violation
		}
		if err := os.WriteFile(plotFile, []byte(export.SeriesToSVG(values, svgSize, svgSize/3, "#00ff88")), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", plotFile)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCOUNT\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		p, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", p.Name, p.Count(), p.Description)
	}
	return w.Flush()
}

func printDistances(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args[:1])
	if err != nil {
		return err
	}
	session, err := buildSession(cmd, cfg)
	if err != nil {
		return err
	}

	indices := make([]int, 0, len(args)-1)
	for _, a := range args[1:] {
		i, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("bad element index %q: %w", a, err)
		}
		indices = append(indices, i)
	}
	if len(indices) == 0 {
		for i := 0; i < session.Count(); i++ {
			indices = append(indices, i)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "I\tJ\tDISTANCE")
	for _, d := range session.Distances(indices) {
		fmt.Fprintf(w, "%d\t%d\t%.6f\n", d.I, d.J, d.D)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if report := session.Report(); report != "" {
		fmt.Print("\n" + report)
	}
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	session, err := buildSession(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("  %s\n", scenario.Description)
	}
	results, err := automation.RunScenario(ctx, scenario, session, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("\ncompleted %d steps, final violation %.3e\n", len(results), session.Violation())
	if report := session.Report(); report != "" {
		fmt.Print(report)
	}
	return nil
}

func tuneIterations(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.Perturb.Magnitude == 0 {
		cfg.Perturb.Magnitude = 1.5
	}

	build := func(params map[string]float64) (*sim.Simulator, error) {
		trial := *cfg
		trial.Iterations.Base = int(params["base"])
		trial.Iterations.Overlap = int(params["overlap"])
		session, err := buildSession(cmd, &trial)
		if err != nil {
			return nil, err
		}
		if _, err := applyPerturbation(session, &trial); err != nil {
			return nil, err
		}
		s := sim.New(session)
		for _, m := range metrics.Default() {
			s.AddMetric(m)
		}
		return s, nil
	}

	grid := optim.NewGridSearch([]string{"base", "overlap"}, [][]float64{{1, 2, 3, 4, 6}, {1, 2, 3}})
	objective := optim.MetricObjective("mean_violation", 1e-3)

	ctx, cancel := signalContext()
	defer cancel()

	trials, err := grid.Trials(ctx, build, sim.RunConfig{Frames: cfg.Frames}, objective)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BASE\tOVERLAP\tSCORE")
	for _, t := range trials {
		if t.Err != nil {
			fmt.Fprintf(w, "%.0f\t%.0f\terror: %v\n", t.Params["base"], t.Params["overlap"], t.Err)
			continue
		}
		fmt.Fprintf(w, "%.0f\t%.0f\t%.6e\n", t.Params["base"], t.Params["overlap"], t.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	best, score, err := optim.Best(trials)
	if err != nil {
		return err
	}
	fmt.Printf("\nbest: base=%.0f overlap=%.0f score=%.6e\n", best["base"], best["overlap"], score)
	return nil
}

func runTrials(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	magnitude := cfg.Perturb.Magnitude
	if magnitude == 0 {
		magnitude = 1.5
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %d trials of %s...\n", numTrials, cfg.Preset)
	start := time.Now()
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: magnitude,
		NumTrials:    numTrials,
		Frames:       cfg.Frames,
		Seed:         cfg.Perturb.Seed,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSEED\tELEMENT\tRESIDUAL\tFINDINGS")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.3e\t%d\n", r.TrialID, r.Seed, r.Element, r.Residual, len(r.Findings))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	clean, dirty := automation.MonteCarloStats(results)
	fmt.Printf("\n%d clean, %d with findings (%v)\n", clean, dirty, time.Since(start))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Preset:    cfg.Preset,
		Mode:      cfg.Mode,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
		Frames:    cfg.Frames,
	}, os.Stdout)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VALUE\tAPPLIED\tRESIDUAL\tFINDINGS")
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.3e\t%d\n", r.ParamValue, r.Applied, r.Residual, r.Findings)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	session, err := buildSession(cmd, cfg)
	if err != nil {
		return err
	}
	if _, err := applyPerturbation(session, cfg); err != nil {
		return err
	}
	return viz.Run(session, cfg.Perturb.Seed)
}
