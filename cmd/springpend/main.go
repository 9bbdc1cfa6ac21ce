package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/njchilds90/gosymbol"
	"github.com/spf13/cobra"

	"github.com/kmurari/springpend/internal/analysis"
	"github.com/kmurari/springpend/internal/cache"
	"github.com/kmurari/springpend/internal/compile"
	"github.com/kmurari/springpend/internal/config"
	"github.com/kmurari/springpend/internal/dynamo"
	"github.com/kmurari/springpend/internal/export"
	"github.com/kmurari/springpend/internal/integrators"
	"github.com/kmurari/springpend/internal/model"
	"github.com/kmurari/springpend/internal/sim"
	"github.com/kmurari/springpend/internal/tui"
	"github.com/kmurari/springpend/internal/viz"
)

var (
	cacheDir  string
	recompute bool
	dt        float64
	duration  float64
	theta1    float64
	omega1    float64
	theta2    float64
	omega2    float64
	ext1      float64
	ext2      float64
	mass1     float64
	mass2     float64
	len1      float64
	len2      float64
	stiff1    float64
	stiff2    float64
	integName string
	adaptive  bool
	tolerance float64
	// Chaos analysis
	epsilon    float64
	saturation float64
	perturbVar string
	// Sweep range
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	// Phase plot axes
	phaseXVar  string
	phaseYVar  string
	poincare   bool
	crossVar   string
	crossLevel float64
	// Output
	pngPath   string
	svgPath   string
	framePath string
	csvPath   string
	outPath   string
	varName   string
	solveEqs  bool
	latexOut  bool
	// Config file and preset
	configFile string
	presetName string
	// Frame rate for live view
	frameRate int
)

// main registers commands and flags and executes the root command; with no
// subcommand it launches the interactive TUI. Exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "springpend",
		Short: "spring double pendulum lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache", config.DefaultCacheDir, "cache directory")
	rootCmd.PersistentFlags().BoolVar(&recompute, "recompute", false, "ignore cached results and recompute")

	deriveCmd := &cobra.Command{
		Use:   "derive",
		Short: "derive the equations of motion symbolically",
		RunE:  deriveEquations,
	}
	deriveCmd.Flags().BoolVar(&solveEqs, "solve", false, "print explicit acceleration expressions")
	deriveCmd.Flags().BoolVar(&latexOut, "latex", false, "print LaTeX instead of plain text")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "validate the derivation against known limit cases",
		RunE:  checkLimits,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "integrate a trajectory",
		RunE:  runSimulation,
	}
	addStateFlags(runCmd)
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&presetName, "preset", "", "use preset configuration")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "estimate the largest Lyapunov exponent",
		RunE:  estimateLyapunov,
	}
	addStateFlags(lyapunovCmd)
	lyapunovCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	lyapunovCmd.Flags().StringVar(&presetName, "preset", "", "use preset configuration")
	lyapunovCmd.Flags().Float64Var(&epsilon, "epsilon", config.DefaultEpsilon, "initial perturbation")
	lyapunovCmd.Flags().Float64Var(&saturation, "saturation", config.DefaultSaturation, "separation cutoff for the fit window")
	lyapunovCmd.Flags().StringVar(&perturbVar, "perturb", "th1", "state variable to perturb")
	lyapunovCmd.Flags().StringVar(&pngPath, "png", "", "write divergence figure to file")
	lyapunovCmd.Flags().StringVar(&csvPath, "csv", "", "write the separation series as CSV")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep spring stiffness against the Lyapunov exponent",
		RunE:  sweepStiffness,
	}
	addStateFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 5.0, "lowest stiffness")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 200.0, "highest stiffness")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 20, "number of sweep points")
	sweepCmd.Flags().Float64Var(&epsilon, "epsilon", config.DefaultEpsilon, "initial perturbation")
	sweepCmd.Flags().Float64Var(&saturation, "saturation", config.DefaultSaturation, "separation cutoff for the fit window")
	sweepCmd.Flags().StringVar(&pngPath, "png", "", "write sweep figure to file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list cached runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a cached run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&pngPath, "png", "", "write figure to file instead of the terminal")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "write the second bob's path as SVG")
	plotCmd.Flags().StringVar(&framePath, "frame", "", "write the final frame as a dot-grid SVG")
	plotCmd.Flags().StringVar(&varName, "var", "th1", "state variable for --png output")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot of a cached run",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&phaseXVar, "x", "th1", "state variable for the x axis")
	phaseCmd.Flags().StringVar(&phaseYVar, "y", "th1d", "state variable for the y axis")
	phaseCmd.Flags().BoolVar(&poincare, "poincare", false, "section at plane crossings instead of the full portrait")
	phaseCmd.Flags().StringVar(&crossVar, "cross", "th2", "crossing variable for --poincare")
	phaseCmd.Flags().Float64Var(&crossLevel, "at", 0.0, "crossing threshold for --poincare")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a cached run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outPath, "out", "", "write to file instead of stdout")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a cached run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&varName, "var", "th1", "state variable to analyze")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the compiled system",
		RunE:  benchSystem,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "integrate with live terminal rendering",
		RunE:  runLive,
	}
	addStateFlags(liveCmd)
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&presetName, "preset", "", "use preset configuration")
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive terminal mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunInteractive()
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTHETA1\tTHETA2\tK1\tK2\tDT\tDURATION")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.0f\t%.0f\t%.4f\t%.0fs\n",
					name, p.InitState.Theta1, p.InitState.Theta2,
					p.Params.K1, p.Params.K2, p.Dt, p.Duration)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(deriveCmd, checkCmd, runCmd, lyapunovCmd, sweepCmd,
		listCmd, plotCmd, phaseCmd, exportCmd, analyzeCmd, benchCmd, liveCmd, tuiCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addStateFlags registers the flags shared by every command that
// integrates: timestep, initial conditions, parameters, integrator.
func addStateFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&theta1, "theta1", 2.0, "initial angle of link 1")
	cmd.Flags().Float64Var(&omega1, "omega1", 0.0, "initial angular velocity of link 1")
	cmd.Flags().Float64Var(&theta2, "theta2", 2.0, "initial angle of link 2")
	cmd.Flags().Float64Var(&omega2, "omega2", 0.0, "initial angular velocity of link 2")
	cmd.Flags().Float64Var(&ext1, "ext1", 0.0, "initial extension of spring 1 (static rest if unset)")
	cmd.Flags().Float64Var(&ext2, "ext2", 0.0, "initial extension of spring 2 (static rest if unset)")
	cmd.Flags().Float64Var(&mass1, "m1", model.DefaultMass, "mass of bob 1")
	cmd.Flags().Float64Var(&mass2, "m2", model.DefaultMass, "mass of bob 2")
	cmd.Flags().Float64Var(&len1, "l1", model.DefaultLength, "natural length of spring 1")
	cmd.Flags().Float64Var(&len2, "l2", model.DefaultLength, "natural length of spring 2")
	cmd.Flags().Float64Var(&stiff1, "k1", model.DefaultStiffness, "stiffness of spring 1")
	cmd.Flags().Float64Var(&stiff2, "k2", model.DefaultStiffness, "stiffness of spring 2")
	cmd.Flags().StringVar(&integName, "integrator", "rk4", "integrator (euler, rk4, rk45)")
	cmd.Flags().BoolVar(&adaptive, "adaptive", false, "adaptive stepping (rk45)")
	cmd.Flags().Float64Var(&tolerance, "tol", config.DefaultTolerance, "adaptive error tolerance")
}

// buildConfig resolves the effective configuration. Precedence from
// lowest to highest: defaults, preset, config file, explicit flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if presetName != "" {
		p := config.GetPreset(presetName)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flagSets := map[string]func(){
		"dt":         func() { cfg.Dt = dt },
		"time":       func() { cfg.Duration = duration },
		"integrator": func() { cfg.Integrator = integName },
		"adaptive":   func() { cfg.Adaptive = adaptive },
		"tol":        func() { cfg.Tolerance = tolerance },
		"theta1":     func() { cfg.InitState.Theta1 = theta1 },
		"omega1":     func() { cfg.InitState.Omega1 = omega1 },
		"theta2":     func() { cfg.InitState.Theta2 = theta2 },
		"omega2":     func() { cfg.InitState.Omega2 = omega2 },
		"ext1":       func() { cfg.InitState.Ext1 = ext1; cfg.InitState.AtStaticRest = false },
		"ext2":       func() { cfg.InitState.Ext2 = ext2; cfg.InitState.AtStaticRest = false },
		"m1":         func() { cfg.Params.M1 = mass1 },
		"m2":         func() { cfg.Params.M2 = mass2 },
		"l1":         func() { cfg.Params.L1 = len1 },
		"l2":         func() { cfg.Params.L2 = len2 },
		"k1":         func() { cfg.Params.K1 = stiff1 },
		"k2":         func() { cfg.Params.K2 = stiff2 },
	}
	for name, apply := range flagSets {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}

	return cfg, cfg.Validate()
}

func newIntegrator(name string) (dynamo.Integrator, error) {
	switch name {
	case "euler":
		return integrators.NewEuler(), nil
	case "rk4":
		return integrators.NewRK4(), nil
	case "rk45":
		return integrators.NewRK45(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}

func newStore() (*cache.Store, error) {
	st := cache.New(cacheDir)
	st.Recompute = recompute
	return st, st.Init()
}

// stateIndex maps a flat state variable name to its vector index.
func stateIndex(m *model.Model, name string) (int, error) {
	for i, n := range m.StateNames() {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown state variable: %s (available: %v)", name, m.StateNames())
}

func deriveEquations(cmd *cobra.Command, args []string) error {
	st, err := newStore()
	if err != nil {
		return err
	}

	m, err := model.BuildSpring()
	if err != nil {
		return err
	}

	key := cache.EquationKey{Model: m.Name, Coords: coordNames(m)}
	eqs, hit := st.LoadEquations(key)
	if !hit {
		eqs = m.Eqs
		if err := st.SaveEquations(key, eqs); err != nil {
			return err
		}
	}

	source := "derived"
	if hit {
		source = "cached"
	}
	fmt.Printf("equations of motion (%s, id %s)\n\n", source, key.Fingerprint())

	render := func(e gosymbol.Expr) string {
		if latexOut {
			return e.LaTeX()
		}
		return gosymbol.String(e)
	}

	n := len(eqs.Coords)
	fmt.Println("mass matrix M:")
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			fmt.Printf("  M[%d][%d] = %s\n", i, j, render(eqs.M.Get(i, j)))
		}
	}
	fmt.Println("\nforce vector F:")
	for i, f := range eqs.F {
		fmt.Printf("  F[%d] = %s\n", i, render(f))
	}

	if solveEqs {
		accels, err := eqs.Solve()
		if err != nil {
			return err
		}
		fmt.Println("\nexplicit accelerations:")
		for i, a := range accels {
			fmt.Printf("  %s = %s\n", eqs.Coords[i].Acc(), render(a))
		}
	}

	return nil
}

func coordNames(m *model.Model) []string {
	names := make([]string, len(m.Coords))
	for i, c := range m.Coords {
		names[i] = c.Name
	}
	return names
}

func checkLimits(cmd *cobra.Command, args []string) error {
	report, err := model.CheckReductions()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHECK\tRESULT\tDETAIL")
	for _, c := range report.Checks {
		result := "pass"
		if !c.Passed {
			result = "FAIL"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, result, c.Detail)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !report.AllPassed() {
		return fmt.Errorf("limit checks failed")
	}
	fmt.Println("\nall limit checks passed")
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st, err := newStore()
	if err != nil {
		return err
	}

	m, err := model.BuildSpring()
	if err != nil {
		return err
	}

	x0 := cfg.GetInitState()
	key := cache.RunKey{
		Model:      m.Name,
		Params:     cfg.Params,
		X0:         x0,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Integrator: cfg.Integrator,
	}

	if result, meta, ok := st.LoadRun(key); ok {
		fmt.Printf("cached run: %s\n", meta.ID)
		fmt.Printf("steps: %d\n", len(result.States))
		fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
		return nil
	}

	system, err := compile.NewSystem(m, cfg.Params)
	if err != nil {
		return err
	}
	integ, err := newIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}

	fmt.Println("running spring double pendulum...")
	start := time.Now()

	result, err := sim.New(system, integ).Run(context.Background(), x0, cfg.SimConfig())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.SaveRun(key, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", len(result.States))
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)

	return nil
}

func estimateLyapunov(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("epsilon") {
		cfg.Chaos.Epsilon = epsilon
	}
	if cmd.Flags().Changed("saturation") {
		cfg.Chaos.Saturation = saturation
	}

	m, err := model.BuildSpring()
	if err != nil {
		return err
	}
	perturbIdx, err := stateIndex(m, perturbVar)
	if err != nil {
		return err
	}

	system, err := compile.NewSystem(m, cfg.Params)
	if err != nil {
		return err
	}
	integ, err := newIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}

	fmt.Printf("twin trajectories, epsilon %.1e on %s...\n", cfg.Chaos.Epsilon, perturbVar)
	div := analysis.Diverge(system, integ, cfg.GetInitState(), perturbIdx, cfg.Chaos.Epsilon, cfg.Dt, cfg.Duration)
	if div == nil {
		return fmt.Errorf("divergence run produced no samples")
	}

	fit := analysis.FitExponent(div, cfg.Chaos.Saturation)
	if fit.Samples == 0 {
		return fmt.Errorf("no samples in the fit window")
	}

	logSep := make([]float64, 0, len(div.Separation))
	for _, s := range div.Separation {
		if s > 0 {
			logSep = append(logSep, math.Log(s))
		}
	}
	graph := asciigraph.Plot(logSep,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("ln separation vs time"),
	)
	fmt.Println(graph)
	fmt.Println()

	fmt.Printf("lambda:      %.4f /s\n", fit.Lambda)
	fmt.Printf("r-squared:   %.4f\n", fit.R2)
	fmt.Printf("fit window:  [0, %.2fs] (%d samples)\n", fit.WindowEnd, fit.Samples)
	if fit.Lambda > 0 && fit.R2 > 0.9 {
		fmt.Printf("doubling time: %.3fs\n", math.Ln2/fit.Lambda)
	}

	if csvPath != "" {
		if err := div.WriteCSVFile(csvPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", csvPath)
	}

	if pngPath != "" {
		if err := viz.SaveDivergencePNG(pngPath, div, fit); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", pngPath)
	}

	return nil
}

func sweepStiffness(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	m, err := model.BuildSpring()
	if err != nil {
		return err
	}

	newSystem := func(k float64) (dynamo.System, error) {
		p := cfg.Params
		p.K1 = k
		p.K2 = k
		return compile.NewSystem(m, p)
	}
	newInteg := func() dynamo.Integrator {
		integ, _ := newIntegrator(cfg.Integrator)
		return integ
	}

	swCfg := analysis.SweepConfig{
		Min:        sweepMin,
		Max:        sweepMax,
		Steps:      sweepSteps,
		Epsilon:    epsilon,
		Saturation: saturation,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		PerturbIdx: cfg.Chaos.PerturbIdx,
	}

	fmt.Printf("sweeping stiffness %g..%g over %d points...\n", sweepMin, sweepMax, sweepSteps)
	start := time.Now()
	points, err := analysis.StiffnessSweep(newSystem, newInteg, cfg.GetInitState(), swCfg)
	if err != nil {
		return err
	}
	fmt.Printf("done in %v\n\n", time.Since(start))

	lambdas := make([]float64, len(points))
	for i, p := range points {
		lambdas[i] = p.Lambda
	}
	graph := asciigraph.Plot(lambdas,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("lambda vs stiffness"),
	)
	fmt.Println(graph)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "K\tLAMBDA\tR2")
	for _, p := range points {
		fmt.Fprintf(w, "%.1f\t%.4f\t%.3f\n", p.Param, p.Lambda, p.R2)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if pngPath != "" {
		if err := viz.SaveSweepPNG(pngPath, "stiffness k", points); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", pngPath)
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := newStore()
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tINTEG\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%.2e\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.EnergyDrift,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := newStore()
	if err != nil {
		return err
	}
	result, meta, err := st.LoadRunByID(args[0])
	if err != nil {
		return err
	}
	if len(result.States) == 0 {
		return fmt.Errorf("no data to plot")
	}

	m, err := model.BuildSpring()
	if err != nil {
		return err
	}
	names := m.StateNames()

	if pngPath != "" {
		idx, err := stateIndex(m, varName)
		if err != nil {
			return err
		}
		title := fmt.Sprintf("%s, run %s", names[idx], meta.ID)
		if err := viz.SaveSeriesPNG(pngPath, title, names[idx], result.Times, result.States, idx); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", pngPath)
		return nil
	}

	if svgPath != "" || framePath != "" {
		system, err := compile.NewSystem(m, meta.Params)
		if err != nil {
			return err
		}
		trail := make([]viz.TrailPoint, len(result.States))
		for i, x := range result.States {
			_, _, x2, y2 := system.Positions(x)
			trail[i] = viz.TrailPoint{X: x2, Y: y2}
		}

		if svgPath != "" {
			if err := export.WriteTrailSVG(svgPath, trail, 800, 600); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", svgPath)
		}

		if framePath != "" {
			canvas := viz.NewCanvas(100, 40)
			reach := meta.Params.L1 + meta.Params.L2 + 1.0
			proj := viz.NewProjection(canvas, reach)
			last := result.States[len(result.States)-1]
			x1, y1, x2, y2 := system.Positions(last)
			viz.DrawPendulum(canvas, proj, x1, y1, x2, y2, trail)
			if err := export.WriteCanvasSVG(framePath, canvas, 4.0); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", framePath)
		}

		return nil
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(result.States))

	captions := map[string]string{
		"th1":  "theta1 (angle of link 1)",
		"a1":   "a1 (extension of spring 1)",
		"th2":  "theta2 (angle of link 2)",
		"a2":   "a2 (extension of spring 2)",
		"th1d": "omega1 (angular velocity of link 1)",
		"a1d":  "a1 rate",
		"th2d": "omega2 (angular velocity of link 2)",
		"a2d":  "a2 rate",
	}

	for idx, name := range names {
		data := make([]float64, len(result.States))
		for i := range result.States {
			data[i] = result.States[i][idx]
		}

		caption := captions[name]
		if caption == "" {
			caption = name
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st, err := newStore()
	if err != nil {
		return err
	}
	result, meta, err := st.LoadRunByID(args[0])
	if err != nil {
		return err
	}

	if outPath != "" {
		if err := cache.ExportJSONFile(outPath, meta.Model, meta.Integrator, meta.Dt, meta.Duration, result); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outPath)
		return nil
	}
	return cache.ExportJSON(os.Stdout, meta.Model, meta.Integrator, meta.Dt, meta.Duration, result)
}

func phasePlot(cmd *cobra.Command, args []string) error {
	st, err := newStore()
	if err != nil {
		return err
	}
	result, meta, err := st.LoadRunByID(args[0])
	if err != nil {
		return err
	}
	if len(result.States) == 0 {
		return fmt.Errorf("no data to plot")
	}

	m, err := model.BuildSpring()
	if err != nil {
		return err
	}
	xIdx, err := stateIndex(m, phaseXVar)
	if err != nil {
		return err
	}
	yIdx, err := stateIndex(m, phaseYVar)
	if err != nil {
		return err
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)

	if poincare {
		crossIdx, err := stateIndex(m, crossVar)
		if err != nil {
			return err
		}
		section := analysis.SectionFromStates(result.States, crossIdx, crossLevel, xIdx, yIdx)
		fmt.Printf("section: %s crossing %.3f upward, axes %s/%s (%d points)\n\n",
			crossVar, crossLevel, phaseXVar, phaseYVar, len(section.Points))
		fmt.Println(analysis.PoincareSectionToASCII(section, 70, 20))
		return nil
	}

	portrait := analysis.PortraitFromStates(result.States, xIdx, yIdx)
	fmt.Printf("x-axis: %s, y-axis: %s\n\n", phaseXVar, phaseYVar)
	fmt.Println(analysis.PhasePortraitToASCII(portrait, 70, 20))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st, err := newStore()
	if err != nil {
		return err
	}
	result, meta, err := st.LoadRunByID(args[0])
	if err != nil {
		return err
	}
	if len(result.States) == 0 {
		return fmt.Errorf("no data")
	}

	m, err := model.BuildSpring()
	if err != nil {
		return err
	}
	idx, err := stateIndex(m, varName)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s (%s)\n\n", meta.ID, varName)

	data := make([]float64, len(result.States))
	for i := range result.States {
		data[i] = result.States[i][idx]
	}

	ps := analysis.PowerSpectrum(data)
	plotData := ps[:len(ps)/4]

	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s)", varName)),
	)
	fmt.Println(graph)
	fmt.Println()

	maxPower := 0.0
	maxIdx := 0
	for i := 1; i < len(plotData); i++ {
		if plotData[i] > maxPower {
			maxPower = plotData[i]
			maxIdx = i
		}
	}

	freq := float64(maxIdx) / meta.Duration
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	return nil
}

func benchSystem(cmd *cobra.Command, args []string) error {
	m, err := model.BuildSpring()
	if err != nil {
		return err
	}
	p := model.DefaultParams()
	system, err := compile.NewSystem(m, p)
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	x0 := cfg.GetInitState()

	durations := []float64{1.0, 5.0, 10.0}
	dts := []float64{0.0005, 0.001, 0.01}

	fmt.Println("benchmarking spring double pendulum (rk4)")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, step := range dts {
			simCfg := dynamo.Config{Dt: step, Duration: dur, ValidateState: true}

			start := time.Now()
			result, err := sim.New(system, integrators.NewRK4()).Run(context.Background(), x0, simCfg)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			steps := len(result.States)
			fmt.Fprintf(w, "%.1fs\t%.4fs\t%d\t%v\t%.0f\n",
				dur, step, steps, elapsed, float64(steps)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	m, err := model.BuildSpring()
	if err != nil {
		return err
	}
	system, err := compile.NewSystem(m, cfg.Params)
	if err != nil {
		return err
	}
	integ, err := newIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}

	reach := cfg.Params.L1 + cfg.Params.L2 + 1.0
	renderer := tui.NewLiveRenderer(system.Positions, reach, frameRate)
	renderer.Start()
	defer renderer.Stop()

	s := sim.New(system, integ)
	s.AddObserver(renderer)

	_, err = s.Run(context.Background(), cfg.GetInitState(), cfg.SimConfig())
	return err
}
