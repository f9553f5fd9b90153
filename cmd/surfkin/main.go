package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mvellank/surfkin/internal/archive"
	"github.com/mvellank/surfkin/internal/config"
	"github.com/mvellank/surfkin/internal/explain"
	"github.com/mvellank/surfkin/internal/optim"
	"github.com/mvellank/surfkin/internal/rates"
	"github.com/mvellank/surfkin/internal/steady"
	"github.com/mvellank/surfkin/internal/thermo"
	"github.com/mvellank/surfkin/internal/tof"
	"github.com/mvellank/surfkin/internal/transient"
	"github.com/mvellank/surfkin/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	backend    string
	precision  int
	traceFile  string
	// relax flags
	relaxDt     float64
	relaxSteps  int
	relaxRecord int
	integrator  string
	// sweep flags
	sweepGas   string
	tMin, tMax float64
	tSteps     int
	sweepPGas  string
	pMin, pMax float64
	pSteps     int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "surfkin",
		Short: "steady-state microkinetics for surface reaction networks",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".surfkin", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "network file (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use a built-in network")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "numeric backend (float64, big)")
	rootCmd.PersistentFlags().IntVar(&precision, "precision", 0, "decimal digits for the big backend")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "solve steady-state coverages and save the run",
		RunE:  runSolve,
	}
	runCmd.Flags().StringVar(&traceFile, "trace", "", "archive intermediate results to a JSON-lines file")

	ratesCmd := &cobra.Command{
		Use:   "rates",
		Short: "print barriers, rate constants and equilibrium constants",
		RunE:  showRates,
	}

	tofCmd := &cobra.Command{
		Use:   "tof",
		Short: "turnover frequencies at steady state",
		RunE:  showTOF,
	}

	controlCmd := &cobra.Command{
		Use:   "control",
		Short: "degree of thermodynamic rate control",
		RunE:  showRateControl,
	}

	explainCmd := &cobra.Command{
		Use:   "explain",
		Short: "print rate formulas and the energy profile",
		RunE:  explainNetwork,
	}

	relaxCmd := &cobra.Command{
		Use:   "relax",
		Short: "integrate the coverage ODE from an empty surface",
		RunE:  relaxCoverages,
	}
	relaxCmd.Flags().Float64Var(&relaxDt, "dt", 1e-14, "timestep (s)")
	relaxCmd.Flags().IntVar(&relaxSteps, "steps", 2000, "number of steps")
	relaxCmd.Flags().IntVar(&relaxRecord, "record", 20, "record every n-th step")
	relaxCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (euler, rk4)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid-sweep conditions for the strongest gas turnover",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepGas, "gas", "", "target gas species (required)")
	sweepCmd.Flags().Float64Var(&tMin, "tmin", 400, "lowest temperature (K)")
	sweepCmd.Flags().Float64Var(&tMax, "tmax", 700, "highest temperature (K)")
	sweepCmd.Flags().IntVar(&tSteps, "tn", 7, "temperature grid points")
	sweepCmd.Flags().StringVar(&sweepPGas, "pgas", "", "gas whose pressure to sweep")
	sweepCmd.Flags().Float64Var(&pMin, "pmin", 0.1, "lowest pressure (bar)")
	sweepCmd.Flags().Float64Var(&pMax, "pmax", 10, "highest pressure (bar)")
	sweepCmd.Flags().IntVar(&pSteps, "pn", 5, "pressure grid points")
	_ = sweepCmd.MarkFlagRequired("gas")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "watch the newton iteration live",
		RunE:  watchSolve,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the coverage history of a run to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in networks",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, ratesCmd, tofCmd, controlCmd, explainCmd, relaxCmd, sweepCmd, watchCmd, listCmd, exportCmd, exportCSVCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *logrus.Entry {
	l := logrus.New()
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return logrus.NewEntry(l)
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	default:
		return nil, fmt.Errorf("either --config or --preset is required")
	}
	if backend != "" {
		cfg.Backend = backend
	}
	if precision > 0 {
		cfg.Precision = precision
	}
	return cfg, nil
}

// buildSystem assembles model, backend and rate system from the active
// configuration, applying thermochemical gas corrections when configured.
func buildSystem(cfg *config.Config, sink archive.Sink, log *logrus.Entry) (*rates.System, error) {
	m, err := cfg.Model()
	if err != nil {
		return nil, err
	}
	b, err := cfg.NumericBackend()
	if err != nil {
		return nil, err
	}
	sys, err := rates.NewSystem(m, b, sink, log)
	if err != nil {
		return nil, err
	}
	switch cfg.Thermo {
	case "", "none":
	case "shomate":
		corr, err := thermo.Corrections(m.GasNames, m.Temperature)
		if err != nil {
			return nil, err
		}
		sys.ApplyCorrection(corr)
	case "fixed_entropy":
		corr := make(map[string]float64, len(m.GasNames))
		for _, gas := range m.GasNames {
			corr[gas] = thermo.FixedEntropyCorrection(gas, m.Temperature)
		}
		sys.ApplyCorrection(corr)
	default:
		return nil, fmt.Errorf("unknown thermo mode: %s", cfg.Thermo)
	}
	return sys, nil
}

// historyObserver collects accepted Newton iterates for the run store.
type historyObserver struct {
	rows [][]float64
}

func (h *historyObserver) OnIterate(it steady.Iterate) {
	h.rows = append(h.rows, it.Point.Float64s())
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	var sink archive.Sink = archive.Noop{}
	if traceFile != "" {
		f, err := os.Create(traceFile)
		if err != nil {
			return err
		}
		defer f.Close()
		sink = archive.NewWriter(f)
	}

	sys, err := buildSystem(cfg, sink, log)
	if err != nil {
		return err
	}
	m := sys.Model()

	store := archive.NewStore(dataDir)
	if err := store.Init(); err != nil {
		return err
	}

	solver := steady.NewSolver(sys, cfg.SolverOptions(), log)
	history := &historyObserver{}
	solver.AddObserver(history)

	fmt.Printf("solving %s at %g K (%s backend)...\n", cfg.Network, m.Temperature, sys.Backend().Name())
	start := time.Now()
	cvgs, stats, err := solver.SteadyState(context.Background(), nil)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	rf, rr, err := sys.Rates(cvgs)
	if err != nil {
		return err
	}
	net, err := sys.NetRates(rf, rr)
	if err != nil {
		return err
	}
	revs, err := sys.Reversibilities(rf, rr)
	if err != nil {
		return err
	}
	tofs := tof.ProjectNet(sys, net)

	tofMap := make(map[string]float64, len(m.GasNames))
	for i, gas := range m.GasNames {
		tofMap[gas] = tofs[i].Float64()
	}
	runID, err := store.Save(archive.RunMetadata{
		Network:     cfg.Network,
		Backend:     sys.Backend().Name(),
		Temperature: m.Temperature,
		Iterations:  stats.Iterations,
		Residual:    stats.Residual,
		TOFs:        tofMap,
	}, m.AdsorbateNames, history.rows)
	if err != nil {
		return err
	}

	fmt.Printf("converged in %d iterations (%v), residual %.3e\n", stats.Iterations, elapsed, stats.Residual)
	fmt.Printf("run id: %s\n\n", runID)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ADSORBATE\tCOVERAGE")
	for i, name := range m.AdsorbateNames {
		fmt.Fprintf(w, "%s\t%.6e\n", name, cvgs[i].Float64())
	}
	fmt.Fprintln(w, "\nREACTION\tNET RATE\tREVERSIBILITY")
	for i := range m.Reactions {
		fmt.Fprintf(w, "%s\t%.6e\t%.6f\n", m.Reactions[i].Equation, net[i].Float64(), revs[i])
	}
	fmt.Fprintln(w, "\nGAS\tTOF")
	for i, gas := range m.GasNames {
		fmt.Fprintf(w, "%s\t%.6e\n", gas, tofs[i].Float64())
	}
	return w.Flush()
}

func showRates(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sys, err := buildSystem(cfg, nil, newLogger())
	if err != nil {
		return err
	}
	kf, kr, err := sys.RateConstants()
	if err != nil {
		return err
	}
	gaf, gar, err := sys.Barriers()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REACTION\tGa_f (eV)\tGa_r (eV)\tkf (1/s)\tkr (1/s)\tK")
	for i := range kf {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4e\t%.4e\t%.4e\n",
			sys.Model().Reactions[i].Equation,
			gaf[i].Float64(), gar[i].Float64(),
			kf[i].Float64(), kr[i].Float64(),
			kf[i].Div(kr[i]).Float64())
	}
	return w.Flush()
}

func showTOF(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()
	sys, err := buildSystem(cfg, nil, log)
	if err != nil {
		return err
	}
	engine := tof.NewEngine(sys, cfg.SolverOptions(), log)
	tofs, cvgs, err := engine.TOF(context.Background())
	if err != nil {
		return err
	}

	m := sys.Model()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GAS\tTOF (1/s)")
	for i, gas := range m.GasNames {
		fmt.Fprintf(w, "%s\t%.6e\n", gas, tofs[i].Float64())
	}
	fmt.Fprintln(w, "\nADSORBATE\tCOVERAGE")
	for i, name := range m.AdsorbateNames {
		fmt.Fprintf(w, "%s\t%.6e\n", name, cvgs[i].Float64())
	}
	return w.Flush()
}

func showRateControl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()
	sys, err := buildSystem(cfg, nil, log)
	if err != nil {
		return err
	}
	engine := tof.NewEngine(sys, cfg.SolverOptions(), log)

	fmt.Println("computing degree of rate control (one steady state per intermediate)...")
	x, err := engine.RateControl(context.Background())
	if err != nil {
		return err
	}

	m := sys.Model()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "GAS")
	for _, name := range m.IntermediateNames() {
		fmt.Fprintf(w, "\t%s", name)
	}
	fmt.Fprintln(w)
	for i, gas := range m.GasNames {
		fmt.Fprint(w, gas)
		for j := range x[i] {
			fmt.Fprintf(w, "\t%.4f", x[i][j].Float64())
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func explainNetwork(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sys, err := buildSystem(cfg, nil, newLogger())
	if err != nil {
		return err
	}
	report, err := explain.New(sys).Report()
	if err != nil {
		return err
	}
	fmt.Print(report)

	profile, err := viz.EnergyProfile(sys)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(profile)
	return nil
}

func relaxCoverages(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sys, err := buildSystem(cfg, nil, newLogger())
	if err != nil {
		return err
	}
	m := sys.Model()

	integ, ok := transient.New(integrator)
	if !ok {
		return fmt.Errorf("unknown integrator: %s", integrator)
	}

	theta0 := make([]float64, len(m.AdsorbateNames))
	project := transient.Project(steady.CoverageConstraint(m, sys.Backend()), sys.Backend())
	history, err := transient.Integrate(context.Background(), integ, transient.FromSystem(sys), theta0, project, transient.Options{
		Dt:     relaxDt,
		Steps:  relaxSteps,
		Record: relaxRecord,
	})
	if err != nil {
		return err
	}

	fmt.Printf("relaxed %s for %d steps of %.1e s (%s)\n\n", cfg.Network, relaxSteps, relaxDt, integ.Name())
	for j, name := range m.AdsorbateNames {
		series := make([]float64, len(history))
		for i := range history {
			series[i] = history[i][j]
		}
		graph := asciigraph.Plot(series,
			asciigraph.Height(8),
			asciigraph.Width(70),
			asciigraph.Caption(fmt.Sprintf("theta(%s) vs step", name)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	final := history[len(history)-1]
	for j, name := range m.AdsorbateNames {
		fmt.Printf("  %s: %.6f\n", name, final[j])
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	params := []string{"temperature"}
	grid := [][]float64{optim.Linspace(tMin, tMax, tSteps)}
	if sweepPGas != "" {
		params = append(params, "p:"+sweepPGas)
		grid = append(grid, optim.Linspace(pMin, pMax, pSteps))
	}

	sweep := optim.NewGridSweep(params, grid)
	fmt.Printf("sweeping %v for |TOF(%s)|...\n", params, sweepGas)
	start := time.Now()
	best, val, points, err := sweep.Search(context.Background(), optim.TOFObjective(cfg, sweepGas))
	if err != nil {
		return err
	}
	fmt.Printf("evaluated %d conditions in %v\n\n", len(points), time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "")
	for _, p := range params {
		fmt.Fprintf(w, "%s\t", p)
	}
	fmt.Fprintln(w, "|TOF|")
	for _, pt := range points {
		for _, p := range params {
			fmt.Fprintf(w, "%.4g\t", pt.Params[p])
		}
		fmt.Fprintf(w, "%.6e\n", pt.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest: %.6e at", val)
	for _, p := range params {
		fmt.Printf(" %s=%.4g", p, best[p])
	}
	fmt.Println()
	return nil
}

func watchSolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sys, err := buildSystem(cfg, nil, newLogger())
	if err != nil {
		return err
	}
	x0, err := sys.BoltzmannCoverages()
	if err != nil {
		return err
	}
	solver := steady.NewSolver(sys, cfg.SolverOptions(), newLogger())
	return viz.RunWatch(viz.NewWatch(solver, x0, sys.Model().AdsorbateNames, cfg.Network))
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := archive.NewStore(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNETWORK\tTIME\tBACKEND\tT (K)\tITERS\tRESIDUAL")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0f\t%d\t%.3e\n",
			run.ID,
			run.Network,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Backend,
			run.Temperature,
			run.Iterations,
			run.Residual,
		)
	}
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	store := archive.NewStore(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	store := archive.NewStore(dataDir)
	names, history, err := store.LoadCoverages(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := append([]string{"iteration"}, names...)
	if err := w.Write(header); err != nil {
		return err
	}
	for i, row := range history {
		record := []string{strconv.Itoa(i)}
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'e', 12, 64))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}
