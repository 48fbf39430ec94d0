package main

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/DannyLuna17/ElectroSim/internal/compute"
	"github.com/DannyLuna17/ElectroSim/internal/config"
	"github.com/DannyLuna17/ElectroSim/internal/engine"
	"github.com/DannyLuna17/ElectroSim/internal/storage"
	"github.com/DannyLuna17/ElectroSim/internal/viz"
	"github.com/DannyLuna17/ElectroSim/internal/world"
)

var (
	dataDir     string
	configFile  string
	sceneName   string
	duration    float64
	record      bool
	runName     string
	tolerance   float64
	benchCount  int
	benchFrames int
	backendName string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "electrosim",
		Short: "2D electrostatic n-body sandbox",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runLive(cmd, args); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".electrosim", "run data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "auto", "compute backend: auto, serial, parallel")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scene headless",
		RunE:  runHeadless,
	}
	runCmd.Flags().StringVar(&sceneName, "scene", "default", "scene preset")
	runCmd.Flags().Float64Var(&duration, "time", 10.0, "simulated duration in seconds")
	runCmd.Flags().BoolVar(&record, "record", false, "record the run")
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to the scene)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal view",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&sceneName, "scene", "default", "scene preset")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "check the integrator against the closed-form uniform-field trajectory",
		RunE:  runValidate,
	}
	validateCmd.Flags().Float64Var(&duration, "time", config.DefaultValidationDuration, "validation duration in seconds")
	validateCmd.Flags().Float64Var(&tolerance, "tolerance", 1e-3, "maximum allowed position error in meters")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a run's energy series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run states to CSV on stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := storage.NewStore(dataDir)
			if err != nil {
				return err
			}
			return st.ExportCSV(args[0], os.Stdout)
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a full run as JSON on stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := storage.NewStore(dataDir)
			if err != nil {
				return err
			}
			return st.ExportJSON(args[0], os.Stdout)
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "compare compute backends on random scenes",
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&benchCount, "n", 100, "particle count")
	benchCmd.Flags().IntVar(&benchFrames, "frames", 100, "frames per backend")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scene presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, name := range sceneNames() {
				fmt.Fprintf(w, "%s\t%s\t%d particles\n", name, config.Scenes[name].Description, len(config.Scenes[name].Particles))
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, validateCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, benchCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.DefaultConfig(), nil
}

func selectBackend() error {
	switch backendName {
	case "auto":
		compute.AutoSelectBackend()
	case "serial":
		compute.SetBackend(compute.NewSerialBackend())
	case "parallel":
		compute.SetBackend(compute.NewParallelBackend())
	default:
		return fmt.Errorf("unknown backend %q", backendName)
	}
	return nil
}

func sceneNames() []string {
	names := config.ListScenes()
	sort.Strings(names)
	return names
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := selectBackend(); err != nil {
		return err
	}
	eng := engine.New(cfg)
	if err := eng.LoadScene(sceneName); err != nil {
		return err
	}
	eng.SetPaused(false)

	var rec *storage.Writer
	if record {
		st, err := storage.NewStore(dataDir)
		if err != nil {
			return err
		}
		name := runName
		if name == "" {
			name = sceneName
		}
		rec, err = st.Begin(name, sceneName, cfg)
		if err != nil {
			return err
		}
	}

	start := time.Now()
	frames := 0
	for eng.Time() < duration {
		eng.StepFrame()
		frames++
		if rec != nil {
			en := eng.Energies()
			if err := rec.Append(eng.Time(), eng.Store().Snapshot(), en.Kinetic, en.Potential); err != nil {
				return err
			}
		}
	}
	elapsed := time.Since(start)

	en := eng.Energies()
	fmt.Printf("scene %s: %.2fs simulated in %v (%d frames, %d particles)\n",
		sceneName, eng.Time(), elapsed.Round(time.Millisecond), frames, eng.Store().Len())
	fmt.Printf("energy: kinetic %.4g J, potential %.4g J, total %.4g J\n",
		en.Kinetic, en.Potential, en.Total)
	if rec != nil {
		if err := rec.Close(); err != nil {
			return err
		}
		fmt.Printf("recorded as %s\n", rec.ID())
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := selectBackend(); err != nil {
		return err
	}
	eng := engine.New(cfg)
	names := sceneNames()
	idx := 0
	for i, n := range names {
		if n == sceneName {
			idx = i
			break
		}
	}
	if err := eng.LoadScene(names[idx]); err != nil {
		return err
	}
	st, err := storage.NewStore(dataDir)
	if err != nil {
		return err
	}
	model := viz.NewModel(eng, st, names)
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.ValidationDuration = duration
	if err := selectBackend(); err != nil {
		return err
	}
	eng := engine.New(cfg)
	if err := eng.StartValidation(); err != nil {
		return err
	}
	for eng.State() == engine.Validating {
		eng.StepFrame()
	}
	v := eng.Validation()
	fmt.Printf("uniform field (%g, %g) N/C for %.1fs, dt=%gs\n",
		cfg.UniformFieldX, cfg.UniformFieldY, duration, cfg.Dt)
	fmt.Printf("analytic  (%.6f, %.6f) m\n", v.FinalAnalytic.X, v.FinalAnalytic.Y)
	fmt.Printf("simulated (%.6f, %.6f) m\n", v.FinalSimulated.X, v.FinalSimulated.Y)
	fmt.Printf("max position error %.3g m, final velocity error %.3g m/s\n",
		v.MaxPosError, v.VelError.Len())
	if v.MaxPosError > tolerance {
		return fmt.Errorf("position error %.3g m exceeds tolerance %.3g m", v.MaxPosError, tolerance)
	}
	fmt.Println("ok")
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := storage.NewStore(dataDir)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSCENE\tFRAMES\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Name, r.Scene, r.Frames, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := storage.NewStore(dataDir)
	if err != nil {
		return err
	}
	samples, err := st.LoadEnergies(args[0])
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("run %s has too few frames to plot", args[0])
	}
	total := make([]float64, len(samples))
	kinetic := make([]float64, len(samples))
	for i, s := range samples {
		total[i] = s.Total
		kinetic[i] = s.Kinetic
	}
	fmt.Println(asciigraph.Plot(total, asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption("total energy (J)")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(kinetic, asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption("kinetic energy (J)")))

	states, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	var px, py []float64
	for _, s := range states {
		if s.ID == 0 {
			px = append(px, s.X)
			py = append(py, s.Y)
		}
	}
	if len(px) >= 2 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(px, asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption("particle 0 x (m)")))
		fmt.Println()
		fmt.Println(asciigraph.Plot(py, asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption("particle 0 y (m)")))
	}
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.MaxParticles = benchCount

	backends := []compute.Backend{compute.NewSerialBackend(), compute.NewParallelBackend()}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tPARTICLES\tFRAMES\tTOTAL\tPER FRAME")
	for _, b := range backends {
		if !b.Available() {
			fmt.Fprintf(w, "%s\t-\t-\tunavailable\t-\n", b.Name())
			continue
		}
		compute.SetBackend(b)
		eng := engine.New(cfg)
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < benchCount; i++ {
			pos := world.Vec2{X: rng.Float64() * cfg.WorldWidth, Y: rng.Float64() * cfg.WorldHeight}
			charge := (rng.Float64()*2 - 1) * cfg.Particles.MaxCharge
			if _, err := eng.AddParticle(pos, world.Vec2{}, charge, cfg.Particles.DefaultMass, cfg.Particles.DefaultRadius, false); err != nil {
				return err
			}
		}
		eng.SetPaused(false)
		start := time.Now()
		for i := 0; i < benchFrames; i++ {
			eng.StepFrame()
		}
		elapsed := time.Since(start)
		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%v\n",
			b.Name(), benchCount, benchFrames,
			elapsed.Round(time.Millisecond), (elapsed / time.Duration(benchFrames)).Round(time.Microsecond))
	}
	return w.Flush()
}
