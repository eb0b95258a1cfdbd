package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeff231li/openmm/internal/bonded"
	"github.com/jeff231li/openmm/internal/config"
	"github.com/jeff231li/openmm/internal/device"
	"github.com/jeff231li/openmm/internal/export"
	"github.com/jeff231li/openmm/internal/forcefield"
	"github.com/jeff231li/openmm/internal/sim"
	"github.com/jeff231li/openmm/internal/storage"
	"github.com/jeff231li/openmm/internal/tui"
	"github.com/jeff231li/openmm/internal/viz"
)

var (
	dataDir    string
	steps      int
	stepSize   float64
	groups     int
	mode       string
	configFile string
	svgPath    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "openmm",
		Short: "bonded molecular force lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".openmm", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "minimize or integrate a system and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSystem,
	}
	runCmd.Flags().IntVar(&steps, "steps", 0, "number of steps (default from config)")
	runCmd.Flags().Float64Var(&stepSize, "dt", 0, "step size (default from config)")
	runCmd.Flags().IntVar(&groups, "groups", -1, "force group bitmask, -1 for all")
	runCmd.Flags().StringVar(&mode, "mode", "minimize", "minimize or dynamics")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write energy chart to SVG file")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "live minimization with interactive group toggles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			preset := "water"
			if len(args) > 0 {
				preset = args[0]
			}
			return tui.Run(preset)
		},
	}

	kernelCmd := &cobra.Command{
		Use:   "kernel [preset]",
		Short: "print the fused kernel source a preset compiles to",
		Args:  cobra.MaximumNArgs(1),
		RunE:  printKernel,
	}
	kernelCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in systems",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.Preset(name)
				fmt.Printf("%-10s %d atoms, %d force terms\n", name, len(cfg.Atoms), len(cfg.Forces))
			}
			return nil
		},
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run's energy series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "write energy chart to SVG file")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print a stored run's metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	rootCmd.AddCommand(runCmd, liveCmd, kernelCmd, presetsCmd, runsCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(args []string) (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	name := "water"
	if len(args) > 0 {
		name = args[0]
	}
	cfg := config.Preset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset %q (available: %v)", name, config.ListPresets())
	}
	return cfg, nil
}

func runSystem(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	runCfg := sim.Config{
		Steps:    cfg.Run.Steps,
		StepSize: cfg.Run.StepSize,
		Groups:   cfg.Run.Groups,
	}
	if cmd.Flags().Changed("steps") {
		runCfg.Steps = steps
	}
	if cmd.Flags().Changed("dt") {
		runCfg.StepSize = stepSize
	}
	if cmd.Flags().Changed("groups") {
		runCfg.Groups = groups
	}

	sys, forces, err := forcefield.FromConfig(cfg)
	if err != nil {
		return err
	}

	ctx := device.AutoSelect(sys.NumAtoms())
	reg := bonded.NewRegistry(ctx)
	for _, f := range forces {
		if err := f.AddTo(ctx, reg); err != nil {
			return err
		}
	}
	if err := reg.Initialize(sys); err != nil {
		return err
	}

	simulator := sim.New(ctx, reg, sys)

	fmt.Printf("%s on %s: %d atoms, %d force terms, %d steps\n",
		mode, ctx.Name(), sys.NumAtoms(), len(forces), runCfg.Steps)
	start := time.Now()

	var result *sim.Result
	switch mode {
	case "minimize":
		result, err = simulator.Minimize(context.Background(), runCfg)
	case "dynamics":
		result, err = simulator.Run(context.Background(), runCfg)
	default:
		return fmt.Errorf("unknown mode %q (minimize or dynamics)", mode)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	finalEnergy, finalForces, err := simulator.Evaluate(runCfg.Groups)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg.Name, mode, runCfg, result, finalForces)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("final energy: %.6g\n\n", finalEnergy)

	fmt.Println(viz.EnergyPlot(result.Energies, 80, 10))
	fmt.Println()
	fmt.Println(viz.ForceTable(finalForces))

	if svgPath != "" {
		if err := export.WriteEnergySVG(svgPath, result.Energies, 800, 400); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	return nil
}

func printKernel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	sys, forces, err := forcefield.FromConfig(cfg)
	if err != nil {
		return err
	}

	ctx := device.NewEmulator(sys.NumAtoms())
	reg := bonded.NewRegistry(ctx)
	for _, f := range forces {
		if err := f.AddTo(ctx, reg); err != nil {
			return err
		}
	}

	source, err := reg.PreviewSource()
	if err != nil {
		return err
	}
	fmt.Println(source)
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
	fmt.Fprintln(w, "ID\tSYSTEM\tMODE\tTIME\tSTEPS\tDT\tENERGY")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.2g\t%.6g\n",
			run.ID,
			run.System,
			run.Mode,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.StepSize,
			run.FinalEnergy,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	energies, maxForces, err := st.LoadEnergies(args[0])
	if err != nil {
		return err
	}
	if len(energies) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("system: %s (%s)\n", meta.System, meta.Mode)
	fmt.Printf("samples: %d\n\n", len(energies))

	fmt.Println(viz.EnergyPlot(energies, 80, 10))
	fmt.Println()
	fmt.Println("max force: " + viz.Sparkline(maxForces, 80))

	if svgPath != "" {
		if err := export.WriteEnergySVG(svgPath, energies, 800, 400); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
