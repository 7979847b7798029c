package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/MrTrustworthy/auri/internal/ambilight"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAmbiCmd() *cobra.Command {
	ambi := &cobra.Command{
		Use:   "ambi",
		Short: "Mirror the screen colors onto the panels",
	}

	var (
		interval     time.Duration
		paletteSize  int
		transitionMS int
	)
	addTuningFlags := func(cmd *cobra.Command, defaults ambilight.Options) {
		cmd.Flags().DurationVar(&interval, "interval", defaults.Interval,
			"how often to capture the screen and push an effect")
		cmd.Flags().IntVar(&paletteSize, "palette-size", defaults.PaletteSize,
			"how many dominant colors to extract per tick")
		cmd.Flags().IntVar(&transitionMS, "transition-ms", int(defaults.Transition/time.Millisecond),
			"crossfade duration per panel in milliseconds")
	}

	start := &cobra.Command{
		Use:   "start",
		Short: "Start the ambilight loop in the background",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			_, err = a.device()
			if err != nil {
				return err
			}
			state := ambilight.NewStateFile(a.settings.StatePath)
			if m, err := state.Live(); err != nil {
				return err
			} else if m != nil {
				return fmt.Errorf("%w (device %s, pid %d)", ambilight.ErrAlreadyRunning, m.Device, m.PID)
			}

			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locating own binary: %w", err)
			}
			runArgs := []string{
				"ambi", "run",
				"--interval", interval.String(),
				"--palette-size", strconv.Itoa(paletteSize),
				"--transition-ms", strconv.Itoa(transitionMS),
			}
			if flagAurora != "" {
				runArgs = append(runArgs, "--aurora", flagAurora)
			}

			// Detached re-exec: the loop must outlive this invocation so a
			// later `auri ambi stop` can find it via the session marker.
			loop := exec.Command(exe, runArgs...)
			loop.Stdin = nil
			loop.Stdout = nil
			loop.Stderr = nil
			if err := loop.Start(); err != nil {
				return fmt.Errorf("starting ambilight process: %w", err)
			}
			if err := loop.Process.Release(); err != nil {
				return err
			}
			fmt.Println("auri ambi started")
			return nil
		},
	}
	addTuningFlags(start, defaultAmbiOptions())

	stop := &cobra.Command{
		Use:   "stop",
		Short: "Stop a running ambilight loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			dev, err := a.device()
			if err != nil {
				return err
			}
			state := ambilight.NewStateFile(a.settings.StatePath)
			ctrl := ambilight.NewController(dev.Name, nil, nil, state, ambilight.Options{})
			if err := ctrl.Stop(); err != nil {
				return err
			}
			fmt.Println("auri ambi stopped")
			return nil
		},
	}

	run := &cobra.Command{
		Use:    "run",
		Short:  "Run the ambilight loop in the foreground",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			dev, err := a.device()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			state := ambilight.NewStateFile(a.settings.StatePath)
			ctrl := ambilight.NewController(dev.Name, dev, ambilight.ScreenSource{}, state, ambilight.Options{
				Interval:    interval,
				PaletteSize: paletteSize,
				Transition:  time.Duration(transitionMS) * time.Millisecond,
				Grid:        a.settings.AmbiGrid,
			})
			return ctrl.Start(ctx)
		},
	}
	addTuningFlags(run, defaultAmbiOptions())

	ambi.AddCommand(start, stop, run)
	return ambi
}

// defaultAmbiOptions pulls the flag defaults from the environment-backed
// settings so AURI_AMBI_* variables and flags compose.
func defaultAmbiOptions() ambilight.Options {
	opts := ambilight.Options{
		Interval:    time.Second,
		PaletteSize: 4,
		Transition:  2500 * time.Millisecond,
	}
	a, err := newApp()
	if err != nil {
		logger.With(zap.Error(err)).Warn("Could not load settings, using built-in ambilight defaults")
		return opts
	}
	opts.Interval = a.settings.AmbiInterval
	opts.PaletteSize = a.settings.AmbiPaletteSize
	opts.Transition = a.settings.AmbiTransition
	return opts
}
