package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrTrustworthy/auri/internal/ambilight"
	"github.com/MrTrustworthy/auri/internal/aurora"
	"github.com/MrTrustworthy/auri/internal/match"
	"github.com/spf13/cobra"
)

const brightnessStep = 20

func newOnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "on",
		Short: "Turn on the active device",
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
			return dev.SetOn(cmd.Context(), true)
		},
	}
}

func newOffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "off",
		Short: "Turn off the active device",
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
			return dev.SetOn(cmd.Context(), false)
		},
	}
}

func newBrighterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "brighter",
		Short: "Make the current effect brighter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return stepBrightness(cmd, brightnessStep)
		},
	}
}

func newDarkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "darker",
		Short: "Make the current effect darker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return stepBrightness(cmd, -brightnessStep)
		},
	}
}

func stepBrightness(cmd *cobra.Command, delta int) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	dev, err := a.device()
	if err != nil {
		return err
	}
	current, err := dev.Brightness(cmd.Context())
	if err != nil {
		return err
	}
	next := current + delta
	if next > 100 {
		next = 100
	}
	if next < 0 {
		next = 0
	}
	fmt.Printf("Brightness %d->%d\n", current, next)
	return dev.SetBrightness(cmd.Context(), next)
}

func newListCmd() *cobra.Command {
	var namesOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Display all effects installed on this device",
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
			effects, err := dev.Effects(cmd.Context())
			if err != nil {
				return err
			}
			if namesOnly {
				for _, e := range effects {
					fmt.Println(e.Name)
				}
				return nil
			}
			activeName, err := dev.ActiveEffectName(cmd.Context())
			if err != nil {
				return err
			}
			for _, e := range effects {
				active := "[ ]"
				if e.Name == activeName {
					active = "[X]"
				}
				fmt.Printf("%s %s %s\n", active, e.ColorFlag(), e.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&namesOnly, "names", "n", false, "only print the effect names")
	return cmd
}

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play NAME...",
		Short: "Switch the device to a specific effect, with spelling correction",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			dev, err := a.device()
			if err != nil {
				return err
			}
			return playEffect(cmd, dev, strings.Join(args, " "))
		},
	}
}

func playEffect(cmd *cobra.Command, dev *aurora.Aurora, query string) error {
	effects, err := dev.Effects(cmd.Context())
	if err != nil {
		return err
	}
	names := make([]string, 0, len(effects))
	for _, e := range effects {
		names = append(names, e.Name)
	}
	name, ok := match.Closest(query, names)
	if !ok {
		return fmt.Errorf("found nothing similar to %q, are there no effects on this device?", query)
	}
	if strings.EqualFold(name, ambilight.EffectName) {
		logger.Warnf("Playing %s doesn't start the ambilight loop, use `auri ambi start` instead", ambilight.EffectName)
	}
	if err := dev.SelectEffect(cmd.Context(), name); err != nil {
		return err
	}
	for _, e := range effects {
		if e.Name == name {
			fmt.Printf("Set current effect to %s %s\n", name, e.ColorFlag())
			return nil
		}
	}
	fmt.Printf("Set current effect to %s\n", name)
	return nil
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME...",
		Short: "Delete an effect from the device. Warning: not reversible!",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			dev, err := a.device()
			if err != nil {
				return err
			}
			name := strings.Join(args, " ")
			if !confirm(fmt.Sprintf("This will delete the effect %q from %s, are you sure?", name, dev)) {
				return errors.New("aborted")
			}
			if err := dev.DeleteEffect(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Printf("Deleted effect %s\n", name)
			return nil
		},
	}
}
