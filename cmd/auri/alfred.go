package main

import (
	"fmt"
	"strings"

	"github.com/MrTrustworthy/auri/internal/alfred"
	"github.com/spf13/cobra"
)

func newAlfredCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "alfred",
		Short: "Alfred workflow integration",
	}

	prompt := &cobra.Command{
		Use:   "prompt",
		Short: "Print the effect picker as Alfred Script Filter JSON",
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
			out, err := alfred.Prompt(effects, a.settings.ImagePath, dev.Name)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	command := &cobra.Command{
		Use:   "command NAME...",
		Short: "Apply a selection made in the Alfred prompt",
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

	images := &cobra.Command{
		Use:   "images",
		Short: "Generate preview image files for each effect",
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
			if err := alfred.GenerateImages(effects, a.settings.ImagePath, dev.Name); err != nil {
				return err
			}
			fmt.Printf("Generated images into %s\n", a.settings.ImagePath)
			return nil
		},
	}

	root.AddCommand(prompt, command, images)
	return root
}
