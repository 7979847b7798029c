package main

import (
	"context"
	"fmt"
	"time"

	"github.com/MrTrustworthy/auri/internal/aurora"
	"github.com/MrTrustworthy/auri/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newDeviceCmd() *cobra.Command {
	device := &cobra.Command{
		Use:   "device",
		Short: "Interact with Nanoleaf devices",
	}
	device.AddCommand(
		newDeviceSetupCmd(),
		newDeviceListCmd(),
		newDeviceActivateCmd(),
		newDeviceIdentifyCmd(),
	)
	return device
}

func newDeviceSetupCmd() *cobra.Command {
	var amount int
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Discover and pair new Nanoleaf devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			fmt.Printf("Searching for a total of %d Nanoleaf Auroras, press <CTRL+C> to cancel\n", amount)
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			found, err := aurora.Discover(ctx, amount)
			if err != nil && len(found) == 0 {
				return fmt.Errorf("device discovery failed: %w", err)
			}

			for _, d := range found {
				if err := setupDevice(cmd.Context(), a.store, d); err != nil {
					return err
				}
			}
			fmt.Println("Added all requested Auroras - Done.")
			return nil
		},
	}
	cmd.Flags().IntVar(&amount, "amount", 1,
		"how many Auroras to search for; set this to the number of Auroras in your WLAN")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "how long to search")
	return cmd
}

func setupDevice(ctx context.Context, store *config.Store, d aurora.Discovered) error {
	description := fmt.Sprintf("%s (MAC: %s)", d.IP, d.MAC)
	fmt.Printf("Found one Aurora at %s\n", description)

	existing, err := store.NameByIP(d.IP)
	if err != nil {
		return err
	}
	info := "not yet configured"
	if existing != "" {
		info = fmt.Sprintf("already configured as %q", existing)
	}
	if !confirm(fmt.Sprintf("This Aurora is %s, do you want to start the setup for it?", info)) {
		fmt.Printf("Skipping setup for Aurora at %s\n", description)
		return nil
	}

	fallback := existing
	if fallback == "" {
		fallback = "My Nanoleaf"
	}
	name := promptLine("Please give this Aurora a name", fallback)
	dev := aurora.New(d.IP, name, d.MAC, "", nil)

	for {
		pause(fmt.Sprintf("Please hold the power button of the Aurora at %s for ~5 seconds "+
			"until the LED starts to blink, then press ENTER to continue ", description))
		if err := dev.GenerateToken(ctx); err != nil {
			logger.With(zap.Error(err)).Warn("Could not generate token, please try again")
			continue
		}
		break
	}

	fmt.Println("Token was successfully generated, adding Aurora to the config")
	return store.Add(d.IP, config.DeviceConfig{
		Name:  dev.Name,
		Token: dev.Token,
		MAC:   dev.MAC,
	})
}

func newDeviceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured Nanoleaf devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			devices, err := a.store.Load()
			if err != nil {
				return err
			}
			for ip, d := range devices {
				active := "[ ]"
				if d.Active {
					active = "[X]"
				}
				fmt.Printf("%s %s\n", active, aurora.New(ip, d.Name, d.MAC, d.Token, nil))
			}
			return nil
		},
	}
}

func newDeviceActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate NAME",
		Short: "Set the named Nanoleaf as the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.store.SetActive(args[0]); err != nil {
				return err
			}
			fmt.Printf("Set %s as active Aurora\n", args[0])
			return nil
		},
	}
}

func newDeviceIdentifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "identify",
		Short: "Make the device blink",
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
			return dev.Identify(cmd.Context())
		},
	}
}
