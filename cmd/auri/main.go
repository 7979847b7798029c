package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/MrTrustworthy/auri/internal/aurora"
	"github.com/MrTrustworthy/auri/internal/config"
	"github.com/MrTrustworthy/auri/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var logger = logging.New("cli")

var (
	flagAurora  string
	flagVerbose bool
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "auri: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "auri",
		Short:         "Discover, control and ambilight Nanoleaf Aurora panels",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagVerbose {
				logging.SetLevel(zapcore.DebugLevel)
			}
		},
	}
	root.PersistentFlags().StringVarP(&flagAurora, "aurora", "a", "",
		"which Nanoleaf to use, see `auri device list` (default: the active one)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "more logging")

	root.AddCommand(
		newOnCmd(),
		newOffCmd(),
		newBrighterCmd(),
		newDarkerCmd(),
		newListCmd(),
		newPlayCmd(),
		newDeleteCmd(),
		newAmbiCmd(),
		newDeviceCmd(),
		newAlfredCmd(),
	)
	return root
}

// app bundles the settings and device registry every command needs.
type app struct {
	settings config.Settings
	store    *config.Store
}

func newApp() (*app, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	return &app{
		settings: settings,
		store:    config.NewStore(settings.ConfigPath),
	}, nil
}

// device resolves the Aurora a command acts on: the --aurora flag when set,
// the active device otherwise.
func (a *app) device() (*aurora.Aurora, error) {
	ip, d, err := a.store.ByNameOrActive(flagAurora)
	if err != nil {
		return nil, err
	}
	return aurora.New(ip, d.Name, d.MAC, d.Token, nil), nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

func pause(prompt string) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	_, _ = reader.ReadString('\n')
}

func promptLine(prompt, fallback string) string {
	if fallback != "" {
		fmt.Printf("%s [%s]: ", prompt, fallback)
	} else {
		fmt.Printf("%s: ", prompt)
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return fallback
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return fallback
	}
	return line
}
