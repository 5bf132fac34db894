package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/acpanel/internal/app"
)

var (
	configPath string
	prefsPath  string
	route      string
	retryEvery int
)

var rootCmd = &cobra.Command{
	Use:   "acpanel",
	Short: "Terminal control panel for Anycubic printers in Home Assistant",
	Long: `acpanel watches the Anycubic Cloud integration in Home Assistant over its
websocket API. Run without a subcommand to open the interactive panel.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive panel",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/acpanel/config.toml)")
	rootCmd.PersistentFlags().StringVar(&prefsPath, "prefs", "", "preferences file path (default ~/.config/acpanel/prefs.toml)")
	rootCmd.Flags().StringVarP(&route, "route", "r", "", "initial route, e.g. /<printer-id>/local-files")
	rootCmd.Flags().IntVar(&retryEvery, "retry", 0, "seconds between reconnect attempts (default 2)")
	tuiCmd.Flags().AddFlagSet(rootCmd.Flags())

	rootCmd.AddCommand(tuiCmd)
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "acpanel: %v\n", err)
		return 1
	}
	return 0
}

func runTUI(cmd *cobra.Command, _ []string) error {
	return app.Run(cmd.Context(), app.Options{
		ConfigPath: configPath,
		PrefsPath:  prefsPath,
		Route:      route,
		RetryEvery: retryEvery,
	})
}
