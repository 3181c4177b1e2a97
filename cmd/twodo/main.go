// Command twodo is a terminal todo, shopping-list and notes manager.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/twodo/internal/app"
	"github.com/nhle/twodo/internal/model"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// Global flags
	configPath string
	verbose    bool
)

// rootCmd runs the interactive UI.
var rootCmd = &cobra.Command{
	Use:   "twodo",
	Short: "Todos, shopping lists and notes in your terminal",
	Long: `twodo keeps todos, shopping lists and notes in a local store that is
saved to an embedded SQLite database or a JSON file.

Run without arguments to start the interactive interface.`,
	SilenceUsage: true,
	RunE:         runUI,
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write all data as a JSON document (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample categories, todos and shopping lists into an empty store",
	RunE:  runSeed,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all data",
	RunE:  runReset,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "twodo", version)
	},
}

var resetForce bool

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	resetCmd.Flags().BoolVar(&resetForce, "force", false, "Do not ask for confirmation")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runUI(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer rt.Close()

	m := app.New(app.Deps{
		Store:      rt.store,
		Watcher:    rt.watcher,
		Logger:     rt.logger,
		Config:     rt.cfg,
		ConfigPath: configPath,
		Storage:    rt.persister.Describe(),
		DataDir:    rt.dataDir,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(rt.ctx))
	if _, err := p.Run(); err != nil {
		rt.logger.Error("ui exited with error", zap.Error(err))
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
