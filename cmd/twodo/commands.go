package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/twodo/internal/persist"
)

// runExport writes the store as JSON to the given file or stdout.
func runExport(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer rt.Close()

	var w io.Writer = cmd.OutOrStdout()
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("creating %s: %w", args[0], err)
		}
		defer f.Close()
		w = f
	}

	if err := persist.ExportJSON(w, rt.store.Tables()); err != nil {
		return err
	}
	if len(args) == 1 {
		rt.logger.Info("exported", zap.String("file", args[0]))
		fmt.Fprintln(cmd.ErrOrStderr(), "Exported to", args[0])
	}
	return nil
}

// runSeed loads the sample data when the store is empty.
func runSeed(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer rt.Close()

	if !rt.store.Seed() {
		fmt.Fprintln(cmd.OutOrStdout(), "Store is not empty; nothing seeded.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Sample data loaded into", rt.persister.Describe())
	return nil
}

// runReset deletes every row after confirmation.
func runReset(cmd *cobra.Command, args []string) error {
	if !resetForce {
		confirmed := false
		err := huh.NewConfirm().
			Title("Delete all todos, shopping lists, notes and categories?").
			Affirmative("Yes, delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	rt, err := openRuntime(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.store.ClearAll()
	rt.logger.Info("store cleared")
	fmt.Fprintln(cmd.OutOrStdout(), "All data deleted from", rt.persister.Describe())
	return nil
}
