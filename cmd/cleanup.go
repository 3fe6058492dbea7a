package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/citypulse/harvester/internal/cleanup"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Data hygiene passes against the store",
}

var cleanupVenuesCmd = &cobra.Command{
	Use:   "venues",
	Short: "Classify venue types for venues missing one",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := cleanup.ClassifyVenues(ctx, st)
		if err != nil {
			return err
		}
		zap.L().Info("venue classification complete", zap.Int("updated", n))
		return nil
	},
}

var cleanupVibesCmd = &cobra.Command{
	Use:   "vibes",
	Short: "Normalize venue vibe tags into the canonical taxonomy",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := cleanup.NormalizeVenueVibes(ctx, st)
		if err != nil {
			return err
		}
		zap.L().Info("vibe normalization complete", zap.Int("updated", n))
		return nil
	},
}

var cleanupFestivalsCmd = &cobra.Command{
	Use:   "festivals",
	Short: "Audit stored events for umbrella-festival contamination",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		hits, err := cleanup.AuditFestivals(ctx, st)
		if err != nil {
			return err
		}
		zap.L().Info("festival audit complete", zap.Int("flagged", len(hits)))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	},
}

func init() {
	cleanupCmd.AddCommand(cleanupVenuesCmd, cleanupVibesCmd, cleanupFestivalsCmd)
	rootCmd.AddCommand(cleanupCmd)
}
