package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/pricewatch-backend/internal/service/catalog"
)

func newMigrateCmd(with runtimeWrapper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, rt *Runtime) error {
			if err := rt.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			cmd.Println("Database schema is up to date.")
			return nil
		}),
	}
}

func newGeocodeCmd(with runtimeWrapper) *cobra.Command {
	return &cobra.Command{
		Use:   "geocode",
		Short: "Geocode every establishment seen on a receipt",
		Long: `Looks up coordinates for each distinct receipt issuer that has none yet.
Lookups run one at a time with the configured geocoding.batch_delay between
them to stay within the Places API quota.`,
		Args: cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, rt *Runtime) error {
			if rt.Geo == nil {
				return errGeocodingDisabled
			}
			stats, err := rt.Geo.SyncAll(cmd.Context())
			cmd.Printf("Processed %d stores: %d located, %d failed.\n", stats.Processed, stats.Located, stats.Failed)
			if err != nil {
				return fmt.Errorf("geocode: %w", err)
			}
			return nil
		}),
	}
}

func newDedupeCmd(with runtimeWrapper) *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Merge near-duplicate products without a barcode",
		Long: `Walks barcode-less products in creation order and compares each one only
against the products already kept. The earliest name wins: a later product
that resolves to a kept one has its prices moved and is deleted.`,
		Args: cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, rt *Runtime) error {
			report, err := rt.Catalog.Dedupe(cmd.Context(), apply)
			if err != nil {
				return fmt.Errorf("dedupe: %w", err)
			}
			for _, m := range report.Merges {
				cmd.Printf("  %d %q -> %d %q (%s, %d)\n", m.DropID, m.DropName, m.KeepID, m.KeepName, m.Method, m.Confidence)
			}
			cmd.Printf("Scanned %d products, %d unique, %d merges (%s: %d applied, %d failed).\n",
				report.Scanned, report.Unique, len(report.Merges), modeLabel(apply), report.Applied, report.Failed)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "write the merges instead of only reporting them")
	return cmd
}

func newBeautifyCmd(with runtimeWrapper) *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "beautify",
		Short: "Rewrite product names with the configured language model",
		Args:  cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, rt *Runtime) error {
			report, err := rt.Catalog.BeautifyNames(cmd.Context(), apply)
			if err != nil {
				return fmt.Errorf("beautify: %w", err)
			}
			printRenames(cmd, report, apply)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "write the new names instead of only reporting them")
	return cmd
}

func newPurgeNamesCmd(with runtimeWrapper) *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "purge-names",
		Short: "Strip register noise from product names",
		Args:  cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, rt *Runtime) error {
			report, err := rt.Catalog.PurgeNames(cmd.Context(), apply)
			if err != nil {
				return fmt.Errorf("purge names: %w", err)
			}
			printRenames(cmd, report, apply)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "write the cleaned names instead of only reporting them")
	return cmd
}

func newRestoreNamesCmd(with runtimeWrapper) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "restore-names",
		Short: "Restore product names from a tab separated backup",
		Long: `Reads lines of the form "<id>\t<name>" and sets each product's name.
Malformed lines and unknown ids are skipped; any other failure aborts the
whole restore.`,
		Args: cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, rt *Runtime) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open backup: %w", err)
			}
			defer f.Close()

			report, err := rt.Catalog.RestoreNames(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("restore names: %w", err)
			}
			cmd.Printf("Restored %d names, skipped %d lines.\n", report.Restored, report.Skipped)
			return nil
		}),
	}
	cmd.Flags().StringVar(&file, "file", "", "backup file with one id<TAB>name per line")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printRenames(cmd *cobra.Command, report *catalog.RenameReport, apply bool) {
	for _, c := range report.Changes {
		cmd.Printf("  %d %q -> %q\n", c.ID, c.From, c.To)
	}
	cmd.Printf("Scanned %d products, %d changes (%s: %d applied, %d failed).\n",
		report.Scanned, len(report.Changes), modeLabel(apply), report.Applied, report.Failed)
}
