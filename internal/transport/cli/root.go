// Package cli exposes catalog maintenance jobs as cobra commands.
package cli

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/pricewatch-backend/internal/service/catalog"
	"github.com/heartmarshall/pricewatch-backend/internal/service/geo"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces
// ---------------------------------------------------------------------------

type catalogMaintainer interface {
	Dedupe(ctx context.Context, apply bool) (*catalog.DedupeReport, error)
	BeautifyNames(ctx context.Context, apply bool) (*catalog.RenameReport, error)
	PurgeNames(ctx context.Context, apply bool) (*catalog.RenameReport, error)
	RestoreNames(ctx context.Context, r io.Reader) (*catalog.RestoreReport, error)
}

type storeGeocoder interface {
	SyncAll(ctx context.Context) (geo.SyncStats, error)
}

// Runtime is what a command needs once configuration and the database are
// available. Geo is nil when geocoding is not configured.
type Runtime struct {
	Catalog catalogMaintainer
	Geo     storeGeocoder
	Migrate func(ctx context.Context) error
}

// Opener builds a Runtime from the config file at path ("" means the default
// lookup). The returned func releases its resources.
type Opener func(ctx context.Context, configPath string) (*Runtime, func(), error)

var errGeocodingDisabled = errors.New("geocoding is not configured: set GOOGLE_MAPS_API_KEY")

// NewRootCmd builds the catalogctl command tree.
func NewRootCmd(open Opener) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Maintain the price catalog",
		Long: `catalogctl runs one-off maintenance jobs against the price catalog database.
Jobs that rewrite data are dry runs unless --apply is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (defaults to CONFIG_PATH or ./config.yaml)")

	// withRuntime opens a Runtime for the duration of one command.
	withRuntime := func(run func(cmd *cobra.Command, rt *Runtime) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			rt, closeFn, err := open(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer closeFn()
			return run(cmd, rt)
		}
	}

	root.AddCommand(
		newMigrateCmd(withRuntime),
		newGeocodeCmd(withRuntime),
		newDedupeCmd(withRuntime),
		newBeautifyCmd(withRuntime),
		newPurgeNamesCmd(withRuntime),
		newRestoreNamesCmd(withRuntime),
	)
	return root
}

type runtimeWrapper func(run func(cmd *cobra.Command, rt *Runtime) error) func(*cobra.Command, []string) error

func modeLabel(apply bool) string {
	if apply {
		return "applied"
	}
	return "dry run"
}
