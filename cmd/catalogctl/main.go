// Command catalogctl runs catalog maintenance jobs: migrations, batch store
// geocoding, product deduplication and bulk name rewrites. It is intended to
// be run by hand or from cron, never alongside itself.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/pricewatch-backend/internal/app"
	"github.com/heartmarshall/pricewatch-backend/internal/transport/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(app.OpenMaintenance).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "catalogctl:", err)
		stop()
		os.Exit(1)
	}
}
