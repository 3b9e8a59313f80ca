package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lazypower/pacing/internal/client"
	"github.com/lazypower/pacing/internal/engine"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's load and capacity",
	Long:  "Show today's load. Asks a running server first and falls back to the local database.",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	var (
		today *engine.DayLoad
		info  engine.CapacityInfo
		err   error
	)

	c := client.NewFromEnv()
	if c.Healthy() {
		if today, err = c.Today(); err != nil {
			return err
		}
		if info, err = c.Capacity(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "source: %s\n\n", c.URL())
	} else {
		eng, closeFn, err := openEngine()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if today, err = eng.Today(ctx); err != nil {
			return err
		}
		info = eng.Capacity()
		fmt.Fprintf(os.Stderr, "source: %s\n\n", eng.DB.Path)
	}

	out := cmd.OutOrStdout()
	printDayDetail(out, *today)
	fmt.Fprintln(out)
	printCapacity(out, info, time.Now())
	return nil
}
